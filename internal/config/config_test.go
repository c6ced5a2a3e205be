package config

import "testing"

func TestGeometryForNTSCMatchesCanonicalGrid(t *testing.T) {
	g := GeometryFor(VariantNTSC)
	if g.ScanlinesPerFrame != 262 || g.DotsPerScanline != 341 {
		t.Fatalf("NTSC geometry = %+v, want 262x341", g)
	}
	if !g.DPCMCorruption {
		t.Fatal("NTSC must enable the DPCM idle-cycle corruption")
	}
}

func TestGeometryForPALMatchesCanonicalGrid(t *testing.T) {
	g := GeometryFor(VariantPAL)
	if g.ScanlinesPerFrame != 312 || g.DotsPerScanline != 341 {
		t.Fatalf("PAL geometry = %+v, want 312x341", g)
	}
	if g.DPCMCorruption {
		t.Fatal("PAL DMC stalls must be clean, no idle-cycle corruption")
	}
}

func TestNewReturnsNTSCDefaults(t *testing.T) {
	c := New()
	if c.Variant != VariantNTSC {
		t.Fatalf("default Variant = %v, want NTSC", c.Variant)
	}
	if c.HistoryCapacity() != DefaultHistoryCap {
		t.Fatalf("default HistoryCapacity = %d, want %d", c.HistoryCapacity(), DefaultHistoryCap)
	}
	if c.WarmupCPUCycles() != 29658 {
		t.Fatalf("default WarmupCPUCycles = %d, want 29658", c.WarmupCPUCycles())
	}
}

func TestZeroHistoryCapFallsBackToDefault(t *testing.T) {
	c := New()
	c.HistoryCap = 0
	if c.HistoryCapacity() != DefaultHistoryCap {
		t.Fatalf("HistoryCapacity with HistoryCap=0 = %d, want default %d", c.HistoryCapacity(), DefaultHistoryCap)
	}
}

func TestVariantString(t *testing.T) {
	if VariantNTSC.String() != "NTSC" {
		t.Fatalf("VariantNTSC.String() = %q, want NTSC", VariantNTSC.String())
	}
	if VariantPAL.String() != "PAL" {
		t.Fatalf("VariantPAL.String() = %q, want PAL", VariantPAL.String())
	}
}
