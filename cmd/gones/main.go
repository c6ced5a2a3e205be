// Package main implements the gones NES emulator executable: the
// embedder example spec.md §1/§6 calls out, built on
// internal/system.State instead of the teacher's internal/app.Application
// and internal/bus.Bus.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/rng999/gones-core/internal/cartridge"
	"github.com/rng999/gones-core/internal/config"
	"github.com/rng999/gones-core/internal/debug"
	"github.com/rng999/gones-core/internal/present"
	"github.com/rng999/gones-core/internal/system"
	"github.com/rng999/gones-core/internal/version"
)

func main() {
	var (
		romFile = flag.String("rom", "", "Path to NES ROM file (required)")
		pal     = flag.Bool("pal", false, "Use PAL (RP2A07) timing instead of NTSC (RP2A03)")
		nogui   = flag.Bool("nogui", false, "Run without a window (headless: tick N frames, dump a PNG)")
		frames  = flag.Int("frames", 120, "Frames to run in -nogui mode before dumping")
		dumpPNG = flag.String("dump", "", "In -nogui mode, write the final frame to this PNG path")
		help    = flag.Bool("help", false, "Show help message")
		showVer = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	variant := config.VariantNTSC
	if *pal {
		variant = config.VariantPAL
	}

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		version.PrintBuildInfo(variant)
		os.Exit(0)
	}
	if *romFile == "" {
		log.Fatal("a ROM file is required: -rom <path>")
	}

	setupGracefulShutdown()

	fmt.Println("gones-core starting...")
	fmt.Printf("Variant: %s\n", variant)

	cfg := config.New()
	cfg.Variant = variant

	emu := system.New(cfg)

	fmt.Printf("Loading ROM: %s\n", *romFile)
	rom, err := cartridge.LoadFile(*romFile)
	if err != nil {
		log.Fatalf("failed to load cartridge: %v", err)
	}
	emu.LoadCartridge(rom)
	emu.PowerOn()
	fmt.Println("ROM loaded successfully")

	if *nogui {
		runHeadless(emu, *frames, *dumpPNG)
		return
	}

	fmt.Println("Starting GUI mode...")
	ebiten.SetWindowSize(512, 480)
	ebiten.SetWindowTitle("gones-core")
	game := present.NewGame(emu)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("GUI mode failed: %v", err)
	}

	fmt.Println("Emulator shutting down...")
}

// runHeadless ticks the emulator frames times with no window, for
// scripted testing and CI smoke runs (spec.md's "emulate_frame()" used
// directly by an embedder instead of a presentation loop).
func runHeadless(emu *system.State, frames int, dumpPath string) {
	fmt.Printf("Running %d frames headless...\n", frames)
	for i := 0; i < frames; i++ {
		emu.EmulateFrame()
		if (i+1)%30 == 0 {
			fmt.Printf("%d/%d frames complete\n", i+1, frames)
		}
	}
	fmt.Println("Headless run complete")

	if dumpPath == "" {
		return
	}
	f, err := os.Create(dumpPath)
	if err != nil {
		log.Fatalf("failed to create %s: %v", dumpPath, err)
	}
	defer f.Close()
	if err := debug.DumpFramebufferPNG(f, emu.PPU.Framebuffer(), 256, 240, 2); err != nil {
		log.Fatalf("failed to dump framebuffer: %v", err)
	}
	fmt.Printf("Wrote %s\n", dumpPath)
}

// setupGracefulShutdown installs a SIGINT/SIGTERM handler so headless
// runs and GUI mode both exit cleanly on Ctrl-C.
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down")
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("gones-core - Ricoh 2A03/2A07 tick engine")
	fmt.Println()
	fmt.Println("Usage: gones -rom <path> [flags]")
	fmt.Println()
	flag.PrintDefaults()
}
