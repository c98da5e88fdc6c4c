package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"

	"dotmatrix/cart"
	"dotmatrix/emu"
	"dotmatrix/emu/log"
	"dotmatrix/hw"
)

// runMain runs the emulator with the given rom. Errors past power-up are
// returned so that deferred cleanups (trace, serial, profile) still run.
func runMain(args Run) error {
	cfg := emu.LoadConfigOrDefault()
	applyFlags(&cfg, args)

	rom, err := cart.Open(args.RomPath)
	checkf(err, "failed to open rom")

	var boot []byte
	if cfg.Emulation.BootROM != "" {
		boot, err = cart.ReadBoot(cfg.Emulation.BootROM)
		checkf(err, "failed to load boot image")
	}

	m, err := emu.PowerUp(rom, boot, cfg.Emulation)
	checkf(err, "failed to power up")
	m.PPU.SetPalette(cfg.Video.Colors())

	if args.Trace != nil {
		defer args.Trace.Close()
		m.CPU.SetTraceOutput(args.Trace)
	}
	if args.Serial != nil {
		defer args.Serial.Close()
		m.Serial.SetOutput(args.Serial)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		last []byte
		res  emu.HeadlessResult
	)

	switch args.Video {
	case "none":
		if args.Frames <= 0 {
			return errors.New("--video=none requires --frames")
		}
		out := hw.NewOutput(hw.OutputConfig{Lossless: true})
		e := emu.NewEmulator(m, out, cfg.Emulation)
		res, err = emu.RunHeadless(ctx, e, args.Frames)
		last = res.LastFrame

	case "term":
		out := hw.NewOutput(hw.OutputConfig{})
		e := emu.NewEmulator(m, out, cfg.Emulation)
		stopAfter(e, args.Frames)
		err = emu.RunTerminal(ctx, e)

	default:
		out := hw.NewOutput(hw.OutputConfig{})
		e := emu.NewEmulator(m, out, cfg.Emulation)
		stopAfter(e, args.Frames)
		sdl.Main(func() {
			last, err = emu.RunWindow(ctx, e, cfg)
		})
	}

	if err != nil {
		return err
	}

	if args.Digest {
		if args.Video != "none" {
			log.ModEmu.WarnZ("--digest requires --video=none").End()
		} else {
			fmt.Printf("frames: %d digest: %s\n", res.Frames, res.Digest)
		}
	}

	if args.Screenshot != "" && last != nil {
		img := hw.FramebufImage(last, hw.ScreenWidth, hw.ScreenHeight)
		if err := hw.SaveAsPNG(hw.ScaleImage(img, cfg.Video.Scale), args.Screenshot); err != nil {
			return fmt.Errorf("failed to save screenshot: %w", err)
		}
	}
	return nil
}

// applyFlags overrides the configuration file with command line flags.
func applyFlags(cfg *emu.Config, args Run) {
	if args.Boot != "" {
		cfg.Emulation.BootROM = args.Boot
	}
	if args.Monitor >= 0 {
		cfg.Video.Monitor = args.Monitor
	}
	if args.Unthrottle || args.Video == "none" {
		cfg.Emulation.Unthrottled = true
	}
}

// stopAfter stops the emulator once n frames have been emitted, if n > 0.
func stopAfter(e *emu.Emulator, n int) {
	if n <= 0 {
		return
	}
	e.OnFrame(func(count uint64) {
		if count >= uint64(n) {
			e.Stop()
		}
	})
}
