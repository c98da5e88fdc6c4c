package emu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"dotmatrix/emu/log"
	"dotmatrix/hw"
)

// Master clock frequency, in Hz.
const ClockRate = 4194304

// FrameDuration is the duration of a frame at 59.73Hz.
const FrameDuration = time.Second * hw.FrameCycles / ClockRate

// Emulator drives the machine, one frame at a time, and hands completed
// frames to an output.
type Emulator struct {
	M   *Machine
	out *hw.Output
	cfg EmulationConfig

	// These are accessed concurrently by the emulator loop and the UI.
	stop   atomic.Bool
	frames atomic.Uint64

	reportFault sync.Once
	nextFrame   time.Time
	onFrame     func(count uint64)
}

func NewEmulator(m *Machine, out *hw.Output, cfg EmulationConfig) *Emulator {
	m.PPU.SetFrame(out.BeginFrame())
	return &Emulator{M: m, out: out, cfg: cfg}
}

// Stop asks the emulation loop to exit. Safe for concurrent use.
func (e *Emulator) Stop() { e.stop.Store(true) }

func (e *Emulator) shouldStop() bool { return e.stop.Load() }

// OnFrame registers fn to be called by the emulation loop after each
// emitted frame, with the number of frames emitted so far.
func (e *Emulator) OnFrame(fn func(count uint64)) { e.onFrame = fn }

// Frames returns the number of frames emitted so far.
func (e *Emulator) Frames() uint64 { return e.frames.Load() }

// Run runs the emulation until Stop is called, ctx is done or a fatal error
// occurs, in which case that error is returned. The output is closed when
// Run returns.
func (e *Emulator) Run(ctx context.Context) error {
	defer e.out.Close()
	defer e.flushSerial()

	e.nextFrame = time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}
		done, err := e.runFrame()
		if err != nil || done {
			return err
		}
		e.pace()
	}
}

// RunFrames runs exactly n frames, without pacing. The output isn't closed.
func (e *Emulator) RunFrames(n int) error {
	defer e.flushSerial()

	for range n {
		done, err := e.runFrame()
		if err != nil || done {
			return err
		}
	}
	return nil
}

// runFrame runs the machine until a frame has been completed, or for
// a frame worth of cycles if the LCD is off. It reports whether the loop
// has been asked to stop.
func (e *Emulator) runFrame() (stopped bool, err error) {
	e.M.Joypad.Sample()

	elapsed := 0
	for elapsed < hw.FrameCycles {
		cycles, ready := e.M.Step()
		if err := e.M.CPU.Fault(); err != nil {
			return true, e.fatal(err)
		}
		if e.shouldStop() {
			return true, nil
		}
		if ready {
			e.endFrame()
			return false, nil
		}
		elapsed += cycles
	}
	e.flushSerial()
	return false, nil
}

func (e *Emulator) endFrame() {
	e.out.EndFrame(e.M.PPU.Frame())
	e.M.PPU.SetFrame(e.out.BeginFrame())
	n := e.frames.Add(1)
	e.flushSerial()
	if e.onFrame != nil {
		e.onFrame(n)
	}
}

func (e *Emulator) flushSerial() {
	if err := e.M.Serial.Flush(); err != nil {
		log.ModEmu.WarnZ("serial flush").Error("err", err).End()
	}
}

// pace sleeps until the next frame is due, unless unthrottled.
func (e *Emulator) pace() {
	if e.cfg.Unthrottled {
		return
	}

	e.nextFrame = e.nextFrame.Add(FrameDuration)
	d := time.Until(e.nextFrame)
	if d < -5*FrameDuration {
		// Too late, don't try to catch up.
		e.nextFrame = time.Now()
		return
	}
	if d > 0 {
		time.Sleep(d)
	}
}

// FaultError wraps the core error that stopped the machine. It has already
// been logged when Run returns it.
type FaultError struct {
	Err error
}

func (e *FaultError) Error() string { return e.Err.Error() }
func (e *FaultError) Unwrap() error { return e.Err }

// fatal reports a fatal error, only once.
func (e *Emulator) fatal(err error) error {
	e.reportFault.Do(func() {
		var operr *hw.OpcodeError
		if errors.As(err, &operr) {
			log.ModEmu.ErrorZ("unknown opcode, emulation stopped").
				Hex16("pc", operr.PC).
				Hex8("opcode", operr.Opcode).
				End()
			return
		}
		log.ModEmu.ErrorZ("fatal error, emulation stopped").
			Hex16("pc", e.M.CPU.PC).
			Error("err", err).
			End()
	})
	return &FaultError{Err: err}
}
