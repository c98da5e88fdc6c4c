package emu

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"dotmatrix/emu/log"
	"dotmatrix/hw"
	"dotmatrix/hw/input"
)

// RunWindow runs the emulator and shows its frames in an SDL window. It
// must be called from within sdl.Main. The returned frame, if non-nil, is
// a copy of the last displayed frame.
func RunWindow(ctx context.Context, e *Emulator, cfg Config) (last []byte, err error) {
	w, err := hw.NewWindow(hw.WindowConfig{
		Title:        "dotmatrix",
		Scale:        cfg.Video.Scale,
		DisableVSync: cfg.Video.DisableVSync,
		Monitor:      cfg.Video.Monitor,
	})
	if err != nil {
		return nil, err
	}
	defer w.Close()

	prov := input.NewProvider(cfg.Input)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	g.Go(func() error {
		// Keep polling events when no frames are produced, LCD off.
		ticker := time.NewTicker(FrameDuration)
		defer ticker.Stop()

		frames := e.out.Frames()
		for frames != nil {
			select {
			case frame, ok := <-frames:
				if !ok {
					frames = nil
					continue
				}
				w.Render(frame)
				if last == nil {
					last = make([]byte, len(frame))
				}
				copy(last, frame)
				e.out.Release(frame)
			case <-ticker.C:
			}

			if !w.Poll() {
				log.ModEmu.InfoZ("window closed").End()
				e.Stop()
			}
			e.M.Joypad.SetButtons(prov.Buttons())
		}
		return nil
	})

	err = g.Wait()
	return last, err
}
