package emu

import (
	"context"
	"crypto/sha1"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dotmatrix/emu/log"
	"dotmatrix/hw"
)

// Digest computes a SHA-1 value chained over all frames it sees. Two runs
// with the same inputs produce the same digest.
//
// SHA-1 is fine here, this is not a cryptographic task.
type Digest struct {
	sum   [sha1.Size]byte
	buf   []byte
	count int
}

func NewDigest() *Digest {
	return &Digest{buf: make([]byte, sha1.Size+hw.ScreenWidth*hw.ScreenHeight*4)}
}

// Add chains the digest of a new frame.
func (d *Digest) Add(frame []byte) {
	n := copy(d.buf, d.sum[:])
	copy(d.buf[n:], frame)
	d.sum = sha1.Sum(d.buf)
	d.count++
}

func (d *Digest) Frames() int { return d.count }

func (d *Digest) Hash() string {
	return fmt.Sprintf("%x", d.sum)
}

// HeadlessResult is what a headless run produces.
type HeadlessResult struct {
	Frames    int
	Digest    string
	LastFrame []byte // copy of the last frame, nil if none
}

// RunHeadless runs exactly nframes frames without presentation. The
// emulator must have been created with a lossless output so that the
// digest covers every frame.
func RunHeadless(ctx context.Context, e *Emulator, nframes int) (HeadlessResult, error) {
	var (
		res HeadlessResult
		dig = NewDigest()
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer e.out.Close()

		stop := context.AfterFunc(ctx, e.Stop)
		defer stop()

		return e.RunFrames(nframes)
	})

	g.Go(func() error {
		for frame := range e.out.Frames() {
			dig.Add(frame)
			if res.LastFrame == nil {
				res.LastFrame = make([]byte, len(frame))
			}
			copy(res.LastFrame, frame)
			e.out.Release(frame)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Frames = dig.Frames()
	res.Digest = dig.Hash()
	log.ModEmu.InfoZ("headless run done").
		Int("frames", res.Frames).
		String("digest", res.Digest).
		End()
	return res, nil
}
