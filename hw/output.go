package hw

import (
	"image"
	"sync/atomic"
)

// Output hands completed frames from the emulation loop to a presentation
// layer. Buffers circulate between a free list and a ready queue so that
// the consumer never sees a buffer the PPU is drawing into. When the
// consumer falls behind, the oldest undisplayed frame is recycled.
type Output struct {
	free  chan []byte
	ready chan []byte
	cfg   OutputConfig

	frames  atomic.Uint64
	dropped atomic.Uint64
}

type OutputConfig struct {
	// Number of framebuffers, at least 3: one being drawn, one being
	// displayed and one ready.
	NumBuffers int

	// Lossless makes BeginFrame wait for the consumer instead of dropping
	// late frames. Used when every frame matters, like for digests.
	Lossless bool
}

func NewOutput(cfg OutputConfig) *Output {
	cfg.NumBuffers = max(cfg.NumBuffers, 3)
	o := &Output{
		free:  make(chan []byte, cfg.NumBuffers),
		ready: make(chan []byte, cfg.NumBuffers),
		cfg:   cfg,
	}
	for range cfg.NumBuffers {
		o.free <- make([]byte, ScreenWidth*ScreenHeight*4)
	}
	return o
}

// BeginFrame returns a buffer to draw the next frame into. It only blocks
// in lossless mode.
func (o *Output) BeginFrame() []byte {
	if o.cfg.Lossless {
		return <-o.free
	}

	select {
	case buf := <-o.free:
		return buf
	default:
	}

	// The consumer is late, reuse the oldest ready frame.
	select {
	case buf := <-o.ready:
		o.dropped.Add(1)
		return buf
	case buf := <-o.free:
		return buf
	}
}

// EndFrame queues a completed frame for presentation.
func (o *Output) EndFrame(buf []byte) {
	o.frames.Add(1)
	o.ready <- buf
}

// Frames returns the queue of completed frames. Each received buffer must
// be given back with Release once presented.
func (o *Output) Frames() <-chan []byte { return o.ready }

// Release gives back a buffer received from Frames.
func (o *Output) Release(buf []byte) { o.free <- buf }

// Close signals the consumer that no more frames will be produced.
func (o *Output) Close() { close(o.ready) }

// Stats returns the number of emitted and dropped frames.
func (o *Output) Stats() (frames, dropped uint64) {
	return o.frames.Load(), o.dropped.Load()
}

// FramebufImage wraps a framebuffer into an image, without copy.
func FramebufImage(buf []byte, w, h int) *image.RGBA {
	return &image.RGBA{
		Pix:    buf,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
}
