package hw

import (
	"image/color"
	"testing"
)

func TestOutputDropsOldest(t *testing.T) {
	out := NewOutput(OutputConfig{NumBuffers: 3})

	for i := range 5 {
		buf := out.BeginFrame()
		buf[0] = byte(i + 1)
		out.EndFrame(buf)
	}

	frames, dropped := out.Stats()
	if frames != 5 || dropped != 2 {
		t.Errorf("Stats() = %d, %d want 5, 2", frames, dropped)
	}

	out.Close()
	var got []byte
	for buf := range out.Frames() {
		got = append(got, buf[0])
		out.Release(buf)
	}
	if string(got) != "\x03\x04\x05" {
		t.Errorf("received frames %v want [3 4 5]", got)
	}
}

func TestOutputLossless(t *testing.T) {
	out := NewOutput(OutputConfig{NumBuffers: 3, Lossless: true})

	done := make(chan []byte)
	go func() {
		var got []byte
		for buf := range out.Frames() {
			got = append(got, buf[0])
			out.Release(buf)
		}
		done <- got
	}()

	for i := range 10 {
		buf := out.BeginFrame()
		buf[0] = byte(i)
		out.EndFrame(buf)
	}
	out.Close()

	got := <-done
	if len(got) != 10 {
		t.Fatalf("received %d frames want 10", len(got))
	}
	for i, v := range got {
		if int(v) != i {
			t.Errorf("frame %d = %d, frames must be received in order", i, v)
		}
	}
	if _, dropped := out.Stats(); dropped != 0 {
		t.Errorf("dropped %d frames in lossless mode", dropped)
	}
}

func TestOutputMinBuffers(t *testing.T) {
	out := NewOutput(OutputConfig{NumBuffers: 1})
	if n := cap(out.free); n != 3 {
		t.Errorf("got %d buffers want 3", n)
	}
}

func TestFramebufImage(t *testing.T) {
	buf := make([]byte, ScreenWidth*ScreenHeight*4)
	off := (2*ScreenWidth + 1) * 4
	copy(buf[off:], []byte{0x9B, 0xBC, 0x0F, 0xFF})

	img := FramebufImage(buf, ScreenWidth, ScreenHeight)
	if b := img.Bounds(); b.Dx() != ScreenWidth || b.Dy() != ScreenHeight {
		t.Fatalf("bounds = %v", b)
	}
	want := color.RGBA{0x9B, 0xBC, 0x0F, 0xFF}
	if got := img.RGBAAt(1, 2); got != want {
		t.Errorf("pixel = %v want %v", got, want)
	}

	scaled := ScaleImage(img, 2)
	if got := scaled.RGBAAt(3, 5); got != want {
		t.Errorf("scaled pixel = %v want %v", got, want)
	}
}
