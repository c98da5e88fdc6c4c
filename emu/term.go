package emu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"dotmatrix/emu/log"
	"dotmatrix/hw"
	"dotmatrix/hw/input"
)

// Terminals have no key release events: a key press holds the button for
// that many frames.
const termHoldFrames = 8

// RunTerminal runs the emulator and renders its frames in the terminal,
// using truecolor half blocks, two pixels per character. Keys are read from
// stdin in raw mode: arrows, x (A), z (B), return (Start), backspace
// (Select). q or Ctrl-C quits.
func RunTerminal(ctx context.Context, e *Emulator) error {
	outfd, infd := int(os.Stdout.Fd()), int(os.Stdin.Fd())
	if !term.IsTerminal(outfd) || !term.IsTerminal(infd) {
		return errors.New("terminal video requires stdin and stdout to be a terminal")
	}

	cols, rows, err := term.GetSize(outfd)
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}

	oldState, err := term.MakeRaw(infd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(infd, oldState)

	keys := make(chan []byte, 16)
	go readKeys(os.Stdin, keys)

	r := newTermRenderer(os.Stdout, cols, rows-1)
	r.clear()
	defer r.reset()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	g.Go(func() error {
		var held [input.NumButtons]int
		for frame := range e.out.Frames() {
			if err := r.render(frame); err != nil {
				log.ModEmu.WarnZ("terminal render").Error("err", err).End()
			}
			e.out.Release(frame)

		drain:
			for {
				select {
				case p := <-keys:
					btns, quit := parseKeys(p)
					if quit {
						e.Stop()
					}
					for _, b := range btns {
						held[b] = termHoldFrames
					}
				default:
					break drain
				}
			}

			var state input.Buttons
			for b := range held {
				if held[b] > 0 {
					held[b]--
					state.Set(input.Button(b), true)
				}
			}
			e.M.Joypad.SetButtons(state)
		}
		return nil
	})
	return g.Wait()
}

func readKeys(r io.Reader, keys chan<- []byte) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys <- bytes.Clone(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// parseKeys decodes raw terminal input into pressed buttons.
func parseKeys(p []byte) (btns []input.Button, quit bool) {
	for len(p) > 0 {
		if len(p) >= 3 && p[0] == 0x1b && p[1] == '[' {
			switch p[2] {
			case 'A':
				btns = append(btns, input.Up)
			case 'B':
				btns = append(btns, input.Down)
			case 'C':
				btns = append(btns, input.Right)
			case 'D':
				btns = append(btns, input.Left)
			}
			p = p[3:]
			continue
		}

		switch p[0] {
		case 'q', 0x03:
			quit = true
		case 'x', 'X':
			btns = append(btns, input.A)
		case 'z', 'Z':
			btns = append(btns, input.B)
		case '\r', '\n':
			btns = append(btns, input.Start)
		case 0x7f, 0x08:
			btns = append(btns, input.Select)
		}
		p = p[1:]
	}
	return btns, quit
}

type termRenderer struct {
	w   io.Writer
	img *image.RGBA
	buf bytes.Buffer
}

// newTermRenderer creates a renderer fitting the screen into cols x rows
// characters, keeping the aspect ratio.
func newTermRenderer(w io.Writer, cols, rows int) *termRenderer {
	width := min(cols, hw.ScreenWidth)
	height := width * hw.ScreenHeight / hw.ScreenWidth
	if maxh := rows * 2; height > maxh {
		height = maxh
		width = height * hw.ScreenWidth / hw.ScreenHeight
	}
	height &^= 1
	return &termRenderer{
		w:   w,
		img: image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 2))),
	}
}

func (r *termRenderer) clear() { io.WriteString(r.w, "\x1b[2J\x1b[?25l") }
func (r *termRenderer) reset() { io.WriteString(r.w, "\x1b[0m\x1b[?25h\r\n") }

func (r *termRenderer) render(frame []byte) error {
	src := hw.FramebufImage(frame, hw.ScreenWidth, hw.ScreenHeight)
	draw.NearestNeighbor.Scale(r.img, r.img.Bounds(), src, src.Bounds(), draw.Src, nil)

	r.buf.Reset()
	r.buf.WriteString("\x1b[H")
	writeHalfBlocks(&r.buf, r.img)
	_, err := r.w.Write(r.buf.Bytes())
	return err
}

// writeHalfBlocks writes img as rows of upper half blocks, the foreground
// colour being the top pixel and the background colour the bottom one.
func writeHalfBlocks(buf *bytes.Buffer, img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y+1 < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bot := img.RGBAAt(x, y+1)
			buf.WriteString("\x1b[38;2;")
			writeRGB(buf, top.R, top.G, top.B)
			buf.WriteString(";48;2;")
			writeRGB(buf, bot.R, bot.G, bot.B)
			buf.WriteString("m▀")
		}
		buf.WriteString("\x1b[0m\r\n")
	}
}

func writeRGB(buf *bytes.Buffer, r, g, b uint8) {
	var tmp [3]byte
	buf.Write(strconv.AppendUint(tmp[:0], uint64(r), 10))
	buf.WriteByte(';')
	buf.Write(strconv.AppendUint(tmp[:0], uint64(g), 10))
	buf.WriteByte(';')
	buf.Write(strconv.AppendUint(tmp[:0], uint64(b), 10))
}
