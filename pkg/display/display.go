// Package display implements the 64×32 monochrome framebuffer the machine
// draws into, plus conversions of that buffer into pixels for front-ends.
package display

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"gochip8/pkg/grid"
)

const (
	Width  = 64
	Height = 32
)

var (
	// DefaultForeground and DefaultBackground are the lit and unlit pixel
	// colours.
	DefaultForeground = color.RGBA{R: 0x00, G: 0xE4, B: 0x30, A: 0xFF}
	DefaultBackground = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xFF}
)

// Screen is a boolean pixel grid. Coordinates outside the grid read as unlit
// and writes to them are ignored.
type Screen struct {
	pixels [Width * Height]bool

	Foreground color.RGBA
	Background color.RGBA
}

// New returns a cleared screen using the default colours.
func New() *Screen {
	return &Screen{
		Foreground: DefaultForeground,
		Background: DefaultBackground,
	}
}

func (s *Screen) Pixel(x, y int) bool {
	if !grid.Contains(x, y, Width, Height) {
		return false
	}
	return s.pixels[grid.GetGridIndex(x, y, Width)]
}

func (s *Screen) SetPixel(x, y int, on bool) {
	if !grid.Contains(x, y, Width, Height) {
		return
	}
	s.pixels[grid.GetGridIndex(x, y, Width)] = on
}

func (s *Screen) Clear() {
	s.pixels = [Width * Height]bool{}
}

// Lit counts the pixels currently set.
func (s *Screen) Lit() int {
	n := 0
	for _, on := range s.pixels {
		if on {
			n++
		}
	}
	return n
}

// RGBA decodes the screen into a Width×Height RGBA8888 byte slice (length
// Width*Height*4), suitable for ebiten's WritePixels.
func (s *Screen) RGBA() []byte {
	pixels := make([]byte, Width*Height*4)
	for i, on := range s.pixels {
		c := s.Background
		if on {
			c = s.Foreground
		}
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// Image returns the screen as an *image.RGBA at one pixel per cell.
func (s *Screen) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    s.RGBA(),
		Stride: Width * 4,
		Rect:   image.Rect(0, 0, Width, Height),
	}
}

// ScaledImage returns the screen upscaled by an integer factor using
// nearest-neighbour sampling so pixels stay square.
func (s *Screen) ScaledImage(scale int) *image.RGBA {
	if scale <= 1 {
		return s.Image()
	}
	src := s.Image()
	dst := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the screen, upscaled by scale, as a PNG and writes
// it to filename.
func (s *Screen) SaveScreenshot(filename string, scale int) error {
	img := s.ScaledImage(scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Text renders the screen with Unicode half blocks, two pixel rows per line.
func (s *Screen) Text() string {
	var b strings.Builder
	b.Grow((Width*3 + 1) * Height / 2)
	for y := 0; y < Height; y += 2 {
		for x := 0; x < Width; x++ {
			top, bottom := s.Pixel(x, y), s.Pixel(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	var c color.RGBA
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	c.A = 0xFF
	return c, nil
}
