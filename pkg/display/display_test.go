package display

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelBounds(t *testing.T) {
	s := New()

	s.SetPixel(0, 0, true)
	s.SetPixel(63, 31, true)
	s.SetPixel(64, 0, true)  // ignored
	s.SetPixel(0, 32, true)  // ignored
	s.SetPixel(-1, -1, true) // ignored

	assert.True(t, s.Pixel(0, 0))
	assert.True(t, s.Pixel(63, 31))
	assert.False(t, s.Pixel(64, 0))
	assert.False(t, s.Pixel(-1, 3))
	assert.Equal(t, 2, s.Lit())

	s.Clear()
	assert.Equal(t, 0, s.Lit())
}

func TestRGBA(t *testing.T) {
	s := New()
	s.Foreground = color.RGBA{R: 0xFF, G: 0x10, B: 0x20, A: 0xFF}
	s.Background = color.RGBA{A: 0xFF}
	s.SetPixel(1, 0, true)

	pixels := s.RGBA()
	require.Len(t, pixels, Width*Height*4)

	assert.Equal(t, []byte{0, 0, 0, 0xFF}, pixels[0:4], "pixel 0 is background")
	assert.Equal(t, []byte{0xFF, 0x10, 0x20, 0xFF}, pixels[4:8], "pixel 1 is foreground")
}

func TestImage(t *testing.T) {
	img := New().Image()
	assert.Equal(t, Width, img.Rect.Dx())
	assert.Equal(t, Height, img.Rect.Dy())
	assert.Equal(t, Width*4, img.Stride)
}

func TestScaledImage(t *testing.T) {
	s := New()
	s.SetPixel(2, 1, true)

	img := s.ScaledImage(4)
	require.Equal(t, Width*4, img.Rect.Dx())
	require.Equal(t, Height*4, img.Rect.Dy())

	// every sub-pixel of the scaled cell carries the foreground colour
	for y := 4; y < 8; y++ {
		for x := 8; x < 12; x++ {
			assert.Equal(t, s.Foreground, img.RGBAAt(x, y), "at (%d,%d)", x, y)
		}
	}
	assert.Equal(t, s.Background, img.RGBAAt(7, 4))
	assert.Equal(t, s.Background, img.RGBAAt(12, 4))
}

func TestSaveScreenshot(t *testing.T) {
	s := New()
	s.SetPixel(0, 0, true)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, s.SaveScreenshot(path, 2))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, Width*2, img.Bounds().Dx())
	assert.Equal(t, Height*2, img.Bounds().Dy())
}

func TestText(t *testing.T) {
	s := New()
	s.SetPixel(0, 0, true)
	s.SetPixel(1, 1, true)
	s.SetPixel(2, 0, true)
	s.SetPixel(2, 1, true)

	lines := strings.Split(strings.TrimSuffix(s.Text(), "\n"), "\n")
	require.Len(t, lines, Height/2)
	assert.True(t, strings.HasPrefix(lines[0], "▀▄█ "))
	assert.Equal(t, strings.Repeat(" ", Width), lines[1])
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#00E430", color.RGBA{0x00, 0xE4, 0x30, 0xFF}, false},
		{"ff8000", color.RGBA{0xFF, 0x80, 0x00, 0xFF}, false},
		{"#fff", color.RGBA{}, true},
		{"#GGHHII", color.RGBA{}, true},
	}
	for _, tc := range tests {
		got, err := ParseHexColor(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
