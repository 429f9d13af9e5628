package config

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochip8/pkg/chip8"
	"gochip8/pkg/display"
	"gochip8/pkg/quirks"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	mc, err := c.MachineConfig()
	require.NoError(t, err)
	assert.Equal(t, chip8.DefaultInstructionsPerFrame, mc.InstructionsPerFrame)
	assert.Equal(t, quirks.Default(), mc.Quirks)

	fg, bg, err := c.Colors()
	require.NoError(t, err)
	assert.Equal(t, display.DefaultForeground, fg)
	assert.Equal(t, display.DefaultBackground, bg)
	assert.Nil(t, c.LogFile())
}

func TestParse(t *testing.T) {
	c, err := Parse(`
instructions_per_frame = 11
profile = "schip"

[quirks]
clip_sprites = false
vf_reset_on_logic = true

[display]
scale = 4
foreground = "#FFFFFF"

[audio]
mute = true

[log]
verbosity = 2
file = "chip8.log"
`)
	require.NoError(t, err)

	assert.Equal(t, 11, c.InstructionsPerFrame)
	assert.Equal(t, 4, c.Display.Scale)
	assert.Equal(t, FormatHexColor(display.DefaultBackground), c.Display.Background, "unset keys keep defaults")
	assert.True(t, c.Audio.Mute)
	assert.Equal(t, 1000.0, c.Audio.Frequency)
	assert.Equal(t, 2, c.Log.Verbosity)
	require.NotNil(t, c.LogFile())
	assert.Equal(t, "chip8.log", *c.LogFile())

	q, err := c.ResolveQuirks()
	require.NoError(t, err)
	want, _ := quirks.Lookup(quirks.SCHIP)
	want.ClipSprites = false
	want.VFResetOnLogic = true
	assert.Equal(t, want, q)

	fg, _, err := c.Colors()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, fg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", `instructions_per_frame = `},
		{"unknown key", `speed = 3`},
		{"unknown quirk", "[quirks]\nwrap = true"},
		{"bad profile", `profile = "cosmac"`},
		{"zero budget", `instructions_per_frame = 0`},
		{"scale", "[display]\nscale = 0"},
		{"colour", "[display]\nforeground = \"green\""},
		{"volume", "[audio]\nvolume = 1.5"},
		{"frequency", "[audio]\nfrequency = -1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsEverything(t *testing.T) {
	c := Default()
	c.InstructionsPerFrame = -1
	c.Profile = "nope"
	c.Audio.Volume = 2

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, quirks.ErrUnknownProfile)
	assert.Contains(t, err.Error(), "instructions_per_frame")
	assert.Contains(t, err.Error(), "audio.volume")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "game.ch8")
	assert.Empty(t, FindNextTo(rom))

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("profile = \"xochip\"\n"), 0o644))
	assert.Equal(t, path, FindNextTo(rom))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, quirks.XOCHIP, c.Profile)
	assert.True(t, filepath.IsAbs(c.Path))

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.Profile = quirks.SCHIP
	on := true
	c.Quirks.HaltBeforeDraw = &on

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))

	back, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, c.Profile, back.Profile)
	require.NotNil(t, back.Quirks.HaltBeforeDraw)
	assert.True(t, *back.Quirks.HaltBeforeDraw)
	assert.Nil(t, back.Quirks.ClipSprites)
	assert.Equal(t, c.Display, back.Display)
}
