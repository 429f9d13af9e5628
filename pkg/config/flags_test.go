package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochip8/pkg/quirks"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse(args))
	return &f
}

func TestFlagsDefaults(t *testing.T) {
	c, err := parseFlags(t).Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "game.ch8")
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
profile = "schip"
instructions_per_frame = 20
[display]
scale = 6
`), 0o644))

	c, err := parseFlags(t).Resolve(rom)
	require.NoError(t, err)
	assert.Equal(t, quirks.SCHIP, c.Profile)
	assert.Equal(t, 20, c.InstructionsPerFrame)

	c, err = parseFlags(t, "-profile", "xochip", "-ipf", "500", "-scale", "3", "-v", "2", "-log", "out.log", "-mute").Resolve(rom)
	require.NoError(t, err)
	assert.Equal(t, quirks.XOCHIP, c.Profile)
	assert.Equal(t, 500, c.InstructionsPerFrame)
	assert.Equal(t, 3, c.Display.Scale)
	assert.Equal(t, 2, c.Log.Verbosity)
	assert.Equal(t, "out.log", c.Log.File)
	assert.True(t, c.Audio.Mute)
}

func TestFlagsExplicitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`instructions_per_frame = 7`), 0o644))

	c, err := parseFlags(t, "-config", path).Resolve("elsewhere/game.ch8")
	require.NoError(t, err)
	assert.Equal(t, 7, c.InstructionsPerFrame)

	_, err = parseFlags(t, "-config", path+".missing").Resolve("")
	assert.Error(t, err)
}

func TestFlagsRejectBadProfile(t *testing.T) {
	_, err := parseFlags(t, "-profile", "vip").Resolve("")
	assert.ErrorIs(t, err, quirks.ErrUnknownProfile)
}
