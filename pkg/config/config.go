// Package config handles chip8.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"gochip8/pkg/chip8"
	"gochip8/pkg/display"
	"gochip8/pkg/quirks"
)

// FileName is the configuration file looked up next to a ROM.
const FileName = "chip8.toml"

var ErrInvalid = errors.New("invalid configuration")

// Config is a chip8.toml run configuration.
type Config struct {
	InstructionsPerFrame int              `toml:"instructions_per_frame"`
	Profile              string           `toml:"profile"`
	Quirks               quirks.Overrides `toml:"quirks"`
	Display              Display          `toml:"display"`
	Audio                Audio            `toml:"audio"`
	Log                  Log              `toml:"log"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Display configures the desktop window and screenshots.
type Display struct {
	Scale      int    `toml:"scale"`
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
}

// Audio configures the beeper tone.
type Audio struct {
	Frequency float64 `toml:"frequency"`
	Volume    float64 `toml:"volume"`
	Mute      bool    `toml:"mute"`
}

// Log configures commonlog. Verbosity 0 logs notices and worse, each step
// up adds a level (1 info, 2 debug), negative values log less.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		InstructionsPerFrame: chip8.DefaultInstructionsPerFrame,
		Profile:              quirks.CHIP8,
		Display: Display{
			Scale:      10,
			Foreground: FormatHexColor(display.DefaultForeground),
			Background: FormatHexColor(display.DefaultBackground),
		},
		Audio: Audio{
			Frequency: 1000,
			Volume:    0.4,
		},
	}
}

// Load parses the TOML file at path on top of Default and validates it.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML text on top of Default and validates it.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindNextTo returns the configuration file sitting beside rom, or "" if
// there is none.
func FindNextTo(rom string) string {
	path := filepath.Join(filepath.Dir(rom), FileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.InstructionsPerFrame <= 0 {
		bad("instructions_per_frame must be positive, got %d", c.InstructionsPerFrame)
	}
	if _, err := quirks.Lookup(c.Profile); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if c.Display.Scale < 1 || c.Display.Scale > 64 {
		bad("display.scale must be 1-64, got %d", c.Display.Scale)
	}
	if _, err := display.ParseHexColor(c.Display.Foreground); err != nil {
		bad("display.foreground: %v", err)
	}
	if _, err := display.ParseHexColor(c.Display.Background); err != nil {
		bad("display.background: %v", err)
	}
	if c.Audio.Frequency <= 0 || c.Audio.Frequency > 20000 {
		bad("audio.frequency must be in (0, 20000], got %g", c.Audio.Frequency)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		bad("audio.volume must be in [0, 1], got %g", c.Audio.Volume)
	}

	return errors.Join(errs...)
}

// ResolveQuirks resolves the profile and applies the per-switch overrides.
func (c *Config) ResolveQuirks() (quirks.Quirks, error) {
	q, err := quirks.Lookup(c.Profile)
	if err != nil {
		return quirks.Quirks{}, err
	}
	return c.Quirks.Apply(q), nil
}

// MachineConfig returns the per-run machine parameters. Collaborators
// (display, keypad, sound) are left for the front-end to fill in.
func (c *Config) MachineConfig() (chip8.Config, error) {
	q, err := c.ResolveQuirks()
	if err != nil {
		return chip8.Config{}, err
	}
	return chip8.Config{
		InstructionsPerFrame: c.InstructionsPerFrame,
		Quirks:               q,
	}, nil
}

// Colors returns the parsed foreground and background colours.
func (c *Config) Colors() (fg, bg color.RGBA, err error) {
	if fg, err = display.ParseHexColor(c.Display.Foreground); err != nil {
		return fg, bg, err
	}
	bg, err = display.ParseHexColor(c.Display.Background)
	return fg, bg, err
}

// LogFile returns the log path for commonlog.Configure, nil for stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	return &c.Log.File
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// FormatHexColor renders c as "#RRGGBB".
func FormatHexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
