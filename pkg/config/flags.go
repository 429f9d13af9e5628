package config

import (
	"flag"

	"github.com/tliron/commonlog"
)

// Flags are the command-line settings shared by every binary. Zero values
// mean "not given" and leave the file or default value in place.
type Flags struct {
	ConfigPath           string
	Profile              string
	InstructionsPerFrame int
	Scale                int
	Verbosity            int
	LogFile              string
	Mute                 bool
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "TOML config `file` (default: "+FileName+" next to the ROM, if present)")
	fs.StringVar(&f.Profile, "profile", "", "quirk profile: chip8, schip or xochip")
	fs.IntVar(&f.InstructionsPerFrame, "ipf", 0, "instructions per 60 Hz frame")
	fs.IntVar(&f.Scale, "scale", 0, "pixel scale for the window and screenshots")
	fs.IntVar(&f.Verbosity, "v", 0, "log verbosity (1 info, 2 debug trace)")
	fs.StringVar(&f.LogFile, "log", "", "log to `file` instead of stderr")
	fs.BoolVar(&f.Mute, "mute", false, "disable the beeper")
}

// Resolve loads the configuration for rom and applies the flags on top.
func (f *Flags) Resolve(rom string) (*Config, error) {
	path := f.ConfigPath
	if path == "" && rom != "" {
		path = FindNextTo(rom)
	}

	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if f.Profile != "" {
		c.Profile = f.Profile
	}
	if f.InstructionsPerFrame != 0 {
		c.InstructionsPerFrame = f.InstructionsPerFrame
	}
	if f.Scale != 0 {
		c.Display.Scale = f.Scale
	}
	if f.Verbosity != 0 {
		c.Log.Verbosity = f.Verbosity
	}
	if f.LogFile != "" {
		c.Log.File = f.LogFile
	}
	if f.Mute {
		c.Audio.Mute = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ConfigureLogging hands the log settings to commonlog. The binary must
// import a backend, e.g. commonlog/simple.
func (c *Config) ConfigureLogging() {
	commonlog.Configure(c.Log.Verbosity, c.LogFile())
}
