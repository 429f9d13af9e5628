// Package chip8 implements the CHIP-8 virtual machine: machine state,
// fetch-decode-execute, the 60 Hz timers and the key-wait state machine.
//
// The package owns no window, audio device or keyboard. A Machine draws into
// a Framebuffer, asks a Keypad which keys are held and reports the beeper
// state to a SoundSink; front-ends supply those and call Frame once per
// 60 Hz tick.
//
// A Machine is not safe for concurrent use.
package chip8

import (
	"math/rand/v2"

	"github.com/tliron/commonlog"

	"gochip8/pkg/display"
	"gochip8/pkg/quirks"
)

const (
	MemorySize    = 4096
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	// ProgramStart is where ROMs are loaded and execution begins.
	ProgramStart = 0x200
	// MaxROMSize is the largest ROM that fits above ProgramStart.
	MaxROMSize = MemorySize - ProgramStart

	// VF is the flag register.
	VF = 0xF

	ScreenWidth  = display.Width
	ScreenHeight = display.Height

	DefaultInstructionsPerFrame = 128
)

// Framebuffer is the boolean pixel grid the machine draws into.
type Framebuffer interface {
	Pixel(x, y int) bool
	SetPixel(x, y int, on bool)
	Clear()
}

// Keypad reports whether logical key 0x0-0xF is currently held.
type Keypad interface {
	IsKeyDown(key byte) bool
}

// SoundSink receives the beeper state once per timer tick.
type SoundSink interface {
	SetBeep(on bool)
}

// State is the execution state of the key-wait state machine.
type State uint8

const (
	Running State = iota
	AwaitingKey
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting-key"
	}
	return "unknown"
}

// Config holds the per-run parameters. Nil collaborators are replaced with
// defaults by New: a fresh display.Screen, a keypad with no keys held, a
// discarding sound sink, a randomly seeded generator and the "chip8"
// logger. A zero Quirks value means every quirk is off; use DefaultConfig
// for the interpreter's usual set.
type Config struct {
	InstructionsPerFrame int
	Quirks               quirks.Quirks

	Display Framebuffer
	Keypad  Keypad
	Sound   SoundSink
	Rand    *rand.Rand
	Logger  commonlog.Logger
}

// DefaultConfig returns a configuration with the chip8 quirk profile and
// DefaultInstructionsPerFrame.
func DefaultConfig() Config {
	return Config{
		InstructionsPerFrame: DefaultInstructionsPerFrame,
		Quirks:               quirks.Default(),
	}
}

// Machine is the complete state of one CHIP-8 run.
type Machine struct {
	PC uint16
	I  uint16
	V  [RegisterCount]byte

	DT byte // delay timer
	ST byte // sound timer

	SP    uint8
	Stack [StackSize]uint16

	Memory [MemorySize]byte

	// Key-wait (Fx0A) state.
	KeyWaiting   bool
	KeyTarget    uint8
	KeysObserved [KeyCount]bool

	quirks               quirks.Quirks
	instructionsPerFrame int

	display Framebuffer
	keypad  Keypad
	sound   SoundSink
	rng     *rand.Rand
	log     commonlog.Logger

	tracker KeyTracker
	cycles  uint64
	frames  uint64
}

// New creates a machine with the font loaded into low memory and every other
// field zeroed. Call LoadROM before running.
func New(cfg Config) *Machine {
	m := &Machine{
		quirks:               cfg.Quirks,
		instructionsPerFrame: cfg.InstructionsPerFrame,
		display:              cfg.Display,
		keypad:               cfg.Keypad,
		sound:                cfg.Sound,
		rng:                  cfg.Rand,
		log:                  cfg.Logger,
	}
	if m.instructionsPerFrame <= 0 {
		m.instructionsPerFrame = DefaultInstructionsPerFrame
	}
	if m.display == nil {
		m.display = display.New()
	}
	if m.keypad == nil {
		m.keypad = noKeys{}
	}
	if m.sound == nil {
		m.sound = silence{}
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.log == nil {
		m.log = commonlog.GetLogger("chip8")
	}
	copy(m.Memory[FontAddress:], Font[:])
	return m
}

// LoadROM copies rom into memory at ProgramStart, truncating anything past
// the end of memory, and points PC at it. It returns the number of bytes
// loaded.
func (m *Machine) LoadROM(rom []byte) int {
	n := copy(m.Memory[ProgramStart:], rom)
	m.PC = ProgramStart
	if n < len(rom) {
		m.log.Warningf("ROM truncated: %d of %d bytes loaded", n, len(rom))
	}
	return n
}

// State reports whether the machine is executing or waiting for a key.
func (m *Machine) State() State {
	if m.KeyWaiting {
		return AwaitingKey
	}
	return Running
}

func (m *Machine) Quirks() quirks.Quirks {
	return m.quirks
}

func (m *Machine) InstructionsPerFrame() int {
	return m.instructionsPerFrame
}

// Display returns the framebuffer the machine draws into.
func (m *Machine) Display() Framebuffer {
	return m.display
}

// Cycles is the number of instructions executed so far.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Frames is the number of completed Frame calls.
func (m *Machine) Frames() uint64 {
	return m.frames
}

type noKeys struct{}

func (noKeys) IsKeyDown(byte) bool { return false }

type silence struct{}

func (silence) SetBeep(bool) {}
