// Package keypad maps a QWERTY keyboard onto the 16-key hex keypad and holds
// key state for the front-ends.
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
package keypad

import (
	"strings"
	"sync"
	"unicode"

	"gochip8/pkg/chip8"
)

// Layout lists the physical keys row by row; Layout[i] drives logical key
// Logical[i].
const Layout = "1234qwerasdfzxcv"

var Logical = [chip8.KeyCount]byte{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// KeyForRune returns the logical key for a physical key, ignoring case.
func KeyForRune(r rune) (byte, bool) {
	i := strings.IndexRune(Layout, unicode.ToLower(r))
	if i < 0 {
		return 0, false
	}
	return Logical[i], true
}

// State is a set of held keys. It implements chip8.Keypad and is safe for
// concurrent use, so an input goroutine can feed a machine running on
// another.
type State struct {
	mu   sync.Mutex
	down [chip8.KeyCount]bool
}

func (s *State) IsKeyDown(key byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.down[key&0x0F]
}

func (s *State) Set(key byte, down bool) {
	s.mu.Lock()
	s.down[key&0x0F] = down
	s.mu.Unlock()
}

// Replace sets every key at once.
func (s *State) Replace(down [chip8.KeyCount]bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// Latch emulates key holds for terminals, which report key presses but no
// releases. A press holds the key for a fixed number of frames; a repeat
// before it expires extends the hold.
type Latch struct {
	hold int

	mu     sync.Mutex
	frames [chip8.KeyCount]int
}

// DefaultHold keeps a key down long enough to outlast typical auto-repeat
// delays at 60 frames a second.
const DefaultHold = 6

func NewLatch(hold int) *Latch {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Latch{hold: hold}
}

// Press (re)starts the hold for key.
func (l *Latch) Press(key byte) {
	l.mu.Lock()
	l.frames[key&0x0F] = l.hold
	l.mu.Unlock()
}

// Tick ages every hold by one frame.
func (l *Latch) Tick() {
	l.mu.Lock()
	for k, n := range l.frames {
		if n > 0 {
			l.frames[k] = n - 1
		}
	}
	l.mu.Unlock()
}

func (l *Latch) IsKeyDown(key byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames[key&0x0F] > 0
}
