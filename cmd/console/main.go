// Command console runs a CHIP-8 ROM in a terminal.
//
//	console [flags] rom.ch8|prog.asm
//
// Keys 1234/QWER/ASDF/ZXCV drive the hex keypad. Esc or Ctrl-C quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/display"
	"gochip8/pkg/keypad"
	"gochip8/pkg/utils"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1B
)

var (
	errQuit        = errors.New("quit")
	errInputClosed = errors.New("input closed")
)

// bell rings the terminal bell when the beeper turns on.
type bell struct {
	out io.Writer
	on  bool
}

func (b *bell) SetBeep(on bool) {
	if on && !b.on {
		_, _ = b.out.Write([]byte{'\a'})
	}
	b.on = on
}

// readInput forwards bytes from r until r fails or stop is closed.
func readInput(r io.Reader, out chan<- byte, stop <-chan struct{}) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			select {
			case out <- c:
			case <-stop:
				return
			}
		}
		if err != nil {
			close(out)
			return
		}
	}
}

// handleInput applies pending input bytes to the latch. It returns errQuit
// on Esc or Ctrl-C and errInputClosed once the reader has stopped.
func handleInput(in <-chan byte, latch *keypad.Latch) error {
	for {
		select {
		case c, ok := <-in:
			if !ok {
				return errInputClosed
			}
			if c == keyCtrlC || c == keyEsc {
				return errQuit
			}
			if k, ok := keypad.KeyForRune(rune(c)); ok {
				latch.Press(k)
			}
		default:
			return nil
		}
	}
}

// pollInput runs handleInput once per frame. When redirected input runs dry
// it returns a nil channel so the machine keeps running with no keys held;
// a closed terminal quits.
func pollInput(in <-chan byte, latch *keypad.Latch, interactive bool) (<-chan byte, error) {
	err := handleInput(in, latch)
	switch {
	case errors.Is(err, errInputClosed) && !interactive:
		return nil, nil
	case errors.Is(err, errInputClosed):
		return nil, errQuit
	}
	return in, err
}

// render draws the screen and a status line, homing the cursor first.
func render(screen *display.Screen, vm *chip8.Machine) string {
	var b strings.Builder
	b.WriteString("\x1b[H")
	b.WriteString(strings.ReplaceAll(screen.Text(), "\n", "\r\n"))
	fmt.Fprintf(&b, "PC %04X  I %03X  DT %02X  ST %02X  %-12s frame %d\x1b[K\r\n",
		vm.PC, vm.I, vm.DT, vm.ST, vm.State(), vm.Frames())
	return b.String()
}

func run(args []string) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	hold := fs.Int("hold", keypad.DefaultHold, "frames a key stays down after each keystroke")
	frames := fs.Int("frames", 0, "stop after this many frames (0: run until quit)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected one ROM or assembly file")
	}
	romPath := fs.Arg(0)

	cfg, err := flags.Resolve(romPath)
	if err != nil {
		return err
	}
	if cfg.Log.File == "" {
		// stderr would scribble over the screen
		cfg.Log.Verbosity = -4
	}
	cfg.ConfigureLogging()
	logger := commonlog.GetLogger("console")

	rom, err := utils.LoadProgram(romPath)
	if err != nil {
		return err
	}

	mc, err := cfg.MachineConfig()
	if err != nil {
		return err
	}
	screen := display.New()
	latch := keypad.NewLatch(*hold)
	mc.Display = screen
	mc.Keypad = latch
	if !cfg.Audio.Mute {
		mc.Sound = &bell{out: os.Stdout}
	}
	vm := chip8.New(mc)
	vm.LoadROM(rom)
	logger.Infof("loaded %s (%d bytes, quirks %s)", romPath, len(rom), mc.Quirks)

	fd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(fd)
	if interactive {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < display.Width || h < display.Height/2+1) {
		logger.Warningf("terminal is %dx%d, need at least %dx%d", w, h, display.Width, display.Height/2+1)
	}

	fmt.Print("\x1b[2J\x1b[?25l")
	defer fmt.Print("\x1b[?25h\r\n")

	keys := make(chan byte, 64)
	stop := make(chan struct{})
	defer close(stop)
	go readInput(os.Stdin, keys, stop)
	var input <-chan byte = keys

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for range ticker.C {
		if input, err = pollInput(input, latch, interactive); err != nil {
			return nil
		}
		_ = vm.Frame() // faults are logged by the machine
		latch.Tick()
		fmt.Print(render(screen, vm))

		if *frames > 0 && vm.Frames() >= uint64(*frames) {
			return nil
		}
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
