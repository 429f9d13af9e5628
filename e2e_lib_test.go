package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/display"
	"gochip8/pkg/quirks"
)

// assembleAndRun assembles src, runs it for frames frames and returns the
// machine and its screen.
func assembleAndRun(t *testing.T, src string, q quirks.Quirks, frames int) (*chip8.Machine, *display.Screen) {
	t.Helper()
	rom, _, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v\nSource:\n%s", err, src)
	}

	screen := display.New()
	vm := chip8.New(chip8.Config{
		InstructionsPerFrame: chip8.DefaultInstructionsPerFrame,
		Quirks:               q,
		Display:              screen,
	})
	vm.LoadROM(rom)
	if err := vm.RunFrames(frames); err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	return vm, screen
}

func TestHexDigitsApp(t *testing.T) {
	// Draws the glyphs 0-F in a row, then halts in a loop.
	src := `
    LD V0, 0        ; glyph
    LD V1, 0        ; x
    LD V2, 0        ; y
next:
    LD F, V0
    DRW V1, V2, 5
    ADD V1, 4
    ADD V0, 1
    SE V0, 16
    JP next
done:
    JP done
`
	vm, screen := assembleAndRun(t, src, quirks.Default(), 60)

	if vm.V[0] != 16 {
		t.Errorf("Expected V0=16, got %d", vm.V[0])
	}
	if vm.V[0xF] != 0 {
		t.Errorf("Expected no collision, got VF=%d", vm.V[0xF])
	}

	want := 0
	for _, b := range chip8.Font {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				want++
			}
		}
	}
	if got := screen.Lit(); got != want {
		t.Errorf("Expected %d lit pixels, got %d", want, got)
	}

	// Glyph 1 sits at x=4: its top row is 0x20.
	if !screen.Pixel(6, 0) || screen.Pixel(4, 0) {
		t.Errorf("Glyph 1 top row drawn incorrectly")
	}
}

func TestCountdownTimerApp(t *testing.T) {
	// Waits on the delay timer, then sounds the beeper and records the
	// BCD of a counter.
	src := `
    LD V0, 30
    LD DT, V0
wait:
    LD V1, DT
    SE V1, 0
    JP wait
    LD V2, 5
    LD ST, V2
    LD V3, 234
    LD I, out
    LD B, V3
    LD V2, [I]
done:
    JP done
out:
    .BYTE 0, 0, 0
`
	vm, _ := assembleAndRun(t, src, quirks.Default(), 40)

	if vm.DT != 0 {
		t.Errorf("Expected DT=0, got %d", vm.DT)
	}
	if vm.V[0] != 2 || vm.V[1] != 3 || vm.V[2] != 4 {
		t.Errorf("Expected V0..V2 = 2,3,4, got %d,%d,%d", vm.V[0], vm.V[1], vm.V[2])
	}
	// out is at 0x218; the load advanced I past its three bytes.
	if vm.I != 0x21B {
		t.Errorf("Expected I=0x21B, got 0x%03X", vm.I)
	}
	if vm.ST != 0 {
		t.Errorf("Expected ST=0, got %d", vm.ST)
	}
}

func TestSubroutineApp(t *testing.T) {
	src := `
    LD V0, 0
    CALL twice
    CALL twice
    CALL twice
done:
    JP done

twice:
    CALL once
    CALL once
    RET

once:
    ADD V0, 1
    RET
`
	vm, _ := assembleAndRun(t, src, quirks.Default(), 2)
	if vm.V[0] != 6 {
		t.Errorf("Expected V0=6, got %d", vm.V[0])
	}
	if vm.SP != 0 {
		t.Errorf("Expected empty stack, got SP=%d", vm.SP)
	}
}

func TestBounceWrapsWithoutClipping(t *testing.T) {
	// A 2-pixel-wide bar drawn at x=63 lands on both edges only when
	// sprites wrap.
	src := `
    LD V0, 63
    LD V1, 0
    LD I, bar
    DRW V0, V1, 1
done:
    JP done
bar:
    .BYTE $C0
`
	for _, clip := range []bool{true, false} {
		q := quirks.Default()
		q.ClipSprites = clip
		_, screen := assembleAndRun(t, src, q, 2)
		if !screen.Pixel(63, 0) {
			t.Errorf("clip=%v: expected pixel (63,0) lit", clip)
		}
		if screen.Pixel(0, 0) == clip {
			t.Errorf("clip=%v: expected pixel (0,0) lit=%v", clip, !clip)
		}
	}
}

func TestRunBinary(t *testing.T) {
	dir := t.TempDir()
	rom, _, err := asm.Assemble(`
    LD V5, $42
    LD V0, 3
    LD ST, V0
    LD F, V5
    CLS
    DRW V1, V1, 5
done: JP done
`)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	path := filepath.Join(dir, "prog.ch8")
	if err := writeBinary(path, rom); err != nil {
		t.Fatalf("writeBinary: %v", err)
	}

	var out bytes.Buffer
	screen, err := runBinary(&out, path, config.Default(), 10)
	if err != nil {
		t.Fatalf("runBinary: %v", err)
	}

	text := out.String()
	for _, want := range []string{"frames=10", "beep=3", "V5=42", "state=running"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
	if screen.Lit() == 0 {
		t.Errorf("Expected a glyph on screen")
	}

	if _, err := runBinary(&out, filepath.Join(dir, "missing.ch8"), config.Default(), 1); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"game.asm":     "game.ch8",
		"dir/prog.s":   "dir/prog.ch8",
		"noext":        "noext.ch8",
		"a.b/game.asm": "a.b/game.ch8",
	}
	for in, want := range tests {
		if got := defaultOutputPath(in); got != want {
			t.Errorf("defaultOutputPath(%q): expected %q, got %q", in, want, got)
		}
	}
}
