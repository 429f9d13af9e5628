package asm

import (
	"fmt"
	"io"

	"gochip8/pkg/chip8"
)

// Line is one disassembled instruction.
type Line struct {
	Address     uint16
	Word        uint16
	Instruction chip8.Instruction
	// Odd is set for a trailing single byte, which has no instruction.
	Odd bool
}

func (l Line) String() string {
	if l.Odd {
		return fmt.Sprintf("%04X: %02X    .BYTE $%02X", l.Address, l.Word, l.Word)
	}
	return fmt.Sprintf("%04X: %04X  %s", l.Address, l.Word, l.Instruction)
}

// Disassemble decodes rom, assumed loaded at Origin, two bytes at a time.
// Data mixed into the code is decoded like anything else.
func Disassemble(rom []byte) []Line {
	lines := make([]Line, 0, len(rom)/2+1)
	for i := 0; i < len(rom); i += 2 {
		addr := uint16(Origin + i)
		if i+1 == len(rom) {
			lines = append(lines, Line{Address: addr, Word: uint16(rom[i]), Odd: true})
			break
		}
		word := uint16(rom[i])<<8 | uint16(rom[i+1])
		lines = append(lines, Line{Address: addr, Word: word, Instruction: chip8.Decode(word)})
	}
	return lines
}

// WriteListing writes the disassembly of rom to w, one instruction per line.
func WriteListing(w io.Writer, rom []byte) error {
	for _, l := range Disassemble(rom) {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
