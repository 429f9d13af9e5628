package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
)

// Fault is a non-fatal error raised while executing one instruction. The
// instruction still completes; the faulting access is skipped.
type Fault struct {
	PC          uint16 // address the instruction was fetched from
	Instruction Instruction
	Err         error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v @ %04X", f.Instruction.Op.Mnemonic(), f.Err, f.PC)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// ReadByte returns the byte at addr. Addresses outside memory read as 0 and
// return ErrAddressOutOfRange.
func (m *Machine) ReadByte(addr int) (byte, error) {
	if addr < 0 || addr >= MemorySize {
		return 0, fmt.Errorf("read %X: %w", addr, ErrAddressOutOfRange)
	}
	return m.Memory[addr], nil
}

// WriteByte stores val at addr. Writes outside memory are dropped and return
// ErrAddressOutOfRange.
func (m *Machine) WriteByte(addr int, val byte) error {
	if addr < 0 || addr >= MemorySize {
		return fmt.Errorf("write %X: %w", addr, ErrAddressOutOfRange)
	}
	m.Memory[addr] = val
	return nil
}

// Call pushes PC and jumps to addr. A full stack refuses the call and
// leaves the machine unchanged.
func (m *Machine) Call(addr uint16) error {
	if int(m.SP) >= StackSize {
		return ErrStackOverflow
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = addr
	return nil
}

// Return pops the most recent return address into PC. An empty stack
// refuses the return and leaves the machine unchanged.
func (m *Machine) Return() error {
	if m.SP == 0 {
		return ErrStackUnderflow
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	return nil
}
