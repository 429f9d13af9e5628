package chip8

import (
	"errors"

	"github.com/tliron/commonlog"
)

// Step fetches, decodes and executes one instruction. It does nothing while
// the machine is waiting for a key.
//
// Faults (bad memory accesses, stack overflow/underflow) never stop the
// machine: the offending access is skipped, the fault is logged and also
// returned as a *Fault for callers that want to observe it.
func (m *Machine) Step() error {
	if m.KeyWaiting {
		return nil
	}

	pc := m.PC
	hi, errHi := m.ReadByte(int(pc))
	lo, errLo := m.ReadByte(int(pc) + 1)
	ins := Decode(uint16(hi)<<8 | uint16(lo))
	m.PC += 2

	if m.log.AllowLevel(commonlog.Debug) {
		m.log.Debugf("%04X: %04X  %s", pc, ins.Word, ins)
	}

	err := errors.Join(errHi, errLo, m.execute(ins))
	m.cycles++
	if err == nil {
		return nil
	}

	fault := &Fault{PC: pc, Instruction: ins, Err: err}
	m.log.Errorf("%s", fault)
	return fault
}

func (m *Machine) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpUnknown, OpSYS:
		// no-op

	case OpCLS:
		m.display.Clear()

	case OpRET:
		return m.Return()

	case OpJP:
		m.PC = ins.NNN

	case OpCALL:
		return m.Call(ins.NNN)

	case OpSEByte:
		m.skipIf(m.V[x] == ins.KK)

	case OpSNEByte:
		m.skipIf(m.V[x] != ins.KK)

	case OpSEReg:
		m.skipIf(m.V[x] == m.V[y])

	case OpSNEReg:
		m.skipIf(m.V[x] != m.V[y])

	case OpLDByte:
		m.V[x] = ins.KK

	case OpADDByte:
		m.V[x] += ins.KK

	case OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSHR, OpSUBN, OpSHL:
		m.alu(ins)

	case OpLDI:
		m.I = ins.NNN

	case OpJPV0:
		sel := uint8(0)
		if m.quirks.JumpUsesVX {
			sel = x
		}
		m.PC = (ins.NNN + uint16(m.V[sel])) & 0x0FFF

	case OpRND:
		m.V[x] = byte(m.rng.UintN(256)) & ins.KK

	case OpDRW:
		return m.draw(x, y, ins.N)

	case OpSKP:
		m.skipIf(m.keypad.IsKeyDown(m.V[x] & 0x0F))

	case OpSKNP:
		m.skipIf(!m.keypad.IsKeyDown(m.V[x] & 0x0F))

	case OpLDVxDT:
		m.V[x] = m.DT

	case OpLDVxK:
		m.beginKeyWait(x)

	case OpLDDTVx:
		m.DT = m.V[x]

	case OpLDSTVx:
		m.ST = m.V[x]

	case OpADDI:
		m.I = (m.I + uint16(m.V[x])) & 0x0FFF

	case OpLDF:
		m.I = FontAddress + GlyphSize*uint16(m.V[x]&0x0F)

	case OpLDB:
		return m.storeBCD(x)

	case OpLDIVx:
		return m.storeRegisters(x)

	case OpLDVxI:
		return m.loadRegisters(x)
	}
	return nil
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// alu executes the 8xy_ family. VF is written last so that it holds the
// flag even when x is F.
func (m *Machine) alu(ins Instruction) {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpLDReg:
		m.V[x] = m.V[y]

	case OpOR, OpAND, OpXOR:
		switch ins.Op {
		case OpOR:
			m.V[x] |= m.V[y]
		case OpAND:
			m.V[x] &= m.V[y]
		case OpXOR:
			m.V[x] ^= m.V[y]
		}
		if m.quirks.VFResetOnLogic {
			m.V[VF] = 0
		}

	case OpADDReg:
		sum := int(m.V[x]) + int(m.V[y])
		m.V[x] = byte(sum)
		m.V[VF] = flag(sum >= 0x100)

	case OpSUB:
		diff := int(m.V[x]) - int(m.V[y])
		m.V[x] = byte(diff)
		m.V[VF] = flag(diff >= 0)

	case OpSUBN:
		diff := int(m.V[y]) - int(m.V[x])
		m.V[x] = byte(diff)
		m.V[VF] = flag(diff >= 0)

	case OpSHR:
		if m.quirks.ShiftUsesVY {
			m.V[x] = m.V[y]
		}
		out := m.V[x] & 0x01
		m.V[x] >>= 1
		m.V[VF] = out

	case OpSHL:
		if m.quirks.ShiftUsesVY {
			m.V[x] = m.V[y]
		}
		out := (m.V[x] >> 7) & 0x01
		m.V[x] <<= 1
		m.V[VF] = out
	}
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// storeBCD writes the hundreds, tens and units of Vx to I, I+1, I+2.
func (m *Machine) storeBCD(x uint8) error {
	val := m.V[x]
	var errs []error
	for offset := 2; offset >= 0; offset-- {
		if err := m.WriteByte(int(m.I)+offset, val%10); err != nil {
			errs = append(errs, err)
		}
		val /= 10
	}
	return errors.Join(errs...)
}

func (m *Machine) storeRegisters(x uint8) error {
	var errs []error
	for i := 0; i <= int(x); i++ {
		if err := m.WriteByte(int(m.I)+i, m.V[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if m.quirks.MemoryIncrementsI {
		m.I += uint16(x) + 1
	}
	return errors.Join(errs...)
}

func (m *Machine) loadRegisters(x uint8) error {
	var errs []error
	for i := 0; i <= int(x); i++ {
		val, err := m.ReadByte(int(m.I) + i)
		if err != nil {
			errs = append(errs, err)
		}
		m.V[i] = val
	}
	if m.quirks.MemoryIncrementsI {
		m.I += uint16(x) + 1
	}
	return errors.Join(errs...)
}
