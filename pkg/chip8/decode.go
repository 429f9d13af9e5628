package chip8

import "fmt"

// Op identifies a decoded instruction.
type Op uint8

const (
	OpUnknown Op = iota
	OpSYS        // 0nnn
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEByte     // 3xkk
	OpSNEByte    // 4xkk
	OpSEReg      // 5xy0
	OpLDByte     // 6xkk
	OpADDByte    // 7xkk
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDReg     // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxkk
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpLDIVx      // Fx55
	OpLDVxI      // Fx65

	opCount
)

var mnemonics = [opCount]string{
	OpUnknown: ".WORD",
	OpSYS:     "SYS",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

// Mnemonic returns the assembler mnemonic for op.
func (op Op) Mnemonic() string {
	if op >= opCount {
		return mnemonics[OpUnknown]
	}
	return mnemonics[op]
}

// Instruction is a decoded 16-bit instruction word. All field values are
// taken from the word whether or not the op uses them.
type Instruction struct {
	Op   Op
	Word uint16

	NNN uint16 // low 12 bits
	N   uint8  // low nibble
	X   uint8  // bits 8-11
	Y   uint8  // bits 4-7
	KK  uint8  // low byte
}

// Decode splits word into its fields and identifies the instruction.
// Unrecognised words decode to OpUnknown, which executes as a no-op.
func Decode(word uint16) Instruction {
	ins := Instruction{
		Word: word,
		NNN:  word & 0x0FFF,
		N:    uint8(word & 0x000F),
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		KK:   uint8(word & 0x00FF),
	}
	ins.Op = decodeOp(ins)
	return ins
}

func decodeOp(ins Instruction) Op {
	switch ins.Word >> 12 {
	case 0x0:
		switch ins.Word {
		case 0x00E0:
			return OpCLS
		case 0x00EE:
			return OpRET
		}
		return OpSYS
	case 0x1:
		return OpJP
	case 0x2:
		return OpCALL
	case 0x3:
		return OpSEByte
	case 0x4:
		return OpSNEByte
	case 0x5:
		return OpSEReg
	case 0x6:
		return OpLDByte
	case 0x7:
		return OpADDByte
	case 0x8:
		switch ins.N {
		case 0x0:
			return OpLDReg
		case 0x1:
			return OpOR
		case 0x2:
			return OpAND
		case 0x3:
			return OpXOR
		case 0x4:
			return OpADDReg
		case 0x5:
			return OpSUB
		case 0x6:
			return OpSHR
		case 0x7:
			return OpSUBN
		case 0xE:
			return OpSHL
		}
	case 0x9:
		return OpSNEReg
	case 0xA:
		return OpLDI
	case 0xB:
		return OpJPV0
	case 0xC:
		return OpRND
	case 0xD:
		return OpDRW
	case 0xE:
		switch ins.KK {
		case 0x9E:
			return OpSKP
		case 0xA1:
			return OpSKNP
		}
	case 0xF:
		switch ins.KK {
		case 0x07:
			return OpLDVxDT
		case 0x0A:
			return OpLDVxK
		case 0x15:
			return OpLDDTVx
		case 0x18:
			return OpLDSTVx
		case 0x1E:
			return OpADDI
		case 0x29:
			return OpLDF
		case 0x33:
			return OpLDB
		case 0x55:
			return OpLDIVx
		case 0x65:
			return OpLDVxI
		}
	}
	return OpUnknown
}

// IsDraw reports whether word is a Dxyn sprite draw.
func IsDraw(word uint16) bool {
	return word>>12 == 0xD
}

// String formats the instruction in Cowgod's mnemonics, e.g. "DRW V0, V1, $5".
func (ins Instruction) String() string {
	name := ins.Op.Mnemonic()
	x, y := ins.X, ins.Y
	switch ins.Op {
	case OpCLS, OpRET:
		return name
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%s $%03X", name, ins.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%s V%X, $%02X", name, x, ins.KK)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSHR, OpSUBN, OpSHL:
		return fmt.Sprintf("%s V%X, V%X", name, x, y)
	case OpLDI:
		return fmt.Sprintf("%s I, $%03X", name, ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("%s V0, $%03X", name, ins.NNN)
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, $%X", name, x, y, ins.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, x)
	case OpLDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, x)
	case OpLDVxK:
		return fmt.Sprintf("%s V%X, K", name, x)
	case OpLDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, x)
	case OpLDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, x)
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, x)
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, x)
	case OpLDB:
		return fmt.Sprintf("%s B, V%X", name, x)
	case OpLDIVx:
		return fmt.Sprintf("%s [I], V%X", name, x)
	case OpLDVxI:
		return fmt.Sprintf("%s V%X, [I]", name, x)
	}
	return fmt.Sprintf("%s $%04X", name, ins.Word)
}
