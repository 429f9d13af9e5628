// Package asm assembles CHIP-8 source written in Cowgod's mnemonics and
// disassembles ROMs back into listings.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

// Origin is the address the first assembled byte is loaded at.
const Origin = chip8.ProgramStart

var zeroOperandOps = map[string]uint16{
	"CLS": 0x00E0,
	"RET": 0x00EE,
}

// Vx, Vy register pairs.
var registerPairOps = map[string]uint16{
	"OR":   0x8001,
	"AND":  0x8002,
	"XOR":  0x8003,
	"SUB":  0x8005,
	"SUBN": 0x8007,
}

// Vx{, Vy} shifts; Vy defaults to V0.
var shiftOps = map[string]uint16{
	"SHR": 0x8006,
	"SHL": 0x800E,
}

var keyOps = map[string]uint16{
	"SKP":  0xE09E,
	"SKNP": 0xE0A1,
}

// Vx, byte | Vx, Vy
var compareOps = map[string][2]uint16{
	"SE":  {0x3000, 0x5000},
	"SNE": {0x4000, 0x9000},
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble returns the ROM image for code, to be loaded at Origin, and a
// source map from absolute address to 1-based source line.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		parsed = append(parsed, p)
	}

	if err := a.pass1(parsed); err != nil {
		return nil, nil, err
	}
	return a.pass2(parsed)
}

func (a *Assembler) pass1(lines []parsedLine) error {
	address := uint32(Origin)

	for _, p := range lines {
		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, p.lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p, address)
			if err != nil {
				return err
			}
			address = target
			continue
		}

		length, err := lineLength(p)
		if err != nil {
			return err
		}
		if address+length > chip8.MemorySize {
			return fmt.Errorf("program too large near line %d", p.lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []parsedLine) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for _, p := range lines {
		if p.mnemonic == "" {
			continue
		}

		address := uint32(Origin + len(program))

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p, address)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-address)...)
			continue

		case ".BYTE":
			sourceMap[uint16(address)] = p.lineNo
			for _, op := range p.operands {
				val, err := a.parseImmediate(op, 0xFF, p.lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue

		case ".WORD":
			sourceMap[uint16(address)] = p.lineNo
			for _, op := range p.operands {
				val, err := a.parseImmediate(op, 0xFFFF, p.lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}
			continue
		}

		word, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		sourceMap[uint16(address)] = p.lineNo
		program = append(program, byte(word>>8), byte(word))
	}

	return program, sourceMap, nil
}

func (a *Assembler) encode(p parsedLine) (uint16, error) {
	mnemonic, ops := p.mnemonic, p.operands

	expect := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operands on line %d", mnemonic, n, p.lineNo)
		}
		return nil
	}

	if opcode, ok := zeroOperandOps[mnemonic]; ok {
		if err := expect(0); err != nil {
			return 0, err
		}
		return opcode, nil
	}

	if opcode, ok := registerPairOps[mnemonic]; ok {
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.regReg(opcode, ops, p.lineNo)
	}

	if opcode, ok := shiftOps[mnemonic]; ok {
		if len(ops) == 1 {
			ops = append(ops, "V0")
		}
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 1 or 2 operands on line %d", mnemonic, p.lineNo)
		}
		return a.regReg(opcode, ops, p.lineNo)
	}

	if opcode, ok := keyOps[mnemonic]; ok {
		if err := expect(1); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], p.lineNo)
		if err != nil {
			return 0, err
		}
		return opcode | x<<8, nil
	}

	if opcodes, ok := compareOps[mnemonic]; ok {
		if err := expect(2); err != nil {
			return 0, err
		}
		if isRegister(ops[1]) {
			return a.regReg(opcodes[1], ops, p.lineNo)
		}
		return a.regByte(opcodes[0], ops, p.lineNo)
	}

	switch mnemonic {
	case "SYS", "CALL":
		if err := expect(1); err != nil {
			return 0, err
		}
		base := uint16(0x0000)
		if mnemonic == "CALL" {
			base = 0x2000
		}
		return a.addr(base, ops[0], p.lineNo)

	case "JP":
		switch len(ops) {
		case 1:
			return a.addr(0x1000, ops[0], p.lineNo)
		case 2:
			if !strings.EqualFold(ops[0], "V0") {
				return 0, fmt.Errorf("JP with offset must use V0 on line %d", p.lineNo)
			}
			return a.addr(0xB000, ops[1], p.lineNo)
		}
		return 0, fmt.Errorf("JP expects 1 or 2 operands on line %d", p.lineNo)

	case "RND":
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.regByte(0xC000, ops, p.lineNo)

	case "DRW":
		if err := expect(3); err != nil {
			return 0, err
		}
		word, err := a.regReg(0xD000, ops[:2], p.lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseImmediate(ops[2], 0xF, p.lineNo)
		if err != nil {
			return 0, err
		}
		return word | n, nil

	case "ADD":
		if err := expect(2); err != nil {
			return 0, err
		}
		if strings.EqualFold(ops[0], "I") {
			x, err := parseRegister(ops[1], p.lineNo)
			if err != nil {
				return 0, err
			}
			return 0xF01E | x<<8, nil
		}
		if isRegister(ops[1]) {
			return a.regReg(0x8004, ops, p.lineNo)
		}
		return a.regByte(0x7000, ops, p.lineNo)

	case "LD":
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeLoad(ops, p.lineNo)
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, mnemonic)
}

// encodeLoad handles the many forms of LD.
func (a *Assembler) encodeLoad(ops []string, lineNo int) (uint16, error) {
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	if isRegister(dst) {
		x, _ := parseRegister(dst, lineNo)
		switch {
		case isRegister(src):
			return a.regReg(0x8000, ops, lineNo)
		case src == "DT":
			return 0xF007 | x<<8, nil
		case src == "K":
			return 0xF00A | x<<8, nil
		case src == "[I]":
			return 0xF065 | x<<8, nil
		}
		return a.regByte(0x6000, ops, lineNo)
	}

	if dst == "I" {
		return a.addr(0xA000, ops[1], lineNo)
	}

	x, err := parseRegister(src, lineNo)
	if err != nil {
		return 0, err
	}
	switch dst {
	case "DT":
		return 0xF015 | x<<8, nil
	case "ST":
		return 0xF018 | x<<8, nil
	case "F":
		return 0xF029 | x<<8, nil
	case "B":
		return 0xF033 | x<<8, nil
	case "[I]":
		return 0xF055 | x<<8, nil
	}
	return 0, fmt.Errorf("invalid LD destination '%s' on line %d", ops[0], lineNo)
}

func (a *Assembler) regReg(opcode uint16, ops []string, lineNo int) (uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	y, err := parseRegister(ops[1], lineNo)
	if err != nil {
		return 0, err
	}
	return opcode | x<<8 | y<<4, nil
}

func (a *Assembler) regByte(opcode uint16, ops []string, lineNo int) (uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	kk, err := a.parseImmediate(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return opcode | x<<8 | kk, nil
}

func (a *Assembler) addr(opcode uint16, token string, lineNo int) (uint16, error) {
	nnn, err := a.parseImmediate(token, 0xFFF, lineNo)
	if err != nil {
		return 0, err
	}
	return opcode | nnn, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	return p, nil
}

func parseOrigin(p parsedLine, current uint32) (uint32, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", p.lineNo)
	}
	target, err := parseNumber(p.operands[0])
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", p.lineNo, p.operands[0])
	}
	if target >= chip8.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", p.lineNo, p.operands[0])
	}
	if uint32(target) < current {
		return 0, fmt.Errorf("cannot move origin backward on line %d", p.lineNo)
	}
	return uint32(target), nil
}

// lineLength is the number of bytes a non-.ORG line assembles to.
func lineLength(p parsedLine) (uint32, error) {
	switch p.mnemonic {
	case ".BYTE", ".WORD":
		if len(p.operands) == 0 {
			return 0, fmt.Errorf("%s expects at least one operand on line %d", p.mnemonic, p.lineNo)
		}
		if p.mnemonic == ".BYTE" {
			return uint32(len(p.operands)), nil
		}
		return uint32(2 * len(p.operands)), nil
	}
	if !isMnemonic(p.mnemonic) {
		return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}
	return 2, nil
}

func isMnemonic(m string) bool {
	if _, ok := zeroOperandOps[m]; ok {
		return true
	}
	if _, ok := registerPairOps[m]; ok {
		return true
	}
	if _, ok := shiftOps[m]; ok {
		return true
	}
	if _, ok := keyOps[m]; ok {
		return true
	}
	if _, ok := compareOps[m]; ok {
		return true
	}
	switch m {
	case "SYS", "CALL", "JP", "RND", "DRW", "ADD", "LD":
		return true
	}
	return false
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func isRegister(token string) bool {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return false
	}
	_, err := strconv.ParseUint(token[1:], 16, 4)
	return err == nil
}

func parseRegister(token string, lineNo int) (uint16, error) {
	if !isRegister(token) {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	x, _ := strconv.ParseUint(token[1:], 16, 4)
	return uint16(x), nil
}

// parseNumber accepts $hex, #hex, 0x/0b/0o prefixes and decimal.
func parseNumber(token string) (uint64, error) {
	if strings.HasPrefix(token, "$") || strings.HasPrefix(token, "#") {
		return strconv.ParseUint(token[1:], 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

func (a *Assembler) parseImmediate(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
