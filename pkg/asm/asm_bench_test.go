package asm

import "testing"

// smallProgram is a counter loop.
const smallProgram = `
    LD V0, 10
    LD V1, 0
loop:
    ADD V1, V0
    ADD V0, $FF     ; V0 -= 1
    SE V0, 0
    JP loop
end:
    JP end
`

// mediumProgram bounces a glyph around the screen, beeps on each wall hit
// and waits a few frames between moves.
const mediumProgram = `
    JP main

; ---- draw glyph V2 at (V0, V1) ----
draw:
    LD F, V2
    DRW V0, V1, 5
    RET

; ---- wait V3 frames ----
wait:
    LD DT, V3
wait_loop:
    LD V4, DT
    SE V4, 0
    JP wait_loop
    RET

; ---- bounce helpers ----
flip_dx:
    LD V4, 0
    SUBN V5, V4     ; V5 = -V5
    LD V4, 2
    LD ST, V4
    RET

flip_dy:
    LD V4, 0
    SUBN V6, V4
    LD V4, 2
    LD ST, V4
    RET

main:
    CLS
    LD V0, 10
    LD V1, 4
    LD V2, $A
    LD V3, 2
    LD V5, 1
    LD V6, 1
frame:
    CALL draw
    CALL wait
    CALL draw
    ADD V0, V5
    ADD V1, V6
    SNE V0, 0
    CALL flip_dx
    SNE V0, 59
    CALL flip_dx
    SNE V1, 0
    CALL flip_dy
    SNE V1, 26
    CALL flip_dy
    SKNP V2
    JP key
    JP frame
key:
    LD V7, K
    LD B, V7
    LD I, scratch
    LD [I], V2
    LD V2, [I]
    JP frame

scratch:
    .BYTE 0, 0, 0
    .WORD $ABCD
`

func BenchmarkAssemble_Small(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, err := Assemble(smallProgram)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_Medium(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, err := Assemble(mediumProgram)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDisassemble(b *testing.B) {
	rom, _, err := Assemble(mediumProgram)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Disassemble(rom)
	}
}
