// Package asm6502 provides a fluent, position-independent 6502
// instruction encoder. It emits opcode/operand bytes directly; there
// is no intermediate mnemonic representation and no external
// assembler dependency (spec.md §4.1, §9).
package asm6502

import "cartforge/internal/romerr"

// Encoder is a stateful byte buffer with one method per supported
// instruction + addressing mode. Methods append bytes and return the
// receiver so calls can be chained, mirroring the fluent builders used
// throughout the teacher's ROM tooling.
type Encoder struct {
	buf []byte
}

// New returns an empty Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Len returns the current byte offset, usable by callers to compute
// relative branch targets before a branch is even emitted.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Bytes returns the accumulated machine code.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) emit(b ...byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Raw appends a pre-built chunk of machine code verbatim, letting
// callers assemble a routine out of sub-sections whose length must be
// known before the section itself is embedded (e.g. a long forward
// jump around a block built with its own Encoder).
func (e *Encoder) Raw(b []byte) *Encoder {
	return e.emit(b...)
}

func lohi(addr uint16) (byte, byte) {
	return byte(addr & 0xFF), byte(addr >> 8)
}

// ===== Status register operations =====

func (e *Encoder) Sei() *Encoder { return e.emit(0x78) }
func (e *Encoder) Cli() *Encoder { return e.emit(0x58) }
func (e *Encoder) Sed() *Encoder { return e.emit(0xF8) }
func (e *Encoder) Cld() *Encoder { return e.emit(0xD8) }
func (e *Encoder) Sec() *Encoder { return e.emit(0x38) }
func (e *Encoder) Clc() *Encoder { return e.emit(0x18) }
func (e *Encoder) Clv() *Encoder { return e.emit(0xB8) }

// ===== Load/store =====

func (e *Encoder) LdaImm(v byte) *Encoder  { return e.emit(0xA9, v) }
func (e *Encoder) LdaZp(a byte) *Encoder   { return e.emit(0xA5, a) }
func (e *Encoder) LdaAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xAD, lo, hi)
}
func (e *Encoder) LdaIndY(zp byte) *Encoder { return e.emit(0xB1, zp) }
func (e *Encoder) LdaAbsX(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xBD, lo, hi)
}

func (e *Encoder) LdxImm(v byte) *Encoder { return e.emit(0xA2, v) }
func (e *Encoder) LdxZp(a byte) *Encoder  { return e.emit(0xA6, a) }
func (e *Encoder) LdxAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xAE, lo, hi)
}

func (e *Encoder) LdyImm(v byte) *Encoder { return e.emit(0xA0, v) }
func (e *Encoder) LdyZp(a byte) *Encoder  { return e.emit(0xA4, a) }
func (e *Encoder) LdyAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xAC, lo, hi)
}

func (e *Encoder) StaZp(a byte) *Encoder { return e.emit(0x85, a) }
func (e *Encoder) StaAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x8D, lo, hi)
}
func (e *Encoder) StaIndY(zp byte) *Encoder { return e.emit(0x91, zp) }
func (e *Encoder) StaAbsX(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x9D, lo, hi)
}
func (e *Encoder) StaAbsY(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x99, lo, hi)
}

func (e *Encoder) StxZp(a byte) *Encoder { return e.emit(0x86, a) }
func (e *Encoder) StxAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x8E, lo, hi)
}
func (e *Encoder) StyZp(a byte) *Encoder { return e.emit(0x84, a) }
func (e *Encoder) StyAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x8C, lo, hi)
}

// ===== Register transfer =====

func (e *Encoder) Tax() *Encoder { return e.emit(0xAA) }
func (e *Encoder) Tay() *Encoder { return e.emit(0xA8) }
func (e *Encoder) Txa() *Encoder { return e.emit(0x8A) }
func (e *Encoder) Tya() *Encoder { return e.emit(0x98) }
func (e *Encoder) Txs() *Encoder { return e.emit(0x9A) }
func (e *Encoder) Tsx() *Encoder { return e.emit(0xBA) }

// ===== Stack =====

func (e *Encoder) Pha() *Encoder { return e.emit(0x48) }
func (e *Encoder) Php() *Encoder { return e.emit(0x08) }
func (e *Encoder) Pla() *Encoder { return e.emit(0x68) }
func (e *Encoder) Plp() *Encoder { return e.emit(0x28) }

// ===== Increment/decrement =====

func (e *Encoder) IncZp(a byte) *Encoder { return e.emit(0xE6, a) }
func (e *Encoder) IncAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xEE, lo, hi)
}
func (e *Encoder) Inx() *Encoder { return e.emit(0xE8) }
func (e *Encoder) Iny() *Encoder { return e.emit(0xC8) }

func (e *Encoder) DecZp(a byte) *Encoder { return e.emit(0xC6, a) }
func (e *Encoder) DecAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0xCE, lo, hi)
}
func (e *Encoder) Dex() *Encoder { return e.emit(0xCA) }
func (e *Encoder) Dey() *Encoder { return e.emit(0x88) }

// ===== Jumps and calls =====

func (e *Encoder) JmpAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x4C, lo, hi)
}
func (e *Encoder) JmpInd(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x6C, lo, hi)
}
func (e *Encoder) Jsr(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x20, lo, hi)
}
func (e *Encoder) Rts() *Encoder { return e.emit(0x60) }
func (e *Encoder) Rti() *Encoder { return e.emit(0x40) }

// ===== Bitwise =====

func (e *Encoder) AndImm(v byte) *Encoder { return e.emit(0x29, v) }
func (e *Encoder) OraImm(v byte) *Encoder { return e.emit(0x09, v) }
func (e *Encoder) OraZp(a byte) *Encoder  { return e.emit(0x05, a) }
func (e *Encoder) EorImm(v byte) *Encoder { return e.emit(0x49, v) }
func (e *Encoder) BitZp(a byte) *Encoder  { return e.emit(0x24, a) }
func (e *Encoder) BitAbs(a uint16) *Encoder {
	lo, hi := lohi(a)
	return e.emit(0x2C, lo, hi)
}

// ===== Arithmetic / comparison =====

func (e *Encoder) AdcImm(v byte) *Encoder { return e.emit(0x69, v) }
func (e *Encoder) CmpImm(v byte) *Encoder { return e.emit(0xC9, v) }
func (e *Encoder) CpxImm(v byte) *Encoder { return e.emit(0xE0, v) }
func (e *Encoder) CpyImm(v byte) *Encoder { return e.emit(0xC0, v) }

// ===== Miscellaneous =====

func (e *Encoder) Nop() *Encoder { return e.emit(0xEA) }
func (e *Encoder) Brk() *Encoder { return e.emit(0x00) }

// BranchPatch is a handle to an emitted relative-branch instruction
// whose offset byte has not yet been resolved. Branch methods return
// this instead of *Encoder, so a branch cannot be chained like other
// instructions and the caller holds the handle ResolveBranch needs
// (spec.md §9).
type BranchPatch struct {
	site int // offset of the opcode byte within the encoder's buffer
}

func (e *Encoder) branch(opcode byte) *BranchPatch {
	site := len(e.buf)
	e.emit(opcode, 0x00)
	return &BranchPatch{site: site}
}

func (e *Encoder) Bne() *BranchPatch { return e.branch(0xD0) }
func (e *Encoder) Beq() *BranchPatch { return e.branch(0xF0) }
func (e *Encoder) Bpl() *BranchPatch { return e.branch(0x10) }
func (e *Encoder) Bmi() *BranchPatch { return e.branch(0x30) }
func (e *Encoder) Bcc() *BranchPatch { return e.branch(0x90) }
func (e *Encoder) Bcs() *BranchPatch { return e.branch(0xB0) }
func (e *Encoder) Bvc() *BranchPatch { return e.branch(0x50) }
func (e *Encoder) Bvs() *BranchPatch { return e.branch(0x70) }

// ResolveBranch patches p's offset byte so the branch lands at
// targetOffset (an offset within this same encoder's buffer). The
// 6502 measures the offset from the byte following the 2-byte branch
// instruction, so offset = targetOffset - (site + 2).
func (e *Encoder) ResolveBranch(p *BranchPatch, targetOffset int) error {
	rel := targetOffset - (p.site + 2)
	if rel < -128 || rel > 127 {
		return romerr.New(romerr.BranchOutOfRange, "asm6502", "branch at offset %d to target %d: relative offset %d out of [-128,127]", p.site, targetOffset, rel)
	}
	e.buf[p.site+1] = byte(int8(rel))
	return nil
}

// ResolveBranchHere resolves p against the encoder's current offset,
// the common case of "branch forward to right after this block".
func (e *Encoder) ResolveBranchHere(p *BranchPatch) error {
	return e.ResolveBranch(p, e.Len())
}
