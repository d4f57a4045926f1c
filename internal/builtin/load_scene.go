package builtin

import (
	"cartforge/internal/asm6502"
	"cartforge/internal/codeblock"
)

// loadScene is the SUBROUTINE that parses the scene record pointed to
// by zp__src1, programs PPU palette RAM, and copies the scene's
// entity records into entity RAM at $0200 (spec.md §4.7).
//
// Scene record layout: byte 0 backdrop color; bytes 1-2 background
// palette pointer (0 = none); bytes 3-4 sprite palette pointer
// (0 = none); bytes 5... null-terminated 2-byte entity addresses.
type loadScene struct{}

// NewLoadScene builds the load_scene block.
func NewLoadScene() codeblock.Block { return &loadScene{} }

func (l *loadScene) Label() string        { return LabelLoadScene }
func (l *loadScene) Kind() codeblock.Kind { return codeblock.Subroutine }

func (l *loadScene) Dependencies() []string {
	return []string{LabelZPSrc1, LabelZPSrc2, LabelZPEntityRAMPage}
}

func (l *loadScene) OptionalDependencies() []string { return nil }

func (l *loadScene) stubResolved() map[string]uint16 {
	return map[string]uint16{
		LabelZPSrc1:          0x10,
		LabelZPSrc2:          0x12,
		LabelZPEntityRAMPage: 0x14,
	}
}

func (l *loadScene) Size() (int, error) {
	code := l.render(0, l.stubResolved())
	return len(code), nil
}

func (l *loadScene) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	code := l.render(startOffset, resolved)
	return codeblock.Rendered{Bytes: code, Exported: map[string]uint16{l.Label(): uint16(startOffset)}}, nil
}

// palettePatternBody emits the unrolled 4-subpalette upload of a
// background or sprite palette: 3 bytes per subpalette read through
// (zpSrc2),Y, with the backdrop byte re-emitted (read via
// (zpSrc1),Y=0) after subpalettes 0, 1, and 2 to satisfy the PPU's
// palette-mirror quirk at $3F04/$3F08/$3F0C (or $3F14/$3F18/$3F1C).
func palettePatternBody(zpSrc1, zpSrc2 byte) []byte {
	e := asm6502.New()
	for sub := 0; sub < 4; sub++ {
		for b := 0; b < 3; b++ {
			e.LdyImm(byte(sub*3 + b))
			e.LdaIndY(zpSrc2)
			e.StaAbs(ppuData)
		}
		if sub < 3 {
			e.LdyImm(0x00)
			e.LdaIndY(zpSrc1)
			e.StaAbs(ppuData)
		}
	}
	return e.Bytes()
}

// guardedPaletteSection appends to e, at absolute code address
// baseAddr+e.Len(), the sequence: read the 2-byte pointer at scene
// record offset ptrLoY/ptrLoY+1 into zpSrc2; if zero, skip the
// subpalette upload entirely; otherwise upload all 4 subpalettes. A
// short conditional branch plus an unconditional absolute jump skips
// the (possibly long) unrolled body, so the branch itself never risks
// exceeding the 6502's signed 8-bit range regardless of body size.
func guardedPaletteSection(e *asm6502.Encoder, baseAddr int, ptrLoY byte, zpSrc1, zpSrc2 byte) {
	e.LdyImm(ptrLoY)
	e.LdaIndY(zpSrc1)
	e.StaZp(zpSrc2)
	e.Iny()
	e.LdaIndY(zpSrc1)
	e.StaZp(zpSrc2 + 1)

	e.LdaZp(zpSrc2)
	e.OraZp(zpSrc2 + 1)
	bne := e.Bne()

	body := palettePatternBody(zpSrc1, zpSrc2)
	skipTarget := baseAddr + e.Len() + 3 + len(body)
	e.JmpAbs(uint16(skipTarget))
	if err := e.ResolveBranchHere(bne); err != nil {
		// The guard-to-body distance is a handful of bytes; it can
		// never exceed the branch range.
		panic(err)
	}
	e.Raw(body)
}

func (l *loadScene) render(startOffset int, resolved map[string]uint16) []byte {
	zpSrc1 := byte(resolved[LabelZPSrc1])
	zpSrc2 := byte(resolved[LabelZPSrc2])
	zpEntityRAMPage := byte(resolved[LabelZPEntityRAMPage])

	e := asm6502.New()

	// Reset PPU address latch, then point PPUADDR at $3F00.
	e.LdaAbs(ppuStatus)
	e.LdaImm(0x3F)
	e.StaAbs(ppuAddr)
	e.LdaImm(0x00)
	e.StaAbs(ppuAddr)

	// Backdrop color (scene record byte 0) -> $3F00.
	e.LdyImm(0x00)
	e.LdaIndY(zpSrc1)
	e.StaAbs(ppuData)

	// Background palette (scene record bytes 1-2), if present.
	guardedPaletteSection(e, startOffset, 0x01, zpSrc1, zpSrc2)

	// Sprite palette: point PPUADDR at $3F10, emit backdrop there too.
	e.LdaImm(0x3F)
	e.StaAbs(ppuAddr)
	e.LdaImm(0x10)
	e.StaAbs(ppuAddr)
	e.LdyImm(0x00)
	e.LdaIndY(zpSrc1)
	e.StaAbs(ppuData)

	// Sprite palette (scene record bytes 3-4), if present.
	guardedPaletteSection(e, startOffset, 0x03, zpSrc1, zpSrc2)

	// Copy the null-terminated entity address list into entity RAM
	// at $0200, 4 bytes per entity. X tracks the destination offset,
	// Y the scene-record read cursor; Y is saved/restored around the
	// inner 4-byte copy, which re-purposes it as the (zp__src2),Y
	// index.
	e.LdxImm(0x00)
	e.LdyImm(0x05)
	loopAddr := startOffset + e.Len()

	e.LdaIndY(zpSrc1)
	e.StaZp(zpSrc2)
	e.Iny()
	e.LdaIndY(zpSrc1)
	e.StaZp(zpSrc2 + 1)
	e.Iny()
	e.LdaZp(zpSrc2)
	e.OraZp(zpSrc2 + 1)
	beqDone := e.Beq()

	e.Tya()
	e.Pha()
	e.LdyImm(0x00)
	for i := 0; i < 4; i++ {
		e.LdaIndY(zpSrc2)
		e.StaAbsX(entityRAMBase)
		e.Inx()
		if i < 3 {
			e.Iny()
		}
	}
	e.Pla()
	e.Tay()
	e.JmpAbs(uint16(loopAddr))

	if err := e.ResolveBranchHere(beqDone); err != nil {
		panic(err)
	}

	e.LdaImm(0x02)
	e.StaZp(zpEntityRAMPage)

	e.LdaImm(0x80)
	e.StaAbs(ppuCtrl)
	e.LdaImm(0x1E)
	e.StaAbs(ppuMask)

	e.Rts()

	return e.Bytes()
}
