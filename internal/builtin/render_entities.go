package builtin

import (
	"cartforge/internal/asm6502"
	"cartforge/internal/codeblock"
)

// renderEntities is the SUBROUTINE that converts up to
// MaxSceneEntities 4-byte entity records at $0200 into 4-byte OAM
// records at $0300. Both arrays share the same stride (4 bytes per
// slot), so a single X-indexed loop drives both reads and writes
// (spec.md §4.7).
type renderEntities struct{}

// NewRenderEntities builds the render_entities block.
func NewRenderEntities() codeblock.Block { return &renderEntities{} }

func (r *renderEntities) Label() string        { return LabelRenderEntities }
func (r *renderEntities) Kind() codeblock.Kind { return codeblock.Subroutine }

func (r *renderEntities) Dependencies() []string {
	return []string{LabelZPEntityRAMPage, LabelZPSpriteRAMPage}
}

func (r *renderEntities) OptionalDependencies() []string { return nil }

func (r *renderEntities) Size() (int, error) {
	return len(r.render(0)), nil
}

func (r *renderEntities) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	zpSpriteRAMPage := byte(resolved[LabelZPSpriteRAMPage])
	return codeblock.Rendered{
		Bytes:    r.render(zpSpriteRAMPage),
		Exported: map[string]uint16{r.Label(): uint16(startOffset)},
	}, nil
}

func (r *renderEntities) render(zpSpriteRAMPage byte) []byte {
	e := asm6502.New()

	e.LdxImm(0x00)
	loopOffset := e.Len()

	e.LdaAbsX(entityRAMBase)     // entity x
	e.Pha()                      // stashed for the OAM x byte (4th)
	e.LdaAbsX(entityRAMBase + 1) // entity y -> OAM byte 0
	e.StaAbsX(oamShadowBase)
	e.LdaAbsX(entityRAMBase + 2) // spriteset tile index -> OAM byte 1
	e.StaAbsX(oamShadowBase + 1)
	e.LdaAbsX(entityRAMBase + 3) // palette index -> OAM byte 2 low bits
	e.AndImm(0x03)
	e.StaAbsX(oamShadowBase + 2)
	e.Pla()
	e.StaAbsX(oamShadowBase + 3) // OAM byte 3: entity x

	e.Inx()
	e.Inx()
	e.Inx()
	e.Inx()
	e.CpxImm(0x00) // X wraps 256 -> 0 after MaxSceneEntities*4 steps
	bne := e.Bne()
	if err := e.ResolveBranch(bne, loopOffset); err != nil {
		panic(err)
	}

	e.LdaImm(0x03)
	e.StaZp(zpSpriteRAMPage)
	e.Rts()

	return e.Bytes()
}
