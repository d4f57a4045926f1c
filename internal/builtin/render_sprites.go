package builtin

import (
	"cartforge/internal/asm6502"
	"cartforge/internal/codeblock"
)

// renderSprites is the VBLANK block that triggers OAM DMA, copying
// the 256-byte OAM shadow page into PPU sprite memory. It is placed
// directly in the NMI_VBLANK region by the layout engine; there is no
// wrapping subroutine call (spec.md §4.7, §9).
type renderSprites struct{}

// NewRenderSprites builds the render_sprites block.
func NewRenderSprites() codeblock.Block { return &renderSprites{} }

func (r *renderSprites) Label() string        { return LabelRenderSprites }
func (r *renderSprites) Kind() codeblock.Kind { return codeblock.Vblank }

func (r *renderSprites) Dependencies() []string         { return []string{LabelZPSpriteRAMPage} }
func (r *renderSprites) OptionalDependencies() []string { return nil }

func (r *renderSprites) Size() (int, error) {
	return len(r.render(0)), nil
}

func (r *renderSprites) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	zpSpriteRAMPage := byte(resolved[LabelZPSpriteRAMPage])
	return codeblock.Rendered{
		Bytes:    r.render(zpSpriteRAMPage),
		Exported: map[string]uint16{r.Label(): uint16(startOffset)},
	}, nil
}

func (r *renderSprites) render(zpSpriteRAMPage byte) []byte {
	e := asm6502.New()
	e.LdaZp(zpSpriteRAMPage)
	e.StaAbs(oamDMA)
	e.Nop() // lets the ~513-cycle DMA stall settle before the NMI routine continues
	return e.Bytes()
}
