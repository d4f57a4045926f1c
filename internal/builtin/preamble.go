package builtin

import (
	"cartforge/internal/asm6502"
	"cartforge/internal/codeblock"
)

// preamble is the single RESET-region block: boot code that masks
// interrupts, resets the stack, parks the PPU, points zp__src1 at the
// initial scene, and hands off to load_scene before looping forever
// (spec.md §4.7).
type preamble struct {
	initialSceneLabel string
}

// NewPreamble builds the preamble block parameterized by the label of
// the game's initial scene.
func NewPreamble(initialSceneLabel string) codeblock.Block {
	return &preamble{initialSceneLabel: initialSceneLabel}
}

func (p *preamble) Label() string       { return LabelPreamble }
func (p *preamble) Kind() codeblock.Kind { return codeblock.Preamble }

func (p *preamble) Dependencies() []string {
	return []string{LabelZPSrc1, LabelLoadScene, p.initialSceneLabel}
}

func (p *preamble) OptionalDependencies() []string { return nil }

// stubResolved is a placeholder label map of valid width, used to
// measure this block's size before real addresses are known.
func (p *preamble) stubResolved() map[string]uint16 {
	return map[string]uint16{
		LabelZPSrc1:       0x10,
		LabelLoadScene:    0xC100,
		p.initialSceneLabel: 0xC200,
	}
}

func (p *preamble) Size() (int, error) {
	rendered, err := p.render(0, p.stubResolved())
	if err != nil {
		return 0, err
	}
	return len(rendered), nil
}

func (p *preamble) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	code, err := p.render(startOffset, resolved)
	if err != nil {
		return codeblock.Rendered{}, err
	}
	return codeblock.Rendered{Bytes: code, Exported: map[string]uint16{p.label(): uint16(startOffset)}}, nil
}

func (p *preamble) label() string { return LabelPreamble }

func (p *preamble) render(startOffset int, resolved map[string]uint16) ([]byte, error) {
	zpSrc1 := byte(resolved[LabelZPSrc1])
	sceneAddr := resolved[p.initialSceneLabel]
	loadSceneAddr := resolved[LabelLoadScene]

	e := asm6502.New()
	e.Sei()
	e.Cld()
	e.LdaImm(0x00)
	e.StaAbs(ppuCtrl) // disable NMI while booting
	e.LdxImm(0xFF)
	e.Txs()
	e.LdaImm(0x00)
	e.Tax()
	e.Tay()
	e.LdaImm(byte(sceneAddr))
	e.StaZp(zpSrc1)
	e.LdaImm(byte(sceneAddr >> 8))
	e.StaZp(zpSrc1 + 1)
	e.Jsr(loadSceneAddr)

	loopOffset := e.Len()
	loopAddr := uint16(startOffset + loopOffset)
	e.JmpAbs(loopAddr)

	return e.Bytes(), nil
}
