// Package builtin implements the fixed set of code blocks every ROM
// carries regardless of game content: zero-page scratch variables,
// the reset preamble, the scene-loading subroutine, the entity/sprite
// renderers, and the NMI composition anchors (spec.md §4.7).
package builtin

import "cartforge/internal/codeblock"

// Fixed built-in labels, referenced by name throughout the package
// and by the layout engine.
const (
	LabelZPSrc1          = "zp__src1"
	LabelZPSrc2          = "zp__src2"
	LabelZPEntityRAMPage = "zp__entity_ram_page"
	LabelZPSpriteRAMPage = "zp__sprite_ram_page"
	LabelLoadScene       = "load_scene"
	LabelRenderEntities  = "render_entities"
	LabelRenderSprites   = "render_sprites"
	LabelPreamble        = "preamble"
	LabelUpdateHandler   = "update_handler"
	LabelVBlankHandler   = "vblank_handler"
)

// MaxSceneEntities bounds how many entity slots render_entities
// processes per frame; it doubles as the OAM capacity (64 sprites).
const MaxSceneEntities = 64

// PPU / hardware register addresses (spec.md §6).
const (
	ppuCtrl   = 0x2000
	ppuMask   = 0x2001
	ppuStatus = 0x2002
	ppuAddr   = 0x2006
	ppuData   = 0x2007
	oamDMA    = 0x4014

	palBackgroundBase = 0x3F00
	palSpriteBase     = 0x3F10

	entityRAMBase = 0x0200
	oamShadowBase = 0x0300
)

// zeropageVar is a ZEROPAGE block: it occupies 1 or 2 bytes of zero
// page, emits no bytes of its own, and exports its assigned zero-page
// address into the resolved-labels map.
type zeropageVar struct {
	label string
	size  int
}

func newZeropageVar(label string, size int) *zeropageVar {
	return &zeropageVar{label: label, size: size}
}

func (z *zeropageVar) Label() string                 { return z.label }
func (z *zeropageVar) Kind() codeblock.Kind           { return codeblock.Zeropage }
func (z *zeropageVar) Dependencies() []string         { return nil }
func (z *zeropageVar) OptionalDependencies() []string { return nil }
func (z *zeropageVar) Size() (int, error)             { return z.size, nil }

func (z *zeropageVar) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	return codeblock.Rendered{
		Bytes:    nil,
		Exported: map[string]uint16{z.label: uint16(startOffset)},
	}, nil
}

// ZPSrc1 is a 16-bit zero-page scratch word: the generic "pointer to
// the thing currently being processed" (a scene record while
// load_scene runs).
func ZPSrc1() codeblock.Block { return newZeropageVar(LabelZPSrc1, 2) }

// ZPSrc2 is a second 16-bit zero-page scratch word, used when a
// routine needs to dereference a second pointer while the first is
// still live (e.g. a palette pointer read out of the scene record
// load_scene is already walking via ZPSrc1).
func ZPSrc2() codeblock.Block { return newZeropageVar(LabelZPSrc2, 2) }

// ZPEntityRAMPage records which page entity records were last copied
// to (always $02 once load_scene has run).
func ZPEntityRAMPage() codeblock.Block { return newZeropageVar(LabelZPEntityRAMPage, 1) }

// ZPSpriteRAMPage records which page OAM shadow data lives at (always
// $03 once render_entities has run); render_sprites DMAs this page.
func ZPSpriteRAMPage() codeblock.Block { return newZeropageVar(LabelZPSpriteRAMPage, 1) }
