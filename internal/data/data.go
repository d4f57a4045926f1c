// Package data implements the DATA and CHR code-block emitters:
// palette tables, scene records, entity records, sprite-set CHR
// bytes, and generic address words (spec.md §4.8), grounded on
// original_source/backend/core/rom/data.py.
package data

import (
	"encoding/binary"

	"cartforge/internal/codeblock"
	"cartforge/internal/romerr"
)

// PaletteData emits a flat run of hardware color indices, three per
// sub-palette. It has no dependencies; its byte size never depends on
// resolved labels.
type PaletteData struct {
	label    string
	palettes [][3]uint8
}

// NewPaletteData builds a PaletteData block for the given label and
// ordered sub-palettes.
func NewPaletteData(label string, palettes [][3]uint8) *PaletteData {
	return &PaletteData{label: label, palettes: palettes}
}

func (p *PaletteData) Label() string                 { return p.label }
func (p *PaletteData) Kind() codeblock.Kind           { return codeblock.Data }
func (p *PaletteData) Dependencies() []string         { return nil }
func (p *PaletteData) OptionalDependencies() []string { return nil }

func (p *PaletteData) Size() (int, error) {
	return len(p.palettes) * 3, nil
}

func (p *PaletteData) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	code := make([]byte, 0, len(p.palettes)*3)
	for _, pal := range p.palettes {
		code = append(code, pal[0], pal[1], pal[2])
	}
	return codeblock.Rendered{
		Bytes:    code,
		Exported: map[string]uint16{p.label: uint16(startOffset)},
	}, nil
}

// SceneData emits a scene record: backdrop byte, background-palette
// address word, sprite-palette address word, a null-terminated list
// of entity address words.
type SceneData struct {
	label             string
	backgroundColor   uint8
	backgroundPalette string // "" if absent
	spritePalette     string // "" if absent
	entityLabels      []string
}

// NewSceneData builds a SceneData block. backgroundPalette and
// spritePalette are empty strings when the scene has no such
// reference.
func NewSceneData(label string, backgroundColor uint8, backgroundPalette, spritePalette string, entityLabels []string) *SceneData {
	return &SceneData{
		label:             label,
		backgroundColor:   backgroundColor,
		backgroundPalette: backgroundPalette,
		spritePalette:     spritePalette,
		entityLabels:      entityLabels,
	}
}

func (s *SceneData) Label() string       { return s.label }
func (s *SceneData) Kind() codeblock.Kind { return codeblock.Data }

func (s *SceneData) Dependencies() []string {
	var deps []string
	if s.backgroundPalette != "" {
		deps = append(deps, s.backgroundPalette)
	}
	if s.spritePalette != "" {
		deps = append(deps, s.spritePalette)
	}
	deps = append(deps, s.entityLabels...)
	return deps
}

func (s *SceneData) OptionalDependencies() []string { return nil }

func (s *SceneData) Size() (int, error) {
	return 1 + 2 + 2 + len(s.entityLabels)*2 + 2, nil
}

func (s *SceneData) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	code := make([]byte, 0)
	code = append(code, s.backgroundColor)

	bgAddr := uint16(0)
	if s.backgroundPalette != "" {
		bgAddr = resolved[s.backgroundPalette]
	}
	code = binary.LittleEndian.AppendUint16(code, bgAddr)

	spAddr := uint16(0)
	if s.spritePalette != "" {
		spAddr = resolved[s.spritePalette]
	}
	code = binary.LittleEndian.AppendUint16(code, spAddr)

	for _, l := range s.entityLabels {
		code = binary.LittleEndian.AppendUint16(code, resolved[l])
	}
	code = binary.LittleEndian.AppendUint16(code, 0x0000)

	return codeblock.Rendered{
		Bytes:    code,
		Exported: map[string]uint16{s.label: uint16(startOffset)},
	}, nil
}

// EntityData emits an entity record: x, y, sprite-set CHR tile
// index (0 if no sprite set), palette index.
type EntityData struct {
	label         string
	x, y          uint8
	spriteSetLabel string // "" if absent
	paletteIndex  uint8
}

// NewEntityData builds an EntityData block.
func NewEntityData(label string, x, y uint8, spriteSetLabel string, paletteIndex uint8) *EntityData {
	return &EntityData{label: label, x: x, y: y, spriteSetLabel: spriteSetLabel, paletteIndex: paletteIndex}
}

func (e *EntityData) Label() string        { return e.label }
func (e *EntityData) Kind() codeblock.Kind  { return codeblock.Data }

func (e *EntityData) Dependencies() []string {
	deps := []string{"render_entities", "render_sprites"}
	if e.spriteSetLabel != "" {
		deps = append(deps, e.spriteSetLabel)
	}
	return deps
}

func (e *EntityData) OptionalDependencies() []string { return nil }

func (e *EntityData) Size() (int, error) { return 4, nil }

func (e *EntityData) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	var tileIndex uint8
	if e.spriteSetLabel != "" {
		tileIndex = uint8(resolved[e.spriteSetLabel])
	}
	code := []byte{e.x, e.y, tileIndex, e.paletteIndex}
	return codeblock.Rendered{
		Bytes:    code,
		Exported: map[string]uint16{e.label: uint16(startOffset)},
	}, nil
}

// SpriteSetCHRData places raw CHR pattern-table bytes. Unlike every
// other block, it exports a tile index (startOffset / 16), not a byte
// address — documented explicitly per spec.md §9 since an implementer
// assuming uniform address exports produces a bug scenario S3 catches.
type SpriteSetCHRData struct {
	label string
	chr   []byte
}

// NewSpriteSetCHRData builds a SpriteSetCHRData block.
func NewSpriteSetCHRData(label string, chr []byte) *SpriteSetCHRData {
	return &SpriteSetCHRData{label: label, chr: chr}
}

func (c *SpriteSetCHRData) Label() string                 { return c.label }
func (c *SpriteSetCHRData) Kind() codeblock.Kind           { return codeblock.CHR }
func (c *SpriteSetCHRData) Dependencies() []string         { return nil }
func (c *SpriteSetCHRData) OptionalDependencies() []string { return nil }

func (c *SpriteSetCHRData) Size() (int, error) { return len(c.chr), nil }

func (c *SpriteSetCHRData) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	tileIndex := startOffset / 16
	return codeblock.Rendered{
		Bytes:    append([]byte(nil), c.chr...),
		Exported: map[string]uint16{c.label: uint16(tileIndex)},
	}, nil
}

// AddressData emits the resolved address of a referenced label as a
// little-endian word: a plain pointer to some other block.
type AddressData struct {
	label           string
	referencedLabel string
}

// NewAddressData builds an AddressData block.
func NewAddressData(label, referencedLabel string) *AddressData {
	return &AddressData{label: label, referencedLabel: referencedLabel}
}

func (a *AddressData) Label() string                 { return a.label }
func (a *AddressData) Kind() codeblock.Kind           { return codeblock.Data }
func (a *AddressData) Dependencies() []string         { return []string{a.referencedLabel} }
func (a *AddressData) OptionalDependencies() []string { return nil }
func (a *AddressData) Size() (int, error)             { return 2, nil }

func (a *AddressData) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	value, ok := resolved[a.referencedLabel]
	if !ok {
		return codeblock.Rendered{}, romerr.New(romerr.MissingReferenced, "emit", "address data %q references unresolved label %q", a.label, a.referencedLabel)
	}
	return codeblock.Rendered{
		Bytes:    binary.LittleEndian.AppendUint16(nil, value),
		Exported: map[string]uint16{a.label: uint16(startOffset)},
	}, nil
}
