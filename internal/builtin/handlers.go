package builtin

import (
	"cartforge/internal/asm6502"
	"cartforge/internal/codeblock"
)

// vblankHandler is a composition anchor for the NMI_VBLANK window. It
// emits nothing of its own: render_sprites, when present, is placed
// directly into the same region by the layout engine, so no wrapper
// call is needed (spec.md §4.7, §9).
type vblankHandler struct {
	hasRenderSprites bool
}

// NewVBlankHandler builds the vblank_handler block. hasRenderSprites
// reflects whether render_sprites has already been placed into the
// ROM by the time this block is added (its only optional dependency).
func NewVBlankHandler(hasRenderSprites bool) codeblock.Block {
	return &vblankHandler{hasRenderSprites: hasRenderSprites}
}

func (h *vblankHandler) Label() string        { return LabelVBlankHandler }
func (h *vblankHandler) Kind() codeblock.Kind { return codeblock.Vblank }
func (h *vblankHandler) Dependencies() []string { return nil }

func (h *vblankHandler) OptionalDependencies() []string {
	if h.hasRenderSprites {
		return []string{LabelRenderSprites}
	}
	return nil
}

func (h *vblankHandler) Size() (int, error) { return 0, nil }

func (h *vblankHandler) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	return codeblock.Rendered{Exported: map[string]uint16{h.Label(): uint16(startOffset)}}, nil
}

// updateHandler is the NMI_POST_VBLANK composition anchor. Unlike
// render_sprites, render_entities is a SUBROUTINE placed in PRG_ROM,
// so it must be called explicitly: update_handler emits JSR
// render_entities iff render_entities was already placed into the ROM
// when update_handler was added; otherwise it emits nothing.
type updateHandler struct {
	hasRenderEntities bool
}

// NewUpdateHandler builds the update_handler block. hasRenderEntities
// reflects whether render_entities has already been placed into the
// ROM by the time this block is added (its only optional dependency).
func NewUpdateHandler(hasRenderEntities bool) codeblock.Block {
	return &updateHandler{hasRenderEntities: hasRenderEntities}
}

func (h *updateHandler) Label() string        { return LabelUpdateHandler }
func (h *updateHandler) Kind() codeblock.Kind { return codeblock.Update }
func (h *updateHandler) Dependencies() []string { return nil }

func (h *updateHandler) OptionalDependencies() []string {
	if h.hasRenderEntities {
		return []string{LabelRenderEntities}
	}
	return nil
}

func (h *updateHandler) Size() (int, error) {
	if h.hasRenderEntities {
		return 3, nil
	}
	return 0, nil
}

func (h *updateHandler) Render(startOffset int, resolved map[string]uint16) (codeblock.Rendered, error) {
	exported := map[string]uint16{h.Label(): uint16(startOffset)}
	if !h.hasRenderEntities {
		return codeblock.Rendered{Exported: exported}, nil
	}
	addr := resolved[LabelRenderEntities]
	e := asm6502.New()
	e.Jsr(addr)
	return codeblock.Rendered{Bytes: e.Bytes(), Exported: exported}, nil
}
