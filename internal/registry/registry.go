// Package registry implements the code-block registry: the single
// source of truth for label-keyed block lookup during the builder's
// dependency walk (spec.md §4.4).
package registry

import (
	"cartforge/internal/builtin"
	"cartforge/internal/codeblock"
	"cartforge/internal/data"
	"cartforge/internal/game"
	"cartforge/internal/label"
	"cartforge/internal/romerr"
)

// Registry maps labels to code blocks. It is seeded at construction
// with the built-ins whose shape never depends on build-time
// parameters (zero-page variables, load_scene, render_entities,
// render_sprites); it accumulates asset- and entity-derived blocks via
// AddGame, and further blocks (preamble, update_handler,
// vblank_handler — each parameterized by something only known once
// the game and its ROM placement are in hand) via AddCodeBlock, the
// same way the builder already constructs preamble per build.
type Registry struct {
	blocks map[string]codeblock.Block
}

// New returns a Registry seeded with the build-independent built-ins.
func New() *Registry {
	r := &Registry{blocks: make(map[string]codeblock.Block)}
	for _, b := range []codeblock.Block{
		builtin.ZPSrc1(),
		builtin.ZPSrc2(),
		builtin.ZPEntityRAMPage(),
		builtin.ZPSpriteRAMPage(),
		builtin.NewLoadScene(),
		builtin.NewRenderEntities(),
		builtin.NewRenderSprites(),
	} {
		r.blocks[b.Label()] = b
	}
	return r
}

// AddGame derives one PaletteData or SpriteSetCHRData block per
// asset, and one EntityData block per entity, and adds them all.
func (r *Registry) AddGame(g *game.Game, labels *label.Registry) error {
	for _, a := range g.Assets {
		l, err := labels.GetAssetLabel(a.ID)
		if err != nil {
			return err
		}
		var block codeblock.Block
		switch a.Type {
		case game.AssetTypePalette:
			block = data.NewPaletteData(l, a.Palettes)
		case game.AssetTypeSpriteSet:
			block = data.NewSpriteSetCHRData(l, a.CHR)
		default:
			return romerr.New(romerr.UnsupportedAssetKind, "registry", "asset %q has unsupported type %q", a.Name, a.Type)
		}
		r.AddCodeBlock(block)
	}

	for _, e := range g.Entities {
		l, err := labels.GetEntityLabel(e.ID)
		if err != nil {
			return err
		}
		spriteSetLabel := ""
		if e.Data.SpriteSet != nil {
			spriteSetLabel, err = labels.GetAssetLabel(e.Data.SpriteSet.ID)
			if err != nil {
				return err
			}
		}
		r.AddCodeBlock(data.NewEntityData(l, e.Data.X, e.Data.Y, spriteSetLabel, e.Data.PaletteIndex))
	}

	return nil
}

// AddCodeBlock inserts b by label. Re-adding the same label is
// idempotent: the last write wins.
func (r *Registry) AddCodeBlock(b codeblock.Block) {
	r.blocks[b.Label()] = b
}

// Contains reports whether label is present in the registry.
func (r *Registry) Contains(label string) bool {
	_, ok := r.blocks[label]
	return ok
}

// Get fetches the block registered under label.
func (r *Registry) Get(label string) (codeblock.Block, error) {
	b, ok := r.blocks[label]
	if !ok {
		return nil, romerr.New(romerr.UnknownLabel, "registry", "label %q not found", label)
	}
	return b, nil
}
