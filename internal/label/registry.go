// Package label derives stable, human-readable labels for every
// addressable object in a Game aggregate. Labels are the only way
// code blocks refer to each other (spec.md §3).
package label

import (
	"fmt"

	"cartforge/internal/game"
	"cartforge/internal/romerr"
)

// Registry maps domain identities to their derived labels. It is
// populated once, in a single pass, from a Game aggregate, and is
// read-only afterward.
type Registry struct {
	scene  map[game.ID]string
	asset  map[game.ID]string
	entity map[game.ID]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		scene:  make(map[game.ID]string),
		asset:  make(map[game.ID]string),
		entity: make(map[game.ID]string),
	}
}

// AddGame populates the registry from g in one pass. It does not
// de-duplicate beyond what the aggregate's name uniqueness already
// guarantees; a collision here indicates upstream corruption and is
// reported as DuplicateLabel.
func (r *Registry) AddGame(g *game.Game) error {
	for _, s := range g.Scenes {
		l := fmt.Sprintf("scene__%s", s.Name)
		if err := r.putScene(s.ID, l); err != nil {
			return err
		}
	}
	for _, a := range g.Assets {
		var kind string
		switch a.Type {
		case game.AssetTypePalette:
			kind = "palette"
		case game.AssetTypeSpriteSet:
			kind = "sprite_set"
		default:
			return romerr.New(romerr.UnsupportedAssetKind, "labels", "asset %q has unsupported type %q", a.Name, a.Type)
		}
		l := fmt.Sprintf("asset__%s__%s", kind, a.Name)
		if err := r.putAsset(a.ID, l); err != nil {
			return err
		}
	}
	for _, e := range g.Entities {
		l := fmt.Sprintf("entity__%s", e.Name)
		if err := r.putEntity(e.ID, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) putScene(id game.ID, l string) error {
	if existing, ok := r.scene[id]; ok && existing != l {
		return romerr.New(romerr.DuplicateLabel, "labels", "scene id already mapped to %q, cannot remap to %q", existing, l)
	}
	for other, ol := range r.scene {
		if ol == l && other != id {
			return romerr.New(romerr.DuplicateLabel, "labels", "label %q already assigned to another scene", l)
		}
	}
	r.scene[id] = l
	return nil
}

func (r *Registry) putAsset(id game.ID, l string) error {
	if existing, ok := r.asset[id]; ok && existing != l {
		return romerr.New(romerr.DuplicateLabel, "labels", "asset id already mapped to %q, cannot remap to %q", existing, l)
	}
	for other, ol := range r.asset {
		if ol == l && other != id {
			return romerr.New(romerr.DuplicateLabel, "labels", "label %q already assigned to another asset", l)
		}
	}
	r.asset[id] = l
	return nil
}

func (r *Registry) putEntity(id game.ID, l string) error {
	if existing, ok := r.entity[id]; ok && existing != l {
		return romerr.New(romerr.DuplicateLabel, "labels", "entity id already mapped to %q, cannot remap to %q", existing, l)
	}
	for other, ol := range r.entity {
		if ol == l && other != id {
			return romerr.New(romerr.DuplicateLabel, "labels", "label %q already assigned to another entity", l)
		}
	}
	r.entity[id] = l
	return nil
}

// GetSceneLabel returns the label for a scene id.
func (r *Registry) GetSceneLabel(id game.ID) (string, error) {
	l, ok := r.scene[id]
	if !ok {
		return "", romerr.New(romerr.UnknownDomainID, "labels", "scene id %x not found", id)
	}
	return l, nil
}

// GetAssetLabel returns the label for an asset id.
func (r *Registry) GetAssetLabel(id game.ID) (string, error) {
	l, ok := r.asset[id]
	if !ok {
		return "", romerr.New(romerr.UnknownDomainID, "labels", "asset id %x not found", id)
	}
	return l, nil
}

// GetEntityLabel returns the label for an entity id.
func (r *Registry) GetEntityLabel(id game.ID) (string, error) {
	l, ok := r.entity[id]
	if !ok {
		return "", romerr.New(romerr.UnknownDomainID, "labels", "entity id %x not found", id)
	}
	return l, nil
}
