package registry

import (
	"errors"
	"testing"

	"cartforge/internal/builtin"
	"cartforge/internal/game"
	"cartforge/internal/label"
	"cartforge/internal/romerr"
)

func TestNewSeedsBuildIndependentBuiltins(t *testing.T) {
	r := New()
	for _, l := range []string{
		builtin.LabelZPSrc1, builtin.LabelZPSrc2, builtin.LabelZPEntityRAMPage, builtin.LabelZPSpriteRAMPage,
		builtin.LabelLoadScene, builtin.LabelRenderEntities, builtin.LabelRenderSprites,
	} {
		if !r.Contains(l) {
			t.Fatalf("expected %q seeded", l)
		}
	}
	if r.Contains(builtin.LabelPreamble) {
		t.Fatalf("expected %q not seeded", builtin.LabelPreamble)
	}
}

func TestAddGameDerivesAssetAndEntityBlocks(t *testing.T) {
	assetID := game.DeriveID("asset", "forest_bg")
	entityID := game.DeriveID("entity", "player")
	spriteAssetID := game.DeriveID("asset", "player_sheet")

	g := &game.Game{
		Assets: []game.Asset{
			{ID: assetID, Name: "forest_bg", Type: game.AssetTypePalette, Palettes: []game.SubPalette{{1, 2, 3}}},
			{ID: spriteAssetID, Name: "player_sheet", Type: game.AssetTypeSpriteSet, CHR: make([]byte, 16)},
		},
		Entities: []game.Entity{
			{ID: entityID, Name: "player", Data: game.EntityData{X: 1, Y: 2, SpriteSet: &game.AssetRef{ID: spriteAssetID}, PaletteIndex: 0}},
		},
	}

	labels := label.New()
	if err := labels.AddGame(g); err != nil {
		t.Fatalf("AddGame (labels) failed: %v", err)
	}

	r := New()
	if err := r.AddGame(g, labels); err != nil {
		t.Fatalf("AddGame failed: %v", err)
	}

	for _, l := range []string{"asset__palette__forest_bg", "asset__sprite_set__player_sheet", "entity__player"} {
		if !r.Contains(l) {
			t.Fatalf("expected %q present", l)
		}
	}

	block, err := r.Get("entity__player")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !contains(block.Dependencies(), "asset__sprite_set__player_sheet") {
		t.Fatalf("Dependencies() = %v, want to contain asset__sprite_set__player_sheet", block.Dependencies())
	}
}

func TestGetUnknownLabelFails(t *testing.T) {
	_, err := New().Get("does_not_exist")
	if err == nil {
		t.Fatal("expected Get to fail for an unknown label")
	}
	var romErr *romerr.Error
	if !errors.As(err, &romErr) {
		t.Fatalf("error = %v, want *romerr.Error", err)
	}
	if romErr.Kind != romerr.UnknownLabel {
		t.Fatalf("romErr.Kind = %v, want %v", romErr.Kind, romerr.UnknownLabel)
	}
}

func TestAddCodeBlockIsIdempotentLastWriteWins(t *testing.T) {
	r := New()
	r.AddCodeBlock(builtin.NewPreamble("scene__a"))
	r.AddCodeBlock(builtin.NewPreamble("scene__b"))

	block, err := r.Get(builtin.LabelPreamble)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !contains(block.Dependencies(), "scene__b") {
		t.Fatalf("Dependencies() = %v, want to contain scene__b", block.Dependencies())
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
