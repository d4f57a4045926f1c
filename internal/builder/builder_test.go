package builder

import (
	"bytes"
	"errors"
	"testing"

	"cartforge/internal/builtin"
	"cartforge/internal/game"
	"cartforge/internal/romerr"
)

// fakeStore is a GameStore test double backed by a single in-memory
// game.Game, keyed by its own ID.
type fakeStore struct {
	g *game.Game
}

func (s *fakeStore) Load(id game.ID) (*game.Game, error) {
	if s.g == nil || id != s.g.ID {
		return nil, nil
	}
	return s.g, nil
}

func minimalGame() *game.Game {
	return &game.Game{
		ID:   game.DeriveID("game", "minimal"),
		Name: "minimal",
		Scenes: []game.Scene{
			{ID: game.DeriveID("scene", "main"), Name: "main", Data: game.SceneData{BackgroundColor: 0x02}},
		},
	}
}

// S1: minimal game with one backdrop-only scene, no palette refs, no
// entities, no assets.
func TestBuildMinimalGameProducesByteExactRom(t *testing.T) {
	g := minimalGame()
	out, err := Build(&fakeStore{g: g}, g.ID, "main", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(out) != 24592 {
		t.Fatalf("len(out) = %d, want 24592", len(out))
	}
	if magic := out[0:4]; !bytes.Equal(magic, []byte("NES\x1A")) {
		t.Fatalf("magic = % X, want NES\\x1A", magic)
	}

	chr := out[16+16384:]
	if chr[0] != 0x0F {
		t.Fatalf("chr[0] = 0x%02X, want 0x0F", chr[0])
	}
	for _, b := range chr[16:] {
		if b != 0x00 {
			t.Fatalf("expected zero-filled chr tail, found %x", b)
		}
	}

	vec := out[16+16384-6:]
	nmi := uint16(vec[1])<<8 | uint16(vec[0])
	reset := uint16(vec[3])<<8 | uint16(vec[2])
	if nmi == 0 {
		t.Fatal("nmi vector is zero")
	}
	if reset == 0 {
		t.Fatal("reset vector is zero")
	}
}

// S3: entity with a sprite set; verifies CHR placement, entity data
// bytes, and update_handler's JSR render_entities emission.
func TestBuildEntityWithSpriteSetWiresRenderEntities(t *testing.T) {
	spriteAssetID := game.DeriveID("asset", "hero")
	entityID := game.DeriveID("entity", "player")
	sceneID := game.DeriveID("scene", "main")

	heroCHR := make([]byte, 32)
	for i := range heroCHR {
		heroCHR[i] = byte(i + 1)
	}

	g := &game.Game{
		ID:   game.DeriveID("game", "with_entity"),
		Name: "with_entity",
		Assets: []game.Asset{
			{ID: spriteAssetID, Name: "hero", Type: game.AssetTypeSpriteSet, CHR: heroCHR},
		},
		Entities: []game.Entity{
			{ID: entityID, Name: "player", Data: game.EntityData{
				X: 100, Y: 150, SpriteSet: &game.AssetRef{ID: spriteAssetID}, PaletteIndex: 2,
			}},
		},
		Scenes: []game.Scene{
			{ID: sceneID, Name: "main", Data: game.SceneData{
				BackgroundColor: 0x02,
				Entities:        []game.EntityRef{{ID: entityID}},
			}},
		},
	}

	r, out, err := build(&fakeStore{g: g}, g.ID, "main", nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	chr := out[16+16384:]
	if got := chr[16:48]; !bytes.Equal(got, heroCHR) {
		t.Fatalf("chr[16:48] = % X, want % X", got, heroCHR)
	}

	summary := r.Summary()
	if summary == nil {
		t.Fatal("Summary() = nil")
	}

	var entityOffset, updateOffset int
	var sawEntity, sawUpdate bool
	for _, p := range summary.Placements {
		switch p.Label {
		case "entity__player":
			entityOffset = p.Offset
			sawEntity = true
		case builtin.LabelUpdateHandler:
			updateOffset = p.Offset
			sawUpdate = true
		}
	}
	if !sawEntity {
		t.Fatal("expected a placement for entity__player")
	}
	if !sawUpdate {
		t.Fatalf("expected a placement for %s", builtin.LabelUpdateHandler)
	}

	entityBytes := out[16+(entityOffset-0xC000) : 16+(entityOffset-0xC000)+4]
	wantEntity := []byte{100, 150, 1, 2}
	if !bytes.Equal(entityBytes, wantEntity) {
		t.Fatalf("entity bytes = % X, want % X", entityBytes, wantEntity)
	}

	updateBytes := out[16+(updateOffset-0xC000) : 16+(updateOffset-0xC000)+3]
	if updateBytes[0] != 0x20 {
		t.Fatalf("update_handler first byte = 0x%02X, want 0x20 (JSR)", updateBytes[0])
	}
}

// S4: requested initial scene absent from the game's scene list.
func TestBuildMissingInitialSceneFails(t *testing.T) {
	g := &game.Game{
		ID:     game.DeriveID("game", "intro_only"),
		Name:   "intro_only",
		Scenes: []game.Scene{{ID: game.DeriveID("scene", "intro"), Name: "intro"}},
	}

	out, err := Build(&fakeStore{g: g}, g.ID, "main", nil)
	if err == nil {
		t.Fatal("expected Build to fail for a missing initial scene")
	}
	if out != nil {
		t.Fatalf("out = %v, want nil", out)
	}
	var romErr *romerr.Error
	if !errors.As(err, &romErr) {
		t.Fatalf("error = %v, want *romerr.Error", err)
	}
	if romErr.Kind != romerr.MissingInitialScene {
		t.Fatalf("romErr.Kind = %v, want %v", romErr.Kind, romerr.MissingInitialScene)
	}
}

// S6: building the same game twice yields byte-for-byte identical
// output.
func TestBuildIsDeterministic(t *testing.T) {
	g := minimalGame()
	store := &fakeStore{g: g}

	first, err := Build(store, g.ID, "main", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := Build(store, g.ID, "main", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("repeated builds of the same game diverged")
	}
}

func TestBuildGameNotFoundFails(t *testing.T) {
	store := &fakeStore{}
	_, err := Build(store, game.DeriveID("game", "nope"), "main", nil)
	if err == nil {
		t.Fatal("expected Build to fail when the game is not found")
	}
	var romErr *romerr.Error
	if !errors.As(err, &romErr) {
		t.Fatalf("error = %v, want *romerr.Error", err)
	}
	if romErr.Kind != romerr.GameNotFound {
		t.Fatalf("romErr.Kind = %v, want %v", romErr.Kind, romerr.GameNotFound)
	}
}

func TestBuildNoScenesFails(t *testing.T) {
	g := &game.Game{ID: game.DeriveID("game", "empty"), Name: "empty"}
	_, err := Build(&fakeStore{g: g}, g.ID, "main", nil)
	if err == nil {
		t.Fatal("expected Build to fail when the game has no scenes")
	}
	var romErr *romerr.Error
	if !errors.As(err, &romErr) {
		t.Fatalf("error = %v, want *romerr.Error", err)
	}
	if romErr.Kind != romerr.NoScenes {
		t.Fatalf("romErr.Kind = %v, want %v", romErr.Kind, romerr.NoScenes)
	}
}

func TestBuildWithSummaryReportsPlacedSceneBlock(t *testing.T) {
	g := minimalGame()
	_, summary, err := BuildWithSummary(&fakeStore{g: g}, g.ID, "main", nil)
	if err != nil {
		t.Fatalf("BuildWithSummary failed: %v", err)
	}
	if summary == nil {
		t.Fatal("summary = nil")
	}

	var sawScene bool
	for _, p := range summary.Placements {
		if p.Label == "scene__main" {
			sawScene = true
		}
	}
	if !sawScene {
		t.Fatal("expected a placement for scene__main")
	}
}
