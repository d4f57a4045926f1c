package game

import (
	"bytes"
	"testing"
)

func TestDeriveIDIsDeterministicAndDistinguishesKind(t *testing.T) {
	a := DeriveID("scene", "main")
	b := DeriveID("scene", "main")
	c := DeriveID("asset", "main")
	if a != b {
		t.Fatalf("DeriveID not deterministic: %v != %v", a, b)
	}
	if a == c {
		t.Fatalf("DeriveID did not distinguish kind: %v == %v", a, c)
	}
}

func TestLoadDecodesFullGameDefinition(t *testing.T) {
	yamlDoc := []byte(`
name: demo
platform:
  kind: NES
  sprite_size: "8x8"
assets:
  - name: bg
    type: palette
    palettes:
      - [1, 2, 3]
      - [4, 5, 6]
  - name: hero
    type: sprite_set
    chr_hex: "0102030405060708090a0b0c0d0e0f10"
entities:
  - name: player
    x: 10
    y: 20
    spriteset: hero
    palette_index: 1
scenes:
  - name: main
    background_color: 2
    background_palette: bg
    entities: [player]
`)
	g, err := Load(yamlDoc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if g.Name != "demo" {
		t.Fatalf("Name = %q, want %q", g.Name, "demo")
	}
	if g.Platform.Kind != "NES" {
		t.Fatalf("Platform.Kind = %q, want %q", g.Platform.Kind, "NES")
	}
	if len(g.Assets) != 2 {
		t.Fatalf("len(Assets) = %d, want 2", len(g.Assets))
	}
	if len(g.Entities) != 1 {
		t.Fatalf("len(Entities) = %d, want 1", len(g.Entities))
	}
	if len(g.Scenes) != 1 {
		t.Fatalf("len(Scenes) = %d, want 1", len(g.Scenes))
	}

	if got, want := g.Entities[0].Data.SpriteSet.ID, DeriveID("asset", "hero"); got != want {
		t.Fatalf("entity spriteset id = %v, want %v", got, want)
	}
	if got, want := g.Scenes[0].Data.BackgroundPalette.ID, DeriveID("asset", "bg"); got != want {
		t.Fatalf("scene background palette id = %v, want %v", got, want)
	}
	if got, want := g.Scenes[0].Data.Entities[0].ID, DeriveID("entity", "player"); got != want {
		t.Fatalf("scene entity id = %v, want %v", got, want)
	}
	wantCHR := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	if got := g.Assets[1].CHR; !bytes.Equal(got, wantCHR) {
		t.Fatalf("CHR = % X, want % X", got, wantCHR)
	}
}

func TestLoadRejectsUnknownAssetType(t *testing.T) {
	_, err := Load([]byte(`
name: demo
assets:
  - name: bogus
    type: mystery
`))
	if err == nil {
		t.Fatal("expected Load to reject an unknown asset type")
	}
}

func TestLoadRejectsSceneReferencingUnknownPalette(t *testing.T) {
	_, err := Load([]byte(`
name: demo
scenes:
  - name: main
    background_palette: missing
`))
	if err == nil {
		t.Fatal("expected Load to reject a scene referencing an unknown palette")
	}
}

func TestLoadRejectsEntityReferencingUnknownSpriteSet(t *testing.T) {
	_, err := Load([]byte(`
name: demo
entities:
  - name: player
    spriteset: missing
`))
	if err == nil {
		t.Fatal("expected Load to reject an entity referencing an unknown sprite set")
	}
}

func TestLoadRejectsSpriteSetCHRLengthNotMultipleOf16(t *testing.T) {
	_, err := Load([]byte(`
name: demo
assets:
  - name: hero
    type: sprite_set
    chr_hex: "0102030405060708"
`))
	if err == nil {
		t.Fatal("expected Load to reject a CHR length that is not a multiple of 16")
	}
}

func TestDecodeHexRejectsOddDigitCount(t *testing.T) {
	_, err := decodeHex("abc")
	if err == nil {
		t.Fatal("expected decodeHex to reject an odd digit count")
	}
}

func TestDecodeHexRejectsInvalidDigit(t *testing.T) {
	_, err := decodeHex("zz")
	if err == nil {
		t.Fatal("expected decodeHex to reject an invalid digit")
	}
}

func TestDecodeHexToleratesWhitespace(t *testing.T) {
	b, err := decodeHex("01 02\n03\t04")
	if err != nil {
		t.Fatalf("decodeHex failed: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(b, want) {
		t.Fatalf("decodeHex = % X, want % X", b, want)
	}
}

func TestDecodeHexEmptyStringYieldsEmptySlice(t *testing.T) {
	b, err := decodeHex("")
	if err != nil {
		t.Fatalf("decodeHex failed: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("decodeHex(\"\") = %v, want empty", b)
	}
}
