package game

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// doc mirrors the on-disk YAML shape of a game definition. It is kept
// separate from Game so the wire format (string-keyed references) can
// evolve independently of the in-memory aggregate's identity scheme.
type doc struct {
	Name     string       `yaml:"name"`
	Platform docPlatform  `yaml:"platform"`
	Assets   []docAsset   `yaml:"assets"`
	Entities []docEntity  `yaml:"entities"`
	Scenes   []docScene   `yaml:"scenes"`
}

type docPlatform struct {
	Kind       string `yaml:"kind"`
	SpriteSize string `yaml:"sprite_size"`
}

type docAsset struct {
	Name          string       `yaml:"name"`
	Type          string       `yaml:"type"` // "palette" | "sprite_set"
	Palettes      [][3]uint8   `yaml:"palettes,omitempty"`
	CHRHex        string       `yaml:"chr_hex,omitempty"`
	SpriteSetKind string       `yaml:"sprite_set_kind,omitempty"`
}

type docEntity struct {
	Name         string `yaml:"name"`
	X            uint8  `yaml:"x"`
	Y            uint8  `yaml:"y"`
	SpriteSet    string `yaml:"spriteset,omitempty"`
	PaletteIndex uint8  `yaml:"palette_index"`
}

type docScene struct {
	Name              string   `yaml:"name"`
	BackgroundColor   uint8    `yaml:"background_color"`
	BackgroundPalette string   `yaml:"background_palette,omitempty"`
	SpritePalette     string   `yaml:"sprite_palette,omitempty"`
	Entities          []string `yaml:"entities,omitempty"`
}

// DeriveID computes a stable ID from a (kind, name) pair. Two loads of
// the same YAML document yield byte-identical IDs, which in turn keeps
// label derivation (and therefore ROM bytes) deterministic.
func DeriveID(kind, name string) ID {
	sum := sha1.Sum([]byte(kind + "\x00" + name))
	var id ID
	copy(id[:], sum[:16])
	return id
}

// Load decodes a YAML game definition into a Game aggregate.
func Load(yamlBytes []byte) (*Game, error) {
	var d doc
	if err := yaml.Unmarshal(yamlBytes, &d); err != nil {
		return nil, fmt.Errorf("decode game definition: %w", err)
	}

	assetIDByName := make(map[string]ID, len(d.Assets))
	for _, a := range d.Assets {
		assetIDByName[a.Name] = DeriveID("asset", a.Name)
	}
	entityIDByName := make(map[string]ID, len(d.Entities))
	for _, e := range d.Entities {
		entityIDByName[e.Name] = DeriveID("entity", e.Name)
	}

	g := &Game{
		ID:   DeriveID("game", d.Name),
		Name: d.Name,
		Platform: Platform{
			Kind:       d.Platform.Kind,
			SpriteSize: d.Platform.SpriteSize,
		},
	}

	for _, a := range d.Assets {
		asset := Asset{ID: assetIDByName[a.Name], Name: a.Name}
		switch a.Type {
		case "palette":
			asset.Type = AssetTypePalette
			asset.Palettes = make([]SubPalette, len(a.Palettes))
			for i, p := range a.Palettes {
				asset.Palettes[i] = SubPalette(p)
			}
		case "sprite_set":
			asset.Type = AssetTypeSpriteSet
			chr, err := decodeHex(a.CHRHex)
			if err != nil {
				return nil, fmt.Errorf("asset %q: %w", a.Name, err)
			}
			if len(chr)%16 != 0 {
				return nil, fmt.Errorf("asset %q: chr data length %d is not a multiple of 16", a.Name, len(chr))
			}
			asset.CHR = chr
			if a.SpriteSetKind == "animated" {
				asset.SpriteSetKind = SpriteSetAnimated
			} else {
				asset.SpriteSetKind = SpriteSetStatic
			}
		default:
			return nil, fmt.Errorf("asset %q: unsupported asset type %q", a.Name, a.Type)
		}
		g.Assets = append(g.Assets, asset)
	}

	for _, e := range d.Entities {
		entity := Entity{
			ID:   entityIDByName[e.Name],
			Name: e.Name,
			Data: EntityData{X: e.X, Y: e.Y, PaletteIndex: e.PaletteIndex},
		}
		if e.SpriteSet != "" {
			id, ok := assetIDByName[e.SpriteSet]
			if !ok {
				return nil, fmt.Errorf("entity %q: unknown spriteset asset %q", e.Name, e.SpriteSet)
			}
			entity.Data.SpriteSet = &AssetRef{ID: id}
		}
		g.Entities = append(g.Entities, entity)
	}

	for _, s := range d.Scenes {
		scene := Scene{
			ID:   DeriveID("scene", s.Name),
			Name: s.Name,
			Data: SceneData{BackgroundColor: s.BackgroundColor},
		}
		if s.BackgroundPalette != "" {
			id, ok := assetIDByName[s.BackgroundPalette]
			if !ok {
				return nil, fmt.Errorf("scene %q: unknown background palette asset %q", s.Name, s.BackgroundPalette)
			}
			scene.Data.BackgroundPalette = &AssetRef{ID: id}
		}
		if s.SpritePalette != "" {
			id, ok := assetIDByName[s.SpritePalette]
			if !ok {
				return nil, fmt.Errorf("scene %q: unknown sprite palette asset %q", s.Name, s.SpritePalette)
			}
			scene.Data.SpritePalette = &AssetRef{ID: id}
		}
		for _, entName := range s.Entities {
			id, ok := entityIDByName[entName]
			if !ok {
				return nil, fmt.Errorf("scene %q: unknown entity %q", s.Name, entName)
			}
			scene.Data.Entities = append(scene.Data.Entities, EntityRef{ID: id})
		}
		g.Scenes = append(g.Scenes, scene)
	}

	return g, nil
}

// decodeHex decodes s as hex, ignoring whitespace between digit pairs
// (chr_hex values are hand-wrapped across lines in game definitions).
func decodeHex(s string) ([]byte, error) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\t', '\r':
			return -1
		}
		return r
	}, s)
	out, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return out, nil
}
