// Package builder implements the dependency-resolving driver that
// turns a Game aggregate into a finished ROM: populate the label and
// code-block registries, walk each block's declared dependencies
// depth-first, and hand the fully ordered set to the layout engine
// (spec.md §4.5).
package builder

import (
	"cartforge/internal/builtin"
	"cartforge/internal/buildlog"
	"cartforge/internal/codeblock"
	"cartforge/internal/data"
	"cartforge/internal/game"
	"cartforge/internal/label"
	"cartforge/internal/registry"
	"cartforge/internal/rom"
	"cartforge/internal/romerr"
)

// GameStore is the external collaborator that resolves a game id to
// its aggregate. cartforge's core performs no I/O beyond this single
// read (spec.md §1); cmd/cartforge supplies the concrete
// implementation backing this interface.
type GameStore interface {
	Load(id game.ID) (*game.Game, error)
}

// colorState tracks a label's position in the depth-first walk's
// cycle detector: unvisited labels are absent from the map, gray
// labels are on the current recursion stack, black labels are fully
// placed.
type colorState int

const (
	colorGray colorState = iota + 1
	colorBlack
)

// walker carries the mutable state threaded through the recursive
// add_to_rom walk: the code-block registry to resolve dependency
// labels against, the ROM accumulator blocks are placed into, and the
// coloring map used to detect cycles.
type walker struct {
	registry *registry.Registry
	rom      *rom.Rom
	color    map[string]colorState
	logger   *buildlog.Logger
}

// addToRom is the recursive depth-first placement described in
// spec.md §4.5: hard dependencies are fetched and recursed into
// unconditionally (UnknownLabel if missing), optional dependencies are
// recursed into only if already present in the registry, and the
// block itself is placed into the ROM only after every dependency it
// declared has been.
func (w *walker) addToRom(b codeblock.Block) error {
	lbl := b.Label()

	switch w.color[lbl] {
	case colorBlack:
		return nil
	case colorGray:
		return romerr.New(romerr.CyclicDependency, "walk", "cyclic dependency detected at %q", lbl)
	}
	w.color[lbl] = colorGray

	for _, dep := range b.Dependencies() {
		depBlock, err := w.registry.Get(dep)
		if err != nil {
			return err
		}
		if err := w.addToRom(depBlock); err != nil {
			return err
		}
	}
	for _, dep := range b.OptionalDependencies() {
		if !w.registry.Contains(dep) {
			continue
		}
		depBlock, err := w.registry.Get(dep)
		if err != nil {
			return err
		}
		if err := w.addToRom(depBlock); err != nil {
			return err
		}
	}

	w.color[lbl] = colorBlack
	if w.logger != nil {
		w.logger.Logf(buildlog.StageWalk, buildlog.LevelDebug, "placed %q (kind %s)", lbl, b.Kind())
	}
	return w.rom.Add(b)
}

// Build is the public entry point named by spec.md §4.5: it loads the
// aggregate identified by gameID from store, resolves
// initialSceneName against its scenes, and drives the full
// label/registry/walk/layout pipeline through to a byte-exact iNES
// image. logger may be nil; when non-nil it receives a trace of the
// build useful for diagnosing layout overflows after the fact
// (spec.md §2.2).
func Build(store GameStore, gameID game.ID, initialSceneName string, logger *buildlog.Logger) ([]byte, error) {
	_, out, err := build(store, gameID, initialSceneName, logger)
	return out, err
}

// BuildWithSummary behaves exactly like Build but additionally
// returns the finished rom.Rom's post-render Summary, which
// internal/manifest uses to produce a build report (SPEC_FULL.md
// §2.3). It exists alongside Build, rather than folded into it, so
// Build keeps returning only the ROM bytes and an error.
func BuildWithSummary(store GameStore, gameID game.ID, initialSceneName string, logger *buildlog.Logger) ([]byte, *rom.Summary, error) {
	r, out, err := build(store, gameID, initialSceneName, logger)
	if err != nil {
		return nil, nil, err
	}
	return out, r.Summary(), nil
}

func build(store GameStore, gameID game.ID, initialSceneName string, logger *buildlog.Logger) (*rom.Rom, []byte, error) {
	g, err := store.Load(gameID)
	if err != nil {
		return nil, nil, romerr.Wrap(romerr.GameNotFound, "load", err, "loading game %x: %v", gameID, err)
	}
	if g == nil {
		return nil, nil, romerr.New(romerr.GameNotFound, "load", "no game found for id %x", gameID)
	}
	if len(g.Scenes) == 0 {
		return nil, nil, romerr.New(romerr.NoScenes, "load", "game %q has no scenes", g.Name)
	}

	labels := label.New()
	if err := labels.AddGame(g); err != nil {
		return nil, nil, err
	}
	if logger != nil {
		logger.Logf(buildlog.StageLabels, buildlog.LevelInfo, "populated labels for %d scenes, %d assets, %d entities", len(g.Scenes), len(g.Assets), len(g.Entities))
	}

	blocks := registry.New()
	if err := blocks.AddGame(g, labels); err != nil {
		return nil, nil, err
	}
	if logger != nil {
		logger.Logf(buildlog.StageRegistry, buildlog.LevelInfo, "registry populated with derived asset and entity blocks")
	}

	var initialScene *game.Scene
	for i := range g.Scenes {
		if g.Scenes[i].Name == initialSceneName {
			initialScene = &g.Scenes[i]
			break
		}
	}
	if initialScene == nil {
		return nil, nil, romerr.New(romerr.MissingInitialScene, "build", "no scene named %q", initialSceneName)
	}

	r := rom.New()
	w := &walker{registry: blocks, rom: r, color: make(map[string]colorState), logger: logger}

	for _, s := range g.Scenes {
		sceneLabel, err := labels.GetSceneLabel(s.ID)
		if err != nil {
			return nil, nil, err
		}
		sceneBlock, err := sceneDataBlock(sceneLabel, s, labels)
		if err != nil {
			return nil, nil, err
		}
		blocks.AddCodeBlock(sceneBlock)
		if err := w.addToRom(sceneBlock); err != nil {
			return nil, nil, err
		}
	}

	initialSceneLabel, err := labels.GetSceneLabel(initialScene.ID)
	if err != nil {
		return nil, nil, err
	}
	preamble := builtin.NewPreamble(initialSceneLabel)
	blocks.AddCodeBlock(preamble)
	if err := w.addToRom(preamble); err != nil {
		return nil, nil, err
	}

	updateHandler := builtin.NewUpdateHandler(r.Contains(builtin.LabelRenderEntities))
	blocks.AddCodeBlock(updateHandler)
	if err := w.addToRom(updateHandler); err != nil {
		return nil, nil, err
	}

	vblankHandler := builtin.NewVBlankHandler(r.Contains(builtin.LabelRenderSprites))
	blocks.AddCodeBlock(vblankHandler)
	if err := w.addToRom(vblankHandler); err != nil {
		return nil, nil, err
	}

	if logger != nil {
		logger.Logf(buildlog.StageLayout, buildlog.LevelInfo, "dependency walk complete, rendering rom")
	}
	out, err := r.Render()
	if err != nil {
		return nil, nil, err
	}
	if logger != nil {
		logger.Logf(buildlog.StageEmit, buildlog.LevelInfo, "rendered %d byte rom image", len(out))
	}
	return r, out, nil
}

// sceneDataBlock resolves a scene's background-palette, sprite-palette,
// and entity references into labels before constructing its
// SceneData block.
func sceneDataBlock(sceneLabel string, s game.Scene, labels *label.Registry) (codeblock.Block, error) {
	bgPaletteLabel := ""
	if s.Data.BackgroundPalette != nil {
		l, err := labels.GetAssetLabel(s.Data.BackgroundPalette.ID)
		if err != nil {
			return nil, err
		}
		bgPaletteLabel = l
	}

	spritePaletteLabel := ""
	if s.Data.SpritePalette != nil {
		l, err := labels.GetAssetLabel(s.Data.SpritePalette.ID)
		if err != nil {
			return nil, err
		}
		spritePaletteLabel = l
	}

	entityLabels := make([]string, 0, len(s.Data.Entities))
	for _, e := range s.Data.Entities {
		l, err := labels.GetEntityLabel(e.ID)
		if err != nil {
			return nil, err
		}
		entityLabels = append(entityLabels, l)
	}

	return data.NewSceneData(sceneLabel, s.Data.BackgroundColor, bgPaletteLabel, spritePaletteLabel, entityLabels), nil
}
