// Command cartforge is the thin host around the pure build pipeline:
// it reads a YAML game definition from disk, decodes it into a
// game.Game aggregate, invokes builder.Build, writes the resulting
// .nes image, and optionally emits a JSON build manifest. It performs
// every bit of I/O the core packages deliberately don't (spec.md §1,
// SPEC_FULL.md §2.1).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"cartforge/internal/builder"
	"cartforge/internal/buildlog"
	"cartforge/internal/game"
	"cartforge/internal/manifest"
	"cartforge/internal/rom"
)

// singleGameStore is the simplest GameStore that can exist: a build
// is always against one already-decoded Game, so Load just checks the
// id matches and hands it back.
type singleGameStore struct {
	g *game.Game
}

func (s *singleGameStore) Load(id game.ID) (*game.Game, error) {
	if s.g.ID != id {
		return nil, fmt.Errorf("game id %x not found", id)
	}
	return s.g, nil
}

func main() {
	var (
		sceneName    = flag.String("scene", "", "name of the initial scene (required)")
		outPath      = flag.String("out", "", "output .nes path (required)")
		manifestPath = flag.String("manifest", "", "optional output path for a JSON build manifest")
		verbose      = flag.Bool("v", false, "print a build trace to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cartforge -scene <name> -out <path.nes> <game.yaml>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *sceneName == "" || *outPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	yamlBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartforge: %v\n", err)
		os.Exit(1)
	}

	g, err := game.Load(yamlBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartforge: %v\n", err)
		os.Exit(1)
	}

	var logger *buildlog.Logger
	if *verbose {
		logger = buildlog.NewLogger(1000)
		logger.SetStageEnabled(buildlog.StageLabels, true)
		logger.SetStageEnabled(buildlog.StageRegistry, true)
		logger.SetStageEnabled(buildlog.StageWalk, true)
		logger.SetStageEnabled(buildlog.StageLayout, true)
		logger.SetStageEnabled(buildlog.StageEmit, true)
		logger.SetMinLevel(buildlog.LevelDebug)
		defer logger.Shutdown()
	}

	store := &singleGameStore{g: g}

	var romBytes []byte
	var summary *rom.Summary
	if *manifestPath != "" {
		romBytes, summary, err = builder.BuildWithSummary(store, g.ID, *sceneName, logger)
	} else {
		romBytes, err = builder.Build(store, g.ID, *sceneName, logger)
	}
	if err != nil {
		if logger != nil {
			printTrace(logger)
		}
		fmt.Fprintf(os.Stderr, "cartforge: build failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, romBytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "cartforge: %v\n", err)
		os.Exit(1)
	}

	if logger != nil {
		printTrace(logger)
	}

	if *manifestPath != "" {
		if err := writeManifest(*manifestPath, romBytes, summary); err != nil {
			fmt.Fprintf(os.Stderr, "cartforge: manifest: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("wrote %s (%d bytes)\n", *outPath, len(romBytes))
}

// writeManifest serializes summary (captured alongside romBytes by
// builder.BuildWithSummary) into the manifest report format.
func writeManifest(path string, romBytes []byte, summary *rom.Summary) error {
	m := manifest.FromSummary(summary, len(romBytes))
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func printTrace(logger *buildlog.Logger) {
	for _, e := range logger.Entries() {
		fmt.Fprintln(os.Stderr, e.Format())
	}
}
