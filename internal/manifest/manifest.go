// Package manifest produces a post-build accounting of a finished
// ROM: one section per fixed region, one asset reference per placed
// data/CHR block. Grounded on internal/corelx/manifest.go's
// BuildManifest/ManifestSection/ManifestAssetRef shapes; it adds no
// new invariants of its own, it just reports what the layout engine
// already computed (spec.md §2.3).
package manifest

import (
	"cartforge/internal/codeblock"
	"cartforge/internal/rom"
)

// BuildManifest is the JSON-serializable report of one completed
// build.
type BuildManifest struct {
	FormatVersion int                `json:"format_version"`
	ROMSizeBytes  uint32             `json:"rom_size_bytes"`
	Sections      []ManifestSection  `json:"sections"`
	Assets        []ManifestAssetRef `json:"assets"`
}

// ManifestSection accounts for one fixed ROM region.
type ManifestSection struct {
	Name      string `json:"name"`
	Offset    uint32 `json:"offset"`
	SizeBytes uint32 `json:"size_bytes"`
	UsedBytes uint32 `json:"used_bytes"`
}

// ManifestAssetRef accounts for one placed code block.
type ManifestAssetRef struct {
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Section   string `json:"section"`
	Offset    uint32 `json:"offset"`
	SizeBytes uint32 `json:"size_bytes"`
}

// regionName maps a codeblock.Region to the manifest's section name.
func regionName(region string) string {
	switch region {
	case "ZEROPAGE":
		return "zeropage"
	case "PRG_ROM":
		return "prg_rom"
	case "NMI_POST_VBLANK", "NMI_VBLANK":
		return "nmi"
	case "RESET":
		return "reset"
	case "CHR":
		return "chr"
	default:
		return string(region)
	}
}

// FromSummary builds a BuildManifest from a rom.Rom's post-render
// Summary (rom.Rom.Summary(), or builder.BuildWithSummary's second
// return value). A nil summary (no successful render yet) yields an
// empty manifest.
func FromSummary(summary *rom.Summary, romSizeBytes int) *BuildManifest {
	if summary == nil {
		return &BuildManifest{FormatVersion: 1, ROMSizeBytes: uint32(romSizeBytes)}
	}

	m := &BuildManifest{
		FormatVersion: 1,
		ROMSizeBytes:  uint32(romSizeBytes),
		Assets:        make([]ManifestAssetRef, 0, len(summary.Placements)),
	}

	sectionIndex := make(map[string]int, len(summary.Regions))
	for _, rs := range summary.Regions {
		name := regionName(string(rs.Region))
		if idx, ok := sectionIndex[name]; ok {
			m.Sections[idx].SizeBytes += uint32(rs.SizeBytes)
			m.Sections[idx].UsedBytes += uint32(rs.UsedBytes)
			continue
		}
		sectionIndex[name] = len(m.Sections)
		m.Sections = append(m.Sections, ManifestSection{
			Name: name, Offset: uint32(rs.Offset), SizeBytes: uint32(rs.SizeBytes), UsedBytes: uint32(rs.UsedBytes),
		})
	}

	for _, p := range summary.Placements {
		if p.Kind != codeblock.Data && p.Kind != codeblock.CHR {
			continue
		}
		m.Assets = append(m.Assets, ManifestAssetRef{
			Label: p.Label, Kind: string(p.Kind), Section: regionName(string(p.Region)),
			Offset: uint32(p.Offset), SizeBytes: uint32(p.SizeBytes),
		})
	}

	return m
}
