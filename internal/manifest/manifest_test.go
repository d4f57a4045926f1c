package manifest

import (
	"testing"

	"cartforge/internal/codeblock"
	"cartforge/internal/rom"
)

func TestFromSummaryWithNilSummaryYieldsEmptyManifest(t *testing.T) {
	m := FromSummary(nil, 24592)
	if m == nil {
		t.Fatal("FromSummary(nil, ...) = nil")
	}
	if m.FormatVersion != 1 {
		t.Fatalf("FormatVersion = %d, want 1", m.FormatVersion)
	}
	if m.ROMSizeBytes != 24592 {
		t.Fatalf("ROMSizeBytes = %d, want 24592", m.ROMSizeBytes)
	}
	if len(m.Sections) != 0 {
		t.Fatalf("Sections = %v, want empty", m.Sections)
	}
	if len(m.Assets) != 0 {
		t.Fatalf("Assets = %v, want empty", m.Assets)
	}
}

func TestFromSummaryMergesNMIRegionsIntoOneSection(t *testing.T) {
	summary := &rom.Summary{
		Regions: []rom.RegionSummary{
			{Region: codeblock.RegionZeroPage, Offset: 0, SizeBytes: 256, UsedBytes: 6},
			{Region: codeblock.RegionPRGROM, Offset: 0xC000, SizeBytes: 100, UsedBytes: 80},
			{Region: codeblock.RegionNMIPostVBlank, Offset: 0xC100, SizeBytes: 8, UsedBytes: 4},
			{Region: codeblock.RegionNMIVBlank, Offset: 0xC108, SizeBytes: 2, UsedBytes: 1},
		},
	}
	m := FromSummary(summary, 24592)

	names := make([]string, len(m.Sections))
	for i, s := range m.Sections {
		names[i] = s.Name
	}
	wantNames := []string{"zeropage", "prg_rom", "nmi"}
	if !sameElements(names, wantNames) {
		t.Fatalf("section names = %v, want %v (any order)", names, wantNames)
	}

	for _, s := range m.Sections {
		if s.Name == "nmi" {
			if s.SizeBytes != 10 {
				t.Fatalf("nmi SizeBytes = %d, want 10", s.SizeBytes)
			}
			if s.UsedBytes != 5 {
				t.Fatalf("nmi UsedBytes = %d, want 5", s.UsedBytes)
			}
		}
	}
}

func TestFromSummaryReportsCHRPlacementOffsetNotTileIndex(t *testing.T) {
	summary := &rom.Summary{
		Regions: []rom.RegionSummary{
			{Region: codeblock.RegionCHR, Offset: 0, SizeBytes: 8192, UsedBytes: 48},
		},
		Placements: []rom.PlacementSummary{
			{Label: "asset__sprite_set__hero", Kind: codeblock.CHR, Region: codeblock.RegionCHR, Offset: 16, SizeBytes: 32},
		},
	}
	m := FromSummary(summary, 24592)

	if len(m.Assets) != 1 {
		t.Fatalf("len(Assets) = %d, want 1", len(m.Assets))
	}
	asset := m.Assets[0]
	if asset.Label != "asset__sprite_set__hero" {
		t.Fatalf("Label = %q, want %q", asset.Label, "asset__sprite_set__hero")
	}
	if asset.Section != "chr" {
		t.Fatalf("Section = %q, want %q", asset.Section, "chr")
	}
	if asset.Offset != 16 {
		t.Fatalf("Offset = %d, want 16", asset.Offset)
	}
	if asset.SizeBytes != 32 {
		t.Fatalf("SizeBytes = %d, want 32", asset.SizeBytes)
	}
}

func sameElements(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]int, len(want))
	for _, w := range want {
		seen[w]++
	}
	for _, g := range got {
		if seen[g] == 0 {
			return false
		}
		seen[g]--
	}
	return true
}
