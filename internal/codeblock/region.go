package codeblock

import "cartforge/internal/romerr"

// Region names the fixed ROM area a block's Kind places it into.
type Region string

const (
	RegionZeroPage      Region = "ZEROPAGE"
	RegionPRGROM        Region = "PRG_ROM"
	RegionNMIPostVBlank Region = "NMI_POST_VBLANK"
	RegionNMIVBlank     Region = "NMI_VBLANK"
	RegionReset         Region = "RESET"
	RegionCHR           Region = "CHR"
)

// RegionForKind is the fixed map from block Kind to target ROM region
// (spec.md §3: "Kind determines target region of the ROM via a fixed
// map").
func RegionForKind(k Kind) (Region, error) {
	switch k {
	case Zeropage:
		return RegionZeroPage, nil
	case Subroutine, Data:
		return RegionPRGROM, nil
	case Update:
		return RegionNMIPostVBlank, nil
	case Vblank:
		return RegionNMIVBlank, nil
	case Preamble:
		return RegionReset, nil
	case CHR:
		return RegionCHR, nil
	default:
		return "", romerr.New(romerr.UnsupportedAssetKind, "layout", "no region mapping for code-block kind %q", k)
	}
}
