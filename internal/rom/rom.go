// Package rom implements the ROM layout engine: the two-pass
// placement of collected code blocks into the fixed memory regions of
// an iNES cartridge image, producing a byte-exact 24,592-byte file
// (spec.md §4.6), grounded on
// original_source/backend/core/rom/rom.py.
package rom

import (
	"encoding/binary"

	"cartforge/internal/codeblock"
	"cartforge/internal/romerr"
)

const (
	zeroPageSize = 256

	prgStart      = 0xC000
	prgSize       = 16384
	vectorTableAt = 0xFFFA // relative to CPU address space

	chrSize         = 8192
	chrTestTileSize = 16

	headerSize = 16
	totalSize  = headerSize + prgSize + chrSize // 24,592
)

// Rom accumulates code blocks by region, in insertion order, and
// renders them into the final cartridge image. Write-only during Add,
// read-only during Render.
type Rom struct {
	zeropage      []codeblock.Block
	prg           []codeblock.Block
	nmiPostVBlank []codeblock.Block
	nmiVBlank     []codeblock.Block
	reset         []codeblock.Block
	chr           []codeblock.Block

	placed map[string]bool

	lastSummary *Summary
}

// RegionSummary accounts for one fixed ROM region after a render: the
// byte range it occupies and how much of that range carried actual
// block bytes.
type RegionSummary struct {
	Region    codeblock.Region
	Offset    int
	SizeBytes int
	UsedBytes int
}

// PlacementSummary accounts for one placed block after a render.
type PlacementSummary struct {
	Label     string
	Kind      codeblock.Kind
	Region    codeblock.Region
	Offset    int
	SizeBytes int
}

// Summary is the full post-render accounting internal/manifest builds
// its report from (spec.md §2.3's ambient build manifest).
type Summary struct {
	Regions    []RegionSummary
	Placements []PlacementSummary
}

// Summary returns the accounting captured by the most recent
// successful Render, or nil if Render has not yet succeeded.
func (r *Rom) Summary() *Summary {
	return r.lastSummary
}

// New returns an empty Rom.
func New() *Rom {
	return &Rom{placed: make(map[string]bool)}
}

// Add places b into its region's insertion-ordered list. Re-adding a
// label already placed is a no-op (ROM-side idempotence; the caller's
// recursive dependency walk may still run, cheaply, on top of this).
func (r *Rom) Add(b codeblock.Block) error {
	if r.placed[b.Label()] {
		return nil
	}
	region, err := codeblock.RegionForKind(b.Kind())
	if err != nil {
		return err
	}
	r.placed[b.Label()] = true
	switch region {
	case codeblock.RegionZeroPage:
		r.zeropage = append(r.zeropage, b)
	case codeblock.RegionPRGROM:
		r.prg = append(r.prg, b)
	case codeblock.RegionNMIPostVBlank:
		r.nmiPostVBlank = append(r.nmiPostVBlank, b)
	case codeblock.RegionNMIVBlank:
		r.nmiVBlank = append(r.nmiVBlank, b)
	case codeblock.RegionReset:
		r.reset = append(r.reset, b)
	case codeblock.RegionCHR:
		r.chr = append(r.chr, b)
	}
	return nil
}

// Contains reports whether label has already been placed into the
// ROM (as opposed to merely existing in the code-block registry).
func (r *Rom) Contains(label string) bool {
	return r.placed[label]
}

// placement records the start offset a block was assigned during
// Pass A (for CHR blocks, its byte offset within the CHR bank, not its
// tile index), so Pass B can re-derive its start offset without
// recomputing Sizes.
type placement struct {
	block  codeblock.Block
	offset int // byte offset (zeropage/PRG/NMI/RESET) or CHR byte offset
}

// Render executes the two-pass layout algorithm and returns the final
// iNES image.
func (r *Rom) Render() ([]byte, error) {
	resolved := make(map[string]uint16)

	if err := r.layoutZeroPage(resolved); err != nil {
		return nil, err
	}

	nmiStart, resetStart, prgEnd, err := r.layoutPRG(resolved)
	if err != nil {
		return nil, err
	}

	chrPlacements, err := r.layoutCHR(resolved)
	if err != nil {
		return nil, err
	}

	prgBuf, err := r.assemblePRG(resolved, nmiStart, resetStart, prgEnd)
	if err != nil {
		return nil, err
	}

	chrBuf, err := r.emitCHR(chrPlacements, resolved)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, totalSize)
	out = append(out, header()...)
	out = append(out, prgBuf...)
	out = append(out, chrBuf...)
	if len(out) != totalSize {
		return nil, romerr.New(romerr.SizeMismatch, "layout", "assembled rom is %d bytes, want %d", len(out), totalSize)
	}

	r.lastSummary = r.summarize(resolved, nmiStart, resetStart, prgEnd, chrPlacements)
	return out, nil
}

// summarize builds the post-render accounting exposed via Summary,
// from the same layout data Render just computed.
func (r *Rom) summarize(resolved map[string]uint16, nmiStart, resetStart, prgEnd int, chrPlacements []placement) *Summary {
	var s Summary

	placementsFor := func(blocks []codeblock.Block, region codeblock.Region) int {
		used := 0
		for _, b := range blocks {
			sz, _ := b.Size()
			off := int(resolved[b.Label()])
			s.Placements = append(s.Placements, PlacementSummary{
				Label: b.Label(), Kind: b.Kind(), Region: region, Offset: off, SizeBytes: sz,
			})
			used += sz
		}
		return used
	}

	zpUsed := placementsFor(r.zeropage, codeblock.RegionZeroPage)
	s.Regions = append(s.Regions, RegionSummary{Region: codeblock.RegionZeroPage, Offset: 0, SizeBytes: zeroPageSize, UsedBytes: zpUsed})

	prgUsed := placementsFor(r.prg, codeblock.RegionPRGROM)
	s.Regions = append(s.Regions, RegionSummary{Region: codeblock.RegionPRGROM, Offset: prgStart, SizeBytes: nmiStart - prgStart, UsedBytes: prgUsed})

	nmiUsed := placementsFor(r.nmiPostVBlank, codeblock.RegionNMIPostVBlank)
	nmiUsed += placementsFor(r.nmiVBlank, codeblock.RegionNMIVBlank)
	nmiUsed++ // the trailing RTI byte
	s.Regions = append(s.Regions, RegionSummary{Region: codeblock.RegionNMIVBlank, Offset: nmiStart, SizeBytes: resetStart - nmiStart, UsedBytes: nmiUsed})

	resetUsed := placementsFor(r.reset, codeblock.RegionReset)
	s.Regions = append(s.Regions, RegionSummary{Region: codeblock.RegionReset, Offset: resetStart, SizeBytes: prgEnd - resetStart, UsedBytes: resetUsed})

	chrUsed := chrTestTileSize
	for _, p := range chrPlacements {
		sz, _ := p.block.Size()
		s.Placements = append(s.Placements, PlacementSummary{
			Label: p.block.Label(), Kind: p.block.Kind(), Region: codeblock.RegionCHR, Offset: p.offset, SizeBytes: sz,
		})
		chrUsed += sz
	}
	s.Regions = append(s.Regions, RegionSummary{Region: codeblock.RegionCHR, Offset: 0, SizeBytes: chrSize, UsedBytes: chrUsed})

	return &s
}

func header() []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], []byte("NES\x1A"))
	h[4] = 0x01 // one 16 KiB PRG page
	h[5] = 0x01 // one 8 KiB CHR page
	h[6] = 0x00
	h[7] = 0x00
	// bytes 8..16 already zero
	return h
}

func (r *Rom) layoutZeroPage(resolved map[string]uint16) error {
	cursor := 0
	for _, b := range r.zeropage {
		sz, err := b.Size()
		if err != nil {
			return err
		}
		if cursor+sz > zeroPageSize {
			return romerr.New(romerr.ZeroPageOverflow, "layout", "zero page exceeds %d bytes placing %q", zeroPageSize, b.Label())
		}
		resolved[b.Label()] = uint16(cursor)
		cursor += sz
	}
	return nil
}

// layoutPRG assigns addresses to PRG_ROM, NMI_POST_VBLANK,
// NMI_VBLANK, and RESET blocks in that order (folding each address
// into resolved), returning nmiStart/resetStart (for the vector
// table) and the final cursor (checked against the vector-table
// boundary).
func (r *Rom) layoutPRG(resolved map[string]uint16) (nmiStart, resetStart, cursor int, err error) {
	cursor = prgStart

	place := func(blocks []codeblock.Block) error {
		for _, b := range blocks {
			sz, sErr := b.Size()
			if sErr != nil {
				return sErr
			}
			resolved[b.Label()] = uint16(cursor)
			cursor += sz
		}
		return nil
	}

	if err = place(r.prg); err != nil {
		return 0, 0, 0, err
	}

	nmiStart = cursor
	if err = place(r.nmiPostVBlank); err != nil {
		return 0, 0, 0, err
	}
	if err = place(r.nmiVBlank); err != nil {
		return 0, 0, 0, err
	}
	cursor++ // the trailing $40 RTI byte

	resetStart = cursor
	if err = place(r.reset); err != nil {
		return 0, 0, 0, err
	}

	if cursor > vectorTableAt {
		return 0, 0, 0, romerr.New(romerr.PrgOverflow, "layout", "prg cursor 0x%04X exceeds vector table at 0x%04X", cursor, vectorTableAt)
	}
	return nmiStart, resetStart, cursor, nil
}

func (r *Rom) layoutCHR(resolved map[string]uint16) ([]placement, error) {
	var placements []placement
	cursor := chrTestTileSize
	for _, b := range r.chr {
		sz, err := b.Size()
		if err != nil {
			return nil, err
		}
		if cursor+sz > chrSize {
			return nil, romerr.New(romerr.ChrOverflow, "layout", "chr bank exceeds %d bytes placing %q", chrSize, b.Label())
		}
		resolved[b.Label()] = uint16(cursor / 16)
		placements = append(placements, placement{block: b, offset: cursor})
		cursor += sz
	}
	return placements, nil
}

func (r *Rom) assemblePRG(resolved map[string]uint16, nmiStart, resetStart, prgEnd int) ([]byte, error) {
	buf := make([]byte, 0, prgSize)
	emit := func(b codeblock.Block, offset int) error {
		rendered, err := b.Render(offset, resolved)
		if err != nil {
			return err
		}
		sz, err := b.Size()
		if err != nil {
			return err
		}
		if len(rendered.Bytes) != sz {
			return romerr.New(romerr.SizeMismatch, "emit", "block %q rendered %d bytes, declared size %d", b.Label(), len(rendered.Bytes), sz)
		}
		buf = append(buf, rendered.Bytes...)
		return nil
	}

	for _, b := range r.prg {
		off := int(resolved[b.Label()])
		if err := emit(b, off); err != nil {
			return nil, err
		}
	}
	for _, b := range r.nmiPostVBlank {
		off := int(resolved[b.Label()])
		if err := emit(b, off); err != nil {
			return nil, err
		}
	}
	for _, b := range r.nmiVBlank {
		off := int(resolved[b.Label()])
		if err := emit(b, off); err != nil {
			return nil, err
		}
	}
	buf = append(buf, 0x40) // RTI
	for _, b := range r.reset {
		off := int(resolved[b.Label()])
		if err := emit(b, off); err != nil {
			return nil, err
		}
	}

	if prgStart+len(buf) != prgEnd {
		return nil, romerr.New(romerr.SizeMismatch, "emit", "emitted prg length %d does not match laid-out cursor %d", len(buf), prgEnd-prgStart)
	}

	for len(buf) < vectorTableAt-prgStart {
		buf = append(buf, 0x00)
	}

	nmiVec := uint16(nmiStart)
	resetVec := uint16(resetStart)
	buf = binary.LittleEndian.AppendUint16(buf, nmiVec)
	buf = binary.LittleEndian.AppendUint16(buf, resetVec)
	buf = binary.LittleEndian.AppendUint16(buf, nmiVec) // IRQ reuses NMI

	if len(buf) != prgSize {
		return nil, romerr.New(romerr.SizeMismatch, "emit", "prg buffer is %d bytes, want %d", len(buf), prgSize)
	}
	return buf, nil
}

func (r *Rom) emitCHR(placements []placement, resolved map[string]uint16) ([]byte, error) {
	buf := make([]byte, chrSize)
	// Background test tile: a four-color quadrant pattern. Bit plane
	// 0 is 0x0F on all 8 rows (right half of each row set), bit plane
	// 1 is 0x00 for the top half and 0xFF for the bottom half.
	copy(buf[0:chrTestTileSize], []byte{
		0x0F, 0x0F, 0x0F, 0x0F, 0x0F, 0x0F, 0x0F, 0x0F,
		0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF,
	})

	for _, p := range placements {
		rendered, err := p.block.Render(p.offset, resolved)
		if err != nil {
			return nil, err
		}
		sz, err := p.block.Size()
		if err != nil {
			return nil, err
		}
		if len(rendered.Bytes) != sz {
			return nil, romerr.New(romerr.SizeMismatch, "emit", "chr block %q rendered %d bytes, declared size %d", p.block.Label(), len(rendered.Bytes), sz)
		}
		copy(buf[p.offset:p.offset+sz], rendered.Bytes)
	}

	return buf, nil
}
