// SPDX-License-Identifier: MIT

package preheat

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
)

// VramInRange reports whether a candidate pointer value plausibly lands
// inside some known segment, so Data/Rodata/ExceptTable don't have to
// import the segment registry (which would create a cycle: segment
// already depends on reftable). Callers pass a single closure that covers
// every segment they want scanned against.
type VramInRange func(addrs.Vram) bool

// UserDeclaredSizeLookup resolves the user-declared size registered at an
// address, if any. Passed in for the same reason as VramInRange: reading
// one field off a segment's SymbolMetadata would otherwise require
// importing segment from preheat, which segment already imports.
type UserDeclaredSizeLookup func(addrs.Vram) (addrs.Size, bool)

// Data sweeps one contiguous run of word-aligned plain data bytes,
// implementing spec.md §4.4 points 1 and 2: prior-reference/auto-pad
// synthesis and pointer detection. String detection and float-cluster/
// late-rodata tracking (points 3-5) belong to Rodata, since a plain .data
// section never carries strings or float clusters; ExceptTable (point 6)
// reuses the same two points with no type-specific extras.
func Data(table *reftable.Table, cfg config.GlobalConfig, vramStart addrs.Vram, bytes []byte, inRange VramInRange, sizeLookup UserDeclaredSizeLookup) {
	sectionEnd := vramStart.Add(addrs.Size(len(bytes)))
	for off := 0; off+4 <= len(bytes); off += 4 {
		here := vramStart.Add(addrs.Size(off))
		recordPriorReference(table, here, sizeLookup, sectionEnd)
		corePointerSweep(table, cfg, here, bytes[off:off+4], inRange)
	}
}

// ExceptTable sweeps a gcc exception table. Per spec.md §4.4 point 6 its
// entries are opaque: only user-declared references and pointer voting
// apply, with no string guessing or float tracking.
func ExceptTable(table *reftable.Table, cfg config.GlobalConfig, vramStart addrs.Vram, bytes []byte, inRange VramInRange, sizeLookup UserDeclaredSizeLookup) {
	sectionEnd := vramStart.Add(addrs.Size(len(bytes)))
	for off := 0; off+4 <= len(bytes); off += 4 {
		here := vramStart.Add(addrs.Size(off))
		recordPriorReference(table, here, sizeLookup, sectionEnd)
		corePointerSweep(table, cfg, here, bytes[off:off+4], inRange)
	}
}

// recordPriorReference implements spec.md §4.4 point 1: if the word at
// here, or any of its four sub-byte positions, already carries evidence
// from an earlier pass, that evidence's type vote is reinforced; if the
// matching record has a user-declared size, a pad boundary is synthesized
// at the address immediately following it, unless that boundary would
// fall at or past the end of this section.
func recordPriorReference(table *reftable.Table, here addrs.Vram, sizeLookup UserDeclaredSizeLookup, sectionEnd addrs.Vram) {
	var anchor addrs.Vram
	found := false
	for b := addrs.Size(0); b < 4; b++ {
		if existing, ok := table.Get(here.Add(b)); ok {
			anchor = here.Add(b)
			found = true
			if t, confident := existing.SymType(); confident {
				existing.SetSymType(t)
			}
			break
		}
	}
	if !found || sizeLookup == nil {
		return
	}

	size, ok := sizeLookup(anchor)
	if !ok {
		return
	}
	padVram := anchor.Add(size)
	if padVram >= sectionEnd {
		return
	}
	table.GetOrCreate(padVram).MarkPadBoundary()
}

// corePointerSweep implements spec.md §4.4 point 2: if word4, read per
// cfg's byte order, looks like a Vram inside some known segment (per
// inRange), record it as a reference and give the slot holding the
// pointer an alignment vote of 4 (no type vote). A miss records
// nothing: a word that doesn't resolve to anything isn't evidence either
// way.
func corePointerSweep(table *reftable.Table, cfg config.GlobalConfig, here addrs.Vram, word4 []byte, inRange VramInRange) bool {
	word := cfg.Endian().Word(word4)
	candidate := addrs.Vram(word)
	if !inRange(candidate) {
		return false
	}

	rec := table.GetOrCreate(candidate)
	rec.SetAlignment(4)
	rec.IncrementReferences()

	// the slot holding the pointer gets a 4-byte alignment vote of its
	// own, recorded against the slot's own address, separately from the
	// vote at the pointed-to target; no type is voted for the slot.
	holder := table.GetOrCreate(here)
	holder.SetAlignment(4)
	return true
}
