// SPDX-License-Identifier: MIT

package preheat

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
)

// LateRodataState threads the two-level maybe_reached/reached state
// (spec.md §4.4 point 5) across every Rodata call for one segment, so a
// single misleading float run early in the section can't, by itself,
// flip the segment permanently into late-rodata: it only raises
// maybeReached, and reached only latches once a later call actually
// confirms it against a float/double vote.
type LateRodataState struct {
	maybeReached bool
	reached      bool
	sawJumptable bool
}

// Reached reports whether late-rodata has been confirmed for this
// segment so far.
func (s *LateRodataState) Reached() bool { return s.reached }

// RodataResult summarizes what one Rodata call observed. The authoritative
// effect is always the evidence recorded into the table; this is for
// callers (and tests) that want to inspect the float-cluster counters
// directly.
type RodataResult struct {
	FloatCounter        int
	FloatPaddingCounter int
	LateRodataReached   bool
}

// Rodata sweeps one contiguous run of rodata bytes, implementing spec.md
// §4.4 points 1 through 5: prior-reference/auto-pad synthesis, pointer
// detection, string detection, float-cluster tracking, and late-rodata
// detection. state must be the same *LateRodataState across every Rodata
// call belonging to one segment, in address order.
func Rodata(table *reftable.Table, cfg config.GlobalConfig, vramStart addrs.Vram, bytes []byte, inRange VramInRange, sizeLookup UserDeclaredSizeLookup, state *LateRodataState) RodataResult {
	sectionEnd := vramStart.Add(addrs.Size(len(bytes)))

	floatCounter := 0
	floatPaddingCounter := 0
	var prevFloatKind metadata.SymbolType
	hasPrevFloat := false

	remainingString := 0

	for off := 0; off+4 <= len(bytes); {
		here := vramStart.Add(addrs.Size(off))

		if remainingString > 0 {
			consumed := remainingString
			if consumed > 4 {
				consumed = 4
			}
			remainingString -= consumed
			off += 4
			continue
		}

		recordPriorReference(table, here, sizeLookup, sectionEnd)

		rec, existing := table.Get(here)
		var curType metadata.SymbolType
		hasType := false
		if existing {
			curType, hasType = rec.SymType()
		}
		word := cfg.Endian().Word(bytes[off : off+4])
		if !hasType && hasPrevFloat && word == 0 {
			// an untyped zero word immediately following a float cluster is
			// still counted against that cluster as trailing padding.
			curType, hasType = prevFloatKind, true
		}

		isFloat := hasType && (curType.Kind() == metadata.Float32 || curType.Kind() == metadata.Float64)

		switch {
		case isFloat:
			floatCounter++
			if word == 0 {
				floatPaddingCounter++
			}
			prevFloatKind, hasPrevFloat = curType, true

			if state.maybeReached && !state.reached {
				state.reached = true
			}
		case hasType && curType.Kind() == metadata.Jumptable:
			state.sawJumptable = true
			floatCounter = 0
			floatPaddingCounter = 0
			hasPrevFloat = false
		default:
			floatCounter = 0
			floatPaddingCounter = 0
			hasPrevFloat = false
		}

		corePointerSweep(table, cfg, here, bytes[off:off+4], inRange)

		if size, ok := tryGuessString(table, cfg, here, bytes, off, state.reached || state.maybeReached); ok {
			// size counts from here; the current word is stepped over below
			remainingString = int(size) - 4
			floatCounter = 0
			floatPaddingCounter = 0
			hasPrevFloat = false
		}

		off += 4
	}

	// a jumptable immediately followed by a float cluster whose padding
	// trails the count by exactly one slot is the textbook late-rodata
	// signature — but it only ever promotes to "maybe", never straight to
	// "reached": that only happens once a later call's float vote confirms
	// it, per the two-level state this function threads across calls.
	state.maybeReached = false
	if !state.reached && state.sawJumptable && floatPaddingCounter+1 == floatCounter {
		state.maybeReached = true
	}

	return RodataResult{
		FloatCounter:        floatCounter,
		FloatPaddingCounter: floatPaddingCounter,
		LateRodataReached:   state.reached,
	}
}

// isPrintable reports whether b is a plain-ASCII printable byte. This is
// the one Encoding this pipeline implements; a different game's text
// encoding would plug in here as an additional case.
func isPrintable(b byte) bool {
	return b >= 0x20 && b < 0x7F
}

// tryGuessString implements spec.md §4.4 point 3: scan forward from here
// for a printable run terminated by NUL. On success it records a CString
// vote sized to the next multiple of 4, extended to the next 8-byte
// boundary when the word filling that gap is unreferenced zero padding,
// and returns the padded size (counted from here) so the caller can skip
// over the string's remaining bytes.
// lateRodata suppresses string guessing entirely: a late-rodata region is
// floats and jumptables, never text.
func tryGuessString(table *reftable.Table, cfg config.GlobalConfig, here addrs.Vram, bytes []byte, off int, lateRodata bool) (addrs.Size, bool) {
	if lateRodata {
		return 0, false
	}
	if _, existing := table.Get(here); existing {
		// a slot that already carries independent evidence is not a
		// string: string guessing only applies to otherwise-unclaimed data.
		return 0, false
	}

	nul := -1
	for i := off; i < len(bytes); i++ {
		if bytes[i] == 0 {
			nul = i
			break
		}
		if !isPrintable(bytes[i]) {
			return 0, false
		}
	}
	if nul < 0 || nul == off {
		return 0, false
	}

	rawSize := uint32(nul-off) + 1 // include the NUL terminator
	padded := nextMultipleUint32(rawSize, 4)

	vramEnd := here.Add(addrs.Size(padded))
	aligned8 := vramEnd.NextMultiple(8)
	if aligned8 > vramEnd {
		extraOff := off + int(padded)
		if extraOff+4 <= len(bytes) && cfg.Endian().Word(bytes[extraOff:extraOff+4]) == 0 {
			if _, referenced := table.Get(vramEnd); !referenced {
				padded = uint32(aligned8.Diff(here))
			}
		}
	}

	rec := table.GetOrCreate(here)
	rec.SetSymType(metadata.NewType(metadata.CString))
	rec.SetSize(addrs.Size(padded), true)
	rec.SetAlignment(4)

	return addrs.Size(padded), true
}

func nextMultipleUint32(v, n uint32) uint32 {
	rem := v % n
	if rem == 0 {
		return v
	}
	return v + (n - rem)
}
