// SPDX-License-Identifier: MIT

// Package section implements materialization: cutting a preheated
// section's bytes into symbols at the evidence's cut points, and
// re-analyzing text symbols to emit per-instruction relocation records.
package section

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/curated"
	"github.com/Decompollaborate/py-mips-disasm/internal/mips"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
	"github.com/Decompollaborate/py-mips-disasm/reloc"
	"github.com/Decompollaborate/py-mips-disasm/segment"
)

// Settings controls the few behavioral knobs materialization needs beyond
// what's already in config.GlobalConfig: whether a symbol's
// user_declared_size should suppress the trailing-nop padding heuristic.
type Settings struct {
	RespectUserDeclaredSize bool
}

// Symbol is one materialized, cut-and-sized piece of a section.
type Symbol struct {
	Vram addrs.Vram
	Rom  addrs.Rom
	Meta *metadata.SymbolMetadata
	// Bytes is nil for a bss (noload) symbol.
	Bytes []byte
}

// CutPoints derives the sorted symbol boundaries for a section from its
// owning segment's user symbols and preheat evidence, in [vram0, vramEnd)
// order. vram0 is always included as the first cut point even if nothing
// voted for it.
func CutPoints(owner *segment.Segment, vram0, vramEnd addrs.Vram) []addrs.Vram {
	seen := map[addrs.Vram]bool{vram0: true}
	var points []addrs.Vram
	points = append(points, vram0)

	owner.FindSymbolsRange(vram0, vramEnd, func(m *metadata.SymbolMetadata) {
		if !seen[m.Vram()] {
			seen[m.Vram()] = true
			points = append(points, m.Vram())
		}
	})

	// evidence with a confident type and no backing SymbolMetadata yet
	// still deserves its own cut point (spec.md §4.4's "sorted (Vram,
	// Option<SymbolType>) -> auto_pads" preheater result).
	owner.ReferenceTable().Range(vram0, vramEnd, func(r *reftable.ReferencedAddress) {
		_, confident := r.SymType()
		if (confident || r.IsPadBoundary()) && !seen[r.Vram()] {
			seen[r.Vram()] = true
			points = append(points, r.Vram())
		}
	})

	insertionSort(points)
	return points
}

func insertionSort(points []addrs.Vram) {
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j] < points[j-1]; j-- {
			points[j], points[j-1] = points[j-1], points[j]
		}
	}
}

// Materialize cuts rom/vram/bytes at the given sorted cut points (the
// first of which must equal vram0, the address of bytes[0]) into Symbol
// records. The last symbol extends to the end of bytes. Returns a
// curated error if cuts violates that precondition — CutPoints always
// produces a conforming slice, so this only fires when a caller builds
// cuts by hand.
func Materialize(owner *segment.Segment, rom0 addrs.Rom, vram0 addrs.Vram, bytes []byte, cuts []addrs.Vram) ([]Symbol, error) {
	if len(cuts) == 0 {
		return nil, curated.Errorf("section: materialize called with no cut points for vram0 %s", vram0)
	}
	if cuts[0] != vram0 {
		return nil, curated.Errorf("section: first cut point %s does not match vram0 %s", cuts[0], vram0)
	}

	out := make([]Symbol, 0, len(cuts))
	for i, v := range cuts {
		start := uint32(v.Diff(vram0))
		var end uint32
		if i+1 < len(cuts) {
			end = uint32(cuts[i+1].Diff(vram0))
		} else {
			end = uint32(len(bytes))
		}

		meta, ok := owner.Get(v)
		if !ok {
			meta = metadata.New(metadata.Autogenerated, v)
		}
		meta.SetAutodetectedSize(addrs.Size(end - start))
		meta.SetIsDefined(true)

		symRom := rom0.Add(addrs.Size(start))
		meta.SetRom(symRom)

		out = append(out, Symbol{
			Vram:  v,
			Rom:   symRom,
			Meta:  meta,
			Bytes: bytes[start:end],
		})
	}
	return out, nil
}

// MaterializeText re-analyzes a materialized function's instructions,
// emitting one relocation per branch/jump/hi-lo pair, and counts trailing
// nops as padding unless Settings.RespectUserDeclaredSize and the symbol
// already carries a user-declared size.
func MaterializeText(owner *segment.Segment, cfg config.GlobalConfig, settings Settings, sym Symbol) []reloc.Relocation {
	var relocs []reloc.Relocation

	type hiCandidate struct {
		imm16 uint32
		rom   addrs.Rom
	}
	hiCandidates := make(map[uint8]hiCandidate)

	for off := 0; off+4 <= len(sym.Bytes); off += 4 {
		word := cfg.Endian().Word(sym.Bytes[off : off+4])
		here := sym.Vram.Add(addrs.Size(off))
		instRom := sym.Rom.Add(addrs.Size(off))
		inst := mips.Decode(word)

		switch inst.Op {
		case mips.OpBranch:
			target := here.Add(4).Add(addrs.Size(uint32(int32(inst.Imm) * 4)))
			relocs = append(relocs, reloc.NewAddressRelocation(instRom, reloc.R_MIPS_PC16, target, 0))

		case mips.OpJal:
			target := reconstructTarget(here, inst.Target)
			relocs = append(relocs, reloc.NewAddressRelocation(instRom, reloc.R_MIPS_26, target, 0))

		case mips.OpLui:
			hiCandidates[inst.Rt] = hiCandidate{imm16: uint32(inst.Imm) & 0xFFFF, rom: instRom}

		default:
			if hc, ok := hiCandidates[inst.Rs]; ok && (inst.IsLoadOrStore() || inst.Op == mips.OpAddiu || inst.Op == mips.OpOri) {
				target := addrs.Vram((hc.imm16 << 16) + uint32(inst.Imm))

				// a WORD_LEFT/RIGHT or DWORD_LEFT/RIGHT access pair implies
				// the true symbol begins at the next aligned address below
				// the reconstructed one, not at the unaligned address the
				// instruction's own immediate encodes.
				if inst.IsUnalignedPair() {
					alignN := uint32(4)
					if inst.IsDoublewordUnalignedPair() {
						alignN = 8
					}
					target = target.AlignDown(alignN)
				}

				relocs = append(relocs, reloc.NewAddressRelocation(hc.rom, reloc.R_MIPS_HI16, target, 0))
				relocs = append(relocs, reloc.NewAddressRelocation(instRom, reloc.R_MIPS_LO16, target, 0))
				delete(hiCandidates, inst.Rs)
			}
		}
	}

	// any lui left unpaired becomes a synthetic constant relocation
	for _, hc := range hiCandidates {
		relocs = append(relocs, reloc.NewConstantRelocation(hc.rom, reloc.R_CUSTOM_CONSTANT_HI, hc.imm16<<16))
	}

	if !(settings.RespectUserDeclaredSize && hasUserDeclaredSize(sym.Meta)) {
		if padded := TrailingNopCount(cfg, sym.Bytes); padded > 0 {
			trimmed := addrs.Size(len(sym.Bytes) - padded*4)
			sym.Meta.SetAutodetectedSize(trimmed)
		}
	}

	return relocs
}

func hasUserDeclaredSize(m *metadata.SymbolMetadata) bool {
	_, ok := m.UserDeclaredSize()
	return ok
}

// TrailingNopCount counts the run of zero (nop) words at the end of bytes,
// scanning backward and stopping at the first non-nop word or at a nop
// that sits in the delay slot of a branch or jump (that nop belongs to
// the instruction before it, not to padding). The first word is never
// counted.
func TrailingNopCount(cfg config.GlobalConfig, bytes []byte) int {
	count := 0
	for off := len(bytes) - 4; off >= 4; off -= 4 {
		if cfg.Endian().Word(bytes[off:off+4]) != 0 {
			break
		}
		prev := mips.Decode(cfg.Endian().Word(bytes[off-4 : off]))
		if prev.IsBranchOrJump() || prev.Op == mips.OpJr || prev.Op == mips.OpJalr {
			break
		}
		count++
	}
	return count
}

func reconstructTarget(pc addrs.Vram, field uint32) addrs.Vram {
	top4 := uint32(pc) & 0xF0000000
	return addrs.Vram(top4 | (field << 2))
}

// MaterializeData re-analyzes a materialized data/rodata/jumptable symbol
// word by word, emitting one R_MIPS_32 relocation per word that resolves
// to a live reference in owner (spec.md §4.5's pointer-word handling).
// Words that don't resolve to anything the segment knows about are left
// alone: not every word of a Word/DWord/Jumptable symbol is a pointer, and
// a miss here is not evidence of anything — only a hit is actionable.
//
// Jumptable entries are the one case where a resolved word always gets a
// JumptableLabel at its target, even if a symbol already exists there,
// because a jump table may legitimately point into the middle of another
// label's range.
func MaterializeData(owner *segment.Segment, cfg config.GlobalConfig, sym Symbol) []reloc.Relocation {
	symType, hasType := sym.Meta.Type()
	if !hasType || !symType.CanReferenceSymbols() {
		return nil
	}

	isJumptable := symType.Kind() == metadata.Jumptable

	var relocs []reloc.Relocation
	for off := 0; off+4 <= len(sym.Bytes); off += 4 {
		word := cfg.Endian().Word(sym.Bytes[off : off+4])
		wordRom := sym.Rom.Add(addrs.Size(off))
		target := addrs.Vram(word)

		ref, ok := owner.FindReference(target, true)
		if !ok {
			continue
		}

		if isJumptable {
			owner.ReferenceTable().GetOrCreate(target).SetSymType(metadata.NewType(metadata.JumptableLabel))
		}

		addend := int32(0)
		if refVram := ref.Vram(); refVram != target {
			addend = int32(target.Diff(refVram))
		}
		relocs = append(relocs, reloc.NewAddressRelocation(wordRom, reloc.R_MIPS_32, ref.Vram(), addend))
	}
	return relocs
}
