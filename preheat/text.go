// SPDX-License-Identifier: MIT

// Package preheat implements the first pass of the pipeline: a
// non-destructive sweep over instruction or data bytes that only ever
// records evidence in a reftable.Table. Nothing here finalizes a symbol —
// that is section.Materialize's job, once every preheat call for a
// segment has run.
package preheat

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/internal/mips"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
)

// Text sweeps one contiguous run of code, recording branch/jump/function
// and lui/ori/addiu-pair evidence into table. rom/vram are the address of
// the first instruction in bytes; bytes must be a multiple of 4.
func Text(table *reftable.Table, cfg config.GlobalConfig, rom addrs.Rom, vram addrs.Vram, bytes []byte) {
	// hiCandidates tracks the most recent lui per target register, so a
	// later ori/addiu/load/store on that register can pair with it — the
	// textbook %hi/%lo reconstruction idiom.
	type hiCandidate struct {
		imm16 uint32
		vram  addrs.Vram
	}
	hiCandidates := make(map[uint8]hiCandidate)

	for off := 0; off+4 <= len(bytes); off += 4 {
		word := cfg.Endian().Word(bytes[off : off+4])
		here := vram.Add(addrs.Size(off))
		inst := mips.Decode(word)

		switch inst.Op {
		case mips.OpBranch:
			// delay slot: the target is relative to the instruction after
			// the branch, per the MIPS ISA's branch-displacement rule.
			target := here.Add(addrs.Size(4)).Add(addrs.Size(uint32(int32(inst.Imm) * 4)))
			rec := table.GetOrCreate(target)
			rec.SetSymType(metadata.NewType(metadata.BranchLabel))
			rec.SetAlignment(4)
			rec.IncrementReferences()

		case mips.OpJ:
			target := reconstructJumpTarget(here, inst.Target)
			rec := table.GetOrCreate(target)
			rec.SetSymType(metadata.NewType(metadata.BranchLabel))
			rec.SetAlignment(4)
			rec.IncrementReferences()

		case mips.OpJal:
			target := reconstructJumpTarget(here, inst.Target)
			rec := table.GetOrCreate(target)
			rec.SetSymType(metadata.NewType(metadata.Function))
			rec.SetAlignment(4)
			rec.IncrementReferences()

		case mips.OpLui:
			hiCandidates[inst.Rt] = hiCandidate{imm16: uint32(inst.Imm) & 0xFFFF, vram: here}

		default:
			if inst.IsLoadOrStore() || isAddiuOrOri(inst) {
				hc, ok := hiCandidates[inst.Rs]
				if !ok {
					continue
				}
				target := addrs.Vram((hc.imm16 << 16) + uint32(inst.Imm))
				delete(hiCandidates, inst.Rs)

				if inst.IsUnalignedPair() {
					// WORD_LEFT/RIGHT and DWORD_LEFT/RIGHT access pairs copy
					// a struct spanning an alignment boundary rather than
					// referencing a typed value of their own — no type or
					// alignment vote, per the access table, but the
					// reference itself is still worth recording at its true,
					// realigned address.
					alignN := uint32(4)
					if inst.IsDoublewordUnalignedPair() {
						alignN = 8
					}
					rec := table.GetOrCreate(target.AlignDown(alignN))
					rec.IncrementReferences()
					continue
				}

				// MIPS1 double-float disambiguation: an odd FPR on a single
				// lwc1/swc1 means the compiler actually emitted a
				// misaligned double access. Realign down to 8 and upgrade
				// the vote to Float64 rather than the Float32 a lone
				// lwc1/swc1 would otherwise suggest.
				if (inst.Op == mips.OpLwc1 || inst.Op == mips.OpSwc1) && inst.Rt%2 == 1 {
					rec := table.GetOrCreate(target.AlignDown(8))
					rec.SetAlignment(8)
					rec.SetSymType(metadata.NewType(metadata.Float64))
					rec.IncrementReferences()
					continue
				}

				rec := table.GetOrCreate(target)
				rec.SetAlignment(accessAlignment(inst.Op))
				if t, ok := accessType(inst.Op); ok {
					rec.SetSymType(t)
				}
				rec.IncrementReferences()
			}
		}
	}
}

func isAddiuOrOri(inst mips.Instruction) bool {
	return inst.Op == mips.OpAddiu || inst.Op == mips.OpOri
}

func reconstructJumpTarget(pc addrs.Vram, field uint32) addrs.Vram {
	top4 := uint32(pc) & 0xF0000000
	return addrs.Vram(top4 | (field << 2))
}

func accessAlignment(op mips.Op) uint8 {
	switch op {
	case mips.OpLb, mips.OpSb:
		return 1
	case mips.OpLh, mips.OpSh:
		return 2
	case mips.OpLw, mips.OpSw, mips.OpLwc1, mips.OpSwc1, mips.OpAddiu, mips.OpOri:
		return 4
	case mips.OpLdc1, mips.OpSdc1:
		return 8
	default:
		return 4
	}
}

func accessType(op mips.Op) (metadata.SymbolType, bool) {
	switch op {
	case mips.OpLb, mips.OpSb:
		return metadata.NewType(metadata.Byte), true
	case mips.OpLh, mips.OpSh:
		return metadata.NewType(metadata.Short), true
	case mips.OpLw, mips.OpSw:
		return metadata.NewType(metadata.Word), true
	case mips.OpLwc1, mips.OpSwc1:
		return metadata.NewType(metadata.Float32), true
	case mips.OpLdc1, mips.OpSdc1:
		return metadata.NewType(metadata.Float64), true
	default:
		return metadata.SymbolType{}, false
	}
}
