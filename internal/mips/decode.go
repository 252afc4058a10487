// SPDX-License-Identifier: MIT

// Package mips implements the narrow slice of MIPS32/MIPS1 instruction
// decoding the preheater needs: recognizing branches, jumps, and the
// %hi/%lo pairing idiom used to materialize a 32-bit address or constant
// across two instructions. It is not a general disassembler — callers
// needing a mnemonic or full operand string should go elsewhere.
package mips

// Op is the coarse instruction family the preheater's sweep cares about.
// Working from the primary opcode field downward mirrors the
// highest-bits-first bitfield cascade most MIPS and ARM/Thumb decoders
// use: the primary opcode narrows the instruction, then a handful of
// secondary fields (rt, funct) disambiguate within it.
type Op int

const (
	OpOther Op = iota
	OpJ         // j target
	OpJal       // jal target
	OpJr        // jr rs (includes jr $ra)
	OpJalr      // jalr rs
	OpBranch    // beq/bne/blez/bgtz/beql/bnel/blezl/bgtzl, or bltz/bgez family
	OpLui       // lui rt, imm
	OpOri       // ori rt, rs, imm
	OpAddiu     // addiu rt, rs, imm
	OpLw        // lw rt, imm(rs)
	OpSw        // sw rt, imm(rs)
	OpLb        // lb/lbu rt, imm(rs)
	OpSb        // sb rt, imm(rs)
	OpLh        // lh/lhu rt, imm(rs)
	OpSh        // sh rt, imm(rs)
	OpLwc1      // lwc1 ft, imm(rs) (single float load)
	OpLdc1      // ldc1 ft, imm(rs) (double float load, MIPS1-aligned)
	OpSwc1
	OpSdc1
	OpLwl // lwl rt, imm(rs) (word left, unaligned-word load pair with Lwr)
	OpLwr // lwr rt, imm(rs) (word right)
	OpSwl // swl rt, imm(rs)
	OpSwr // swr rt, imm(rs)
	OpLdl // ldl rt, imm(rs) (doubleword left, MIPS3)
	OpLdr // ldr rt, imm(rs)
	OpSdl // sdl rt, imm(rs)
	OpSdr // sdr rt, imm(rs)
)

// Instruction is the decoded shape of one 32-bit MIPS word, populated only
// in the fields relevant to Op.
type Instruction struct {
	Raw  uint32
	Op   Op
	Rs   uint8
	Rt   uint8
	Rd   uint8
	// Imm is the sign-extended 16-bit immediate for I-type instructions.
	Imm int32
	// Target is the 26-bit jump target field (j/jal), still needing the
	// caller to OR in the current instruction's top 4 PC bits.
	Target uint32
}

func bits(v uint32, hi, lo uint) uint32 {
	mask := uint32(1)<<(hi-lo+1) - 1
	return (v >> lo) & mask
}

func signExtend16(v uint32) int32 {
	return int32(int16(uint16(v)))
}

// Decode classifies one big-endian-already-loaded 32-bit MIPS word. Words
// that don't match a recognized family decode as OpOther with only Raw
// populated; the preheater skips those without further inspection.
func Decode(word uint32) Instruction {
	primary := bits(word, 31, 26)
	rs := uint8(bits(word, 25, 21))
	rt := uint8(bits(word, 20, 16))
	rd := uint8(bits(word, 15, 11))
	imm := signExtend16(bits(word, 15, 0))

	inst := Instruction{Raw: word, Rs: rs, Rt: rt, Rd: rd, Imm: imm}

	switch {
	case primary == 0x02:
		inst.Op = OpJ
		inst.Target = bits(word, 25, 0)
	case primary == 0x03:
		inst.Op = OpJal
		inst.Target = bits(word, 25, 0)
	case primary == 0x00 && bits(word, 5, 0) == 0x08:
		inst.Op = OpJr
	case primary == 0x00 && bits(word, 5, 0) == 0x09:
		inst.Op = OpJalr
	case primary == 0x04, primary == 0x05, primary == 0x06, primary == 0x07,
		primary == 0x14, primary == 0x15, primary == 0x16, primary == 0x17:
		inst.Op = OpBranch
	case primary == 0x01 && (rt == 0x00 || rt == 0x01 || rt == 0x10 || rt == 0x11):
		// bltz/bgez/bltzal/bgezal
		inst.Op = OpBranch
	case primary == 0x0f:
		inst.Op = OpLui
	case primary == 0x0d:
		inst.Op = OpOri
	case primary == 0x09:
		inst.Op = OpAddiu
	case primary == 0x23:
		inst.Op = OpLw
	case primary == 0x2b:
		inst.Op = OpSw
	case primary == 0x20, primary == 0x24:
		inst.Op = OpLb
	case primary == 0x28:
		inst.Op = OpSb
	case primary == 0x21, primary == 0x25:
		inst.Op = OpLh
	case primary == 0x29:
		inst.Op = OpSh
	case primary == 0x31:
		inst.Op = OpLwc1
	case primary == 0x35:
		inst.Op = OpLdc1
	case primary == 0x39:
		inst.Op = OpSwc1
	case primary == 0x3d:
		inst.Op = OpSdc1
	case primary == 0x22:
		inst.Op = OpLwl
	case primary == 0x26:
		inst.Op = OpLwr
	case primary == 0x2a:
		inst.Op = OpSwl
	case primary == 0x2e:
		inst.Op = OpSwr
	case primary == 0x1a:
		inst.Op = OpLdl
	case primary == 0x1b:
		inst.Op = OpLdr
	case primary == 0x2c:
		inst.Op = OpSdl
	case primary == 0x2d:
		inst.Op = OpSdr
	default:
		inst.Op = OpOther
	}

	return inst
}

// IsBranchOrJump reports whether this instruction's target (if any) should
// feed the preheater's branch-target/label-candidate evidence.
func (i Instruction) IsBranchOrJump() bool {
	switch i.Op {
	case OpJ, OpJal, OpBranch:
		return true
	default:
		return false
	}
}

// IsLoadOrStore reports whether this instruction's (rs, imm) pair is a
// base-register+offset access worth feeding the %lo-pairing and
// access-width evidence.
func (i Instruction) IsLoadOrStore() bool {
	switch i.Op {
	case OpLw, OpSw, OpLb, OpSb, OpLh, OpSh, OpLwc1, OpLdc1, OpSwc1, OpSdc1,
		OpLwl, OpLwr, OpSwl, OpSwr, OpLdl, OpLdr, OpSdl, OpSdr:
		return true
	default:
		return false
	}
}

// IsUnalignedPair reports whether this instruction is one half of a
// left/right unaligned-access pair (lwl/lwr, swl/swr, ldl/ldr, sdl/sdr),
// which the %lo-pairing logic must treat as a single access rather than
// two independent ones sharing a base register.
func (i Instruction) IsUnalignedPair() bool {
	switch i.Op {
	case OpLwl, OpLwr, OpSwl, OpSwr, OpLdl, OpLdr, OpSdl, OpSdr:
		return true
	default:
		return false
	}
}

// IsDoublewordUnalignedPair reports whether this is the 64-bit
// (ldl/ldr/sdl/sdr) half of an unaligned access, versus the 32-bit
// (lwl/lwr/swl/swr) half.
func (i Instruction) IsDoublewordUnalignedPair() bool {
	switch i.Op {
	case OpLdl, OpLdr, OpSdl, OpSdr:
		return true
	default:
		return false
	}
}
