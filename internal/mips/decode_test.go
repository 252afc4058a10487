// SPDX-License-Identifier: MIT

package mips_test

import (
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/internal/mips"
	"github.com/Decompollaborate/py-mips-disasm/test"
)

func TestDecodeJal(t *testing.T) {
	// jal 0x80010000 -> target field = (0x80010000 >> 2) & 0x3FFFFFF
	word := uint32(0x0C000000) | ((0x80010000 >> 2) & 0x3FFFFFF)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpJal)
	test.ExpectEquality(t, inst.Target, uint32(0x80010000>>2)&0x3FFFFFF)
	test.ExpectEquality(t, inst.IsBranchOrJump(), true)
}

func TestDecodeLui(t *testing.T) {
	// lui $v0, 0x8001
	word := uint32(0x3C028001)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpLui)
	test.ExpectEquality(t, inst.Rt, uint8(2))
	test.ExpectEquality(t, inst.Imm, int32(-32767))
}

func TestDecodeOriPositiveImmediate(t *testing.T) {
	// ori $v0, $v0, 0x1234
	word := uint32(0x34421234)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpOri)
	test.ExpectEquality(t, inst.Imm, int32(0x1234))
}

func TestDecodeLoadWordIsLoadOrStore(t *testing.T) {
	// lw $v0, -4($sp)
	word := uint32(0x8FA2FFFC)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpLw)
	test.ExpectEquality(t, inst.Imm, int32(-4))
	test.ExpectEquality(t, inst.IsLoadOrStore(), true)
}

func TestDecodeJrRa(t *testing.T) {
	// jr $ra
	word := uint32(0x03E00008)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpJr)
	test.ExpectEquality(t, inst.Rs, uint8(31))
}

func TestDecodeOtherForUnrecognized(t *testing.T) {
	inst := mips.Decode(0xFFFFFFFF)
	test.ExpectEquality(t, inst.Op, mips.OpOther)
}

func TestDecodeLwlIsLoadOrStoreAndUnalignedPair(t *testing.T) {
	// lwl $v0, 0($sp)
	word := uint32(0x8BA20000)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpLwl)
	test.ExpectEquality(t, inst.Rs, uint8(29))
	test.ExpectEquality(t, inst.Rt, uint8(2))
	test.ExpectEquality(t, inst.IsLoadOrStore(), true)
	test.ExpectEquality(t, inst.IsUnalignedPair(), true)
	test.ExpectEquality(t, inst.IsDoublewordUnalignedPair(), false)
}

func TestDecodeLdrIsDoublewordUnalignedPair(t *testing.T) {
	// ldr $v0, 0($sp) -- opcode 0x1b
	word := uint32(0x6FA20000)
	inst := mips.Decode(word)
	test.ExpectEquality(t, inst.Op, mips.OpLdr)
	test.ExpectEquality(t, inst.IsUnalignedPair(), true)
	test.ExpectEquality(t, inst.IsDoublewordUnalignedPair(), true)
}
