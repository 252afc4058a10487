// SPDX-License-Identifier: MIT

package preheat_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/preheat"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
	"github.com/Decompollaborate/py-mips-disasm/test"
)

func noInRange(addrs.Vram) bool { return false }

func TestRodataDetectsPaddedCString(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	bytes := []byte("Hello\x00\x00\x00")
	state := &preheat.LateRodataState{}
	preheat.Rodata(table, cfg, addrs.Vram(0x80002000), bytes, noInRange, nil, state)

	rec, ok := table.Get(addrs.Vram(0x80002000))
	test.ExpectSuccess(t, ok)
	symType, confident := rec.SymType()
	test.ExpectSuccess(t, confident)
	test.ExpectEquality(t, symType.Kind(), metadata.CString)

	size, hasSize := rec.Size()
	test.ExpectSuccess(t, hasSize)
	test.ExpectEquality(t, size, addrs.Size(8))
}

func TestRodataFloatClusterCountsTrailingZeroPadding(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	vramStart := addrs.Vram(0x80003000)
	bytes := make([]byte, 20)
	floats := []float32{1.0, 2.0, 3.0, 4.0}
	for i, f := range floats {
		binary.BigEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
		table.GetOrCreate(vramStart.Add(addrs.Size(i*4))).SetSymType(metadata.NewType(metadata.Float32))
	}
	// bytes[16:20] stays zero: trailing padding after the cluster, with no
	// vote of its own.

	state := &preheat.LateRodataState{}
	result := preheat.Rodata(table, cfg, vramStart, bytes, noInRange, nil, state)

	test.ExpectEquality(t, result.FloatCounter, 5)
	test.ExpectEquality(t, result.FloatPaddingCounter, 1)
	test.ExpectEquality(t, result.LateRodataReached, false)
}

func TestRodataLateDetectionRequiresJumptableThenConfirmingFloat(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	state := &preheat.LateRodataState{}

	// first call: a lone jumptable entry followed by a float cluster whose
	// padding trails the count by exactly one — only raises maybeReached.
	jtabVram := addrs.Vram(0x80004000)
	table.GetOrCreate(jtabVram).SetSymType(metadata.NewType(metadata.Jumptable))
	firstBytes := make([]byte, 8)
	binary.BigEndian.PutUint32(firstBytes[4:], math.Float32bits(1.0))
	table.GetOrCreate(jtabVram.Add(4)).SetSymType(metadata.NewType(metadata.Float32))

	result1 := preheat.Rodata(table, cfg, jtabVram, firstBytes, noInRange, nil, state)
	test.ExpectEquality(t, result1.LateRodataReached, false)
	test.ExpectEquality(t, state.Reached(), false)

	// second call: another float vote confirms the maybe into reached.
	secondVram := jtabVram.Add(8)
	secondBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(secondBytes, math.Float32bits(2.0))
	table.GetOrCreate(secondVram).SetSymType(metadata.NewType(metadata.Float32))

	result2 := preheat.Rodata(table, cfg, secondVram, secondBytes, noInRange, nil, state)
	test.ExpectEquality(t, result2.LateRodataReached, true)
	test.ExpectEquality(t, state.Reached(), true)
}
