// SPDX-License-Identifier: MIT

package preheat_test

import (
	"encoding/binary"
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/preheat"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
	"github.com/Decompollaborate/py-mips-disasm/test"
)

func TestDataRecordsPointerInRange(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	bytes := make([]byte, 8)
	binary.BigEndian.PutUint32(bytes[0:], 0x80002000)
	binary.BigEndian.PutUint32(bytes[4:], 0xDEADBEEF)

	inRange := func(v addrs.Vram) bool { return v >= 0x80000000 && v < 0x80010000 }
	preheat.Data(table, cfg, addrs.Vram(0x80001000), bytes, inRange, nil)

	rec, ok := table.Get(addrs.Vram(0x80002000))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, rec.ReferenceCounter(), 1)

	_, outOfRange := table.Get(addrs.Vram(0xDEADBEEF))
	test.ExpectFailure(t, outOfRange)
}

func TestDataIgnoresTrailingPartialWord(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	bytes := []byte{0x80, 0x00, 0x10}
	inRange := func(addrs.Vram) bool { return true }
	preheat.Data(table, cfg, addrs.Vram(0x80001000), bytes, inRange, nil)

	test.ExpectEquality(t, table.Len(), 0)
}

func TestDataSynthesizesAutoPadFromUserDeclaredSize(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	// seed prior evidence at 0x80001000, as if an earlier pass (or a
	// user-declared symbol) already claimed it with an 8-byte size.
	table.GetOrCreate(addrs.Vram(0x80001000)).SetSymType(metadata.NewType(metadata.Word))

	sizeLookup := func(v addrs.Vram) (addrs.Size, bool) {
		if v == addrs.Vram(0x80001000) {
			return addrs.Size(8), true
		}
		return 0, false
	}

	bytes := make([]byte, 16)
	inRange := func(addrs.Vram) bool { return false }
	preheat.Data(table, cfg, addrs.Vram(0x80001000), bytes, inRange, sizeLookup)

	rec, ok := table.Get(addrs.Vram(0x80001008))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, rec.IsPadBoundary(), true)
}

func TestDataSkipsAutoPadAtSectionEnd(t *testing.T) {
	table := reftable.NewTable()
	cfg := config.New(config.BigEndian)

	table.GetOrCreate(addrs.Vram(0x80001000)).SetSymType(metadata.NewType(metadata.Word))

	sizeLookup := func(v addrs.Vram) (addrs.Size, bool) {
		if v == addrs.Vram(0x80001000) {
			return addrs.Size(16), true // would land exactly at section end
		}
		return 0, false
	}

	bytes := make([]byte, 16)
	inRange := func(addrs.Vram) bool { return false }
	preheat.Data(table, cfg, addrs.Vram(0x80001000), bytes, inRange, sizeLookup)

	_, ok := table.Get(addrs.Vram(0x80001010))
	test.ExpectFailure(t, ok)
}
