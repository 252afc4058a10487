// SPDX-License-Identifier: MIT

package context_test

import (
	"encoding/binary"
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/context"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/segment"
	"github.com/Decompollaborate/py-mips-disasm/test"
	"github.com/Decompollaborate/py-mips-disasm/xerrors"
)

func wordsToBytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestFullPipelineTextPreheatAndQuery(t *testing.T) {
	builder := context.NewBuilder(config.New(config.BigEndian))

	global := segment.NewGlobal(addrs.NewRomVramRange(
		addrs.NewAddressRange(addrs.Rom(0x1000), addrs.Rom(0x2000)),
		addrs.NewAddressRange(addrs.Vram(0x80000000), addrs.Vram(0x80001000)),
	))
	builder.DeclareGlobalSegment(global)

	fnType := metadata.NewType(metadata.Function)
	_, err := builder.Registry().Global().AddUserSymbol("entrypoint", addrs.Vram(0x80000000), nil, &fnType)
	test.ExpectSuccess(t, err)

	heater := builder.EnterPreheat()

	// jal 0x80001000
	targetField := uint32(0x80001000) >> 2
	words := []uint32{0x0C000000 | (targetField & 0x3FFFFFF)}
	err = heater.PreheatText(global, addrs.Rom(0x1000), addrs.Vram(0x80000000), wordsToBytes(words))
	test.ExpectSuccess(t, err)

	// a second preheat over the same rom start must be rejected
	err = heater.PreheatText(global, addrs.Rom(0x1000), addrs.Vram(0x80000000), wordsToBytes(words))
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, xerrors.Is(err, xerrors.AlreadyPreheated), true)

	ctx := heater.Freeze()

	rec, ok := ctx.FindReference(global, addrs.Vram(0x80001000), false)
	test.ExpectSuccess(t, ok)
	symType, confident := rec.SymType()
	test.ExpectSuccess(t, confident)
	test.ExpectEquality(t, symType.Kind(), metadata.Function)

	var names []string
	ctx.FindSymbolsRange(global, addrs.Vram(0x80000000), addrs.Vram(0x80000004), func(m *metadata.SymbolMetadata) {
		names = append(names, m.DisplayName())
	})
	test.ExpectEquality(t, len(names), 1)
	test.ExpectEquality(t, names[0], "entrypoint")
}
