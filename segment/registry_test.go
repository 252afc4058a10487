// SPDX-License-Identifier: MIT

package segment_test

import (
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/segment"
	"github.com/Decompollaborate/py-mips-disasm/test"
	"github.com/Decompollaborate/py-mips-disasm/xerrors"
)

func TestRegistryOwningPrefersGlobal(t *testing.T) {
	global := newTestSegment()
	reg := segment.NewRegistry(global)

	overlay := segment.NewOverlay(addrs.NewRomVramRange(
		addrs.NewAddressRange(addrs.Rom(0x1000), addrs.Rom(0x1100)),
		addrs.NewAddressRange(addrs.Vram(0x80000000), addrs.Vram(0x80000100)),
	), "ovl_a")
	reg.AddOverlay(overlay)

	owner, ok := reg.Owning(addrs.Vram(0x80000010), []string{"ovl_a"})
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, owner.IsGlobal(), true)
}

func TestRegistryOwningFallsBackToOverlay(t *testing.T) {
	global := segment.NewGlobal(addrs.NewRomVramRange(
		addrs.NewAddressRange(addrs.Rom(0x1000), addrs.Rom(0x2000)),
		addrs.NewAddressRange(addrs.Vram(0x90000000), addrs.Vram(0x90001000)),
	))
	reg := segment.NewRegistry(global)

	overlay := segment.NewOverlay(addrs.NewRomVramRange(
		addrs.NewAddressRange(addrs.Rom(0x1000), addrs.Rom(0x1100)),
		addrs.NewAddressRange(addrs.Vram(0x80000000), addrs.Vram(0x80000100)),
	), "ovl_a")
	reg.AddOverlay(overlay)

	owner, ok := reg.Owning(addrs.Vram(0x80000010), []string{"ovl_a"})
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, owner.Name(), "ovl_a")
}

func TestRegistryOverlayNotFound(t *testing.T) {
	reg := segment.NewRegistry(newTestSegment())
	_, err := reg.Overlay("missing")
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, xerrors.Is(err, xerrors.OwnedSegmentNotFound), true)
}

func TestRegistrySealAll(t *testing.T) {
	global := newTestSegment()
	reg := segment.NewRegistry(global)
	overlay := segment.NewOverlay(addrs.NewRomVramRange(
		addrs.NewAddressRange(addrs.Rom(0x1000), addrs.Rom(0x1100)),
		addrs.NewAddressRange(addrs.Vram(0x80000000), addrs.Vram(0x80000100)),
	), "ovl_a")
	reg.AddOverlay(overlay)

	reg.SealAll()
	test.ExpectEquality(t, global.Sealed(), true)
	test.ExpectEquality(t, overlay.Sealed(), true)
}
