// SPDX-License-Identifier: MIT

package context

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/preheat"
	"github.com/Decompollaborate/py-mips-disasm/segment"
)

// Heater runs the Preheat and PreheatOverlays states: at most one
// PreheatText/PreheatData/PreheatRodata/PreheatExceptTable call per
// section, each against either the global segment or a named overlay.
// Segment.MarkPreheated enforces that at-most-once-per-section rule.
type Heater struct {
	cfg      config.GlobalConfig
	registry *segment.Registry
}

func (h *Heater) Registry() *segment.Registry { return h.registry }

// PreheatText runs the text sweep over one section of the target segment,
// recording evidence into that segment's own reference table.
func (h *Heater) PreheatText(target *segment.Segment, rom addrs.Rom, vram addrs.Vram, bytes []byte) error {
	if err := target.MarkPreheated(rom); err != nil {
		return err
	}
	preheat.Text(target.ReferenceTable(), h.cfg, rom, vram, bytes)
	return nil
}

// PreheatData runs the plain-data sweep over one section of the target
// segment. inRange is usually built from h.Registry() so pointer
// detection can recognize addresses owned by any segment, not just
// target.
func (h *Heater) PreheatData(target *segment.Segment, rom addrs.Rom, vram addrs.Vram, bytes []byte, inRange preheat.VramInRange) error {
	if err := target.MarkPreheated(rom); err != nil {
		return err
	}
	preheat.Data(target.ReferenceTable(), h.cfg, vram, bytes, inRange, sizeLookupFor(target))
	return nil
}

// PreheatRodata runs the rodata sweep over one section of the target
// segment: pointer detection, string detection, and float-cluster/
// late-rodata tracking. The target segment's LateRodataState is threaded
// through automatically, so callers must invoke this in address order for
// a given segment's rodata sections.
func (h *Heater) PreheatRodata(target *segment.Segment, rom addrs.Rom, vram addrs.Vram, bytes []byte, inRange preheat.VramInRange) (preheat.RodataResult, error) {
	if err := target.MarkPreheated(rom); err != nil {
		return preheat.RodataResult{}, err
	}
	result := preheat.Rodata(target.ReferenceTable(), h.cfg, vram, bytes, inRange, sizeLookupFor(target), target.LateRodataState())
	return result, nil
}

// PreheatExceptTable runs the opaque except-table sweep (spec.md §4.4
// point 6) over one section of the target segment: pointer detection and
// prior-reference auto-pad synthesis only, no string or float analysis.
func (h *Heater) PreheatExceptTable(target *segment.Segment, rom addrs.Rom, vram addrs.Vram, bytes []byte, inRange preheat.VramInRange) error {
	if err := target.MarkPreheated(rom); err != nil {
		return err
	}
	preheat.ExceptTable(target.ReferenceTable(), h.cfg, vram, bytes, inRange, sizeLookupFor(target))
	return nil
}

// sizeLookupFor adapts a segment's SymbolMetadata store into the closure
// preheat.Data/Rodata/ExceptTable need to read a user-declared size
// without importing segment themselves.
func sizeLookupFor(target *segment.Segment) preheat.UserDeclaredSizeLookup {
	return func(vram addrs.Vram) (addrs.Size, bool) {
		m, ok := target.Get(vram)
		if !ok {
			return 0, false
		}
		return m.UserDeclaredSize()
	}
}

// Freeze ends Preheat/PreheatOverlays and returns the immutable Context
// used for queries and section materialization. No further preheat or
// user-symbol calls are legal after this.
func (h *Heater) Freeze() *Context {
	return &Context{cfg: h.cfg, registry: h.registry}
}
