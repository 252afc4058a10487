// SPDX-License-Identifier: MIT

package context

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/segment"
)

// Context is the frozen, query-only state reached after preheat. Section
// materialization (package section) is built on top of a Context rather
// than being a method of it, mirroring the Builder/Heater split: each
// stage only exposes what's legal to call at that point in the pipeline.
type Context struct {
	cfg      config.GlobalConfig
	registry *segment.Registry
}

func (c *Context) Config() config.GlobalConfig  { return c.cfg }
func (c *Context) Registry() *segment.Registry  { return c.registry }

// FindSymbolsRange iterates every user-declared symbol with Vram in
// [lo, hi) owned by target, in address order (see
// segment.Segment.FindSymbolsRange).
func (c *Context) FindSymbolsRange(target *segment.Segment, lo, hi addrs.Vram, fn func(*metadata.SymbolMetadata)) {
	target.FindSymbolsRange(lo, hi, fn)
}

// FindReference resolves vram against target's uniform Reference view
// (materialized metadata, falling back to raw preheat evidence).
func (c *Context) FindReference(target *segment.Segment, vram addrs.Vram, withAddend bool) (segment.Reference, bool) {
	return target.FindReference(vram, withAddend)
}
