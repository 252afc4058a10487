// SPDX-License-Identifier: MIT

// Package context implements the one-shot builder pipeline that threads a
// run of the disassembler through its states:
//
//	Config -> SegmentDecl -> UserSymbols -> Preheat -> PreheatOverlays -> Frozen
//
// Each state exposes only the operations legal at that point. A second
// preheat of the same section is reported as an xerrors.AlreadyPreheated
// error. Adding user symbols after EnterPreheat (through Heater.Registry
// or a retained *segment.Segment) is not detected: sealing a segment only
// records the state, and AddUserSymbol does not check it.
package context

import (
	"github.com/Decompollaborate/py-mips-disasm/config"
	"github.com/Decompollaborate/py-mips-disasm/segment"
)

// Builder accumulates the global config and the segment registry across
// the Config, SegmentDecl, and UserSymbols states. Preheat and freezing
// are reached by calling EnterPreheat, which consumes the Builder.
type Builder struct {
	cfg      config.GlobalConfig
	registry *segment.Registry
}

// NewBuilder starts the Config state.
func NewBuilder(cfg config.GlobalConfig) *Builder {
	return &Builder{cfg: cfg}
}

// DeclareGlobalSegment enters SegmentDecl by registering the one global
// segment. Must be called exactly once, before any overlay or user symbol
// is added.
func (b *Builder) DeclareGlobalSegment(global *segment.Segment) {
	b.registry = segment.NewRegistry(global)
}

// DeclareOverlay registers a named overlay segment.
func (b *Builder) DeclareOverlay(overlay *segment.Segment) {
	b.registry.AddOverlay(overlay)
}

// Registry exposes the in-progress registry so callers can call
// AddUserSymbol on the global segment or any declared overlay during the
// UserSymbols state.
func (b *Builder) Registry() *segment.Registry { return b.registry }

func (b *Builder) Config() config.GlobalConfig { return b.cfg }

// EnterPreheat seals every segment's user-symbol table (ending
// UserSymbols) and returns a Heater for the Preheat/PreheatOverlays
// states. The Builder itself should not be used again afterward.
func (b *Builder) EnterPreheat() *Heater {
	b.registry.SealAll()
	return &Heater{cfg: b.cfg, registry: b.registry}
}
