// SPDX-License-Identifier: MIT

package segment

import (
	"fmt"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/xerrors"
)

// Registry owns the one global Segment plus any number of named overlay
// Segments. Overlays commonly share VRAM ranges with each other (that's
// the point of an overlay: several of them are never resident at once),
// so Registry resolution by name is exact while resolution by address
// must consult the caller's currently-active overlay set.
type Registry struct {
	global   *Segment
	overlays map[string]*Segment
	// overlayOrder preserves insertion order for deterministic iteration
	// (map iteration order is not stable, and tests/printing benefit from
	// matching declaration order).
	overlayOrder []string
}

// NewRegistry creates a registry around the given global segment.
func NewRegistry(global *Segment) *Registry {
	return &Registry{global: global, overlays: make(map[string]*Segment)}
}

func (r *Registry) Global() *Segment { return r.global }

// AddOverlay registers a named overlay segment. A second registration
// under the same name replaces the first — overlay declarations are
// expected to happen once each during SegmentDecl, before any symbols are
// added.
func (r *Registry) AddOverlay(s *Segment) {
	if _, exists := r.overlays[s.Name()]; !exists {
		r.overlayOrder = append(r.overlayOrder, s.Name())
	}
	r.overlays[s.Name()] = s
}

// Overlay looks up a named overlay, returning an OwnedSegmentNotFound
// error if it was never registered.
func (r *Registry) Overlay(name string) (*Segment, error) {
	s, ok := r.overlays[name]
	if !ok {
		return nil, xerrors.New(xerrors.OwnedSegmentNotFound, name,
			fmt.Sprintf("no overlay segment named %q", name))
	}
	return s, nil
}

// Overlays returns every registered overlay in declaration order.
func (r *Registry) Overlays() []*Segment {
	out := make([]*Segment, 0, len(r.overlayOrder))
	for _, name := range r.overlayOrder {
		out = append(out, r.overlays[name])
	}
	return out
}

// Owning resolves vram to the segment that should claim it: the global
// segment if vram falls in its range, otherwise the first active overlay
// (in activeNames priority order, which callers build from each
// segment's AddPrioritisedOverlay list) whose range contains it.
func (r *Registry) Owning(vram addrs.Vram, activeNames []string) (*Segment, bool) {
	if r.global.Ranges().InVramRange(vram) {
		return r.global, true
	}
	for _, name := range activeNames {
		s, ok := r.overlays[name]
		if !ok {
			continue
		}
		if s.Ranges().InVramRange(vram) {
			return s, true
		}
	}
	return nil, false
}

// SealAll seals the global segment and every registered overlay, ending
// the UserSymbols pipeline state (spec.md §4.6).
func (r *Registry) SealAll() {
	r.global.Seal()
	for _, s := range r.overlays {
		s.Seal()
	}
}
