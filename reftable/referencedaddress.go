// SPDX-License-Identifier: MIT

// Package reftable implements the Preheater's output: a per-segment
// mapping from Vram to accumulated evidence (type/size/alignment votes and
// a reference count). Nothing here is finalized — a histogram with a
// single entry is "confident"; anything else is ambiguous and the caller
// must treat it as untrustworthy.
package reftable

import (
	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
)

// optionalSize represents a size vote that might be "no size" — distinct
// from a vote of size zero, and a countable histogram key in its own
// right (grounded on upstream's ReferencedAddress, which stores
// Option<Size> votes rather than a raw integer).
type optionalSize struct {
	size addrs.Size
	has  bool
}

// ReferencedAddress is the lightweight evidence record the preheater
// builds for an observed address: a handful of histograms rather than a
// decided value. A histogram with exactly one entry yields a confident
// answer; otherwise the caller gets "ambiguous, do not trust".
type ReferencedAddress struct {
	vram addrs.Vram

	typeVotes      map[metadata.SymbolType]uint32
	sizeVotes      map[optionalSize]uint32
	alignmentVotes map[uint8]uint32

	referenceCount int

	// padBoundary marks this address as a synthetic cut point induced by a
	// neighboring symbol's user-declared size (spec.md §4.4 point 1),
	// rather than by any vote of its own — the section builder must still
	// cut here even though nothing points at this address directly.
	padBoundary bool
}

// NewReferencedAddress creates an empty evidence record for vram.
func NewReferencedAddress(vram addrs.Vram) *ReferencedAddress {
	return &ReferencedAddress{
		vram:           vram,
		typeVotes:      make(map[metadata.SymbolType]uint32),
		sizeVotes:      make(map[optionalSize]uint32),
		alignmentVotes: make(map[uint8]uint32),
	}
}

func (r *ReferencedAddress) Vram() addrs.Vram { return r.vram }

// SymType returns the voted type iff there is a unique majority (a single
// distinct vote); otherwise ok is false and the caller must not trust any
// particular type.
func (r *ReferencedAddress) SymType() (metadata.SymbolType, bool) {
	if len(r.typeVotes) != 1 {
		return metadata.SymbolType{}, false
	}
	for t := range r.typeVotes {
		return t, true
	}
	panic("unreachable")
}

// Size returns the voted size iff there is a unique majority.
func (r *ReferencedAddress) Size() (addrs.Size, bool) {
	if len(r.sizeVotes) != 1 {
		return 0, false
	}
	for s := range r.sizeVotes {
		return s.size, s.has
	}
	panic("unreachable")
}

// Alignment returns the voted alignment iff there is a unique majority.
func (r *ReferencedAddress) Alignment() (uint8, bool) {
	if len(r.alignmentVotes) != 1 {
		return 0, false
	}
	for a := range r.alignmentVotes {
		return a, true
	}
	panic("unreachable")
}

func (r *ReferencedAddress) ReferenceCounter() int { return r.referenceCount }

// SetSymType records one vote for t. Ties are broken by counting votes,
// never by last-write-wins, so SymType() only answers confidently when a
// unique type has ever been voted.
func (r *ReferencedAddress) SetSymType(t metadata.SymbolType) {
	r.typeVotes[t]++
}

// SetSize records one vote for size (absent if ok is false).
func (r *ReferencedAddress) SetSize(size addrs.Size, ok bool) {
	r.sizeVotes[optionalSize{size: size, has: ok}]++
}

// SetAlignment records one vote for alignment.
func (r *ReferencedAddress) SetAlignment(alignment uint8) {
	r.alignmentVotes[alignment]++
}

// IncrementReferences records an additional site referencing this address.
func (r *ReferencedAddress) IncrementReferences() {
	r.referenceCount++
}

// MarkPadBoundary flags this address as a cut point synthesized from a
// neighbor's user-declared size rather than from a direct vote.
func (r *ReferencedAddress) MarkPadBoundary() {
	r.padBoundary = true
}

// IsPadBoundary reports whether MarkPadBoundary was ever called for this
// address.
func (r *ReferencedAddress) IsPadBoundary() bool {
	return r.padBoundary
}
