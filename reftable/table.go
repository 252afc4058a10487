// SPDX-License-Identifier: MIT

package reftable

import (
	"golang.org/x/exp/slices"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
)

// Table is the ordered, addend-tolerant store of ReferencedAddress
// records the preheater populates for one segment. Like the segment
// registry's symbol map, most queries are "give me the evidence covering
// address X", which may land inside a multi-byte record rather than
// exactly on its start.
type Table struct {
	byVram map[addrs.Vram]*ReferencedAddress
	sorted []addrs.Vram // kept sorted; rebuilt lazily
	dirty  bool
}

// NewTable creates an empty reference table.
func NewTable() *Table {
	return &Table{byVram: make(map[addrs.Vram]*ReferencedAddress)}
}

// GetOrCreate returns the evidence record for vram, creating an empty one
// if this is the first time vram has been observed.
func (t *Table) GetOrCreate(vram addrs.Vram) *ReferencedAddress {
	if r, ok := t.byVram[vram]; ok {
		return r
	}
	r := NewReferencedAddress(vram)
	t.byVram[vram] = r
	t.dirty = true
	return r
}

// Get returns the evidence record exactly at vram, if any.
func (t *Table) Get(vram addrs.Vram) (*ReferencedAddress, bool) {
	r, ok := t.byVram[vram]
	return r, ok
}

func (t *Table) ensureSorted() {
	if !t.dirty {
		return
	}
	t.sorted = t.sorted[:0]
	for v := range t.byVram {
		t.sorted = append(t.sorted, v)
	}
	slices.Sort(t.sorted)
	t.dirty = false
}

// FindWithAddend returns the evidence record whose Vram is the greatest
// one that is <= vram, provided vram exceeds it by less than maxAddend
// bytes (0 disables addend tolerance: only an exact hit
// counts). This mirrors a pointer-plus-offset reference landing inside an
// already-discovered but not-yet-sized record.
func (t *Table) FindWithAddend(vram addrs.Vram, maxAddend addrs.Size) (*ReferencedAddress, bool) {
	t.ensureSorted()

	i, found := slices.BinarySearch(t.sorted, vram)
	if found {
		return t.byVram[vram], true
	}
	if i == 0 {
		return nil, false
	}
	candidate := t.sorted[i-1]
	if maxAddend == 0 {
		return nil, false
	}
	if vram.Diff(candidate) < maxAddend {
		return t.byVram[candidate], true
	}
	return nil, false
}

// Range iterates every evidence record with Vram in [lo, hi), in address
// order.
func (t *Table) Range(lo, hi addrs.Vram, fn func(*ReferencedAddress)) {
	t.ensureSorted()
	i, _ := slices.BinarySearch(t.sorted, lo)
	for ; i < len(t.sorted) && t.sorted[i] < hi; i++ {
		fn(t.byVram[t.sorted[i]])
	}
}

// Len returns the number of distinct addresses with evidence.
func (t *Table) Len() int { return len(t.byVram) }
