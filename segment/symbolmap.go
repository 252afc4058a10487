// SPDX-License-Identifier: MIT

// Package segment implements the segment registry: the global segment
// plus a set of named overlay segments, each owning a ROM-VRAM range and
// a keyed, addend-tolerant store of SymbolMetadata.
package segment

import (
	"golang.org/x/exp/slices"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
)

// FindSettings controls whether a lookup tolerates landing inside an
// existing symbol's range (an addend) rather than requiring an exact
// match on its start address. Overlap resolution during user-symbol
// registration disables addend tolerance for label types — a label and
// the function it's a branch target inside of are expected to share an
// address space without being treated as "the same symbol, offset by
// zero".
type FindSettings struct {
	CheckAddend bool
}

// symbolMap is the keyed-by-start, addend-tolerant ordered map of
// SymbolMetadata for one segment. Most queries are "give me the symbol
// that covers address X", which must handle references that land
// mid-symbol (pointer + offset).
type symbolMap struct {
	byVram map[addrs.Vram]*metadata.SymbolMetadata
	sorted []addrs.Vram
	dirty  bool
}

func newSymbolMap() *symbolMap {
	return &symbolMap{byVram: make(map[addrs.Vram]*metadata.SymbolMetadata)}
}

func (m *symbolMap) ensureSorted() {
	if !m.dirty {
		return
	}
	m.sorted = m.sorted[:0]
	for v := range m.byVram {
		m.sorted = append(m.sorted, v)
	}
	slices.Sort(m.sorted)
	m.dirty = false
}

// find resolves vram against an existing entry: an exact match always
// hits; if checkAddend is set and the predecessor entry has a known size
// covering vram, that predecessor hits too.
func (m *symbolMap) find(vram addrs.Vram, checkAddend bool) (*metadata.SymbolMetadata, bool) {
	if s, ok := m.byVram[vram]; ok {
		return s, true
	}
	if !checkAddend {
		return nil, false
	}

	m.ensureSorted()
	i, found := slices.BinarySearch(m.sorted, vram)
	if found {
		// exact match was already handled above via the map lookup; this
		// path is unreachable in practice, kept only so i always lands on
		// the insertion point below when !found.
		return nil, false
	}
	if i == 0 {
		return nil, false
	}
	pred := m.byVram[m.sorted[i-1]]
	size, ok := pred.Size()
	if !ok {
		return nil, false
	}
	if vram < pred.Vram().Add(size) {
		return pred, true
	}
	return nil, false
}

// findMutOrInsertWith returns the existing entry resolved by find(), or
// inserts and returns a freshly created one at vram. The second return
// value reports whether a new entry was created.
func (m *symbolMap) findMutOrInsertWith(vram addrs.Vram, settings FindSettings, newFn func() *metadata.SymbolMetadata) (*metadata.SymbolMetadata, bool) {
	if s, ok := m.find(vram, settings.CheckAddend); ok {
		return s, false
	}
	s := newFn()
	m.byVram[vram] = s
	m.dirty = true
	return s, true
}

// get returns the entry exactly at vram, with no addend tolerance.
func (m *symbolMap) get(vram addrs.Vram) (*metadata.SymbolMetadata, bool) {
	s, ok := m.byVram[vram]
	return s, ok
}

// rangeIter visits every entry with Vram in [lo, hi), in address order.
func (m *symbolMap) rangeIter(lo, hi addrs.Vram, fn func(*metadata.SymbolMetadata)) {
	m.ensureSorted()
	i, _ := slices.BinarySearch(m.sorted, lo)
	for ; i < len(m.sorted) && m.sorted[i] < hi; i++ {
		fn(m.byVram[m.sorted[i]])
	}
}

func (m *symbolMap) len() int { return len(m.byVram) }
