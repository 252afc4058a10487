// SPDX-License-Identifier: MIT

package segment

import (
	"fmt"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/preheat"
	"github.com/Decompollaborate/py-mips-disasm/reftable"
	"github.com/Decompollaborate/py-mips-disasm/xerrors"
)

// Segment owns a RomVramRange, an optional human name (empty for the
// global segment), a list of prioritised overlay names that take
// precedence when an address is ambiguous, a map of user-declared
// symbols, and — once preheat has run — a reference table shared by
// every section scanned in this segment.
type Segment struct {
	ranges              addrs.RomVramRange
	name                string
	prioritisedOverlays []string

	symbols *symbolMap
	refs    *reftable.Table

	// lateRodata threads the rodata preheater's two-level maybe_reached/
	// reached state across every PreheatRodata call for this segment's
	// rodata sections, in address order.
	lateRodata *preheat.LateRodataState

	// preheated tracks which section identities (by Rom start) have
	// already been preheated, to catch a duplicate preanalyze_* call for
	// the same section (spec.md §7: AlreadyPreheated).
	preheated map[addrs.Rom]bool

	sealed bool
}

// NewGlobal creates the (unnamed) global segment.
func NewGlobal(ranges addrs.RomVramRange) *Segment {
	return newSegment(ranges, "")
}

// NewOverlay creates a named overlay segment.
func NewOverlay(ranges addrs.RomVramRange, name string) *Segment {
	return newSegment(ranges, name)
}

func newSegment(ranges addrs.RomVramRange, name string) *Segment {
	return &Segment{
		ranges:     ranges,
		name:       name,
		symbols:    newSymbolMap(),
		refs:       reftable.NewTable(),
		preheated:  make(map[addrs.Rom]bool),
		lateRodata: &preheat.LateRodataState{},
	}
}

func (s *Segment) Name() string                    { return s.name }
func (s *Segment) Ranges() addrs.RomVramRange      { return s.ranges }
func (s *Segment) ReferenceTable() *reftable.Table { return s.refs }
func (s *Segment) IsGlobal() bool                  { return s.name == "" }

// LateRodataState returns this segment's shared rodata late-detection
// state, threaded across every PreheatRodata call in address order.
func (s *Segment) LateRodataState() *preheat.LateRodataState { return s.lateRodata }

// AddPrioritisedOverlay records an overlay name that should win ties when
// an ambiguous address resolves to more than one overlay segment.
func (s *Segment) AddPrioritisedOverlay(name string) {
	s.prioritisedOverlays = append(s.prioritisedOverlays, name)
}

func (s *Segment) PrioritisedOverlays() []string { return s.prioritisedOverlays }

// Seal marks the segment's user-symbol table as closed. Only the flag is
// recorded (see Sealed): neither AddUserSymbol nor the context pipeline
// checks it, so AddUserSymbol still succeeds after Seal.
func (s *Segment) Seal() { s.sealed = true }

func (s *Segment) Sealed() bool { return s.sealed }

// MarkPreheated records that the section starting at rom has been
// preheated, returning an AlreadyPreheated error if it already was.
func (s *Segment) MarkPreheated(rom addrs.Rom) error {
	if s.preheated[rom] {
		return xerrors.New(xerrors.AlreadyPreheated, s.name,
			"preanalyze called twice for the same section", fmt.Sprintf("rom=%s", rom))
	}
	s.preheated[rom] = true
	return nil
}

// AddUserSymbol validates vram (and rom, if given) against the segment's
// range and either returns the freshly inserted record or a matching
// existing one. See spec.md §4.2 for the overlap policy this implements.
func (s *Segment) AddUserSymbol(name string, vram addrs.Vram, rom *addrs.Rom, symType *metadata.SymbolType) (*metadata.SymbolMetadata, error) {
	if rom != nil && !s.ranges.InRomRange(*rom) {
		return nil, xerrors.New(xerrors.AddUserSymbolRomOutOfRange, s.name,
			fmt.Sprintf("symbol %q: rom out of range for segment", name), fmt.Sprintf("rom=%s", *rom))
	}
	if !s.ranges.InVramRange(vram) {
		return nil, xerrors.New(xerrors.AddUserSymbolVramOutOfRange, s.name,
			fmt.Sprintf("symbol %q: vram out of range for segment", name), fmt.Sprintf("vram=%s", vram))
	}

	checkAddend := !(symType != nil && symType.IsLabel())

	sym, created := s.symbols.findMutOrInsertWith(vram, FindSettings{CheckAddend: checkAddend}, func() *metadata.SymbolMetadata {
		return metadata.New(metadata.UserDeclared, vram)
	})

	isLabelOverride := symType != nil && symType.IsLabel()
	if sym.Vram() != vram && !(sym.IsTrustableFunction() && isLabelOverride) {
		return nil, xerrors.New(xerrors.AddUserSymbolOverlap, s.name,
			fmt.Sprintf("symbol %q overlaps existing symbol %q", name, sym.DisplayName()),
			fmt.Sprintf("vram=%s", vram), fmt.Sprintf("existing=%s", sym.Vram()))
	}
	if !created {
		return nil, xerrors.New(xerrors.AddUserSymbolDuplicated, s.name,
			fmt.Sprintf("symbol %q duplicates existing symbol %q", name, sym.DisplayName()),
			fmt.Sprintf("vram=%s", vram))
	}

	sym.SetUserDeclaredName(name)
	if rom != nil {
		sym.SetRom(*rom)
	}
	if symType != nil {
		sym.SetTypeWithPriority(*symType, metadata.UserDeclared)
	}
	return sym, nil
}

// Get returns the symbol exactly at vram (no addend tolerance).
func (s *Segment) Get(vram addrs.Vram) (*metadata.SymbolMetadata, bool) {
	return s.symbols.get(vram)
}

// FindSymbolsRange iterates, in address order, every symbol in the
// segment's symbol map with Vram in [lo, hi). Only AddUserSymbol adds to
// that map; section.Materialize does not.
func (s *Segment) FindSymbolsRange(lo, hi addrs.Vram, fn func(*metadata.SymbolMetadata)) {
	s.symbols.rangeIter(lo, hi, fn)
}

// Reference uniformly exposes vram/type/size/alignment/reference_counter,
// whichever kind of record backs it (autogenerated evidence, or a
// user-declared/materialized SymbolMetadata).
type Reference interface {
	Vram() addrs.Vram
	SymType() (metadata.SymbolType, bool)
	Size() (addrs.Size, bool)
	Alignment() (uint8, bool)
	ReferenceCounter() int
}

type metadataReference struct{ m *metadata.SymbolMetadata }

func (r metadataReference) Vram() addrs.Vram                    { return r.m.Vram() }
func (r metadataReference) SymType() (metadata.SymbolType, bool) { return r.m.Type() }
func (r metadataReference) Size() (addrs.Size, bool)             { return r.m.Size() }
func (r metadataReference) Alignment() (uint8, bool)             { return 0, false }
func (r metadataReference) ReferenceCounter() int                { return r.m.ReferenceCounter() }

type evidenceReference struct{ r *reftable.ReferencedAddress }

func (r evidenceReference) Vram() addrs.Vram                    { return r.r.Vram() }
func (r evidenceReference) SymType() (metadata.SymbolType, bool) { return r.r.SymType() }
func (r evidenceReference) Size() (addrs.Size, bool)             { return r.r.Size() }
func (r evidenceReference) Alignment() (uint8, bool)             { return r.r.Alignment() }
func (r evidenceReference) ReferenceCounter() int                { return r.r.ReferenceCounter() }

// maxAddendUnbounded is the largest representable Size, used to make
// Table.FindWithAddend treat any predecessor record as a valid
// pointer-plus-offset match regardless of how far vram sits past it. Raw
// preheat evidence carries no symbol boundary to bound the search with —
// unlike symbolMap.find, which stops at a known Size — so this is the
// widest tolerance available until materialization assigns one.
const maxAddendUnbounded = addrs.Size(^uint32(0))

// FindReference resolves vram to a uniform Reference, preferring a
// materialized/user-declared SymbolMetadata over raw preheat evidence
// when both exist (a SymbolMetadata is always the more authoritative of
// the two once one has been created for that address).
func (s *Segment) FindReference(vram addrs.Vram, withAddend bool) (Reference, bool) {
	if m, ok := s.symbols.find(vram, withAddend); ok {
		return metadataReference{m}, true
	}

	maxAddend := addrs.Size(0)
	if withAddend {
		maxAddend = maxAddendUnbounded
	}
	if r, ok := s.refs.FindWithAddend(vram, maxAddend); ok {
		return evidenceReference{r}, true
	}
	return nil, false
}
