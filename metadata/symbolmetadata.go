// SPDX-License-Identifier: MIT

package metadata

import (
	"fmt"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
)

// GeneratedBy records whether a value on SymbolMetadata came from the user
// or was inferred by the pipeline. It doubles as a priority: a
// UserDeclared value can never be overwritten by a later Autogenerated
// one (see SetTypeWithPriority), resolving spec.md §9's open question
// about user-declared vs. autodetected precedence in favour of the user.
type GeneratedBy int

const (
	Autogenerated GeneratedBy = iota
	UserDeclared
)

// SectionType records which kind of section a symbol lives in.
type SectionType int

const (
	SectionText SectionType = iota
	SectionData
	SectionRodata
	SectionBss
	SectionExceptTable
)

// AccessType is the MIPS load/store width observed at a symbol's first
// lo-access (or GccExceptTable access), used to confirm or contradict the
// type votes coming out of the preheater.
type AccessType int

const (
	AccessNone AccessType = iota
	AccessByte
	AccessShort
	AccessWord
	AccessDoubleword
	AccessFloat
	AccessDoubleFloat
	AccessWordLeft
	AccessWordRight
	AccessDwordLeft
	AccessDwordRight
)

// GotInfo and the AccessedAsGPRel flag are preserved, inert, per spec.md §9:
// "GOT and GP-relative handling is partially sketched in source; only the
// interfaces are preserved here, the policy is left unspecified until
// upstream clarifies." Nothing in this module sets GotInfo to a non-nil
// value; the field exists so downstream consumers have somewhere to put
// one once that policy is decided.
type GotInfo struct {
	Index   int
	IsLocal bool
}

// SymbolMetadata is the canonical record for every address the pipeline
// knows about, whether discovered by the preheater or declared by the
// user. Within one segment, a segment's symbol map is keyed uniquely by
// Vram.
type SymbolMetadata struct {
	vram addrs.Vram
	rom  *addrs.Rom // absent for VRAM-only references

	generatedBy GeneratedBy

	userDeclaredName    string
	userDeclaredNameEnd string
	userDeclaredSize    *addrs.Size
	userDeclaredType    *SymbolType
	userDeclaredTypeSrc GeneratedBy // set to UserDeclared when SetTypeWithPriority records a user-declared type

	autodetectedSize *addrs.Size
	autodetectedType *SymbolType

	sectionType  SectionType
	accessType   AccessType
	gpAccessed   bool
	gotInfo      *GotInfo

	referenceCounter int

	// autoCreatedPadBy holds the Vram of the symbol this record was
	// synthesized as a trailing pad for, if any.
	autoCreatedPadBy *addrs.Vram

	isDefined bool
}

// New creates a fresh metadata record for vram, generated by the given
// source.
func New(generatedBy GeneratedBy, vram addrs.Vram) *SymbolMetadata {
	return &SymbolMetadata{vram: vram, generatedBy: generatedBy}
}

func (m *SymbolMetadata) Vram() addrs.Vram { return m.vram }

func (m *SymbolMetadata) Rom() (addrs.Rom, bool) {
	if m.rom == nil {
		return 0, false
	}
	return *m.rom, true
}

func (m *SymbolMetadata) SetRom(rom addrs.Rom) { r := rom; m.rom = &r }

func (m *SymbolMetadata) GeneratedBy() GeneratedBy { return m.generatedBy }

func (m *SymbolMetadata) UserDeclaredName() (string, bool) {
	if m.userDeclaredName == "" {
		return "", false
	}
	return m.userDeclaredName, true
}

func (m *SymbolMetadata) SetUserDeclaredName(name string) { m.userDeclaredName = name }

func (m *SymbolMetadata) UserDeclaredNameEnd() (string, bool) {
	if m.userDeclaredNameEnd == "" {
		return "", false
	}
	return m.userDeclaredNameEnd, true
}

func (m *SymbolMetadata) SetUserDeclaredNameEnd(name string) { m.userDeclaredNameEnd = name }

func (m *SymbolMetadata) UserDeclaredSize() (addrs.Size, bool) {
	if m.userDeclaredSize == nil {
		return 0, false
	}
	return *m.userDeclaredSize, true
}

func (m *SymbolMetadata) SetUserDeclaredSize(size addrs.Size) { s := size; m.userDeclaredSize = &s }

func (m *SymbolMetadata) UserDeclaredType() (SymbolType, bool) {
	if m.userDeclaredType == nil {
		return SymbolType{}, false
	}
	return *m.userDeclaredType, true
}

func (m *SymbolMetadata) AutodetectedSize() (addrs.Size, bool) {
	if m.autodetectedSize == nil {
		return 0, false
	}
	return *m.autodetectedSize, true
}

func (m *SymbolMetadata) SetAutodetectedSize(size addrs.Size) {
	s := size
	m.autodetectedSize = &s
}

func (m *SymbolMetadata) AutodetectedType() (SymbolType, bool) {
	if m.autodetectedType == nil {
		return SymbolType{}, false
	}
	return *m.autodetectedType, true
}

// SetTypeWithPriority sets a type observation tagged with the source it
// came from. A UserDeclared type, once set, can never be replaced by a
// later Autogenerated observation — it can only be replaced by another
// UserDeclared one. This is the exact tie-break spec.md §9 leaves as an
// open question; this pipeline pins it to "user-declared wins, and stays
// won".
func (m *SymbolMetadata) SetTypeWithPriority(t SymbolType, source GeneratedBy) {
	if source == UserDeclared {
		m.userDeclaredType = &t
		m.userDeclaredTypeSrc = UserDeclared
		return
	}

	// an autodetected vote never overwrites an existing user-declared type
	if m.userDeclaredType != nil {
		return
	}
	m.autodetectedType = &t
}

// Type returns the effective type for this symbol: the user-declared type
// if present, otherwise the autodetected one.
func (m *SymbolMetadata) Type() (SymbolType, bool) {
	if m.userDeclaredType != nil {
		return *m.userDeclaredType, true
	}
	if m.autodetectedType != nil {
		return *m.autodetectedType, true
	}
	return SymbolType{}, false
}

// Size returns the effective size for this symbol: user-declared if
// present, otherwise autodetected.
func (m *SymbolMetadata) Size() (addrs.Size, bool) {
	if m.userDeclaredSize != nil {
		return *m.userDeclaredSize, true
	}
	if m.autodetectedSize != nil {
		return *m.autodetectedSize, true
	}
	return 0, false
}

func (m *SymbolMetadata) SectionType() SectionType      { return m.sectionType }
func (m *SymbolMetadata) SetSectionType(s SectionType)  { m.sectionType = s }
func (m *SymbolMetadata) AccessType() AccessType        { return m.accessType }
func (m *SymbolMetadata) SetAccessType(a AccessType)     { m.accessType = a }
func (m *SymbolMetadata) AccessedAsGPRel() bool          { return m.gpAccessed }
func (m *SymbolMetadata) SetAccessedAsGPRel(v bool)      { m.gpAccessed = v }
func (m *SymbolMetadata) GotInfo() *GotInfo              { return m.gotInfo }
func (m *SymbolMetadata) SetGotInfo(info *GotInfo)       { m.gotInfo = info }

func (m *SymbolMetadata) ReferenceCounter() int { return m.referenceCounter }
func (m *SymbolMetadata) IncrementReferences()  { m.referenceCounter++ }

func (m *SymbolMetadata) AutoCreatedPadBy() (addrs.Vram, bool) {
	if m.autoCreatedPadBy == nil {
		return 0, false
	}
	return *m.autoCreatedPadBy, true
}

func (m *SymbolMetadata) SetAutoCreatedPadBy(origin addrs.Vram) {
	o := origin
	m.autoCreatedPadBy = &o
}

func (m *SymbolMetadata) IsDefined() bool      { return m.isDefined }
func (m *SymbolMetadata) SetIsDefined(v bool)  { m.isDefined = v }

// IsTrustableFunction reports whether this symbol is a Function whose
// boundary can be relied on to resolve an overlap: it must have a known
// size and must not itself be an auto-generated pad.
func (m *SymbolMetadata) IsTrustableFunction() bool {
	t, ok := m.Type()
	if !ok || t.Kind() != Function {
		return false
	}
	if _, isPad := m.AutoCreatedPadBy(); isPad {
		return false
	}
	_, hasSize := m.Size()
	return hasSize
}

// DisplayName produces the deterministic name for this symbol when none is
// user-declared, per spec.md §6. A user-declared name containing '@' is
// wrapped in double quotes (these are assembler-special characters in
// some MIPS toolchains).
func (m *SymbolMetadata) DisplayName() string {
	if name, ok := m.UserDeclaredName(); ok {
		if containsAt(name) {
			return fmt.Sprintf("%q", name)
		}
		return name
	}

	t, ok := m.Type()
	if !ok {
		return fmt.Sprintf("D_%08X", uint32(m.vram))
	}

	switch t.Kind() {
	case Function:
		return fmt.Sprintf("func_%08X", uint32(m.vram))
	case BranchLabel, JumptableLabel:
		return fmt.Sprintf(".L%08X", uint32(m.vram))
	case Jumptable:
		return fmt.Sprintf("jtbl_%08X", uint32(m.vram))
	case GccExceptTable:
		return fmt.Sprintf("ehtbl_%08X", uint32(m.vram))
	case GccExceptTableLabel:
		return fmt.Sprintf("$LEH_%08X", uint32(m.vram))
	default:
		return fmt.Sprintf("D_%08X", uint32(m.vram))
	}
}

func containsAt(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '@' {
			return true
		}
	}
	return false
}
