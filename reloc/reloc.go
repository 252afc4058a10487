// SPDX-License-Identifier: MIT

// Package reloc defines the per-instruction/per-word relocation records
// the section builder emits during materialization.
package reloc

import (
	"fmt"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
)

// Type is the closed set of relocation kinds the pipeline can emit.
type Type int

const (
	R_MIPS_32 Type = iota
	R_MIPS_26
	R_MIPS_HI16
	R_MIPS_LO16
	R_MIPS_PC16
	R_MIPS_GPREL16
	R_CUSTOM_CONSTANT_HI
	R_CUSTOM_CONSTANT_LO
)

func (t Type) String() string {
	switch t {
	case R_MIPS_32:
		return "R_MIPS_32"
	case R_MIPS_26:
		return "R_MIPS_26"
	case R_MIPS_HI16:
		return "R_MIPS_HI16"
	case R_MIPS_LO16:
		return "R_MIPS_LO16"
	case R_MIPS_PC16:
		return "R_MIPS_PC16"
	case R_MIPS_GPREL16:
		return "R_MIPS_GPREL16"
	case R_CUSTOM_CONSTANT_HI:
		return "R_CUSTOM_CONSTANT_HI"
	case R_CUSTOM_CONSTANT_LO:
		return "R_CUSTOM_CONSTANT_LO"
	default:
		return "Unknown"
	}
}

// Referent is either a known address (the common case — resolved by
// looking the target up in the segment at emit time) or a literal symbol
// name (used for synthetic constants that have no backing address, e.g.
// an unpaired %hi). Never a pointer back to a SymbolMetadata: arena
// ownership lives in the segment's map, relocations only carry enough to
// look a target up later.
type Referent struct {
	Address    addrs.Vram
	HasAddress bool
	Name       string
}

// Relocation is one per-instruction or per-word relocation emitted during
// section materialization.
type Relocation struct {
	// Rom is the location the relocation applies to.
	Rom addrs.Rom

	Kind     Type
	Referent Referent

	// Addend is the offset from Referent.Address actually referenced,
	// non-zero for mid-symbol ("pointer + offset") references.
	Addend int32
}

// NewAddressRelocation builds a relocation targeting a known address.
func NewAddressRelocation(rom addrs.Rom, kind Type, target addrs.Vram, addend int32) Relocation {
	return Relocation{
		Rom:      rom,
		Kind:     kind,
		Referent: Referent{Address: target, HasAddress: true},
		Addend:   addend,
	}
}

// NewConstantRelocation builds a relocation that targets a literal,
// symbol-less constant value (an unpaired %hi/%lo that never resolved to
// a live address).
func NewConstantRelocation(rom addrs.Rom, kind Type, literalValue uint32) Relocation {
	return Relocation{
		Rom:      rom,
		Kind:     kind,
		Referent: Referent{Name: fmt.Sprintf("0x%X", literalValue)},
	}
}
