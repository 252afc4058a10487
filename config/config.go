// SPDX-License-Identifier: MIT

// Package config holds the global, read-only settings threaded through
// every phase of the builder pipeline: byte order and the optional
// GP-relative base used by the still-unresolved GOT/$gp policy (spec.md
// §9 leaves the actual materialization policy open; only the
// configuration surface is carried here).
package config

import "encoding/binary"

// Endian wraps encoding/binary.ByteOrder with the two variants the MIPS
// toolchains this pipeline targets actually use.
type Endian struct {
	order binary.ByteOrder
	name  string
}

var (
	BigEndian    = Endian{order: binary.BigEndian, name: "big"}
	LittleEndian = Endian{order: binary.LittleEndian, name: "little"}
)

func (e Endian) String() string { return e.name }

// Word reads a big/little-endian 32-bit word, per the configured order.
func (e Endian) Word(b []byte) uint32 { return e.order.Uint32(b) }

// DWord reads a big/little-endian 64-bit doubleword.
func (e Endian) DWord(b []byte) uint64 { return e.order.Uint64(b) }

// PutWord writes a 32-bit word in the configured order.
func (e Endian) PutWord(b []byte, v uint32) { e.order.PutUint32(b, v) }

// GpConfig describes the GP-relative base used to resolve $gp-relative
// accesses (R_MIPS_GPREL16). Whether and how a segment actually applies
// this is left unspecified upstream; the struct exists so the interface
// is there once that policy lands.
type GpConfig struct {
	GpValue uint32
}

// GlobalConfig is the top-level, immutable configuration for one run of
// the pipeline.
type GlobalConfig struct {
	endian   Endian
	gpConfig *GpConfig
}

// New creates a GlobalConfig with the given endian policy and no
// GP-relative base.
func New(endian Endian) GlobalConfig {
	return GlobalConfig{endian: endian}
}

func (c GlobalConfig) Endian() Endian { return c.endian }

// WithGpConfig returns a copy of c with the GP-relative base set.
func (c GlobalConfig) WithGpConfig(gp GpConfig) GlobalConfig {
	c.gpConfig = &gp
	return c
}

func (c GlobalConfig) GpConfig() (GpConfig, bool) {
	if c.gpConfig == nil {
		return GpConfig{}, false
	}
	return *c.gpConfig, true
}
