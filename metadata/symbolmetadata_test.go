// SPDX-License-Identifier: MIT

package metadata_test

import (
	"testing"

	"github.com/Decompollaborate/py-mips-disasm/addrs"
	"github.com/Decompollaborate/py-mips-disasm/metadata"
	"github.com/Decompollaborate/py-mips-disasm/test"
)

func TestDisplayNameDefaults(t *testing.T) {
	m := metadata.New(metadata.Autogenerated, addrs.Vram(0x80001000))
	m.SetTypeWithPriority(metadata.NewType(metadata.Function), metadata.Autogenerated)
	test.ExpectEquality(t, m.DisplayName(), "func_80001000")

	m2 := metadata.New(metadata.Autogenerated, addrs.Vram(0x80001010))
	m2.SetTypeWithPriority(metadata.NewType(metadata.BranchLabel), metadata.Autogenerated)
	test.ExpectEquality(t, m2.DisplayName(), ".L80001010")
}

func TestDisplayNameUserDeclaredWithAt(t *testing.T) {
	m := metadata.New(metadata.UserDeclared, addrs.Vram(0x80001000))
	m.SetUserDeclaredName("foo@bar")
	test.ExpectEquality(t, m.DisplayName(), `"foo@bar"`)
}

func TestUserDeclaredTypeWinsPermanently(t *testing.T) {
	m := metadata.New(metadata.UserDeclared, addrs.Vram(0x80001000))
	m.SetTypeWithPriority(metadata.NewType(metadata.Word), metadata.UserDeclared)

	// a later autodetected vote must not overwrite the user-declared type
	m.SetTypeWithPriority(metadata.NewType(metadata.Function), metadata.Autogenerated)

	ty, ok := m.Type()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ty.Kind(), metadata.Word)
}

func TestIsTrustableFunction(t *testing.T) {
	m := metadata.New(metadata.Autogenerated, addrs.Vram(0x80001000))
	test.ExpectEquality(t, m.IsTrustableFunction(), false)

	m.SetTypeWithPriority(metadata.NewType(metadata.Function), metadata.Autogenerated)
	test.ExpectEquality(t, m.IsTrustableFunction(), false) // no size yet

	m.SetAutodetectedSize(addrs.Size(0x20))
	test.ExpectEquality(t, m.IsTrustableFunction(), true)

	m.SetAutoCreatedPadBy(addrs.Vram(0x80000FE0))
	test.ExpectEquality(t, m.IsTrustableFunction(), false)
}
