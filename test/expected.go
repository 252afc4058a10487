// SPDX-License-Identifier: MIT

// Package test collects small assertion helpers shared by every package's
// _test.go files, so test bodies read as a sequence of expectations rather
// than hand-rolled if/t.Fatalf blocks.
package test

import (
	"reflect"
	"testing"
)

// ExpectEquality fails the test if got and want are not equal, as judged by
// reflect.DeepEqual (falling back to a direct == comparison for comparable
// scalar types, which produces a friendlier mismatch message).
func ExpectEquality(t *testing.T, got, want interface{}) {
	t.Helper()

	if got == want {
		return
	}

	if reflect.DeepEqual(got, want) {
		return
	}

	t.Errorf("unexpected value: got %v, want %v", got, want)
}

// ExpectSuccess fails the test if v represents a failure. v may be a bool
// (true succeeds), an error (nil succeeds) or nil.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()

	switch x := v.(type) {
	case nil:
		return
	case bool:
		if !x {
			t.Errorf("expected success, got failure")
		}
	case error:
		if x != nil {
			t.Errorf("expected success, got error: %v", x)
		}
	default:
		t.Errorf("unexpected type passed to ExpectSuccess: %T", v)
	}
}

// ExpectFailure fails the test if v represents a success. v may be a bool
// (false succeeds as "is a failure") or an error (non-nil succeeds).
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()

	switch x := v.(type) {
	case bool:
		if x {
			t.Errorf("expected failure, got success")
		}
	case error:
		if x == nil {
			t.Errorf("expected failure, got success")
		}
	default:
		t.Errorf("unexpected type passed to ExpectFailure: %T", v)
	}
}
