package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewCarriesKind(t *testing.T) {
	err := New(InvalidArgument, "baseline %f is not positive", -1.0)

	if !IsKind(err, InvalidArgument) {
		t.Fatal("expected invalid_argument kind")
	}
	if IsKind(err, IOFailure) {
		t.Fatal("kind should not match io_failure")
	}
}

func TestWrapNilCause(t *testing.T) {
	if err := Wrap(IOFailure, nil, "write snapshot"); err != nil {
		t.Fatalf("nil cause should return nil, got %v", err)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IOFailure, cause, "write snapshot")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to its cause")
	}
	if !IsKind(err, IOFailure) {
		t.Fatal("expected io_failure kind")
	}
}

func TestIsKindThroughFurtherWrapping(t *testing.T) {
	inner := New(UninitializedState, "profile not derived")
	outer := fmt.Errorf("compute: %w", inner)

	if !IsKind(outer, UninitializedState) {
		t.Fatal("kind should survive fmt.Errorf wrapping")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		InvalidArgument:    "invalid_argument",
		UninitializedState: "uninitialized_state",
		IOFailure:          "io_failure",
		Kind(0):            "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("kind %d: expected %s, got %s", k, want, got)
		}
	}
}
