package synerr

import (
	"errors"
	"testing"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	base := errors.New("boom")
	wrapped := New(Remote, "list children", base)

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("expected KindOf to find the tagged error")
	}
	if kind != Remote {
		t.Errorf("expected Kind Remote, got %v", kind)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("untagged")); ok {
		t.Error("expected KindOf to report ok=false for an untagged error")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(Config, "op", nil) != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
}

func TestErrorMessageIncludesKindAndOp(t *testing.T) {
	err := New(Password, "verify passbook", errors.New("test plaintext mismatch"))
	got := err.Error()
	want := "password error: verify passbook: test plaintext mismatch"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
