package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{
			name:     "invalid parameter",
			err:      NewInvalidParameterError("k", "must be at least 2"),
			sentinel: ErrInvalidParameter,
			check:    IsInvalidParameterError,
		},
		{
			name:     "model fit",
			err:      NewModelFitError("decision_tree", "single-class subset"),
			sentinel: ErrModelFit,
			check:    IsModelFitError,
		},
		{
			name:     "insufficient data",
			err:      NewInsufficientDataError(1, 2),
			sentinel: ErrInsufficientData,
			check:    IsInsufficientDataError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should wrap its sentinel", tt.err)
			}
			if !tt.check(tt.err) {
				t.Errorf("helper should match %v", tt.err)
			}
			wrapped := fmt.Errorf("outer context: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("helper should match through further wrapping: %v", wrapped)
			}
		})
	}
}

func TestReportNotFoundIsNotFound(t *testing.T) {
	if !IsNotFoundError(ErrReportNotFound) {
		t.Error("report-not-found should satisfy the not-found check")
	}
	if IsNotFoundError(ErrModelFit) {
		t.Error("unrelated errors should not satisfy the not-found check")
	}
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	if a.IsEmpty() || b.IsEmpty() {
		t.Fatal("generated IDs must be non-empty")
	}
	if a == b {
		t.Error("consecutive IDs must differ")
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID("0190a5e2-7f3c-7000-8000-000000000000")
	if err != nil {
		t.Fatalf("ParseRunID failed: %v", err)
	}
	if id.String() != "0190a5e2-7f3c-7000-8000-000000000000" {
		t.Errorf("parsed ID = %q", id)
	}

	if _, err := ParseRunID("   "); err == nil {
		t.Error("blank run ID should be rejected")
	}
}

func TestHashStrings(t *testing.T) {
	if HashStrings("a", "b") != HashStrings("a", "b") {
		t.Error("identical inputs must hash identically")
	}
	if HashStrings("a", "b") == HashStrings("ab") {
		t.Error("separator must keep (a,b) distinct from (ab)")
	}
	if HashStrings("a", "b") == HashStrings("b", "a") {
		t.Error("ordering must affect the digest")
	}
}
