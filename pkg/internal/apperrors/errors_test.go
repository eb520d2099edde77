package apperrors_test

import (
	"errors"
	"testing"

	"github.com/foliva/docengine/pkg/internal/apperrors"
)

func TestNewRoundTripsKind(t *testing.T) {
	err := apperrors.New(apperrors.KindNotFound, "document not found")

	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", apperrors.KindOf(err))
	}

	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatal("expected errors.Is to match the sentinel")
	}
}

func TestWrapPreservesCauseAndKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Wrap(apperrors.KindInternal, "get document", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}

	if apperrors.KindOf(err) != apperrors.KindInternal {
		t.Fatalf("expected KindInternal, got %v", apperrors.KindOf(err))
	}
}

func TestKindOfDefaultsToInternalForUntaggedErrors(t *testing.T) {
	plain := errors.New("boom")

	if apperrors.KindOf(plain) != apperrors.KindInternal {
		t.Fatalf("expected untagged errors to default to KindInternal, got %v", apperrors.KindOf(plain))
	}
}

func TestKindOfMatchesBareSentinel(t *testing.T) {
	if apperrors.KindOf(apperrors.ErrAlreadyDeleted) != apperrors.KindAlreadyDeleted {
		t.Fatal("expected the bare sentinel itself to classify correctly")
	}
}
