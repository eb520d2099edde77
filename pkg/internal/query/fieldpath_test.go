package query_test

import (
	"testing"

	"github.com/foliva/docengine/pkg/internal/query"
)

func TestValidateFieldPathSplitsDottedSegments(t *testing.T) {
	segs, err := query.ValidateFieldPath("address.city")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(segs) != 2 || segs[0] != "address" || segs[1] != "city" {
		t.Fatalf("unexpected segments: %v", segs)
	}
}

func TestValidateFieldPathRejectsEmpty(t *testing.T) {
	if _, err := query.ValidateFieldPath(""); err == nil {
		t.Fatal("expected an error for an empty field path")
	}
}

func TestValidateFieldPathRejectsInjectionAttempt(t *testing.T) {
	if _, err := query.ValidateFieldPath("name'; DROP TABLE documents; --"); err == nil {
		t.Fatal("expected an error for a non-identifier segment")
	}
}

func TestValidateFieldPathRejectsEmptySegment(t *testing.T) {
	if _, err := query.ValidateFieldPath("address..city"); err == nil {
		t.Fatal("expected an error for an empty intermediate segment")
	}
}
