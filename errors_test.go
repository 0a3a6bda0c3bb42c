package typical_test

import (
	"fmt"
	"strings"
	"testing"

	typical "github.com/ducminhgd/typical"
)

func TestIssues_ErrorSummaryTruncates(t *testing.T) {
	iss := typical.Issues{
		{Path: "/a", Code: typical.CodeInvalidType},
		{Path: "/b", Code: typical.CodeRequired},
		{Path: "/c", Code: typical.CodeTooShort},
		{Path: "/d", Code: typical.CodeTooLong},
	}
	s := iss.Error()
	if s == "" {
		t.Fatalf("expected a non-empty summary")
	}
	if !strings.Contains(s, "invalid_type at /a") {
		t.Fatalf("summary should name the first issue: %q", s)
	}
	if !strings.Contains(s, "total 4") {
		t.Fatalf("summary should report the total: %q", s)
	}
}

func TestAsIssues_UnwrapsWrappedErrors(t *testing.T) {
	inner := typical.Issues{{Path: "/x", Code: typical.CodeRequired}}
	wrapped := fmt.Errorf("resolving: %w", inner)
	iss, ok := typical.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Path != "/x" {
		t.Fatalf("expected to recover the inner issues, got %v %v", iss, ok)
	}
	if _, ok := typical.AsIssues(nil); ok {
		t.Fatalf("nil error has no issues")
	}
}
