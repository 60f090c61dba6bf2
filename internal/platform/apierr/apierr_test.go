package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrapped(t *testing.T) {
	base := BadRequest("missing_input", errors.New("missing syllabus"))
	wrapped := fmt.Errorf("enrich: %w", base)
	if got := StatusOf(wrapped); got != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, got)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected errors.Is to match")
	}
}

func TestStatusOfPlainErrorDefaultsTo500(t *testing.T) {
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", got)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := New(0, "code_only", nil).Error(); got != "code_only" {
		t.Fatalf("unexpected message: %q", got)
	}
}
