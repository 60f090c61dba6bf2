package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystemIsIdempotent(t *testing.T) {
	once := ApplySystem("Write questions.\nMore detail.", ModeJSON)
	twice := ApplySystem(once, ModeJSON)
	if once != twice {
		t.Fatalf("expected idempotent output")
	}
	if !strings.HasPrefix(once, marker) {
		t.Fatalf("missing marker: %q", once)
	}
	if !strings.HasSuffix(once, "Write questions.\nMore detail.") {
		t.Fatalf("original prompt should be preserved at the end: %q", once)
	}
}

func TestApplySystemModes(t *testing.T) {
	if got := ApplySystem("x", ModeJSON); !strings.Contains(got, "one JSON object") {
		t.Fatalf("json mode: %q", got)
	}
	text := ApplySystem("x", ModeText)
	if !strings.Contains(text, "read aloud") || strings.Contains(text, "JSON") {
		t.Fatalf("text mode: %q", text)
	}
	if got := ApplySystem("x", Mode("bogus")); got != text {
		t.Fatalf("unknown mode should fall back to text")
	}
	if got := ApplySystem("   ", ModeText); got != "" {
		t.Fatalf("blank: want empty got=%q", got)
	}
}
