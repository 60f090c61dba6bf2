package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" x-honeycomb-team=abc , bad, k= ,dataset=oyster ")
	if len(got) != 2 || got["x-honeycomb-team"] != "abc" || got["dataset"] != "oyster" {
		t.Fatalf("headers: got=%v", got)
	}
	if ParseHeaders("  ") != nil {
		t.Fatalf("blank input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestInitOTelDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{Enabled: false})
	if shutdown == nil {
		t.Fatalf("shutdown must be non-nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
