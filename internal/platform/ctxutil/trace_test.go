package ctxutil

import (
	"context"
	"testing"
)

func TestTraceFields(t *testing.T) {
	if got := TraceFields(context.Background()); got != nil {
		t.Fatalf("no trace data: got=%v", got)
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	got := TraceFields(ctx)
	want := []interface{}{"trace_id", "t1", "request_id", "r1"}
	if len(got) != len(want) {
		t.Fatalf("fields: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields[%d]: want=%v got=%v", i, want[i], got[i])
		}
	}

	ctx = WithTraceData(context.Background(), &TraceData{RequestID: "r2"})
	if got := TraceFields(ctx); len(got) != 2 || got[1] != "r2" {
		t.Fatalf("request only: got=%v", got)
	}
}

func TestDefault(t *testing.T) {
	if Default(nil) == nil {
		t.Fatalf("Default(nil) must return a context")
	}
}
