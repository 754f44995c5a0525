package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates with ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "trims whitespace first", input: "  spaced  ", limit: 6, expect: "spaced"},
		{name: "counts runes", input: "héllo wörld", limit: 4, expect: "héll..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestAnswerFields(t *testing.T) {
	t.Parallel()

	fields := Answer("s1", 3, "short")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Key != "session_id" || fields[0].String != "s1" {
		t.Fatalf("unexpected session field: %+v", fields[0])
	}
	if fields[1].Key != "ordinal" || fields[1].Integer != 3 {
		t.Fatalf("unexpected ordinal field: %+v", fields[1])
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, json := range []bool{false, true} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("New(json=%v): %v", json, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level enabled")
		}
	}
}
