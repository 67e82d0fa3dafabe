package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{"refresh_token", "abc", "quiz_id", "q1", "state", "xyz", "dangling"})

	want := []interface{}{"refresh_token", "[REDACTED]", "quiz_id", "q1", "state", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("request_id", "r-1").Error("save failed", "quiz_id", "q1", "access_token", "secret")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "r-1" || fields["quiz_id"] != "q1" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["access_token"] != "[REDACTED]" {
		t.Errorf("expected token to be redacted, got %v", fields["access_token"])
	}
}
