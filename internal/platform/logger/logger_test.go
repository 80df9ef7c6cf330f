package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecretKeys(t *testing.T) {
	r := &redactor{enabled: true, salt: "pepper"}

	out := r.sanitize([]interface{}{
		"access_token", "abc",
		"password", "hunter2",
		"email", "kid@example.com",
		"title", "A Sunny Day",
	})
	if len(out) != 8 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	for i, want := range []interface{}{"[REDACTED]", "[REDACTED]", "[REDACTED]", "A Sunny Day"} {
		if got := out[i*2+1]; got != want {
			t.Fatalf("value %d: want=%v got=%v", i, want, got)
		}
	}
}

func TestSanitizeHashesOwnerIDs(t *testing.T) {
	r := &redactor{enabled: true, salt: "pepper"}

	out := r.sanitize([]interface{}{"owner_id", uint(42)})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("expected hashed owner_id, got=%v", out[1])
	}
	again := r.sanitize([]interface{}{"owner_id", uint(42)})
	if again[1] != got {
		t.Fatalf("hash not stable: %v vs %v", again[1], got)
	}
}

func TestSanitizeDisabledPassesThrough(t *testing.T) {
	r := &redactor{enabled: false}
	out := r.sanitize([]interface{}{"password", "hunter2"})
	if out[1] != "hunter2" {
		t.Fatalf("expected passthrough, got=%v", out[1])
	}
}

func TestSanitizeOddKeyValueCount(t *testing.T) {
	r := &redactor{enabled: true}
	out := r.sanitize([]interface{}{"kind", "story", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
