package services_test

import (
	"errors"
	"strings"
	"testing"

	"wpp/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "queue", "append", "insert failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"queue", "append", "insert failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestErrorKindMapping(t *testing.T) {
	cases := map[string]error{
		"validation":  services.Wrap(services.ErrValidation, "submission", "decode", "bad", nil),
		"conflict":    services.Wrap(services.ErrConflict, "intake", "submit", "dup", nil),
		"unavailable": services.Wrap(services.ErrUnavailable, "status", "get", "down", errors.New("io")),
		"not_found":   services.Wrap(services.ErrNotFound, "records", "find", "missing", nil),
		"transient":   errors.New("plain"),
	}
	for want, err := range cases {
		if got := services.ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
	if services.ErrorKind(nil) != "" {
		t.Fatal("expected empty kind for nil error")
	}
}
