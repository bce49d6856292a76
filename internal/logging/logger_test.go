package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wpp/internal/config"
	"wpp/internal/services"
)

func TestPrettyHandlerHeaderCarriesSubject(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false)).With(String(FieldComponent, "worker"))

	logger.Info("persisted",
		String(FieldReference, "b0f95582-c11b-43b4"),
		Int64(FieldMessageID, 7),
		String("currency", "EUR"),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO [worker] txn b0f95582-c11b-43b4 (msg #7) - persisted") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    currency: EUR") {
		t.Fatalf("expected body attribute, got %q", out)
	}
	if strings.Contains(out, "txn_reference:") {
		t.Fatalf("info output should not repeat header fields: %q", out)
	}
}

func TestPrettyHandlerDebugShowsAllFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Debug("popped", String(FieldReference, "ref-1"), String("note", "two words"))

	out := buf.String()
	if !strings.Contains(out, "txn_reference: ref-1") {
		t.Fatalf("expected reference in debug body, got %q", out)
	}
	if !strings.Contains(out, `note: "two words"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
}

func TestFanoutHandlerDuplicatesRecords(t *testing.T) {
	var first, second bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&first, nil),
		nil,
		slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "api")
	logger.Info("accepted")
	logger.Error("failed")

	if strings.Count(first.String(), "\n") != 2 {
		t.Fatalf("expected both records in first handler, got %q", first.String())
	}
	if strings.Contains(second.String(), "accepted") || !strings.Contains(second.String(), "failed") {
		t.Fatalf("second handler should only receive errors, got %q", second.String())
	}
	if !strings.Contains(second.String(), `"component":"api"`) {
		t.Fatalf("expected attrs propagated, got %q", second.String())
	}
}

func TestFanoutHandlerCollapsesTrivialCases(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if newFanoutHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestSessionIDHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "run-123")).With("extra", "value")
	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"session_id":"run-123"`) || !strings.Contains(out, `"extra":"value"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if _, ok := newSessionIDHandler(nil, "x").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil base")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithReference(context.Background(), "ref-9")
	ctx = services.WithMessageID(ctx, 12)
	ctx = services.WithRequestID(ctx, "req-1")
	WithContext(ctx, base).Info("tagged")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[FieldReference] != "ref-9" || payload[FieldCorrelationID] != "req-1" {
		t.Fatalf("missing context fields: %v", payload)
	}
	if payload[FieldMessageID] != float64(12) {
		t.Fatalf("unexpected message id: %v", payload[FieldMessageID])
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	WarnWithContext(logger, "slow", "queue_slow", String(FieldImpact, "delayed"))

	out := buf.String()
	for _, want := range []string{`"event_type":"queue_slow"`, `"error_hint":"check logs for details"`, `"impact":"delayed"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("started", String(FieldComponent, "daemon"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "wpp.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"started"`) {
		t.Fatalf("expected JSON record, got %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "wpp-old.log")
	keep := filepath.Join(dir, "wpp-current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, keep, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().AddDate(0, 0, -10)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed := CleanupOldLogs(NewNop(), 5, dir, "wpp-*.log", keep)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected old log removed")
	}
	for _, path := range []string{keep, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
	if CleanupOldLogs(nil, 0, dir, "*") != 0 {
		t.Fatal("retention 0 should disable pruning")
	}
}
