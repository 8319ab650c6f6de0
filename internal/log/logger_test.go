package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"savings/internal/core"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentLedger, Output: &buf}), &buf
}

func TestLoggerStampsComponent(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).Warn("again")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("expected http component, got %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithRecord(core.Record{Type: core.Expense, Amount: 12.5, Category: core.Food, Month: "3"}).
		WithOperation(OpAddRecord).
		WithError(errors.New("boom")).
		WithComponent(ComponentLedger)

	if f[FieldMonth] != "3" || f[FieldAmount] != 12.5 || f[FieldOperation] != OpAddRecord || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if got := len(f.ToSlice()); got != (len(f)-1)*2 {
		t.Fatalf("ToSlice should skip component, got %d entries", got)
	}
}

func TestContextRoundTrip(t *testing.T) {
	l, _ := newBufferLogger(slog.LevelInfo)
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	req := httptest.NewRequest("GET", "/summary", nil)

	l.LogHTTPEnd(context.Background(), req, 503, 3, "1.2.3.4")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=503") {
		t.Fatalf("expected error level line, got %q", buf.String())
	}
	buf.Reset()
	l.LogHTTPEnd(context.Background(), req, 422, 3, "1.2.3.4")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warn level line, got %q", buf.String())
	}
}
