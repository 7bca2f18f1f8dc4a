package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 10, 25, 9, 30, 0, 125000000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("styleguide.lint")
	logger = logging.WithFields(logger, map[string]any{"module": "styleguide.lint"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"run_id": "lint-42",
	})
	logger = logger.WithContext(ctx)

	logger.Info("lint.finding",
		"doc_path", "02_language_guides/python.md",
		"line", 12,
		"message", "missing key: author",
	)

	got := strings.TrimSpace(buf.String())
	want := `2025-10-25T09:30:00.125Z INFO lint.finding doc_path=02_language_guides/python.md line=12 logger=styleguide.lint message="missing key: author" module=styleguide.lint run_id=lint-42`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:        &buf,
		MinLevel:      &minLevel,
		OmitTimestamp: true,
	})

	logger := provider.GetLogger("styleguide.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Warn("included.warn", "err", errors.New("boom"))

	got := strings.TrimSpace(buf.String())
	want := "WARN included.warn err=boom logger=styleguide.test"
	if got != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_DanglingArgument(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, OmitTimestamp: true})

	provider.GetLogger("x").Info("msg", "key", "value", "orphan")

	if !strings.Contains(buf.String(), "field_1=orphan") {
		t.Fatalf("expected positional field for dangling value, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to report false")
	}
}
