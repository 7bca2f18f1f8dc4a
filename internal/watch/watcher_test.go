package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{}, nil)
	if !errors.Is(err, ErrNoDirectory) {
		t.Fatalf("expected ErrNoDirectory, got %v", err)
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "guides")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := New(root, Options{Debounce: 50 * time.Millisecond, Extensions: []string{".md"}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			calls <- changed
			return errStop
		})
	}()

	target := filepath.Join(sub, "bash.md")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("# Bash\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(sub, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-calls:
		if len(changed) != 1 || changed[0] != target {
			t.Fatalf("expected single debounced change for %s, got %v", target, changed)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for change notification")
	}

	if err := <-done; !errors.Is(err, errStop) {
		t.Fatalf("expected handler error to stop Run, got %v", err)
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), Options{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx, func(context.Context, []string) error { return nil }); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

var errStop = errors.New("stop")
