package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	docscmd "github.com/goliatone/go-styleguide/internal/commands/docs"
	"github.com/goliatone/go-styleguide/internal/lint"
)

// flakyLinter errors on its first `failures` runs, then reports a clean tree.
type flakyLinter struct {
	failures int
	calls    int
}

func (l *flakyLinter) Run(context.Context, string) (*lint.Report, error) {
	l.calls++
	if l.calls <= l.failures {
		return nil, errors.New("docs tree busy")
	}
	return &lint.Report{Files: 3}, nil
}

// The dispatcher routes by message type, so these tests share the global
// subscription table and must not run in parallel.

func TestDispatcherRetriesLintUntilSuccess(t *testing.T) {
	linter := &flakyLinter{failures: 1}
	handler := docscmd.NewLintHandler(linter, nil)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), docscmd.LintCommand{Dir: "."}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if linter.calls != 2 {
		t.Fatalf("expected 2 runs (initial + retry), got %d", linter.calls)
	}
	if report := handler.LastReport(); report == nil || report.Files != 3 {
		t.Fatalf("expected report from the successful run, got %+v", report)
	}
}

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	linter := &flakyLinter{failures: 10}
	handler := docscmd.NewLintHandler(linter, nil)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), docscmd.LintCommand{Dir: "."})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if linter.calls != 3 {
		t.Fatalf("expected 3 runs (initial + 2 retries), got %d", linter.calls)
	}
}

func TestDispatcherRejectsInvalidMessage(t *testing.T) {
	linter := &flakyLinter{}
	sub := dispatcher.SubscribeCommand(docscmd.NewLintHandler(linter, nil))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), docscmd.LintCommand{Dir: " "}); err == nil {
		t.Fatal("expected validation error for blank dir")
	}
	if linter.calls != 0 {
		t.Fatalf("expected linter not to run, got %d calls", linter.calls)
	}
}
