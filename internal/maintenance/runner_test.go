package maintenance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type prunerStub struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *prunerStub) PruneExpiredSession(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err == nil, p.err
}

type purgerStub struct {
	retention time.Duration
}

func (p *purgerStub) PurgeCancelled(ctx context.Context, retention time.Duration) (int64, error) {
	p.retention = retention
	return 2, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_Add(t *testing.T) {
	runner := NewRunner(discardLogger())

	if _, err := runner.Add("@every 5m", SessionSweep(&prunerStub{})); err != nil {
		t.Fatalf("expected descriptor schedule to parse, got %v", err)
	}
	if _, err := runner.Add("*/10 * * * *", CancelledPurge(&purgerStub{}, time.Hour)); err != nil {
		t.Fatalf("expected cron schedule to parse, got %v", err)
	}
	if _, err := runner.Add("every five minutes", SessionSweep(&prunerStub{})); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}
	if _, err := runner.Add("@every 5m", Job{Name: "empty"}); err == nil {
		t.Fatal("expected job without Run to fail")
	}
}

func TestRunner_WrappedJobs(t *testing.T) {
	var logs bytes.Buffer
	runner := NewRunner(slog.New(slog.NewTextHandler(&logs, nil)))

	pruner := &prunerStub{}
	id, err := runner.Add("@every 1h", SessionSweep(pruner))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	runner.cron.Entry(id).WrappedJob.Run()
	if pruner.calls != 1 {
		t.Fatalf("expected one prune call, got %d", pruner.calls)
	}

	failing := &prunerStub{err: errors.New("store busy")}
	id, err = runner.Add("@every 1h", SessionSweep(failing))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	runner.cron.Entry(id).WrappedJob.Run()
	if !strings.Contains(logs.String(), "job failed") || !strings.Contains(logs.String(), "store busy") {
		t.Fatalf("expected failure to be logged, got %q", logs.String())
	}

	id, err = runner.Add("@every 1h", Job{Name: "explodes", Run: func(context.Context) error { panic("boom") }})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	runner.cron.Entry(id).WrappedJob.Run()
	if !strings.Contains(logs.String(), "panic") {
		t.Fatalf("expected recovered panic to be logged, got %q", logs.String())
	}
}

func TestCancelledPurge(t *testing.T) {
	purger := &purgerStub{}
	job := CancelledPurge(purger, 48*time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if purger.retention != 48*time.Hour {
		t.Fatalf("expected retention to be forwarded, got %s", purger.retention)
	}
}

func TestRunner_StartStop(t *testing.T) {
	runner := NewRunner(discardLogger())
	if _, err := runner.Add("@every 1h", SessionSweep(&prunerStub{})); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	runner.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if runner.ctx.Err() == nil {
		t.Fatal("expected job context to be cancelled on stop")
	}
}
