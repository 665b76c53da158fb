package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) reload(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher(t *testing.T, root string, rec *recorder, opts ...Option) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	opts = append(opts, WithLogger(quietLogger()), WithDebounce(50*time.Millisecond))
	go func() {
		defer close(done)
		_ = New(root, rec.reload, opts...).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, WithExtensions(".md"))

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_ = os.WriteFile(filepath.Join(root, name), []byte("# x"), 0o644)
	}

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return len(rec.snapshot()) > 0
	}, "reload not called")

	time.Sleep(150 * time.Millisecond)
	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want one debounced reload", calls)
	}
	if len(calls[0]) != 3 {
		t.Errorf("changed = %v", calls[0])
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, WithExtensions(".md"))

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".postview-tmp-1"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 0 {
		t.Errorf("unexpected reloads: %v", calls)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, WithExtensions(".md"))

	sub := filepath.Join(root, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(150 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		for _, c := range rec.snapshot() {
			for _, p := range c {
				if p == "subdir/deep.md" {
					return true
				}
			}
		}
		return false
	}, "file in new subdir not reported")
}
