package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/postview/internal/models"
)

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte(`cb({"posts":[{"slug":"a","title":"A"}]});`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "", time.Second, 0)
	p, raw, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.Len() != 1 || len(raw) == 0 {
		t.Errorf("payload = %+v raw=%d", p, len(raw))
	}
}

func TestFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, _, err := NewFetcher(srv.URL, FormatJSON, time.Second, 0).Fetch(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestFetcher_TooLarge(t *testing.T) {
	body := `{"posts":[{"slug":"a","title":"A"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, FormatJSON, time.Second, 0)
	f.maxBody = int64(len(body))
	if _, _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("body at the limit should pass: %v", err)
	}

	f.maxBody = int64(len(body)) - 1
	_, _, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("oversized body should not be reported as malformed")
	}
}

func TestFetcher_PollStopsOnCancel(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"posts":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan struct{}, 16)
	sink := func(context.Context, *models.Payload, []byte) error {
		got <- struct{}{}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- NewFetcher(srv.URL, FormatJSON, time.Second, 0).Poll(ctx, 10*time.Millisecond, sink, nil)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for poll")
		}
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Poll returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not stop")
	}
	if hits.Load() < 2 {
		t.Errorf("hits = %d", hits.Load())
	}
}
