// Package blog coordinates feed ingest across storage, the post index, live
// reader sessions and SSE subscribers.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/postview/internal/apperr"
	"github.com/starford/postview/internal/checksum"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/index"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/session"
	"github.com/starford/postview/internal/storage"
)

// Content modes.
const (
	ModeFeed     = "feed"
	ModeMarkdown = "markdown"
)

// Ingest sources recorded in the log.
const (
	SourceAPI    = "api"
	SourceFile   = "file"
	SourceRemote = "remote"
)

// EventPublisher receives feed notifications.
type EventPublisher interface {
	PublishFeedEvent(kind string, data any)
}

// IngestResult describes one accepted or skipped payload.
type IngestResult struct {
	Source    string `json:"source"`
	Checksum  string `json:"checksum"`
	Posts     int    `json:"posts"`
	Indexed   int    `json:"indexed"`
	Sessions  int    `json:"sessions"`
	Unchanged bool   `json:"unchanged"`
}

// Status summarizes the current feed.
type Status struct {
	Posts      int              `json:"posts"`
	Checksum   string           `json:"checksum"`
	Sessions   int              `json:"sessions"`
	LastIngest *index.IngestRow `json:"last_ingest,omitempty"`
}

// Service is the single writer of the current feed.
type Service struct {
	store    storage.Provider
	db       index.PostIndex
	sessions *session.Manager
	events   EventPublisher
	logger   *slog.Logger

	mode     string
	feedFile string

	mu       sync.Mutex // serializes ingests
	stateMu  sync.RWMutex
	latest   *models.Payload
	checksum string
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists API ingests and enables Reload.
func WithStore(store storage.Provider, mode, feedFile string) Option {
	return func(s *Service) {
		s.store = store
		s.mode = mode
		s.feedFile = feedFile
	}
}

// WithSessions fans every accepted payload out to live sessions.
func WithSessions(m *session.Manager) Option {
	return func(s *Service) { s.sessions = m }
}

// WithEvents publishes feed events.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new blog service over db.
func NewService(db index.PostIndex, opts ...Option) *Service {
	s := &Service{
		db:       db,
		logger:   slog.Default(),
		mode:     ModeFeed,
		feedFile: "feed.json",
		latest:   &models.Payload{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Latest returns the current payload. Callers must not modify it.
func (s *Service) Latest() *models.Payload {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.latest
}

// Sessions returns the session manager, which may be nil.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// IngestRaw decodes data in format and applies it. Malformed input is
// reported as apperr.ErrInvalid.
func (s *Service) IngestRaw(ctx context.Context, source string, data []byte, format string) (IngestResult, error) {
	payload, err := feed.Decode(data, format)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return s.Apply(ctx, source, payload)
}

// Apply makes payload the current feed: it is indexed, logged, pushed to
// every session and announced. API payloads in feed mode are also written to
// the feed file. A payload identical to the current one is skipped.
func (s *Service) Apply(_ context.Context, source string, payload *models.Payload) (IngestResult, error) {
	if payload == nil {
		payload = &models.Payload{}
	}
	canonical, cs, err := checksum.JSON(normalize(payload))
	if err != nil {
		return IngestResult{}, fmt.Errorf("blog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := IngestResult{Source: source, Checksum: cs, Posts: payload.Len()}
	s.stateMu.RLock()
	unchanged := cs == s.checksum
	s.stateMu.RUnlock()
	if unchanged {
		res.Unchanged = true
		s.logger.Debug("blog: payload unchanged", slog.String("source", source))
		return res, nil
	}

	if source == SourceAPI && s.store != nil && s.mode == ModeFeed {
		if err := s.store.Write(s.feedFile, canonical); err != nil {
			return IngestResult{}, fmt.Errorf("blog: persist feed: %w", err)
		}
	}

	if s.db != nil {
		n, err := s.db.ReplacePosts(payload.Posts)
		if err != nil {
			return IngestResult{}, err
		}
		res.Indexed = n
		if _, err := s.db.RecordIngest(index.IngestRow{
			Source:   source,
			Checksum: cs,
			Posts:    res.Posts,
			Indexed:  n,
		}); err != nil {
			s.logger.Warn("blog: ingest log failed", slog.String("error", err.Error()))
		}
	}

	s.stateMu.Lock()
	s.latest = payload
	s.checksum = cs
	s.stateMu.Unlock()

	if s.sessions != nil {
		res.Sessions = s.sessions.IngestAll(payload)
	}
	if s.events != nil {
		s.events.PublishFeedEvent("ingested", res)
	}

	s.logger.Info("blog: feed ingested",
		slog.String("source", source),
		slog.Int("posts", res.Posts),
		slog.Int("indexed", res.Indexed),
		slog.Int("sessions", res.Sessions))
	return res, nil
}

// Reload re-reads the content directory: the feed file in feed mode, every
// Markdown post in markdown mode. A missing feed file is not an error.
func (s *Service) Reload(ctx context.Context) (IngestResult, error) {
	if s.store == nil {
		return IngestResult{}, errors.New("blog: reload without content store")
	}

	switch s.mode {
	case ModeMarkdown:
		payload, err := feed.LoadMarkdown(s.store, "")
		if err != nil {
			return IngestResult{}, err
		}
		return s.Apply(ctx, SourceFile, payload)
	default:
		data, err := s.store.Read(s.feedFile)
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("blog: no feed file", slog.String("path", s.feedFile))
			return IngestResult{Source: SourceFile, Unchanged: true}, nil
		}
		if err != nil {
			return IngestResult{}, err
		}
		return s.IngestRaw(ctx, SourceFile, data, feed.FormatAuto)
	}
}

// ListPosts returns indexed posts in feed order.
func (s *Service) ListPosts(_ context.Context, limit, offset int) ([]index.PostRow, int, error) {
	return s.db.ListPosts(limit, offset)
}

// GetPost returns the full record for slug.
func (s *Service) GetPost(_ context.Context, slug string) (*models.Post, error) {
	return s.db.GetPost(slug)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Status reports the current feed.
func (s *Service) Status(_ context.Context) (Status, error) {
	s.stateMu.RLock()
	st := Status{Posts: s.latest.Len(), Checksum: s.checksum}
	s.stateMu.RUnlock()

	if s.sessions != nil {
		st.Sessions = s.sessions.Len()
	}
	if s.db != nil {
		last, err := s.db.LastIngest()
		switch {
		case err == nil:
			st.LastIngest = last
		case !errors.Is(err, apperr.ErrNotFound):
			return st, err
		}
	}
	return st, nil
}

// normalize returns payload with a non-nil posts slice so the encoded form
// is stable.
func normalize(p *models.Payload) *models.Payload {
	if p.Posts != nil {
		return p
	}
	return &models.Payload{Posts: []models.Post{}}
}
