// Package session hosts headless reader sessions: each one owns a page, a
// post catalog, a reader controller and an ingestor wired together the way
// the viewer page wires them.
package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/postview/internal/apperr"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/page"
	"github.com/starford/postview/internal/reader"
	"github.com/starford/postview/internal/render"
)

// Publisher receives reader state changes for a session.
type Publisher interface {
	PublishReaderState(session string, state any)
}

// View is the serializable state of one session.
type View struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Reader    reader.State  `json:"reader"`
	Page      page.Snapshot `json:"page"`
}

// Session is one headless viewer.
type Session struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	page     *page.Page
	reader   *reader.Controller
	ingestor *feed.Ingestor
}

func (s *Session) view() View {
	return View{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Reader:    s.reader.State(),
		Page:      s.page.Snapshot(),
	}
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int

	labels    render.Labels
	publisher Publisher
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMax caps the number of live sessions; zero means unlimited.
func WithMax(n int) Option {
	return func(m *Manager) { m.max = n }
}

// WithLabels sets the card labels used by every session.
func WithLabels(l render.Labels) Option {
	return func(m *Manager) { m.labels = l }
}

// WithPublisher sets where reader state changes are sent.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		labels:   render.DefaultLabels(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session loaded at rawURL and ingests the payload returned
// by latest, so a URL carrying #post/<id> opens that post right away. latest
// is called after the session is registered: a concurrent IngestAll either
// reaches the new session or has already published what latest returns.
func (m *Manager) Create(rawURL string, latest func() *models.Payload) (View, error) {
	s := m.newSession(rawURL, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return View{}, fmt.Errorf("session: %d live sessions: %w", m.max, apperr.ErrLimit)
	}
	m.sessions[s.id] = s
	m.mu.Unlock()

	var payload *models.Payload
	if latest != nil {
		payload = latest()
	}
	if _, err := s.ingestor.Ingest(payload); err != nil {
		_ = m.Delete(s.id)
		return View{}, err
	}
	m.logger.Debug("session: created", slog.String("id", s.id), slog.String("url", rawURL))
	return s.view(), nil
}

// Render loads rawURL in a throwaway session, ingests payload and returns the
// resulting view. Nothing is registered or published.
func (m *Manager) Render(rawURL string, payload *models.Payload) (View, error) {
	s := m.newSession(rawURL, false)
	if _, err := s.ingestor.Ingest(payload); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (m *Manager) newSession(rawURL string, publish bool) *Session {
	if rawURL == "" {
		rawURL = "/"
	}
	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		page:      page.New(rawURL),
	}

	catalog := feed.NewCatalog()
	opts := []reader.Option{reader.WithLogger(m.logger)}
	if publish && m.publisher != nil {
		id := s.id
		opts = append(opts, reader.WithStateHook(func(st reader.State) {
			m.publisher.PublishReaderState(id, st)
		}))
	}
	s.reader = reader.New(catalog, s.page.Dialog, s.page.Dialog, s.page.Location, opts...)
	s.page.Location.OnFragmentChange(s.reader.SyncFromFragment)
	s.ingestor = feed.NewIngestor(s.page.Cards, catalog, s.reader,
		feed.WithLabels(m.labels),
		feed.WithIngestLogger(m.logger))
	return s
}

// Get returns the current view of session id.
func (m *Manager) Get(id string) (View, error) {
	return m.with(id, func(*Session) error { return nil })
}

// Delete removes session id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns live session identifiers in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Open opens post slug in the session's reader.
func (m *Manager) Open(id, slug string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.reader.Open(slug)
		return nil
	})
}

// Activate clicks the n-th read-more link.
func (m *Manager) Activate(id string, n int) (View, error) {
	return m.with(id, func(s *Session) error {
		if _, err := s.page.Cards.Activate(n); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
		}
		return nil
	})
}

// Navigate sets the location fragment, as typing it in the address bar would.
func (m *Manager) Navigate(id, fragment string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.page.Location.SetFragment(fragment)
		return nil
	})
}

// Close presses the reader's close button.
func (m *Manager) Close(id string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.reader.Close()
		return nil
	})
}

// Back navigates one history entry back.
func (m *Manager) Back(id string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.page.Location.Back()
		return nil
	})
}

// Forward navigates one history entry forward.
func (m *Manager) Forward(id string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.page.Location.Forward()
		return nil
	})
}

// ToggleNav flips the mobile navigation.
func (m *Manager) ToggleNav(id string) (View, error) {
	return m.with(id, func(s *Session) error {
		s.page.ToggleNav()
		return nil
	})
}

// IngestAll hands payload to every live session and returns how many
// accepted it.
func (m *Manager) IngestAll(payload *models.Payload) int {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		s.mu.Lock()
		_, err := s.ingestor.Ingest(payload)
		s.mu.Unlock()
		if err != nil {
			m.logger.Warn("session: ingest failed", slog.String("id", s.id), slog.String("error", err.Error()))
			continue
		}
		n++
	}
	return n
}

func (m *Manager) with(id string, fn func(*Session) error) (View, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return View{}, fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s); err != nil {
		return View{}, err
	}
	return s.view(), nil
}
