// Package feed turns feed payloads into rendered cards and a post lookup, and
// fetches payloads from files and remote sources.
package feed

import (
	"fmt"
	"html/template"
	"log/slog"

	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/render"
)

// Container is the card container the ingestor renders into.
type Container interface {
	SetHTML(html template.HTML)
	// Subscribe registers fn for read-more activations under key. A second
	// subscription under the same key replaces the first.
	Subscribe(key string, fn func(id string))
}

// Reader is the part of the reader controller the ingestor drives.
type Reader interface {
	Open(id string)
	Resync()
}

// Summary describes the result of one ingest.
type Summary struct {
	Posts   int  `json:"posts"`
	Indexed int  `json:"indexed"`
	Empty   bool `json:"empty"`
}

// Ingestor renders payloads into a container and keeps a catalog current.
type Ingestor struct {
	container Container
	catalog   *Catalog
	reader    Reader
	labels    render.Labels
	logger    *slog.Logger
	bound     bool
}

// IngestOption configures an Ingestor.
type IngestOption func(*Ingestor)

// WithLabels overrides the card labels.
func WithLabels(l render.Labels) IngestOption {
	return func(i *Ingestor) { i.labels = l }
}

// WithIngestLogger sets the logger.
func WithIngestLogger(l *slog.Logger) IngestOption {
	return func(i *Ingestor) { i.logger = l }
}

const readerSubscription = "reader.open"

// NewIngestor creates an ingestor. container and reader may be nil.
func NewIngestor(container Container, catalog *Catalog, reader Reader, opts ...IngestOption) *Ingestor {
	if catalog == nil {
		catalog = NewCatalog()
	}
	i := &Ingestor{
		container: container,
		catalog:   catalog,
		reader:    reader,
		labels:    render.DefaultLabels(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Catalog returns the lookup the ingestor maintains.
func (i *Ingestor) Catalog() *Catalog {
	return i.catalog
}

// Ingest replaces the current posts with payload. A nil payload or one
// without posts renders the empty state.
func (i *Ingestor) Ingest(payload *models.Payload) (Summary, error) {
	if i.container == nil {
		return Summary{}, nil
	}

	if payload.Len() == 0 {
		i.catalog.Reset()
		i.container.SetHTML(render.EmptyState(i.labels.Empty))
		if i.reader != nil {
			i.reader.Resync()
		}
		i.logger.Debug("feed: empty payload")
		return Summary{Empty: true}, nil
	}

	html, err := render.Cards(payload.Posts, i.labels)
	if err != nil {
		return Summary{}, fmt.Errorf("feed: ingest: %w", err)
	}
	indexed := i.catalog.Replace(payload.Posts)
	i.container.SetHTML(html)
	i.bind()

	if i.reader != nil {
		i.reader.Resync()
	}

	i.logger.Debug("feed: ingested",
		slog.Int("posts", payload.Len()),
		slog.Int("indexed", indexed))
	return Summary{Posts: payload.Len(), Indexed: indexed}, nil
}

// bind subscribes the reader to card activations once per container.
func (i *Ingestor) bind() {
	if i.bound || i.reader == nil {
		return
	}
	i.container.Subscribe(readerSubscription, i.reader.Open)
	i.bound = true
}
