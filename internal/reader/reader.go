// Package reader implements the modal reader and keeps it in sync with the
// "#post/<id>" URL fragment.
//
// The controller is driven from a single goroutine at a time (one event
// handler per transition); callers that share it across goroutines must
// serialize access themselves.
package reader

import (
	"html/template"
	"log/slog"

	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/render"
	"github.com/starford/postview/internal/urlenc"
)

// Dialog is the modal container.
type Dialog interface {
	ShowModal()
	Close()
	IsOpen() bool
}

// Surface receives the fields of the post being displayed.
type Surface interface {
	SetTitle(text string)
	SetMeta(text string)
	SetBody(html template.HTML)
	SetImage(src string, visible bool)
}

// Location is the URL the reader keeps in sync.
type Location interface {
	// Fragment returns the current fragment including '#', or "".
	Fragment() string
	// SetFragment navigates to fragment, creating a history entry.
	SetFragment(fragment string)
	// ReplaceURL swaps the current history entry for url without a new entry.
	ReplaceURL(url string)
	// BaseURL returns path and query of the current URL without fragment.
	BaseURL() string
}

// Lookup resolves post identifiers.
type Lookup interface {
	Lookup(id string) (models.Post, bool)
}

// State is the reader state: closed, or open on ID.
type State struct {
	Open bool   `json:"open"`
	ID   string `json:"id,omitempty"`
}

// Closed is the zero state.
var Closed = State{}

// Controller owns the reader's open/closed state.
type Controller struct {
	lookup   Lookup
	dialog   Dialog
	surface  Surface
	location Location
	logger   *slog.Logger

	state    State
	onChange func(State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithStateHook registers fn to be called after every state change.
func WithStateHook(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// New creates a Controller. Any collaborator may be nil; operations that need
// a missing collaborator do nothing.
func New(lookup Lookup, dialog Dialog, surface Surface, location Location, opts ...Option) *Controller {
	c := &Controller{
		lookup:   lookup,
		dialog:   dialog,
		surface:  surface,
		location: location,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current reader state.
func (c *Controller) State() State {
	return c.state
}

// Open displays post id and points the fragment at it. Unknown ids are
// ignored.
func (c *Controller) Open(id string) {
	if !c.show(id) {
		return
	}
	if c.location == nil {
		return
	}
	if frag := urlenc.PostFragment(id); c.location.Fragment() != frag {
		c.location.SetFragment(frag)
	}
}

// Close closes the reader and restores the base URL in place, so the closed
// post does not stay reachable through the back button.
func (c *Controller) Close() {
	if c.dialog != nil && c.dialog.IsOpen() {
		c.dialog.Close()
	}
	c.setState(Closed)
	c.clearFragment()
}

// SyncFromFragment brings the reader in line with the current fragment. It is
// the handler for both direct loads and fragment changes and is idempotent.
func (c *Controller) SyncFromFragment() {
	if c.location == nil {
		return
	}
	frag := c.location.Fragment()
	if urlenc.IsPostFragment(frag) {
		id, ok := urlenc.ParsePostFragment(frag)
		if !ok {
			c.logger.Debug("reader: undecodable fragment", slog.String("fragment", frag))
			return
		}
		if c.state.Open && c.state.ID == id && c.dialog != nil && c.dialog.IsOpen() {
			return
		}
		c.show(id)
		return
	}
	if c.dialog != nil && c.dialog.IsOpen() {
		c.dialog.Close()
	}
	c.setState(Closed)
}

// Resync is run after the lookup has been replaced. An open post that is no
// longer known is closed; one that survived is repopulated from its new
// record. Then the fragment is honoured, which opens direct links.
func (c *Controller) Resync() {
	if c.state.Open {
		if _, ok := c.resolve(c.state.ID); ok {
			c.show(c.state.ID)
		} else {
			c.logger.Debug("reader: open post dropped by ingest", slog.String("id", c.state.ID))
			c.Close()
		}
	}
	if c.location != nil && urlenc.IsPostFragment(c.location.Fragment()) {
		c.SyncFromFragment()
	}
}

func (c *Controller) resolve(id string) (models.Post, bool) {
	if c.lookup == nil || id == "" {
		return models.Post{}, false
	}
	return c.lookup.Lookup(id)
}

// show populates and opens the dialog on id. It reports whether id resolved.
func (c *Controller) show(id string) bool {
	p, ok := c.resolve(id)
	if !ok {
		c.logger.Debug("reader: unknown post", slog.String("id", id))
		return false
	}
	if c.dialog == nil {
		return false
	}
	c.populate(p)
	if !c.dialog.IsOpen() {
		c.dialog.ShowModal()
	}
	c.setState(State{Open: true, ID: id})
	return true
}

func (c *Controller) populate(p models.Post) {
	if c.surface == nil {
		return
	}
	c.surface.SetTitle(p.Title)
	c.surface.SetMeta(dates.Display(p.Date))
	c.surface.SetBody(render.Paragraphs(p.Content))
	c.surface.SetImage(p.ImageURL, p.ImageURL != "")
}

func (c *Controller) clearFragment() {
	if c.location == nil {
		return
	}
	if urlenc.IsPostFragment(c.location.Fragment()) {
		c.location.ReplaceURL(c.location.BaseURL())
	}
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}
