// Package page is an in-memory model of the viewer page: location and
// history, the card container, the reader dialog, the nav toggle and the year
// display. It gives the reader and ingest code a DOM-shaped surface that can
// be driven and inspected without a browser.
package page

import (
	"html/template"
	"time"
)

// Page groups the elements of one viewer page.
type Page struct {
	Location *Location
	Cards    *Cards
	Dialog   *Dialog

	year    int
	navOpen bool
}

// New creates a page loaded at rawURL.
func New(rawURL string) *Page {
	return &Page{
		Location: NewLocation(rawURL),
		Cards:    NewCards(),
		Dialog:   NewDialog(),
		year:     time.Now().Year(),
	}
}

// ToggleNav flips the mobile navigation and returns the new aria-expanded
// value.
func (p *Page) ToggleNav() bool {
	p.navOpen = !p.navOpen
	return p.navOpen
}

// Year returns the value of the year display.
func (p *Page) Year() int {
	return p.year
}

// Snapshot is a serializable view of the page.
type Snapshot struct {
	URL          string        `json:"url"`
	History      []Entry       `json:"history"`
	HistoryIndex int           `json:"history_index"`
	Cards        template.HTML `json:"cards"`
	Dialog       DialogView    `json:"dialog"`
	NavExpanded  bool          `json:"nav_expanded"`
	Year         int           `json:"year"`
}

// Snapshot captures the current page state.
func (p *Page) Snapshot() Snapshot {
	return Snapshot{
		URL:          p.Location.Href(),
		History:      p.Location.Entries(),
		HistoryIndex: p.Location.Index(),
		Cards:        p.Cards.HTML(),
		Dialog:       p.Dialog.View(),
		NavExpanded:  p.navOpen,
		Year:         p.year,
	}
}
