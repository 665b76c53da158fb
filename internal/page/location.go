package page

import (
	"net/url"
	"strings"
)

// Entry is one history entry.
type Entry struct {
	Path     string `json:"path"`
	Query    string `json:"query,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

// URL renders the entry as a relative URL.
func (e Entry) URL() string {
	return e.base() + e.Fragment
}

func (e Entry) base() string {
	if e.Query == "" {
		return e.Path
	}
	return e.Path + "?" + e.Query
}

// Location is an in-memory URL with a session history. Fragment changes made
// through SetFragment, Back and Forward notify listeners; ReplaceURL does not,
// matching history.replaceState.
type Location struct {
	entries   []Entry
	index     int
	listeners []func()
}

// NewLocation creates a location loaded at rawURL.
func NewLocation(rawURL string) *Location {
	l := &Location{}
	l.Load(rawURL)
	return l
}

// Load navigates to rawURL as a fresh page load: history is reset and no
// fragment-change event fires.
func (l *Location) Load(rawURL string) {
	l.entries = []Entry{parseEntry(rawURL, Entry{Path: "/"})}
	l.index = 0
}

// OnFragmentChange registers fn to run after every fragment change.
func (l *Location) OnFragmentChange(fn func()) {
	l.listeners = append(l.listeners, fn)
}

// Current returns the active history entry.
func (l *Location) Current() Entry {
	return l.entries[l.index]
}

// Fragment returns the current fragment including '#', or "".
func (l *Location) Fragment() string {
	return l.Current().Fragment
}

// BaseURL returns the current path and query without the fragment.
func (l *Location) BaseURL() string {
	return l.Current().base()
}

// Href returns the full relative URL of the current entry.
func (l *Location) Href() string {
	return l.Current().URL()
}

// SetFragment pushes a new entry differing only in its fragment. Setting the
// current fragment again is a no-op.
func (l *Location) SetFragment(fragment string) {
	fragment = normalizeFragment(fragment)
	cur := l.Current()
	if cur.Fragment == fragment {
		return
	}
	next := cur
	next.Fragment = fragment
	l.push(next)
	l.notify()
}

// ReplaceURL replaces the current entry with rawURL, resolved against it.
func (l *Location) ReplaceURL(rawURL string) {
	l.entries[l.index] = parseEntry(rawURL, l.Current())
}

// Back moves one entry back. It reports whether there was an entry to go to.
func (l *Location) Back() bool {
	return l.Go(-1)
}

// Forward moves one entry forward.
func (l *Location) Forward() bool {
	return l.Go(1)
}

// Go traverses delta entries. A fragment-change event fires when the
// fragment differs between the two entries.
func (l *Location) Go(delta int) bool {
	target := l.index + delta
	if delta == 0 || target < 0 || target >= len(l.entries) {
		return false
	}
	before := l.Fragment()
	l.index = target
	if l.Fragment() != before {
		l.notify()
	}
	return true
}

// Len returns the number of history entries.
func (l *Location) Len() int {
	return len(l.entries)
}

// Index returns the position of the current entry.
func (l *Location) Index() int {
	return l.index
}

// Entries returns a copy of the history stack.
func (l *Location) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Location) push(e Entry) {
	l.entries = append(l.entries[:l.index+1], e)
	l.index = len(l.entries) - 1
}

func (l *Location) notify() {
	for _, fn := range l.listeners {
		fn()
	}
}

func normalizeFragment(f string) string {
	if f == "" || f == "#" {
		return ""
	}
	if !strings.HasPrefix(f, "#") {
		return "#" + f
	}
	return f
}

// parseEntry resolves rawURL against base. Only path, query and fragment are
// kept; scheme and host are dropped. The fragment is kept in its raw form.
func parseEntry(rawURL string, base Entry) Entry {
	rest, frag, _ := strings.Cut(rawURL, "#")
	u, err := url.Parse(rest)
	if err != nil {
		return base
	}
	e := Entry{Path: u.EscapedPath(), Query: u.RawQuery}
	if e.Path == "" {
		e.Path = base.Path
		if u.RawQuery == "" && !u.ForceQuery {
			e.Query = base.Query
		}
	}
	e.Fragment = normalizeFragment(frag)
	return e
}
