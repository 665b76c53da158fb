package page

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/postview/internal/urlenc"
)

// ErrNoTarget is returned when an activation does not hit a read-more link.
var ErrNoTarget = errors.New("page: no read-more link at target")

const readMoreSelector = "a.readmore"

// Cards is the post-card container. It holds the rendered markup and
// dispatches read-more activations to its subscribers with the decoded post
// identifier.
type Cards struct {
	html        template.HTML
	doc         *goquery.Document
	subscribers map[string]func(id string)
	order       []string
}

// NewCards returns an empty container.
func NewCards() *Cards {
	return &Cards{subscribers: make(map[string]func(string))}
}

// SetHTML replaces the container markup.
func (c *Cards) SetHTML(html template.HTML) {
	c.html = html
	c.doc = nil
}

// HTML returns the container markup.
func (c *Cards) HTML() template.HTML {
	return c.html
}

// Subscribe registers fn for activations under key. Subscribing the same key
// again replaces the previous handler, so a key fires at most once per
// activation.
func (c *Cards) Subscribe(key string, fn func(id string)) {
	if _, ok := c.subscribers[key]; !ok {
		c.order = append(c.order, key)
	}
	c.subscribers[key] = fn
}

// Subscribers returns the number of registered handlers.
func (c *Cards) Subscribers() int {
	return len(c.subscribers)
}

// Activate simulates a click on the n-th read-more link (0-based) and returns
// the decoded identifier it carried.
func (c *Cards) Activate(n int) (string, error) {
	doc, err := c.document()
	if err != nil {
		return "", err
	}
	link := doc.Find(readMoreSelector).Eq(n)
	if link.Length() == 0 {
		return "", fmt.Errorf("%w: index %d", ErrNoTarget, n)
	}
	return c.dispatch(link)
}

// Click simulates a click on the first element matching selector. The click
// counts as an activation when the element is, or sits inside, a read-more
// link.
func (c *Cards) Click(selector string) (string, error) {
	doc, err := c.document()
	if err != nil {
		return "", err
	}
	target := doc.Find(selector).First()
	if target.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoTarget, selector)
	}
	link := target.Closest(readMoreSelector)
	if link.Length() == 0 {
		return "", ErrNoTarget
	}
	return c.dispatch(link)
}

// ReadMoreCount returns the number of read-more links.
func (c *Cards) ReadMoreCount() int {
	doc, err := c.document()
	if err != nil {
		return 0
	}
	return doc.Find(readMoreSelector).Length()
}

func (c *Cards) dispatch(link *goquery.Selection) (string, error) {
	raw, _ := link.Attr("data-slug")
	id, err := urlenc.DecodeComponent(raw)
	if err != nil {
		return "", fmt.Errorf("page: decode slug %q: %w", raw, err)
	}
	for _, key := range c.order {
		c.subscribers[key](id)
	}
	return id, nil
}

func (c *Cards) document() (*goquery.Document, error) {
	if c.doc != nil {
		return c.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(c.html)))
	if err != nil {
		return nil, fmt.Errorf("page: parse cards: %w", err)
	}
	c.doc = doc
	return doc, nil
}
