package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/urlenc"
)

// RevealStep is the per-card reveal delay in milliseconds.
const RevealStep = 80

// Labels holds the user-facing strings of the card list.
type Labels struct {
	Empty    string
	ReadMore string
}

// DefaultLabels returns the stock Japanese labels.
func DefaultLabels() Labels {
	return Labels{
		Empty:    "記事はまだありません。",
		ReadMore: "続きを読む →",
	}
}

// Card is the view model for one preview card.
type Card struct {
	Index   int
	Delay   int
	Title   template.HTML
	Date    string
	Minutes int
	Excerpt template.HTML
	Image   string
	Slug    string // percent-encoded identifier
	Href    template.URL
	HasSlug bool
	Label   string
}

// NewCard builds the card view model for a post at position i.
func NewCard(i int, p models.Post, readMore string) Card {
	return Card{
		Index:   i,
		Delay:   i * RevealStep,
		Title:   template.HTML(EscapeHTML(p.Title)),
		Date:    dates.Display(p.Date),
		Minutes: ReadingMinutes(p.Content),
		Excerpt: LineBreaks(p.Excerpt),
		Image:   p.ImageURL,
		Slug:    urlenc.Component(p.Slug),
		Href:    template.URL(urlenc.PostFragment(p.Slug)),
		HasSlug: p.HasSlug(),
		Label:   readMore,
	}
}

var cardsTmpl = template.Must(template.New("cards").Parse(`{{range .}}
<article class="card reveal" style="--d:{{.Delay}}ms">
  <div class="card-thumb" style="background:linear-gradient(25deg, rgba(59,130,246,.25), rgba(16,185,129,.2)){{with .Image}}, url('{{.}}') center/cover{{end}}" aria-hidden="true"></div>
  <div class="card-body">
    <h3 class="card-title">{{.Title}}</h3>
    <p class="muted">{{.Date}} · {{.Minutes}} min</p>
    <p>{{.Excerpt}}</p>
    {{- if .HasSlug}}
    <a class="text-link readmore" href="{{.Href}}" data-slug="{{.Slug}}">{{.Label}}</a>
    {{- end}}
  </div>
</article>
{{- end}}`))

// Cards renders one card per post in input order. An empty list renders the
// empty-state message instead.
func Cards(posts []models.Post, labels Labels) (template.HTML, error) {
	if len(posts) == 0 {
		return EmptyState(labels.Empty), nil
	}
	cards := make([]Card, len(posts))
	for i, p := range posts {
		cards[i] = NewCard(i, p, labels.ReadMore)
	}
	var buf bytes.Buffer
	if err := cardsTmpl.Execute(&buf, cards); err != nil {
		return "", fmt.Errorf("render: cards: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// EmptyState renders the placeholder shown when the feed has no posts.
func EmptyState(msg string) template.HTML {
	return template.HTML(`<p class="muted">` + EscapeHTML(msg) + `</p>`)
}
