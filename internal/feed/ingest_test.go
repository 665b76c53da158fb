package feed

import (
	"strings"
	"testing"

	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/page"
	"github.com/starford/postview/internal/reader"
)

// countingReader records Open calls and forwards them.
type countingReader struct {
	inner *reader.Controller
	opens []string
}

func (r *countingReader) Open(id string) {
	r.opens = append(r.opens, id)
	r.inner.Open(id)
}

func (r *countingReader) Resync() { r.inner.Resync() }

type harness struct {
	page     *page.Page
	ctrl     *reader.Controller
	reader   *countingReader
	ingestor *Ingestor
}

func newHarness(t *testing.T, url string) *harness {
	t.Helper()
	p := page.New(url)
	cat := NewCatalog()
	ctrl := reader.New(cat, p.Dialog, p.Dialog, p.Location)
	p.Location.OnFragmentChange(ctrl.SyncFromFragment)
	cr := &countingReader{inner: ctrl}
	return &harness{
		page:     p,
		ctrl:     ctrl,
		reader:   cr,
		ingestor: NewIngestor(p.Cards, cat, cr),
	}
}

func payload(posts ...models.Post) *models.Payload {
	return &models.Payload{Posts: posts}
}

func TestIngest_EmptyState(t *testing.T) {
	for name, pl := range map[string]*models.Payload{
		"nil":   nil,
		"empty": payload(),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, "/")
			sum, err := h.ingestor.Ingest(pl)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if !sum.Empty {
				t.Error("expected empty summary")
			}
			if got := string(h.page.Cards.HTML()); got != `<p class="muted">記事はまだありません。</p>` {
				t.Errorf("html = %q", got)
			}
			if h.page.Cards.Subscribers() != 0 {
				t.Error("empty ingest should not subscribe")
			}
		})
	}
}

func TestIngest_EmptyAfterPostsDropsStaleRecords(t *testing.T) {
	h := newHarness(t, "/")
	if _, err := h.ingestor.Ingest(payload(models.Post{Slug: "a", Title: "A"})); err != nil {
		t.Fatal(err)
	}
	h.ctrl.Open("a")
	if _, err := h.ingestor.Ingest(payload()); err != nil {
		t.Fatal(err)
	}
	if h.page.Dialog.IsOpen() {
		t.Error("reader should close when its post disappears")
	}
	if _, ok := h.ingestor.Catalog().Lookup("a"); ok {
		t.Error("stale record still reachable")
	}
	if h.page.Location.Fragment() != "" {
		t.Errorf("fragment = %q", h.page.Location.Fragment())
	}
}

func TestIngest_DuplicateLastWins(t *testing.T) {
	h := newHarness(t, "/")
	sum, err := h.ingestor.Ingest(payload(
		models.Post{Slug: "dup", Title: "first", Content: "1"},
		models.Post{Title: "no slug"},
		models.Post{Slug: "dup", Title: "second", Content: "2"},
	))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Posts != 3 || sum.Indexed != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if h.page.Cards.ReadMoreCount() != 2 {
		t.Errorf("read-more links = %d, want 2", h.page.Cards.ReadMoreCount())
	}
	if _, err := h.page.Cards.Activate(0); err != nil {
		t.Fatal(err)
	}
	if got := h.page.Dialog.View().Title; got != "second" {
		t.Errorf("title = %q, want second", got)
	}
}

func TestIngest_SubscribesOnce(t *testing.T) {
	h := newHarness(t, "/")
	pl := payload(models.Post{Slug: "a", Title: "A"}, models.Post{Slug: "b", Title: "B"})
	for i := 0; i < 3; i++ {
		if _, err := h.ingestor.Ingest(pl); err != nil {
			t.Fatal(err)
		}
	}
	if h.page.Cards.Subscribers() != 1 {
		t.Errorf("subscribers = %d", h.page.Cards.Subscribers())
	}
	id, err := h.page.Cards.Activate(1)
	if err != nil {
		t.Fatal(err)
	}
	if id != "b" {
		t.Errorf("id = %q", id)
	}
	if len(h.reader.opens) != 1 {
		t.Errorf("opens = %v, want exactly one", h.reader.opens)
	}
	if h.page.Location.Fragment() != "#post/b" {
		t.Errorf("fragment = %q", h.page.Location.Fragment())
	}
}

func TestIngest_DirectLink(t *testing.T) {
	posts := payload(models.Post{Slug: "xyz", Title: "XYZ", Content: "hello"})

	h := newHarness(t, "/blog#post/xyz")
	if _, err := h.ingestor.Ingest(posts); err != nil {
		t.Fatal(err)
	}
	if !h.page.Dialog.IsOpen() || h.page.Dialog.View().Title != "XYZ" {
		t.Errorf("direct link should open xyz, dialog = %+v", h.page.Dialog.View())
	}

	h = newHarness(t, "/blog#post/nope")
	if _, err := h.ingestor.Ingest(posts); err != nil {
		t.Fatal(err)
	}
	if h.page.Dialog.IsOpen() {
		t.Error("unknown id should leave reader closed")
	}
}

func TestIngest_EscapesMarkup(t *testing.T) {
	h := newHarness(t, "/")
	_, err := h.ingestor.Ingest(payload(models.Post{
		Slug:    "x",
		Title:   "<script>alert(1)</script>",
		Excerpt: "<script>alert(2)</script>",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(h.page.Cards.HTML()), "<script") {
		t.Errorf("script tag leaked: %s", h.page.Cards.HTML())
	}
}

func TestIngest_EncodedSlugRoundTrip(t *testing.T) {
	h := newHarness(t, "/")
	if _, err := h.ingestor.Ingest(payload(models.Post{Slug: "hello world/ü", Title: "T"})); err != nil {
		t.Fatal(err)
	}
	id, err := h.page.Cards.Activate(0)
	if err != nil {
		t.Fatal(err)
	}
	if id != "hello world/ü" {
		t.Errorf("decoded id = %q", id)
	}
	if !h.page.Dialog.IsOpen() {
		t.Error("dialog should be open")
	}
}

func TestIngest_NilContainer(t *testing.T) {
	i := NewIngestor(nil, nil, nil)
	if _, err := i.Ingest(payload(models.Post{Slug: "a"})); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
}
