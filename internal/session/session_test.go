package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/starford/postview/internal/apperr"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/reader"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishReaderState(session string, state any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := state.(reader.State)
	p.events = append(p.events, session+":"+st.ID)
}

func testPayload() *models.Payload {
	return &models.Payload{Posts: []models.Post{
		{Slug: "abc", Title: "ABC", Date: "2024-03-05", Content: "hello"},
		{Slug: "xyz", Title: "XYZ", Content: "world"},
	}}
}

func fixed(p *models.Payload) func() *models.Payload {
	return func() *models.Payload { return p }
}

func TestCreate_ReadsPayloadAfterRegistering(t *testing.T) {
	m := NewManager()
	fresh := &models.Payload{Posts: []models.Post{{Slug: "fresh", Title: "Fresh"}}}

	done := make(chan int, 1)
	v, err := m.Create("/", func() *models.Payload {
		if m.Len() != 1 {
			t.Error("session should be registered before the payload is read")
		}
		// A feed swap lands while the stale payload is being handed out.
		go func() { done <- m.IngestAll(fresh) }()
		return testPayload()
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := <-done; n != 1 {
		t.Fatalf("IngestAll reached %d sessions, want 1", n)
	}

	v, err = m.Open(v.ID, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Reader.Open || v.Reader.ID != "fresh" {
		t.Errorf("session should hold the newer feed, reader = %+v", v.Reader)
	}
}

func TestCreate_DirectLinkOpens(t *testing.T) {
	m := NewManager()
	v, err := m.Create("/blog#post/xyz", fixed(testPayload()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" {
		t.Error("expected session id")
	}
	if v.Reader != (reader.State{Open: true, ID: "xyz"}) {
		t.Errorf("reader = %+v", v.Reader)
	}
	if v.Page.Dialog.Title != "XYZ" {
		t.Errorf("dialog title = %q", v.Page.Dialog.Title)
	}
}

func TestOpenCloseRoundTrip(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewManager(WithPublisher(pub))
	v, _ := m.Create("/blog", fixed(testPayload()))

	v, err := m.Open(v.ID, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if v.Page.URL != "/blog#post/abc" {
		t.Errorf("url = %q", v.Page.URL)
	}

	v, _ = m.Close(v.ID)
	if v.Reader.Open || v.Page.URL != "/blog" {
		t.Errorf("after close: reader=%+v url=%q", v.Reader, v.Page.URL)
	}
	for _, e := range v.Page.History {
		if e.Fragment == "#post/abc" {
			t.Errorf("closed post left in history: %+v", v.Page.History)
		}
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 2 || pub.events[0] != v.ID+":abc" || pub.events[1] != v.ID+":" {
		t.Errorf("published = %v", pub.events)
	}
}

func TestActivateNavigateBackForward(t *testing.T) {
	m := NewManager()
	v, _ := m.Create("/", fixed(testPayload()))
	id := v.ID

	v, err := m.Activate(id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v.Reader.ID != "xyz" {
		t.Errorf("reader = %+v", v.Reader)
	}

	v, _ = m.Navigate(id, "#about")
	if v.Reader.Open {
		t.Error("non-post fragment should close the reader")
	}

	v, _ = m.Back(id)
	if v.Reader != (reader.State{Open: true, ID: "xyz"}) {
		t.Errorf("back should reopen xyz, got %+v", v.Reader)
	}
	v, _ = m.Forward(id)
	if v.Reader.Open {
		t.Error("forward to #about should close")
	}

	if _, err := m.Activate(id, 9); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestToggleNav(t *testing.T) {
	m := NewManager()
	v, _ := m.Create("/", nil)
	v, _ = m.ToggleNav(v.ID)
	if !v.Page.NavExpanded {
		t.Error("nav should be expanded")
	}
}

func TestIngestAll_ClosesDroppedPost(t *testing.T) {
	m := NewManager()
	a, _ := m.Create("/#post/abc", fixed(testPayload()))
	b, _ := m.Create("/#post/xyz", fixed(testPayload()))

	n := m.IngestAll(&models.Payload{Posts: []models.Post{{Slug: "xyz", Title: "XYZ v2"}}})
	if n != 2 {
		t.Errorf("ingested into %d sessions", n)
	}

	va, _ := m.Get(a.ID)
	if va.Reader.Open || va.Page.URL != "/" {
		t.Errorf("session a: reader=%+v url=%q", va.Reader, va.Page.URL)
	}
	vb, _ := m.Get(b.ID)
	if vb.Page.Dialog.Title != "XYZ v2" {
		t.Errorf("session b should show refreshed record, got %q", vb.Page.Dialog.Title)
	}
}

func TestLimitAndNotFound(t *testing.T) {
	m := NewManager(WithMax(1))
	v, err := m.Create("/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("/", nil); !errors.Is(err, apperr.ErrLimit) {
		t.Errorf("err = %v, want ErrLimit", err)
	}
	if err := m.Delete(v.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(v.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if m.Len() != 0 {
		t.Errorf("len = %d", m.Len())
	}
}

func TestRender_DoesNotRegister(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewManager(WithPublisher(pub))
	v, err := m.Render("/post#post/abc", testPayload())
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Error("Render should not keep the session")
	}
	if len(pub.events) != 0 {
		t.Errorf("Render published %v", pub.events)
	}

	doc := Document(v, "Blog", "")
	if !doc.Reader.Open || doc.Reader.Title != "ABC" || doc.Reader.Meta != "2024-03-05" {
		t.Errorf("reader = %+v", doc.Reader)
	}
	if doc.Reader.Image != "" {
		t.Errorf("image should be empty, got %q", doc.Reader.Image)
	}
}
