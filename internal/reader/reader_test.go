package reader

import (
	"strings"
	"testing"

	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/page"
)

type mapLookup map[string]models.Post

func (m mapLookup) Lookup(id string) (models.Post, bool) {
	p, ok := m[id]
	return p, ok
}

func testPage(t *testing.T, url string, posts mapLookup) (*page.Page, *Controller) {
	t.Helper()
	p := page.New(url)
	c := New(posts, p.Dialog, p.Dialog, p.Location)
	p.Location.OnFragmentChange(c.SyncFromFragment)
	return p, c
}

func samplePosts() mapLookup {
	return mapLookup{
		"abc": {Slug: "abc", Title: "<i>ABC</i>", Date: "2024-03-05", Content: "one\ntwo\n\nthree", ImageURL: "abc.png"},
		"xyz": {Slug: "xyz", Title: "XYZ", Date: "2024-04-01", Content: "x"},
	}
}

func TestOpen_SetsFragmentAndPopulates(t *testing.T) {
	p, c := testPage(t, "/blog", samplePosts())

	c.Open("abc")

	if p.Location.Fragment() != "#post/abc" {
		t.Errorf("fragment = %q", p.Location.Fragment())
	}
	if c.State() != (State{Open: true, ID: "abc"}) {
		t.Errorf("state = %+v", c.State())
	}
	v := p.Dialog.View()
	if !v.Open {
		t.Fatal("dialog should be open")
	}
	if v.Title != "<i>ABC</i>" {
		t.Errorf("title should be plain text, got %q", v.Title)
	}
	if v.Meta != "2024-03-05" {
		t.Errorf("meta = %q", v.Meta)
	}
	if string(v.Body) != "<p>one<br>two</p><p>three</p>" {
		t.Errorf("body = %q", v.Body)
	}
	if v.ImageHidden || v.Image != "abc.png" {
		t.Errorf("image = %q hidden=%v", v.Image, v.ImageHidden)
	}
}

func TestOpen_UnknownIsNoop(t *testing.T) {
	p, c := testPage(t, "/blog", samplePosts())
	c.Open("missing")
	if p.Dialog.IsOpen() || p.Location.Fragment() != "" || c.State() != Closed {
		t.Error("opening an unknown post must change nothing")
	}
}

func TestClose_ReplacesHistoryEntry(t *testing.T) {
	p, c := testPage(t, "/blog", samplePosts())

	c.Open("abc")
	c.Close()

	if p.Dialog.IsOpen() {
		t.Fatal("dialog should be closed")
	}
	if p.Location.Href() != "/blog" {
		t.Errorf("href = %q, want /blog", p.Location.Href())
	}
	for _, e := range p.Location.Entries() {
		if strings.HasPrefix(e.Fragment, "#post/") {
			t.Errorf("history still holds %q", e.URL())
		}
	}

	// One back step from the closed reader must not bring the post back.
	p.Location.Back()
	if p.Dialog.IsOpen() {
		t.Error("back re-opened the closed post")
	}
}

func TestFragmentChange_ClosesOnNonPost(t *testing.T) {
	p, c := testPage(t, "/", samplePosts())
	c.Open("abc")

	p.Location.SetFragment("#contact")
	if p.Dialog.IsOpen() || c.State() != Closed {
		t.Error("non-post fragment should close the reader")
	}

	p.Location.Back()
	if !p.Dialog.IsOpen() || c.State().ID != "abc" {
		t.Error("back to the post fragment should reopen it")
	}
}

func TestFragmentChange_UnknownIDLeavesState(t *testing.T) {
	p, c := testPage(t, "/", samplePosts())
	c.Open("abc")

	p.Location.SetFragment("#post/nope")
	if c.State() != (State{Open: true, ID: "abc"}) || !p.Dialog.IsOpen() {
		t.Errorf("state = %+v, want unchanged", c.State())
	}

	p.Location.SetFragment("#post/%zz")
	if c.State().ID != "abc" {
		t.Error("undecodable id should be a no-op")
	}
}

func TestSyncFromFragment_DirectLoad(t *testing.T) {
	p, c := testPage(t, "/blog#post/xyz", samplePosts())
	c.SyncFromFragment()
	if !p.Dialog.IsOpen() || p.Dialog.View().Title != "XYZ" {
		t.Error("direct link should open the post")
	}
	if !p.Dialog.View().ImageHidden {
		t.Error("post without image should hide it")
	}

	p2, c2 := testPage(t, "/blog#post/gone", samplePosts())
	c2.SyncFromFragment()
	if p2.Dialog.IsOpen() || c2.State() != Closed {
		t.Error("unknown direct link should leave the reader closed")
	}
}

func TestSyncFromFragment_Converges(t *testing.T) {
	p, c := testPage(t, "/", samplePosts())
	for _, f := range []string{"#post/abc", "#post/xyz", "#x", "#post/abc", "#post/xyz"} {
		p.Location.SetFragment(f)
	}
	for i := 0; i < 3; i++ {
		c.SyncFromFragment()
	}
	if c.State() != (State{Open: true, ID: "xyz"}) || p.Dialog.View().Title != "XYZ" {
		t.Errorf("state = %+v", c.State())
	}
}

func TestResync_DropsStalePost(t *testing.T) {
	posts := samplePosts()
	p, c := testPage(t, "/", posts)
	c.Open("abc")

	delete(posts, "abc")
	c.Resync()
	if p.Dialog.IsOpen() || p.Location.Fragment() != "" {
		t.Error("reader must not show a post missing from the lookup")
	}
}

func TestResync_RepopulatesSurvivor(t *testing.T) {
	posts := samplePosts()
	p, c := testPage(t, "/", posts)
	c.Open("xyz")

	posts["xyz"] = models.Post{Slug: "xyz", Title: "XYZ v2"}
	c.Resync()
	if p.Dialog.View().Title != "XYZ v2" {
		t.Errorf("title = %q", p.Dialog.View().Title)
	}
}

func TestNilCollaborators(t *testing.T) {
	c := New(nil, nil, nil, nil)
	c.Open("abc")
	c.Close()
	c.SyncFromFragment()
	c.Resync()
	if c.State() != Closed {
		t.Errorf("state = %+v", c.State())
	}
}

func TestStateHook(t *testing.T) {
	p := page.New("/")
	var states []State
	c := New(samplePosts(), p.Dialog, p.Dialog, p.Location, WithStateHook(func(s State) { states = append(states, s) }))
	p.Location.OnFragmentChange(c.SyncFromFragment)

	c.Open("abc")
	c.Close()
	if len(states) != 2 || !states[0].Open || states[1].Open {
		t.Errorf("states = %+v", states)
	}
}
