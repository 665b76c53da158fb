package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/postview/internal/models"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestEscapeHTML_AllFive(t *testing.T) {
	got := EscapeHTML(`<a href="x">Tom & Jerry's</a>`)
	want := "&lt;a href=&quot;x&quot;&gt;Tom &amp; Jerry&#39;s&lt;/a&gt;"
	if got != want {
		t.Errorf("EscapeHTML = %q, want %q", got, want)
	}
}

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1}, {1, 1}, {400, 1}, {401, 2}, {800, 2}, {801, 3},
	}
	for _, tt := range tests {
		if got := ReadingMinutes(strings.Repeat("a", tt.n)); got != tt.want {
			t.Errorf("ReadingMinutes(len %d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestReadingMinutes_CountsUTF16Units(t *testing.T) {
	// 400 runes outside the BMP are 800 UTF-16 units.
	if got := ReadingMinutes(strings.Repeat("😀", 400)); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
	// Japanese text is one unit per character.
	if got := ReadingMinutes(strings.Repeat("あ", 400)); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestParagraphs(t *testing.T) {
	got := string(Paragraphs("first line\nsecond line\n\n\nnext <b>block</b>"))
	want := "<p>first line<br>second line</p><p>next &lt;b&gt;block&lt;/b&gt;</p>"
	if got != want {
		t.Errorf("Paragraphs = %q, want %q", got, want)
	}
	if got := string(Paragraphs("")); got != "<p></p>" {
		t.Errorf("empty Paragraphs = %q", got)
	}
}

func TestCards_Empty(t *testing.T) {
	html, err := Cards(nil, DefaultLabels())
	if err != nil {
		t.Fatal(err)
	}
	if string(html) != `<p class="muted">記事はまだありません。</p>` {
		t.Errorf("empty state = %q", html)
	}
}

func TestCards_Markup(t *testing.T) {
	posts := []models.Post{
		{Slug: "hello world", Title: "Hello", Date: "2024-03-05", Excerpt: "line1\nline2", Content: strings.Repeat("x", 401), ImageURL: "https://example.com/a.png"},
		{Title: "No slug", Date: "2024-01-01"},
	}
	html, err := Cards(posts, DefaultLabels())
	if err != nil {
		t.Fatal(err)
	}
	doc := parseDoc(t, string(html))

	cards := doc.Find("article.card")
	if cards.Length() != 2 {
		t.Fatalf("cards = %d, want 2", cards.Length())
	}
	first := cards.Eq(0)
	if got := first.Find(".card-title").Text(); got != "Hello" {
		t.Errorf("title = %q", got)
	}
	if got := first.Find("p.muted").Text(); got != "2024-03-05 · 2 min" {
		t.Errorf("meta = %q", got)
	}
	if first.Find("p").Eq(1).Find("br").Length() != 1 {
		t.Error("excerpt newline should become <br>")
	}
	link := first.Find("a.readmore")
	if href, _ := link.Attr("href"); href != "#post/hello%20world" {
		t.Errorf("href = %q", href)
	}
	if slug, _ := link.Attr("data-slug"); slug != "hello%20world" {
		t.Errorf("data-slug = %q", slug)
	}
	style, _ := first.Find(".card-thumb").Attr("style")
	if !strings.Contains(style, "linear-gradient(25deg") || !strings.Contains(style, "https://example.com/a.png") {
		t.Errorf("thumb style = %q", style)
	}
	if d, _ := cards.Eq(1).Attr("style"); d != "--d:80ms" {
		t.Errorf("second delay = %q", d)
	}

	second := cards.Eq(1)
	if second.Find("a.readmore").Length() != 0 {
		t.Error("post without slug must not have a read-more link")
	}
	style, _ = second.Find(".card-thumb").Attr("style")
	if strings.Contains(style, "url(") {
		t.Errorf("post without image should have gradient only, got %q", style)
	}
}

func TestCards_NoScriptInjection(t *testing.T) {
	evil := `<script>alert("x")</script>`
	posts := []models.Post{{
		Slug:     `"><script>alert(1)</script>`,
		Title:    evil,
		Excerpt:  evil,
		Date:     evil,
		ImageURL: `x'); background:url(javascript:alert(1)`,
	}}
	html, err := Cards(posts, DefaultLabels())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(html), "<script") {
		t.Fatalf("markup contains a script tag: %s", html)
	}
	doc := parseDoc(t, string(html))
	if doc.Find("script").Length() != 0 {
		t.Error("parsed markup contains a script element")
	}
	if got := doc.Find(".card-title").Text(); got != evil {
		t.Errorf("title text = %q, want literal %q", got, evil)
	}
}

func TestRenderPage(t *testing.T) {
	out, err := RenderPage(Page{
		SiteTitle: "Blog",
		Year:      2026,
		Cards:     EmptyState("none"),
		Reader: Reader{
			Open:  true,
			Title: "<b>T</b>",
			Meta:  "2024-03-05",
			Body:  Paragraphs("a\n\nb"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc := parseDoc(t, string(out))
	if _, open := doc.Find("#postDialog").Attr("open"); !open {
		t.Error("dialog should be open")
	}
	if got := doc.Find("#postTitle").Text(); got != "<b>T</b>" {
		t.Errorf("title = %q", got)
	}
	if doc.Find("#postBody p").Length() != 2 {
		t.Error("body should have two paragraphs")
	}
	if _, hidden := doc.Find("#postImage").Attr("hidden"); !hidden {
		t.Error("image should be hidden without src")
	}
	if got := doc.Find("#year").Text(); got != "2026" {
		t.Errorf("year = %q", got)
	}
}

func TestRenderPage_NavExpanded(t *testing.T) {
	for _, expanded := range []bool{false, true} {
		out, err := RenderPage(Page{SiteTitle: "Blog", NavExpanded: expanded})
		if err != nil {
			t.Fatal(err)
		}
		got, _ := parseDoc(t, string(out)).Find(".nav-toggle").Attr("aria-expanded")
		want := "false"
		if expanded {
			want = "true"
		}
		if got != want {
			t.Errorf("aria-expanded = %q, want %q", got, want)
		}
	}
}
