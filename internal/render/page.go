package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// Reader is the view model for the modal reader.
type Reader struct {
	Open  bool
	Title string // plain text, escaped by the template
	Meta  string
	Body  template.HTML
	Image string
}

// Page is the view model for the full viewer page.
type Page struct {
	SiteTitle string
	Year      int
	Cards     template.HTML
	Reader    Reader
	FeedURL   string

	NavExpanded bool
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Reader.Open}}{{.Reader.Title}} | {{end}}{{.SiteTitle}}</title>
</head>
<body>
<header class="site-header">
  <button class="nav-toggle" aria-controls="nav" aria-expanded="{{.NavExpanded}}">Menu</button>
  <nav id="nav"><a href="#blog">Blog</a></nav>
</header>
<main>
  <section id="blog">
    <div id="blog-cards" class="cards">{{.Cards}}</div>
  </section>
</main>
<dialog id="postDialog"{{if .Reader.Open}} open{{end}}>
  <button id="postClose" type="button" aria-label="close">×</button>
  <img id="postImage" alt=""{{if .Reader.Image}} src="{{.Reader.Image}}"{{else}} hidden{{end}}>
  <h2 id="postTitle">{{.Reader.Title}}</h2>
  <p id="postMeta" class="muted">{{.Reader.Meta}}</p>
  <div id="postBody">{{.Reader.Body}}</div>
</dialog>
<footer>&copy; <span id="year">{{.Year}}</span> {{.SiteTitle}}</footer>
{{- with .FeedURL}}
<script src="{{.}}" defer></script>
{{- end}}
</body>
</html>
`))

// RenderPage renders the full viewer page.
func RenderPage(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render: page: %w", err)
	}
	return buf.Bytes(), nil
}
