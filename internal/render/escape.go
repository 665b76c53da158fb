// Package render produces the markup for post cards, the reader body and the
// viewer page.
package render

import (
	"html/template"
	"regexp"
	"strings"
	"unicode/utf16"
)

// CharsPerMinute is the reading speed used for the card estimate.
const CharsPerMinute = 400

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	paragraphBreak = regexp.MustCompile(`\n{2,}`)
)

// EscapeHTML replaces & < > " ' with their entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// LineBreaks escapes s and turns every newline into <br>.
func LineBreaks(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(EscapeHTML(s), "\n", "<br>"))
}

// Paragraphs escapes text and splits it into <p> blocks on runs of two or
// more newlines; single newlines inside a block become <br>.
func Paragraphs(text string) template.HTML {
	blocks := paragraphBreak.Split(EscapeHTML(text), -1)
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(block, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// ReadingMinutes estimates reading time as ceil(length/400), at least 1.
// Length is measured in UTF-16 code units.
func ReadingMinutes(content string) int {
	n := 0
	for _, r := range content {
		n += utf16.RuneLen(r)
	}
	minutes := (n + CharsPerMinute - 1) / CharsPerMinute
	return max(1, minutes)
}
