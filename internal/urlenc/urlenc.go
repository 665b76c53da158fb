// Package urlenc encodes post identifiers the way browsers do for URL
// components and owns the "#post/<id>" fragment syntax.
package urlenc

import (
	"net/url"
	"strings"
)

// FragmentPrefix marks a fragment that names an open post.
const FragmentPrefix = "#post/"

// QueryEscape leaves ! ' ( ) * escaped and encodes spaces as '+'; undo both
// to match encodeURIComponent.
var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Component percent-encodes s like encodeURIComponent.
func Component(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}

// DecodeComponent reverses Component. Malformed escapes return an error.
func DecodeComponent(s string) (string, error) {
	return url.PathUnescape(s)
}

// PostFragment returns the fragment that opens id, including the leading '#'.
func PostFragment(id string) string {
	return FragmentPrefix + Component(id)
}

// ParsePostFragment extracts the decoded identifier from a "#post/<id>"
// fragment. ok is false for any other fragment, including an empty id or an
// id with malformed escapes.
func ParsePostFragment(fragment string) (id string, ok bool) {
	enc, found := strings.CutPrefix(fragment, FragmentPrefix)
	if !found || enc == "" {
		return "", false
	}
	id, err := DecodeComponent(enc)
	if err != nil {
		return "", false
	}
	return id, true
}

// IsPostFragment reports whether fragment uses the post syntax, regardless of
// whether its identifier decodes.
func IsPostFragment(fragment string) bool {
	return strings.HasPrefix(fragment, FragmentPrefix) && len(fragment) > len(FragmentPrefix)
}
