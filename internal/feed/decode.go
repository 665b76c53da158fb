package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/starford/postview/internal/models"
)

// Formats accepted by Decode.
const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatJSONP = "jsonp"
	FormatRSS   = "rss"
)

// ErrMalformed is returned for payloads that cannot be decoded.
var ErrMalformed = errors.New("feed: malformed payload")

var jsonpRe = regexp.MustCompile(`(?s)^\s*(?:/\*\*/)?\s*([A-Za-z_$][\w$.]*)\s*\((.*)\)\s*;?\s*$`)

// Decode parses data in the given format. FormatAuto sniffs JSON, then
// JSONP, then RSS/Atom.
func Decode(data []byte, format string) (*models.Payload, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatJSONP:
		return decodeJSONP(data)
	case FormatRSS:
		return decodeRSS(data)
	case "", FormatAuto:
		trimmed := bytes.TrimSpace(data)
		switch {
		case len(trimmed) == 0:
			return nil, fmt.Errorf("%w: empty body", ErrMalformed)
		case trimmed[0] == '{':
			return decodeJSON(trimmed)
		case trimmed[0] == '<':
			return decodeRSS(trimmed)
		default:
			return decodeJSONP(trimmed)
		}
	default:
		return nil, fmt.Errorf("feed: unknown format %q", format)
	}
}

func decodeJSON(data []byte) (*models.Payload, error) {
	var p models.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

// decodeJSONP unwraps `callback({...});` and decodes the argument.
func decodeJSONP(data []byte) (*models.Payload, error) {
	m := jsonpRe.FindSubmatch(data)
	if m == nil {
		return nil, fmt.Errorf("%w: not a JSONP call", ErrMalformed)
	}
	return decodeJSON(m[2])
}

// EncodeJSONP wraps payload in a call to callback.
func EncodeJSONP(callback string, payload *models.Payload) ([]byte, error) {
	if !ValidCallback(callback) {
		return nil, fmt.Errorf("feed: invalid callback name %q", callback)
	}
	if payload == nil {
		payload = &models.Payload{}
	}
	if payload.Posts == nil {
		payload = &models.Payload{Posts: []models.Post{}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("feed: encode jsonp: %w", err)
	}
	var b strings.Builder
	b.WriteString("/**/")
	b.WriteString(callback)
	b.WriteByte('(')
	b.Write(body)
	b.WriteString(");\n")
	return []byte(b.String()), nil
}

var callbackRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*$`)

// ValidCallback reports whether name is safe to use as a JSONP callback.
func ValidCallback(name string) bool {
	return len(name) <= 64 && callbackRe.MatchString(name)
}

func decodeRSS(data []byte) (*models.Payload, error) {
	f, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return FromFeed(f), nil
}
