// Package dates normalizes feed date values for display.
package dates

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// maxEpochMillis bounds the epoch values a browser Date accepts.
const maxEpochMillis = 8.64e15

// Display formats a feed date value as YYYY-MM-DD in the local time zone.
func Display(v any) string {
	return DisplayIn(v, time.Local)
}

// DisplayIn formats v as the calendar date it falls on in loc.
//
// Strings already shaped like YYYY-MM-DD are returned untouched so that a plain
// date is never shifted by a zone conversion. Numbers are epoch milliseconds.
// Anything that cannot be parsed is returned stringified.
func DisplayIn(v any, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if s, ok := v.(string); ok && isoDate.MatchString(s) {
		return s
	}
	t, ok := parse(v, loc)
	if !ok {
		return fallback(v)
	}
	t = t.In(loc)
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

func parse(v any, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	switch x := v.(type) {
	case string:
		if x == "" {
			return time.Time{}, false
		}
		parsed, err := dateparse.ParseIn(x, loc)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case float64:
		if math.IsNaN(x) || math.Abs(x) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(x)), true
	case int:
		return parse(float64(x), loc)
	case int64:
		return parse(float64(x), loc)
	case time.Time:
		return x, !x.IsZero()
	default:
		return time.Time{}, false
	}
}

func fallback(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if !x {
			return ""
		}
		return "true"
	case float64:
		if x == 0 {
			return ""
		}
		return formatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}

// formatNumber renders x the way a browser stringifies a number: plain
// digits in [1e-6, 1e21), exponent form like 1e+300 outside it.
func formatNumber(x float64) string {
	if math.IsInf(x, 0) {
		if x > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if a := math.Abs(x); a != 0 && (a >= 1e21 || a < 1e-6) {
		s := strconv.FormatFloat(x, 'e', -1, 64)
		i := strings.LastIndexAny(s, "+-")
		exp := strings.TrimLeft(s[i+1:], "0")
		return s[:i+1] + exp
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
