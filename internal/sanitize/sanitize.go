// Package sanitize turns untrusted feed and model text into plain, bounded strings.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strict  = bluemonday.StrictPolicy()
	tagExpr = regexp.MustCompile(`<[^>]+>`)
)

// StripTags removes every HTML tag and returns unescaped plain text.
func StripTags(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

// HTMLToText extracts visible text from an HTML fragment, dropping scripts
// and styles and collapsing whitespace.
func HTMLToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(tagExpr.ReplaceAllString(s, " "))
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

// Clean drops NUL bytes, trims and truncates to max runes.
func Clean(s string, max int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
	return Truncate(s, max)
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

// Head returns the first max runes of s unchanged. Unlike Truncate it keeps
// whitespace at the cut.
func Head(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// TruncateEllipsis cuts s to at most max runes, ending with "..." when cut.
func TruncateEllipsis(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}

// ParseTime parses a loosely formatted timestamp; nil when unparseable.
func ParseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
