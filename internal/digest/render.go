package digest

import (
	"fmt"
	"html"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/sanitize"
)

const (
	globalMarker = "🌏"
	headerMarker = "📰"

	// raw rune caps applied before escaping
	maxTitle   = 250
	maxSource  = 100
	maxSummary = 600
	maxLink    = 500
)

// Options control headers and markers.
type Options struct {
	Title      string
	RegionName string
	RegionFlag string
	Location   *time.Location
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "News Digest"
	}
	if o.RegionName == "" {
		o.RegionName = "Thailand"
	}
	if o.RegionFlag == "" {
		o.RegionFlag = "🇹🇭"
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

func (o Options) marker(c domain.Category) string {
	if c.Coerce() == domain.CategoryRegionSpecific {
		return o.RegionFlag
	}
	return globalMarker
}

// Render groups items region first and renders the digest text. Every line
// opens and closes its own tags.
func Render(items []domain.Item, opts Options, now time.Time) (Digest, error) {
	if len(items) == 0 {
		return Digest{}, ErrNothingToDeliver
	}
	opts = opts.withDefaults()

	var region, global []domain.Item
	for _, item := range items {
		if item.Category.Coerce() == domain.CategoryRegionSpecific {
			region = append(region, item)
		} else {
			global = append(global, item)
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%s <b>%s - %s</b>", headerMarker,
		html.EscapeString(opts.Title), now.In(opts.Location).Format("January 2, 2006")))

	d := Digest{RegionCount: len(region), GlobalCount: len(global)}
	sections := []struct {
		header string
		items  []domain.Item
	}{
		{fmt.Sprintf("%s <b>%s-SPECIFIC NEWS</b>", opts.RegionFlag, html.EscapeString(strings.ToUpper(opts.RegionName))), region},
		{fmt.Sprintf("%s <b>GLOBAL NEWS</b>", globalMarker), global},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		lines = append(lines, "", section.header)
		for _, item := range section.items {
			lines = append(lines, "")
			lines = append(lines, itemLines(item, opts)...)
			d.OriginIDs = append(d.OriginIDs, item.OriginID)
		}
	}

	d.Text = strings.Join(lines, "\n")
	return d, nil
}

// RenderRecent lists items without grouping, newest first as given.
func RenderRecent(items []domain.Item, opts Options) string {
	if len(items) == 0 {
		return ""
	}
	opts = opts.withDefaults()

	lines := []string{fmt.Sprintf("%s <b>Latest %d Articles</b>", headerMarker, len(items))}
	for _, item := range items {
		lines = append(lines, "")
		lines = append(lines, itemLines(item, opts)...)
	}
	return strings.Join(lines, "\n")
}

func itemLines(item domain.Item, opts Options) []string {
	source := html.EscapeString(sanitize.TruncateEllipsis(item.SourceName, maxSource))
	if item.PublishedAt != nil {
		source += " · " + item.PublishedAt.In(opts.Location).Format("Jan 2, 2006")
	}

	summary := item.Summary
	if summary == "" {
		summary = "No summary available"
	}

	link := sanitize.Truncate(item.OriginID, maxLink)
	return []string{
		fmt.Sprintf("%s <b>%s</b>", opts.marker(item.Category), html.EscapeString(sanitize.TruncateEllipsis(item.Title, maxTitle))),
		fmt.Sprintf("<i>%s</i>", source),
		html.EscapeString(sanitize.TruncateEllipsis(summary, maxSummary)),
		fmt.Sprintf(`<a href="%s">Read more</a>`, html.EscapeString(link)),
	}
}
