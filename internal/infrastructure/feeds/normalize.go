package feeds

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/sanitize"
)

const (
	noTitle              = "No Title"
	maxTitleLength       = 500
	maxDescriptionLength = 5000
	userAgent            = "NewsDigest/1.0"
)

var errInvalidLink = errors.New("entry link is not an http(s) url")

var trackingParams = map[string]struct{}{
	"fbclid": {}, "gclid": {}, "msclkid": {}, "mc_cid": {}, "mc_eid": {},
	"_ga": {}, "_gac": {}, "_gl": {}, "ref": {}, "referrer": {}, "source": {},
}

type rawEntry struct {
	Title       string
	Link        string
	Description string
	Published   string
	PublishedAt *time.Time
}

func normalizeEntry(sourceName string, raw rawEntry) (domain.Entry, error) {
	link := strings.TrimSpace(raw.Link)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return domain.Entry{}, errInvalidLink
	}

	title := sanitize.Clean(sanitize.StripTags(raw.Title), maxTitleLength)
	if title == "" {
		title = noTitle
	}

	published := raw.PublishedAt
	if published == nil {
		published = sanitize.ParseTime(raw.Published)
	} else {
		t := published.UTC()
		published = &t
	}

	return domain.Entry{
		OriginID:    CleanURL(link),
		Title:       title,
		SourceName:  sourceName,
		Description: sanitize.Clean(sanitize.HTMLToText(raw.Description), maxDescriptionLength),
		PublishedAt: published,
	}, nil
}

// CleanURL removes tracking query parameters so the same article shared with
// different campaign tags keeps one origin id.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	query := u.Query()
	removed := false
	for key := range query {
		lower := strings.ToLower(key)
		if _, ok := trackingParams[lower]; ok || strings.HasPrefix(lower, "utm_") {
			query.Del(key)
			removed = true
		}
	}
	if !removed {
		return raw
	}
	u.RawQuery = query.Encode()
	return u.String()
}
