package enrich

import (
	"strings"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/sanitize"
)

// Parsed is the structured content of a model response.
type Parsed struct {
	Summary  string
	Category domain.Category
	// CategoryKnown is false when the category line was missing or unrecognized.
	CategoryKnown bool
}

// ParseResponse locates the SUMMARY and CATEGORY lines of a response. The
// first occurrence of each prefix wins. A category that is not exactly one of
// the two labels coerces to the default category.
func ParseResponse(labels Labels, response string, maxSummary int) Parsed {
	parsed := Parsed{Category: domain.DefaultCategory}
	var haveSummary, haveCategory bool

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case !haveSummary && strings.HasPrefix(line, summaryPrefix):
			haveSummary = true
			text := strings.TrimSpace(line[len(summaryPrefix):])
			parsed.Summary = sanitize.Clean(sanitize.StripTags(text), maxSummary)
		case !haveCategory && strings.HasPrefix(line, categoryPrefix):
			haveCategory = true
			parsed.Category, parsed.CategoryKnown = labels.parseCategory(line[len(categoryPrefix):])
		}
	}
	return parsed
}

func (l Labels) parseCategory(raw string) (domain.Category, bool) {
	switch strings.TrimSpace(raw) {
	case globalLabel:
		return domain.CategoryGlobal, true
	case l.RegionLabel():
		return domain.CategoryRegionSpecific, true
	default:
		return domain.DefaultCategory, false
	}
}
