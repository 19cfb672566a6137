package enrich

import "NewsDigest/internal/domain"

// Outcome tells whether the summary came from the model or from the fallback.
type Outcome int

const (
	Enriched Outcome = iota
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Enriched:
		return "enriched"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the enrichment of one item. Summary is never empty and Category
// is always a valid value.
type Result struct {
	Summary  string
	Category domain.Category
	Outcome  Outcome
	Attempts int
	// Err is the last error seen when Outcome is Fallback after a failed call.
	Err error
}
