package enrich

import (
	"fmt"
	"strings"

	"NewsDigest/internal/domain"
)

const (
	summaryPrefix  = "SUMMARY:"
	categoryPrefix = "CATEGORY:"
	globalLabel    = "Global"
)

// Labels maps categories to the words the model is asked to answer with.
type Labels struct {
	Region string
	Topic  string
}

func (l Labels) region() string {
	if strings.TrimSpace(l.Region) == "" {
		return "Thailand"
	}
	return strings.TrimSpace(l.Region)
}

func (l Labels) topic() string {
	if strings.TrimSpace(l.Topic) == "" {
		return "payment industry"
	}
	return strings.TrimSpace(l.Topic)
}

// RegionLabel is the answer expected for region specific items.
func (l Labels) RegionLabel() string {
	return l.region() + "-specific"
}

// Label returns the model-facing label of c.
func (l Labels) Label(c domain.Category) string {
	if c.Coerce() == domain.CategoryRegionSpecific {
		return l.RegionLabel()
	}
	return globalLabel
}

// BuildPrompt renders the fixed enrichment prompt for one item.
func BuildPrompt(labels Labels, title, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s news article:\n\n", labels.topic())
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	b.WriteString("Please provide:\n")
	b.WriteString("1. A concise 2-3 sentence summary\n")
	fmt.Fprintf(&b, "2. Categorize as either %q or %q\n\n", globalLabel, labels.RegionLabel())
	b.WriteString("Format your response as:\n")
	fmt.Fprintf(&b, "%s [your summary here]\n", summaryPrefix)
	fmt.Fprintf(&b, "%s [%s or %s]", categoryPrefix, globalLabel, labels.RegionLabel())
	return b.String()
}
