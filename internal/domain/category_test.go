package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	cases := map[string]Category{
		"global":           CategoryGlobal,
		"region_specific":  CategoryRegionSpecific,
		" REGION_SPECIFIC": CategoryRegionSpecific,
		"":                 CategoryGlobal,
		"Thailand":         CategoryGlobal,
		"local news":       CategoryGlobal,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseCategory(raw), "raw=%q", raw)
	}
}

func TestItemEnriched(t *testing.T) {
	t.Parallel()

	assert.False(t, Item{}.Enriched())
	assert.False(t, Item{Summary: "s"}.Enriched())
	assert.True(t, Item{Summary: "s", Category: CategoryGlobal}.Enriched())
}
