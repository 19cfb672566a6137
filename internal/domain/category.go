package domain

import "strings"

// Category is the binary classification assigned during enrichment.
type Category string

const (
	CategoryGlobal         Category = "global"
	CategoryRegionSpecific Category = "region_specific"
)

// DefaultCategory is used whenever classification is missing or ambiguous.
const DefaultCategory = CategoryGlobal

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == CategoryGlobal || c == CategoryRegionSpecific
}

// Coerce returns c if valid and DefaultCategory otherwise.
func (c Category) Coerce() Category {
	if c.Valid() {
		return c
	}
	return DefaultCategory
}

// ParseCategory maps a stored value onto a Category, coercing unknown text.
func ParseCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw))).Coerce()
}
