package domain

import "fmt"

// Category partitions the token table. The set is closed.
type Category string

const (
	CategoryNewPairs     Category = "new-pairs"
	CategoryFinalStretch Category = "final-stretch"
	CategoryMigrated     Category = "migrated"
)

// AllCategories returns the categories in tab order
func AllCategories() []Category {
	return []Category{CategoryNewPairs, CategoryFinalStretch, CategoryMigrated}
}

// Valid reports whether c belongs to the closed set
func (c Category) Valid() bool {
	switch c {
	case CategoryNewPairs, CategoryFinalStretch, CategoryMigrated:
		return true
	}
	return false
}

// Label returns the human readable tab title
func (c Category) Label() string {
	switch c {
	case CategoryNewPairs:
		return "New Pairs"
	case CategoryFinalStretch:
		return "Final Stretch"
	case CategoryMigrated:
		return "Migrated"
	default:
		return string(c)
	}
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
