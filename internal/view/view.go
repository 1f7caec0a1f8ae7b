// Package view derives the ordered, filtered rows a consumer displays from
// a category collection. Projections are pure and never touch the store.
package view

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// ErrInvalidDirection is returned for a sort direction other than asc/desc
var ErrInvalidDirection = errors.New("invalid sort direction")

// Direction is the sort order of a projection
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc"; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Spec is the consumer-owned description of what to show
type Spec struct {
	Category  domain.Category
	Filter    string
	SortField string
	Direction Direction
}

// DefaultSpec is the initial view: newest pairs first by age.
func DefaultSpec() Spec {
	return Spec{
		Category:  domain.CategoryNewPairs,
		SortField: domain.FieldAge,
		Direction: Asc,
	}
}

// WithSort applies a column header activation: the same field flips the
// direction, a different field starts ascending.
func (s Spec) WithSort(field string) Spec {
	if s.SortField == field {
		s.Direction = s.Direction.Flip()
		return s
	}
	s.SortField = field
	s.Direction = Asc
	return s
}

// Source is anything that can hand out a category collection copy
type Source interface {
	Get(category domain.Category) []domain.Token
}

// Project filters and sorts the category named by spec. The sort field is
// validated before anything else is read.
func Project(src Source, spec Spec) ([]domain.Token, error) {
	field, err := domain.LookupField(spec.SortField)
	if err != nil {
		return nil, err
	}

	tokens := Filter(src.Get(spec.Category), spec.Filter)
	Sort(tokens, field, spec.Direction)
	return tokens, nil
}

// Filter keeps tokens whose name or symbol contains text, ignoring case.
// An empty text keeps everything.
func Filter(tokens []domain.Token, text string) []domain.Token {
	needle := strings.ToLower(text)
	if needle == "" {
		return tokens
	}

	out := tokens[:0:0]
	for _, t := range tokens {
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Symbol), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders tokens in place. Equal keys keep their relative order.
func Sort(tokens []domain.Token, field domain.Field, dir Direction) {
	sort.SliceStable(tokens, func(i, j int) bool {
		c := field.Compare(tokens[i], tokens[j])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}
