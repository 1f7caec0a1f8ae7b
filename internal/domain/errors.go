package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("token not found")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidToken     = errors.New("invalid token")
)

// NotFoundError is returned when a token id is absent from its category.
type NotFoundError struct {
	Category Category
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("token %q not found in category %q", e.ID, e.Category)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidSortFieldError names a sort field outside the token schema.
type InvalidSortFieldError struct {
	Field string
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q", e.Field)
}

func (e *InvalidSortFieldError) Is(target error) bool {
	return target == ErrInvalidSortField
}
