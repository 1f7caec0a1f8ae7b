// Package source provides the initial token batches the engine loads once
// per category.
package source

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// ErrPermanent marks a load failure that retrying cannot fix
var ErrPermanent = errors.New("permanent source error")

// DataSource supplies the initial batch for one category. Implementations
// must be safe for concurrent calls with different categories.
type DataSource interface {
	Load(ctx context.Context, category domain.Category) ([]domain.Token, error)
}

// Func adapts a function to DataSource
type Func func(ctx context.Context, category domain.Category) ([]domain.Token, error)

// Load calls f
func (f Func) Load(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	return f(ctx, category)
}
