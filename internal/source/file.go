package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// FileSource reads a JSON document keyed by category:
//
//	{"new-pairs": [{...token...}], "final-stretch": [...], "migrated": [...]}
//
// The file is parsed once and cached. Missing categories load as empty.
type FileSource struct {
	path string

	once   sync.Once
	byCat  map[domain.Category][]domain.Token
	parsed error
}

// NewFileSource creates a source backed by path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implements DataSource
func (s *FileSource) Load(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrPermanent, domain.ErrUnknownCategory, category)
	}

	s.once.Do(func() {
		s.byCat, s.parsed = s.parse()
	})
	if s.parsed != nil {
		return nil, s.parsed
	}

	tokens := s.byCat[category]
	out := make([]domain.Token, len(tokens))
	copy(out, tokens)
	return out, nil
}

func (s *FileSource) parse() (map[domain.Category][]domain.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read token file: %w", ErrPermanent, err)
	}

	var raw map[string][]domain.Token
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode token file: %w", ErrPermanent, err)
	}

	out := make(map[domain.Category][]domain.Token, len(raw))
	for key, tokens := range raw {
		category, err := domain.ParseCategory(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		for _, t := range tokens {
			if t.ContractAddress == "" {
				continue
			}
			if _, err := solana.PublicKeyFromBase58(t.ContractAddress); err != nil {
				return nil, fmt.Errorf("%w: token %s: invalid contract address: %w", ErrPermanent, t.ID, err)
			}
		}
		out[category] = tokens
	}
	return out, nil
}
