package source

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// DefaultTokensPerCategory matches the size of the demo table
const DefaultTokensPerCategory = 20

var tokenNames = []string{"PEPE", "DOGE", "SHIB", "BONK", "WIF", "FLOKI", "SAMO", "WOJAK"}

type span struct{ lo, hi float64 }

// categoryRanges differ by lifecycle stage: migrated pairs are older and bigger
type categoryRanges struct {
	age, marketCap, liquidity span
}

var ranges = map[domain.Category]categoryRanges{
	domain.CategoryNewPairs:     {age: span{0.5, 30}, marketCap: span{1_000, 50_000}, liquidity: span{500, 10_000}},
	domain.CategoryFinalStretch: {age: span{30, 180}, marketCap: span{20_000, 100_000}, liquidity: span{5_000, 25_000}},
	domain.CategoryMigrated:     {age: span{60, 360}, marketCap: span{50_000, 500_000}, liquidity: span{10_000, 100_000}},
}

var (
	volumeRange   = span{1_000, 100_000}
	holdersRange  = span{10, 1_000}
	devRange      = span{0, 15}
	snipersRange  = span{0, 25}
	proRange      = span{5, 40}
	txRange       = span{50, 5_000}
	buysRange     = span{25, 3_000}
	sellsRange    = span{20, 2_500}
	priceRange    = span{0.000001, 0.1}
	changeRange   = span{-50, 150}
	logoURLFormat = "https://api.dicebear.com/7.x/shapes/svg?seed=%s"
)

// RandomSource generates plausible looking demo tokens. Ids are
// "<category>-<index>", unique across categories.
type RandomSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	count int
}

// NewRandomSource creates a generator. seed 0 picks a random seed.
func NewRandomSource(seed uint64, perCategory int) *RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	if perCategory <= 0 {
		perCategory = DefaultTokensPerCategory
	}
	return &RandomSource{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		count: perCategory,
	}
}

// Load implements DataSource
func (s *RandomSource) Load(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	r, ok := ranges[category]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrPermanent, domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := make([]domain.Token, 0, s.count)
	for i := 0; i < s.count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens = append(tokens, s.token(category, i, r))
	}
	return tokens, nil
}

func (s *RandomSource) token(category domain.Category, index int, r categoryRanges) domain.Token {
	name := fmt.Sprintf("%s%d", tokenNames[s.rng.IntN(len(tokenNames))], s.rng.IntN(9_999))

	return domain.Token{
		ID:                fmt.Sprintf("%s-%d", category, index),
		Name:              name,
		Symbol:            strings.ToUpper(name[:min(4, len(name))]),
		ContractAddress:   s.address().String(),
		Logo:              fmt.Sprintf(logoURLFormat, name),
		Age:               s.between(r.age),
		MarketCap:         s.between(r.marketCap),
		Liquidity:         s.between(r.liquidity),
		Volume24h:         s.between(volumeRange),
		Holders:           s.intBetween(holdersRange),
		DevHoldingPercent: s.between(devRange),
		SnipersPercent:    s.between(snipersRange),
		ProTradersPercent: s.between(proRange),
		Transactions:      s.intBetween(txRange),
		Buys:              s.intBetween(buysRange),
		Sells:             s.intBetween(sellsRange),
		Price:             s.between(priceRange),
		PriceChange24h:    s.between(changeRange),
		Platform:          domain.Platforms[s.rng.IntN(len(domain.Platforms))],
	}
}

// address draws 32 bytes from the seeded generator so seeded runs are
// reproducible down to the contract address.
func (s *RandomSource) address() solana.PublicKey {
	var b [32]byte
	for i := 0; i < len(b); i += 8 {
		v := s.rng.Uint64()
		for j := 0; j < 8; j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	return solana.PublicKeyFromBytes(b[:])
}

func (s *RandomSource) between(sp span) float64 {
	return sp.lo + s.rng.Float64()*(sp.hi-sp.lo)
}

func (s *RandomSource) intBetween(sp span) int {
	return int(math.Floor(s.between(sp)))
}
