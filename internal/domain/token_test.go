package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleToken() Token {
	return Token{
		ID:             "new-pairs-0",
		Name:           "PEPE42",
		Symbol:         "PEPE",
		Price:          0.01,
		PriceChange24h: 12.5,
		Volume24h:      1000,
		Holders:        10,
		Transactions:   100,
		Buys:           60,
		Sells:          40,
		Platform:       PlatformPumpFun,
	}
}

func TestTokenApply(t *testing.T) {
	tok := sampleToken()

	out, clamped := tok.Apply(Delta{PriceDeltaPct: 2, VolumeDeltaPct: -3, Holders: 5})
	assert.False(t, clamped)
	assert.InDelta(t, 0.0102, out.Price, 1e-12)
	assert.InDelta(t, 14.5, out.PriceChange24h, 1e-9)
	assert.InDelta(t, 970, out.Volume24h, 1e-9)
	assert.Equal(t, 15, out.Holders)

	// receiver is untouched
	assert.Equal(t, 0.01, tok.Price)
}

func TestTokenApplyClamps(t *testing.T) {
	tok := sampleToken()

	tests := []struct {
		name  string
		delta Delta
		check func(t *testing.T, out Token)
	}{
		{
			name:  "price floor",
			delta: Delta{PriceDeltaPct: -100},
			check: func(t *testing.T, out Token) {
				assert.Equal(t, MinPrice, out.Price)
				assert.InDelta(t, -87.5, out.PriceChange24h, 1e-9)
			},
		},
		{
			name:  "price driven negative",
			delta: Delta{PriceDeltaPct: -200},
			check: func(t *testing.T, out Token) {
				assert.Equal(t, MinPrice, out.Price)
				assert.InDelta(t, -187.5, out.PriceChange24h, 1e-9)
			},
		},
		{
			name:  "negative volume",
			delta: Delta{VolumeDeltaPct: -250},
			check: func(t *testing.T, out Token) {
				assert.Equal(t, 0.0, out.Volume24h)
			},
		},
		{
			name:  "negative counts",
			delta: Delta{Holders: -50, Sells: -41},
			check: func(t *testing.T, out Token) {
				assert.Equal(t, 0, out.Holders)
				assert.Equal(t, 0, out.Sells)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, clamped := tok.Apply(tt.delta)
			require.True(t, clamped)
			require.NoError(t, out.Validate())
			tt.check(t, out)
		})
	}
}

func TestTokenValidate(t *testing.T) {
	tok := sampleToken()
	require.NoError(t, tok.Validate())

	bad := tok
	bad.Price = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidToken)

	bad = tok
	bad.Buys = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidToken)

	bad = tok
	bad.SnipersPercent = 101
	assert.ErrorIs(t, bad.Validate(), ErrInvalidToken)

	bad = tok
	bad.Platform = "uniswap"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidToken)
}

func TestLookupField(t *testing.T) {
	f, err := LookupField(FieldMarketCap)
	require.NoError(t, err)
	assert.True(t, f.Numeric)

	a, b := sampleToken(), sampleToken()
	a.MarketCap, b.MarketCap = 10, 20
	assert.Equal(t, -1, f.Compare(a, b))
	assert.Equal(t, 1, f.Compare(b, a))
	assert.Equal(t, 0, f.Compare(a, a))

	f, err = LookupField(FieldSymbol)
	require.NoError(t, err)
	assert.False(t, f.Numeric)
	a.Symbol, b.Symbol = "BONK", "WIF"
	assert.Equal(t, -1, f.Compare(a, b))

	_, err = LookupField("rugScore")
	var sortErr *InvalidSortFieldError
	require.True(t, errors.As(err, &sortErr))
	assert.Equal(t, "rugScore", sortErr.Field)
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestParseCategory(t *testing.T) {
	for _, c := range AllCategories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("trending")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, "Final Stretch", CategoryFinalStretch.Label())
}

func TestNotFoundErrorIs(t *testing.T) {
	var err error = &NotFoundError{Category: CategoryMigrated, ID: "x"}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"x"`)
}
