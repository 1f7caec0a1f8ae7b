package domain

import (
	"fmt"
	"math"
)

// MinPrice is the floor a price is clamped to when a mutation would push it
// to zero or below.
const MinPrice = 1e-12

// Platform is the launchpad or DEX a token trades on
type Platform string

const (
	PlatformPumpFun  Platform = "pumpfun"
	PlatformMoonshot Platform = "moonshot"
	PlatformRaydium  Platform = "raydium"
)

// Platforms lists every known platform
var Platforms = []Platform{PlatformPumpFun, PlatformMoonshot, PlatformRaydium}

// Valid reports whether p is a known platform
func (p Platform) Valid() bool {
	switch p {
	case PlatformPumpFun, PlatformMoonshot, PlatformRaydium:
		return true
	}
	return false
}

// Token is one row of the live table. Records are replaced whole, never
// edited in place.
type Token struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Symbol            string   `json:"symbol"`
	ContractAddress   string   `json:"contractAddress"`
	Logo              string   `json:"logo"`
	Age               float64  `json:"age"` // minutes
	MarketCap         float64  `json:"marketCap"`
	Liquidity         float64  `json:"liquidity"`
	Volume24h         float64  `json:"volume24h"`
	Holders           int      `json:"holders"`
	DevHoldingPercent float64  `json:"devHoldingPercent"`
	SnipersPercent    float64  `json:"snipersPercent"`
	ProTradersPercent float64  `json:"proTradersPercent"`
	Transactions      int      `json:"transactions"`
	Buys              int      `json:"buys"`
	Sells             int      `json:"sells"`
	Price             float64  `json:"price"`
	PriceChange24h    float64  `json:"priceChange24h"`
	Platform          Platform `json:"platform"`
}

// Validate checks the invariants every stored token must hold.
func (t Token) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidToken)
	}
	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return fmt.Errorf("%w: %s: price must be positive, got %v", ErrInvalidToken, t.ID, t.Price)
	}
	if t.Holders < 0 || t.Transactions < 0 || t.Buys < 0 || t.Sells < 0 {
		return fmt.Errorf("%w: %s: negative count", ErrInvalidToken, t.ID)
	}
	for _, pct := range []float64{t.DevHoldingPercent, t.SnipersPercent, t.ProTradersPercent} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: %s: percentage %v out of [0,100]", ErrInvalidToken, t.ID, pct)
		}
	}
	if t.Platform != "" && !t.Platform.Valid() {
		return fmt.Errorf("%w: %s: unknown platform %q", ErrInvalidToken, t.ID, t.Platform)
	}
	return nil
}

// Delta is the payload of a single mutation. Percent fields are relative
// changes; count fields are absolute increments.
type Delta struct {
	PriceDeltaPct  float64
	VolumeDeltaPct float64
	Holders        int
	Transactions   int
	Buys           int
	Sells          int
}

// Apply returns a copy of t with d applied. Values that would leave their
// valid range are clamped and clamped is set; this is never an error.
func (t Token) Apply(d Delta) (out Token, clamped bool) {
	out = t

	price := t.Price * (1 + d.PriceDeltaPct/100)
	if !(price > 0) || math.IsInf(price, 0) {
		price = MinPrice
		clamped = true
	}
	out.Price = price
	out.PriceChange24h = t.PriceChange24h + d.PriceDeltaPct

	vol := t.Volume24h * (1 + d.VolumeDeltaPct/100)
	if vol < 0 || math.IsNaN(vol) {
		vol = 0
		clamped = true
	}
	out.Volume24h = vol

	var c bool
	out.Holders, c = clampCount(t.Holders + d.Holders)
	clamped = clamped || c
	out.Transactions, c = clampCount(t.Transactions + d.Transactions)
	clamped = clamped || c
	out.Buys, c = clampCount(t.Buys + d.Buys)
	clamped = clamped || c
	out.Sells, c = clampCount(t.Sells + d.Sells)
	clamped = clamped || c

	return out, clamped
}

func clampCount(n int) (int, bool) {
	if n < 0 {
		return 0, true
	}
	return n, false
}
