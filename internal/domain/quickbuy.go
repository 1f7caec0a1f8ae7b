package domain

import "time"

// DefaultQuickBuyAmount is the SOL amount pre-filled in the quick buy dialog
const DefaultQuickBuyAmount = 0.1

// QuickBuyIntent is the hand-off produced when a user picks a token for a
// quick buy. Nothing in this module executes it.
type QuickBuyIntent struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Token       Token     `json:"token"`
	AmountSOL   float64   `json:"amountSol"`
	RequestedAt time.Time `json:"requestedAt"`
}
