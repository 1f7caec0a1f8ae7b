// Package format renders token figures the way the pulse table shows them.
package format

import (
	"fmt"
	"math"
)

// Number abbreviates with K/M/B suffixes
func Number(num float64, decimals int) string {
	switch {
	case num >= 1e9:
		return fmt.Sprintf("%.*fB", decimals, num/1e9)
	case num >= 1e6:
		return fmt.Sprintf("%.*fM", decimals, num/1e6)
	case num >= 1e3:
		return fmt.Sprintf("%.*fK", decimals, num/1e3)
	}
	return fmt.Sprintf("%.*f", decimals, num)
}

// Currency is Number with a dollar sign and two decimals
func Currency(num float64) string {
	return "$" + Number(num, 2)
}

// Percent renders two decimals and a percent sign
func Percent(num float64) string {
	return fmt.Sprintf("%.2f%%", num)
}

// Age renders minutes as s, m, h or d, rounding down
func Age(minutes float64) string {
	if minutes < 1 {
		return fmt.Sprintf("%ds", int(math.Floor(minutes*60)))
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", int(math.Floor(minutes)))
	}
	hours := int(math.Floor(minutes / 60))
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}

// Change renders a 24h change as an arrow plus its magnitude. Zero counts
// as a decline.
func Change(value float64) string {
	arrow := "▼"
	if value > 0 {
		arrow = "▲"
	}
	return arrow + " " + Percent(math.Abs(value))
}

// Price renders eight decimals, enough for sub-cent tokens
func Price(price float64) string {
	return fmt.Sprintf("$%.8f", price)
}

// ShortAddress keeps the first and last four characters
func ShortAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}
