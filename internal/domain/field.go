package domain

import "strings"

// Field names follow the json keys of Token.
const (
	FieldID                = "id"
	FieldName              = "name"
	FieldSymbol            = "symbol"
	FieldContractAddress   = "contractAddress"
	FieldLogo              = "logo"
	FieldAge               = "age"
	FieldMarketCap         = "marketCap"
	FieldLiquidity         = "liquidity"
	FieldVolume24h         = "volume24h"
	FieldHolders           = "holders"
	FieldDevHoldingPercent = "devHoldingPercent"
	FieldSnipersPercent    = "snipersPercent"
	FieldProTradersPercent = "proTradersPercent"
	FieldTransactions      = "transactions"
	FieldBuys              = "buys"
	FieldSells             = "sells"
	FieldPrice             = "price"
	FieldPriceChange24h    = "priceChange24h"
	FieldPlatform          = "platform"
)

// Field describes one sortable column of the token schema.
type Field struct {
	Name    string
	Numeric bool
	number  func(Token) float64
	text    func(Token) string
}

// Number returns the numeric value of the field for t. String fields return 0.
func (f Field) Number(t Token) float64 {
	if f.number == nil {
		return 0
	}
	return f.number(t)
}

// Text returns the string value of the field for t.
func (f Field) Text(t Token) string {
	if f.text == nil {
		return ""
	}
	return f.text(t)
}

// Compare orders a and b by the field: numbers naturally, strings
// lexicographically. Returns -1, 0 or 1.
func (f Field) Compare(a, b Token) int {
	if f.Numeric {
		x, y := f.number(a), f.number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(f.text(a), f.text(b))
}

var fields = map[string]Field{
	FieldID:                textField(FieldID, func(t Token) string { return t.ID }),
	FieldName:              textField(FieldName, func(t Token) string { return t.Name }),
	FieldSymbol:            textField(FieldSymbol, func(t Token) string { return t.Symbol }),
	FieldContractAddress:   textField(FieldContractAddress, func(t Token) string { return t.ContractAddress }),
	FieldLogo:              textField(FieldLogo, func(t Token) string { return t.Logo }),
	FieldPlatform:          textField(FieldPlatform, func(t Token) string { return string(t.Platform) }),
	FieldAge:               numField(FieldAge, func(t Token) float64 { return t.Age }),
	FieldMarketCap:         numField(FieldMarketCap, func(t Token) float64 { return t.MarketCap }),
	FieldLiquidity:         numField(FieldLiquidity, func(t Token) float64 { return t.Liquidity }),
	FieldVolume24h:         numField(FieldVolume24h, func(t Token) float64 { return t.Volume24h }),
	FieldHolders:           numField(FieldHolders, func(t Token) float64 { return float64(t.Holders) }),
	FieldDevHoldingPercent: numField(FieldDevHoldingPercent, func(t Token) float64 { return t.DevHoldingPercent }),
	FieldSnipersPercent:    numField(FieldSnipersPercent, func(t Token) float64 { return t.SnipersPercent }),
	FieldProTradersPercent: numField(FieldProTradersPercent, func(t Token) float64 { return t.ProTradersPercent }),
	FieldTransactions:      numField(FieldTransactions, func(t Token) float64 { return float64(t.Transactions) }),
	FieldBuys:              numField(FieldBuys, func(t Token) float64 { return float64(t.Buys) }),
	FieldSells:             numField(FieldSells, func(t Token) float64 { return float64(t.Sells) }),
	FieldPrice:             numField(FieldPrice, func(t Token) float64 { return t.Price }),
	FieldPriceChange24h:    numField(FieldPriceChange24h, func(t Token) float64 { return t.PriceChange24h }),
}

// LookupField returns the schema field called name, or an
// *InvalidSortFieldError.
func LookupField(name string) (Field, error) {
	f, ok := fields[name]
	if !ok {
		return Field{}, &InvalidSortFieldError{Field: name}
	}
	return f, nil
}

func numField(name string, fn func(Token) float64) Field {
	return Field{Name: name, Numeric: true, number: fn}
}

func textField(name string, fn func(Token) string) Field {
	return Field{Name: name, text: fn}
}
