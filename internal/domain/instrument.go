package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of decimal places carried by every price
const PriceDecimals = 2

// DefaultPriceFloor is the lowest price the market ever quotes
var DefaultPriceFloor = decimal.RequireFromString("1.00")

// Instrument represents a tradable instrument in the market catalog
// The symbol is the identity and never changes; only the price moves.
type Instrument struct {
	Symbol string
	Name   string
	Price  decimal.Decimal // Current price, 2-decimal precision, never below the floor
}

// Quote is a read-only snapshot of an instrument at one point in time
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// NormalizeSymbol returns the canonical form of a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Quote returns a snapshot of the instrument
func (i Instrument) Quote() Quote {
	return Quote{Symbol: i.Symbol, Name: i.Name, Price: i.Price}
}

// Validate ensures the instrument adheres to domain rules
// Returns an error if validation fails
func (i *Instrument) Validate(floor decimal.Decimal) error {
	if i.Symbol == "" {
		return errors.New("instrument symbol cannot be empty")
	}

	if i.Symbol != NormalizeSymbol(i.Symbol) {
		return errors.New("instrument symbol must be upper case without surrounding spaces")
	}

	if i.Name == "" {
		return errors.New("instrument name cannot be empty")
	}

	if !i.Price.IsPositive() {
		return errors.New("instrument price must be positive")
	}

	if i.Price.LessThan(floor) {
		return errors.New("instrument price cannot be below the price floor")
	}

	if !i.Price.Equal(i.Price.Round(PriceDecimals)) {
		return errors.New("instrument price must have at most 2 decimal places")
	}

	return nil
}
