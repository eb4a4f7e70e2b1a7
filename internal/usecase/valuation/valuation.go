package valuation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

// PriceLookup resolves a held symbol to its current instrument
type PriceLookup interface {
	Lookup(symbol string) (domain.Instrument, error)
}

// Position represents one priced holding
type Position struct {
	Symbol   string
	Name     string
	Quantity int64
	Price    decimal.Decimal
	Value    decimal.Decimal // Quantity x Price
}

// Valuation represents the calculated net worth of a portfolio
type Valuation struct {
	Cash      decimal.Decimal
	Equity    decimal.Decimal // Sum of position values
	Total     decimal.Decimal // Cash + Equity
	Positions []Position      // Sorted by symbol, only quantities > 0
}

// UnpricedAssetError lists held symbols the catalog could not price
type UnpricedAssetError struct {
	Symbols []string
}

func (e *UnpricedAssetError) Error() string {
	return fmt.Sprintf("%s: no price for %s", domain.ErrUnpricedAsset, strings.Join(e.Symbols, ", "))
}

// Unwrap lets errors.Is match domain.ErrUnpricedAsset
func (e *UnpricedAssetError) Unwrap() error {
	return domain.ErrUnpricedAsset
}

// Compute calculates the total value of a portfolio at current prices
// Logic:
//   - Cash: the portfolio's cash balance
//   - Equity: sum of quantity x current price over every holding with quantity > 0
//   - Total: Cash + Equity
//
// A held symbol without a price is reported as an *UnpricedAssetError, never valued at zero.
func Compute(p *domain.Portfolio, prices PriceLookup) (*Valuation, error) {
	symbols := make([]string, 0, len(p.Holdings))
	for symbol, qty := range p.Holdings {
		if qty > 0 {
			symbols = append(symbols, symbol)
		}
	}
	slices.Sort(symbols)

	equity := decimal.Zero
	positions := make([]Position, 0, len(symbols))
	var unpriced []string

	for _, symbol := range symbols {
		inst, err := prices.Lookup(symbol)
		if err != nil {
			unpriced = append(unpriced, symbol)
			continue
		}

		qty := p.Holdings[symbol]
		value := inst.Price.Mul(decimal.NewFromInt(qty))
		positions = append(positions, Position{
			Symbol:   symbol,
			Name:     inst.Name,
			Quantity: qty,
			Price:    inst.Price,
			Value:    value,
		})
		equity = equity.Add(value)
	}

	if len(unpriced) > 0 {
		return nil, &UnpricedAssetError{Symbols: unpriced}
	}

	return &Valuation{
		Cash:      p.Cash,
		Equity:    equity,
		Total:     p.Cash.Add(equity),
		Positions: positions,
	}, nil
}
