package market

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

// PriceSimulator moves one price to the next
type PriceSimulator interface {
	Next(price decimal.Decimal) decimal.Decimal
	Floor() decimal.Decimal
}

// Catalog owns the tradable instruments of a session and their current prices
// It is created from the seed list once per run and is never persisted.
type Catalog struct {
	instruments map[string]*domain.Instrument
	symbols     []string // Sorted, gives a stable display and refresh order
	sim         PriceSimulator
}

// NewCatalog creates a new Catalog populated with the seed instruments
// Returns an error if a seed is invalid or a symbol is listed twice.
func NewCatalog(seed []domain.Instrument, sim PriceSimulator) (*Catalog, error) {
	if sim == nil {
		return nil, errors.New("price simulator is required")
	}

	if len(seed) == 0 {
		return nil, errors.New("catalog needs at least one instrument")
	}

	c := &Catalog{
		instruments: make(map[string]*domain.Instrument, len(seed)),
		symbols:     make([]string, 0, len(seed)),
		sim:         sim,
	}

	for _, s := range seed {
		inst := s
		inst.Symbol = domain.NormalizeSymbol(inst.Symbol)
		if err := inst.Validate(sim.Floor()); err != nil {
			return nil, fmt.Errorf("invalid seed instrument %q: %w", s.Symbol, err)
		}
		if _, exists := c.instruments[inst.Symbol]; exists {
			return nil, fmt.Errorf("duplicate seed instrument %q", inst.Symbol)
		}
		c.instruments[inst.Symbol] = &inst
		c.symbols = append(c.symbols, inst.Symbol)
	}
	slices.Sort(c.symbols)

	return c, nil
}

// Lookup returns the instrument listed under symbol (case-insensitive)
func (c *Catalog) Lookup(symbol string) (domain.Instrument, error) {
	inst, ok := c.instruments[domain.NormalizeSymbol(symbol)]
	if !ok {
		return domain.Instrument{}, fmt.Errorf("%w: %q", domain.ErrNotFound, symbol)
	}
	return *inst, nil
}

// RefreshAll moves every price one simulator step and returns the new quotes
func (c *Catalog) RefreshAll() []domain.Quote {
	for _, symbol := range c.symbols {
		c.refresh(c.instruments[symbol])
	}
	return c.List()
}

// RefreshOne moves the price of a single instrument one simulator step
func (c *Catalog) RefreshOne(symbol string) (domain.Quote, error) {
	inst, ok := c.instruments[domain.NormalizeSymbol(symbol)]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %q", domain.ErrNotFound, symbol)
	}
	c.refresh(inst)
	return inst.Quote(), nil
}

func (c *Catalog) refresh(inst *domain.Instrument) {
	inst.Price = c.sim.Next(inst.Price)
}

// List returns a snapshot of every instrument sorted by symbol
// The slice is a copy; later refreshes do not alter it.
func (c *Catalog) List() []domain.Quote {
	quotes := make([]domain.Quote, 0, len(c.symbols))
	for _, symbol := range c.symbols {
		quotes = append(quotes, c.instruments[symbol].Quote())
	}
	return quotes
}

// Len returns the number of listed instruments
func (c *Catalog) Len() int {
	return len(c.symbols)
}
