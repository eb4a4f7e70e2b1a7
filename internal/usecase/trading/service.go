package trading

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

// InstrumentLookup resolves a symbol to its current instrument
type InstrumentLookup interface {
	Lookup(symbol string) (domain.Instrument, error)
}

// Confirmation represents the outcome of an executed trade
type Confirmation struct {
	Transaction domain.Transaction
	Cash        decimal.Decimal // Cash balance after the trade
	Held        int64           // Quantity held after the trade
}

// TradingService executes buys and sells against the catalog's current prices
type TradingService struct {
	Catalog   InstrumentLookup
	Portfolio *domain.Portfolio

	Clock func() time.Time
	NewID func() uuid.UUID

	logger *slog.Logger
}

// NewTradingService creates a new TradingService instance
func NewTradingService(catalog InstrumentLookup, portfolio *domain.Portfolio, logger *slog.Logger) (*TradingService, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if portfolio == nil {
		return nil, errors.New("portfolio is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TradingService{
		Catalog:   catalog,
		Portfolio: portfolio,
		Clock:     time.Now,
		NewID:     uuid.New,
		logger:    logger,
	}, nil
}

// Buy purchases quantity shares of symbol at the current catalog price
// Logic:
//  1. Resolve the symbol in the catalog (ErrNotFound)
//  2. Let the portfolio validate and apply the buy (all-or-nothing)
//  3. Return the recorded transaction with the new balances
func (s *TradingService) Buy(ctx context.Context, symbol string, quantity int64) (*Confirmation, error) {
	inst, err := s.Catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	tx, err := s.Portfolio.Buy(inst, quantity, s.NewID(), s.now())
	if err != nil {
		s.logger.DebugContext(ctx, "Buy rejected", "symbol", inst.Symbol, "quantity", quantity, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Bought shares",
		"symbol", tx.Symbol,
		"quantity", tx.Quantity,
		"price", tx.Price.StringFixed(domain.PriceDecimals),
		"cash", s.Portfolio.Cash.StringFixed(domain.PriceDecimals),
	)

	return s.confirm(tx), nil
}

// Sell disposes of quantity shares of symbol at the current catalog price
// Logic:
//  1. Resolve the symbol in the catalog (ErrNotFound)
//  2. Let the portfolio validate and apply the sell (all-or-nothing)
//  3. Return the recorded transaction with the new balances
func (s *TradingService) Sell(ctx context.Context, symbol string, quantity int64) (*Confirmation, error) {
	inst, err := s.Catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	tx, err := s.Portfolio.Sell(inst, quantity, s.NewID(), s.now())
	if err != nil {
		s.logger.DebugContext(ctx, "Sell rejected", "symbol", inst.Symbol, "quantity", quantity, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Sold shares",
		"symbol", tx.Symbol,
		"quantity", tx.Quantity,
		"price", tx.Price.StringFixed(domain.PriceDecimals),
		"cash", s.Portfolio.Cash.StringFixed(domain.PriceDecimals),
	)

	return s.confirm(tx), nil
}

// History returns every recorded transaction, oldest first
func (s *TradingService) History() []domain.Transaction {
	return s.Portfolio.History()
}

// now returns the execution time in UTC, without a monotonic reading,
// so that it survives a round trip through storage unchanged
func (s *TradingService) now() time.Time {
	return s.Clock().UTC()
}

func (s *TradingService) confirm(tx *domain.Transaction) *Confirmation {
	return &Confirmation{
		Transaction: *tx,
		Cash:        s.Portfolio.Cash,
		Held:        s.Portfolio.Held(tx.Symbol),
	}
}
