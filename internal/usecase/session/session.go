package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/trading"
	"github.com/simaogato/stocksim/internal/usecase/valuation"
)

// ErrSessionClosed is returned by every command after a successful SaveAndExit
var ErrSessionClosed = errors.New("session is closed")

// Origin tells where the session's portfolio came from
type Origin string

const (
	OriginRestored  Origin = "restored"  // loaded from storage
	OriginFresh     Origin = "fresh"     // nothing stored yet
	OriginRecovered Origin = "recovered" // stored state was corrupt and a fresh portfolio replaced it
)

// RecoveryPolicy decides what Open does when stored state is corrupt
type RecoveryPolicy string

const (
	RecoveryFresh RecoveryPolicy = "fresh" // log a warning and start a fresh portfolio
	RecoveryFail  RecoveryPolicy = "fail"  // return the error
)

// ParseRecoveryPolicy converts a configuration value into a RecoveryPolicy
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch RecoveryPolicy(s) {
	case RecoveryFresh, RecoveryFail:
		return RecoveryPolicy(s), nil
	case "":
		return RecoveryFresh, nil
	default:
		return "", fmt.Errorf("unknown recovery policy %q (want %q or %q)", s, RecoveryFresh, RecoveryFail)
	}
}

// Market is the part of the instrument catalog a session drives
type Market interface {
	Lookup(symbol string) (domain.Instrument, error)
	List() []domain.Quote
	RefreshAll() []domain.Quote
	RefreshOne(symbol string) (domain.Quote, error)
}

// Deps holds the collaborators of a session
type Deps struct {
	Repository domain.PortfolioRepository
	Market     Market
	Logger     *slog.Logger
}

// Options configures how a session starts
type Options struct {
	StartingCash decimal.Decimal // Cash of a fresh portfolio
	Recovery     RecoveryPolicy
}

// Session is the command surface of one trading run: it owns the single live portfolio
type Session struct {
	repo    domain.PortfolioRepository
	market  Market
	trading *trading.TradingService
	logger  *slog.Logger

	origin Origin
	closed bool
}

// Open starts a session
// Logic:
//  1. Load the stored portfolio
//  2. Nothing stored: start fresh with opts.StartingCash
//  3. Corrupt state: start fresh (RecoveryFresh) or fail (RecoveryFail)
//  4. Any other load error is returned, so a later save cannot overwrite unread state
func Open(ctx context.Context, deps Deps, opts Options) (*Session, error) {
	if deps.Repository == nil {
		return nil, errors.New("portfolio repository is required")
	}
	if deps.Market == nil {
		return nil, errors.New("market is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Recovery == "" {
		opts.Recovery = RecoveryFresh
	}

	p, found, err := deps.Repository.Load(ctx)
	origin := OriginRestored
	switch {
	case err != nil && errors.Is(err, domain.ErrCorruptState) && opts.Recovery == RecoveryFresh:
		logger.WarnContext(ctx, "Stored portfolio is corrupt, starting fresh", "error", err)
		origin = OriginRecovered
	case err != nil:
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	case !found:
		origin = OriginFresh
	}

	if origin != OriginRestored {
		p, err = domain.NewPortfolio(opts.StartingCash)
		if err != nil {
			return nil, fmt.Errorf("failed to create portfolio: %w", err)
		}
	}

	ts, err := trading.NewTradingService(deps.Market, p, logger)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Session opened",
		"origin", string(origin),
		"cash", p.Cash.StringFixed(domain.PriceDecimals),
		"transactions", len(p.Transactions),
	)

	return &Session{
		repo:    deps.Repository,
		market:  deps.Market,
		trading: ts,
		logger:  logger,
		origin:  origin,
	}, nil
}

// Origin reports where the portfolio came from
func (s *Session) Origin() Origin {
	return s.origin
}

// Closed reports whether SaveAndExit has completed
func (s *Session) Closed() bool {
	return s.closed
}

// ListMarket returns the current quotes, sorted by symbol
func (s *Session) ListMarket(ctx context.Context) ([]domain.Quote, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.market.List(), nil
}

// RefreshMarket moves every price one simulator step and returns the new quotes
func (s *Session) RefreshMarket(ctx context.Context) ([]domain.Quote, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	quotes := s.market.RefreshAll()
	s.logger.DebugContext(ctx, "Market refreshed", "instruments", len(quotes))
	return quotes, nil
}

// RefreshInstrument moves one price one simulator step
func (s *Session) RefreshInstrument(ctx context.Context, symbol string) (domain.Quote, error) {
	if s.closed {
		return domain.Quote{}, ErrSessionClosed
	}

	q, err := s.market.RefreshOne(symbol)
	if err != nil {
		return domain.Quote{}, err
	}

	s.logger.DebugContext(ctx, "Instrument refreshed", "symbol", q.Symbol, "price", q.Price.StringFixed(domain.PriceDecimals))
	return q, nil
}

// LookupInstrument resolves symbol against the market without changing anything
func (s *Session) LookupInstrument(ctx context.Context, symbol string) (domain.Instrument, error) {
	if s.closed {
		return domain.Instrument{}, ErrSessionClosed
	}
	return s.market.Lookup(symbol)
}

// Buy purchases quantity shares of symbol at its current price
func (s *Session) Buy(ctx context.Context, symbol string, quantity int64) (*trading.Confirmation, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.trading.Buy(ctx, symbol, quantity)
}

// Sell disposes of quantity shares of symbol at its current price
func (s *Session) Sell(ctx context.Context, symbol string, quantity int64) (*trading.Confirmation, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.trading.Sell(ctx, symbol, quantity)
}

// ViewPortfolio values the portfolio at current prices
func (s *Session) ViewPortfolio(ctx context.Context) (*valuation.Valuation, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return valuation.Compute(s.trading.Portfolio, s.market)
}

// ViewHistory returns every transaction, oldest first
func (s *Session) ViewHistory(ctx context.Context) ([]domain.Transaction, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.trading.History(), nil
}

// Save persists the portfolio and keeps the session open
func (s *Session) Save(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.save(ctx)
}

// SaveAndExit persists the portfolio and closes the session
// The session stays open when saving fails, so the caller can retry.
func (s *Session) SaveAndExit(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}

	if err := s.save(ctx); err != nil {
		return err
	}

	s.closed = true
	s.logger.InfoContext(ctx, "Session closed")
	return nil
}

func (s *Session) save(ctx context.Context) error {
	// The repository gets a snapshot, never the live ledger
	p := s.trading.Portfolio.Clone()
	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save portfolio", "error", err)
		return err
	}

	s.logger.InfoContext(ctx, "Portfolio saved",
		"cash", p.Cash.StringFixed(domain.PriceDecimals),
		"transactions", len(p.Transactions),
	)
	return nil
}
