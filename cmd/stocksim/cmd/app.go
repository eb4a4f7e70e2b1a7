package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/simaogato/stocksim/internal/adapter/cli"
	"github.com/simaogato/stocksim/internal/adapter/repository/file"
	"github.com/simaogato/stocksim/internal/adapter/repository/sqlite"
	"github.com/simaogato/stocksim/internal/config"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/market"
	"github.com/simaogato/stocksim/internal/usecase/pricing"
	"github.com/simaogato/stocksim/internal/usecase/session"
)

// app wires configuration into the services of one command run
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *cli.Printer
}

// loadApp reads the config (or the defaults when path is empty) and builds the logger
func loadApp(path string, logOut io.Writer) (*app, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger, err := cfg.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	currency, err := cfg.Currency()
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, printer: cli.NewPrinter(currency)}, nil
}

// repository returns the configured persistence backend
func (a *app) repository() (domain.PortfolioRepository, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendFile:
		return file.NewPortfolioRepository(a.cfg.Storage.Path), nil
	case config.BackendSQLite:
		return sqlite.NewPortfolioRepository(a.cfg.Storage.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

// catalog builds the market from the seed instruments and the seeded simulator
func (a *app) catalog() (*market.Catalog, error) {
	floor, err := a.cfg.PriceFloor()
	if err != nil {
		return nil, err
	}
	maxChange, err := a.cfg.MaxChange()
	if err != nil {
		return nil, err
	}

	sim, err := pricing.NewSeeded(a.cfg.Market.Seed, floor, maxChange)
	if err != nil {
		return nil, fmt.Errorf("failed to create price simulator: %w", err)
	}

	seed, err := a.cfg.SeedInstruments()
	if err != nil {
		return nil, err
	}

	return market.NewCatalog(seed, sim)
}

// openSession loads the stored portfolio into a new session
func (a *app) openSession(ctx context.Context, recovery session.RecoveryPolicy) (*session.Session, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}

	catalog, err := a.catalog()
	if err != nil {
		return nil, err
	}

	cash, err := a.cfg.StartingCash()
	if err != nil {
		return nil, err
	}

	return session.Open(ctx, session.Deps{
		Repository: repo,
		Market:     catalog,
		Logger:     a.logger,
	}, session.Options{
		StartingCash: cash,
		Recovery:     recovery,
	})
}
