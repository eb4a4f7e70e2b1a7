package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/simaogato/stocksim/internal/adapter/repository/storage"
	"github.com/simaogato/stocksim/internal/domain"
)

// portfolioRepository implements domain.PortfolioRepository on a single JSON document
type portfolioRepository struct {
	path string
	now  func() time.Time
}

// NewPortfolioRepository creates a repository that stores the portfolio at path
func NewPortfolioRepository(path string) domain.PortfolioRepository {
	return &portfolioRepository{path: path, now: time.Now}
}

// Load reads the portfolio document
// A missing file means nothing has been saved yet.
func (r *portfolioRepository) Load(ctx context.Context) (*domain.Portfolio, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read %s: %w", domain.ErrPersistence, r.path, err)
	}

	p, err := decodePortfolio(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", domain.ErrCorruptState, r.path, err)
	}

	return p, true, nil
}

// Save replaces the portfolio document atomically
func (r *portfolioRepository) Save(ctx context.Context, p *domain.Portfolio) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodePortfolio(p, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	err = storage.ReplaceFile(r.path, func(tmp string) error {
		return storage.WriteFile(tmp, data)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save %s: %w", domain.ErrPersistence, r.path, err)
	}

	return nil
}
