package domain

import (
	"context"
)

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	// Load reads the stored portfolio
	// found is false (with a nil error) when nothing has been stored yet.
	// Returns an error wrapping ErrCorruptState if stored data cannot be parsed or validated.
	Load(ctx context.Context) (portfolio *Portfolio, found bool, err error)

	// Save replaces the stored portfolio with the given one atomically
	// Returns an error wrapping ErrPersistence on I/O failure; the stored copy is left untouched.
	Save(ctx context.Context, portfolio *Portfolio) error
}
