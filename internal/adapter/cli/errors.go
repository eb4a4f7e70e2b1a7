package cli

import (
	"errors"

	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/session"
)

// describeError maps core error kinds to the line shown to the user
func describeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, session.ErrSessionClosed):
		return "Session is closed."
	case errors.Is(err, domain.ErrNotFound):
		return "Invalid symbol."
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "Invalid quantity. Enter a positive whole number."
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient balance."
	case errors.Is(err, domain.ErrInsufficientShares):
		return "Insufficient shares."
	case errors.Is(err, domain.ErrUnpricedAsset):
		return "Cannot value portfolio: " + err.Error()
	case errors.Is(err, domain.ErrPersistence):
		return "Failed to save portfolio: " + err.Error()
	case errors.Is(err, domain.ErrCorruptState):
		return "Stored portfolio is corrupt: " + err.Error()
	}

	return "Error: " + err.Error()
}
