package domain

import "errors"

// Error kinds surfaced by the core. Callers match them with errors.Is; the
// returned errors usually wrap one of these with more context.
var (
	// ErrNotFound is returned when a symbol is not listed in the catalog
	ErrNotFound = errors.New("instrument not found")

	// ErrInvalidQuantity is returned for non-positive or non-integer quantities
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientFunds is returned when a buy costs more than the available cash
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares is returned when a sell exceeds the held quantity
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrPersistence is returned when the portfolio could not be written to storage
	ErrPersistence = errors.New("persistence error")

	// ErrCorruptState is returned when stored portfolio state fails to parse or validate
	ErrCorruptState = errors.New("corrupt portfolio state")

	// ErrUnpricedAsset is returned when a held symbol has no price in the catalog
	ErrUnpricedAsset = errors.New("unpriced asset")
)
