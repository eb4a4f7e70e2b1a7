package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action represents the side of a transaction
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Transaction represents an executed trade in the portfolio ledger
// Transactions are immutable once recorded; the ledger only ever appends them.
type Transaction struct {
	ID        uuid.UUID
	Symbol    string // References an instrument by symbol, never by pointer
	Action    Action
	Quantity  int64
	Price     decimal.Decimal // Unit price at execution
	Timestamp time.Time
}

// Amount returns the cash value moved by the transaction (Price x Quantity)
func (t *Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return errors.New("transaction ID cannot be empty")
	}

	if t.Symbol == "" || t.Symbol != NormalizeSymbol(t.Symbol) {
		return errors.New("transaction symbol must be a normalized symbol")
	}

	if t.Action != ActionBuy && t.Action != ActionSell {
		return errors.New("transaction action must be BUY or SELL")
	}

	if t.Quantity <= 0 {
		return errors.New("transaction quantity must be positive")
	}

	if !t.Price.IsPositive() {
		return errors.New("transaction price must be positive")
	}

	if t.Timestamp.IsZero() {
		return errors.New("transaction timestamp cannot be empty")
	}

	return nil
}
