package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio is the trader's ledger: cash, holdings and the append-only
// transaction history. It is the only state that is persisted between sessions.
type Portfolio struct {
	StartingCash decimal.Decimal  // Cash the ledger was opened with; used to audit the history
	Cash         decimal.Decimal  // Never negative
	Holdings     map[string]int64 // Symbol -> quantity. Zero and absent both mean "no position"
	Transactions []Transaction    // Oldest first
}

// NewPortfolio creates a fresh portfolio funded with startingCash
func NewPortfolio(startingCash decimal.Decimal) (*Portfolio, error) {
	if startingCash.IsNegative() {
		return nil, errors.New("starting cash cannot be negative")
	}

	return &Portfolio{
		StartingCash: startingCash,
		Cash:         startingCash,
		Holdings:     make(map[string]int64),
		Transactions: make([]Transaction, 0),
	}, nil
}

// Held returns the quantity held for a symbol (0 when there is no position)
func (p *Portfolio) Held(symbol string) int64 {
	return p.Holdings[NormalizeSymbol(symbol)]
}

// Buy debits cash and credits holdings for quantity units of inst at its current price.
// Logic:
//  1. Reject non-positive quantities (ErrInvalidQuantity)
//  2. Reject when Price x Quantity exceeds cash (ErrInsufficientFunds)
//  3. Debit cash, credit holdings, append a BUY transaction
//
// Nothing is mutated when an error is returned.
func (p *Portfolio) Buy(inst Instrument, quantity int64, id uuid.UUID, at time.Time) (*Transaction, error) {
	tx, err := p.newTransaction(inst, ActionBuy, quantity, id, at)
	if err != nil {
		return nil, err
	}

	cost := tx.Amount()
	if cost.GreaterThan(p.Cash) {
		return nil, fmt.Errorf("%w: buying %d %s costs %s, cash is %s",
			ErrInsufficientFunds, quantity, tx.Symbol, cost.StringFixed(PriceDecimals), p.Cash.StringFixed(PriceDecimals))
	}

	if p.Holdings == nil {
		p.Holdings = make(map[string]int64)
	}
	p.Cash = p.Cash.Sub(cost)
	p.Holdings[tx.Symbol] += quantity
	p.Transactions = append(p.Transactions, *tx)

	return tx, nil
}

// Sell credits cash and debits holdings for quantity units of inst at its current price.
// Logic:
//  1. Reject non-positive quantities (ErrInvalidQuantity)
//  2. Reject when the held quantity is lower than quantity (ErrInsufficientShares)
//  3. Debit holdings (may reach exactly zero), credit cash, append a SELL transaction
//
// Nothing is mutated when an error is returned.
func (p *Portfolio) Sell(inst Instrument, quantity int64, id uuid.UUID, at time.Time) (*Transaction, error) {
	tx, err := p.newTransaction(inst, ActionSell, quantity, id, at)
	if err != nil {
		return nil, err
	}

	held := p.Holdings[tx.Symbol]
	if held < quantity {
		return nil, fmt.Errorf("%w: selling %d %s, holding %d",
			ErrInsufficientShares, quantity, tx.Symbol, held)
	}

	p.Holdings[tx.Symbol] = held - quantity
	p.Cash = p.Cash.Add(tx.Amount())
	p.Transactions = append(p.Transactions, *tx)

	return tx, nil
}

// newTransaction builds and validates the transaction a trade would record
func (p *Portfolio) newTransaction(inst Instrument, action Action, quantity int64, id uuid.UUID, at time.Time) (*Transaction, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, quantity)
	}

	tx := &Transaction{
		ID:        id,
		Symbol:    NormalizeSymbol(inst.Symbol),
		Action:    action,
		Quantity:  quantity,
		Price:     inst.Price,
		Timestamp: at,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s transaction: %w", action, err)
	}

	return tx, nil
}

// History returns a copy of the transactions, oldest first
func (p *Portfolio) History() []Transaction {
	return slices.Clone(p.Transactions)
}

// Clone returns a deep copy of the portfolio
func (p *Portfolio) Clone() *Portfolio {
	holdings := maps.Clone(p.Holdings)
	if holdings == nil {
		holdings = make(map[string]int64)
	}
	transactions := slices.Clone(p.Transactions)
	if transactions == nil {
		transactions = make([]Transaction, 0)
	}

	return &Portfolio{
		StartingCash: p.StartingCash,
		Cash:         p.Cash,
		Holdings:     holdings,
		Transactions: transactions,
	}
}

// Validate ensures the portfolio adheres to domain rules
// Returns an error if validation fails
// CRITICAL: Replaying the transactions from StartingCash must reproduce Cash and Holdings exactly
func (p *Portfolio) Validate() error {
	if p.StartingCash.IsNegative() {
		return errors.New("starting cash cannot be negative")
	}

	if p.Cash.IsNegative() {
		return errors.New("cash cannot be negative")
	}

	for symbol, qty := range p.Holdings {
		if symbol == "" || symbol != NormalizeSymbol(symbol) {
			return fmt.Errorf("holding symbol %q is not normalized", symbol)
		}
		if qty < 0 {
			return fmt.Errorf("holding for %s cannot be negative", symbol)
		}
	}

	// Replay the history and compare with the recorded balances
	cash := p.StartingCash
	replayed := make(map[string]int64)
	for i := range p.Transactions {
		tx := &p.Transactions[i]
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}

		switch tx.Action {
		case ActionBuy:
			cash = cash.Sub(tx.Amount())
			if cash.IsNegative() {
				return fmt.Errorf("transaction %d: buy overdraws cash", i)
			}
			replayed[tx.Symbol] += tx.Quantity
		case ActionSell:
			if replayed[tx.Symbol] < tx.Quantity {
				return fmt.Errorf("transaction %d: sell exceeds holdings of %s", i, tx.Symbol)
			}
			replayed[tx.Symbol] -= tx.Quantity
			cash = cash.Add(tx.Amount())
		}
	}

	if !cash.Equal(p.Cash) {
		return fmt.Errorf("cash %s does not match transaction history (%s)", p.Cash, cash)
	}

	for symbol, qty := range p.Holdings {
		if replayed[symbol] != qty {
			return fmt.Errorf("holding for %s is %d, transaction history gives %d", symbol, qty, replayed[symbol])
		}
	}
	for symbol, qty := range replayed {
		if p.Holdings[symbol] != qty {
			return fmt.Errorf("holding for %s is %d, transaction history gives %d", symbol, p.Holdings[symbol], qty)
		}
	}

	return nil
}
