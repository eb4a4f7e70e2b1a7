package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

const (
	// FormatName identifies a stocksim portfolio document
	FormatName = "stocksim/portfolio"
	// FormatVersion is the only document version this package reads and writes
	FormatVersion = 1
)

// portfolioRecord is the on-disk shape of a portfolio. Money is kept as decimal strings.
type portfolioRecord struct {
	Format       string              `json:"format"`
	Version      int                 `json:"version"`
	SavedAt      time.Time           `json:"saved_at"`
	StartingCash string              `json:"starting_cash"`
	Cash         string              `json:"cash"`
	Holdings     map[string]int64    `json:"holdings"`
	Transactions []transactionRecord `json:"transactions"`
}

type transactionRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Action    string    `json:"action"`
	Quantity  int64     `json:"quantity"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// encodePortfolio renders p as an indented JSON document
func encodePortfolio(p *domain.Portfolio, savedAt time.Time) ([]byte, error) {
	rec := portfolioRecord{
		Format:       FormatName,
		Version:      FormatVersion,
		SavedAt:      savedAt.UTC(),
		StartingCash: p.StartingCash.String(),
		Cash:         p.Cash.String(),
		Holdings:     make(map[string]int64, len(p.Holdings)),
		Transactions: make([]transactionRecord, 0, len(p.Transactions)),
	}

	for symbol, qty := range p.Holdings {
		rec.Holdings[symbol] = qty
	}

	for _, tx := range p.Transactions {
		rec.Transactions = append(rec.Transactions, transactionRecord{
			ID:        tx.ID.String(),
			Symbol:    tx.Symbol,
			Action:    string(tx.Action),
			Quantity:  tx.Quantity,
			Price:     tx.Price.String(),
			Timestamp: tx.Timestamp,
		})
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode portfolio: %w", err)
	}
	return append(data, '\n'), nil
}

// decodePortfolio parses and validates a portfolio document.
// Every failure is reported as a plain error; the caller classifies it as corrupt state.
func decodePortfolio(data []byte) (*domain.Portfolio, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec portfolioRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}

	if rec.Format != FormatName {
		return nil, fmt.Errorf("unknown format %q", rec.Format)
	}
	if rec.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported version %d", rec.Version)
	}
	if rec.Holdings == nil || rec.Transactions == nil {
		return nil, errors.New("holdings and transactions are required")
	}

	startingCash, err := decimal.NewFromString(rec.StartingCash)
	if err != nil {
		return nil, fmt.Errorf("invalid starting cash: %w", err)
	}
	cash, err := decimal.NewFromString(rec.Cash)
	if err != nil {
		return nil, fmt.Errorf("invalid cash: %w", err)
	}

	p := &domain.Portfolio{
		StartingCash: startingCash,
		Cash:         cash,
		Holdings:     rec.Holdings,
		Transactions: make([]domain.Transaction, 0, len(rec.Transactions)),
	}

	for i, tr := range rec.Transactions {
		id, err := uuid.Parse(tr.ID)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: invalid id: %w", i, err)
		}
		price, err := decimal.NewFromString(tr.Price)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: invalid price: %w", i, err)
		}
		p.Transactions = append(p.Transactions, domain.Transaction{
			ID:        id,
			Symbol:    tr.Symbol,
			Action:    domain.Action(tr.Action),
			Quantity:  tr.Quantity,
			Price:     price,
			Timestamp: tr.Timestamp.UTC(),
		})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
