package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/adapter/repository/storage"
	"github.com/simaogato/stocksim/internal/domain"
)

const (
	// FormatName identifies a stocksim portfolio database
	FormatName = "stocksim/portfolio"
	// FormatVersion is the only schema version this package reads and writes
	FormatVersion = 1
)

// portfolioRepository implements domain.PortfolioRepository on a SQLite database file
type portfolioRepository struct {
	path string
	now  func() time.Time
}

// NewPortfolioRepository creates a repository that stores the portfolio in the database at path
func NewPortfolioRepository(path string) domain.PortfolioRepository {
	return &portfolioRepository{path: path, now: time.Now}
}

// Load reads the stored portfolio
// A missing database file means nothing has been saved yet; it is not created.
func (r *portfolioRepository) Load(ctx context.Context) (*domain.Portfolio, bool, error) {
	if _, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("%w: failed to stat %s: %w", domain.ErrPersistence, r.path, err)
	}

	// An existing file SQLite cannot open is treated like unreadable content
	db, err := NewDB(ctx, r.path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrCorruptState, err)
	}
	defer db.Close()

	p, err := r.read(ctx, db)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", domain.ErrCorruptState, r.path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", domain.ErrCorruptState, r.path, err)
	}

	return p, true, nil
}

// read loads meta, holdings and transactions (in seq order)
func (r *portfolioRepository) read(ctx context.Context, db *DB) (*domain.Portfolio, error) {
	var (
		format                string
		version               int
		startingCash, cashStr string
	)
	err := db.QueryRowContext(ctx,
		`SELECT format, version, starting_cash, cash FROM meta WHERE id = 1`,
	).Scan(&format, &version, &startingCash, &cashStr)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta: %w", err)
	}

	if format != FormatName {
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	start, err := decimal.NewFromString(startingCash)
	if err != nil {
		return nil, fmt.Errorf("invalid starting cash: %w", err)
	}
	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return nil, fmt.Errorf("invalid cash: %w", err)
	}

	p := &domain.Portfolio{
		StartingCash: start,
		Cash:         cash,
		Holdings:     make(map[string]int64),
		Transactions: make([]domain.Transaction, 0),
	}

	holdingRows, err := db.QueryContext(ctx, `SELECT symbol, quantity FROM holdings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer holdingRows.Close()

	for holdingRows.Next() {
		var symbol string
		var qty int64
		if err := holdingRows.Scan(&symbol, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		p.Holdings[symbol] = qty
	}
	if err := holdingRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	txRows, err := db.QueryContext(ctx, `
		SELECT id, symbol, action, quantity, price, executed_at
		FROM transactions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var (
			idStr, symbol, action, priceStr, executedAt string
			qty                                         int64
		)
		if err := txRows.Scan(&idStr, &symbol, &action, &qty, &priceStr, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id %q: %w", idStr, err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("invalid price for transaction %s: %w", idStr, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, executedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp for transaction %s: %w", idStr, err)
		}

		p.Transactions = append(p.Transactions, domain.Transaction{
			ID:        id,
			Symbol:    symbol,
			Action:    domain.Action(action),
			Quantity:  qty,
			Price:     price,
			Timestamp: ts.UTC(),
		})
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return p, nil
}

// Save writes the whole portfolio into a new database file and moves it over the old one
// Logic:
//  1. Create the schema in a temp database next to the target
//  2. Insert meta, holdings and transactions in a single database transaction
//  3. Close the handle, then rename the temp file over the target
func (r *portfolioRepository) Save(ctx context.Context, p *domain.Portfolio) error {
	savedAt := r.now().UTC()

	err := storage.ReplaceFile(r.path, func(tmp string) error {
		return r.write(ctx, tmp, p, savedAt)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save %s: %w", domain.ErrPersistence, r.path, err)
	}

	return nil
}

func (r *portfolioRepository) write(ctx context.Context, path string, p *domain.Portfolio, savedAt time.Time) (err error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO meta (id, format, version, saved_at, starting_cash, cash)
		VALUES (1, ?, ?, ?, ?, ?)`,
		FormatName,
		FormatVersion,
		savedAt.Format(time.RFC3339Nano),
		p.StartingCash.String(),
		p.Cash.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert meta: %w", err)
	}

	for symbol, qty := range p.Holdings {
		_, err = dbTx.ExecContext(ctx, `INSERT INTO holdings (symbol, quantity) VALUES (?, ?)`, symbol, qty)
		if err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", symbol, err)
		}
	}

	insertTxQuery := `
		INSERT INTO transactions (seq, id, symbol, action, quantity, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, tx := range p.Transactions {
		_, err = dbTx.ExecContext(ctx, insertTxQuery,
			i+1,
			tx.ID.String(),
			tx.Symbol,
			string(tx.Action),
			tx.Quantity,
			tx.Price.String(),
			tx.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
