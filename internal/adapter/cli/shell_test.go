package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/adapter/repository/file"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/market"
	"github.com/simaogato/stocksim/internal/usecase/pricing"
	"github.com/simaogato/stocksim/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constSource always draws the same value
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// openSession opens a session on a JSON file in dir; every refresh raises prices by 5%
func openSession(t *testing.T, dir string) *session.Session {
	t.Helper()
	sim, err := pricing.NewSimulator(constSource(1.0), domain.DefaultPriceFloor, pricing.DefaultMaxChange)
	require.NoError(t, err)
	catalog, err := market.NewCatalog([]domain.Instrument{
		{Symbol: "SBI", Name: "State Bank Of India.", Price: dec("770.00")},
		{Symbol: "PC", Name: "PC Jwelers.", Price: dec("16.00")},
	}, sim)
	require.NoError(t, err)

	s, err := session.Open(context.Background(), session.Deps{
		Repository: file.NewPortfolioRepository(filepath.Join(dir, "portfolio.json")),
		Market:     catalog,
		Logger:     discard,
	}, session.Options{StartingCash: dec("10000.00")})
	require.NoError(t, err)
	return s
}

func runScript(t *testing.T, s *session.Session, script string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(s, NewPrinter(money.GetCurrency(money.INR)), strings.NewReader(script), &out)
	err := sh.Run(context.Background())
	return out.String(), err
}

func TestShell_TradeAndSaveScenario(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)

	out, err := runScript(t, s, strings.Join([]string{
		"2", "SBI", "5",
		"3", "sbi", "3",
		"4",
		"5",
		"7",
		"1", // never read: the session is closed
	}, "\n")+"\n")

	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to Stock Trading Simulator!")
	assert.Contains(t, out, "Bought 5 SBI")
	assert.Contains(t, out, "6,150.00")
	assert.Contains(t, out, "Sold 3 SBI")
	assert.Contains(t, out, "8,460.00")
	assert.Contains(t, out, "Transaction History:")
	assert.Contains(t, out, "Portfolio saved. Goodbye!")
	assert.True(t, s.Closed())

	// The next run restores the ledger
	restored := openSession(t, dir)
	assert.Equal(t, session.OriginRestored, restored.Origin())
	history, err := restored.ViewHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionBuy, history[0].Action)
	assert.Equal(t, domain.ActionSell, history[1].Action)

	out, err = runScript(t, restored, "7\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored saved portfolio.")
}

func TestShell_ReportsRejections(t *testing.T) {
	s := openSession(t, t.TempDir())

	out, err := runScript(t, s, strings.Join([]string{
		"2", "XYZ",
		"3", "nope",
		"2", "SBI", "abc",
		"2", "SBI", "-2",
		"2", "SBI", "100",
		"3", "PC", "1",
		"42",
		"7",
	}, "\n")+"\n")

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Invalid symbol."))
	assert.Contains(t, out, "Stock symbol to buy: Invalid symbol.", "unknown symbols are rejected before the quantity prompt")
	assert.Contains(t, out, "Stock symbol to sell: Invalid symbol.")
	assert.Equal(t, 4, strings.Count(out, "Quantity: "))
	assert.Equal(t, 2, strings.Count(out, "Invalid quantity."))
	assert.Contains(t, out, "Insufficient balance.")
	assert.Contains(t, out, "Insufficient shares.")
	assert.Contains(t, out, "Invalid option.")
	assert.True(t, s.Closed())
}

func TestShell_RefreshPrices(t *testing.T) {
	s := openSession(t, t.TempDir())

	out, err := runScript(t, s, "6\n8\npc\n8\nnope\n1\n7\n")

	require.NoError(t, err)
	assert.Contains(t, out, "Market prices updated.")
	assert.Contains(t, out, "PC price updated to")
	assert.Contains(t, out, "17.64")
	assert.Contains(t, out, "808.50")
	assert.Contains(t, out, "Invalid symbol.")
}

func TestShell_EndOfInputSaves(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)

	out, err := runScript(t, s, "2\nPC\n10\n")

	require.NoError(t, err)
	assert.Contains(t, out, "Input closed. Portfolio saved. Goodbye!")
	assert.True(t, s.Closed())

	restored := openSession(t, dir)
	v, err := restored.ViewPortfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, v.Positions, 1)
	assert.Equal(t, int64(10), v.Positions[0].Quantity)
}

func TestShell_EndOfInputMidCommand(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)

	out, err := runScript(t, s, "2\nPC")

	require.NoError(t, err)
	assert.Contains(t, out, "Input closed. Portfolio saved. Goodbye!")
	restored := openSession(t, dir)
	assert.Equal(t, session.OriginRestored, restored.Origin())
	history, err := restored.ViewHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

// lockedBuffer is a bytes.Buffer safe to read while the shell writes to it
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runInteractive starts the shell on a pipe and returns the input writer and the Run result
func runInteractive(t *testing.T, ctx context.Context, s *session.Session, out io.Writer) (*io.PipeWriter, <-chan error) {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	sh := NewShell(s, NewPrinter(money.GetCurrency(money.INR)), pr, out)
	result := make(chan error, 1)
	go func() { result <- sh.Run(ctx) }()
	return pw, result
}

func TestShell_CancelWhileWaitingForInputSaves(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lockedBuffer{}

	pw, result := runInteractive(t, ctx, s, out)
	_, err := io.WriteString(pw, "2\nPC\n3\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "Choose an option") == 2
	}, time.Second, 5*time.Millisecond, "shell should be back at the menu after the trade")

	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Contains(t, out.String(), "Interrupted. Portfolio saved. Goodbye!")
	assert.True(t, s.Closed())

	restored := openSession(t, dir)
	assert.Equal(t, session.OriginRestored, restored.Origin())
	history, err := restored.ViewHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(3), history[0].Quantity)
}

func TestShell_CancelMidCommandSaves(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lockedBuffer{}

	pw, result := runInteractive(t, ctx, s, out)
	_, err := io.WriteString(pw, "2\nPC\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Quantity: ")
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Contains(t, out.String(), "Interrupted. Portfolio saved. Goodbye!")
	assert.FileExists(t, filepath.Join(dir, "portfolio.json"))
}

func TestShell_ExplicitSaveKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, dir)

	out, err := runScript(t, s, "2\nPC\n1\n9\n2\nPC\n1\n7\n")

	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio saved.\n")
	assert.Equal(t, 2, strings.Count(out, "Bought 1 PC"))

	history, err := openSession(t, dir).ViewHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestShell_SaveFailureKeepsSessionOpen(t *testing.T) {
	// The storage directory does not exist, so every save fails
	s := openSession(t, filepath.Join(t.TempDir(), "missing"))

	out, err := runScript(t, s, "7\n4\n")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, out, "Failed to save portfolio")
	assert.Contains(t, out, "Portfolio:", "commands keep working after a failed save")
	assert.False(t, s.Closed())
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: session.ErrSessionClosed, want: "Session is closed."},
		{err: fmt.Errorf("%w: %q", domain.ErrNotFound, "XYZ"), want: "Invalid symbol."},
		{err: fmt.Errorf("%w: got 0", domain.ErrInvalidQuantity), want: "Invalid quantity. Enter a positive whole number."},
		{err: fmt.Errorf("%w: buying", domain.ErrInsufficientFunds), want: "Insufficient balance."},
		{err: fmt.Errorf("%w: selling", domain.ErrInsufficientShares), want: "Insufficient shares."},
		{err: fmt.Errorf("%w: disk full", domain.ErrPersistence), want: "Failed to save portfolio: persistence error: disk full"},
		{err: fmt.Errorf("%w: bad", domain.ErrCorruptState), want: "Stored portfolio is corrupt: corrupt portfolio state: bad"},
		{err: fmt.Errorf("%w: SBI", domain.ErrUnpricedAsset), want: "Cannot value portfolio: unpriced asset: SBI"},
		{err: fmt.Errorf("boom"), want: "Error: boom"},
		{err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: " 12 ", want: 12},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseQuantity(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_Amount(t *testing.T) {
	inr := money.GetCurrency(money.INR)
	p := NewPrinter(inr)

	got := p.Amount(dec("6150"))

	assert.Contains(t, got, "6,150.00")
	assert.Contains(t, got, inr.Grapheme)
	assert.Contains(t, NewPrinter(money.GetCurrency(money.USD)).Amount(dec("1234.5")), "1,234.50")
	assert.Contains(t, NewPrinter(nil).Amount(dec("0.01")), "0.01")
}
