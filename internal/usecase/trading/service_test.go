package trading

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInstrumentLookup is a mock implementation of InstrumentLookup for testing
type MockInstrumentLookup struct {
	mock.Mock
}

func (m *MockInstrumentLookup) Lookup(symbol string) (domain.Instrument, error) {
	args := m.Called(symbol)
	return args.Get(0).(domain.Instrument), args.Error(1)
}

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.FixedZone("IST", 5*3600+1800))

func newService(t *testing.T, lookup InstrumentLookup, cash string) *TradingService {
	t.Helper()
	p, err := domain.NewPortfolio(decimal.RequireFromString(cash))
	require.NoError(t, err)

	s, err := NewTradingService(lookup, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	s.Clock = func() time.Time { return fixedNow }
	return s
}

func sbi() domain.Instrument {
	return domain.Instrument{Symbol: "SBI", Name: "State Bank Of India.", Price: decimal.RequireFromString("770.00")}
}

func TestBuy_StandardFlow(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInstrumentLookup)
	lookup.On("Lookup", "sbi").Return(sbi(), nil)

	service := newService(t, lookup, "10000.00")
	id := uuid.New()
	service.NewID = func() uuid.UUID { return id }

	result, err := service.Buy(ctx, "sbi", 5)

	require.NoError(t, err)
	assert.Equal(t, id, result.Transaction.ID)
	assert.Equal(t, "SBI", result.Transaction.Symbol)
	assert.Equal(t, domain.ActionBuy, result.Transaction.Action)
	assert.Equal(t, int64(5), result.Held)
	assert.True(t, decimal.RequireFromString("6150.00").Equal(result.Cash))
	assert.Equal(t, time.UTC, result.Transaction.Timestamp.Location())
	assert.True(t, fixedNow.Equal(result.Transaction.Timestamp))
	lookup.AssertExpectations(t)
}

func TestSell_StandardFlow(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInstrumentLookup)
	lookup.On("Lookup", "SBI").Return(sbi(), nil)

	service := newService(t, lookup, "10000.00")
	_, err := service.Buy(ctx, "SBI", 5)
	require.NoError(t, err)

	result, err := service.Sell(ctx, "SBI", 3)

	require.NoError(t, err)
	assert.Equal(t, domain.ActionSell, result.Transaction.Action)
	assert.Equal(t, int64(2), result.Held)
	assert.True(t, decimal.RequireFromString("8460.00").Equal(result.Cash))

	history := service.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionBuy, history[0].Action)
	assert.Equal(t, domain.ActionSell, history[1].Action)
}

func TestBuy_UnknownSymbol(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInstrumentLookup)
	lookup.On("Lookup", "XYZ").Return(domain.Instrument{}, fmt.Errorf("%w: %q", domain.ErrNotFound, "XYZ"))

	service := newService(t, lookup, "10000.00")

	_, err := service.Buy(ctx, "XYZ", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Sell(ctx, "XYZ", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, service.History())
}

func TestBuy_Rejections_LeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInstrumentLookup)
	lookup.On("Lookup", "SBI").Return(sbi(), nil)

	service := newService(t, lookup, "1000.00")

	_, err := service.Buy(ctx, "SBI", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = service.Sell(ctx, "SBI", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)

	_, err = service.Buy(ctx, "SBI", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.True(t, decimal.RequireFromString("1000").Equal(service.Portfolio.Cash))
	assert.Empty(t, service.Portfolio.Holdings)
	assert.Empty(t, service.History())
}

func TestNewTradingService_RequiresDependencies(t *testing.T) {
	p, err := domain.NewPortfolio(decimal.Zero)
	require.NoError(t, err)

	_, err = NewTradingService(nil, p, nil)
	assert.Error(t, err)

	_, err = NewTradingService(new(MockInstrumentLookup), nil, nil)
	assert.Error(t, err)

	s, err := NewTradingService(new(MockInstrumentLookup), p, nil)
	require.NoError(t, err)
	assert.NotNil(t, s.logger)
}
