package pricing

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

// DefaultMaxChange is the width of the change interval: draws map to (-5%, +5%)
var DefaultMaxChange = decimal.RequireFromString("0.10")

var half = decimal.RequireFromString("0.5")

// RandomSource produces uniform draws in [0, 1)
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NextPrice computes the next price from the current price and a uniform draw in [0, 1)
// Logic:
//   - change = (draw - 0.5) * maxChange
//   - next   = max(floor, round2(price * (1 + change)))
//
// The result lies in [floor, round2(price * (1 + maxChange/2))]; rounding half away
// from zero can put it up to half a cent above the unrounded upper bound.
// Pure: the same inputs always give the same output.
func NextPrice(price decimal.Decimal, draw float64, floor, maxChange decimal.Decimal) decimal.Decimal {
	change := decimal.NewFromFloat(draw).Sub(half).Mul(maxChange)
	next := price.Mul(decimal.NewFromInt(1).Add(change))
	return decimal.Max(floor, next.Round(domain.PriceDecimals))
}

// Simulator applies NextPrice with draws taken from an injected random source
// It is the only source of non-determinism in the market.
type Simulator struct {
	rng       RandomSource
	floor     decimal.Decimal
	maxChange decimal.Decimal
}

// NewSimulator creates a new Simulator instance
func NewSimulator(rng RandomSource, floor, maxChange decimal.Decimal) (*Simulator, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	if !floor.IsPositive() {
		return nil, errors.New("price floor must be positive")
	}

	if !floor.Equal(floor.Round(domain.PriceDecimals)) {
		return nil, fmt.Errorf("price floor %s has more than %d decimal places", floor, domain.PriceDecimals)
	}

	if !maxChange.IsPositive() || maxChange.GreaterThanOrEqual(decimal.NewFromInt(2)) {
		return nil, errors.New("max change must be between 0 and 2")
	}

	return &Simulator{
		rng:       rng,
		floor:     floor,
		maxChange: maxChange,
	}, nil
}

// NewSeeded creates a Simulator backed by a PCG generator
// A zero seed draws one from the clock, so every run differs.
func NewSeeded(seed uint64, floor, maxChange decimal.Decimal) (*Simulator, error) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewSimulator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), floor, maxChange)
}

// Floor returns the lowest price the simulator produces
func (s *Simulator) Floor() decimal.Decimal {
	return s.floor
}

// Next returns the next price for the given current price
func (s *Simulator) Next(price decimal.Decimal) decimal.Decimal {
	return NextPrice(price, s.rng.Float64(), s.floor, s.maxChange)
}
