package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/seeder"
	"github.com/simaogato/stocksim/internal/usecase/session"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Log formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the complete simulator configuration
type Config struct {
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Market    MarketConfig    `yaml:"market"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// PortfolioConfig contains portfolio initialization parameters
type PortfolioConfig struct {
	StartingCash string `yaml:"starting_cash"` // decimal string, e.g. "10000.00"
	Currency     string `yaml:"currency"`      // ISO 4217 code, display only
	Recovery     string `yaml:"recovery"`      // "fresh" or "fail"
}

// MarketConfig contains price simulation parameters
type MarketConfig struct {
	PriceFloor  string             `yaml:"price_floor"`
	MaxChange   string             `yaml:"max_change"`
	Seed        uint64             `yaml:"seed"` // 0 seeds from the clock
	Instruments []InstrumentConfig `yaml:"instruments,omitempty"`
}

// InstrumentConfig describes one seed instrument
type InstrumentConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Price  string `yaml:"price"`
}

// StorageConfig selects where the portfolio is persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			StartingCash: "10000.00",
			Currency:     money.INR,
			Recovery:     string(session.RecoveryFresh),
		},
		Market: MarketConfig{
			PriceFloor: "1.00",
			MaxChange:  "0.10",
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "portfolio.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// LoadFromFile loads configuration from a YAML file
// Fields absent from the file keep their default values; unknown fields are rejected.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	cash, err := c.StartingCash()
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("portfolio.starting_cash cannot be negative")
	}
	if _, err := c.Currency(); err != nil {
		return err
	}
	if _, err := c.RecoveryPolicy(); err != nil {
		return fmt.Errorf("portfolio.recovery: %w", err)
	}

	floor, err := c.PriceFloor()
	if err != nil {
		return err
	}
	if !floor.IsPositive() {
		return fmt.Errorf("market.price_floor must be positive")
	}
	if !floor.Equal(floor.Round(domain.PriceDecimals)) {
		return fmt.Errorf("market.price_floor must have at most %d decimal places", domain.PriceDecimals)
	}
	maxChange, err := c.MaxChange()
	if err != nil {
		return err
	}
	if !maxChange.IsPositive() || maxChange.GreaterThanOrEqual(decimal.NewFromInt(2)) {
		return fmt.Errorf("market.max_change must be between 0 and 2")
	}
	instruments, err := c.SeedInstruments()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(instruments))
	for i := range instruments {
		if err := instruments[i].Validate(floor); err != nil {
			return fmt.Errorf("market.instruments[%d]: %w", i, err)
		}
		if seen[instruments[i].Symbol] {
			return fmt.Errorf("market.instruments[%d]: duplicate symbol %s", i, instruments[i].Symbol)
		}
		seen[instruments[i].Symbol] = true
	}

	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("storage.backend must be '%s' or '%s'", BackendFile, BackendSQLite)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required")
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != FormatText && c.Log.Format != FormatJSON {
		return fmt.Errorf("log.format must be '%s' or '%s'", FormatText, FormatJSON)
	}

	return nil
}

// StartingCash parses portfolio.starting_cash
func (c *Config) StartingCash() (decimal.Decimal, error) {
	return parseDecimal("portfolio.starting_cash", c.Portfolio.StartingCash)
}

// PriceFloor parses market.price_floor
func (c *Config) PriceFloor() (decimal.Decimal, error) {
	return parseDecimal("market.price_floor", c.Market.PriceFloor)
}

// MaxChange parses market.max_change
func (c *Config) MaxChange() (decimal.Decimal, error) {
	return parseDecimal("market.max_change", c.Market.MaxChange)
}

// Currency resolves portfolio.currency to a go-money currency
func (c *Config) Currency() (*money.Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(c.Portfolio.Currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return nil, fmt.Errorf("portfolio.currency: unknown currency %q", c.Portfolio.Currency)
	}
	return cur, nil
}

// RecoveryPolicy parses portfolio.recovery
func (c *Config) RecoveryPolicy() (session.RecoveryPolicy, error) {
	return session.ParseRecoveryPolicy(c.Portfolio.Recovery)
}

// SeedInstruments returns the configured instruments, or the built-in list when none are configured
func (c *Config) SeedInstruments() ([]domain.Instrument, error) {
	if len(c.Market.Instruments) == 0 {
		return seeder.DefaultInstruments(), nil
	}

	instruments := make([]domain.Instrument, 0, len(c.Market.Instruments))
	for i, ic := range c.Market.Instruments {
		price, err := parseDecimal(fmt.Sprintf("market.instruments[%d].price", i), ic.Price)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, domain.Instrument{
			Symbol: domain.NormalizeSymbol(ic.Symbol),
			Name:   strings.TrimSpace(ic.Name),
			Price:  price,
		})
	}

	return instruments, nil
}

// LogLevel parses log.level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the structured logger described by the log section
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format must be '%s' or '%s'", FormatText, FormatJSON)
	}
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", field, value)
	}
	return d, nil
}
