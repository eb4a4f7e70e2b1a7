package seeder

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
)

// seedInstrument defines the structure for an instrument to be seeded
type seedInstrument struct {
	Symbol string
	Name   string
	Price  string
}

// defaultSeed is the compiled-in market, loaded once per run
var defaultSeed = []seedInstrument{
	{Symbol: "SBI", Name: "State Bank Of India.", Price: "770.00"},
	{Symbol: "ICICI", Name: "ICICI Bank Limited.", Price: "1450.00"},
	{Symbol: "HDFC", Name: "HDFC Bank Limited.", Price: "2000.00"},
	{Symbol: "BSE", Name: "Bombay Stock Exchange.", Price: "2400.00"},
	{Symbol: "PC", Name: "PC Jwelers.", Price: "16.00"},
	{Symbol: "BHL", Name: "Bharat Electronics.", Price: "400.00"},
	{Symbol: "CDSL", Name: "Central Depository Services(India) Limited.", Price: "1700.00"},
	{Symbol: "PVR", Name: "PVR Inox.", Price: "1000.00"},
	{Symbol: "RMD", Name: "Raymond.", Price: "640.00"},
	{Symbol: "CNB", Name: "Canara Bank.", Price: "110.00"},
	{Symbol: "SWG", Name: "Swiggy.", Price: "400.00"},
	{Symbol: "TRL", Name: "Trent.", Price: "5400.00"},
	{Symbol: "IOCL", Name: "Indian Oil Corporation.", Price: "145.00"},
}

// DefaultInstruments returns a fresh copy of the compiled-in seed instruments
func DefaultInstruments() []domain.Instrument {
	instruments := make([]domain.Instrument, 0, len(defaultSeed))
	for _, s := range defaultSeed {
		instruments = append(instruments, domain.Instrument{
			Symbol: s.Symbol,
			Name:   s.Name,
			Price:  decimal.RequireFromString(s.Price),
		})
	}
	return instruments
}
