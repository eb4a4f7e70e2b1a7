package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/trading"
	"github.com/simaogato/stocksim/internal/usecase/valuation"
)

// Printer renders core results as text in one display currency
type Printer struct {
	currency *money.Currency
}

// NewPrinter creates a Printer; a nil currency falls back to INR
func NewPrinter(currency *money.Currency) *Printer {
	if currency == nil {
		currency = money.GetCurrency(money.INR)
	}
	return &Printer{currency: currency}
}

// Amount formats a decimal amount with the currency's symbol and grouping
func (p *Printer) Amount(d decimal.Decimal) string {
	minor := d.Shift(int32(p.currency.Fraction)).Round(0)
	return p.currency.Formatter().Format(minor.IntPart())
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Quotes writes the market table
func (p *Printer) Quotes(w io.Writer, quotes []domain.Quote) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Symbol, q.Name, p.Amount(q.Price))
	}
	return tw.Flush()
}

// Confirmation writes the outcome of a trade
func (p *Printer) Confirmation(w io.Writer, c *trading.Confirmation) error {
	verb := "Bought"
	if c.Transaction.Action == domain.ActionSell {
		verb = "Sold"
	}
	_, err := fmt.Fprintf(w, "%s %d %s at %s (total %s). Cash: %s. Now holding %d.\n",
		verb,
		c.Transaction.Quantity,
		c.Transaction.Symbol,
		p.Amount(c.Transaction.Price),
		p.Amount(c.Transaction.Amount()),
		p.Amount(c.Cash),
		c.Held,
	)
	return err
}

// Valuation writes the portfolio positions and totals
func (p *Printer) Valuation(w io.Writer, v *valuation.Valuation) error {
	fmt.Fprintln(w, "Portfolio:")
	if len(v.Positions) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "SYMBOL\tNAME\tQTY\tPRICE\tVALUE")
		for _, pos := range v.Positions {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", pos.Symbol, pos.Name, pos.Quantity, p.Amount(pos.Price), p.Amount(pos.Value))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, "No holdings.")
	}

	_, err := fmt.Fprintf(w, "Cash: %s\nHoldings value: %s\nTotal value: %s\n",
		p.Amount(v.Cash), p.Amount(v.Equity), p.Amount(v.Total))
	return err
}

// History writes the transaction ledger, oldest first
func (p *Printer) History(w io.Writer, txs []domain.Transaction) error {
	fmt.Fprintln(w, "Transaction History:")
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tACTION\tSYMBOL\tQTY\tPRICE\tAMOUNT")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.Action,
			tx.Symbol,
			tx.Quantity,
			p.Amount(tx.Price),
			p.Amount(tx.Amount()),
		)
	}
	return tw.Flush()
}
