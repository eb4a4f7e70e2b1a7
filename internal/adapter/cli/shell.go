package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/simaogato/stocksim/internal/domain"
	"github.com/simaogato/stocksim/internal/usecase/session"
)

const menu = `
--- Menu ---
1. Display market data
2. Buy stock
3. Sell stock
4. View portfolio
5. View transaction history
6. Update market prices
7. Save & exit
8. Update one share price
9. Save
Choose an option: `

// Shell is the interactive, line-oriented front end of a session
type Shell struct {
	session *session.Session
	printer *Printer
	in      io.Reader
	out     io.Writer

	lines chan string
	done  chan struct{}
}

// NewShell creates a shell reading commands from in and writing to out
func NewShell(s *session.Session, printer *Printer, in io.Reader, out io.Writer) *Shell {
	if printer == nil {
		printer = NewPrinter(nil)
	}
	return &Shell{
		session: s,
		printer: printer,
		in:      in,
		out:     out,
	}
}

// Run drives the menu loop until the session is closed
// End of input and cancellation of ctx both end the session: the portfolio is
// saved and the save error, if any, is returned.
func (sh *Shell) Run(ctx context.Context) error {
	sh.startReader()
	defer close(sh.done)

	fmt.Fprintln(sh.out, "Welcome to Stock Trading Simulator!")
	sh.greet()

	for !sh.session.Closed() {
		fmt.Fprint(sh.out, menu)
		opt, err := sh.readLine(ctx)
		if err != nil {
			fmt.Fprintln(sh.out)
			return sh.exitEarly(ctx, err)
		}

		if err := sh.dispatch(ctx, opt); err != nil {
			if !sh.fail(err) {
				return sh.exitEarly(ctx, err)
			}
		}
	}

	return nil
}

// startReader scans input on its own goroutine so a pending read never blocks cancellation
func (sh *Shell) startReader() {
	sh.lines = make(chan string)
	sh.done = make(chan struct{})

	go func() {
		defer close(sh.lines)
		scanner := bufio.NewScanner(sh.in)
		for scanner.Scan() {
			select {
			case sh.lines <- scanner.Text():
			case <-sh.done:
				return
			}
		}
	}()
}

func (sh *Shell) greet() {
	switch sh.session.Origin() {
	case session.OriginRestored:
		fmt.Fprintln(sh.out, "Restored saved portfolio.")
	case session.OriginRecovered:
		fmt.Fprintln(sh.out, "Saved portfolio could not be read; starting with a fresh one.")
	}
}

// dispatch runs one menu option
func (sh *Shell) dispatch(ctx context.Context, opt string) error {
	switch strings.TrimSpace(opt) {
	case "1":
		quotes, err := sh.session.ListMarket(ctx)
		if err != nil {
			return err
		}
		return sh.printer.Quotes(sh.out, quotes)

	case "2", "3":
		sell := strings.TrimSpace(opt) == "3"
		prompt := "Stock symbol to buy: "
		if sell {
			prompt = "Stock symbol to sell: "
		}
		symbol, err := sh.prompt(ctx, prompt)
		if err != nil {
			return err
		}
		if _, err := sh.session.LookupInstrument(ctx, symbol); err != nil {
			return err
		}
		qtyText, err := sh.prompt(ctx, "Quantity: ")
		if err != nil {
			return err
		}
		qty, err := parseQuantity(qtyText)
		if err != nil {
			return err
		}

		trade := sh.session.Buy
		if sell {
			trade = sh.session.Sell
		}
		c, err := trade(ctx, symbol, qty)
		if err != nil {
			return err
		}
		return sh.printer.Confirmation(sh.out, c)

	case "4":
		v, err := sh.session.ViewPortfolio(ctx)
		if err != nil {
			return err
		}
		return sh.printer.Valuation(sh.out, v)

	case "5":
		txs, err := sh.session.ViewHistory(ctx)
		if err != nil {
			return err
		}
		return sh.printer.History(sh.out, txs)

	case "6":
		if _, err := sh.session.RefreshMarket(ctx); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "Market prices updated.")
		return nil

	case "7":
		if err := sh.session.SaveAndExit(ctx); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "Portfolio saved. Goodbye!")
		return nil

	case "8":
		symbol, err := sh.prompt(ctx, "Stock symbol to update: ")
		if err != nil {
			return err
		}
		q, err := sh.session.RefreshInstrument(ctx, symbol)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%s price updated to %s.\n", q.Symbol, sh.printer.Amount(q.Price))
		return nil

	case "9":
		if err := sh.session.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "Portfolio saved.")
		return nil
	}

	fmt.Fprintln(sh.out, "Invalid option.")
	return nil
}

var (
	errInputClosed = errors.New("input closed")
	errInterrupted = errors.New("interrupted")
)

func (sh *Shell) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(sh.out, text)
	line, err := sh.readLine(ctx)
	if err != nil {
		fmt.Fprintln(sh.out)
		return "", err
	}
	return line, nil
}

// readLine waits for the next input line, the end of input or the cancellation of ctx
func (sh *Shell) readLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", errInterrupted
	}

	select {
	case <-ctx.Done():
		return "", errInterrupted
	case line, ok := <-sh.lines:
		if !ok {
			return "", errInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// fail prints err; it returns false when the session must end
func (sh *Shell) fail(err error) bool {
	if errors.Is(err, errInputClosed) || errors.Is(err, errInterrupted) {
		return false
	}
	fmt.Fprintln(sh.out, describeError(err))
	return true
}

// exitEarly saves and closes the session after the input ended or ctx was cancelled
func (sh *Shell) exitEarly(ctx context.Context, cause error) error {
	if sh.session.Closed() {
		return nil
	}
	// ctx may already be cancelled; the final save still has to run
	if err := sh.session.SaveAndExit(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintln(sh.out, describeError(err))
		return err
	}

	reason := "Input closed."
	if errors.Is(cause, errInterrupted) {
		reason = "Interrupted."
	}
	fmt.Fprintf(sh.out, "%s Portfolio saved. Goodbye!\n", reason)
	return nil
}

// parseQuantity accepts positive whole numbers only
func parseQuantity(s string) (int64, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", domain.ErrInvalidQuantity, s)
	}
	if qty <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidQuantity, qty)
	}
	return qty, nil
}
