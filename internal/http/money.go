package http

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"agenda/internal/core"
)

// MoneyFormatter renders amounts for display in one currency and locale.
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoneyFormatter parses an ISO 4217 code and a BCP 47 locale.
func NewMoneyFormatter(code, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	return &MoneyFormatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// DefaultMoneyFormatter formats euros in English.
func DefaultMoneyFormatter() *MoneyFormatter {
	return &MoneyFormatter{unit: currency.EUR, printer: message.NewPrinter(language.English)}
}

// Format is display-only; arithmetic stays on core.Money.
func (f *MoneyFormatter) Format(m core.Money) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(m.Float64())))
}

type transactionView struct {
	core.Transaction
	Display string `json:"display"`
}

type balanceView struct {
	core.Balance
	Display map[string]string `json:"display"`
}

type monthView struct {
	Year    int         `json:"year"`
	Month   int         `json:"month"`
	Count   int         `json:"count"`
	Balance balanceView `json:"balance"`
}

func (f *MoneyFormatter) transactions(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionView{Transaction: tx, Display: f.Format(tx.Amount)})
	}
	return out
}

func (f *MoneyFormatter) balance(b core.Balance) balanceView {
	return balanceView{
		Balance: b,
		Display: map[string]string{
			"completedIn":  f.Format(b.CompletedIn),
			"completedOut": f.Format(b.CompletedOut),
			"pendingIn":    f.Format(b.PendingIn),
			"pendingOut":   f.Format(b.PendingOut),
			"netBalance":   f.Format(b.Net),
		},
	}
}

func (f *MoneyFormatter) months(ms []core.MonthBalance) []monthView {
	out := make([]monthView, 0, len(ms))
	for _, m := range ms {
		out = append(out, monthView{Year: m.Year, Month: m.Month, Count: m.Count, Balance: f.balance(m.Balance)})
	}
	return out
}
