package tui

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

// FormatMoney renders an amount with grouped digits and its ISO currency code.
// An unknown code is printed as given.
func FormatMoney(amount decimal.Decimal, code string) string {
	p := message.NewPrinter(language.English)
	f, _ := amount.Round(2).Float64() //nolint:mnd // Cents.

	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	if code == "" {
		return p.Sprintf("%.2f", f)
	}
	return p.Sprintf("%s %.2f", code, f)
}

// FormatCount renders an integer with grouped digits.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatDate renders t as a calendar date, or "-" when zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// FormatPercent renders a fraction such as 0.15 as "15%".
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).Round(1).String() + "%" //nolint:mnd // Percent.
}
