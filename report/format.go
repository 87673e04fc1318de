/*
format.go - Display formatting for money, dates and hours

PURPOSE:
  ReportFormatter. Turns decimals and instants into the strings shown on
  payslips, dashboards and exports. Every function is pure: formatting the
  same value twice gives the same string.

CURRENCY:
  Philippine peso, two decimals, grouping and decimal point per locale:
    12345.6  -> "₱12,345.60"   (English)
    12345.6  -> "₱12.345,60"   (German)
    -50      -> "-₱50.00"
  ParseCurrency accepts what Currency produces for the same locale.

DATES:
  Instants render in the civil timezone (UTC+8) regardless of the input's
  location.
*/
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

const (
	PesoSymbol = "₱"

	dateTimeLayout  = "Jan 2, 3:04 PM"
	shortDateLayout = "Jan 2, 2006"
)

// Formatter formats values for display. The zero value uses the peso symbol
// and English separators.
type Formatter struct {
	Symbol string
	Lang   language.Tag
}

// NewFormatter returns the default peso formatter.
func NewFormatter() Formatter {
	return Formatter{Symbol: PesoSymbol, Lang: language.English}
}

func (f Formatter) symbol() string {
	if f.Symbol == "" {
		return PesoSymbol
	}
	return f.Symbol
}

func (f Formatter) printer() *message.Printer {
	tag := f.Lang
	if tag == language.Und {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// separators returns the locale's thousands and decimal separators, read off
// formatted samples.
func (f Formatter) separators() (group, point string) {
	p := f.printer()
	group = firstNonDigitRun(p.Sprintf("%v", number.Decimal(1234567)))
	point = firstNonDigitRun(p.Sprintf("%v", number.Decimal(1.5)))
	if point == "" {
		point = "."
	}
	return group, point
}

func firstNonDigitRun(s string) string {
	start := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if start < 0 {
		return ""
	}
	end := strings.IndexFunc(s[start:], func(r rune) bool { return r >= '0' && r <= '9' })
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

// Currency renders d rounded to centavos with the currency symbol, using the
// locale's grouping and decimal separator.
func (f Formatter) Currency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Mul(decimal.NewFromInt(100)).IntPart()
	_, point := f.separators()
	grouped := f.printer().Sprintf("%v", number.Decimal(whole.IntPart()))
	return fmt.Sprintf("%s%s%s%s%02d", sign, f.symbol(), grouped, point, cents)
}

// ParseCurrency reads an amount written by Currency with the same locale,
// with or without the symbol and grouping.
func (f Formatter) ParseCurrency(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, f.symbol())
	group, point := f.separators()
	if group != "" {
		raw = strings.ReplaceAll(raw, group, "")
	}
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, point, ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse currency %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(2), nil
}

// DateTime renders t like "Mar 10, 8:05 AM" in the civil timezone.
func (f Formatter) DateTime(t time.Time) string { return t.In(civil.Zone).Format(dateTimeLayout) }

// ShortDate renders t like "Mar 10, 2025" in the civil timezone.
func (f Formatter) ShortDate(t time.Time) string { return t.In(civil.Zone).Format(shortDateLayout) }

// Date renders a civil date like ShortDate.
func (f Formatter) Date(d civil.Date) string { return d.Midnight().Format(shortDateLayout) }

// Percent renders a ratio: 0.125 is "12.50%".
func (f Formatter) Percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// Hours renders a duration in hours with two decimals.
func (f Formatter) Hours(h decimal.Decimal) string {
	return h.StringFixed(2) + " hrs"
}
