package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "Rs.",
}

// zero-decimal currencies
var wholeUnits = map[string]bool{"JPY": true, "KRW": true}

// FormatMoney renders an amount the way the canvas shows it, e.g. $1,234.50.
func FormatMoney(amount float64, currency string) string {
	return formatDecimal(decimal.NewFromFloat(amount), currency)
}

func formatDecimal(d decimal.Decimal, currency string) string {
	currency = strings.ToUpper(currency)
	places := int32(2)
	if wholeUnits[currency] {
		places = 0
	}
	s := groupThousands(d.Abs().StringFixed(places))

	symbol, ok := currencySymbols[currency]
	switch {
	case ok:
		s = symbol + s
	case currency != "":
		s = currency + " " + s
	}
	if d.IsNegative() && !d.Round(places).IsZero() {
		s = "-" + s
	}
	return s
}

func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// parseAmount reads a user-entered money string such as "1,200.50" or
// "$15". Unparseable input is zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// lineAmount is price*qty plus tax percent on top.
func lineAmount(price decimal.Decimal, qty float64, taxPercent decimal.Decimal) decimal.Decimal {
	base := price.Mul(decimal.NewFromFloat(qty))
	return base.Add(base.Mul(taxPercent).Div(decimal.NewFromInt(100)))
}
