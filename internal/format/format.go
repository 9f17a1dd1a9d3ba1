package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "02 Jan 2006"

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Price renders a whole-number amount grouped by spaces, e.g. "12 500".
func Price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Currency renders a whole-number amount with a currency symbol or code,
// e.g. "$1,200" or "NOK 1,200".
func Currency(v float64, code string) string {
	p := message.NewPrinter(language.English)
	amount := p.Sprintf("%d", int64(math.Round(v)))
	code = strings.ToUpper(code)
	if sym, ok := currencySymbols[code]; ok {
		return sym + amount
	}
	if code == "" {
		return amount
	}
	return code + " " + amount
}

// Date renders "01 Sep 2025".
func Date(t time.Time) string {
	if t.IsZero() {
		return "Invalid date"
	}
	return t.Format(dateLayout)
}

// DateRange renders "01–05 Sep 2025", "28 Sep – 02 Oct 2025" or
// "30 Dec 2025 – 02 Jan 2026". A missing side renders the other alone.
func DateRange(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "Invalid date"
	case to.IsZero():
		return Date(from)
	case from.IsZero():
		return Date(to)
	}

	if from.Year() != to.Year() {
		return Date(from) + " – " + Date(to)
	}
	if from.Month() != to.Month() {
		return from.Format("02 Jan") + " – " + Date(to)
	}
	return from.Format("02") + "–" + Date(to)
}
