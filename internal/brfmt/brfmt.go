// Package brfmt holds the Brazilian text, money and date conventions shared by the
// detector, parsers, categorizer and extractor.
package brfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NotAvailable is the sentinel used for fields a document does not carry.
const NotAvailable = "N/A"

// Fold lowercases s and strips diacritics, so "Salário" and "SALARIO" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// ContainsFold reports whether needle occurs in text, ignoring case and accents.
func ContainsFold(text, needle string) bool {
	n := Fold(needle)
	return n != "" && strings.Contains(Fold(text), n)
}

// IsNotAvailable reports whether s is empty or one of the "missing" sentinels.
func IsNotAvailable(s string) bool {
	switch Fold(strings.TrimSpace(s)) {
	case "", "n/a", "na", "null", "nao disponivel", "-":
		return true
	}
	return false
}

var amountCleaner = strings.NewReplacer(
	"R$", "",
	"r$", "",
	"BRL", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
)

// ParseAmount converts a Brazilian formatted amount ("R$ 1.234,56", "-189,90",
// "(45,00)") into a signed decimal. A single dot followed by exactly three digits is read
// as a thousands separator; "2500.00" style plain decimals are accepted too.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = amountCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, fmt.Errorf("ParseAmount: empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasSuffix(s, "-") {
		negative = !negative
		s = s[:len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, fmt.Errorf("ParseAmount: ambiguous amount %q", raw)
		}
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParseAmount: invalid amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatBRL renders d as "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
}

var shortDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)

// ParseDate parses the date formats found in Brazilian statements. A "DD/MM" token
// takes its year from refYear.
func ParseDate(s string, refYear int) (civil.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	if m := shortDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		d := civil.Date{Year: refYear, Month: time.Month(month), Day: day}
		if d.IsValid() {
			return d, nil
		}
	}
	if d, ok := parseLongDate(s); ok {
		return d, nil
	}
	return civil.Date{}, fmt.Errorf("ParseDate: unrecognized date %q", s)
}

var months = map[string]time.Month{
	"jan": time.January, "fev": time.February, "mar": time.March, "abr": time.April,
	"mai": time.May, "jun": time.June, "jul": time.July, "ago": time.August,
	"set": time.September, "out": time.October, "nov": time.November, "dez": time.December,
}

// MonthFromName maps a Portuguese month name or abbreviation ("maio", "MAI", "março").
func MonthFromName(name string) (time.Month, bool) {
	f := Fold(strings.TrimSpace(name))
	if len(f) < 3 {
		return 0, false
	}
	m, ok := months[f[:3]]
	return m, ok
}

var longDate = regexp.MustCompile(`(?i)^(\d{1,2})\s+(?:de\s+)?([a-zçã]+)\.?\s+(?:de\s+)?(\d{4})$`)

// parseLongDate handles "15 de maio de 2025" and "15 MAI 2025".
func parseLongDate(s string) (civil.Date, bool) {
	m := longDate.FindStringSubmatch(s)
	if m == nil {
		return civil.Date{}, false
	}
	month, ok := MonthFromName(m[2])
	if !ok {
		return civil.Date{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	d := civil.Date{Year: year, Month: month, Day: day}
	return d, d.IsValid()
}
