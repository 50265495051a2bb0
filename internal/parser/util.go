package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// Direction keywords, folded. Strong credit words win over debit words, so
// "PAGAMENTO RECEBIDO" is a credit; the weak "credito" only counts when no debit word matched.
var (
	strongCreditKeywords = []string{"deposito", "recebido", "recebida", "salario", "estorn", "rendimento", "resgate"}
	debitKeywords        = []string{"pagamento", "compra", "saque", "pix enviado", "tarifa", "debito", "transferencia enviada"}
	weakCreditKeywords   = []string{"credito"}
)

// classifyDirection infers the direction of an unsigned amount from its description.
// Ambiguous lines default to debit.
func classifyDirection(desc string) domain.Direction {
	folded := brfmt.Fold(desc)
	switch {
	case containsAnyFolded(folded, strongCreditKeywords):
		return domain.DirectionCredit
	case containsAnyFolded(folded, debitKeywords):
		return domain.DirectionDebit
	case containsAnyFolded(folded, weakCreditKeywords):
		return domain.DirectionCredit
	}
	return domain.DirectionDebit
}

func containsAnyFolded(folded string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// isBalanceLine reports running-balance and total rows, which look like transactions but are not.
func isBalanceLine(desc string) bool {
	folded := brfmt.Fold(strings.TrimSpace(desc))
	for _, prefix := range []string{"saldo", "total"} {
		if strings.HasPrefix(folded, prefix) {
			return true
		}
	}
	return false
}

var fullYear = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/(\d{4})\b`)

// referenceYear is the year assigned to "DD/MM" dates: the statement period's end year,
// else the first full date in the document, else the current year.
func referenceYear(lines []string) int {
	if p := ExtractPeriod(lines); !p.IsZero() {
		return p.End.Year
	}
	for _, l := range lines {
		if m := fullYear.FindStringSubmatch(l); m != nil {
			if y, err := strconv.Atoi(m[1]); err == nil {
				return y
			}
		}
	}
	return time.Now().Year()
}

var holderPattern = regexp.MustCompile(`(?i)^\s*(?:titular|nome|cliente)\s*:\s*(.+?)\s*$`)

// ExtractAccountHolder returns the name on a "Titular:", "Nome:" or "Cliente:" line,
// or brfmt.NotAvailable.
func ExtractAccountHolder(lines []string) string {
	for _, l := range lines {
		if m := holderPattern.FindStringSubmatch(strings.ReplaceAll(l, ";", " ")); m != nil {
			return m[1]
		}
	}
	return brfmt.NotAvailable
}

var periodPattern = regexp.MustCompile(`(?i)per[ií]odo[^0-9]*(\d{2}/\d{2}/\d{4})\s*(?:a|at[eé]|-)\s*(\d{2}/\d{2}/\d{4})`)

// ExtractPeriod finds "Período: 01/05/2025 a 31/05/2025". A missing or inverted period
// returns the zero Period.
func ExtractPeriod(lines []string) domain.Period {
	for _, l := range lines {
		m := periodPattern.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		start, err1 := brfmt.ParseDate(m[1], 0)
		end, err2 := brfmt.ParseDate(m[2], 0)
		if err1 != nil || err2 != nil || end.Before(start) {
			continue
		}
		return domain.Period{Start: start, End: end}
	}
	return domain.Period{}
}

// moneyPattern matches Brazilian formatted values such as "1.234,56", "-R$ 39,90" or "R$ -39,90".
var moneyPattern = regexp.MustCompile(`-?\s?(?:R\$\s?)?-?\d{1,3}(?:\.\d{3})*,\d{2}`)

func parseMoney(s string) (decimal.Decimal, bool) {
	d, err := brfmt.ParseAmount(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
