package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// ItauParser handles Itaú account statements: date, description, value with a
// leading "-" on debits, and an optional running balance.
//
//	15/05 PIX TRANSF JOAO SILVA 15/05 -150,00
//	16/05/2025 SALARIO ACME LTDA 2.500,00 3.120,45
type ItauParser struct{}

func (p *ItauParser) Bank() domain.BankID {
	return domain.BankItau
}

var itauLine = regexp.MustCompile(
	`^(\d{2}/\d{2}(?:/\d{4})?)\s+(.+?)\s+(-?\s?[\d.]+,\d{2})(?:\s+(-?\s?[\d.]+,\d{2}))?\s*$`,
)

func (p *ItauParser) Parse(lines []string) []domain.Transaction {
	year := referenceYear(lines)
	var txs []domain.Transaction
	for _, line := range lines {
		m := itauLine.FindStringSubmatch(strings.ReplaceAll(line, ";", " "))
		if m == nil || isBalanceLine(m[2]) {
			continue
		}
		date, err := brfmt.ParseDate(m[1], year)
		if err != nil {
			continue
		}
		signed, ok := parseMoney(m[3])
		if !ok || signed.IsZero() {
			continue
		}

		dir := domain.DirectionCredit
		if signed.IsNegative() {
			dir = domain.DirectionDebit
		}
		tx := domain.Transaction{
			Date:        date,
			Description: strings.TrimSpace(m[2]),
			Amount:      signed.Abs(),
			Direction:   dir,
		}
		if m[4] != "" {
			if bal, ok := parseMoney(m[4]); ok {
				tx.RunningBalance = decimalPtr(bal)
			}
		}
		txs = append(txs, tx)
	}
	return txs
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
