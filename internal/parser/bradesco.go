package parser

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// BradescoParser handles Bradesco account statements. Each row carries a document
// number, the value in either the credit or the debit column, and the balance. The date
// is printed only on the first row of each day.
//
//	15/05/2025 TRANSFERENCIA PIX REM: ACME 1234567 2.500,00 3.100,00
//	CONTA DE LUZ 0045871 -189,90 2.910,10
//
// The balance decides the column when the previous balance is known; otherwise a
// negative value is a debit and unsigned values go through the keyword classifier.
type BradescoParser struct{}

func (p *BradescoParser) Bank() domain.BankID {
	return domain.BankBradesco
}

var (
	bradescoDated = regexp.MustCompile(
		`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(\d{3,})\s+(-?[\d.]+,\d{2})\s+(-?[\d.]+,\d{2})\s*$`,
	)
	bradescoCont = regexp.MustCompile(
		`^(.+?)\s+(\d{3,})\s+(-?[\d.]+,\d{2})\s+(-?[\d.]+,\d{2})\s*$`,
	)
	bradescoOpening = regexp.MustCompile(`(?i)saldo\s+anterior\s+(-?[\d.]+,\d{2})\s*$`)
)

func (p *BradescoParser) Parse(lines []string) []domain.Transaction {
	var (
		txs         []domain.Transaction
		currentDate civil.Date
		haveDate    bool
		prevBalance *decimal.Decimal
	)

	for _, raw := range lines {
		line := strings.ReplaceAll(raw, ";", " ")

		if m := bradescoOpening.FindStringSubmatch(line); m != nil {
			if bal, ok := parseMoney(m[1]); ok {
				prevBalance = decimalPtr(bal)
			}
			continue
		}

		var desc, value, balance string
		if m := bradescoDated.FindStringSubmatch(line); m != nil {
			d, err := brfmt.ParseDate(m[1], 0)
			if err != nil {
				continue
			}
			currentDate, haveDate = d, true
			desc, value, balance = m[2], m[4], m[5]
		} else if m := bradescoCont.FindStringSubmatch(line); m != nil && haveDate {
			desc, value, balance = m[1], m[3], m[4]
		} else {
			continue
		}

		if isBalanceLine(desc) {
			continue
		}
		signed, ok := parseMoney(value)
		if !ok || signed.IsZero() {
			continue
		}
		bal, balOK := parseMoney(balance)

		tx := domain.Transaction{
			Date:        currentDate,
			Description: strings.TrimSpace(desc),
			Amount:      signed.Abs(),
			Direction:   bradescoDirection(signed, desc, prevBalance, bal, balOK),
		}
		if balOK {
			tx.RunningBalance = decimalPtr(bal)
			prevBalance = decimalPtr(bal)
		}
		txs = append(txs, tx)
	}
	return txs
}

func bradescoDirection(signed decimal.Decimal, desc string, prev *decimal.Decimal, bal decimal.Decimal, balOK bool) domain.Direction {
	if prev != nil && balOK {
		amt := signed.Abs()
		switch {
		case prev.Add(amt).Equal(bal):
			return domain.DirectionCredit
		case prev.Sub(amt).Equal(bal):
			return domain.DirectionDebit
		}
	}
	if signed.IsNegative() {
		return domain.DirectionDebit
	}
	return classifyDirection(desc)
}
