package parser

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// InterParser handles Banco Inter statements, which group items under a long-form
// day header. Debits carry "-R$"; the second value on a line is the balance.
//
//	15 de Maio de 2025 Saldo do dia: R$ 3.120,45
//	Pix recebido: "Cp :18236120-ACME LTDA" R$ 2.500,00 R$ 3.120,45
//	Compra no debito: "NETFLIX.COM" -R$ 39,90 R$ 3.080,55
type InterParser struct{}

func (p *InterParser) Bank() domain.BankID {
	return domain.BankInter
}

var interDayHeader = regexp.MustCompile(`(?i)^(\d{1,2}\s+de\s+[a-zç]+\s+de\s+\d{4})`)

func (p *InterParser) Parse(lines []string) []domain.Transaction {
	var (
		txs     []domain.Transaction
		day     civil.Date
		haveDay bool
	)
	for _, line := range lines {
		line = strings.ReplaceAll(line, ";", " ")
		if m := interDayHeader.FindStringSubmatch(line); m != nil {
			if d, err := brfmt.ParseDate(m[1], 0); err == nil {
				day, haveDay = d, true
			}
			continue
		}
		if !haveDay {
			continue
		}

		locs := moneyPattern.FindAllStringIndex(line, -1)
		if len(locs) == 0 {
			continue
		}
		desc := cleanInterDescription(line[:locs[0][0]])
		if desc == "" || isBalanceLine(desc) {
			continue
		}
		signed, ok := parseMoney(line[locs[0][0]:locs[0][1]])
		if !ok || signed.IsZero() {
			continue
		}

		dir := domain.DirectionCredit
		if signed.IsNegative() {
			dir = domain.DirectionDebit
		}
		tx := domain.Transaction{
			Date:        day,
			Description: desc,
			Amount:      signed.Abs(),
			Direction:   dir,
		}
		if len(locs) > 1 {
			if bal, ok := parseMoney(line[locs[1][0]:locs[1][1]]); ok {
				tx.RunningBalance = decimalPtr(bal)
			}
		}
		txs = append(txs, tx)
	}
	return txs
}

func cleanInterDescription(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, " :-")
}
