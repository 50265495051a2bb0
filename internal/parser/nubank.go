package parser

import (
	"strings"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// NubankParser handles Nubank CSV exports.
//
// Card invoice: date,title,amount (older exports add a category column)
//
//	2025-05-16,Padaria Real,12.50
//	2025-05-20,Pagamento recebido,-500.00
//
// Account statement: Data,Valor,Identificador,Descrição
//
//	15/05/2025,2500.00,6650...,Transferência recebida pelo Pix - ACME
//
// Card invoices list purchases as positive amounts, so a negative amount is a credit
// (payment or refund). Account statements use the usual sign. Anything else, such as
// text pulled from a Nubank PDF, goes through the generic parser.
type NubankParser struct{}

func (p *NubankParser) Bank() domain.BankID {
	return domain.BankNubank
}

type nubankLayout struct {
	date, desc, amount int
	invoice            bool
}

func (p *NubankParser) Parse(lines []string) []domain.Transaction {
	for i, line := range lines {
		sep := separatorOf(line)
		layout, ok := detectNubankLayout(splitFields(line, sep))
		if !ok {
			continue
		}
		return parseNubankRows(lines[i+1:], sep, layout)
	}
	return (&GenericParser{}).Parse(lines)
}

func detectNubankLayout(header []string) (nubankLayout, bool) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[brfmt.Fold(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	if d, ok := idx["date"]; ok {
		t, okT := idx["title"]
		a, okA := idx["amount"]
		if okT && okA {
			return nubankLayout{date: d, desc: t, amount: a, invoice: true}, true
		}
	}
	if d, ok := idx["data"]; ok {
		v, okV := idx["valor"]
		desc, okD := idx["descricao"]
		if okV && okD {
			return nubankLayout{date: d, desc: desc, amount: v}, true
		}
	}
	return nubankLayout{}, false
}

func parseNubankRows(rows []string, sep string, layout nubankLayout) []domain.Transaction {
	var txs []domain.Transaction
	for _, row := range rows {
		fields := splitFields(row, sep)
		if len(fields) <= max(layout.date, layout.desc, layout.amount) {
			continue
		}
		date, err := brfmt.ParseDate(fields[layout.date], 0)
		if err != nil {
			continue
		}
		signed, err := brfmt.ParseAmount(fields[layout.amount])
		if err != nil || signed.IsZero() {
			continue
		}

		dir := domain.DirectionCredit
		if signed.IsNegative() {
			dir = domain.DirectionDebit
		}
		if layout.invoice {
			dir = opposite(dir)
		}

		desc := strings.TrimSpace(fields[layout.desc])
		if desc == "" {
			desc = brfmt.NotAvailable
		}
		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: desc,
			Amount:      signed.Abs(),
			Direction:   dir,
		})
	}
	return txs
}

func separatorOf(line string) string {
	if strings.Contains(line, ";") {
		return ";"
	}
	return ","
}

func splitFields(line, sep string) []string {
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(fields[i]), `"`)
	}
	return fields
}

func opposite(d domain.Direction) domain.Direction {
	if d == domain.DirectionCredit {
		return domain.DirectionDebit
	}
	return domain.DirectionCredit
}
