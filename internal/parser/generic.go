package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// GenericParser reads any statement whose lines carry a date token and end with an amount:
//
//	15/05/2025 PIX RECEBIDO JOAO 2.500,00
//	16/05 SUPERMERCADO EXTRA 189,90 D
//	17/05;Uber *Trip;-23,50
type GenericParser struct{}

func (p *GenericParser) Bank() domain.BankID {
	return domain.BankUnknown
}

var (
	dateToken   = regexp.MustCompile(`^\d{1,2}/\d{1,2}(?:/\d{2}|/\d{4})?$`)
	amountToken = regexp.MustCompile(`^\(?[-+]?\d[\d.,]*\)?[-+]?$`)
)

func (p *GenericParser) Parse(lines []string) []domain.Transaction {
	year := referenceYear(lines)
	var txs []domain.Transaction
	for _, line := range lines {
		if tx, ok := parseGenericLine(line, year); ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

func parseGenericLine(line string, year int) (domain.Transaction, bool) {
	toks := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ';'
	})

	dateIdx := -1
	for i, tok := range toks {
		if dateToken.MatchString(tok) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return domain.Transaction{}, false
	}
	date, err := brfmt.ParseDate(toks[dateIdx], year)
	if err != nil {
		return domain.Transaction{}, false
	}

	end := len(toks) - 1
	marker := ""
	for end > dateIdx && isMarker(toks[end]) {
		if m := strings.ToUpper(toks[end]); m == "D" || m == "C" {
			marker = m
		}
		end--
	}
	if end <= dateIdx {
		return domain.Transaction{}, false
	}

	tok := toks[end]
	if m := strings.ToUpper(tok[len(tok)-1:]); (m == "D" || m == "C") && len(tok) > 1 {
		marker = m
		tok = tok[:len(tok)-1]
	}
	if !amountToken.MatchString(tok) {
		return domain.Transaction{}, false
	}
	signed, err := brfmt.ParseAmount(tok)
	if err != nil || signed.IsZero() {
		return domain.Transaction{}, false
	}

	descEnd := end
	for descEnd-1 > dateIdx && isCurrencyPrefix(toks[descEnd-1]) {
		if strings.HasPrefix(toks[descEnd-1], "-") {
			signed = signed.Neg()
		}
		descEnd--
	}

	descToks := append(append([]string{}, toks[:dateIdx]...), toks[dateIdx+1:descEnd]...)
	desc := strings.Join(descToks, " ")
	if isBalanceLine(desc) {
		return domain.Transaction{}, false
	}
	if desc == "" {
		desc = brfmt.NotAvailable
	}

	return domain.Transaction{
		Date:        date,
		Description: desc,
		Amount:      signed.Abs(),
		Direction:   directionFor(signed, marker, desc),
	}, true
}

func directionFor(signed decimal.Decimal, marker, desc string) domain.Direction {
	switch {
	case signed.IsNegative():
		return domain.DirectionDebit
	case marker == "C":
		return domain.DirectionCredit
	case marker == "D":
		return domain.DirectionDebit
	}
	return classifyDirection(desc)
}

func isMarker(tok string) bool {
	switch strings.ToUpper(tok) {
	case "D", "C", "R$", "BRL":
		return true
	}
	return false
}

func isCurrencyPrefix(tok string) bool {
	switch strings.ToUpper(tok) {
	case "R$", "-R$", "+R$", "-", "+", "BRL":
		return true
	}
	return false
}
