// Package parser holds the deterministic transaction parsers used when the
// reasoning backend is unavailable or untrusted.
package parser

import (
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// TransactionParser converts statement lines into transactions.
// Lines that do not look like transactions are skipped; Parse never fails.
type TransactionParser interface {
	Parse(lines []string) []domain.Transaction
	Bank() domain.BankID
}

// Registry maps a bank to its parser, with a generic parser behind every lookup.
type Registry struct {
	parsers  map[domain.BankID]TransactionParser
	fallback TransactionParser
}

// NewRegistry creates a registry whose lookups fall back to fallback.
func NewRegistry(fallback TransactionParser) *Registry {
	if fallback == nil {
		panic("parser: nil fallback parser")
	}
	return &Registry{
		parsers:  make(map[domain.BankID]TransactionParser),
		fallback: fallback,
	}
}

// Register adds a parser. Panics on duplicate bank.
func (r *Registry) Register(p TransactionParser) {
	if _, ok := r.parsers[p.Bank()]; ok {
		panic("duplicate parser for bank: " + string(p.Bank()))
	}
	r.parsers[p.Bank()] = p
}

// For returns the parser registered for bank, or the generic fallback. Never nil.
func (r *Registry) For(bank domain.BankID) TransactionParser {
	if p, ok := r.parsers[bank]; ok {
		return p
	}
	return r.fallback
}

// Parse runs the parser registered for bank and, when that finds nothing, the generic
// fallback. It returns the transactions and the parser that produced them.
func (r *Registry) Parse(bank domain.BankID, lines []string) ([]domain.Transaction, TransactionParser) {
	p := r.For(bank)
	txs := p.Parse(lines)
	if len(txs) == 0 && p != r.fallback {
		p = r.fallback
		txs = p.Parse(lines)
	}
	return txs, p
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry(&GenericParser{})
	r.Register(&NubankParser{})
	r.Register(&ItauParser{})
	r.Register(&BradescoParser{})
	r.Register(&InterParser{})
	return r
}
