// Package bank classifies the issuer of a financial document.
package bank

import (
	"strings"
	"unicode"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

const (
	// TextConfidence is reported when the issuer was found in the document body.
	TextConfidence = 0.9
	// FileNameConfidence is reported when only the filename named the issuer.
	FileNameConfidence = 0.6
)

type signature struct {
	id          domain.BankID
	displayName string
	keywords    []string // matched against folded document text
	fileTokens  []string // matched against filename tokens
}

// signatures is ordered: fintechs first, whose names are distinctive, then the
// traditional banks whose names also show up as counterparties in other statements.
var signatures = []signature{
	{domain.BankNubank, "Nubank", []string{"nubank", "nu pagamentos", "nu financeira"}, []string{"nubank", "nu"}},
	{domain.BankInter, "Banco Inter", []string{"banco inter", "bancointer", "inter&co", "inter s.a"}, []string{"inter", "bancointer"}},
	{domain.BankC6, "C6 Bank", []string{"c6 bank", "banco c6", "c6bank"}, []string{"c6", "c6bank"}},
	{domain.BankPicPay, "PicPay", []string{"picpay"}, []string{"picpay"}},
	{domain.BankMercadoPago, "Mercado Pago", []string{"mercado pago", "mercadopago"}, []string{"mercadopago"}},
	{domain.BankItau, "Itaú", []string{"itau unibanco", "banco itau", "itau"}, []string{"itau"}},
	{domain.BankBradesco, "Bradesco", []string{"bradesco"}, []string{"bradesco"}},
	{domain.BankSantander, "Santander", []string{"santander"}, []string{"santander"}},
	{domain.BankBB, "Banco do Brasil", []string{"banco do brasil", "bb.com.br"}, []string{"bb", "bancodobrasil"}},
	{domain.BankCaixa, "Caixa Econômica Federal", []string{"caixa economica", "caixa.gov.br"}, []string{"caixa", "cef"}},
}

// Detect identifies the issuer from the document text, then from the filename.
// It never fails: no signal yields domain.UnknownBank().
func Detect(text, fileName string) domain.DetectedBank {
	if text != "" {
		folded := brfmt.Fold(text)
		for _, sig := range signatures {
			if containsAny(folded, sig.keywords) {
				return sig.detected(TextConfidence)
			}
		}
	}

	if fileName != "" {
		tokens := fileNameTokens(fileName)
		for _, sig := range signatures {
			if matchesToken(tokens, sig.fileTokens) {
				return sig.detected(FileNameConfidence)
			}
		}
	}

	return domain.UnknownBank()
}

// FromName maps a free-text bank name (as reported by an extraction backend) or a
// BankID string onto a known bank. Unrecognised names return ok=false.
func FromName(name string) (domain.DetectedBank, bool) {
	folded := brfmt.Fold(strings.TrimSpace(name))
	if folded == "" {
		return domain.UnknownBank(), false
	}
	for _, sig := range signatures {
		if folded == string(sig.id) || containsAny(folded, sig.keywords) || folded == brfmt.Fold(sig.displayName) {
			return sig.detected(TextConfidence), true
		}
	}
	return domain.UnknownBank(), false
}

// DisplayName returns the human-readable name of id.
func DisplayName(id domain.BankID) string {
	for _, sig := range signatures {
		if sig.id == id {
			return sig.displayName
		}
	}
	return domain.UnknownBank().DisplayName
}

func (s signature) detected(confidence float64) domain.DetectedBank {
	return domain.DetectedBank{ID: s.id, DisplayName: s.displayName, Confidence: confidence}
}

func containsAny(folded string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(folded, needle) {
			return true
		}
	}
	return false
}

func fileNameTokens(fileName string) []string {
	return strings.FieldsFunc(brfmt.Fold(fileName), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesToken(tokens, wanted []string) bool {
	for _, tok := range tokens {
		for _, w := range wanted {
			if tok == w {
				return true
			}
		}
	}
	return false
}
