package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/categorizer"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// Recommendation thresholds, in percent of total debits unless noted.
const (
	concentrationThreshold   = 40
	lowConfidenceThreshold   = 0.5
	foodThreshold            = 30
	transportThreshold       = 20
	largeDebitShareOfCredits = 0.5
	riskCategoryFraudShare   = 30
)

// Fraud flag kinds.
const (
	FlagDuplicateDebit   = "duplicate_debit"
	FlagLargeDebit       = "large_debit"
	FlagHighRiskCategory = "high_risk_category"
)

func recommendations(s domain.FinancialSummary) []string {
	recs := []string{}
	ranked := rankCategories(s.CategoryBreakdown)

	if len(ranked) > 0 {
		top := s.CategoryBreakdown[ranked[0]]
		if top.PercentageOfTotalDebits > concentrationThreshold {
			recs = append(recs, fmt.Sprintf(
				"Seus gastos estão concentrados em %s (%s%% das saídas). Considere rever esse orçamento.",
				ranked[0], formatPct(top.PercentageOfTotalDebits)))
		}
	}

	var uncertain []string
	for _, cat := range ranked {
		if s.CategoryBreakdown[cat].Confidence < lowConfidenceThreshold {
			uncertain = append(uncertain, cat)
		}
	}
	if len(uncertain) > 0 {
		sort.Strings(uncertain)
		recs = append(recs, fmt.Sprintf(
			"A categorização de %s tem baixa confiança; revise essas transações manualmente.",
			strings.Join(uncertain, ", ")))
	}

	recs = append(recs, scoreBand(s.CreditScore))

	if stats, ok := s.CategoryBreakdown[categorizer.CategoryFood]; ok && stats.PercentageOfTotalDebits > foodThreshold {
		recs = append(recs, fmt.Sprintf(
			"Gastos com alimentação representam %s%% das saídas; acima de %d%% merece atenção.",
			formatPct(stats.PercentageOfTotalDebits), foodThreshold))
	}
	if stats, ok := s.CategoryBreakdown[categorizer.CategoryTransport]; ok && stats.PercentageOfTotalDebits > transportThreshold {
		recs = append(recs, fmt.Sprintf(
			"Gastos com transporte representam %s%% das saídas; acima de %d%% merece atenção.",
			formatPct(stats.PercentageOfTotalDebits), transportThreshold))
	}

	if _, ok := s.CategoryBreakdown[categorizer.CategoryInvestments]; !ok {
		recs = append(recs, "Nenhum investimento identificado. Considere reservar parte da renda para investir.")
	}

	recs = append(recs, fmt.Sprintf("Nível de risco %s (pontuação %s).",
		riskLabel(s.RiskLevel), strconv.FormatFloat(s.RiskScore, 'f', 0, 64)))
	return recs
}

func scoreBand(score int) string {
	switch {
	case score >= 750:
		return fmt.Sprintf("Score de crédito excelente (%d). Mantenha o histórico atual.", score)
	case score >= 650:
		return fmt.Sprintf("Score de crédito bom (%d). Pequenos ajustes podem elevá-lo.", score)
	case score >= 550:
		return fmt.Sprintf("Score de crédito regular (%d). Reduza despesas fixas e evite atrasos.", score)
	}
	return fmt.Sprintf("Score de crédito baixo (%d). Priorize quitar dívidas e equilibrar entradas e saídas.", score)
}

func riskLabel(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return "alto"
	case domain.RiskMedium:
		return "médio"
	}
	return "baixo"
}

func insights(txs []domain.Transaction, s domain.FinancialSummary) []string {
	out := []string{}

	ranked := rankCategories(s.CategoryBreakdown)
	if len(ranked) > 0 {
		top := s.CategoryBreakdown[ranked[0]]
		out = append(out, fmt.Sprintf("Maior categoria de gastos: %s (%s, %s%%).",
			ranked[0], brfmt.FormatBRL(top.Total), formatPct(top.PercentageOfTotalDebits)))
	}

	debitCount := 0
	for _, tx := range txs {
		if !tx.IsCredit() {
			debitCount++
		}
	}
	if debitCount > 0 {
		avg := s.TotalDebits.DivRound(decimal.NewFromInt(int64(debitCount)), 2)
		out = append(out, fmt.Sprintf("Ticket médio das saídas: %s.", brfmt.FormatBRL(avg)))
	}

	_, sources := creditProfile(txs)
	out = append(out, fmt.Sprintf("Fontes de renda identificadas: %d.", sources))

	if s.TotalCredits.IsPositive() {
		rate := s.FinalBalance.Div(s.TotalCredits).Mul(decimal.NewFromInt(100)).InexactFloat64()
		out = append(out, fmt.Sprintf("Taxa de poupança: %s%%.", formatPct(rate)))
	}
	return out
}

// FraudFlags reports suspicious patterns. Flags are advisory and never change the score.
func FraudFlags(txs []domain.Transaction, s domain.FinancialSummary) []domain.FraudFlag {
	flags := []domain.FraudFlag{}

	type key struct {
		date   string
		amount string
		desc   string
	}
	counts := make(map[key]int)
	var order []key
	for _, tx := range txs {
		if tx.IsCredit() {
			continue
		}
		k := key{tx.Date.String(), tx.Amount.String(), brfmt.Fold(strings.TrimSpace(tx.Description))}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		if n := counts[k]; n > 1 {
			amount, _ := decimal.NewFromString(k.amount)
			flags = append(flags, domain.FraudFlag{
				Kind:        FlagDuplicateDebit,
				Description: fmt.Sprintf("Débito repetido %dx em %s: %s (%s).", n, k.date, k.desc, brfmt.FormatBRL(amount)),
				Severity:    "medium",
			})
		}
	}

	if s.TotalCredits.IsPositive() {
		limit := s.TotalCredits.Mul(decimal.NewFromFloat(largeDebitShareOfCredits))
		for _, tx := range txs {
			if !tx.IsCredit() && tx.Amount.GreaterThan(limit) {
				flags = append(flags, domain.FraudFlag{
					Kind: FlagLargeDebit,
					Description: fmt.Sprintf("Débito de %s em %s supera 50%% das entradas: %s.",
						brfmt.FormatBRL(tx.Amount), tx.Date.String(), tx.Description),
					Severity: "high",
				})
			}
		}
	}

	for _, cat := range riskCategories {
		if stats, ok := s.CategoryBreakdown[cat]; ok && stats.PercentageOfTotalDebits > riskCategoryFraudShare {
			flags = append(flags, domain.FraudFlag{
				Kind: FlagHighRiskCategory,
				Description: fmt.Sprintf("%s concentra %s%% das saídas.",
					cat, formatPct(stats.PercentageOfTotalDebits)),
				Severity: "high",
			})
		}
	}
	return flags
}

// formatPct renders one decimal place with a comma, e.g. "42,5".
func formatPct(f float64) string {
	return strings.Replace(strconv.FormatFloat(f, 'f', 1, 64), ".", ",", 1)
}
