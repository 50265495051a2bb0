// Package metrics turns a categorized transaction list into a FinancialSummary:
// totals, category breakdown, credit score, risk level, recommendations, insights and
// fraud flags. Everything here is a pure function of the input.
package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/categorizer"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// Scoring policy.
const (
	BaseScore = 550
	MinScore  = 300
	MaxScore  = 850

	balancePositiveDivisor = 50
	balancePositiveCap     = 150
	balanceNegativeDivisor = 100
	balanceNegativeFloor   = -200
	incomeSourceBonus      = 15
	consistencyCap         = 100
	riskCategoryPenalty    = 2
	investmentMultiplier   = 3
	investmentCap          = 100

	riskHighThreshold   = 50
	riskMediumThreshold = 25
	riskCategoryShare   = 10
)

// riskCategories lower the credit score and raise the risk score.
var riskCategories = []string{
	categorizer.CategoryBankFees,
	categorizer.CategoryGambling,
	categorizer.CategoryLoans,
}

// Compute derives the FinancialSummary of txs. Transactions without a category are
// counted under "outros".
func Compute(txs []domain.Transaction) domain.FinancialSummary {
	credits, debits := totals(txs)
	breakdown := Breakdown(txs)

	s := domain.FinancialSummary{
		TotalCredits:      credits,
		TotalDebits:       debits,
		FinalBalance:      credits.Sub(debits),
		TransactionCount:  len(txs),
		CategoryBreakdown: breakdown,
	}
	s.CreditScore = CreditScore(txs, breakdown)
	s.RiskScore = RiskScore(s.CreditScore, breakdown)
	s.RiskLevel = ClassifyRisk(s.RiskScore, breakdown)
	s.Recommendations = recommendations(s)
	s.Insights = insights(txs, s)
	s.FraudFlags = FraudFlags(txs, s)
	return s
}

func totals(txs []domain.Transaction) (credits, debits decimal.Decimal) {
	credits, debits = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.IsCredit() {
			credits = credits.Add(tx.Amount)
		} else {
			debits = debits.Add(tx.Amount)
		}
	}
	return credits, debits
}

// Breakdown groups debits by category.
func Breakdown(txs []domain.Transaction) map[string]domain.CategoryStats {
	_, totalDebits := totals(txs)

	type acc struct {
		total   decimal.Decimal
		count   int
		confSum float64
	}
	groups := make(map[string]*acc)
	for _, tx := range txs {
		if tx.IsCredit() {
			continue
		}
		cat := categoryOf(tx)
		a, ok := groups[cat]
		if !ok {
			a = &acc{total: decimal.Zero}
			groups[cat] = a
		}
		a.total = a.total.Add(tx.Amount)
		a.count++
		a.confSum += tx.CategoryConfidence
	}

	out := make(map[string]domain.CategoryStats, len(groups))
	for cat, a := range groups {
		stats := domain.CategoryStats{
			Total:         a.total,
			Count:         a.count,
			AverageAmount: a.total.DivRound(decimal.NewFromInt(int64(a.count)), 2),
			Confidence:    a.confSum / float64(a.count),
		}
		if totalDebits.IsPositive() {
			stats.PercentageOfTotalDebits = a.total.Div(totalDebits).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out[cat] = stats
	}
	return out
}

func categoryOf(tx domain.Transaction) string {
	if strings.TrimSpace(tx.Category) == "" {
		return categorizer.CategoryOther
	}
	return tx.Category
}

// CreditScore applies the additive scoring policy and clamps to [300, 850].
func CreditScore(txs []domain.Transaction, breakdown map[string]domain.CategoryStats) int {
	credits, debits := totals(txs)
	balance := credits.Sub(debits).InexactFloat64()

	score := float64(BaseScore)
	if balance > 0 {
		score += math.Min(balance/balancePositiveDivisor, balancePositiveCap)
	} else {
		score += math.Max(balance/balanceNegativeDivisor, balanceNegativeFloor)
	}

	creditAmounts, sources := creditProfile(txs)
	if sources >= 2 {
		score += float64(incomeSourceBonus * (sources - 1))
	}
	if len(creditAmounts) >= 2 {
		score += consistencyBonus(creditAmounts)
	}

	for _, cat := range riskCategories {
		if stats, ok := breakdown[cat]; ok {
			score -= riskCategoryPenalty * stats.PercentageOfTotalDebits
		}
	}
	if stats, ok := breakdown[categorizer.CategoryInvestments]; ok {
		score += math.Min(investmentMultiplier*stats.PercentageOfTotalDebits, investmentCap)
	}

	rounded := int(math.Round(score))
	return max(MinScore, min(MaxScore, rounded))
}

// creditProfile returns the credit amounts and the number of distinct credit descriptions.
func creditProfile(txs []domain.Transaction) ([]float64, int) {
	var amounts []float64
	seen := make(map[string]struct{})
	for _, tx := range txs {
		if !tx.IsCredit() {
			continue
		}
		amounts = append(amounts, tx.Amount.InexactFloat64())
		seen[brfmt.Fold(strings.TrimSpace(tx.Description))] = struct{}{}
	}
	return amounts, len(seen)
}

// consistencyBonus is (1 - coefficient of variation) * 100, kept within [0, 100].
func consistencyBonus(amounts []float64) float64 {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))
	if mean <= 0 {
		return 0
	}
	var sq float64
	for _, a := range amounts {
		sq += (a - mean) * (a - mean)
	}
	cv := math.Sqrt(sq/float64(len(amounts))) / mean
	return math.Max(0, math.Min((1-cv)*100, consistencyCap))
}

// RiskScore accumulates the risk policy points.
func RiskScore(creditScore int, breakdown map[string]domain.CategoryStats) float64 {
	risk := 0.0
	if creditScore < 400 {
		risk += 30
	} else if creditScore < 600 {
		risk += 15
	}

	ranked := rankCategories(breakdown)
	if len(ranked) > 0 {
		top2 := breakdown[ranked[0]].PercentageOfTotalDebits
		if len(ranked) > 1 {
			top2 += breakdown[ranked[1]].PercentageOfTotalDebits
		}
		if top2 > 80 {
			risk += 20
		}
	}

	for _, cat := range riskCategories {
		if stats, ok := breakdown[cat]; ok && stats.PercentageOfTotalDebits > riskCategoryShare {
			risk += stats.PercentageOfTotalDebits
		}
	}
	return risk
}

// RiskLevelFor maps a risk score onto a level.
func RiskLevelFor(risk float64) domain.RiskLevel {
	switch {
	case risk >= riskHighThreshold:
		return domain.RiskHigh
	case risk >= riskMediumThreshold:
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// ClassifyRisk maps the risk score onto a level, raised to at least medium when any
// risk category takes more than 10% of total debits.
func ClassifyRisk(risk float64, breakdown map[string]domain.CategoryStats) domain.RiskLevel {
	level := RiskLevelFor(risk)
	if level != domain.RiskLow {
		return level
	}
	for _, cat := range riskCategories {
		if stats, ok := breakdown[cat]; ok && stats.PercentageOfTotalDebits > riskCategoryShare {
			return domain.RiskMedium
		}
	}
	return level
}

// rankCategories orders categories by total spent, largest first, ties by name.
func rankCategories(breakdown map[string]domain.CategoryStats) []string {
	cats := make([]string, 0, len(breakdown))
	for c := range breakdown {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		ti, tj := breakdown[cats[i]].Total, breakdown[cats[j]].Total
		if !ti.Equal(tj) {
			return ti.GreaterThan(tj)
		}
		return cats[i] < cats[j]
	})
	return cats
}
