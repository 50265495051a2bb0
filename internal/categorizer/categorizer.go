// Package categorizer assigns spending categories from description keywords.
package categorizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// Category names. These are the keys of FinancialSummary.CategoryBreakdown.
const (
	CategoryFood          = "alimentação"
	CategoryTransport     = "transporte"
	CategoryShopping      = "compras"
	CategoryTransfer      = "transferência"
	CategoryHealth        = "saúde"
	CategoryEntertainment = "entretenimento"
	CategoryEducation     = "educação"
	CategoryInvestments   = "investimentos"
	CategoryBankFees      = "tarifas bancárias"
	CategoryGambling      = "apostas"
	CategoryLoans         = "empréstimos"
	CategoryHousing       = "moradia"
	CategoryOther         = "outros"
)

const (
	// MatchedConfidence is assigned when a keyword matched.
	MatchedConfidence = 0.85
	// FallbackConfidence is assigned to the "outros" catch-all.
	FallbackConfidence = 0.3
	// BackendConfidence is assigned when no keyword matched but the extraction backend
	// had already named a known category.
	BackendConfidence = 0.6

	// LargeTicketSubcategory replaces the shopping subcategory for purchases of at least
	// LargeTicketAmount.
	LargeTicketSubcategory = "compras de alto valor"
)

// LargeTicketAmount is the smallest purchase filed under LargeTicketSubcategory.
var LargeTicketAmount = decimal.NewFromInt(1000)

// Result is the categorization of one description.
type Result struct {
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory,omitempty"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

type group struct {
	subcategory string
	keywords    []string // folded
}

type rule struct {
	category string
	groups   []group
}

// rules is ordered; the first category with a match wins. The risk-relevant categories
// come first because their merchants also contain generic words ("pix", "pagamento").
// Keywords are matched against the folded description padded with spaces, so " iof "
// only matches the whole word.
var rules = []rule{
	{CategoryGambling, []group{
		{"apostas esportivas", []string{"bet365", "betano", "sportingbet", "pixbet", "estrelabet", "esportes da sorte", "blaze", "aposta"}},
		{"cassino", []string{"cassino", "casino", "fortune tiger"}},
		{"loterias", []string{"loterica", "loteria", "mega sena", "mega-sena"}},
	}},
	{CategoryLoans, []group{
		{"empréstimo pessoal", []string{"emprestimo", "credito pessoal", "consignado"}},
		{"financiamento", []string{"financiamento", "financ veiculo"}},
		{"crédito rotativo", []string{"rotativo", "cheque especial", "juros"}},
	}},
	{CategoryBankFees, []group{
		{"tarifas", []string{"tarifa", "cesta de servicos", "pacote servicos", "taxa de manutencao"}},
		{"anuidade", []string{"anuidade"}},
		{"impostos", []string{" iof "}},
	}},
	{CategoryInvestments, []group{
		{"renda fixa", []string{"cdb", "tesouro direto", " lci ", " lca ", "poupanca"}},
		{"aplicações", []string{"aplicacao", "investimento", "corretora", "xp investimentos", "rico investimentos"}},
	}},
	{CategoryFood, []group{
		{"restaurantes", []string{"ifood", "rappi", "restaurante", "lanchonete", "pizzaria", "padaria", "mcdonalds", "burger king", "churrascaria"}},
		{"supermercado", []string{"supermercado", "mercearia", "hortifruti", "atacadao", "assai", "carrefour", "pao de acucar"}},
	}},
	{CategoryTransport, []group{
		{"aplicativos", []string{" uber ", " uber*", "99app", "99 pop", "cabify"}},
		{"combustível", []string{"posto", "combustivel", "gasolina", "shell", "ipiranga"}},
		{"transporte público", []string{"metro", "onibus", "bilhete unico", "cptm"}},
		{"veículo", []string{"estacionamento", "pedagio", "sem parar"}},
	}},
	{CategoryShopping, []group{
		{"online", []string{"amazon", "mercado livre", "mercadolivre", "shopee", "aliexpress", "magalu", "shein"}},
		{"lojas", []string{"magazine luiza", "americanas", "renner", "riachuelo", "loja", "shopping"}},
	}},
	{CategoryTransfer, []group{
		{"pix", []string{"pix"}},
		{"ted/doc", []string{" ted ", " doc ", "transferencia", " transf "}},
	}},
	{CategoryHealth, []group{
		{"farmácia", []string{"farmacia", "drogaria", "drogasil", "droga raia", "pague menos"}},
		{"serviços médicos", []string{"hospital", "clinica", "laboratorio", "consulta medica", "odonto"}},
		{"plano de saúde", []string{"unimed", " amil ", "hapvida", "plano de saude"}},
	}},
	{CategoryEntertainment, []group{
		{"streaming", []string{"netflix", "spotify", "disney", "hbo", "prime video", "deezer", "youtube premium"}},
		{"lazer", []string{"cinema", "ingresso", "teatro", "steam", "playstation", "xbox"}},
	}},
	{CategoryEducation, []group{
		{"ensino", []string{"escola", "colegio", "faculdade", "universidade", "mensalidade escolar"}},
		{"cursos", []string{" curso", "udemy", "alura", "coursera"}},
		{"livros", []string{"livraria"}},
	}},
	{CategoryHousing, []group{
		{"aluguel", []string{"aluguel", "condominio", "iptu"}},
		{"contas de consumo", []string{"conta de luz", "energia", "enel", "cemig", "copel", "sabesp", "conta de agua", "comgas"}},
		{"telecom", []string{"internet", "vivo", "claro", " tim "}},
	}},
}

// Categories lists every category name in table order, ending with the catch-all.
func Categories() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, CategoryOther)
}

// Canonical maps a free-form category name ("Alimentacao", "SAÚDE") onto a known
// category, or returns ok=false.
func Canonical(name string) (string, bool) {
	folded := brfmt.Fold(strings.TrimSpace(name))
	for _, c := range Categories() {
		if brfmt.Fold(c) == folded {
			return c, true
		}
	}
	return "", false
}

// Categorize classifies a description. amount only matters for shopping, where large
// tickets get their own subcategory.
func Categorize(description string, amount decimal.Decimal) Result {
	folded := " " + brfmt.Fold(description) + " "

	for _, r := range rules {
		var (
			matched []string
			sub     string
		)
		for _, g := range r.groups {
			for _, kw := range g.keywords {
				if strings.Contains(folded, kw) {
					if sub == "" {
						sub = g.subcategory
					}
					matched = append(matched, strings.TrimSpace(kw))
				}
			}
		}
		if len(matched) > 0 {
			if r.category == CategoryShopping && amount.GreaterThanOrEqual(LargeTicketAmount) {
				sub = LargeTicketSubcategory
			}
			return Result{
				Category:        r.category,
				Subcategory:     sub,
				Confidence:      MatchedConfidence,
				MatchedKeywords: matched,
			}
		}
	}

	return Result{Category: CategoryOther, Confidence: FallbackConfidence, MatchedKeywords: []string{}}
}

// CategorizeAll returns a categorized copy of txs; the input slice is not modified.
// When no keyword matches, a known category already set by the extraction backend is
// kept at BackendConfidence.
func CategorizeAll(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		res := Categorize(tx.Description, tx.Amount)
		if res.Category == CategoryOther {
			if known, ok := Canonical(tx.Category); ok && known != CategoryOther {
				res = Result{
					Category:        known,
					Subcategory:     tx.Subcategory,
					Confidence:      BackendConfidence,
					MatchedKeywords: []string{},
				}
			}
		}

		tx.Category = res.Category
		tx.Subcategory = res.Subcategory
		tx.CategoryConfidence = res.Confidence
		tx.MatchedKeywords = append([]string(nil), res.MatchedKeywords...)
		out[i] = tx
	}
	return out
}
