package categorizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		desc     string
		category string
		sub      string
	}{
		{"IFOOD *RESTAURANTE SABOR", CategoryFood, "restaurantes"},
		{"SUPERMERCADO EXTRA", CategoryFood, "supermercado"},
		{"Uber *Trip", CategoryTransport, "aplicativos"},
		{"UBER*TRIP SAO PAULO", CategoryTransport, "aplicativos"},
		{"UBER DO BRASIL", CategoryTransport, "aplicativos"},
		{"Curso de Inglês", CategoryEducation, "cursos"},
		{"POSTO SHELL BR", CategoryTransport, "combustível"},
		{"AMAZON MARKETPLACE", CategoryShopping, "online"},
		{"PIX ENVIADO MARIA", CategoryTransfer, "pix"},
		{"Farmácia São João", CategoryHealth, "farmácia"},
		{"NETFLIX.COM", CategoryEntertainment, "streaming"},
		{"Mensalidade Faculdade", CategoryEducation, "ensino"},
		{"APLICACAO CDB", CategoryInvestments, "renda fixa"},
		{"TARIFA PACOTE SERVICOS", CategoryBankFees, "tarifas"},
		{"IOF COMPRA INTERNACIONAL", CategoryBankFees, "impostos"},
		{"PIX BET365", CategoryGambling, "apostas esportivas"},
		{"PARCELA EMPRESTIMO PESSOAL", CategoryLoans, "empréstimo pessoal"},
		{"ALUGUEL APTO 101", CategoryHousing, "aluguel"},
		{"CALCADOS BELA", CategoryOther, ""},
		{"FAMILIA SOUZA", CategoryOther, ""},
		{"", CategoryOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Categorize(tt.desc, decimal.NewFromInt(10))
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.sub, got.Subcategory)
			if tt.category == CategoryOther {
				assert.Equal(t, FallbackConfidence, got.Confidence)
				assert.Empty(t, got.MatchedKeywords)
			} else {
				assert.Equal(t, MatchedConfidence, got.Confidence)
				assert.NotEmpty(t, got.MatchedKeywords)
			}
		})
	}
}

func TestCategorize_WholeWordKeywords(t *testing.T) {
	tests := []struct {
		desc     string
		category string
	}{
		{"HOTEL UBERLÂNDIA", CategoryOther},
		{"UBERABA AUTO PECAS", CategoryOther},
		{"RECURSO ADMINISTRATIVO", CategoryOther},
		{"CONCURSO PUBLICO INSCRICAO", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.category, Categorize(tt.desc, decimal.NewFromInt(10)).Category)
		})
	}
}

func TestCategorize_LargeTicketShopping(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		amount string
		cat    string
		sub    string
	}{
		{"below threshold", "AMAZON MARKETPLACE", "999.99", CategoryShopping, "online"},
		{"at threshold", "AMAZON MARKETPLACE", "1000", CategoryShopping, LargeTicketSubcategory},
		{"store above threshold", "MAGAZINE LUIZA", "3499.90", CategoryShopping, LargeTicketSubcategory},
		{"other categories keep their subcategory", "ALUGUEL APTO 101", "2500", CategoryHousing, "aluguel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.desc, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.cat, got.Category)
			assert.Equal(t, tt.sub, got.Subcategory)
		})
	}
}

func TestCategorize_CollectsAllKeywordsOfWinningCategory(t *testing.T) {
	got := Categorize("IFOOD RESTAURANTE", decimal.NewFromInt(1))
	assert.Equal(t, []string{"ifood", "restaurante"}, got.MatchedKeywords)
}

func TestCategorize_Deterministic(t *testing.T) {
	a := Categorize("UBER DO BRASIL", decimal.NewFromInt(1))
	b := Categorize("UBER DO BRASIL", decimal.NewFromInt(1))
	assert.Equal(t, a, b)
}

func TestCanonical(t *testing.T) {
	c, ok := Canonical("Alimentacao")
	require.True(t, ok)
	assert.Equal(t, CategoryFood, c)

	c, ok = Canonical(" SAÚDE ")
	require.True(t, ok)
	assert.Equal(t, CategoryHealth, c)

	_, ok = Canonical("groceries")
	assert.False(t, ok)
}

func TestCategorizeAll(t *testing.T) {
	in := []domain.Transaction{
		{Description: "NETFLIX.COM", Amount: decimal.NewFromInt(40), Direction: domain.DirectionDebit},
		{Description: "COMPRA 123", Amount: decimal.NewFromInt(10), Direction: domain.DirectionDebit, Category: "Saúde", Subcategory: "exames"},
		{Description: "COMPRA 456", Amount: decimal.NewFromInt(10), Direction: domain.DirectionDebit, Category: "categoria inventada"},
	}

	out := CategorizeAll(in)
	require.Len(t, out, 3)

	assert.Equal(t, CategoryEntertainment, out[0].Category)
	assert.Equal(t, MatchedConfidence, out[0].CategoryConfidence)

	assert.Equal(t, CategoryHealth, out[1].Category)
	assert.Equal(t, "exames", out[1].Subcategory)
	assert.Equal(t, BackendConfidence, out[1].CategoryConfidence)

	assert.Equal(t, CategoryOther, out[2].Category)
	assert.Equal(t, FallbackConfidence, out[2].CategoryConfidence)

	// Input untouched.
	assert.Empty(t, in[0].Category)
	assert.Equal(t, "Saúde", in[1].Category)

	for _, tx := range out {
		assert.NotEmpty(t, tx.Category)
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Equal(t, CategoryOther, cats[len(cats)-1])
	assert.Len(t, cats, 13)
}
