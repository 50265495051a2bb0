// Package llmfake provides deterministic llm.Backend test doubles: scripted responses,
// injected failures and a seeded generator of plausible statements. It is only
// imported from tests.
package llmfake

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Backend is a scripted llm.Backend. Each call consumes the next response or error;
// GenerateFunc, when set, takes precedence.
type Backend struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Responses    []string
	Errors       []error

	mu      sync.Mutex
	calls   int
	prompts []string
}

// Scripted returns a backend that replies with responses in order.
func Scripted(responses ...string) *Backend {
	return &Backend{Responses: responses}
}

// Failing returns a backend whose every call fails with err.
func Failing(err error) *Backend {
	return &Backend{GenerateFunc: func(context.Context, string) (string, error) {
		return "", err
	}}
}

// Slow returns a backend that blocks until ctx is done, like a hung provider.
func Slow() *Backend {
	return &Backend{GenerateFunc: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}

func (b *Backend) Name() string {
	return "llmfake"
}

func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	i := b.calls
	b.calls++
	b.prompts = append(b.prompts, prompt)
	b.mu.Unlock()

	if b.GenerateFunc != nil {
		return b.GenerateFunc(ctx, prompt)
	}
	if i < len(b.Errors) && b.Errors[i] != nil {
		return "", b.Errors[i]
	}
	if i < len(b.Responses) {
		return b.Responses[i], nil
	}
	return "", fmt.Errorf("llmfake: no scripted response for call %d", i+1)
}

// Calls reports how many times Generate ran.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Prompts returns a copy of the prompts received so far.
func (b *Backend) Prompts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts...)
}

// StatementOptions shapes a synthetic statement.
type StatementOptions struct {
	Seed         int64
	Bank         string
	Holder       string
	Transactions int
	Confidence   float64
	Month        time.Month
	Year         int
}

var (
	syntheticCredits = []string{"PIX RECEBIDO ACME LTDA", "SALARIO EMPRESA XYZ", "TRANSFERENCIA RECEBIDA JOAO"}
	syntheticDebits  = []string{
		"IFOOD *RESTAURANTE", "UBER *TRIP", "SUPERMERCADO EXTRA", "NETFLIX.COM",
		"FARMACIA DROGASIL", "PIX ENVIADO MARIA", "TARIFA PACOTE SERVICOS", "POSTO SHELL",
	}
)

// Statement renders a plausible extraction payload. The same options always yield the
// same JSON.
func Statement(opts StatementOptions) string {
	if opts.Month == 0 {
		opts.Month = time.May
	}
	if opts.Year == 0 {
		opts.Year = 2025
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	type tx struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Direction   string `json:"direction"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
	}
	txs := make([]tx, 0, opts.Transactions)
	for i := 0; i < opts.Transactions; i++ {
		day := 1 + rng.Intn(28)
		date := time.Date(opts.Year, opts.Month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if i%4 == 0 {
			txs = append(txs, tx{
				Date:        date,
				Description: syntheticCredits[rng.Intn(len(syntheticCredits))],
				Amount:      fmt.Sprintf("%d.%02d", 500+rng.Intn(4500), rng.Intn(100)),
				Direction:   "credit",
				Category:    "N/A",
				Subcategory: "N/A",
			})
			continue
		}
		txs = append(txs, tx{
			Date:        date,
			Description: syntheticDebits[rng.Intn(len(syntheticDebits))],
			Amount:      fmt.Sprintf("%d.%02d", 5+rng.Intn(400), 1+rng.Intn(99)),
			Direction:   "debit",
			Category:    "N/A",
			Subcategory: "N/A",
		})
	}

	payload := map[string]interface{}{
		"bank":          opts.Bank,
		"accountHolder": opts.Holder,
		"period": map[string]string{
			"start": time.Date(opts.Year, opts.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			"end":   time.Date(opts.Year, opts.Month+1, 0, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		},
		"transactions": txs,
		"summary":      map[string]string{"notes": "synthetic statement"},
		"confidence":   opts.Confidence,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("llmfake: marshal statement: %v", err))
	}
	return string(b)
}

// Synthetic returns a backend that answers every call with Statement(opts).
func Synthetic(opts StatementOptions) *Backend {
	body := Statement(opts)
	return &Backend{GenerateFunc: func(context.Context, string) (string, error) {
		return "```json\n" + body + "\n```", nil
	}}
}
