package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// transformModelOutput validates the decoded backend payload and converts it into an
// Extraction. The payload must be decoded with json.Decoder.UseNumber.
func transformModelOutput(raw map[string]interface{}) (*Extraction, error) {
	txAny, ok := raw["transactions"]
	if !ok {
		return nil, fmt.Errorf("transformModelOutput: missing 'transactions' key in model output")
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transformModelOutput: 'transactions' is %T, want array", txAny)
	}

	out := &Extraction{}

	bank, err := getOptionalStringField(raw, "bank")
	if err != nil {
		return nil, err
	}
	if bank != nil {
		out.Bank = *bank
	}
	holder, err := getOptionalStringField(raw, "accountHolder")
	if err != nil {
		return nil, err
	}
	out.AccountHolder = brfmt.NotAvailable
	if holder != nil {
		out.AccountHolder = *holder
	}
	if out.Period, err = getPeriod(raw); err != nil {
		return nil, err
	}
	if out.Summary, err = getSummary(raw); err != nil {
		return nil, err
	}
	if out.Confidence, err = getConfidence(raw); err != nil {
		return nil, err
	}

	refYear := time.Now().Year()
	if !out.Period.IsZero() {
		refYear = out.Period.End.Year
	}

	out.Transactions = make([]domain.Transaction, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transaction %d: element is %T, want object", i, item)
		}
		tx, err := transformTransaction(obj, refYear)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out.Transactions = append(out.Transactions, tx)
	}

	return out, nil
}

func transformTransaction(obj map[string]interface{}, refYear int) (domain.Transaction, error) {
	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	dirStr, err := getStringField(obj, "direction", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	category, err := getStringField(obj, "category", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	subcategory, err := getOptionalStringField(obj, "subcategory")
	if err != nil {
		return domain.Transaction{}, err
	}
	amount, err := getAmountField(obj, "amount")
	if err != nil {
		return domain.Transaction{}, err
	}
	balance, err := getOptionalAmountField(obj, "runningBalance")
	if err != nil {
		return domain.Transaction{}, err
	}

	date, err := brfmt.ParseDate(dateStr, refYear)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	dir, err := parseDirection(dirStr)
	if err != nil {
		return domain.Transaction{}, err
	}
	if amount.IsZero() {
		return domain.Transaction{}, fmt.Errorf("field %q is zero", "amount")
	}

	tx := domain.Transaction{
		Date:           date,
		Description:    strings.TrimSpace(desc),
		Amount:         amount.Abs(),
		Direction:      dir,
		RunningBalance: balance,
	}
	// A category the backend could not assign is left for the categorizer.
	if !brfmt.IsNotAvailable(category) {
		tx.Category = strings.TrimSpace(category)
	}
	if subcategory != nil {
		tx.Subcategory = *subcategory
	}
	return tx, nil
}

func parseDirection(s string) (domain.Direction, error) {
	switch brfmt.Fold(strings.TrimSpace(s)) {
	case "credit", "credito", "entrada", "c":
		return domain.DirectionCredit, nil
	case "debit", "debito", "saida", "d":
		return domain.DirectionDebit, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

func getPeriod(m map[string]interface{}) (domain.Period, error) {
	v, ok := m["period"]
	if !ok || v == nil {
		return domain.Period{}, nil
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		if s, isStr := v.(string); isStr && brfmt.IsNotAvailable(s) {
			return domain.Period{}, nil
		}
		return domain.Period{}, fmt.Errorf("field %q has type %T, want object", "period", v)
	}
	start, err := getOptionalStringField(obj, "start")
	if err != nil {
		return domain.Period{}, err
	}
	end, err := getOptionalStringField(obj, "end")
	if err != nil {
		return domain.Period{}, err
	}
	if start == nil || end == nil {
		return domain.Period{}, nil
	}
	s, err1 := brfmt.ParseDate(*start, 0)
	e, err2 := brfmt.ParseDate(*end, 0)
	if err1 != nil || err2 != nil || e.Before(s) {
		// An unusable period is dropped, not fatal: transactions carry their own dates.
		return domain.Period{}, nil
	}
	return domain.Period{Start: s, End: e}, nil
}

func getSummary(m map[string]interface{}) (map[string]string, error) {
	v, ok := m["summary"]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		if brfmt.IsNotAvailable(val) {
			return nil, nil
		}
		return map[string]string{"notes": val}, nil
	case map[string]interface{}:
		out := make(map[string]string, len(val))
		for k, item := range val {
			switch iv := item.(type) {
			case nil:
				continue
			case string:
				out[k] = iv
			case json.Number:
				out[k] = iv.String()
			default:
				b, err := json.Marshal(iv)
				if err != nil {
					return nil, fmt.Errorf("summary field %q: %w", k, err)
				}
				out[k] = string(b)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want object", "summary", v)
	}
}

// getConfidence reads the backend-reported confidence. Absent means 0; values outside
// 0..1 are a violation.
func getConfidence(m map[string]interface{}) (float64, error) {
	v, ok := m["confidence"]
	if !ok || v == nil {
		return 0, nil
	}
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", "confidence", err)
		}
		f = parsed
	case string:
		if brfmt.IsNotAvailable(val) {
			return 0, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("field %q: invalid number %q", "confidence", val)
		}
		f = d.InexactFloat64()
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", "confidence", v)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("field %q = %v, want 0..1", "confidence", f)
	}
	return f, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

// getOptionalStringField treats null, "" and the "N/A" sentinels as absent.
func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if brfmt.IsNotAvailable(s) {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getAmountField accepts a JSON number or a string, including Brazilian formatting.
func getAmountField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
	}
	return d, nil
}

func getOptionalAmountField(m map[string]interface{}, key string) (*decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, isStr := v.(string); isStr && brfmt.IsNotAvailable(s) {
		return nil, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &d, nil
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		if brfmt.IsNotAvailable(val) {
			return decimal.Zero, fmt.Errorf("value not available")
		}
		return brfmt.ParseAmount(val)
	default:
		return decimal.Zero, fmt.Errorf("has type %T, want number or string", v)
	}
}
