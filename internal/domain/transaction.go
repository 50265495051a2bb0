package domain

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction carries the sign of a transaction. Amounts are always positive.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Transaction represents one normalized statement line.
// Amount is strictly positive; Direction alone encodes whether money came in or went out.
// Category fields are empty until the categorizer runs, which only adds them.
type Transaction struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`

	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory,omitempty"`
	CategoryConfidence float64  `json:"categoryConfidence,omitempty"`
	MatchedKeywords    []string `json:"matchedKeywords,omitempty"`

	RunningBalance *decimal.Decimal `json:"runningBalance,omitempty"` // nil when the statement has no balance column
}

// IsCredit reports whether the transaction brought money in.
func (t Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// Period is the statement coverage window. Zero dates mean "not available".
type Period struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// IsZero reports whether neither bound is known.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

type periodJSON struct {
	Start *civil.Date `json:"start"`
	End   *civil.Date `json:"end"`
}

// MarshalJSON writes unknown bounds as null.
func (p Period) MarshalJSON() ([]byte, error) {
	var out periodJSON
	if !p.Start.IsZero() {
		out.Start = &p.Start
	}
	if !p.End.IsZero() {
		out.End = &p.End
	}
	return json.Marshal(out)
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var in periodJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Period{}
	if in.Start != nil {
		p.Start = *in.Start
	}
	if in.End != nil {
		p.End = *in.End
	}
	return nil
}
