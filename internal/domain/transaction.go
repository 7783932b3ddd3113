package domain

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Transaction is one imported bank-statement row. This is a domain struct,
// not a storage row; the statement codec and the BigQuery adapter map into
// and out of it.
type Transaction struct {
	ID      uuid.UUID
	Date    civil.Date
	Amount  Money // IN = positive, OUT = negative
	Account Account

	// BucketCode is the budget bucket the user assigned this transaction to.
	// Empty when unallocated.
	BucketCode string

	Description string
	TypeName    string // bank's transaction-type label, e.g. "Direct Debit"

	// Free-text reference fields as supplied by the bank. Auto-matching
	// compares these (right-trimmed) against minted transfer references.
	Reference1 string
	Reference2 string
	Reference3 string
}

// Narrative is the display text for a transaction: the description when
// present, otherwise the bank's transaction-type label, otherwise empty.
func (t Transaction) Narrative() string {
	if t.Description != "" {
		return t.Description
	}
	return t.TypeName
}

// StatementModel is the imported statement for the current period.
type StatementModel struct {
	Transactions []Transaction
}

// Between returns transactions dated within [startIncl, endExcl).
// The half-open window means consecutive periods neither overlap nor gap.
func (s *StatementModel) Between(startIncl, endExcl civil.Date) []Transaction {
	if s == nil {
		return nil
	}
	var out []Transaction
	for _, t := range s.Transactions {
		if !t.Date.Before(startIncl) && t.Date.Before(endExcl) {
			out = append(out, t)
		}
	}
	return out
}
