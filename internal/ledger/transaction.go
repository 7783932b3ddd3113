// Package ledger models the ledger book: per-bucket running balances captured
// as dated reconciliation lines. Lines exist in two forms: a DraftLine being
// assembled by the reconciliation engine, and a committed Line stored in the
// Book's history.
package ledger

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// MatchedPrefix marks an auto-match reference that has been consumed. A
// reference is matched at most once; the prefix is the idempotence guard.
const MatchedPrefix = "Matched "

// TransactionKind tags the variants of a ledger transaction. Computations
// switch exhaustively on the tag.
type TransactionKind int

const (
	// OpeningCredit is a balance carried into the period.
	OpeningCredit TransactionKind = iota
	// StatementCredit is a credit taken from the bank statement.
	StatementCredit
	// StatementDebit is a debit taken from the bank statement.
	StatementDebit
	// BudgetAllocation credits the budgeted amount for a bucket funded from
	// the salary account. No bank transfer is needed.
	BudgetAllocation
	// BudgetAllocationWithTransfer credits the budgeted amount for a bucket
	// funded from another account. The user must perform a bank transfer
	// carrying the minted auto-match reference.
	BudgetAllocationWithTransfer
)

func (k TransactionKind) String() string {
	switch k {
	case OpeningCredit:
		return "opening-credit"
	case StatementCredit:
		return "statement-credit"
	case StatementDebit:
		return "statement-debit"
	case BudgetAllocation:
		return "budget-allocation"
	case BudgetAllocationWithTransfer:
		return "budget-allocation-with-transfer"
	default:
		return fmt.Sprintf("TransactionKind(%d)", int(k))
	}
}

// Transaction is one monetary movement inside a bucket for one period.
// Values are immutable after creation with one exception: an unconsumed
// auto-match reference may be stamped once by the next period's
// reconciliation (see StampMatched).
type Transaction struct {
	// ID links back to the statement transaction where one exists. For
	// transfer allocations it is stable across periods once matched.
	ID        uuid.UUID
	Kind      TransactionKind
	Amount    domain.Money // credits positive, debits negative
	Narrative string
	Date      *civil.Date

	// AutoMatchRef is the reference the user must put on the bank transfer.
	// Only BudgetAllocationWithTransfer transactions carry one.
	AutoMatchRef string
}

// NewStatementTransaction maps a statement row into the ledger, preserving
// its identity. The kind follows the sign of the amount.
func NewStatementTransaction(t domain.Transaction) *Transaction {
	kind := StatementCredit
	if t.Amount < 0 {
		kind = StatementDebit
	}
	date := t.Date
	return &Transaction{
		ID:        t.ID,
		Kind:      kind,
		Amount:    t.Amount,
		Narrative: t.Narrative(),
		Date:      &date,
	}
}

// Matched reports whether this transaction's auto-match reference has
// already been consumed.
func (t *Transaction) Matched() bool {
	return strings.HasPrefix(t.AutoMatchRef, MatchedPrefix)
}

// StampMatched records that a statement transaction was matched against this
// transaction's reference: the statement transaction's id is adopted so the
// two stay linked, and the reference is marked consumed. Returns false when
// the reference was already consumed.
func (t *Transaction) StampMatched(statementID uuid.UUID) bool {
	t.ID = statementID
	if t.Matched() {
		return false
	}
	t.AutoMatchRef = MatchedPrefix + t.AutoMatchRef
	return true
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s (%s %s %s %s)", t.Kind, t.Amount, t.Narrative, t.AutoMatchRef, t.ID)
}
