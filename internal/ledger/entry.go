package ledger

import (
	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// Entry is the per-bucket state for one reconciliation line: the opening
// balance carried in, the period's transactions, and the derived closing
// balance. An Entry is owned by exactly one line and is only assembled while
// that line is a draft.
type Entry struct {
	bucket  Bucket
	opening domain.Money
	txns    []*Transaction
}

// NewEntry creates an entry with the bucket definition valid for this period
// and the opening balance carried forward from the previous line.
func NewEntry(bucket Bucket, opening domain.Money) *Entry {
	return &Entry{bucket: bucket, opening: opening}
}

// Bucket returns the bucket definition this entry was reconciled under.
func (e *Entry) Bucket() Bucket { return e.bucket }

// Opening returns the balance carried in from the previous period.
func (e *Entry) Opening() domain.Money { return e.opening }

// Transactions returns the period's transactions in insertion order. The
// returned slice shares the entry's backing array; callers must not modify
// it.
func (e *Entry) Transactions() []*Transaction { return e.txns }

// SetTransactions replaces the entry's transaction list. It is called once
// per reconciliation while the owning line is still a draft.
func (e *Entry) SetTransactions(txns []*Transaction) {
	e.txns = txns
}

// NetAmount is the period's movement: the sum of all transaction amounts,
// excluding the opening balance carry.
func (e *Entry) NetAmount() domain.Money {
	var sum domain.Money
	for _, t := range e.txns {
		sum += t.Amount
	}
	return sum
}

// Balance is the closing balance: opening balance plus the period movement.
func (e *Entry) Balance() domain.Money {
	return e.opening + e.NetAmount()
}

// Validate returns problem messages for this entry, empty when valid.
func (e *Entry) Validate() []string {
	var msgs []string
	if e.bucket.Code == "" {
		msgs = append(msgs, "ledger entry has no bucket code")
	}
	if e.bucket.Account.Name == "" {
		msgs = append(msgs, "ledger entry for "+e.bucket.Code+" has no funding account")
	}
	return msgs
}
