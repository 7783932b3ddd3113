package ledger

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// ErrZeroAdjustment is returned when a balance adjustment of zero is added.
var ErrZeroAdjustment = errors.New("balance adjustment amount cannot be zero")

// Adjustment is a manual correction to a bank balance recorded on a line,
// for example reversing a future-dated transaction or compensating for funds
// moved between accounts.
type Adjustment struct {
	ID        uuid.UUID
	Amount    domain.Money
	Narrative string
	Account   domain.Account
}

// Line is a committed reconciliation snapshot: the as-at date, the bank
// balances on that date, balance adjustments, one Entry per tracked bucket,
// and remarks. A Line is immutable; mutation happens only on a DraftLine
// before Commit. The one exception is auto-match stamping on its
// transactions, which is an idempotent annotation applied by the next
// period's reconciliation.
type Line struct {
	date         civil.Date
	bankBalances []domain.BankBalance
	adjustments  []*Adjustment
	entries      []*Entry
	remarks      string
}

// NewCommittedLine rebuilds a committed line from persisted parts. The
// reconciliation engine never calls this; it is for the storage adapter.
func NewCommittedLine(date civil.Date, balances []domain.BankBalance, adjustments []*Adjustment, entries []*Entry, remarks string) *Line {
	return &Line{
		date:         date,
		bankBalances: balances,
		adjustments:  adjustments,
		entries:      entries,
		remarks:      remarks,
	}
}

// Date is the as-at date of the snapshot.
func (l *Line) Date() civil.Date { return l.date }

// BankBalances returns the per-account balances captured on the line.
func (l *Line) BankBalances() []domain.BankBalance { return l.bankBalances }

// Adjustments returns the balance adjustments recorded on the line.
func (l *Line) Adjustments() []*Adjustment { return l.adjustments }

// Entries returns one entry per tracked bucket.
func (l *Line) Entries() []*Entry { return l.entries }

// Remarks returns the free-text remarks for the line.
func (l *Line) Remarks() string { return l.remarks }

// EntryFor returns the entry for a bucket code. Matching is by code, not by
// funding account, since the account may change between periods.
func (l *Line) EntryFor(code string) (*Entry, bool) {
	for _, e := range l.entries {
		if e.Bucket().Code == code {
			return e, true
		}
	}
	return nil, false
}

// TotalBankBalance is the sum of the captured bank balances.
func (l *Line) TotalBankBalance() domain.Money {
	var sum domain.Money
	for _, b := range l.bankBalances {
		sum += b.Balance
	}
	return sum
}

// TotalAdjustments is the sum of all balance adjustments.
func (l *Line) TotalAdjustments() domain.Money {
	var sum domain.Money
	for _, a := range l.adjustments {
		sum += a.Amount
	}
	return sum
}

// LedgerBalance is the adjusted total across all accounts.
func (l *Line) LedgerBalance() domain.Money {
	return l.TotalBankBalance() + l.TotalAdjustments()
}

// CalculatedSurplus is the money left after every tracked bucket has its
// closing balance funded.
func (l *Line) CalculatedSurplus() domain.Money {
	var entryTotal domain.Money
	for _, e := range l.entries {
		entryTotal += e.Balance()
	}
	return l.LedgerBalance() - entryTotal
}

// SurplusBalances is the per-account surplus: the adjusted bank balance
// minus the closing balances of the buckets funded from that account. The
// per-account figures add up to CalculatedSurplus.
func (l *Line) SurplusBalances() []domain.BankBalance {
	out := make([]domain.BankBalance, 0, len(l.bankBalances))
	for _, b := range l.bankBalances {
		adjusted := b.Balance + l.adjustmentTotalFor(b.Account)
		var funded domain.Money
		for _, e := range l.entries {
			if e.Bucket().Account.Same(b.Account) {
				funded += e.Balance()
			}
		}
		out = append(out, domain.BankBalance{Account: b.Account, Balance: adjusted - funded})
	}
	return out
}

func (l *Line) adjustmentTotalFor(account domain.Account) domain.Money {
	var sum domain.Money
	for _, a := range l.adjustments {
		if a.Account.Same(account) {
			sum += a.Amount
		}
	}
	return sum
}

// Validate returns problem messages for the line, empty when valid.
func (l *Line) Validate() []string {
	var msgs []string
	if len(l.entries) == 0 {
		msgs = append(msgs, fmt.Sprintf("reconciliation line %s contains no entries", l.date))
	}
	for _, e := range l.entries {
		for _, m := range e.Validate() {
			msgs = append(msgs, fmt.Sprintf("line %s: %s", l.date, m))
		}
	}
	return msgs
}

// DraftLine is a reconciliation line still being assembled. Only drafts can
// be mutated; committing yields the immutable Line the Book stores. The
// draft/committed type split replaces the legacy runtime "is new" flag.
type DraftLine struct {
	line Line
}

// NewDraftLine starts a draft for the given as-at date and bank balances.
func NewDraftLine(date civil.Date, balances []domain.BankBalance) *DraftLine {
	return &DraftLine{line: Line{date: date, bankBalances: balances}}
}

// Line exposes the draft's current state for the derived queries. The
// returned value is live: further mutation of the draft is visible through
// it.
func (d *DraftLine) Line() *Line { return &d.line }

// BalanceAdjustment records a manual correction against an account.
// A zero amount is rejected.
func (d *DraftLine) BalanceAdjustment(amount domain.Money, narrative string, account domain.Account) (*Adjustment, error) {
	if amount == 0 {
		return nil, ErrZeroAdjustment
	}
	adj := &Adjustment{
		ID:        uuid.New(),
		Amount:    amount,
		Narrative: narrative,
		Account:   account,
	}
	d.line.adjustments = append(d.line.adjustments, adj)
	return adj, nil
}

// CancelBalanceAdjustment removes an adjustment by id. Unknown ids are a
// no-op.
func (d *DraftLine) CancelBalanceAdjustment(id uuid.UUID) {
	for i, a := range d.line.adjustments {
		if a.ID == id {
			d.line.adjustments = append(d.line.adjustments[:i], d.line.adjustments[i+1:]...)
			return
		}
	}
}

// SetEntries installs the per-bucket entries assembled by the
// reconciliation.
func (d *DraftLine) SetEntries(entries []*Entry) {
	d.line.entries = entries
}

// UpdateRemarks sets the free-text remarks.
func (d *DraftLine) UpdateRemarks(remarks string) {
	d.line.remarks = remarks
}

// UpdateBankBalances replaces the captured bank balances.
func (d *DraftLine) UpdateBankBalances(balances []domain.BankBalance) {
	d.line.bankBalances = balances
}

// Commit finalizes the draft. The draft must be discarded afterwards; the
// returned Line is the only form the Book accepts.
func (d *DraftLine) Commit() *Line {
	return &d.line
}
