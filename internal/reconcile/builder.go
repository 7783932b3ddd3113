// Package reconcile implements the monthly reconciliation: carrying bucket
// balances forward, folding in budgeted allocations and statement
// transactions, auto-matching cross-period transfers, and raising follow-up
// tasks for the user.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	"github.com/dvloznov/ledger-reconciler/internal/ledger"
	"github.com/dvloznov/ledger-reconciler/internal/logger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

// Precondition failures. These are fatal to the call; no partial state is
// retained.
var (
	ErrNoLedgerBook    = errors.New("a ledger book must be attached before reconciling")
	ErrNoBankBalances  = errors.New("bank balances are required to reconcile")
	ErrNoBudget        = errors.New("a budget is required to reconcile")
	ErrNoTaskList      = errors.New("a task list is required to reconcile")
	ErrNoSalaryAccount = errors.New("no salary account in the supplied bank balances")
)

// Builder computes one new reconciliation line for its attached Book. It
// never mutates the book; appending the committed line is the caller's
// responsibility.
type Builder struct {
	Book *ledger.Book
}

// NewBuilder returns a builder attached to a ledger book.
func NewBuilder(book *ledger.Book) *Builder {
	return &Builder{Book: book}
}

// CreateReconciliation builds the reconciliation line for the given as-at
// date. The statement may be nil (no transactions are included and no
// matching happens); every other input is required. Follow-up work for the
// user is appended to tasks. The returned draft is fully populated; commit
// and append it once the user accepts it.
func (b *Builder) CreateReconciliation(
	ctx context.Context,
	date civil.Date,
	balances []domain.BankBalance,
	budget *domain.BudgetModel,
	statement *domain.StatementModel,
	tasks *task.List,
) (*ledger.DraftLine, error) {
	if b.Book == nil {
		return nil, ErrNoLedgerBook
	}
	if len(balances) == 0 {
		return nil, ErrNoBankBalances
	}
	if budget == nil {
		return nil, ErrNoBudget
	}
	if tasks == nil {
		return nil, ErrNoTaskList
	}

	log := logger.FromContext(ctx)

	start := b.windowStart(date)
	filtered := statement.Between(start, date)
	prior := b.Book.Latest()

	log.Info().
		Stringer("start_date", start).
		Stringer("reconciliation_date", date).
		Int("statement_transactions", len(filtered)).
		Msg("Starting reconciliation")

	draft := ledger.NewDraftLine(date, balances)

	var entries []*ledger.Entry
	var budgetTransfers []*task.TransferTask
	for _, bucket := range b.Book.Buckets() {
		// The book-level definition wins over the account recorded on the
		// previous entry: the user may have moved the bucket to another
		// account since the last reconciliation.
		if at, ok := b.Book.BucketAt(bucket.Code, date); ok {
			bucket = at
		}

		var priorEntry *ledger.Entry
		var opening domain.Money
		if prior != nil {
			if e, ok := prior.EntryFor(bucket.Code); ok {
				priorEntry = e
				opening = e.Balance()
			}
		}
		entry := ledger.NewEntry(bucket, opening)

		txns, transfer, err := b.includeBudgetedAmount(budget, bucket, date, balances)
		if err != nil {
			return nil, err
		}
		if transfer != nil {
			tasks.Add(transfer)
			budgetTransfers = append(budgetTransfers, transfer)
		}
		txns = append(txns, includeStatementTransactions(bucket, filtered)...)
		txns = b.autoMatchPreviousPeriod(log, date, filtered, priorEntry, txns, tasks)
		entry.SetTransactions(txns)

		entries = append(entries, entry)
	}
	draft.SetEntries(entries)

	b.executeBudgetTransferAdjustments(draft, budgetTransfers)
	b.reverseFutureTransactions(log, draft, statement, date, tasks)
	b.createCrossAccountTransferTasks(log, filtered, entries, tasks)
	b.flagOverdrawnSurpluses(draft, tasks)

	log.Info().
		Int("entries", len(entries)).
		Int("tasks", tasks.Len()).
		Stringer("calculated_surplus", draft.Line().CalculatedSurplus()).
		Msg("Reconciliation complete")

	return draft, nil
}

// windowStart is the inclusive lower bound for statement inclusion: the date
// of the previous line, or one month before the reconciliation date for an
// empty book. Together with the exclusive upper bound this makes consecutive
// periods neither overlap nor gap.
func (b *Builder) windowStart(date civil.Date) civil.Date {
	if latest := b.Book.Latest(); latest != nil {
		return latest.Date()
	}
	return civil.DateOf(date.In(time.UTC).AddDate(0, -1, 0))
}

// includeBudgetedAmount adds the budgeted allocation for a bucket, dated at
// the reconciliation date. Buckets funded from the salary account get a
// plain credit; any other funding account needs a real bank transfer, so a
// reference is minted and a transfer task raised. Disabled buckets allocate
// zero with a warning narrative instead of being skipped, so the user still
// sees the disabled state.
func (b *Builder) includeBudgetedAmount(
	budget *domain.BudgetModel,
	bucket ledger.Bucket,
	date civil.Date,
	balances []domain.BankBalance,
) ([]*ledger.Transaction, *task.TransferTask, error) {
	expense, ok := budget.ExpenseFor(bucket.Code)
	if !ok {
		return nil, nil, nil
	}

	amount := expense.Amount
	if !expense.Bucket.Active {
		amount = 0
	}

	if bucket.Account.Salary {
		narrative := "Budgeted amount"
		if !expense.Bucket.Active {
			narrative = "Warning! Bucket has been disabled."
		}
		txn := &ledger.Transaction{
			ID:        uuid.New(),
			Kind:      ledger.BudgetAllocation,
			Amount:    amount,
			Narrative: narrative,
			Date:      &date,
		}
		return []*ledger.Transaction{txn}, nil, nil
	}

	salary, ok := domain.SalaryAccount(balances)
	if !ok {
		return nil, nil, fmt.Errorf("%w: bucket %s needs a transfer from the salary account", ErrNoSalaryAccount, bucket.Code)
	}

	narrative := "Budget amount must be transferred into this account with a bank transfer, use the reference number for the transfer."
	if !expense.Bucket.Active {
		narrative = "Warning! Bucket has been disabled."
	}
	txn := &ledger.Transaction{
		ID:           uuid.New(),
		Kind:         ledger.BudgetAllocationWithTransfer,
		Amount:       amount,
		Narrative:    narrative,
		Date:         &date,
		AutoMatchRef: newMatchReference(),
	}
	transfer := task.NewTransferTask(
		fmt.Sprintf("Budgeted amount for %s: transfer %s from %s to %s with auto-matching reference: %s",
			bucket.Code, amount, salary.Name, bucket.Account.Name, txn.AutoMatchRef),
		amount, salary, bucket.Account, bucket.Code, txn.AutoMatchRef)
	return []*ledger.Transaction{txn}, transfer, nil
}

// includeStatementTransactions maps the window's statement transactions for
// this bucket into ledger transactions, preserving their identity.
func includeStatementTransactions(bucket ledger.Bucket, filtered []domain.Transaction) []*ledger.Transaction {
	var out []*ledger.Transaction
	for _, t := range filtered {
		if t.BucketCode == bucket.Code {
			out = append(out, ledger.NewStatementTransaction(t))
		}
	}
	return out
}

// transactionsToAutoMatch returns the statement transactions whose
// right-trimmed references equal the minted reference, ordered by ascending
// amount. The ordering is a deliberate, reproducible tie-break for the case
// where one ledger reference faces several statement candidates.
func transactionsToAutoMatch(filtered []domain.Transaction, reference string) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range filtered {
		if refMatches(reference, t.Reference1, t.Reference2, t.Reference3) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount < out[j].Amount })
	return out
}

// autoMatchPreviousPeriod consumes the previous entry's outstanding
// auto-match references against this period's statement transactions. A
// matched statement transaction was already accounted for by last period's
// carried-forward allocation, so its fresh ledger transaction is removed
// from the new list. A reference with no match at all raises a warning task;
// that is a data-quality signal, not a fatal error.
func (b *Builder) autoMatchPreviousPeriod(
	log zerolog.Logger,
	date civil.Date,
	filtered []domain.Transaction,
	priorEntry *ledger.Entry,
	newTxns []*ledger.Transaction,
	tasks *task.List,
) []*ledger.Transaction {
	if priorEntry == nil {
		return newTxns
	}

	for _, priorTxn := range priorEntry.Transactions() {
		if priorTxn.AutoMatchRef == "" || priorTxn.Matched() {
			continue
		}

		candidates := transactionsToAutoMatch(filtered, priorTxn.AutoMatchRef)
		if len(candidates) == 0 {
			log.Warn().
				Str("bucket", priorEntry.Bucket().Code).
				Str("reference", priorTxn.AutoMatchRef).
				Stringer("amount", priorTxn.Amount).
				Msg("Auto-matching found no statement transaction for an outstanding reference")
			tasks.Add(task.NewToDoTask(
				fmt.Sprintf("WARNING: Missing auto-match transaction. Transfer %s with reference %s dated %s to %s. See log for more details.",
					priorTxn.Amount, priorTxn.AutoMatchRef, date.AddDays(-1), priorEntry.Bucket().Account.Name),
				true))
			continue
		}

		for _, st := range candidates {
			log.Info().
				Str("bucket", priorEntry.Bucket().Code).
				Str("reference", priorTxn.AutoMatchRef).
				Str("statement_id", st.ID.String()).
				Msg("Auto-matched a previous period transfer")
			priorTxn.StampMatched(st.ID)

			for i, nt := range newTxns {
				if nt.ID == st.ID {
					log.Info().
						Str("statement_id", st.ID.String()).
						Msg("Removing duplicate ledger transaction after auto-matching")
					newTxns = append(newTxns[:i], newTxns[i+1:]...)
					break
				}
			}
		}
	}
	return newTxns
}

// executeBudgetTransferAdjustments records balance adjustments for the
// budget transfers minted this run: the grouped totals leave the source
// accounts and arrive at the destination accounts. The transfers have tasks
// of their own; the adjustments keep the surplus figures honest until the
// user actions them. Only transfers created by this invocation are read;
// the task list itself is never read back.
func (b *Builder) executeBudgetTransferAdjustments(draft *ledger.DraftLine, transfers []*task.TransferTask) {
	bySource := groupTransferTotals(transfers, func(t *task.TransferTask) domain.Account { return t.SourceAccount })
	for _, g := range bySource {
		if g.total == 0 {
			continue
		}
		// Zero amounts are filtered above, so the error cannot fire.
		draft.BalanceAdjustment(-g.total, "Adjustment for moving budgeted amounts from income account.", g.account) //nolint:errcheck
	}
	byDestination := groupTransferTotals(transfers, func(t *task.TransferTask) domain.Account { return t.DestinationAccount })
	for _, g := range byDestination {
		if g.total == 0 {
			continue
		}
		draft.BalanceAdjustment(g.total, "Adjustment for moving budgeted amounts to destination account.", g.account) //nolint:errcheck
	}
}

type transferGroup struct {
	account domain.Account
	total   domain.Money
}

// groupTransferTotals sums transfer amounts per account, preserving
// first-seen order for reproducible output.
func groupTransferTotals(transfers []*task.TransferTask, accountOf func(*task.TransferTask) domain.Account) []transferGroup {
	var order []string
	totals := make(map[string]*transferGroup)
	for _, t := range transfers {
		acct := accountOf(t)
		g, ok := totals[acct.Name]
		if !ok {
			g = &transferGroup{account: acct}
			totals[acct.Name] = g
			order = append(order, acct.Name)
		}
		g.total += t.Amount
	}
	out := make([]transferGroup, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	return out
}

// reverseFutureTransactions backs out statement transactions dated on or
// after the reconciliation date: they belong to the next period. Credit-card
// accounts and the unallocated-surplus bucket are exempt. Any reversal gets
// a review task.
func (b *Builder) reverseFutureTransactions(
	log zerolog.Logger,
	draft *ledger.DraftLine,
	statement *domain.StatementModel,
	date civil.Date,
	tasks *task.List,
) {
	if statement == nil {
		return
	}
	reversed := false
	for _, t := range statement.Transactions {
		if t.Account.Type == domain.AccountTypeCreditCard {
			continue
		}
		if t.Date.Before(date) || t.BucketCode == domain.SurplusBucketCode || t.Amount == 0 {
			continue
		}
		log.Info().
			Stringer("date", t.Date).
			Stringer("amount", t.Amount).
			Str("account", t.Account.Name).
			Msg("Reversing future-dated statement transaction")
		draft.BalanceAdjustment(-t.Amount, "Remove future transaction for "+t.Date.String(), t.Account) //nolint:errcheck
		reversed = true
	}
	if reversed {
		tasks.Add(task.NewToDoTask("Check auto-generated balance adjustments for future transactions.", true))
	}
}

// createCrossAccountTransferTasks finds debits charged to a different
// account than the one funding their bucket and proposes transfer tasks for
// them. Candidates are independent, so the mapping runs in parallel into a
// per-candidate slot; the proposals are then reconciled sequentially against
// the read-only transaction list to drop pairs that are themselves a manual
// transfer.
func (b *Builder) createCrossAccountTransferTasks(
	log zerolog.Logger,
	filtered []domain.Transaction,
	entries []*ledger.Entry,
	tasks *task.List,
) {
	bucketAccounts := make(map[string]domain.Account, len(entries))
	for _, e := range entries {
		bucketAccounts[e.Bucket().Code] = e.Bucket().Account
	}

	var nonCreditCard []domain.Transaction
	for _, t := range filtered {
		if t.Account.Type != domain.AccountTypeCreditCard {
			nonCreditCard = append(nonCreditCard, t)
		}
	}
	var candidates []domain.Transaction
	for _, t := range nonCreditCard {
		if t.Amount < 0 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return
	}

	proposals := make([]*task.TransferTask, len(candidates))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				t := candidates[i]
				ledgerAccount, tracked := bucketAccounts[t.BucketCode]
				if !tracked || ledgerAccount.Same(t.Account) {
					continue
				}
				reference := newMatchReference()
				proposals[i] = task.NewTransferTask(
					fmt.Sprintf("A %s payment for %s on %s has been made from %s, but funds are stored in %s. Use reference %s",
						t.BucketCode, t.Amount, t.Date, t.Account.Name, ledgerAccount.Name, reference),
					-t.Amount, ledgerAccount, t.Account, t.BucketCode, reference)
			}
		}()
	}
	for i := range candidates {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	for i, proposal := range proposals {
		if proposal == nil {
			continue
		}
		if hasOppositeTransfer(nonCreditCard, candidates[i]) {
			// The pair is itself the manual transfer, not a payment
			// needing one.
			continue
		}
		log.Info().
			Str("bucket", proposal.BucketCode).
			Str("source", proposal.SourceAccount.Name).
			Str("destination", proposal.DestinationAccount.Name).
			Stringer("amount", proposal.Amount).
			Msg("Proposing cross-account transfer")
		tasks.Add(proposal)
	}
}

// hasOppositeTransfer reports whether an opposite-signed transaction exists
// on the same date, bucket, and first reference but a different account.
func hasOppositeTransfer(transactions []domain.Transaction, suspect domain.Transaction) bool {
	for _, t := range transactions {
		if t.Amount == -suspect.Amount &&
			t.Date == suspect.Date &&
			t.BucketCode == suspect.BucketCode &&
			!t.Account.Same(suspect.Account) &&
			t.Reference1 == suspect.Reference1 {
			return true
		}
	}
	return false
}

// flagOverdrawnSurpluses raises a review task for every account whose
// surplus went negative: one or more buckets on that account are overdrawn
// and a transfer probably needs to be made by hand.
func (b *Builder) flagOverdrawnSurpluses(draft *ledger.DraftLine, tasks *task.List) {
	for _, s := range draft.Line().SurplusBalances() {
		if s.Balance < 0 {
			tasks.Add(task.NewToDoTask(
				fmt.Sprintf("%s has a negative surplus balance %s, there must be one or more transfers to action.",
					s.Account.Name, s.Balance),
				true))
		}
	}
}
