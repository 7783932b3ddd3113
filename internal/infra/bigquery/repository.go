package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	"github.com/dvloznov/ledger-reconciler/internal/ledger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

const (
	tableLines        = "ledger_lines"
	tableBalances     = "ledger_balances"
	tableAdjustments  = "ledger_adjustments"
	tableEntries      = "ledger_entries"
	tableTransactions = "ledger_transactions"
	tableAssignments  = "ledger_buckets"
	tableTasks        = "ledger_tasks"
)

// Repository stores and loads ledger books in BigQuery.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a repository against a project and dataset.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) table(name string) *bigquery.Table {
	return r.client.Dataset(r.dataset).Table(name)
}

// InsertLine streams one committed line into the five line tables. Lines are
// append-only; nothing is ever updated or deleted.
func (r *Repository) InsertLine(ctx context.Context, bookName string, line *ledger.Line) error {
	lineRow := &LineRow{
		BookName:  bookName,
		LineDate:  line.Date(),
		Remarks:   line.Remarks(),
		CreatedTS: time.Now().UTC(),
	}
	if err := r.table(tableLines).Inserter().Put(ctx, lineRow); err != nil {
		return fmt.Errorf("InsertLine: %s: %w", tableLines, err)
	}

	balanceRows := make([]*BalanceRow, 0, len(line.BankBalances()))
	for _, b := range line.BankBalances() {
		balanceRows = append(balanceRows, &BalanceRow{
			BookName:    bookName,
			LineDate:    line.Date(),
			Account:     b.Account.Name,
			AccountType: string(b.Account.Type),
			Salary:      b.Account.Salary,
			Balance:     b.Balance.Rat(),
		})
	}
	if err := r.table(tableBalances).Inserter().Put(ctx, balanceRows); err != nil {
		return fmt.Errorf("InsertLine: %s: %w", tableBalances, err)
	}

	if adjustments := line.Adjustments(); len(adjustments) > 0 {
		rows := make([]*AdjustmentRow, 0, len(adjustments))
		for _, a := range adjustments {
			rows = append(rows, &AdjustmentRow{
				AdjustmentID: a.ID.String(),
				BookName:     bookName,
				LineDate:     line.Date(),
				Account:      a.Account.Name,
				AccountType:  string(a.Account.Type),
				Salary:       a.Account.Salary,
				Amount:       a.Amount.Rat(),
				Narrative:    a.Narrative,
			})
		}
		if err := r.table(tableAdjustments).Inserter().Put(ctx, rows); err != nil {
			return fmt.Errorf("InsertLine: %s: %w", tableAdjustments, err)
		}
	}

	var entryRows []*EntryRow
	var txnRows []*TransactionRow
	for _, e := range line.Entries() {
		entryRows = append(entryRows, &EntryRow{
			BookName:       bookName,
			LineDate:       line.Date(),
			BucketCode:     e.Bucket().Code,
			Account:        e.Bucket().Account.Name,
			AccountType:    string(e.Bucket().Account.Type),
			Salary:         e.Bucket().Account.Salary,
			OpeningBalance: e.Opening().Rat(),
			ClosingBalance: e.Balance().Rat(),
		})
		for i, t := range e.Transactions() {
			row := &TransactionRow{
				TransactionID: t.ID.String(),
				BookName:      bookName,
				LineDate:      line.Date(),
				BucketCode:    e.Bucket().Code,
				Kind:          t.Kind.String(),
				Amount:        t.Amount.Rat(),
				Narrative:     t.Narrative,
				AutoMatchRef:  t.AutoMatchRef,
				Position:      int64(i),
			}
			if t.Date != nil {
				row.TxnDate = bigquery.NullDate{Date: *t.Date, Valid: true}
			}
			txnRows = append(txnRows, row)
		}
	}
	if err := r.table(tableEntries).Inserter().Put(ctx, entryRows); err != nil {
		return fmt.Errorf("InsertLine: %s: %w", tableEntries, err)
	}
	if len(txnRows) > 0 {
		if err := r.table(tableTransactions).Inserter().Put(ctx, txnRows); err != nil {
			return fmt.Errorf("InsertLine: %s: %w", tableTransactions, err)
		}
	}
	return nil
}

// InsertTasks streams the follow-up tasks generated with a line, so the task
// history stays queryable next to the ledger itself.
func (r *Repository) InsertTasks(ctx context.Context, bookName string, lineDate civil.Date, tasks []task.Task) error {
	rows := make([]*TaskRow, 0, len(tasks))
	for _, t := range tasks {
		switch v := t.(type) {
		case *task.TransferTask:
			rows = append(rows, &TaskRow{
				TaskID:          v.ID.String(),
				BookName:        bookName,
				LineDate:        lineDate,
				Kind:            "transfer",
				Description:     v.Description,
				SystemGenerated: v.SystemGenerated,
				Amount:          v.Amount.Rat(),
				SourceAccount:   v.SourceAccount.Name,
				DestAccount:     v.DestinationAccount.Name,
				BucketCode:      v.BucketCode,
				Reference:       v.Reference,
			})
		case *task.ToDoTask:
			rows = append(rows, &TaskRow{
				TaskID:          v.ID.String(),
				BookName:        bookName,
				LineDate:        lineDate,
				Kind:            "todo",
				Description:     v.Description,
				SystemGenerated: v.SystemGenerated,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := r.table(tableTasks).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTasks: %s: %w", tableTasks, err)
	}
	return nil
}

// InsertAssignment streams one bucket assignment step.
func (r *Repository) InsertAssignment(ctx context.Context, bookName, bucketCode string, account domain.Account, from civil.Date, retired bool) error {
	row := &AssignmentRow{
		BookName:    bookName,
		BucketCode:  bucketCode,
		Account:     account.Name,
		AccountType: string(account.Type),
		Salary:      account.Salary,
		FromDate:    from,
		Retired:     retired,
	}
	if err := r.table(tableAssignments).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertAssignment: %s: %w", tableAssignments, err)
	}
	return nil
}
