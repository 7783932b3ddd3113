package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	"github.com/dvloznov/ledger-reconciler/internal/ledger"
)

// LoadBook reads a whole ledger book back: the bucket assignment history and
// every committed line, oldest first so the append-only invariant replays
// cleanly.
func (r *Repository) LoadBook(ctx context.Context, bookName string) (*ledger.Book, error) {
	book := ledger.NewBook(bookName)

	if err := r.loadAssignments(ctx, bookName, book); err != nil {
		return nil, err
	}

	lineDates, remarks, err := r.loadLineDates(ctx, bookName)
	if err != nil {
		return nil, err
	}
	if len(lineDates) == 0 {
		return book, nil
	}

	balances, err := r.loadBalances(ctx, bookName)
	if err != nil {
		return nil, err
	}
	adjustments, err := r.loadAdjustments(ctx, bookName)
	if err != nil {
		return nil, err
	}
	entries, err := r.loadEntries(ctx, bookName)
	if err != nil {
		return nil, err
	}

	for _, date := range lineDates {
		line := ledger.NewCommittedLine(date, balances[date], adjustments[date], entries[date], remarks[date])
		if err := book.Append(line); err != nil {
			return nil, fmt.Errorf("LoadBook: replay line %s: %w", date, err)
		}
	}
	return book, nil
}

func (r *Repository) query(ctx context.Context, table, orderBy, bookName string) (*bigquery.RowIterator, error) {
	q := r.client.Query(fmt.Sprintf(
		"SELECT * FROM %s.%s WHERE book_name = @book_name ORDER BY %s",
		r.dataset, table, orderBy))
	q.Parameters = []bigquery.QueryParameter{{Name: "book_name", Value: bookName}}
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return it, nil
}

func (r *Repository) loadAssignments(ctx context.Context, bookName string, book *ledger.Book) error {
	it, err := r.query(ctx, tableAssignments, "bucket_code, from_date ASC", bookName)
	if err != nil {
		return fmt.Errorf("loadAssignments: %w", err)
	}
	for {
		var row AssignmentRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return fmt.Errorf("loadAssignments: %w", err)
		}
		if row.Retired {
			if err := book.RetireBucket(row.BucketCode, row.FromDate); err != nil {
				return fmt.Errorf("loadAssignments: %w", err)
			}
			continue
		}
		account := domain.Account{Name: row.Account, Type: domain.AccountType(row.AccountType), Salary: row.Salary}
		if err := book.AssignBucket(row.BucketCode, account, row.FromDate); err != nil {
			return fmt.Errorf("loadAssignments: %w", err)
		}
	}
	return nil
}

func (r *Repository) loadLineDates(ctx context.Context, bookName string) ([]civil.Date, map[civil.Date]string, error) {
	it, err := r.query(ctx, tableLines, "line_date ASC", bookName)
	if err != nil {
		return nil, nil, fmt.Errorf("loadLineDates: %w", err)
	}
	var dates []civil.Date
	remarks := make(map[civil.Date]string)
	for {
		var row LineRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return nil, nil, fmt.Errorf("loadLineDates: %w", err)
		}
		dates = append(dates, row.LineDate)
		remarks[row.LineDate] = row.Remarks
	}
	return dates, remarks, nil
}

func (r *Repository) loadBalances(ctx context.Context, bookName string) (map[civil.Date][]domain.BankBalance, error) {
	it, err := r.query(ctx, tableBalances, "line_date, account ASC", bookName)
	if err != nil {
		return nil, fmt.Errorf("loadBalances: %w", err)
	}
	out := make(map[civil.Date][]domain.BankBalance)
	for {
		var row BalanceRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return nil, fmt.Errorf("loadBalances: %w", err)
		}
		balance, err := domain.MoneyFromRat(row.Balance)
		if err != nil {
			return nil, fmt.Errorf("loadBalances: %s %s: %w", row.LineDate, row.Account, err)
		}
		out[row.LineDate] = append(out[row.LineDate], domain.BankBalance{
			Account: domain.Account{Name: row.Account, Type: domain.AccountType(row.AccountType), Salary: row.Salary},
			Balance: balance,
		})
	}
	return out, nil
}

func (r *Repository) loadAdjustments(ctx context.Context, bookName string) (map[civil.Date][]*ledger.Adjustment, error) {
	it, err := r.query(ctx, tableAdjustments, "line_date, adjustment_id ASC", bookName)
	if err != nil {
		return nil, fmt.Errorf("loadAdjustments: %w", err)
	}
	out := make(map[civil.Date][]*ledger.Adjustment)
	for {
		var row AdjustmentRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return nil, fmt.Errorf("loadAdjustments: %w", err)
		}
		id, err := uuid.Parse(row.AdjustmentID)
		if err != nil {
			return nil, fmt.Errorf("loadAdjustments: id %q: %w", row.AdjustmentID, err)
		}
		amount, err := domain.MoneyFromRat(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("loadAdjustments: %s: %w", row.AdjustmentID, err)
		}
		out[row.LineDate] = append(out[row.LineDate], &ledger.Adjustment{
			ID:        id,
			Amount:    amount,
			Narrative: row.Narrative,
			Account:   domain.Account{Name: row.Account, Type: domain.AccountType(row.AccountType), Salary: row.Salary},
		})
	}
	return out, nil
}

func (r *Repository) loadEntries(ctx context.Context, bookName string) (map[civil.Date][]*ledger.Entry, error) {
	txns, err := r.loadTransactions(ctx, bookName)
	if err != nil {
		return nil, err
	}

	it, err := r.query(ctx, tableEntries, "line_date, bucket_code ASC", bookName)
	if err != nil {
		return nil, fmt.Errorf("loadEntries: %w", err)
	}
	out := make(map[civil.Date][]*ledger.Entry)
	for {
		var row EntryRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return nil, fmt.Errorf("loadEntries: %w", err)
		}
		opening, err := domain.MoneyFromRat(row.OpeningBalance)
		if err != nil {
			return nil, fmt.Errorf("loadEntries: %s %s: %w", row.LineDate, row.BucketCode, err)
		}
		closing, err := domain.MoneyFromRat(row.ClosingBalance)
		if err != nil {
			return nil, fmt.Errorf("loadEntries: %s %s: %w", row.LineDate, row.BucketCode, err)
		}

		bucket := ledger.Bucket{
			Code:    row.BucketCode,
			Account: domain.Account{Name: row.Account, Type: domain.AccountType(row.AccountType), Salary: row.Salary},
		}
		entry := ledger.NewEntry(bucket, opening)
		entry.SetTransactions(txns[entryKey{row.LineDate, row.BucketCode}])
		if entry.Balance() != closing {
			return nil, fmt.Errorf("loadEntries: %s %s: stored closing balance %s does not match derived %s",
				row.LineDate, row.BucketCode, closing, entry.Balance())
		}
		out[row.LineDate] = append(out[row.LineDate], entry)
	}
	return out, nil
}

// entryKey identifies one entry across the flattened line tables.
type entryKey struct {
	date   civil.Date
	bucket string
}

func (r *Repository) loadTransactions(ctx context.Context, bookName string) (map[entryKey][]*ledger.Transaction, error) {
	it, err := r.query(ctx, tableTransactions, "line_date, bucket_code, position ASC", bookName)
	if err != nil {
		return nil, fmt.Errorf("loadTransactions: %w", err)
	}
	out := make(map[entryKey][]*ledger.Transaction)
	for {
		var row TransactionRow
		if err := it.Next(&row); err == iterator.Done {
			break
		} else if err != nil {
			return nil, fmt.Errorf("loadTransactions: %w", err)
		}
		id, err := uuid.Parse(row.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("loadTransactions: id %q: %w", row.TransactionID, err)
		}
		amount, err := domain.MoneyFromRat(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("loadTransactions: %s: %w", row.TransactionID, err)
		}
		kind, err := parseKind(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("loadTransactions: %s: %w", row.TransactionID, err)
		}
		txn := &ledger.Transaction{
			ID:           id,
			Kind:         kind,
			Amount:       amount,
			Narrative:    row.Narrative,
			AutoMatchRef: row.AutoMatchRef,
		}
		if row.TxnDate.Valid {
			date := row.TxnDate.Date
			txn.Date = &date
		}
		key := entryKey{row.LineDate, row.BucketCode}
		out[key] = append(out[key], txn)
	}
	return out, nil
}

func parseKind(s string) (ledger.TransactionKind, error) {
	switch s {
	case ledger.OpeningCredit.String():
		return ledger.OpeningCredit, nil
	case ledger.StatementCredit.String():
		return ledger.StatementCredit, nil
	case ledger.StatementDebit.String():
		return ledger.StatementDebit, nil
	case ledger.BudgetAllocation.String():
		return ledger.BudgetAllocation, nil
	case ledger.BudgetAllocationWithTransfer.String():
		return ledger.BudgetAllocationWithTransfer, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind %q", s)
	}
}
