package bigquery

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	"github.com/dvloznov/ledger-reconciler/internal/ledger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

// BookStore is the persistence surface the CLI depends on. *Repository
// implements it; tests substitute in-memory fakes.
type BookStore interface {
	LoadBook(ctx context.Context, bookName string) (*ledger.Book, error)
	InsertLine(ctx context.Context, bookName string, line *ledger.Line) error
	InsertAssignment(ctx context.Context, bookName, bucketCode string, account domain.Account, from civil.Date, retired bool) error
	InsertTasks(ctx context.Context, bookName string, lineDate civil.Date, tasks []task.Task) error
}

var _ BookStore = (*Repository)(nil)
