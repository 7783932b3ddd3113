package tasksync

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	"github.com/dvloznov/ledger-reconciler/internal/logger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

type fakeNotion struct {
	pages      []notionapi.Page
	created    []notionapi.Properties
	createErr  error
	queryCalls int
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, properties)
	return &notionapi.Page{}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.queryCalls++
	// Serve one page per call to exercise cursor paging.
	idx := f.queryCalls - 1
	resp := &notionapi.DatabaseQueryResponse{}
	if idx < len(f.pages) {
		resp.Results = []notionapi.Page{f.pages[idx]}
		resp.HasMore = idx+1 < len(f.pages)
		resp.NextCursor = notionapi.Cursor("next")
	}
	return resp, nil
}

func pageWithTaskID(id string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			"Task ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: id}},
			},
		},
	}
}

func quietCtx() context.Context {
	return logger.WithContext(context.Background(), logger.NewWithWriter(io.Discard))
}

func TestSyncTasksCreatesMissingPages(t *testing.T) {
	cheque := domain.Account{Name: "Cheque", Type: domain.AccountTypeCheque, Salary: true}
	savings := domain.Account{Name: "Savings", Type: domain.AccountTypeSavings}

	todo := task.NewToDoTask("check the adjustments", true)
	transfer := task.NewTransferTask("move the power money", 12000, cheque, savings, "POWER", "AB12345")

	// The todo already has a page; only the transfer should be created.
	client := &fakeNotion{pages: []notionapi.Page{pageWithTaskID(todo.ID.String())}}

	if err := SyncTasks(quietCtx(), client, "db-id", []task.Task{todo, transfer}, false); err != nil {
		t.Fatalf("SyncTasks failed: %v", err)
	}

	if len(client.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(client.created))
	}
	props := client.created[0]
	if got := titleOf(props); got != transfer.ID.String() {
		t.Errorf("created page task ID = %q, want %q", got, transfer.ID)
	}
	kind, ok := props["Kind"].(notionapi.SelectProperty)
	if !ok || kind.Select.Name != "Transfer" {
		t.Errorf("Kind property = %+v, want Transfer", props["Kind"])
	}
	amount, ok := props["Amount"].(notionapi.RichTextProperty)
	if !ok || amount.RichText[0].Text.Content != "120.00" {
		t.Errorf("Amount property = %+v, want 120.00", props["Amount"])
	}
}

func TestSyncTasksPagesThroughExisting(t *testing.T) {
	a := task.NewToDoTask("first", true)
	b := task.NewToDoTask("second", true)
	client := &fakeNotion{pages: []notionapi.Page{
		pageWithTaskID(a.ID.String()),
		pageWithTaskID(b.ID.String()),
	}}

	if err := SyncTasks(quietCtx(), client, "db-id", []task.Task{a, b}, false); err != nil {
		t.Fatalf("SyncTasks failed: %v", err)
	}
	if client.queryCalls != 2 {
		t.Errorf("query calls = %d, want 2 (cursor paging)", client.queryCalls)
	}
	if len(client.created) != 0 {
		t.Errorf("created %d pages for fully-synced tasks, want 0", len(client.created))
	}
}

func TestSyncTasksDryRun(t *testing.T) {
	client := &fakeNotion{}
	tasks := []task.Task{task.NewToDoTask("preview me", true)}

	if err := SyncTasks(quietCtx(), client, "db-id", tasks, true); err != nil {
		t.Fatalf("SyncTasks failed: %v", err)
	}
	if len(client.created) != 0 {
		t.Errorf("dry run created %d pages, want 0", len(client.created))
	}
}

func TestSyncTasksPropagatesCreateError(t *testing.T) {
	wantErr := errors.New("notion is down")
	client := &fakeNotion{createErr: wantErr}
	tasks := []task.Task{task.NewToDoTask("doomed", true)}

	err := SyncTasks(quietCtx(), client, "db-id", tasks, false)
	if !errors.Is(err, wantErr) {
		t.Fatalf("SyncTasks error = %v, want wrapped %v", err, wantErr)
	}
}
