package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

var (
	testCheque  = domain.Account{Name: "Cheque", Type: domain.AccountTypeCheque, Salary: true}
	testSavings = domain.Account{Name: "Savings", Type: domain.AccountTypeSavings}
)

func TestListAccumulates(t *testing.T) {
	list := NewList()
	list.Add(NewToDoTask("check the adjustments", true))
	list.Add(NewTransferTask("move the power money", 12000, testCheque, testSavings, "POWER", "AB12345"))
	list.Add(NewToDoTask("manual follow-up", false))

	if list.Len() != 3 {
		t.Fatalf("Len = %d, want 3", list.Len())
	}
	all := list.All()
	if len(all) != 3 || all[0].Describe() != "check the adjustments" {
		t.Errorf("All() lost insertion order: %v", all)
	}

	transfers := list.Transfers()
	if len(transfers) != 1 {
		t.Fatalf("Transfers() = %d tasks, want 1", len(transfers))
	}
	if transfers[0].Amount != 12000 || transfers[0].Reference != "AB12345" {
		t.Errorf("transfer = %s ref %q, want 120.00 and AB12345", transfers[0].Amount, transfers[0].Reference)
	}

	// All returns a copy; mutating it must not affect the list.
	all[0] = nil
	if list.All()[0] == nil {
		t.Error("All() exposed the internal slice")
	}
}

func TestTaskFileRoundTrip(t *testing.T) {
	todo := NewToDoTask("check the adjustments", true)
	transfer := NewTransferTask("move the power money", 12000, testCheque, testSavings, "POWER", "AB12345")

	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := WriteFile(path, []Task{todo, transfer}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tasks, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("task count = %d, want 2", len(tasks))
	}

	gotTodo, ok := tasks[0].(*ToDoTask)
	if !ok {
		t.Fatalf("first task is %T, want *ToDoTask", tasks[0])
	}
	if gotTodo.ID != todo.ID || gotTodo.Description != todo.Description || !gotTodo.SystemGenerated {
		t.Errorf("todo round trip lost fields: %+v", gotTodo)
	}

	gotTransfer, ok := tasks[1].(*TransferTask)
	if !ok {
		t.Fatalf("second task is %T, want *TransferTask", tasks[1])
	}
	if gotTransfer.Amount != 12000 || gotTransfer.BucketCode != "POWER" || gotTransfer.Reference != "AB12345" {
		t.Errorf("transfer round trip lost fields: %+v", gotTransfer)
	}
	if !gotTransfer.SourceAccount.Same(testCheque) || !gotTransfer.SourceAccount.Salary {
		t.Errorf("source account round trip lost fields: %+v", gotTransfer.SourceAccount)
	}
	if !gotTransfer.DestinationAccount.Same(testSavings) {
		t.Errorf("destination account = %+v, want Savings", gotTransfer.DestinationAccount)
	}
}

func TestReadFileRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(`[{"kind":"mystery","id":"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01"}]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile accepted an unknown task kind")
	}
}
