// Package task holds the follow-up actions a reconciliation produces for the
// user: plain reminders and bank transfers that still need to be performed.
package task

import (
	"github.com/google/uuid"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// Task is either a *ToDoTask or a *TransferTask.
type Task interface {
	Describe() string
	isTask()
}

// ToDoTask is a reminder for the user. SystemGenerated tasks were produced by
// the reconciliation engine rather than entered by hand.
type ToDoTask struct {
	ID              uuid.UUID
	Description     string
	SystemGenerated bool
	CanDelete       bool
}

// NewToDoTask creates a user-deletable task.
func NewToDoTask(description string, systemGenerated bool) *ToDoTask {
	return &ToDoTask{
		ID:              uuid.New(),
		Description:     description,
		SystemGenerated: systemGenerated,
		CanDelete:       true,
	}
}

func (t *ToDoTask) Describe() string { return t.Description }
func (t *ToDoTask) isTask()          {}

// TransferTask instructs the user to move funds between accounts, quoting the
// reference to put on the bank transfer so the next reconciliation can
// auto-match it.
type TransferTask struct {
	ToDoTask
	Amount             domain.Money
	SourceAccount      domain.Account
	DestinationAccount domain.Account
	BucketCode         string
	Reference          string
}

// NewTransferTask creates a system-generated transfer instruction.
func NewTransferTask(description string, amount domain.Money, source, destination domain.Account, bucketCode, reference string) *TransferTask {
	return &TransferTask{
		ToDoTask:           *NewToDoTask(description, true),
		Amount:             amount,
		SourceAccount:      source,
		DestinationAccount: destination,
		BucketCode:         bucketCode,
		Reference:          reference,
	}
}
