package task

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// taskRecord is the on-disk form of a task. Kind discriminates the two
// variants.
type taskRecord struct {
	Kind            string `json:"kind"` // "todo" or "transfer"
	ID              string `json:"id"`
	Description     string `json:"description"`
	SystemGenerated bool   `json:"system_generated"`
	CanDelete       bool   `json:"can_delete"`

	Amount      string         `json:"amount,omitempty"`
	Source      *accountRecord `json:"source,omitempty"`
	Destination *accountRecord `json:"destination,omitempty"`
	BucketCode  string         `json:"bucket_code,omitempty"`
	Reference   string         `json:"reference,omitempty"`
}

type accountRecord struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Salary bool   `json:"salary,omitempty"`
}

func toAccountRecord(a domain.Account) *accountRecord {
	return &accountRecord{Name: a.Name, Type: string(a.Type), Salary: a.Salary}
}

func (r *accountRecord) account() domain.Account {
	return domain.Account{Name: r.Name, Type: domain.AccountType(r.Type), Salary: r.Salary}
}

// WriteFile saves tasks as JSON so a later run (or another command) can pick
// them up.
func WriteFile(path string, tasks []Task) error {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		switch v := t.(type) {
		case *TransferTask:
			records = append(records, taskRecord{
				Kind:            "transfer",
				ID:              v.ID.String(),
				Description:     v.Description,
				SystemGenerated: v.SystemGenerated,
				CanDelete:       v.CanDelete,
				Amount:          v.Amount.String(),
				Source:          toAccountRecord(v.SourceAccount),
				Destination:     toAccountRecord(v.DestinationAccount),
				BucketCode:      v.BucketCode,
				Reference:       v.Reference,
			})
		case *ToDoTask:
			records = append(records, taskRecord{
				Kind:            "todo",
				ID:              v.ID.String(),
				Description:     v.Description,
				SystemGenerated: v.SystemGenerated,
				CanDelete:       v.CanDelete,
			})
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("task.WriteFile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("task.WriteFile: %w", err)
	}
	return nil
}

// ReadFile loads tasks previously written by WriteFile.
func ReadFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("task.ReadFile: %w", err)
	}
	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("task.ReadFile: decode %s: %w", path, err)
	}

	tasks := make([]Task, 0, len(records))
	for i, r := range records {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("task.ReadFile: record %d: id: %w", i, err)
		}
		todo := ToDoTask{
			ID:              id,
			Description:     r.Description,
			SystemGenerated: r.SystemGenerated,
			CanDelete:       r.CanDelete,
		}
		switch r.Kind {
		case "todo":
			t := todo
			tasks = append(tasks, &t)
		case "transfer":
			amount, err := domain.ParseMoney(r.Amount)
			if err != nil {
				return nil, fmt.Errorf("task.ReadFile: record %d: %w", i, err)
			}
			if r.Source == nil || r.Destination == nil {
				return nil, fmt.Errorf("task.ReadFile: record %d: transfer task missing accounts", i)
			}
			tasks = append(tasks, &TransferTask{
				ToDoTask:           todo,
				Amount:             amount,
				SourceAccount:      r.Source.account(),
				DestinationAccount: r.Destination.account(),
				BucketCode:         r.BucketCode,
				Reference:          r.Reference,
			})
		default:
			return nil, fmt.Errorf("task.ReadFile: record %d: unknown kind %q", i, r.Kind)
		}
	}
	return tasks, nil
}
