package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// SurplusBucketCode is the special bucket that absorbs unallocated surplus.
// It is never tracked as a ledger column and is exempt from the future-dated
// transaction reversal.
const SurplusBucketCode = "SURPLUS"

// BudgetBucket is one budget category. Code is stable and case-significant.
type BudgetBucket struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// Surplus reports whether this is the unallocated-surplus bucket.
func (b BudgetBucket) Surplus() bool {
	return b.Code == SurplusBucketCode
}

// Expense is a budgeted monthly amount for one bucket.
type Expense struct {
	Bucket BudgetBucket
	Amount Money
}

// BudgetModel is the active budget: the per-bucket monthly amounts.
type BudgetModel struct {
	Name     string
	Expenses []Expense
}

// ExpenseFor returns the budgeted expense for a bucket code, if any.
func (b *BudgetModel) ExpenseFor(code string) (Expense, bool) {
	for _, e := range b.Expenses {
		if e.Bucket.Code == code {
			return e, true
		}
	}
	return Expense{}, false
}

type budgetFile struct {
	Name     string `json:"name"`
	Expenses []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
		Amount      string `json:"amount"`
	} `json:"expenses"`
}

// LoadBudget reads a budget definition from a JSON file.
// Buckets default to active when the flag is omitted.
func LoadBudget(path string) (*BudgetModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadBudget: read %s: %w", path, err)
	}

	var file budgetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("LoadBudget: decode %s: %w", path, err)
	}

	budget := &BudgetModel{Name: file.Name}
	for _, e := range file.Expenses {
		if e.Code == "" {
			return nil, fmt.Errorf("LoadBudget: expense with empty bucket code in %s", path)
		}
		amount, err := ParseMoney(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("LoadBudget: bucket %s: %w", e.Code, err)
		}
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		budget.Expenses = append(budget.Expenses, Expense{
			Bucket: BudgetBucket{Code: e.Code, Description: e.Description, Active: active},
			Amount: amount,
		})
	}
	return budget, nil
}
