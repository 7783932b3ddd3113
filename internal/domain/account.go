package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// AccountType classifies a tracked bank account.
type AccountType string

const (
	AccountTypeCheque     AccountType = "CHEQUE"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// Account is one tracked bank account. Identity is the Name; two Account
// values describe the same account iff their names are equal.
type Account struct {
	Name string
	Type AccountType

	// Salary marks the account income is paid into. Budgeted amounts for
	// buckets stored elsewhere must be transferred out of this account.
	Salary bool
}

// Same reports whether both values describe the same bank account.
func (a Account) Same(other Account) bool {
	return a.Name == other.Name
}

// BankBalance is the balance of one account at a point in time.
type BankBalance struct {
	Account Account
	Balance Money
}

// SalaryAccount returns the salary account from a balance set.
func SalaryAccount(balances []BankBalance) (Account, bool) {
	for _, b := range balances {
		if b.Account.Salary {
			return b.Account, true
		}
	}
	return Account{}, false
}

type accountFile struct {
	Accounts []struct {
		Name   string `json:"name"`
		Type   string `json:"type"`
		Salary bool   `json:"salary"`
	} `json:"accounts"`
}

// LoadAccounts reads the tracked-account registry from a JSON file and
// returns it keyed by account name. Exactly one account must carry the
// salary flag.
func LoadAccounts(path string) (map[string]Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadAccounts: read %s: %w", path, err)
	}
	var file accountFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("LoadAccounts: decode %s: %w", path, err)
	}

	accounts := make(map[string]Account, len(file.Accounts))
	salaryCount := 0
	for _, a := range file.Accounts {
		if a.Name == "" {
			return nil, fmt.Errorf("LoadAccounts: account with empty name in %s", path)
		}
		switch AccountType(a.Type) {
		case AccountTypeCheque, AccountTypeSavings, AccountTypeCreditCard:
		default:
			return nil, fmt.Errorf("LoadAccounts: account %s has unknown type %q", a.Name, a.Type)
		}
		if a.Salary {
			salaryCount++
		}
		accounts[a.Name] = Account{Name: a.Name, Type: AccountType(a.Type), Salary: a.Salary}
	}
	if salaryCount != 1 {
		return nil, fmt.Errorf("LoadAccounts: %s must define exactly one salary account, found %d", path, salaryCount)
	}
	return accounts, nil
}
