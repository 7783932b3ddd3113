// Package statement imports bank statements: a CSV codec for the exported
// transaction format and a fetcher for statements stored in GCS.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// Column order of the exported CSV format.
var columns = []string{
	"id", "date", "amount", "account", "bucket",
	"description", "type", "ref1", "ref2", "ref3",
}

// Read decodes a statement CSV. Accounts are resolved by name against the
// supplied registry; a transaction naming an unknown account is an error,
// since every downstream rule depends on the account's type and salary
// flag. Reference fields keep their raw text; trimming happens at match
// time.
func Read(r io.Reader, accounts map[string]domain.Account) (*domain.StatementModel, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(columns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("statement.Read: read header: %w", err)
	}
	for i, want := range columns {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return nil, fmt.Errorf("statement.Read: header column %d is %q, want %q", i+1, header[i], want)
		}
	}

	model := &domain.StatementModel{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("statement.Read: line %d: %w", line, err)
		}

		id, err := uuid.Parse(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("statement.Read: line %d: transaction id: %w", line, err)
		}
		date, err := civil.ParseDate(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("statement.Read: line %d: date: %w", line, err)
		}
		amount, err := domain.ParseMoney(record[2])
		if err != nil {
			return nil, fmt.Errorf("statement.Read: line %d: %w", line, err)
		}
		accountName := strings.TrimSpace(record[3])
		account, ok := accounts[accountName]
		if !ok {
			return nil, fmt.Errorf("statement.Read: line %d: unknown account %q", line, accountName)
		}

		model.Transactions = append(model.Transactions, domain.Transaction{
			ID:          id,
			Date:        date,
			Amount:      amount,
			Account:     account,
			BucketCode:  strings.TrimSpace(record[4]),
			Description: strings.TrimSpace(record[5]),
			TypeName:    strings.TrimSpace(record[6]),
			Reference1:  record[7],
			Reference2:  record[8],
			Reference3:  record[9],
		})
	}
	return model, nil
}
