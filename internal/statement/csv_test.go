package statement

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

var testAccounts = map[string]domain.Account{
	"Cheque":  {Name: "Cheque", Type: domain.AccountTypeCheque, Salary: true},
	"Savings": {Name: "Savings", Type: domain.AccountTypeSavings},
}

const statementHeader = "id,date,amount,account,bucket,description,type,ref1,ref2,ref3\n"

func TestReadStatement(t *testing.T) {
	input := statementHeader +
		"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01,2013-08-01,-120.00,Cheque,POWER,Electricity bill,DEBIT,ELEC  ,,\n" +
		"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be02,2013-08-02,1500.00,Savings,SURPLUS,Pay,CREDIT,,,AB12345\n"

	model, err := Read(strings.NewReader(input), testAccounts)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(model.Transactions) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(model.Transactions))
	}

	first := model.Transactions[0]
	if first.Amount != -12000 {
		t.Errorf("amount = %s, want -120.00", first.Amount)
	}
	if first.Date != (civil.Date{Year: 2013, Month: time.August, Day: 1}) {
		t.Errorf("date = %s, want 2013-08-01", first.Date)
	}
	if !first.Account.Salary || first.Account.Type != domain.AccountTypeCheque {
		t.Errorf("account not resolved against the registry: %+v", first.Account)
	}
	if first.BucketCode != "POWER" {
		t.Errorf("bucket = %q, want POWER", first.BucketCode)
	}
	// Reference text is kept raw; trimming is the matcher's job.
	if first.Reference1 != "ELEC  " {
		t.Errorf("reference = %q, want raw %q", first.Reference1, "ELEC  ")
	}

	second := model.Transactions[1]
	if second.Amount != 150000 || second.Reference3 != "AB12345" {
		t.Errorf("second transaction = %s ref3 %q, want 1500.00 and AB12345", second.Amount, second.Reference3)
	}
}

func TestReadStatementErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "wrong header",
			input: "id,when,amount,account,bucket,description,type,ref1,ref2,ref3\n",
		},
		{
			name: "bad id",
			input: statementHeader +
				"not-a-uuid,2013-08-01,-120.00,Cheque,POWER,Electricity,DEBIT,,,\n",
		},
		{
			name: "bad date",
			input: statementHeader +
				"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01,01/08/2013,-120.00,Cheque,POWER,Electricity,DEBIT,,,\n",
		},
		{
			name: "bad amount",
			input: statementHeader +
				"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01,2013-08-01,12.345,Cheque,POWER,Electricity,DEBIT,,,\n",
		},
		{
			name: "unknown account",
			input: statementHeader +
				"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01,2013-08-01,-120.00,Visa,POWER,Electricity,DEBIT,,,\n",
		},
		{
			name: "short record",
			input: statementHeader +
				"6a1f0dbe-6ef6-4a36-a4c4-9b0f84a2be01,2013-08-01,-120.00\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input), testAccounts); err == nil {
				t.Error("Read succeeded, want error")
			}
		})
	}
}
