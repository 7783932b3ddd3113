package bigquery

import (
	"testing"

	"github.com/dvloznov/ledger-reconciler/internal/ledger"
)

func TestParseKindRoundTrip(t *testing.T) {
	kinds := []ledger.TransactionKind{
		ledger.OpeningCredit,
		ledger.StatementCredit,
		ledger.StatementDebit,
		ledger.BudgetAllocation,
		ledger.BudgetAllocationWithTransfer,
	}
	for _, kind := range kinds {
		got, err := parseKind(kind.String())
		if err != nil {
			t.Fatalf("parseKind(%q) failed: %v", kind, err)
		}
		if got != kind {
			t.Errorf("parseKind(%q) = %v, want %v", kind, got, kind)
		}
	}

	if _, err := parseKind("mystery"); err == nil {
		t.Error("parseKind accepted an unknown kind")
	}
}
