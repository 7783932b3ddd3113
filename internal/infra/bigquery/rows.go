// Package bigquery persists committed reconciliation lines and bucket
// assignment history. A line is flattened across five tables keyed by
// (book_name, line_date); LoadBook reassembles them oldest-first so the
// append-only history replays cleanly.
package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// LineRow is one committed reconciliation line.
type LineRow struct {
	BookName  string     `bigquery:"book_name"`  // REQUIRED
	LineDate  civil.Date `bigquery:"line_date"`  // REQUIRED
	Remarks   string     `bigquery:"remarks"`    // NULLABLE
	CreatedTS time.Time  `bigquery:"created_ts"` // REQUIRED
}

// BalanceRow is one bank balance captured on a line.
type BalanceRow struct {
	BookName    string     `bigquery:"book_name"`
	LineDate    civil.Date `bigquery:"line_date"`
	Account     string     `bigquery:"account"`
	AccountType string     `bigquery:"account_type"`
	Salary      bool       `bigquery:"salary"`
	Balance     *big.Rat   `bigquery:"balance"` // NUMERIC
}

// AdjustmentRow is one balance adjustment recorded on a line.
type AdjustmentRow struct {
	AdjustmentID string     `bigquery:"adjustment_id"`
	BookName     string     `bigquery:"book_name"`
	LineDate     civil.Date `bigquery:"line_date"`
	Account      string     `bigquery:"account"`
	AccountType  string     `bigquery:"account_type"`
	Salary       bool       `bigquery:"salary"`
	Amount       *big.Rat   `bigquery:"amount"` // NUMERIC
	Narrative    string     `bigquery:"narrative"`
}

// EntryRow is the per-bucket state on a line. The closing balance is stored
// redundantly so book validation can prove it is reproducible from the
// transactions.
type EntryRow struct {
	BookName       string     `bigquery:"book_name"`
	LineDate       civil.Date `bigquery:"line_date"`
	BucketCode     string     `bigquery:"bucket_code"`
	Account        string     `bigquery:"account"`
	AccountType    string     `bigquery:"account_type"`
	Salary         bool       `bigquery:"salary"`
	OpeningBalance *big.Rat   `bigquery:"opening_balance"` // NUMERIC
	ClosingBalance *big.Rat   `bigquery:"closing_balance"` // NUMERIC
}

// TransactionRow is one ledger transaction inside an entry.
type TransactionRow struct {
	TransactionID string            `bigquery:"transaction_id"`
	BookName      string            `bigquery:"book_name"`
	LineDate      civil.Date        `bigquery:"line_date"`
	BucketCode    string            `bigquery:"bucket_code"`
	Kind          string            `bigquery:"kind"`
	Amount        *big.Rat          `bigquery:"amount"` // NUMERIC
	Narrative     string            `bigquery:"narrative"`
	TxnDate       bigquery.NullDate `bigquery:"txn_date"`       // NULLABLE
	AutoMatchRef  string            `bigquery:"auto_match_ref"` // NULLABLE
	Position      int64             `bigquery:"position"`       // ordering within the entry
}

// TaskRow is one follow-up task generated alongside a line. Transfer fields
// are empty for plain to-do tasks.
type TaskRow struct {
	TaskID          string     `bigquery:"task_id"`
	BookName        string     `bigquery:"book_name"`
	LineDate        civil.Date `bigquery:"line_date"`
	Kind            string     `bigquery:"kind"` // "todo" or "transfer"
	Description     string     `bigquery:"description"`
	SystemGenerated bool       `bigquery:"system_generated"`
	Amount          *big.Rat   `bigquery:"amount"` // NUMERIC, NULLABLE
	SourceAccount   string     `bigquery:"source_account"`
	DestAccount     string     `bigquery:"destination_account"`
	BucketCode      string     `bigquery:"bucket_code"`
	Reference       string     `bigquery:"reference"`
}

// AssignmentRow is one step in a bucket's funding-account history.
type AssignmentRow struct {
	BookName    string     `bigquery:"book_name"`
	BucketCode  string     `bigquery:"bucket_code"`
	Account     string     `bigquery:"account"`
	AccountType string     `bigquery:"account_type"`
	Salary      bool       `bigquery:"salary"`
	FromDate    civil.Date `bigquery:"from_date"`
	Retired     bool       `bigquery:"retired"`
}
