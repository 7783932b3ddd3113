package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

func testLine(t *testing.T, y int, m time.Month, d int) *Line {
	t.Helper()
	draft := NewDraftLine(testDate(y, m, d), []domain.BankBalance{{Account: testCheque, Balance: 10000}})
	draft.SetEntries([]*Entry{NewEntry(Bucket{Code: "POWER", Account: testCheque}, 0)})
	return draft.Commit()
}

func TestBookAppendOrdering(t *testing.T) {
	book := NewBook("test")
	if err := book.AssignBucket("POWER", testCheque, testDate(2013, time.January, 1)); err != nil {
		t.Fatalf("AssignBucket failed: %v", err)
	}

	if err := book.Append(testLine(t, 2013, time.July, 15)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := book.Append(testLine(t, 2013, time.August, 15)); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	// Same date and older dates are both rejected.
	if err := book.Append(testLine(t, 2013, time.August, 15)); !errors.Is(err, ErrStaleLine) {
		t.Errorf("append same date error = %v, want ErrStaleLine", err)
	}
	if err := book.Append(testLine(t, 2013, time.June, 1)); !errors.Is(err, ErrStaleLine) {
		t.Errorf("append older date error = %v, want ErrStaleLine", err)
	}

	if got := book.Latest().Date(); got != testDate(2013, time.August, 15) {
		t.Errorf("Latest().Date() = %s, want 2013-08-15", got)
	}
	lines := book.Lines()
	if len(lines) != 2 || lines[0].Date().Before(lines[1].Date()) {
		t.Error("lines are not newest-first")
	}
}

func TestBucketAssignmentHistory(t *testing.T) {
	book := NewBook("test")
	if err := book.AssignBucket("POWER", testCheque, testDate(2013, time.January, 1)); err != nil {
		t.Fatalf("AssignBucket failed: %v", err)
	}
	if err := book.AssignBucket("POWER", testSavings, testDate(2013, time.June, 1)); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}

	// Before the reassignment the old account is in force; after, the new.
	if b, ok := book.BucketAt("POWER", testDate(2013, time.March, 1)); !ok || !b.Account.Same(testCheque) {
		t.Errorf("BucketAt(March) = %+v, want Cheque", b)
	}
	if b, ok := book.BucketAt("POWER", testDate(2013, time.June, 1)); !ok || !b.Account.Same(testSavings) {
		t.Errorf("BucketAt(June 1) = %+v, want Savings", b)
	}
	if _, ok := book.BucketAt("POWER", testDate(2012, time.December, 1)); ok {
		t.Error("BucketAt before first assignment reported a definition")
	}

	// Out-of-order assignments are rejected.
	if err := book.AssignBucket("POWER", testCheque, testDate(2013, time.May, 1)); err == nil {
		t.Error("out-of-order assignment accepted")
	}

	buckets := book.Buckets()
	if len(buckets) != 1 || !buckets[0].Account.Same(testSavings) {
		t.Errorf("Buckets() = %+v, want one POWER on Savings", buckets)
	}
}

func TestRetireBucket(t *testing.T) {
	book := NewBook("test")
	if err := book.RetireBucket("GHOST", testDate(2013, time.June, 1)); err == nil {
		t.Error("retiring an unassigned bucket succeeded")
	}

	if err := book.AssignBucket("POWER", testCheque, testDate(2013, time.January, 1)); err != nil {
		t.Fatalf("AssignBucket failed: %v", err)
	}
	if err := book.RetireBucket("POWER", testDate(2013, time.June, 1)); err != nil {
		t.Fatalf("RetireBucket failed: %v", err)
	}

	if len(book.Buckets()) != 0 {
		t.Error("retired bucket still listed as current")
	}
	// The definition before retirement is still resolvable for old lines.
	if b, ok := book.BucketAt("POWER", testDate(2013, time.March, 1)); !ok || !b.Account.Same(testCheque) {
		t.Errorf("BucketAt before retirement = %+v, want Cheque", b)
	}
	if _, ok := book.BucketAt("POWER", testDate(2013, time.July, 1)); ok {
		t.Error("BucketAt after retirement reported a definition")
	}
}

func TestBookValidate(t *testing.T) {
	book := NewBook("test")
	if err := book.AssignBucket("POWER", testCheque, testDate(2013, time.January, 1)); err != nil {
		t.Fatalf("AssignBucket failed: %v", err)
	}
	if err := book.Append(testLine(t, 2013, time.July, 15)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msgs := book.Validate(); len(msgs) != 0 {
		t.Errorf("valid book produced messages: %v", msgs)
	}

	// A historical entry whose bucket was never assigned is flagged.
	draft := NewDraftLine(testDate(2013, time.August, 15), []domain.BankBalance{{Account: testCheque, Balance: 10000}})
	draft.SetEntries([]*Entry{NewEntry(Bucket{Code: "GHOST", Account: testCheque}, 0)})
	if err := book.Append(draft.Commit()); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msgs := book.Validate(); len(msgs) == 0 {
		t.Error("orphaned bucket not flagged")
	}
}
