package ledger

import (
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// ErrStaleLine is returned when an appended line is not strictly newer than
// every line already in the book. There is no mid-stream editing; new lines
// are always the newest.
var ErrStaleLine = errors.New("reconciliation line must be dated after the latest line in the book")

// Book is the append-only, newest-first history of reconciliation lines plus
// the authoritative per-bucket funding-account assignments.
type Book struct {
	Name string

	lines       []*Line // newest first
	assignments map[string][]BucketAssignment
}

// NewBook creates an empty ledger book.
func NewBook(name string) *Book {
	return &Book{
		Name:        name,
		assignments: make(map[string][]BucketAssignment),
	}
}

// AssignBucket records that a bucket is funded from an account as of a date.
// Assignments are kept per code in ascending date order so "current
// definition wins" is a lookup, not a comparison against stale entries.
func (b *Book) AssignBucket(code string, account domain.Account, from civil.Date) error {
	if code == "" {
		return errors.New("bucket code cannot be empty")
	}
	history := b.assignments[code]
	if n := len(history); n > 0 && !history[n-1].From.Before(from) {
		return fmt.Errorf("bucket %s: assignment dated %s is not after the latest assignment %s", code, from, history[n-1].From)
	}
	b.assignments[code] = append(history, BucketAssignment{Account: account, From: from})
	return nil
}

// RetireBucket stops tracking a bucket as of a date. Its entries remain in
// older lines; the bucket no longer appears in the current definitions.
func (b *Book) RetireBucket(code string, from civil.Date) error {
	history := b.assignments[code]
	if len(history) == 0 {
		return fmt.Errorf("bucket %s: cannot retire, never assigned", code)
	}
	if !history[len(history)-1].From.Before(from) {
		return fmt.Errorf("bucket %s: retirement dated %s is not after the latest assignment", code, from)
	}
	b.assignments[code] = append(history, BucketAssignment{From: from, Retired: true})
	return nil
}

// Buckets returns the current bucket definitions sorted by code, excluding
// retired buckets.
func (b *Book) Buckets() []Bucket {
	var out []Bucket
	for code, history := range b.assignments {
		latest := history[len(history)-1]
		if latest.Retired {
			continue
		}
		out = append(out, Bucket{Code: code, Account: latest.Account})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// BucketAt returns the bucket definition in force on a date.
func (b *Book) BucketAt(code string, on civil.Date) (Bucket, bool) {
	history := b.assignments[code]
	var found *BucketAssignment
	for i := range history {
		if history[i].From.After(on) {
			break
		}
		found = &history[i]
	}
	if found == nil || found.Retired {
		return Bucket{}, false
	}
	return Bucket{Code: code, Account: found.Account}, true
}

// Lines returns the reconciliation history, newest first.
func (b *Book) Lines() []*Line {
	out := make([]*Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Latest returns the most recent reconciliation line, or nil for an empty
// book.
func (b *Book) Latest() *Line {
	if len(b.lines) == 0 {
		return nil
	}
	return b.lines[0]
}

// Append adds a committed line to the front of the history. The line must be
// strictly newer than the current latest line and must validate cleanly.
func (b *Book) Append(line *Line) error {
	if line == nil {
		return errors.New("cannot append a nil line")
	}
	if latest := b.Latest(); latest != nil && !latest.Date().Before(line.Date()) {
		return fmt.Errorf("%w: latest is %s, appended is %s", ErrStaleLine, latest.Date(), line.Date())
	}
	if msgs := line.Validate(); len(msgs) > 0 {
		return fmt.Errorf("cannot append invalid line %s: %s", line.Date(), msgs[0])
	}
	b.lines = append([]*Line{line}, b.lines...)
	return nil
}

// Validate returns problem messages across the whole book: date ordering,
// line validity, and orphaned buckets that appear in history but were never
// assigned (or retired) at book level.
func (b *Book) Validate() []string {
	var msgs []string
	for i := 0; i+1 < len(b.lines); i++ {
		if !b.lines[i+1].Date().Before(b.lines[i].Date()) {
			msgs = append(msgs, fmt.Sprintf("lines %s and %s are not in strictly descending date order", b.lines[i].Date(), b.lines[i+1].Date()))
		}
	}
	for _, line := range b.lines {
		msgs = append(msgs, line.Validate()...)
		for _, e := range line.Entries() {
			if _, ok := b.assignments[e.Bucket().Code]; !ok {
				msgs = append(msgs, fmt.Sprintf("bucket %s appears in line %s but has no assignment history", e.Bucket().Code, line.Date()))
			}
		}
	}
	return msgs
}
