package ledger

import (
	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
)

// Bucket binds a budget bucket code to the bank account currently funding
// it. The funding account can change between periods; the Book keeps the
// full assignment history and hands out the definition valid for a date.
type Bucket struct {
	Code    string
	Account domain.Account
}

// BucketAssignment is one entry in a bucket's funding-account history.
type BucketAssignment struct {
	Account domain.Account
	From    civil.Date
	Retired bool
}
