package reconcile

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// Characters that must never appear in an auto-match reference: the user
// types the reference into their bank's transfer form, and these either
// break that form or are silently dropped by banks.
const disallowedRefChars = `\{}[]^=/;.,-+`

// refLength is the fixed length of a minted auto-match reference.
const refLength = 7

// newMatchReference mints a reference the user puts on the bank transfer so
// the next reconciliation can auto-match the real transaction. The reference
// is random (base64 of UUID bytes), stripped of disallowed characters, and
// truncated to a fixed length.
func newMatchReference() string {
	var b strings.Builder
	for b.Len() <= refLength {
		id := uuid.New()
		encoded := base64.StdEncoding.EncodeToString(id[:])
		for _, r := range encoded {
			if !strings.ContainsRune(disallowedRefChars, r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()[:refLength]
}

// refMatches reports whether any of a statement transaction's three
// reference fields, right-trimmed, equals the minted reference.
func refMatches(reference string, candidates ...string) bool {
	for _, c := range candidates {
		if strings.TrimRight(c, " \t") == reference {
			return true
		}
	}
	return false
}
