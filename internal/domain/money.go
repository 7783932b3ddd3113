package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Money is a monetary amount in cents. Credits are positive, debits negative.
// Integer cents keep ledger arithmetic exact; conversion to big.Rat happens
// only at the BigQuery boundary where amounts are NUMERIC columns.
type Money int64

// ParseMoney parses a decimal string such as "-120.50" into cents.
// At most two fractional digits are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse money: empty amount")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse money: %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money: %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money: %q: %w", s, err)
	}

	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Money(cents), nil
}

// String renders the amount as a plain decimal, e.g. "-120.50".
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Rat converts the amount to a big.Rat for NUMERIC column storage.
func (m Money) Rat() *big.Rat {
	return big.NewRat(int64(m), 100)
}

// MoneyFromRat converts a NUMERIC value read from BigQuery back to cents.
// Values that do not fit whole cents are rejected rather than rounded.
func MoneyFromRat(r *big.Rat) (Money, error) {
	if r == nil {
		return 0, fmt.Errorf("money from rat: nil value")
	}
	cents := new(big.Rat).Mul(r, big.NewRat(100, 1))
	if !cents.IsInt() {
		return 0, fmt.Errorf("money from rat: %s is not a whole number of cents", r.FloatString(6))
	}
	return Money(cents.Num().Int64()), nil
}
