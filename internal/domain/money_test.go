package domain

import (
	"math/big"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "plain", input: "120.50", want: 12050},
		{name: "negative", input: "-120.50", want: -12050},
		{name: "no fraction", input: "55", want: 5500},
		{name: "single decimal", input: "7.5", want: 750},
		{name: "explicit plus", input: "+3.00", want: 300},
		{name: "leading dot", input: ".25", want: 25},
		{name: "whitespace", input: "  12.00 ", want: 1200},
		{name: "zero", input: "0", want: 0},
		{name: "three decimals", input: "1.005", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "12x.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMoney(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMoney(%q) = %d cents, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		amount Money
		want   string
	}{
		{12050, "120.50"},
		{-12050, "-120.50"},
		{5, "0.05"},
		{-5, "-0.05"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := tt.amount.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestMoneyRatRoundTrip(t *testing.T) {
	for _, amount := range []Money{0, 1, -1, 12050, -987654321} {
		got, err := MoneyFromRat(amount.Rat())
		if err != nil {
			t.Fatalf("MoneyFromRat(%s) failed: %v", amount, err)
		}
		if got != amount {
			t.Errorf("round trip of %d cents gave %d", amount, got)
		}
	}
}

func TestMoneyFromRatRejectsFractionalCents(t *testing.T) {
	if _, err := MoneyFromRat(big.NewRat(1, 3)); err == nil {
		t.Fatal("MoneyFromRat(1/3) succeeded, want error")
	}
	if _, err := MoneyFromRat(nil); err == nil {
		t.Fatal("MoneyFromRat(nil) succeeded, want error")
	}
}
