package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1,005", 101, true}, // half-up rounding
		{"0.005", 1, true},
		{"R$ 1.500", 150000, true},
		{"R$ 12.345", 1234500, true},
		{"1.500", 150000, true},
		{"12.345", 1234500, true},
		{"1234.567", 123457, true},
		{"R$ 1.5", 0, false},
		{"R$ 1234.56", 0, false},
		{"999999999999.99", 99999999999999, true},
		{"1000000000000.00", 0, false},
		{"12,344", 1234, true},
		{" 2.50 ", 250, true},
		{"1234.56", 123456, true},
		{"1.234,56", 123456, true},
		{"1,234.56", 123456, true},
		{"R$ 1.234,56", 123456, true},
		{"R$\u00a01.234,56", 123456, true},
		{"1.234.567", 123456700, true},
		{",5", 50, true},
		{"-1", 0, false},
		{"-R$ 10,00", 0, false},
		{"0", 0, false},
		{"0,00", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"1.2.3", 0, false},
		{"1,2,3", 0, false},
		{"1.23,4.5", 0, false},
		{"R$", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got.Cents)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestParseAmountAllowsZero(t *testing.T) {
	m, err := ParseAmount("0.00")
	if err != nil || !m.IsZero() {
		t.Fatalf("expected zero amount, got %v (err=%v)", m, err)
	}
	if _, err := ParseAmount("-5"); err == nil {
		t.Fatalf("expected error for negative stored amount")
	}
}

func TestParseSignedAmount(t *testing.T) {
	for in, want := range map[string]int64{
		"-10.00":    -1000,
		"-R$ 10,00": -1000,
		"R$ -2,50":  -250,
		"300.00":    30000,
	} {
		got, err := ParseSignedAmount(in)
		if err != nil || got.Cents != want {
			t.Fatalf("%q expected %d, got %d (err=%v)", in, want, got.Cents, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:       "0.00",
		1:       "0.01",
		3334:    "33.34",
		123456:  "1234.56",
		-1000:   "-10.00",
		-5:      "-0.05",
		3000000: "30000.00",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[int64]string{
		0:          "R$ 0,00",
		99:         "R$ 0,99",
		123456:     "R$ 1.234,56",
		100000000:  "R$ 1.000.000,00",
		-1000:      "-R$ 10,00",
		1234567890: "R$ 12.345.678,90",
	}
	for cents, want := range cases {
		if got := FormatBRL(Money{Cents: cents}); got != want {
			t.Fatalf("FormatBRL(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 99, 100, 123456, 100000000} {
		m := Money{Cents: cents}
		for _, s := range []string{m.String(), FormatBRL(m)} {
			got, err := ParseMoney(s)
			if err != nil || got != m {
				t.Fatalf("parse(%q) = %v (err=%v), want %v", s, got, err, m)
			}
		}
	}
}

func TestCheckedAdd(t *testing.T) {
	sum, ok := Money{Cents: 100}.CheckedAdd(Money{Cents: 250})
	if !ok || sum.Cents != 350 {
		t.Fatalf("CheckedAdd = %v, %v", sum, ok)
	}
	big := Money{Cents: math.MaxInt64 - 10}
	if got, ok := big.CheckedAdd(Money{Cents: 11}); ok || got != big {
		t.Fatalf("expected overflow to be reported, got %v, %v", got, ok)
	}
	low := Money{Cents: math.MinInt64 + 10}
	if _, ok := low.CheckedAdd(Money{Cents: -11}); ok {
		t.Fatal("expected underflow to be reported")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 50000}
	b := Money{Cents: 70000}
	if got := a.Sub(b); got.Cents != -20000 {
		t.Fatalf("Sub = %d", got.Cents)
	}
	if got := a.Add(b); got.Cents != 120000 {
		t.Fatalf("Add = %d", got.Cents)
	}
	if got := (Money{Cents: 3334}).Decimal().String(); got != "33.34" {
		t.Fatalf("Decimal = %s", got)
	}
}
