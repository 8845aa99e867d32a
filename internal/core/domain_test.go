package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		start Date
		n     int
		want  Date
	}{
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{NewDate(2024, 12, 31), 1, NewDate(2025, 1, 31)},
		{NewDate(2024, 12, 31), 2, NewDate(2025, 2, 28)},
		{NewDate(2024, 3, 31), 1, NewDate(2024, 4, 30)},
		{NewDate(2024, 1, 15), 12, NewDate(2025, 1, 15)},
		{NewDate(2024, 5, 10), 0, NewDate(2024, 5, 10)},
	}
	for _, tc := range cases {
		if got := tc.start.AddMonthsClamped(tc.n); !got.Equal(tc.want.Time) {
			t.Fatalf("%s + %d months = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := NewDate(2024, 2, 14).MonthBounds()
	if first.String() != "2024-02-01" || last.String() != "2024-02-29" {
		t.Fatalf("bounds = %s..%s", first, last)
	}
	first, last = NewDate(2024, 12, 31).MonthBounds()
	if first.String() != "2024-12-01" || last.String() != "2024-12-31" {
		t.Fatalf("bounds = %s..%s", first, last)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-05", "05/03/2024", " 2024-03-05 "} {
		d, err := ParseDate(in)
		if err != nil || d.String() != "2024-03-05" {
			t.Fatalf("ParseDate(%q) = %s (err=%v)", in, d, err)
		}
	}
	for _, in := range []string{"", "2024-02-30", "yesterday", "2024/03/05"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) expected ErrInvalidDate, got %v", in, err)
		}
	}
	if got := NewDate(2024, 3, 5).FormatBR(); got != "05/03/2024" {
		t.Fatalf("FormatBR = %s", got)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	d := DateOf(time.Date(2024, 1, 31, 23, 30, 0, 0, loc))
	if d.String() != "2024-01-31" {
		t.Fatalf("DateOf = %s", d)
	}
}

func TestParseInstallmentInterval(t *testing.T) {
	cases := map[string]InstallmentInterval{
		"weekly":    IntervalWeekly,
		"Semanal":   IntervalWeekly,
		"biweekly":  IntervalBiweekly,
		"quinzenal": IntervalBiweekly,
		"MONTHLY":   IntervalMonthly,
		"mensal":    IntervalMonthly,
	}
	for in, want := range cases {
		got, err := ParseInstallmentInterval(in)
		if err != nil || got != want {
			t.Fatalf("%q = %q (err=%v), want %q", in, got, err, want)
		}
	}
	if _, err := ParseInstallmentInterval("daily"); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if IntervalBiweekly.Label() != "quinzenal" {
		t.Fatalf("label = %s", IntervalBiweekly.Label())
	}
}

func TestParsePaymentType(t *testing.T) {
	for in, want := range map[string]PaymentType{
		"income": Income, "receita": Income, "Recebimento": Income,
		"expense": Expense, "despesa": Expense, "pagamento": Expense,
	} {
		got, err := ParsePaymentType(in)
		if err != nil || got != want {
			t.Fatalf("%q = %q (err=%v)", in, got, err)
		}
	}
	if _, err := ParsePaymentType("refund"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPaymentRecordValidate(t *testing.T) {
	good := PaymentRecord{
		Type:        Income,
		Amount:      "500.00",
		Date:        NewDate(2024, 1, 10),
		Description: "Consultoria janeiro",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(p *PaymentRecord)
		field string
	}{
		{"bad type", func(p *PaymentRecord) { p.Type = "refund" }, "type"},
		{"zero amount", func(p *PaymentRecord) { p.Amount = "0" }, "amount"},
		{"garbage amount", func(p *PaymentRecord) { p.Amount = "abc" }, "amount"},
		{"no date", func(p *PaymentRecord) { p.Date = Date{} }, "date"},
		{"no description", func(p *PaymentRecord) { p.Description = "  " }, "description"},
		{"long description", func(p *PaymentRecord) { p.Description = strings.Repeat("x", 201) }, "description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := good
			tc.mut(&p)
			err := p.Validate()
			var inv *InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if inv.Field != tc.field {
				t.Fatalf("field = %s, want %s", inv.Field, tc.field)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected errors.Is ErrInvalidInput")
			}
		})
	}
}

func TestInvalidInputErrorUnwrap(t *testing.T) {
	err := NewInvalidInputError("amount", "must be positive", ErrInvalidAmount)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("unwrap chain broken: %v", err)
	}
	if err.Error() != "invalid amount: must be positive" {
		t.Fatalf("message = %q", err.Error())
	}
	if errors.Is(NewInvalidInputError("count", "x", nil), ErrInvalidAmount) {
		t.Fatalf("nil cause must not match other sentinels")
	}
}

func TestCustomerValidate(t *testing.T) {
	good := Customer{
		TradeName: "Acme",
		CNPJ:      "11222333000181",
		Email:     "contato@acme.com.br",
		Contact:   "Ana",
		Address:   "Rua A, 1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	missing := good
	missing.Contact = ""
	missing.Address = ""
	if err := missing.Validate(); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}

	badCNPJ := good
	badCNPJ.CNPJ = "11222333000182"
	if err := badCNPJ.Validate(); !errors.Is(err, ErrInvalidCNPJ) {
		t.Fatalf("expected ErrInvalidCNPJ, got %v", err)
	}

	badEmail := good
	badEmail.Email = "not-an-email"
	if err := badEmail.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestProjectValidate(t *testing.T) {
	p := Project{CustomerName: FreelanceCustomer, Subject: DefaultSubject, Value: Money{Cents: 150000}, Status: StatusOpen}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	p.Status = "Fechado"
	if err := p.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if s, err := ParseProjectStatus(""); err != nil || s != StatusOpen {
		t.Fatalf("empty status should default to Aberto")
	}
}
