package google

import (
	"context"
	"strings"
	"testing"

	"consultify/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Options{SpreadsheetID: "sheet-id"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:      "sheet-id",
		ServiceAccountFile: "/nonexistent/credentials.json",
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	ctx := context.Background()

	if _, err := c.UpsertPayment(ctx, core.PaymentRecord{ID: "p1"}); err == nil {
		t.Error("expected error from upsert without service")
	}
	if err := c.ClearPayment(ctx, "Pagamentos!A2:H2"); err == nil {
		t.Error("expected error from clear without service")
	}
	if _, err := c.ReadPayments(ctx); err == nil {
		t.Error("expected error from read without service")
	}
}

func TestPaymentRow(t *testing.T) {
	p := core.PaymentRecord{
		ID:                "p1",
		Type:              core.Income,
		Amount:            "1234.56",
		Date:              core.NewDate(2024, 3, 5),
		Description:       "Consultoria (2/3)",
		CustomerID:        "c1",
		InstallmentNumber: 2,
	}
	row := paymentRow(p)
	if len(row) != numCols {
		t.Fatalf("expected %d columns, got %d", numCols, len(row))
	}
	if row[colDate] != "05/03/2024" {
		t.Errorf("date: got %v", row[colDate])
	}
	if row[colType] != "Receita" {
		t.Errorf("type: got %v", row[colType])
	}
	if row[colAmount] != "R$ 1.234,56" {
		t.Errorf("amount: got %v", row[colAmount])
	}
	if row[colInstallment] != "2" {
		t.Errorf("installment: got %v", row[colInstallment])
	}

	p.Amount = "abc"
	if got := paymentRow(p)[colAmount]; got != "abc" {
		t.Errorf("unparseable amount should be written verbatim, got %v", got)
	}
}

func TestParsePayments(t *testing.T) {
	values := [][]any{
		header,
		{"p1", "05/03/2024", "Receita", "R$ 1.234,56", "Consultoria", "c1", "", "1"},
		{},
		{"", "", "", "", "", "", "", ""},
		{"p2", "2024-03-09", "Despesa", "abc", "Hospedagem"},
		{"", "10/03/2024", "Outro", "10,00", "sem id"},
	}

	got := parsePayments(values)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}

	if got[0].ID != "p1" || got[0].Type != core.Income || got[0].Amount != "R$ 1.234,56" {
		t.Errorf("first row: %+v", got[0])
	}
	if got[0].Date.String() != "2024-03-05" || got[0].InstallmentNumber != 1 {
		t.Errorf("first row date/installment: %+v", got[0])
	}
	if m, err := got[0].Money(); err != nil || m.Cents != 123456 {
		t.Errorf("first row amount: %v %v", m, err)
	}

	if got[1].Type != core.Expense || got[1].Amount != "abc" {
		t.Errorf("second row: %+v", got[1])
	}

	if got[2].ID != "row-6" || got[2].Type != core.PaymentType("Outro") {
		t.Errorf("third row: %+v", got[2])
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"Pagamentos":      "Pagamentos",
		"Pagamentos 2024": "'Pagamentos 2024'",
		"João's":          "'João''s'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}
