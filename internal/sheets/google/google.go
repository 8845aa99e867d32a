package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"consultify/internal/core"
	ports "consultify/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const DefaultSheetName = "Pagamentos"

// Column layout of the payments sheet, A through H.
var header = []any{"ID", "Data", "Tipo", "Valor", "Descrição", "Cliente", "Projeto", "Parcela"}

const (
	colID = iota
	colDate
	colType
	colAmount
	colDescription
	colCustomer
	colProject
	colInstallment
	numCols
)

type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	headerMu    sync.Mutex
	headerReady bool
}

var _ ports.PaymentSheet = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService prefers inline JSON, then the credentials file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(opts.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertPayment appends a row for new payments and overwrites the referenced
// row otherwise.
func (c *Client) UpsertPayment(ctx context.Context, p core.PaymentRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(p.ID) == "" {
		return "", errors.New("payment without id")
	}

	vr := &gsheet.ValueRange{Values: [][]any{paymentRow(p)}}

	if ref := strings.TrimSpace(p.SheetRef); ref != "" {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update %s: %w", ref, err)
		}
		return ref, nil
	}

	if err := c.ensureHeader(ctx); err != nil {
		return "", err
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:H"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", fmt.Errorf("append to sheet %s: no updated range returned", c.sheetName)
	}
	return resp.Updates.UpdatedRange, nil
}

// ClearPayment blanks the referenced row. Rows are not removed so the
// references held by other payments stay valid.
func (c *Client) ClearPayment(ctx context.Context, rowRef string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowRef = strings.TrimSpace(rowRef)
	if rowRef == "" {
		return errors.New("empty row reference")
	}
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rowRef, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rowRef, err)
	}
	return nil
}

func (c *Client) ReadPayments(ctx context.Context) ([]core.PaymentRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := c.a1("A:H")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parsePayments(resp.Values), nil
}

func (c *Client) ensureHeader(ctx context.Context) error {
	c.headerMu.Lock()
	defer c.headerMu.Unlock()
	if c.headerReady {
		return nil
	}

	rng := c.a1("A1:H1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Wrote payments sheet header", "sheet", c.sheetName)
	}
	c.headerReady = true
	return nil
}

func (c *Client) a1(rng string) string {
	return quoteSheet(c.sheetName) + "!" + rng
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func paymentRow(p core.PaymentRecord) []any {
	amount := p.Amount
	if m, err := p.Money(); err == nil {
		amount = core.FormatBRL(m)
	}
	installment := ""
	if p.InstallmentNumber > 0 {
		installment = strconv.Itoa(p.InstallmentNumber)
	}
	return []any{
		p.ID,
		p.Date.FormatBR(),
		p.Type.Label(),
		amount,
		p.Description,
		p.CustomerID,
		p.ProjectID,
		installment,
	}
}

// parsePayments turns sheet values into records. The header and blank rows
// are skipped. Date and type are best-effort; the amount is kept verbatim.
func parsePayments(values [][]any) []core.PaymentRecord {
	var out []core.PaymentRecord
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && strings.EqualFold(safeGet(cols, colID), "ID") {
			continue
		}
		if blank(cols) {
			continue
		}

		p := core.PaymentRecord{
			ID:          safeGet(cols, colID),
			Amount:      safeGet(cols, colAmount),
			Description: safeGet(cols, colDescription),
			CustomerID:  safeGet(cols, colCustomer),
			ProjectID:   safeGet(cols, colProject),
			SyncStatus:  core.SyncDone,
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("row-%d", i+1)
		}
		if d, err := core.ParseDate(safeGet(cols, colDate)); err == nil {
			p.Date = d
		}
		rawType := safeGet(cols, colType)
		if t, err := core.ParsePaymentType(rawType); err == nil {
			p.Type = t
		} else {
			p.Type = core.PaymentType(rawType)
		}
		if n, err := strconv.Atoi(safeGet(cols, colInstallment)); err == nil {
			p.InstallmentNumber = n
		}
		out = append(out, p)
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func blank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}
