package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"consultify/internal/core"
)

// Recognised header names, English and Portuguese.
var csvColumns = map[string]string{
	"id":          "id",
	"date":        "date",
	"data":        "date",
	"type":        "type",
	"tipo":        "type",
	"amount":      "amount",
	"valor":       "amount",
	"description": "description",
	"descricao":   "description",
	"descrição":   "description",
	"customer":    "customer",
	"cliente":     "customer",
	"project":     "project",
	"projeto":     "project",
}

// ReadPaymentsCSV reads a ledger with a header row. Columns may appear in any
// order; date, type and amount are required. Values are kept as typed so the
// summarizer can report malformed rows instead of the whole file failing.
func ReadPaymentsCSV(r io.Reader) ([]core.PaymentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range head {
		if col, ok := csvColumns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]; ok {
			idx[col] = i
		}
	}
	for _, required := range []string{"date", "type", "amount"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []core.PaymentRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		p := core.PaymentRecord{
			ID:          get(row, "id"),
			Amount:      get(row, "amount"),
			Description: get(row, "description"),
			CustomerID:  get(row, "customer"),
			ProjectID:   get(row, "project"),
			SyncStatus:  core.SyncDone,
		}
		if p.ID == "" {
			p.ID = "line-" + strconv.Itoa(line)
		}
		if p.Amount == "" && get(row, "date") == "" && get(row, "type") == "" {
			continue
		}
		if d, err := core.ParseDate(get(row, "date")); err == nil {
			p.Date = d
		}
		raw := get(row, "type")
		if t, err := core.ParsePaymentType(raw); err == nil {
			p.Type = t
		} else {
			p.Type = core.PaymentType(raw)
		}
		out = append(out, p)
	}
	return out, nil
}
