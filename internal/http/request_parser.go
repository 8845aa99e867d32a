package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"consultify/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large")
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %v", err)
		}
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: trailing data")
	}
	return nil
}

// amountText accepts an amount either as a JSON string ("1.234,56") or as a
// JSON number (1234.56). Numbers keep their literal text so no float
// rounding happens before parsing.
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amountText(n.String())
	return nil
}

// parsePageRequest reads limit and cursor, falling back to def when limit
// is absent.
func parsePageRequest(r *http.Request, def int) (core.PageRequest, error) {
	q := r.URL.Query()
	limit := def
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return core.PageRequest{}, core.NewInvalidInputError("limit", "must be a positive integer", err)
		}
		limit = n
	}
	return core.PageRequest{
		Limit:  core.ClampLimit(limit, def, 100),
		Cursor: strings.TrimSpace(q.Get("cursor")),
	}, nil
}

// parseRefDate reads the date query parameter, defaulting to now.
func parseRefDate(r *http.Request, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return now, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, core.NewInvalidInputError("date", "must be YYYY-MM-DD or DD/MM/YYYY", err)
	}
	return d.Time, nil
}
