// Package memory is an in-process payments sheet used when no spreadsheet is
// configured and by the worker tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"consultify/internal/core"
	ports "consultify/internal/sheets"
)

var _ ports.PaymentSheet = (*Sheet)(nil)

// Sheet keeps rows in append order. Cleared rows stay in place as empty
// slots, like a cleared range in a real spreadsheet.
type Sheet struct {
	mu   sync.Mutex
	rows []*core.PaymentRecord
}

func New() *Sheet {
	return &Sheet{}
}

func (s *Sheet) UpsertPayment(_ context.Context, p core.PaymentRecord) (string, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", errors.New("payment without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.SheetRef != "" {
		i, err := s.index(p.SheetRef)
		if err != nil {
			return "", err
		}
		s.rows[i] = &p
		return p.SheetRef, nil
	}

	s.rows = append(s.rows, &p)
	ref := fmt.Sprintf("mem:%d", len(s.rows))
	p.SheetRef = ref
	return ref, nil
}

func (s *Sheet) ClearPayment(_ context.Context, rowRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.index(rowRef)
	if err != nil {
		return err
	}
	s.rows[i] = nil
	return nil
}

func (s *Sheet) ReadPayments(context.Context) ([]core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PaymentRecord
	for _, r := range s.rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Len counts non-empty rows.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r != nil {
			n++
		}
	}
	return n
}

func (s *Sheet) index(ref string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(ref, "mem:"))
	if err != nil || !strings.HasPrefix(ref, "mem:") || n < 1 || n > len(s.rows) {
		return 0, fmt.Errorf("unknown row reference %q", ref)
	}
	return n - 1, nil
}
