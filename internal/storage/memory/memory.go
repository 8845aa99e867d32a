// Package memory is an in-process ports.Store used by the memory backend and
// by tests. Data lives for the lifetime of the process.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"consultify/internal/core"
	"consultify/internal/ports"
)

const maxPageSize = 100

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	payments  map[string]core.PaymentRecord
	plans     map[string]core.StoredPlan
	customers map[string]core.Customer
	projects  map[string]core.Project
}

func New() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		payments:  map[string]core.PaymentRecord{},
		plans:     map[string]core.StoredPlan{},
		customers: map[string]core.Customer{},
		projects:  map[string]core.Project{},
	}
}

// WithClock replaces the creation-time source. Timestamps must not repeat
// for pagination to be stable, so tests usually pass a ticking clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreatePayment(_ context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = s.stampPayment(p)
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) stampPayment(p core.PaymentRecord) core.PaymentRecord {
	now := s.now()
	p.ID = uuid.NewString()
	p.Version = 1
	p.SyncStatus = core.SyncPending
	p.SheetRef = ""
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

func (s *Store) UpdatePayment(_ context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.payments[p.ID]
	if !ok {
		return core.PaymentRecord{}, fmt.Errorf("payment %s: %w", p.ID, core.ErrNotFound)
	}
	p.PlanID = cur.PlanID
	p.InstallmentNumber = cur.InstallmentNumber
	p.CreatedAt = cur.CreatedAt
	p.SheetRef = cur.SheetRef
	p.Version = cur.Version + 1
	p.SyncStatus = core.SyncPending
	p.UpdatedAt = s.now()
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) DeletePayment(_ context.Context, id string) (core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.PaymentRecord{}, fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	delete(s.payments, id)
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.PaymentRecord{}, fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListPayments(_ context.Context, req core.PageRequest) (core.Page[core.PaymentRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(values(s.payments), req, func(p core.PaymentRecord) (time.Time, string) { return p.CreatedAt, p.ID })
}

func (s *Store) AllPayments(context.Context) ([]core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := values(s.payments)
	slices.SortFunc(out, func(a, b core.PaymentRecord) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) SavePlan(_ context.Context, plan core.StoredPlan, payments []core.PaymentRecord) (core.StoredPlan, []core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = uuid.NewString()
	plan.CreatedAt = s.now()
	s.plans[plan.ID] = plan

	saved := make([]core.PaymentRecord, len(payments))
	for i, p := range payments {
		p = s.stampPayment(p)
		p.PlanID = plan.ID
		s.payments[p.ID] = p
		saved[i] = p
	}
	return plan, saved, nil
}

func (s *Store) GetPlan(_ context.Context, id string) (core.StoredPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return core.StoredPlan{}, fmt.Errorf("plan %s: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) CreateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return core.Customer{}, fmt.Errorf("customer %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCustomers(_ context.Context, req core.PageRequest) (core.Page[core.Customer], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(values(s.customers), req, func(c core.Customer) (time.Time, string) { return c.CreatedAt, c.ID })
}

func (s *Store) CountCustomers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers), nil
}

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[p.ID]
	if !ok {
		return core.Project{}, fmt.Errorf("project %s: %w", p.ID, core.ErrNotFound)
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return core.Project{}, fmt.Errorf("project %s: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context, req core.PageRequest) (core.Page[core.Project], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(values(s.projects), req, func(p core.Project) (time.Time, string) { return p.CreatedAt, p.ID })
}

func (s *Store) PendingSync(_ context.Context, limit int) ([]core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PaymentRecord
	for _, p := range s.payments {
		if p.SyncStatus != core.SyncDone {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b core.PaymentRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id string, version int64, sheetRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	p.SheetRef = sheetRef
	if p.Version == version {
		p.SyncStatus = core.SyncDone
	}
	s.payments[id] = p
	return nil
}

func (s *Store) MarkSyncError(_ context.Context, id string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	p.SyncStatus = core.SyncFailed
	s.payments[id] = p
	return nil
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// page sorts newest first and returns the items after the request cursor.
func page[T any](items []T, req core.PageRequest, key func(T) (time.Time, string)) (core.Page[T], error) {
	cursor, hasCursor, err := core.DecodeCursor(req.Cursor)
	if err != nil {
		return core.Page[T]{}, err
	}
	limit := core.ClampLimit(req.Limit, 5, maxPageSize)

	slices.SortFunc(items, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(ib, ia)
	})

	var out core.Page[T]
	for _, it := range items {
		t, id := key(it)
		if hasCursor && !cursor.After(t, id) {
			continue
		}
		if len(out.Items) == limit {
			last := out.Items[len(out.Items)-1]
			lt, lid := key(last)
			out.NextCursor = core.Cursor{CreatedAt: lt, ID: lid}.Encode()
			break
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}
