package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"consultify/internal/cache"
	"consultify/internal/core"
	"consultify/internal/ports"
)

// SyncPublisher announces payment changes to the sheet sync worker.
// *amqp.Client implements it.
type SyncPublisher interface {
	PublishPaymentSync(ctx context.Context, id string, version int64) error
	PublishPaymentDelete(ctx context.Context, id, sheetRef string) error
}

// PaymentInput is a payment as typed by a user.
type PaymentInput struct {
	Type        string
	Amount      string
	Date        string
	Description string
	Frequency   string
	CustomerID  string
	ProjectID   string
}

// CommitPlanInput is a plan request plus the ledger fields copied onto every
// generated payment.
type CommitPlanInput struct {
	Plan        PlanRequest
	Type        string
	Description string
	CustomerID  string
	ProjectID   string
}

type PaymentServiceConfig struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
}

// PaymentService saves ledger changes locally first and then notifies the
// sync worker. A publish failure never fails the request.
type PaymentService struct {
	payments  ports.PaymentStore
	plans     ports.PlanStore
	publisher SyncPublisher
	summaries *cache.LRUCache[core.SummaryResult]

	// generation counts writes. A summary computed across a write is not
	// cached.
	genMu      sync.Mutex
	generation uint64
}

func NewPaymentService(payments ports.PaymentStore, plans ports.PlanStore, publisher SyncPublisher, cfg PaymentServiceConfig) *PaymentService {
	if cfg.SummaryCacheSize <= 0 {
		cfg.SummaryCacheSize = 24
	}
	if cfg.SummaryCacheTTL <= 0 {
		cfg.SummaryCacheTTL = 5 * time.Minute
	}
	return &PaymentService{
		payments:  payments,
		plans:     plans,
		publisher: publisher,
		summaries: cache.NewLRUCache[core.SummaryResult](cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
	}
}

// SummaryCache exposes the cache for registration with a cache.Manager.
func (s *PaymentService) SummaryCache() *cache.LRUCache[core.SummaryResult] {
	return s.summaries
}

func (in PaymentInput) record() (core.PaymentRecord, error) {
	typ, err := core.ParsePaymentType(in.Type)
	if err != nil {
		return core.PaymentRecord{}, core.NewInvalidInputError("type", "must be income or expense", err)
	}
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.PaymentRecord{}, core.NewInvalidInputError("amount", "must be a positive amount", err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.PaymentRecord{}, core.NewInvalidInputError("date", "must be YYYY-MM-DD or DD/MM/YYYY", err)
	}
	p := core.PaymentRecord{
		Type:        typ,
		Amount:      amount.String(),
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Frequency:   strings.TrimSpace(in.Frequency),
		CustomerID:  strings.TrimSpace(in.CustomerID),
		ProjectID:   strings.TrimSpace(in.ProjectID),
	}
	if err := p.Validate(); err != nil {
		return core.PaymentRecord{}, err
	}
	return p, nil
}

func (s *PaymentService) CreatePayment(ctx context.Context, in PaymentInput) (core.PaymentRecord, error) {
	p, err := in.record()
	if err != nil {
		return core.PaymentRecord{}, err
	}

	saved, err := s.payments.CreatePayment(ctx, p)
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("save payment: %w", err)
	}
	s.invalidateSummaries()
	s.publishSync(ctx, saved)
	return saved, nil
}

func (s *PaymentService) UpdatePayment(ctx context.Context, id string, in PaymentInput) (core.PaymentRecord, error) {
	p, err := in.record()
	if err != nil {
		return core.PaymentRecord{}, err
	}
	p.ID = id

	saved, err := s.payments.UpdatePayment(ctx, p)
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("update payment: %w", err)
	}
	s.invalidateSummaries()
	s.publishSync(ctx, saved)
	return saved, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	deleted, err := s.payments.DeletePayment(ctx, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	s.invalidateSummaries()

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message", "id", id)
		return nil
	}
	if err := s.publisher.PublishPaymentDelete(ctx, deleted.ID, deleted.SheetRef); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (core.PaymentRecord, error) {
	return s.payments.GetPayment(ctx, id)
}

func (s *PaymentService) ListPayments(ctx context.Context, req core.PageRequest) (core.Page[core.PaymentRecord], error) {
	return s.payments.ListPayments(ctx, req)
}

func (s *PaymentService) AllPayments(ctx context.Context) ([]core.PaymentRecord, error) {
	return s.payments.AllPayments(ctx)
}

// PreviewPlan runs the planner without saving anything.
func (s *PaymentService) PreviewPlan(req PlanRequest) (core.InstallmentPlan, error) {
	return PlanFromRequest(req)
}

// CommitPlan saves the plan and one payment per installment in a single
// store call. Each payment is described as "<description> (i/N)".
func (s *PaymentService) CommitPlan(ctx context.Context, in CommitPlanInput) (core.StoredPlan, []core.PaymentRecord, error) {
	plan, err := PlanFromRequest(in.Plan)
	if err != nil {
		return core.StoredPlan{}, nil, err
	}
	typ, err := core.ParsePaymentType(in.Type)
	if err != nil {
		return core.StoredPlan{}, nil, core.NewInvalidInputError("type", "must be income or expense", err)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return core.StoredPlan{}, nil, core.NewInvalidInputError("description", "is required", core.ErrEmptyField)
	}

	n := len(plan.Installments)
	payments := make([]core.PaymentRecord, n)
	for i, inst := range plan.Installments {
		p := core.PaymentRecord{
			Type:              typ,
			Amount:            inst.Amount.String(),
			Date:              inst.DueDate,
			Description:       fmt.Sprintf("%s (%d/%d)", desc, inst.Number, n),
			Frequency:         plan.Interval.Label(),
			CustomerID:        strings.TrimSpace(in.CustomerID),
			ProjectID:         strings.TrimSpace(in.ProjectID),
			InstallmentNumber: inst.Number,
		}
		if err := p.Validate(); err != nil {
			return core.StoredPlan{}, nil, err
		}
		payments[i] = p
	}

	stored, saved, err := s.plans.SavePlan(ctx, core.StoredPlan{
		Type:        typ,
		Description: desc,
		CustomerID:  strings.TrimSpace(in.CustomerID),
		ProjectID:   strings.TrimSpace(in.ProjectID),
		Plan:        plan,
	}, payments)
	if err != nil {
		return core.StoredPlan{}, nil, fmt.Errorf("save plan: %w", err)
	}
	s.invalidateSummaries()

	for _, p := range saved {
		s.publishSync(ctx, p)
	}
	return stored, saved, nil
}

func (s *PaymentService) GetPlan(ctx context.Context, id string) (core.StoredPlan, error) {
	return s.plans.GetPlan(ctx, id)
}

// Summary summarizes the whole ledger around the month containing ref.
// Results are cached per month until the next write.
func (s *PaymentService) Summary(ctx context.Context, ref time.Time) (core.SummaryResult, error) {
	key := core.DateOf(ref).Format("2006-01")
	if res, ok := s.summaries.Get(key); ok {
		return res, nil
	}
	gen := s.currentGeneration()

	records, err := s.payments.AllPayments(ctx)
	if err != nil {
		return core.SummaryResult{}, fmt.Errorf("load payments: %w", err)
	}
	sum, warnings := Summarize(records, ref)
	for _, w := range warnings {
		slog.WarnContext(ctx, "Skipped record in summary", "id", w.RecordID, "reason", w.Reason)
	}

	res := core.SummaryResult{Summary: sum, Warnings: warnings}
	s.genMu.Lock()
	if s.generation == gen {
		s.summaries.Set(key, res)
	}
	s.genMu.Unlock()
	return res, nil
}

func (s *PaymentService) currentGeneration() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generation
}

// invalidateSummaries runs after every successful write.
func (s *PaymentService) invalidateSummaries() {
	s.genMu.Lock()
	s.generation++
	s.summaries.Purge()
	s.genMu.Unlock()
}

func (s *PaymentService) publishSync(ctx context.Context, p core.PaymentRecord) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", p.ID)
		return
	}
	if err := s.publisher.PublishPaymentSync(ctx, p.ID, p.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", p.ID,
			"version", p.Version,
			"error", err)
	}
}
