// Package ports declares the storage interfaces the services depend on.
// internal/storage implements them over SQL, internal/storage/memory in
// process.
package ports

import (
	"context"

	"consultify/internal/core"
)

type (
	PaymentStore interface {
		CreatePayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error)
		// UpdatePayment bumps Version and resets the sync status to pending.
		UpdatePayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error)
		// DeletePayment removes the record and returns it as it was.
		DeletePayment(ctx context.Context, id string) (core.PaymentRecord, error)
		GetPayment(ctx context.Context, id string) (core.PaymentRecord, error)
		// ListPayments pages newest first by creation time.
		ListPayments(ctx context.Context, req core.PageRequest) (core.Page[core.PaymentRecord], error)
		// AllPayments returns every record ordered by date, newest first.
		AllPayments(ctx context.Context) ([]core.PaymentRecord, error)
	}

	// PlanStore persists a plan and the payment records generated from it
	// atomically.
	PlanStore interface {
		SavePlan(ctx context.Context, plan core.StoredPlan, payments []core.PaymentRecord) (core.StoredPlan, []core.PaymentRecord, error)
		GetPlan(ctx context.Context, id string) (core.StoredPlan, error)
	}

	CustomerStore interface {
		CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		GetCustomer(ctx context.Context, id string) (core.Customer, error)
		ListCustomers(ctx context.Context, req core.PageRequest) (core.Page[core.Customer], error)
		CountCustomers(ctx context.Context) (int, error)
	}

	ProjectStore interface {
		CreateProject(ctx context.Context, p core.Project) (core.Project, error)
		UpdateProject(ctx context.Context, p core.Project) (core.Project, error)
		GetProject(ctx context.Context, id string) (core.Project, error)
		ListProjects(ctx context.Context, req core.PageRequest) (core.Page[core.Project], error)
	}

	// SyncQueue tracks which payments still have to reach the sheet.
	SyncQueue interface {
		GetPayment(ctx context.Context, id string) (core.PaymentRecord, error)
		PendingSync(ctx context.Context, limit int) ([]core.PaymentRecord, error)
		MarkSynced(ctx context.Context, id string, version int64, sheetRef string) error
		MarkSyncError(ctx context.Context, id string, reason string) error
	}

	// Store is everything a backend provides.
	Store interface {
		PaymentStore
		PlanStore
		CustomerStore
		ProjectStore
		SyncQueue
		Ping(ctx context.Context) error
		Close() error
	}
)
