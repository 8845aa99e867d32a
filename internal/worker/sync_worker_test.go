package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultify/internal/amqp"
	"consultify/internal/core"
	sheetmem "consultify/internal/sheets/memory"
	"consultify/internal/storage/memory"
)

type failingSheet struct{}

func (failingSheet) UpsertPayment(context.Context, core.PaymentRecord) (string, error) {
	return "", errors.New("quota exceeded")
}

func newPayment(t *testing.T, store *memory.Store, desc string) core.PaymentRecord {
	t.Helper()
	p, err := store.CreatePayment(context.Background(), core.PaymentRecord{
		Type: core.Income, Amount: "100.00", Date: core.NewDate(2024, 5, 2), Description: desc,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return p
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sheet := sheetmem.New()
	w := NewSyncWorker(store, sheet, sheet, 10)

	p := newPayment(t, store, "Consultoria")
	if err := w.HandleMessage(ctx, amqp.NewPaymentSyncMessage(p.ID, p.Version)); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := store.GetPayment(ctx, p.ID)
	if got.SyncStatus != core.SyncDone || got.SheetRef != "mem:1" {
		t.Fatalf("payment not marked synced: %+v", got)
	}

	// Redelivery of the same version is a no-op.
	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(p.ID, p.Version)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if sheet.Len() != 1 {
		t.Fatalf("expected one row, got %d", sheet.Len())
	}

	// An edit rewrites the same row.
	got.Amount = "120.00"
	up, _ := store.UpdatePayment(ctx, got)
	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(up.ID, up.Version)); err != nil {
		t.Fatalf("sync update: %v", err)
	}
	rows, _ := sheet.ReadPayments(ctx)
	if len(rows) != 1 || rows[0].Amount != "120.00" {
		t.Fatalf("row not updated in place: %+v", rows)
	}
}

func TestHandleSyncMessage_MissingPaymentIsDropped(t *testing.T) {
	w := NewSyncWorker(memory.New(), sheetmem.New(), nil, 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewPaymentSyncMessage("gone", 1)); err != nil {
		t.Fatalf("expected nil for deleted payment, got %v", err)
	}
}

func TestHandleSyncMessage_SheetFailureMarksError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := NewSyncWorker(store, failingSheet{}, nil, 10)

	p := newPayment(t, store, "x")
	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(p.ID, p.Version)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	got, _ := store.GetPayment(ctx, p.ID)
	if got.SyncStatus != core.SyncFailed {
		t.Fatalf("expected sync error status, got %s", got.SyncStatus)
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sheet := sheetmem.New()
	w := NewSyncWorker(store, sheet, sheet, 10)

	p := newPayment(t, store, "to delete")
	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(p.ID, p.Version)); err != nil {
		t.Fatalf("sync: %v", err)
	}
	deleted, _ := store.DeletePayment(ctx, p.ID)

	if err := w.HandleMessage(ctx, amqp.NewPaymentDeleteMessage(deleted.ID, deleted.SheetRef)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sheet.Len() != 0 {
		t.Fatalf("row not cleared")
	}

	// Never-synced payments have nothing to clear.
	if err := w.HandleDeleteMessage(ctx, amqp.NewPaymentDeleteMessage("x", "")); err != nil {
		t.Fatalf("unsynced delete: %v", err)
	}
	// Without a deleter the message is acknowledged.
	if err := NewSyncWorker(store, sheet, nil, 1).HandleDeleteMessage(ctx, amqp.NewPaymentDeleteMessage("x", "mem:1")); err != nil {
		t.Fatalf("nil deleter: %v", err)
	}
}

func TestProcessPendingPayments(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sheet := sheetmem.New()
	w := NewSyncWorker(store, sheet, sheet, 2)

	for _, d := range []string{"a", "b", "c"} {
		newPayment(t, store, d)
	}

	res, err := w.ProcessPendingPayments(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Total != 2 || res.Synced != 2 || res.Errors != 0 {
		t.Fatalf("unexpected batch result %+v", res)
	}

	res, err = w.StartupSyncCheck(ctx)
	if err != nil || res.Total != 1 || res.Synced != 1 {
		t.Fatalf("startup check: %+v %v", res, err)
	}

	pending, _ := store.PendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %d", len(pending))
	}
	if sheet.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", sheet.Len())
	}
}

func TestProcessPendingPayments_CountsErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := NewSyncWorker(store, failingSheet{}, nil, 10)
	newPayment(t, store, "a")

	res, err := w.ProcessPendingPayments(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Errors != 1 || res.Synced != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScheduler(t *testing.T) {
	w := NewSyncWorker(memory.New(), sheetmem.New(), nil, 10)

	if _, err := NewScheduler(w, "not a cron spec"); err == nil {
		t.Fatal("expected invalid schedule error")
	}

	s, err := NewScheduler(w, "")
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("expected running scheduler")
	}
	if err := s.Start(ctx); err == nil {
		t.Fatal("expected error on double start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("scheduler still running after stop")
	}
}
