package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"consultify/internal/amqp"
	"consultify/internal/core"
	"consultify/internal/ports"
	"consultify/internal/sheets"
)

// SyncWorker copies payments from the database to the spreadsheet.
type SyncWorker struct {
	queue     ports.SyncQueue
	sheet     sheets.PaymentWriter
	deleter   sheets.PaymentDeleter
	batchSize int

	// Syncs are serialized so a payment is never appended twice when the
	// consumer and the sweep pick it up at the same time.
	mu sync.Mutex
}

// SyncResult counts the outcome of a batch.
type SyncResult struct {
	Total  int
	Synced int
	Errors int
}

func NewSyncWorker(queue ports.SyncQueue, sheet sheets.PaymentWriter, deleter sheets.PaymentDeleter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		queue:     queue,
		sheet:     sheet,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage is the AMQP consumer callback.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	switch msg.Action {
	case amqp.ActionDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		return w.HandleSyncMessage(ctx, msg)
	}
}

// HandleSyncMessage writes the current state of the payment. A message for
// an older version still writes the latest data, which is what the sheet
// should show.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.queue.GetPayment(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Payment no longer exists, dropping sync message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get payment from storage: %w", err)
	}

	if p.SyncStatus == core.SyncDone && p.Version >= msg.Version {
		slog.DebugContext(ctx, "Payment already synced", "id", p.ID, "version", p.Version)
		return nil
	}

	return w.syncPayment(ctx, p)
}

// HandleDeleteMessage clears the row of a deleted payment.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"id", msg.ID,
		"sheet_ref", msg.SheetRef)

	if msg.SheetRef == "" {
		slog.InfoContext(ctx, "Deleted payment was never synced, nothing to clear", "id", msg.ID)
		return nil
	}
	if w.deleter == nil {
		slog.WarnContext(ctx, "No sheet deleter configured, skipping row clear", "id", msg.ID)
		return nil
	}

	if err := w.deleter.ClearPayment(ctx, msg.SheetRef); err != nil {
		return fmt.Errorf("clear sheet row: %w", err)
	}

	slog.InfoContext(ctx, "Cleared deleted payment from sheet",
		"id", msg.ID,
		"sheet_ref", msg.SheetRef)
	return nil
}

// ProcessPendingPayments syncs one batch of pending payments. It is the
// fallback for lost AMQP messages.
func (w *SyncWorker) ProcessPendingPayments(ctx context.Context) (SyncResult, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck catches up on a larger batch after worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) (SyncResult, error) {
	res, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return res, fmt.Errorf("startup sync check: %w", err)
	}
	if res.Total == 0 {
		slog.InfoContext(ctx, "No pending payments found on startup")
		return res, nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"total", res.Total,
		"synced", res.Synced,
		"errors", res.Errors)
	return res, nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (SyncResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, err := w.queue.PendingSync(ctx, limit)
	if err != nil {
		return SyncResult{}, fmt.Errorf("get pending payments: %w", err)
	}

	res := SyncResult{Total: len(pending)}
	if res.Total == 0 {
		return res, nil
	}
	slog.InfoContext(ctx, "Processing pending payments", "count", res.Total)

	for _, p := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := w.syncPayment(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment", "id", p.ID, "error", err)
			res.Errors++
			continue
		}
		res.Synced++
	}
	return res, nil
}

func (w *SyncWorker) syncPayment(ctx context.Context, p core.PaymentRecord) error {
	ref, err := w.sheet.UpsertPayment(ctx, p)
	if err != nil {
		if markErr := w.queue.MarkSyncError(ctx, p.ID, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
		}
		return fmt.Errorf("write payment row: %w", err)
	}

	if err := w.queue.MarkSynced(ctx, p.ID, p.Version, ref); err != nil {
		// The row is written; the next sweep rewrites it in place once the
		// ref is stored.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", p.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced payment",
		"id", p.ID,
		"version", p.Version,
		"sheet_ref", ref,
		"amount", p.Amount)
	return nil
}
