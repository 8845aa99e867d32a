package sheets

import (
	"context"

	"consultify/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// PaymentWriter writes a payment row. An empty p.SheetRef appends a new
	// row, otherwise the referenced row is overwritten. The returned ref
	// identifies the row for later updates and deletes.
	PaymentWriter interface {
		UpsertPayment(ctx context.Context, p core.PaymentRecord) (rowRef string, err error)
	}

	PaymentDeleter interface {
		ClearPayment(ctx context.Context, rowRef string) error
	}

	// PaymentReader returns every payment row in the sheet. Amounts are kept
	// as typed so malformed cells can be reported by the summarizer.
	PaymentReader interface {
		ReadPayments(ctx context.Context) ([]core.PaymentRecord, error)
	}

	PaymentSheet interface {
		PaymentWriter
		PaymentDeleter
		PaymentReader
	}
)
