package services

import (
	"strconv"
	"time"

	"consultify/internal/core"
)

// Summarize aggregates records for the calendar month containing ref and
// for all time.
//
// Records whose amount does not parse, whose type is unknown, or whose amount
// would overflow a running total are left out and reported with one warning
// each. The summary of the remaining records is still returned.
func Summarize(records []core.PaymentRecord, ref time.Time) (core.FinancialSummary, []core.SkippedRecordWarning) {
	refDate := core.DateOf(ref)
	start, end := refDate.MonthBounds()
	summary := core.FinancialSummary{PeriodStart: start, PeriodEnd: end}

	var warnings []core.SkippedRecordWarning
	for _, rec := range records {
		amount, err := rec.Money()
		if err != nil {
			warnings = append(warnings, core.SkippedRecordWarning{RecordID: rec.ID, Reason: "invalid amount " + strconv.Quote(rec.Amount)})
			continue
		}
		if !rec.Type.Valid() {
			warnings = append(warnings, core.SkippedRecordWarning{RecordID: rec.ID, Reason: "unknown payment type " + strconv.Quote(string(rec.Type))})
			continue
		}

		inPeriod := !rec.Date.IsZero() && rec.Date.SameMonth(refDate)
		// Period totals never exceed the all-time ones, so one check covers both.
		var ok bool
		switch rec.Type {
		case core.Income:
			if summary.AllTimeReceived, ok = summary.AllTimeReceived.CheckedAdd(amount); ok && inPeriod {
				summary.PeriodReceived = summary.PeriodReceived.Add(amount)
			}
		case core.Expense:
			if summary.AllTimePaid, ok = summary.AllTimePaid.CheckedAdd(amount); ok && inPeriod {
				summary.PeriodPaid = summary.PeriodPaid.Add(amount)
			}
		}
		if !ok {
			warnings = append(warnings, core.SkippedRecordWarning{RecordID: rec.ID, Reason: "amount " + strconv.Quote(rec.Amount) + " overflows the running total"})
			continue
		}
		summary.RecordCount++
	}

	summary.PeriodProfit = summary.PeriodReceived.Sub(summary.PeriodPaid)
	summary.AllTimeBalance = summary.AllTimeReceived.Sub(summary.AllTimePaid)
	return summary, warnings
}

