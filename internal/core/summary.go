package core

// FinancialSummary aggregates a ledger around one calendar month.
//
// Period values cover PeriodStart..PeriodEnd inclusive; the all-time values
// cover every counted record. It is always derived, never stored.
type FinancialSummary struct {
	PeriodStart     Date
	PeriodEnd       Date
	PeriodReceived  Money
	PeriodPaid      Money
	PeriodProfit    Money
	AllTimeReceived Money
	AllTimePaid     Money
	AllTimeBalance  Money
	RecordCount     int // records that contributed, skipped ones excluded
}

// SummaryResult pairs a summary with the records it had to leave out.
type SummaryResult struct {
	Summary  FinancialSummary
	Warnings []SkippedRecordWarning
}
