// Package export writes plans and ledgers as XLSX workbooks and reads
// ledgers from CSV files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"consultify/internal/core"
)

const (
	PlanSheet    = "Parcelas"
	LedgerSheet  = "Pagamentos"
	SummarySheet = "Resumo"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	moneyFormat = `"R$" #,##0.00`
)

var (
	planHeader   = []string{"Parcela", "Vencimento", "Valor"}
	ledgerHeader = []string{"Data", "Tipo", "Valor", "Descrição", "Cliente", "Projeto", "Parcela"}
)

// WritePlan writes one row per installment followed by a total row.
func WritePlan(w io.Writer, plan core.InstallmentPlan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PlanSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := writeHeader(f, PlanSheet, planHeader); err != nil {
		return err
	}

	for i, inst := range plan.Installments {
		row := i + 2
		f.SetCellValue(PlanSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d/%d", inst.Number, len(plan.Installments)))
		f.SetCellValue(PlanSheet, fmt.Sprintf("B%d", row), inst.DueDate.FormatBR())
		f.SetCellValue(PlanSheet, fmt.Sprintf("C%d", row), inst.Amount.Decimal().InexactFloat64())
	}

	totalRow := len(plan.Installments) + 2
	f.SetCellValue(PlanSheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(PlanSheet, fmt.Sprintf("C%d", totalRow), plan.Total.Decimal().InexactFloat64())
	if err := f.SetCellStyle(PlanSheet, "C2", fmt.Sprintf("C%d", totalRow), money); err != nil {
		return fmt.Errorf("style amounts: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteLedger writes the records on one sheet and the summary on another.
// Amounts that do not parse are written as text so nothing is lost.
func WriteLedger(w io.Writer, records []core.PaymentRecord, summary core.FinancialSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := writeHeader(f, LedgerSheet, ledgerHeader); err != nil {
		return err
	}

	for i, p := range records {
		row := i + 2
		if !p.Date.IsZero() {
			f.SetCellValue(LedgerSheet, fmt.Sprintf("A%d", row), p.Date.FormatBR())
		}
		f.SetCellValue(LedgerSheet, fmt.Sprintf("B%d", row), p.Type.Label())
		if m, err := p.Money(); err == nil {
			f.SetCellValue(LedgerSheet, fmt.Sprintf("C%d", row), m.Decimal().InexactFloat64())
			f.SetCellStyle(LedgerSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), money)
		} else {
			f.SetCellValue(LedgerSheet, fmt.Sprintf("C%d", row), p.Amount)
		}
		f.SetCellValue(LedgerSheet, fmt.Sprintf("D%d", row), p.Description)
		f.SetCellValue(LedgerSheet, fmt.Sprintf("E%d", row), p.CustomerID)
		f.SetCellValue(LedgerSheet, fmt.Sprintf("F%d", row), p.ProjectID)
		if p.InstallmentNumber > 0 {
			f.SetCellValue(LedgerSheet, fmt.Sprintf("G%d", row), p.InstallmentNumber)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	lines := []struct {
		label string
		value core.Money
	}{
		{"Recebido no período", summary.PeriodReceived},
		{"Pago no período", summary.PeriodPaid},
		{"Lucro no período", summary.PeriodProfit},
		{"Saldo geral", summary.AllTimeBalance},
	}
	f.SetCellValue(SummarySheet, "A1", "Período")
	f.SetCellValue(SummarySheet, "B1", summary.PeriodStart.FormatBR()+" a "+summary.PeriodEnd.FormatBR())
	for i, l := range lines {
		row := i + 2
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), l.label)
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), l.value.Decimal().InexactFloat64())
	}
	if err := f.SetCellStyle(SummarySheet, "B2", fmt.Sprintf("B%d", len(lines)+1), money); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	return nil
}

func strPtr(s string) *string { return &s }
