package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"consultify/internal/core"
)

func TestWritePlan(t *testing.T) {
	plan := core.InstallmentPlan{
		Total:     core.Money{Cents: 10000},
		Interval:  core.IntervalMonthly,
		StartDate: core.NewDate(2024, 1, 31),
		Installments: []core.Installment{
			{Number: 1, DueDate: core.NewDate(2024, 1, 31), Amount: core.Money{Cents: 3333}},
			{Number: 2, DueDate: core.NewDate(2024, 2, 29), Amount: core.Money{Cents: 3333}},
			{Number: 3, DueDate: core.NewDate(2024, 3, 31), Amount: core.Money{Cents: 3334}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, plan))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PlanSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, planHeader, rows[0])
	assert.Equal(t, []string{"2/3", "29/02/2024", "33.33"}, rows[2])
	assert.Equal(t, "33.34", rows[3][2])
	assert.Equal(t, "Total", rows[4][0])
	assert.Equal(t, "100", rows[4][2])
}

func TestWriteLedger(t *testing.T) {
	records := []core.PaymentRecord{
		{ID: "p1", Type: core.Income, Amount: "1500.00", Date: core.NewDate(2024, 3, 5), Description: "Consultoria (1/2)", InstallmentNumber: 1},
		{ID: "p2", Type: core.Expense, Amount: "abc", Date: core.NewDate(2024, 3, 6), Description: "Hospedagem"},
	}
	summary := core.FinancialSummary{
		PeriodStart:    core.NewDate(2024, 3, 1),
		PeriodEnd:      core.NewDate(2024, 3, 31),
		PeriodReceived: core.Money{Cents: 150000},
		PeriodProfit:   core.Money{Cents: 150000},
		AllTimeBalance: core.Money{Cents: 150000},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, records, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LedgerSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Receita", rows[1][1])
	assert.Equal(t, "1500", rows[1][2])
	assert.Equal(t, "1", rows[1][6])
	assert.Equal(t, "abc", rows[2][2])

	sum, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "01/03/2024 a 31/03/2024", sum[0][1])
	assert.Equal(t, "Saldo geral", sum[4][0])
	assert.Equal(t, "1500", sum[4][1])
}

func TestReadPaymentsCSV(t *testing.T) {
	in := "\ufeffData,Tipo,Valor,Descrição\n" +
		"05/03/2024,receita,\"1.500,00\",Consultoria\n" +
		"2024-03-06,despesa,abc,Hospedagem\n" +
		",,,\n" +
		"07/03/2024,outro,10,Misc\n"

	got, err := ReadPaymentsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "line-2", got[0].ID)
	assert.Equal(t, core.Income, got[0].Type)
	assert.Equal(t, "1.500,00", got[0].Amount)
	assert.Equal(t, "2024-03-05", got[0].Date.String())
	assert.Equal(t, "abc", got[1].Amount)
	assert.Equal(t, core.PaymentType("outro"), got[2].Type)
	assert.Equal(t, "line-5", got[2].ID)
}

func TestReadPaymentsCSV_MissingColumn(t *testing.T) {
	_, err := ReadPaymentsCSV(strings.NewReader("date,amount\n2024-03-01,10\n"))
	assert.ErrorContains(t, err, `missing "type" column`)
}

func TestReadPaymentsCSV_Empty(t *testing.T) {
	got, err := ReadPaymentsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
