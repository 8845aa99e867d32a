package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"consultify/internal/core"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("86")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// ProfitStyle colours a non-negative result, LossStyle a negative one.
	ProfitStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	LossStyle   = lipgloss.NewStyle().Foreground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
)

// RenderPlan writes the installment table, one row per installment plus a
// total line.
func RenderPlan(w io.Writer, plan core.InstallmentPlan) error {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Parcelamento %s em %d parcela(s) (%s)",
		core.FormatBRL(plan.Total), len(plan.Installments), plan.Interval.Label())))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, HeaderStyle.Render("PARCELA")+"\t"+HeaderStyle.Render("VENCIMENTO")+"\t"+HeaderStyle.Render("VALOR")+"\t")
	n := len(plan.Installments)
	for _, inst := range plan.Installments {
		fmt.Fprintf(tw, "%d/%d\t%s\t%s\t\n", inst.Number, n, inst.DueDate.FormatBR(), core.FormatBRL(inst.Amount))
	}
	fmt.Fprintf(tw, "%s\t\t%s\t\n", SubtleStyle.Render("Total"), core.FormatBRL(plan.Total))
	return tw.Flush()
}

// RenderSummary writes the period figures and the all-time balance, followed
// by one line per skipped record.
func RenderSummary(w io.Writer, res core.SummaryResult) error {
	s := res.Summary
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Resumo %s a %s", s.PeriodStart.FormatBR(), s.PeriodEnd.FormatBR())))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "Recebido no período\t%s\n", core.FormatBRL(s.PeriodReceived))
	fmt.Fprintf(tw, "Pago no período\t%s\n", core.FormatBRL(s.PeriodPaid))
	fmt.Fprintf(tw, "Lucro no período\t%s\n", moneyStyle(s.PeriodProfit).Render(core.FormatBRL(s.PeriodProfit)))
	fmt.Fprintf(tw, "Saldo total\t%s\n", moneyStyle(s.AllTimeBalance).Render(core.FormatBRL(s.AllTimeBalance)))
	fmt.Fprintf(tw, "Registros\t%d\n", s.RecordCount)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%d registro(s) ignorado(s):", len(res.Warnings))))
		for _, warn := range res.Warnings {
			fmt.Fprintln(w, "  "+SubtleStyle.Render(strings.TrimSpace(warn.String())))
		}
	}
	return nil
}

func moneyStyle(m core.Money) lipgloss.Style {
	if m.Cents < 0 {
		return LossStyle
	}
	return ProfitStyle
}
