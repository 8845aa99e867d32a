package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"consultify/internal/cli"
	"consultify/internal/core"
	"consultify/internal/export"
	"consultify/internal/services"
)

type planOptions struct {
	total    string
	count    int
	start    string
	interval string
	xlsx     string

	commit      bool
	paymentType string
	description string
	customerID  string
	projectID   string
}

func planCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Split a total into installments",
		Long: `Split a total into installments. Each installment is the total divided
by the count, truncated to the cent; the last one absorbs the remainder.

With --commit the plan and one pending payment per installment are saved.`,
		Example: `  consultify plan --total 1000 --count 3 --start 2024-01-31
  consultify plan --total 1500.50 --count 4 --interval weekly --xlsx parcelas.xlsx
  consultify plan --total 900 --count 3 --commit --type income --description "Contrato ACME"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.total, "total", "", "total value, e.g. 1000.00 (required)")
	cmd.Flags().IntVar(&opts.count, "count", 1, "number of installments")
	cmd.Flags().StringVar(&opts.start, "start", "", "first due date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&opts.interval, "interval", string(core.IntervalMonthly), "weekly, biweekly or monthly")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the plan to this .xlsx file")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "save the plan and its payments")
	cmd.Flags().StringVar(&opts.paymentType, "type", string(core.Income), "payment type for --commit (income or expense)")
	cmd.Flags().StringVar(&opts.description, "description", "", "payment description for --commit")
	cmd.Flags().StringVar(&opts.customerID, "customer", "", "customer id for --commit")
	cmd.Flags().StringVar(&opts.projectID, "project", "", "project id for --commit")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func runPlan(cmd *cobra.Command, opts planOptions) error {
	if opts.start == "" {
		opts.start = core.DateOf(nowFunc()).String()
	}
	req := services.PlanRequest{
		TotalValue: opts.total,
		Count:      opts.count,
		StartDate:  opts.start,
		Interval:   opts.interval,
	}

	var plan core.InstallmentPlan
	if opts.commit {
		be, _, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer closeBackend(be)

		stored, payments, err := newPaymentService(be).CommitPlan(cmd.Context(), services.CommitPlanInput{
			Plan:        req,
			Type:        opts.paymentType,
			Description: opts.description,
			CustomerID:  opts.customerID,
			ProjectID:   opts.projectID,
		})
		if err != nil {
			return err
		}
		plan = stored.Plan
		defer fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(
			fmt.Sprintf("\nPlano %s salvo com %d pagamento(s).", stored.ID, len(payments))))
	} else {
		var err error
		plan, err = services.PlanFromRequest(req)
		if err != nil {
			return err
		}
	}

	if err := cli.RenderPlan(cmd.OutOrStdout(), plan); err != nil {
		return err
	}

	if opts.xlsx != "" {
		err := writeFile(opts.xlsx, func(f *os.File) error {
			return export.WritePlan(f, plan)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Planilha gravada em "+opts.xlsx))
	}
	return nil
}
