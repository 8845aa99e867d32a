package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"consultify/internal/backend"
	"consultify/internal/cli"
	"consultify/internal/core"
	"consultify/internal/export"
	"consultify/internal/services"
)

const (
	sourceDB     = "db"
	sourceCSV    = "csv"
	sourceSheets = "sheets"
)

var nowFunc = time.Now

type summaryOptions struct {
	source string
	file   string
	date   string
	xlsx   string
}

func summaryCmd() *cobra.Command {
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise the month of a date against the all-time balance",
		Long: `Summarise received, paid and profit for the calendar month containing
--date, plus the balance over every record. Records that cannot be read
are skipped and listed after the summary.`,
		Example: `  consultify summary
  consultify summary --date 2024-03-15
  consultify summary --source csv --file pagamentos.csv --xlsx resumo.xlsx
  consultify summary --source sheets`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", sourceDB, "where to read payments from: db, csv or sheets")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file for --source csv")
	cmd.Flags().StringVar(&opts.date, "date", "", "reference date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the ledger and summary to this .xlsx file")

	return cmd
}

func runSummary(cmd *cobra.Command, opts summaryOptions) error {
	ref := core.DateOf(nowFunc())
	if opts.date != "" {
		d, err := core.ParseDate(opts.date)
		if err != nil {
			return core.NewInvalidInputError("date", "must be YYYY-MM-DD or DD/MM/YYYY", err)
		}
		ref = d
	}

	records, res, err := loadSummary(cmd, opts, ref)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		logger.Warn("Record skipped", "record_id", w.RecordID, "reason", w.Reason)
	}
	if err := cli.RenderSummary(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if opts.xlsx != "" {
		err := writeFile(opts.xlsx, func(f *os.File) error {
			return export.WriteLedger(f, records, res.Summary)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Planilha gravada em "+opts.xlsx))
	}
	return nil
}

func loadSummary(cmd *cobra.Command, opts summaryOptions, ref core.Date) ([]core.PaymentRecord, core.SummaryResult, error) {
	ctx := cmd.Context()

	var records []core.PaymentRecord
	switch opts.source {
	case sourceDB:
		be, _, err := openBackend(ctx)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}
		defer closeBackend(be)

		payments := newPaymentService(be)
		res, err := payments.Summary(ctx, ref.Time)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}
		if opts.xlsx == "" {
			return nil, res, nil
		}
		records, err = payments.AllPayments(ctx)
		return records, res, err

	case sourceCSV:
		if opts.file == "" {
			return nil, core.SummaryResult{}, fmt.Errorf("--file is required with --source csv")
		}
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}
		defer f.Close()
		records, err = export.ReadPaymentsCSV(f)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}

	case sourceSheets:
		cfg, err := backend.FromAppConfig(appConfig)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}
		sheet, err := backend.NewFactory(logger.Logger).CreateSheet(ctx, cfg)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}
		records, err = sheet.ReadPayments(ctx)
		if err != nil {
			return nil, core.SummaryResult{}, err
		}

	default:
		return nil, core.SummaryResult{}, fmt.Errorf("unknown source %q: use db, csv or sheets", opts.source)
	}

	summary, warnings := services.Summarize(records, ref.Time)
	return records, core.SummaryResult{Summary: summary, Warnings: warnings}, nil
}
