package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"consultify/internal/cli"
	"consultify/internal/config"
	"consultify/internal/log"
)

var (
	cfgFile string
	version = "dev"

	// appConfig is filled by initConfig before any subcommand runs.
	appConfig *config.Config
	logger    *log.Logger

	rootCmd = &cobra.Command{
		Use:   "consultify",
		Short: "Payments, installment plans and monthly summaries for a consultancy",
		Long: `consultify keeps the ledger of a small consultancy: it splits contract
values into installment plans, records received and paid amounts and
summarises the month against the all-time balance.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./consultify.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("backend", "", "data backend (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().String("db-path", "", "SQLite database path")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data_backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("sqlite_db_path", rootCmd.PersistentFlags().Lookup("db-path"))

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// initConfig layers the environment (and .env), an optional config file and
// command-line flags, in increasing priority.
func initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("consultify")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("CONSULTIFY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	overrideString(&cfg.LogLevel, "log_level")
	overrideString(&cfg.DataBackend, "data_backend")
	overrideString(&cfg.SQLiteDBPath, "sqlite_db_path")
	overrideString(&cfg.DatabaseURL, "database_url")
	overrideString(&cfg.GoogleSpreadsheetID, "google_spreadsheet_id")
	overrideString(&cfg.GoogleSheetName, "google_sheet_name")
	overrideString(&cfg.GoogleServiceAccountFile, "google_service_account_file")

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger = log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	log.SetDefault(logger)

	appConfig = cfg
	return nil
}

func overrideString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "consultify %s\n", version)
		},
	}
}
