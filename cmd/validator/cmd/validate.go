package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ticket-reconciliation-service/cmd/validator/config"
	"ticket-reconciliation-service/internal/gateway"
	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/internal/reconciler"
	"ticket-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the validate command
var (
	ticketsFile   string
	rechargesFile string
	outputFormat  string
	outputFile    string
	batchSize     int
	showProgress  bool
	includeValid  bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate ticket registrations against recharges",
	Long: `Validate checks every ticket registration against the recharge history
of its platform and account. A ticket is VALID when some earlier recharge is
still inside its eligibility window, covers the requested draw date, and has
not been consumed by an earlier ticket of the same account.

This command requires:
- A ticket registration file (CSV format)
- A recharge file (CSV format)

Examples:
  # Basic validation
  validator validate --tickets-file tickets.csv --recharges-file recharges.csv

  # JSON report to a file
  validator validate -t tickets.csv -r recharges.csv \
    --output-format json --output-file report.json

  # Include valid tickets in the detail listing, with progress
  validator validate -t tickets.csv -r recharges.csv --include-valid --progress`,

	PreRunE: validateValidateFlags,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	// Required flags
	validateCmd.Flags().StringVarP(&ticketsFile, "tickets-file", "t", "", "path to ticket registration CSV file (required)")
	validateCmd.Flags().StringVarP(&rechargesFile, "recharges-file", "r", "", "path to recharge CSV file (required)")

	// Output flags
	validateCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	validateCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	validateCmd.Flags().BoolVar(&includeValid, "include-valid", false, "include valid tickets in the detail listing")

	// Processing flags
	validateCmd.Flags().IntVar(&batchSize, "batch-size", 200, "tickets processed between cancellation checks")
	validateCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	validateCmd.MarkFlagRequired("tickets-file")
	validateCmd.MarkFlagRequired("recharges-file")

	// Bind flags to viper
	viper.BindPFlag("tickets-file", validateCmd.Flags().Lookup("tickets-file"))
	viper.BindPFlag("recharges-file", validateCmd.Flags().Lookup("recharges-file"))
	viper.BindPFlag("output-format", validateCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", validateCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("include-valid", validateCmd.Flags().Lookup("include-valid"))
	viper.BindPFlag("batch-size", validateCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("progress", validateCmd.Flags().Lookup("progress"))
}

func validateValidateFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	ticketsFile = viper.GetString("tickets-file")
	rechargesFile = viper.GetString("recharges-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	includeValid = viper.GetBool("include-valid")
	batchSize = viper.GetInt("batch-size")
	showProgress = viper.GetBool("progress")

	if ticketsFile == "" {
		return fmt.Errorf("tickets-file is required")
	}
	if rechargesFile == "" {
		return fmt.Errorf("recharges-file is required")
	}

	if err := validateFileExists(ticketsFile, "ticket file"); err != nil {
		return err
	}
	if err := validateFileExists(rechargesFile, "recharge file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting validation...\n")
		fmt.Fprintf(os.Stderr, "Ticket file: %s\n", ticketsFile)
		fmt.Fprintf(os.Stderr, "Recharge file: %s\n", rechargesFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	tickets, recharges, err := loadCollections(ctx)
	if err != nil {
		return err
	}

	orchestrator, err := reconciler.NewOrchestrator(config.CreateOrchestratorConfig(batchSize, showProgress))
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	if showProgress {
		orchestrator.AddProgressCallback(func(progress reconciler.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] valid=%d invalid=%d unknown=%d",
				progress.Processed, progress.Total,
				progress.Valid, progress.Invalid, progress.Unknown)
		})
	}

	outcome, err := orchestrator.ValidateAll(ctx, tickets, recharges)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}

	reportGenerator, err := reporter.NewReportGenerator(
		config.CreateReportConfig(outputFormat, includeValid))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := reportGenerator.GenerateReport(outcome, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nValidation completed in %v.\n", outcome.Duration.Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "Processed %d tickets: %d valid (%d day-2), %d invalid, %d unknown.\n",
			outcome.Stats.Total, outcome.Stats.Valid, outcome.Stats.Day2Valid,
			outcome.Stats.Invalid, outcome.Stats.Unknown)
	}

	return nil
}

func loadCollections(ctx context.Context) ([]*models.TicketEntry, []*models.RechargeEvent, error) {
	gw, err := gateway.NewGateway(config.CreateGatewayConfig(ticketsFile, rechargesFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	tickets, ticketStats, err := gw.FetchEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	recharges, rechargeStats, err := gw.FetchRecharges(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recharges: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Loaded %d tickets (%d rows dropped), %d recharges (%d rows dropped).\n",
			ticketStats.Loaded, ticketStats.Dropped,
			rechargeStats.Loaded, rechargeStats.Dropped)
	}

	return tickets, recharges, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { file.Close() }, nil
}
