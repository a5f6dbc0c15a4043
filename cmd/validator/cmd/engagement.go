package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-reconciliation-service/cmd/validator/config"
	"ticket-reconciliation-service/internal/engagement"
	"ticket-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var engagementDays int

// engagementCmd represents the engagement command
var engagementCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Report recharge and ticket-creation engagement",
	Long: `Engagement reports how the recharging population overlaps with the
ticket-creating population: accounts that only recharge, accounts that do
both, and accounts that recharged repeatedly without ever registering a
ticket.

Examples:
  # Overall engagement
  validator engagement --tickets-file tickets.csv --recharges-file recharges.csv

  # With a trailing 7-day daily breakdown
  validator engagement -t tickets.csv -r recharges.csv --days 7 --output-format json`,

	PreRunE: validateEngagementFlags,
	RunE:    runEngagement,
}

func init() {
	rootCmd.AddCommand(engagementCmd)

	engagementCmd.Flags().StringVarP(&ticketsFile, "tickets-file", "t", "", "path to ticket registration CSV file (required)")
	engagementCmd.Flags().StringVarP(&rechargesFile, "recharges-file", "r", "", "path to recharge CSV file (required)")
	engagementCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	engagementCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	engagementCmd.Flags().IntVar(&engagementDays, "days", 0, "trailing daily breakdown window in days (0 disables)")

	engagementCmd.MarkFlagRequired("tickets-file")
	engagementCmd.MarkFlagRequired("recharges-file")

	viper.BindPFlag("days", engagementCmd.Flags().Lookup("days"))
}

func validateEngagementFlags(cmd *cobra.Command, args []string) error {
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

	if engagementDays < 0 {
		return fmt.Errorf("days cannot be negative")
	}

	return nil
}

func runEngagement(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickets, recharges, err := loadCollections(ctx)
	if err != nil {
		return err
	}

	stats := engagement.Analyze(tickets, recharges)

	var daily []engagement.DailyStats
	if engagementDays > 0 {
		daily = engagement.AnalyzeDaily(tickets, recharges, engagementDays, time.Now())
	}

	reportGenerator, err := reporter.NewReportGenerator(
		config.CreateReportConfig(outputFormat, false))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := reportGenerator.GenerateEngagementReport(stats, daily, output); err != nil {
		return fmt.Errorf("failed to generate engagement report: %w", err)
	}

	return nil
}
