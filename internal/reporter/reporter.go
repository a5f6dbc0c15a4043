// Package reporter renders validation outcomes and engagement statistics.
//
// Three output formats are supported: console for terminal reading, JSON for
// programmatic consumption, and CSV for spreadsheet follow-up. The report
// always preserves the input ticket order of the outcome.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"ticket-reconciliation-service/internal/engagement"
	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeValid controls whether valid tickets appear in the detail
	// listing. Invalid tickets always appear: they are the reason the
	// report exists.
	IncludeValid bool `json:"include_valid"`

	// MaxDetailRows caps the detail listing in console output. Zero means
	// unlimited.
	MaxDetailRows int `json:"max_detail_rows"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:        FormatConsole,
		IncludeValid:  false,
		MaxDetailRows: 0,
		CSVDelimiter:  ',',
		CSVHeaders:    true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxDetailRows < 0 {
		return fmt.Errorf("max detail rows cannot be negative, got %d", c.MaxDetailRows)
	}
	return nil
}

// ReportGenerator renders validation outcomes in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders a validation outcome to the writer.
func (rg *ReportGenerator) GenerateReport(outcome *reconciler.ValidationOutcome, writer io.Writer) error {
	if outcome == nil {
		return fmt.Errorf("validation outcome cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(outcome, writer)
	case FormatJSON:
		return rg.generateJSONReport(outcome, writer)
	case FormatCSV:
		return rg.generateCSVReport(outcome, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(outcome *reconciler.ValidationOutcome, writer io.Writer) error {
	fmt.Fprintf(writer, "TICKET VALIDATION REPORT\n")
	fmt.Fprintf(writer, "Run ID: %s\n", outcome.RunID)
	fmt.Fprintf(writer, "Generated: %s\n", outcome.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %v\n\n", outcome.Duration.Round(time.Millisecond))

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummary(&outcome.Stats, writer)
	fmt.Fprintf(writer, "\n")

	rows := rg.detailRows(outcome)
	if len(rows) > 0 {
		fmt.Fprintf(writer, "=== TICKET DETAILS ===\n")
		rg.printDetailTable(rows, writer)
	}

	return nil
}

func (rg *ReportGenerator) printSummary(stats *reconciler.Stats, writer io.Writer) {
	fmt.Fprintf(writer, "%-24s %d\n", "Total Tickets:", stats.Total)
	fmt.Fprintf(writer, "%-24s %d (%s)\n", "Valid:", stats.Valid, percentage(stats.Valid, stats.Total))
	fmt.Fprintf(writer, "%-24s %d\n", "  of which day-2:", stats.Day2Valid)
	fmt.Fprintf(writer, "%-24s %d (%s)\n", "Invalid:", stats.Invalid, percentage(stats.Invalid, stats.Total))
	fmt.Fprintf(writer, "%-24s %d\n", "Unknown:", stats.Unknown)
	fmt.Fprintf(writer, "%-24s %s\n", "Backing Amount:", stats.AmountValid.StringFixed(2))
}

func (rg *ReportGenerator) detailRows(outcome *reconciler.ValidationOutcome) []*models.ValidationResult {
	var rows []*models.ValidationResult
	for _, result := range outcome.Results {
		if result.Status == models.StatusValid && !rg.config.IncludeValid {
			continue
		}
		rows = append(rows, result)
		if rg.config.MaxDetailRows > 0 && len(rows) >= rg.config.MaxDetailRows {
			break
		}
	}
	return rows
}

func (rg *ReportGenerator) printDetailTable(rows []*models.ValidationResult, writer io.Writer) {
	fmt.Fprintf(writer, "%-14s %-10s %-12s %-12s %-8s %s\n",
		"Ticket", "Platform", "Account", "Draw Date", "Status", "Reason")
	fmt.Fprintf(writer, "%s\n", strings.Repeat("-", 100))

	for _, result := range rows {
		ticket := result.Ticket
		fmt.Fprintf(writer, "%-14s %-10s %-12s %-12s %-8s %s\n",
			truncate(ticket.TicketNumber, 14),
			truncate(ticket.Platform, 10),
			truncate(ticket.AccountID, 12),
			ticket.RequestedDrawDate,
			result.Status,
			result.Reason)
	}
}

func (rg *ReportGenerator) generateJSONReport(outcome *reconciler.ValidationOutcome, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outcome)
}

func (rg *ReportGenerator) generateCSVReport(outcome *reconciler.ValidationOutcome, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Ticket_Number",
			"Platform",
			"Account_ID",
			"Registered_At",
			"Requested_Draw_Date",
			"Status",
			"Is_Day2",
			"Matched_Recharge_ID",
			"Matched_Amount",
			"Reason",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, result := range outcome.Results {
		ticket := result.Ticket

		registeredAt := ""
		if !ticket.RegisteredAt.IsZero() {
			registeredAt = ticket.RegisteredAt.Format(time.RFC3339)
		}

		matchedID := ""
		matchedAmount := ""
		if result.MatchedRecharge != nil {
			matchedID = result.MatchedRecharge.RechargeID
			matchedAmount = result.MatchedRecharge.Amount.String()
		}

		record := []string{
			ticket.TicketNumber,
			ticket.Platform,
			ticket.AccountID,
			registeredAt,
			ticket.RequestedDrawDate,
			result.Status.String(),
			fmt.Sprintf("%t", result.IsDay2),
			matchedID,
			matchedAmount,
			result.Reason,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return csvWriter.Error()
}

// GenerateEngagementReport renders engagement statistics to the writer in
// the configured format. Daily breakdowns may be nil.
func (rg *ReportGenerator) GenerateEngagementReport(
	stats *engagement.Stats,
	daily []engagement.DailyStats,
	writer io.Writer,
) error {
	if stats == nil {
		return fmt.Errorf("engagement stats cannot be nil")
	}

	switch rg.config.Format {
	case FormatJSON:
		payload := struct {
			Overall *engagement.Stats       `json:"overall"`
			Daily   []engagement.DailyStats `json:"daily,omitempty"`
		}{Overall: stats, Daily: daily}

		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)

	case FormatCSV:
		return rg.generateEngagementCSV(stats, daily, writer)

	default:
		rg.printEngagementConsole(stats, daily, writer)
		return nil
	}
}

func (rg *ReportGenerator) printEngagementConsole(
	stats *engagement.Stats,
	daily []engagement.DailyStats,
	writer io.Writer,
) {
	fmt.Fprintf(writer, "ENGAGEMENT REPORT\n\n")
	fmt.Fprintf(writer, "%-32s %d\n", "Unique Rechargers:", stats.UniqueRechargers)
	fmt.Fprintf(writer, "%-32s %d\n", "Unique Ticket Creators:", stats.UniqueCreators)
	fmt.Fprintf(writer, "%-32s %d\n", "Participants (both):", stats.Participants)
	fmt.Fprintf(writer, "%-32s %d\n", "Rechargers Without Tickets:", stats.RechargersWithoutTickets)
	fmt.Fprintf(writer, "%-32s %d\n", "Multi-Recharge, No Ticket:", stats.MultiRechargeNoTicket)

	if len(daily) == 0 {
		return
	}

	fmt.Fprintf(writer, "\n=== DAILY BREAKDOWN ===\n")
	fmt.Fprintf(writer, "%-12s %12s %12s %12s\n", "Date", "Rechargers", "Creators", "Participants")
	for _, day := range daily {
		fmt.Fprintf(writer, "%-12s %12d %12d %12d\n",
			day.Date, day.Stats.UniqueRechargers, day.Stats.UniqueCreators, day.Stats.Participants)
	}
}

func (rg *ReportGenerator) generateEngagementCSV(
	stats *engagement.Stats,
	daily []engagement.DailyStats,
	writer io.Writer,
) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Date",
			"Unique_Rechargers",
			"Unique_Creators",
			"Participants",
			"Rechargers_Without_Tickets",
			"Multi_Recharge_No_Ticket",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	writeRow := func(date string, s *engagement.Stats) error {
		return csvWriter.Write([]string{
			date,
			fmt.Sprintf("%d", s.UniqueRechargers),
			fmt.Sprintf("%d", s.UniqueCreators),
			fmt.Sprintf("%d", s.Participants),
			fmt.Sprintf("%d", s.RechargersWithoutTickets),
			fmt.Sprintf("%d", s.MultiRechargeNoTicket),
		})
	}

	if err := writeRow("overall", stats); err != nil {
		return err
	}
	for _, day := range daily {
		stats := day.Stats
		if err := writeRow(day.Date, &stats); err != nil {
			return err
		}
	}

	return csvWriter.Error()
}

func percentage(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
