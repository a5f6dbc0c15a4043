package config

import (
	"testing"

	"ticket-reconciliation-service/internal/reporter"
)

func TestCreateGatewayConfig(t *testing.T) {
	config := CreateGatewayConfig("tickets.csv", "recharges.csv")

	if config.TicketsFile != "tickets.csv" || config.RechargesFile != "recharges.csv" {
		t.Errorf("paths not applied: %+v", config)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("generated config should be valid: %v", err)
	}
}

func TestCreateOrchestratorConfig(t *testing.T) {
	config := CreateOrchestratorConfig(500, true)
	if config.BatchSize != 500 {
		t.Errorf("batch size = %d, want 500", config.BatchSize)
	}
	if !config.ProgressReporting {
		t.Error("progress reporting should be enabled")
	}

	// Non-positive batch size falls back to the default.
	fallback := CreateOrchestratorConfig(0, false)
	if fallback.BatchSize <= 0 {
		t.Errorf("fallback batch size = %d, want positive default", fallback.BatchSize)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
		{"bogus", reporter.FormatConsole},
	}

	for _, tt := range tests {
		config := CreateReportConfig(tt.format, false)
		if config.Format != tt.want {
			t.Errorf("CreateReportConfig(%q) format = %s, want %s", tt.format, config.Format, tt.want)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("generated config should be valid: %v", err)
		}
	}

	if !CreateReportConfig("console", true).IncludeValid {
		t.Error("include-valid flag should be applied")
	}
}
