// Package config builds component configurations from CLI inputs.
package config

import (
	"time"

	"ticket-reconciliation-service/internal/gateway"
	"ticket-reconciliation-service/internal/reconciler"
	"ticket-reconciliation-service/internal/reporter"
)

// CreateGatewayConfig creates a gateway configuration for the given exports.
func CreateGatewayConfig(ticketsFile, rechargesFile string) *gateway.Config {
	config := gateway.DefaultConfig()
	config.TicketsFile = ticketsFile
	config.RechargesFile = rechargesFile

	// One-shot CLI runs read each file once; the TTL only matters when the
	// gateway is embedded in a long-lived host.
	config.CacheTTL = 5 * time.Minute

	return config
}

// CreateOrchestratorConfig creates an orchestrator configuration.
func CreateOrchestratorConfig(batchSize int, showProgress bool) *reconciler.Config {
	config := reconciler.DefaultConfig()

	if batchSize > 0 {
		config.BatchSize = batchSize
	}
	config.ProgressReporting = showProgress

	return config
}

// CreateReportConfig creates a report configuration for the specified output
// format.
func CreateReportConfig(format string, includeValid bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.IncludeValid = includeValid

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = reporter.FormatConsole
	}

	return config
}
