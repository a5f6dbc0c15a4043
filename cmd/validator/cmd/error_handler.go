package cmd

import (
	"fmt"
	"os"
	"strings"

	"ticket-reconciliation-service/pkg/errors"
	"ticket-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message for the error and returns the
// process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if serviceErr, ok := errors.AsServiceError(err); ok {
		return h.handleServiceError(serviceErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleServiceError(err *errors.ServiceError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.ExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nRun with --verbose for more detail\n")
	}

	return 1
}

func (h *CLIErrorHandler) getCategoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryGateway:
		return `Gateway error help:
• Check if the CSV files exist and are readable
• Verify the files carry the expected column headers
• Ensure the files use UTF-8 encoding and comma delimiters
• Use 'validator validate --help' for examples of correct file formats`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify draw dates use YYYY-MM-DD
• Ensure amounts are decimal numbers without currency symbols`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'validator validate --help' to see all available options
• Try running with default settings first`

	case errors.CategoryCalendar:
		return `Calendar error help:
• A business-calendar invariant was violated; results were discarded
• Check for recharge timestamps far in the past or future
• Report this run's input files: the draw calendar may need review`

	default:
		return `For more help:
• Use 'validator --help' for general help
• Use 'validator validate --help' for command-specific help
• Report bugs or ask for help on the project repository`
	}
}
