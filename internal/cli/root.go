package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	versionStr string
	commitStr  string
	dateStr    string
)

// Global flags
var configFlag string

// skipSetup marks commands that run without loading configuration
const skipSetup = "taxrules/skip-setup"

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	versionStr = version
	commitStr = commit
	dateStr = date
}

// ExitError carries a process exit code out of a command. Its message,
// if any, has already been written.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an Execute error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:   "taxrules",
	Short: "Tax treatment rules for protocol events",
	Long: `taxrules resolves decoded protocol history events to the accounting
settings that govern how they affect taxable gain and loss.

Rules come from built-in protocol accountants, HCL rule files and
accountant plugins. Events without a rule are handled by the unmatched
policy: ignore, warn or fail.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	teardown()

	var exit *ExitError
	if err != nil && !errors.As(err, &exit) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file (default: ./.taxrules.hcl)")
}
