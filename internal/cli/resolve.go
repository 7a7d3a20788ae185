package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/events"
	"github.com/jokarl/taxrules/internal/output"
	"github.com/jokarl/taxrules/internal/types"
)

var (
	formatFlag      string
	outputFlag      string
	onUnmatchedFlag string
	colorFlag       string
	quietFlag       bool
	saveFlag        bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <events-file>",
	Short: "Resolve events to accounting settings",
	Long: `Resolve every event in a JSON or YAML file to the accounting settings
of its counterparty, and report events no rule covers.

Use "-" to read events from stdin. The result is FAIL, and the exit code 1,
only when the unmatched policy is "fail" and some event has no rule.

Example:
  taxrules resolve history.yaml --on-unmatched fail --save`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&formatFlag, "format", "", "Output format: text, json, compact, csv (default from config)")
	resolveCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write output to file instead of stdout")
	resolveCmd.Flags().StringVar(&onUnmatchedFlag, "on-unmatched", "", "Unmatched policy: ignore, warn, fail (default from config)")
	resolveCmd.Flags().StringVar(&colorFlag, "color", "", "Color mode: auto, always, never (default from config)")
	resolveCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print unmatched events, and nothing on PASS")
	resolveCmd.Flags().BoolVar(&saveFlag, "save", false, "Save the report to the store")
}

func runResolve(cmd *cobra.Command, args []string) error {
	a := current
	path := args[0]

	policy := a.cfg.UnmatchedPolicy()
	if onUnmatchedFlag != "" {
		p, err := types.ParseUnmatchedPolicy(onUnmatchedFlag)
		if err != nil {
			return fmt.Errorf("invalid --on-unmatched value: %w", err)
		}
		policy = p
	}

	format := a.cfg.Output.Format
	if formatFlag != "" {
		format = formatFlag
	}
	outFormat, err := output.ParseFormat(format)
	if err != nil {
		return fmt.Errorf("invalid --format value: %w", err)
	}

	evs, err := events.Load(path)
	if err != nil {
		return err
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}

	source := path
	if source == "-" {
		source = "<stdin>"
	}
	result, err := a.engine(reg, policy).Resolve(cmd.Context(), source, evs)
	if err != nil {
		return err
	}

	if saveFlag {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		id, err := st.SaveReport(cmd.Context(), result)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved report %s\n", id)
	}

	var writer io.Writer = cmd.OutOrStdout()
	if outputFlag != "" {
		f, err := os.Create(outputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	if !quietFlag || result.Result == "FAIL" {
		mode := a.cfg.Output.Color
		if colorFlag != "" {
			mode = colorFlag
		}
		renderer := output.NewRenderer(outFormat, output.Options{
			Color: shouldUseColor(mode, writer),
			Quiet: quietFlag,
		})
		if err := renderer.Render(writer, result); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	}

	if result.Result == "FAIL" {
		return &ExitError{Code: 1}
	}
	return nil
}

func shouldUseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // auto
		f, ok := w.(*os.File)
		if !ok {
			return false
		}
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
}
