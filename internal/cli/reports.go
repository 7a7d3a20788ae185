package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/output"
	"github.com/jokarl/taxrules/internal/store"
	"github.com/jokarl/taxrules/internal/types"
)

var (
	reportsJSONFlag   bool
	reportsLimitFlag  int
	reportsOffsetFlag int
	reportsDirFlag    string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved reports",
	Long:  `Commands for reports saved with "taxrules resolve --save".`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a report overview",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsEventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show the resolved events of a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsEvents,
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a report and its events",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsDelete,
}

var reportsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a report as CSV",
	Long: `Write the resolved events of a report to report_<id>.csv in the
given directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportsExport,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsEventsCmd, reportsDeleteCmd, reportsExportCmd)

	for _, c := range []*cobra.Command{reportsListCmd, reportsShowCmd, reportsEventsCmd} {
		c.Flags().BoolVar(&reportsJSONFlag, "json", false, "Print JSON")
	}
	reportsEventsCmd.Flags().IntVar(&reportsLimitFlag, "limit", -1, "Maximum number of events (-1 for all)")
	reportsEventsCmd.Flags().IntVar(&reportsOffsetFlag, "offset", 0, "Number of events to skip")
	reportsExportCmd.Flags().StringVar(&reportsDirFlag, "dir", ".", "Directory to write the CSV file to")
}

func runReportsList(cmd *cobra.Command, _ []string) error {
	st, err := current.openStore()
	if err != nil {
		return err
	}
	reports, err := st.ListReports(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportsJSONFlag {
		if reports == nil {
			reports = []*store.ReportOverview{}
		}
		return writeJSON(out, reports)
	}

	if len(reports) == 0 {
		fmt.Fprintln(out, "No saved reports.")
		return nil
	}
	for _, r := range reports {
		printOverviewLine(out, r)
	}
	return nil
}

func printOverviewLine(w io.Writer, r *store.ReportOverview) {
	fmt.Fprintf(w, "%s  %s  %-4s  %d events, %d unmatched  %s\n",
		r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"), r.Result,
		r.Summary.Total, r.Summary.Unmatched, r.Source)
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	st, err := current.openStore()
	if err != nil {
		return err
	}
	r, err := st.GetReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportsJSONFlag {
		return writeJSON(out, r)
	}

	fmt.Fprintf(out, "Report:  %s\n", r.ID)
	fmt.Fprintf(out, "Created: %s\n", r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Source:  %s\n", r.Source)
	fmt.Fprintf(out, "Policy:  %s\n", r.Policy)
	fmt.Fprintf(out, "Result:  %s\n", r.Result)
	s := r.Summary
	fmt.Fprintf(out, "Events:  %d total, %d matched, %d unmatched, %d taxable, %d swaps\n",
		s.Total, s.Matched, s.Unmatched, s.Taxable, s.Swaps)
	return nil
}

func runReportsEvents(cmd *cobra.Command, args []string) error {
	st, err := current.openStore()
	if err != nil {
		return err
	}
	page, err := st.ReportEvents(cmd.Context(), args[0], reportsLimitFlag, reportsOffsetFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportsJSONFlag {
		return writeJSON(out, page)
	}

	r := &output.CompactRenderer{}
	if err := r.Render(out, &types.ResolveResult{Resolutions: page.Entries}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Showing %d of %d event(s)\n", len(page.Entries), page.EntriesFound)
	return nil
}

func runReportsDelete(cmd *cobra.Command, args []string) error {
	st, err := current.openStore()
	if err != nil {
		return err
	}
	if err := st.DeleteReport(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %s\n", args[0])
	return nil
}

func runReportsExport(cmd *cobra.Command, args []string) error {
	st, err := current.openStore()
	if err != nil {
		return err
	}
	result, err := st.LoadReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(reportsDirFlag, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(reportsDirFlag, fmt.Sprintf("report_%s.csv", result.ID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := (&output.CSVRenderer{}).Render(f, result); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d event(s) to %s\n", len(result.Resolutions), path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
