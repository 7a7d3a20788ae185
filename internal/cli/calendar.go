package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/calendar"
)

var (
	calNameFlag         string
	calDescriptionFlag  string
	calCounterpartyFlag string
	calAddressFlag      string
	calBlockchainFlag   string
	calTimestampFlag    string

	calFromFlag     string
	calToFlag       string
	calAccountsFlag []string
	calJSONFlag     bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage calendar reminders",
	Long: `Calendar entries are dated reminders, optionally tied to a protocol
counterparty and an address on a blockchain.`,
}

var calendarAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a calendar entry",
	Example: `  taxrules calendar add --name "ENS renewal" --counterparty ens \
    --address 0x9531C059098e3d194fF87FebB587aB07B30B1306 --blockchain eth \
    --timestamp 2026-12-01`,
	Args: cobra.NoArgs,
	RunE: runCalendarAdd,
}

var calendarEditCmd = &cobra.Command{
	Use:   "edit <identifier>",
	Short: "Edit a calendar entry; flags not given keep their value",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarEdit,
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendar entries",
	Args:  cobra.NoArgs,
	RunE:  runCalendarList,
}

var calendarDeleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete a calendar entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarDelete,
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.AddCommand(calendarAddCmd, calendarEditCmd, calendarListCmd, calendarDeleteCmd)

	for _, c := range []*cobra.Command{calendarAddCmd, calendarEditCmd} {
		c.Flags().StringVar(&calNameFlag, "name", "", "Entry name")
		c.Flags().StringVar(&calDescriptionFlag, "description", "", "Entry description")
		c.Flags().StringVar(&calCounterpartyFlag, "counterparty", "", "Protocol counterparty")
		c.Flags().StringVar(&calAddressFlag, "address", "", "Account address")
		c.Flags().StringVar(&calBlockchainFlag, "blockchain", "", "Blockchain of the address")
		c.Flags().StringVar(&calTimestampFlag, "timestamp", "", "Date: unix seconds, RFC 3339 or YYYY-MM-DD")
	}
	if err := calendarAddCmd.MarkFlagRequired("timestamp"); err != nil {
		panic(err)
	}

	calendarListCmd.Flags().StringVar(&calFromFlag, "from", "", "Only entries at or after this date")
	calendarListCmd.Flags().StringVar(&calToFlag, "to", "", "Only entries at or before this date")
	calendarListCmd.Flags().StringVar(&calCounterpartyFlag, "counterparty", "", "Only entries of this counterparty")
	calendarListCmd.Flags().StringVar(&calNameFlag, "name", "", "Only entries whose name contains this text")
	calendarListCmd.Flags().StringArrayVar(&calAccountsFlag, "account", nil, "Only entries of address[@blockchain] (repeatable)")
	calendarListCmd.Flags().BoolVar(&calJSONFlag, "json", false, "Print JSON")
}

// parseTimestamp accepts unix seconds, RFC 3339 or a plain date (UTC)
func parseTimestamp(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("invalid timestamp %q: want unix seconds, RFC 3339 or YYYY-MM-DD", s)
}

func parseIdentifier(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid identifier %q", s)
	}
	return id, nil
}

func runCalendarAdd(cmd *cobra.Command, _ []string) error {
	repo, err := current.calendar(cmd)
	if err != nil {
		return err
	}
	ts, err := parseTimestamp(calTimestampFlag)
	if err != nil {
		return err
	}

	id, err := repo.Add(cmd.Context(), calendar.Entry{
		Name:         calNameFlag,
		Description:  calDescriptionFlag,
		Counterparty: calCounterpartyFlag,
		Address:      calAddressFlag,
		Blockchain:   calendar.Blockchain(calBlockchainFlag),
		Timestamp:    ts,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added calendar entry %d\n", id)
	return nil
}

func runCalendarEdit(cmd *cobra.Command, args []string) error {
	id, err := parseIdentifier(args[0])
	if err != nil {
		return err
	}
	repo, err := current.calendar(cmd)
	if err != nil {
		return err
	}
	e, err := repo.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		e.Name = calNameFlag
	}
	if flags.Changed("description") {
		e.Description = calDescriptionFlag
	}
	if flags.Changed("counterparty") {
		e.Counterparty = calCounterpartyFlag
	}
	if flags.Changed("address") {
		e.Address = calAddressFlag
	}
	if flags.Changed("blockchain") {
		e.Blockchain = calendar.Blockchain(calBlockchainFlag)
	}
	if flags.Changed("timestamp") {
		if e.Timestamp, err = parseTimestamp(calTimestampFlag); err != nil {
			return err
		}
	}

	if err := repo.Update(cmd.Context(), e); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated calendar entry %d\n", id)
	return nil
}

func runCalendarList(cmd *cobra.Command, _ []string) error {
	repo, err := current.calendar(cmd)
	if err != nil {
		return err
	}

	f := calendar.Filter{Counterparty: calCounterpartyFlag, Name: calNameFlag}
	if calFromFlag != "" {
		if f.FromTimestamp, err = parseTimestamp(calFromFlag); err != nil {
			return err
		}
	}
	if calToFlag != "" {
		if f.ToTimestamp, err = parseTimestamp(calToFlag); err != nil {
			return err
		}
	}
	for _, a := range calAccountsFlag {
		addr, chain, _ := strings.Cut(a, "@")
		f.Accounts = append(f.Accounts, calendar.Account{Address: addr, Blockchain: calendar.Blockchain(chain)})
	}

	res, err := repo.Query(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if calJSONFlag {
		return writeJSON(out, res)
	}
	for _, e := range res.Entries {
		fmt.Fprintf(out, "%4d  %s  %s", e.Identifier, time.Unix(e.Timestamp, 0).UTC().Format("2006-01-02"), e.Name)
		if e.Counterparty != "" {
			fmt.Fprintf(out, "  [%s]", e.Counterparty)
		}
		if e.Address != "" {
			fmt.Fprintf(out, "  %s@%s", e.Address, e.Blockchain)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d of %d entries\n", res.EntriesFound, res.EntriesTotal)
	return nil
}

func runCalendarDelete(cmd *cobra.Command, args []string) error {
	id, err := parseIdentifier(args[0])
	if err != nil {
		return err
	}
	repo, err := current.calendar(cmd)
	if err != nil {
		return err
	}
	if err := repo.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted calendar entry %d\n", id)
	return nil
}
