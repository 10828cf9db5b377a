package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rebalancer/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the order and holdings journal",
	Long: `Query and display journal records from the SQLite journal.

Subcommands:
  order      - Show one order by ID
  orders     - List orders for a day, a date range or a cycle
  positions  - Show the latest holdings snapshot

Examples:
  rebalancer journal orders --day 2024-06-03
  rebalancer journal orders --cycle 01J... --org
  rebalancer journal positions`,
}

var journalOrderCmd = &cobra.Command{
	Use:   "order <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrder,
}

var journalOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE:  runJournalOrders,
}

var journalPositionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show the latest holdings snapshot",
	Args:  cobra.NoArgs,
	RunE:  runJournalPositions,
}

var (
	journalDBPath string
	journalDay    string
	journalFrom   string
	journalTo     string
	journalCycle  string
	journalOrg    bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalOrderCmd)
	journalCmd.AddCommand(journalOrdersCmd)
	journalCmd.AddCommand(journalPositionsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default journal.db_path)")
	journalOrdersCmd.Flags().StringVar(&journalDay, "day", "", "orders on one day, YYYY-MM-DD (default today)")
	journalOrdersCmd.Flags().StringVar(&journalFrom, "from", "", "first day of a range, YYYY-MM-DD")
	journalOrdersCmd.Flags().StringVar(&journalTo, "to", "", "day after the range, YYYY-MM-DD")
	journalOrdersCmd.Flags().StringVar(&journalCycle, "cycle", "", "orders of one cycle ID")
	journalOrdersCmd.Flags().BoolVar(&journalOrg, "org", false, "print as Org instead of a table")
}

func openJournalDB(cmd *cobra.Command) (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal database: pass --db or set journal.db_path")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalOrder(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetOrder(args[0])
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOrderOrg(rec))
	return nil
}

func runJournalOrders(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	var recs []journal.OrderRecord
	switch {
	case journalCycle != "":
		recs, err = j.ListOrdersByCycle(journalCycle)
	default:
		var start, end time.Time
		if start, end, err = orderRange(); err != nil {
			return fmt.Errorf("date: %w", err)
		}
		recs, err = j.ListOrders(start, end)
	}
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	out := cmd.OutOrStdout()
	if journalOrg {
		title := journalCycle
		if title == "" && len(recs) > 0 {
			title = recs[0].CycleID
		}
		fmt.Fprint(out, journal.FormatCycleOrg(title, recs))
		return nil
	}
	fmt.Fprintln(out, journal.FormatOrdersTable(recs))
	return nil
}

func orderRange() (time.Time, time.Time, error) {
	if journalFrom != "" || journalTo != "" {
		start, err := optionalDate(journalFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := optionalDate(journalTo)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.IsZero() {
			end = time.Now().UTC()
		}
		return start, end, nil
	}

	day := journalDay
	if day == "" {
		day = time.Now().UTC().Format(time.DateOnly)
	}
	return dayBounds(day)
}

func dayBounds(day string) (time.Time, time.Time, error) {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return t, t.AddDate(0, 0, 1), nil
}

func runJournalPositions(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	snaps, err := j.LatestPositions()
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no holdings recorded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "As of %s\n", snaps[0].Time.UTC().Format(time.DateOnly))
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionsTable(snaps))
	return nil
}
