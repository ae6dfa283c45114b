package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/journal"
	"github.com/rustyeddy/proptrack/pkg/id"
	"github.com/rustyeddy/proptrack/tracker"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record, edit, list, import and export trades",
}

var tradeAddCmd = &cobra.Command{
	Use:   "add <account-id>",
	Short: "Record a closed trade",
	Long: `Record a closed trade and recompute the account status.

Example:
  proptrack trade add 01HZX3Y4 --pnl -250 --date 2024-05-02 --instrument EUR_USD`,
	Args: cobra.ExactArgs(1),
	RunE: runTradeAdd,
}

var tradeUpdateCmd = &cobra.Command{
	Use:   "update <account-id> <trade-id>",
	Short: "Edit a recorded trade",
	Args:  cobra.ExactArgs(2),
	RunE:  runTradeUpdate,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <account-id> <trade-id>",
	Short: "Remove a trade",
	Args:  cobra.ExactArgs(2),
	RunE:  runTradeDelete,
}

var tradeListCmd = &cobra.Command{
	Use:   "list <account-id>",
	Short: "List an account's trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeList,
}

var tradeImportCmd = &cobra.Command{
	Use:   "import <account-id> <file.csv>",
	Short: "Append trades from a CSV file",
	Long: `Append trades from a CSV file with a header row. Columns are matched by
name: date and pnl are required; id, instrument and notes are optional.
The import is applied as one batch: a duplicate id rejects the whole file.`,
	Args: cobra.ExactArgs(2),
	RunE: runTradeImport,
}

var tradeExportCmd = &cobra.Command{
	Use:   "export <account-id>",
	Short: "Write an account's trades as CSV or Org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeExport,
}

var (
	tradeDate       string
	tradePnL        float64
	tradeInstrument string
	tradeNotes      string
	tradeDay        string
	tradeOutput     string
	tradeFormat     string
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd, tradeUpdateCmd, tradeDeleteCmd, tradeListCmd, tradeImportCmd, tradeExportCmd)

	for _, c := range []*cobra.Command{tradeAddCmd, tradeUpdateCmd} {
		c.Flags().StringVar(&tradeDate, "date", "", "close date, YYYY-MM-DD or RFC 3339 (default today)")
		c.Flags().Float64Var(&tradePnL, "pnl", 0, "realized profit or loss")
		c.Flags().StringVar(&tradeInstrument, "instrument", "", "instrument traded")
		c.Flags().StringVar(&tradeNotes, "notes", "", "free-form notes")
	}
	tradeAddCmd.MarkFlagRequired("pnl")

	tradeListCmd.Flags().StringVar(&tradeDay, "day", "", "only trades closed on this day (YYYY-MM-DD)")
	tradeExportCmd.Flags().StringVarP(&tradeOutput, "output", "o", "", "output file (default stdout)")
	tradeExportCmd.Flags().StringVar(&tradeFormat, "format", "csv", "csv or org")
}

func today() string {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return account.DayKeyOf(time.Now(), loc)
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tr := account.Trade{
		Date:       tradeDate,
		PnL:        tradePnL,
		Instrument: tradeInstrument,
		Notes:      tradeNotes,
	}
	if tr.Date == "" {
		tr.Date = today()
	}
	if _, err := account.ParseDate(tr.Date); err != nil {
		return fmt.Errorf("bad --date: %w", err)
	}

	added, res, err := a.tracker.AddTrade(ctx, args[0], tr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded trade %s: %.2f on %s\n", added.ID, added.PnL, added.Date)
	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), acct, acct.EffectiveRules(a.tracker.PersonalSize()), res)
	return nil
}

func runTradeUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}
	i := acct.FindTrade(args[1])
	if i < 0 {
		return fmt.Errorf("%w: %s", tracker.ErrTradeNotFound, args[1])
	}
	tr := acct.Trades[i]

	f := cmd.Flags()
	if f.Changed("date") {
		if _, err := account.ParseDate(tradeDate); err != nil {
			return fmt.Errorf("bad --date: %w", err)
		}
		tr.Date = tradeDate
	}
	if f.Changed("pnl") {
		tr.PnL = tradePnL
	}
	if f.Changed("instrument") {
		tr.Instrument = tradeInstrument
	}
	if f.Changed("notes") {
		tr.Notes = tradeNotes
	}

	res, err := a.tracker.UpdateTrade(ctx, args[0], tr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated trade %s\n", tr.ID)
	printStatus(cmd.OutOrStdout(), acct, acct.EffectiveRules(a.tracker.PersonalSize()), res)
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.tracker.DeleteTrade(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %s\n", args[1])
	printStatus(cmd.OutOrStdout(), acct, acct.EffectiveRules(a.tracker.PersonalSize()), res)
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPNL\tINSTRUMENT\tRECORDED\tNOTES")
	for _, t := range acct.Trades {
		if tradeDay != "" {
			if key, ok := account.DayKey(t.Date); !ok || key != tradeDay {
				continue
			}
		}
		pnl := "excluded"
		if t.Valid() {
			pnl = fmt.Sprintf("%.2f", t.PnL)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, pnl, t.Instrument, recorded(t.ID), t.Notes)
	}
	return w.Flush()
}

func runTradeImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	trades, err := journal.ReadTradesCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.tracker.Batch(ctx, args[0], func(l *tracker.Ledger) error {
		for _, tr := range trades {
			if _, err := l.Add(tr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades from %s\n", len(trades), args[1])
	printStatus(cmd.OutOrStdout(), acct, acct.EffectiveRules(a.tracker.PersonalSize()), res)
	return nil
}

func runTradeExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if tradeOutput != "" {
		f, err := os.Create(tradeOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch tradeFormat {
	case "csv":
		return journal.WriteTradesCSV(w, acct.Trades)
	case "org":
		_, err := io.WriteString(w, journal.FormatTradesOrg(acct.Trades))
		return err
	}
	return fmt.Errorf("unknown format %q (use csv or org)", tradeFormat)
}

// recorded is when a generated trade id was minted; imported ids that are
// not ULIDs show a dash.
func recorded(tradeID string) string {
	ts, err := id.Time(tradeID)
	if err != nil {
		return "-"
	}
	return ts.Format("2006-01-02 15:04")
}
