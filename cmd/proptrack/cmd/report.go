package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/proptrack/journal"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <account-id>",
	Short: "Write an Org-mode status report",
	Long: `Write an Org-mode report with the account's rules, status, trade counts
and advice. With --trades every trade is appended as its own heading.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportOutput string
	reportTrades bool
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default stdout)")
	reportCmd.Flags().BoolVar(&reportTrades, "trades", false, "append each trade as an Org heading")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.tracker.Refresh(ctx, args[0])
	if err != nil {
		return err
	}
	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}
	items, err := a.tracker.Advise(args[0])
	if err != nil {
		return err
	}

	text, err := journal.FormatStatusOrg(journal.Report{
		Account:    acct,
		Rules:      acct.EffectiveRules(a.tracker.PersonalSize()),
		Result:     res,
		Advisories: items,
		Generated:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if reportTrades && len(acct.Trades) > 0 {
		text += "\n" + journal.FormatTradesOrg(acct.Trades)
	}

	if reportOutput == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(reportOutput, []byte(text), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report: %s\n", reportOutput)
	return nil
}
