package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/codec"
	"github.com/rustyeddy/proptrack/engine"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <account-id>",
	Short: "Show an account's current status",
	Long: `Recompute and show an account's status as of now: equity, high-water
mark, days traded, room left before each drawdown limit and, for
challenges, whether the account has passed.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the stored status document")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Refresh so a status saved yesterday does not carry yesterday's P/L.
	res, err := a.tracker.Refresh(ctx, args[0])
	if err != nil {
		return err
	}
	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}

	if statusJSON {
		data, err := json.MarshalIndent(codec.Default.DehydrateStatus(res.Status), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printStatus(cmd.OutOrStdout(), acct, acct.EffectiveRules(a.tracker.PersonalSize()), res)
	return nil
}

func printStatus(out io.Writer, acct account.Account, r account.Rules, res engine.Result) {
	st := res.Status
	fmt.Fprintf(out, "\n%s (%s)\n", acct.Name, acct.Kind)
	if !res.Fresh {
		fmt.Fprintf(out, "  ! status could not be recomputed (%s); showing last known\n", res.Reason)
	}
	fmt.Fprintf(out, "  Equity:          %.2f (%+.2f)\n", st.CurrentEquity, st.PnL(r.AccountSize))
	fmt.Fprintf(out, "  High-water mark: %.2f\n", st.HighWaterMark)
	fmt.Fprintf(out, "  Days traded:     %d\n", st.DaysTraded.Len())
	fmt.Fprintf(out, "  Daily room:      %.2f%s\n", st.DistanceToDailyDrawdown, flag(st.IsDailyDrawdownViolated))
	fmt.Fprintf(out, "  Overall room:    %.2f%s\n", st.DistanceToOverallDrawdown, flag(st.IsOverallDrawdownViolated))
	if acct.Kind == account.Challenge {
		passed := "no"
		if st.IsPassed {
			passed = "yes"
		}
		fmt.Fprintf(out, "  Passed:          %s\n", passed)
	}
	if res.Dropped > 0 {
		fmt.Fprintf(out, "  Excluded trades: %d\n", res.Dropped)
	}
}

func flag(violated bool) string {
	if violated {
		return "  VIOLATED"
	}
	return ""
}
