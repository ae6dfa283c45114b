package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/codec"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Create, list, show and delete accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a challenge or personal account",
	Long: `Create an account with an empty ledger.

Challenge rules default to the config's challenge section; any flag given
overrides the matching rule. Personal accounts take no rules.

Examples:
  proptrack account create --name "FTMO 100k" --target 10000 --daily 5 --overall 10
  proptrack account create --name swing --personal`,
	RunE: runAccountCreate,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runAccountList,
}

var accountShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Show an account's rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountShow,
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "Delete an account and its ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountDelete,
}

var (
	acctName        string
	acctPersonal    bool
	acctSize        float64
	acctTarget      float64
	acctDaily       float64
	acctOverall     float64
	acctDrawdown    string
	acctMinDays     int
	acctConsistency float64
	acctShowJSON    bool
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd, accountListCmd, accountShowCmd, accountDeleteCmd)

	f := accountCreateCmd.Flags()
	f.StringVar(&acctName, "name", "", "account name (required)")
	f.BoolVar(&acctPersonal, "personal", false, "create a personal account without challenge rules")
	f.Float64Var(&acctSize, "size", 0, "account size")
	f.Float64Var(&acctTarget, "target", 0, "profit target in account currency")
	f.Float64Var(&acctDaily, "daily", 0, "max daily drawdown percent")
	f.Float64Var(&acctOverall, "overall", 0, "max overall drawdown percent")
	f.StringVar(&acctDrawdown, "drawdown", "", "overall drawdown type: static or trailing")
	f.IntVar(&acctMinDays, "min-days", 0, "minimum trading days")
	f.Float64Var(&acctConsistency, "consistency", 0, "max share of profit from one day, percent")
	accountCreateCmd.MarkFlagRequired("name")

	accountShowCmd.Flags().BoolVar(&acctShowJSON, "json", false, "print the stored account document")
}

// challengeRules starts from the configured rules and applies the flags
// the user set.
func challengeRules(cmd *cobra.Command) (account.Rules, error) {
	r := cfg.Challenge
	if r.ConsistencyRulePct != nil {
		c := *r.ConsistencyRulePct
		r.ConsistencyRulePct = &c
	}
	f := cmd.Flags()
	if f.Changed("size") {
		r.AccountSize = acctSize
	}
	if f.Changed("target") {
		r.ProfitTarget = acctTarget
	}
	if f.Changed("daily") {
		r.MaxDailyDrawdownPct = acctDaily
	}
	if f.Changed("overall") {
		r.MaxOverallDrawdownPct = acctOverall
	}
	if f.Changed("drawdown") {
		dt, err := account.ParseDrawdownType(acctDrawdown)
		if err != nil {
			return r, err
		}
		r.DrawdownType = dt
	}
	if f.Changed("min-days") {
		r.MinTradingDays = acctMinDays
	}
	if f.Changed("consistency") {
		c := acctConsistency
		r.ConsistencyRulePct = &c
	}
	return r, r.Validate()
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var acct account.Account
	if acctPersonal {
		acct, err = a.tracker.CreatePersonal(ctx, acctName)
	} else {
		var r account.Rules
		if r, err = challengeRules(cmd); err != nil {
			return err
		}
		acct, err = a.tracker.CreateChallenge(ctx, acctName, r)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s account %s (%s)\n", acct.Kind, acct.Name, acct.ID)
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tEQUITY\tTRADES\tPASSED")
	for _, acct := range a.tracker.Accounts() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%t\n",
			acct.ID, acct.Name, acct.Kind, acct.Status.CurrentEquity, len(acct.Trades), acct.Status.IsPassed)
	}
	return w.Flush()
}

func runAccountShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.tracker.Account(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if acctShowJSON {
		data, err := json.MarshalIndent(codec.Dehydrate(acct), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	r := acct.EffectiveRules(a.tracker.PersonalSize())
	fmt.Fprintf(out, "Account: %s (%s)\n", acct.Name, acct.ID)
	fmt.Fprintf(out, "  Kind:           %s\n", acct.Kind)
	fmt.Fprintf(out, "  Created:        %s\n", acct.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  Size:           %.2f\n", r.AccountSize)
	if acct.Kind == account.Challenge {
		fmt.Fprintf(out, "  Profit target:  %.2f\n", r.ProfitTarget)
		fmt.Fprintf(out, "  Daily limit:    %.1f%% (%.2f)\n", r.MaxDailyDrawdownPct, r.DailyLossAllowance())
		fmt.Fprintf(out, "  Overall limit:  %.1f%% %s\n", r.MaxOverallDrawdownPct, r.DrawdownType)
		fmt.Fprintf(out, "  Min days:       %d\n", r.MinTradingDays)
		if r.ConsistencyRulePct != nil {
			fmt.Fprintf(out, "  Consistency:    %.1f%%\n", *r.ConsistencyRulePct)
		}
	}
	fmt.Fprintf(out, "  Trades:         %d\n", len(acct.Trades))
	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteAccount(ctx, args[0]); err != nil {
		return err
	}
	a.metrics.Forget(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted account %s\n", args[0])
	return nil
}
