package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <account-id>",
	Short: "Show rule-based advice for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdvise,
}

func init() {
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tracker.Refresh(ctx, args[0]); err != nil {
		return err
	}
	items, err := a.tracker.Advise(args[0])
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", strings.ToUpper(string(it.Kind)), it.Text)
	}
	return nil
}
