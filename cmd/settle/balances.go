package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/report"
)

func balancesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show everyone's net balance",
		Long: `Show each person's net balance. Positive means the person is owed money,
negative means the person owes money.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sections := report.SectionBalances
			if summary, _ := cmd.Flags().GetBool("summary"); summary {
				sections |= report.SectionSummary
			}
			return a.render(cmd.Context(), sections)
		},
	}

	cmd.Flags().Bool("summary", false, "also show ledger totals")

	return cmd
}

func settleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Suggest the transfers that settle all balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd.Context(), report.SectionSettlements)
		},
	}
}
