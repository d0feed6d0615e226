package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/engine"
	"github.com/Veraticus/settle-up/internal/report"
	"github.com/Veraticus/settle-up/internal/tui"
)

func addCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a shared expense",
		Long: `Record an expense paid by one person and split equally among the people involved.

Missing values are asked for interactively. Without --involved you choose the
people from a numbered list (Enter selects everyone, "new" lets you type names),
or from a checkbox picker with --pick.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAdd(cmd)
		},
	}

	cmd.Flags().String("desc", "", "what the expense was for")
	cmd.Flags().String("amount", "", "total amount paid")
	cmd.Flags().String("paid-by", "", "who paid")
	cmd.Flags().StringSlice("involved", nil, "people sharing the expense (comma-separated)")
	cmd.Flags().Bool("pick", false, "choose involved people with the interactive picker")

	return cmd
}

func (a *app) runAdd(cmd *cobra.Command) error {
	ctx := cmd.Context()
	prompter := cli.NewPrompter(a.in, a.out)

	desc, _ := cmd.Flags().GetString("desc")
	amountStr, _ := cmd.Flags().GetString("amount")
	paidBy, _ := cmd.Flags().GetString("paid-by")
	involved, _ := cmd.Flags().GetStringSlice("involved")
	pick, _ := cmd.Flags().GetBool("pick")

	var err error
	if strings.TrimSpace(desc) == "" {
		if desc, err = prompter.Ask(ctx, "Description"); err != nil {
			return err
		}
	}

	var amount float64
	if amountStr == "" {
		if amount, err = prompter.AskAmount(ctx, "Amount"); err != nil {
			return err
		}
	} else if amount, err = cli.ParseAmount(amountStr); err != nil {
		return userFacing(err)
	}

	if strings.TrimSpace(paidBy) == "" {
		if paidBy, err = prompter.Ask(ctx, "Paid by"); err != nil {
			return err
		}
	}

	return a.withLedger(ctx, func(l *engine.Ledger) error {
		if len(involved) == 0 {
			involved, err = a.chooseInvolved(ctx, l, prompter, paidBy, pick)
			if err != nil {
				return err
			}
		}

		expense, err := l.AddExpense(ctx, desc, amount, paidBy, involved)
		if err != nil {
			return userFacing(err)
		}

		msg := fmt.Sprintf("Expense #%d added: %s paid %s%.2f for %q, %s%.2f each for %s",
			expense.ID, expense.PaidBy, a.cfg.Currency, expense.Amount, expense.Description,
			a.cfg.Currency, expense.SplitAmount, strings.Join(expense.InvolvedPeople, ", "))
		_, err = fmt.Fprintln(a.out, cli.FormatSuccess(msg))
		return err
	})
}

func (a *app) chooseInvolved(ctx context.Context, l *engine.Ledger, prompter *cli.Prompter, payer string, pick bool) ([]string, error) {
	known, err := l.People(ctx)
	if err != nil {
		return nil, err
	}

	if pick && len(known) > 0 {
		selected, err := tui.RunPicker(ctx, known, tui.PickerOptions{Input: a.in, Output: a.out})
		if err != nil {
			return nil, err
		}
		return selected, nil
	}

	return prompter.SelectInvolved(ctx, known, payer)
}

func viewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "List all expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd.Context(), report.SectionExpenses)
		},
	}
}
