package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/engine"
	"github.com/Veraticus/settle-up/internal/report"
)

func payCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record a direct payment between two people",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPay(cmd)
		},
	}

	cmd.Flags().String("payer", "", "who paid")
	cmd.Flags().String("payee", "", "who received the money")
	cmd.Flags().String("amount", "", "amount paid")
	cmd.Flags().String("desc", "", "optional note (default: Direct Payment)")

	return cmd
}

func (a *app) runPay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	prompter := cli.NewPrompter(a.in, a.out)

	payer, _ := cmd.Flags().GetString("payer")
	payee, _ := cmd.Flags().GetString("payee")
	amountStr, _ := cmd.Flags().GetString("amount")
	desc, _ := cmd.Flags().GetString("desc")

	var err error
	if strings.TrimSpace(payer) == "" {
		if payer, err = prompter.Ask(ctx, "Payer"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(payee) == "" {
		if payee, err = prompter.Ask(ctx, "Payee"); err != nil {
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

	return a.withLedger(ctx, func(l *engine.Ledger) error {
		payment, err := l.AddPayment(ctx, payer, payee, amount, desc)
		if err != nil {
			return userFacing(err)
		}

		msg := fmt.Sprintf("Payment #%d recorded: %s paid %s %s%.2f",
			payment.ID, payment.Payer, payment.Payee, a.cfg.Currency, payment.Amount)
		_, err = fmt.Fprintln(a.out, cli.FormatSuccess(msg))
		return err
	})
}

func viewPaymentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view-payments",
		Short: "List all payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd.Context(), report.SectionPayments)
		},
	}
}
