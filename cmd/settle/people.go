package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/engine"
	"github.com/Veraticus/settle-up/internal/report"
)

func addPersonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-person [name]",
		Short: "Register a person",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name, _ := cmd.Flags().GetString("name")
			if name == "" && len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				var err error
				if name, err = cli.NewPrompter(a.in, a.out).Ask(ctx, "Name"); err != nil {
					return err
				}
			}

			return a.withLedger(ctx, func(l *engine.Ledger) error {
				added, err := l.AddPerson(ctx, name)
				if err != nil {
					return userFacing(err)
				}

				msg := cli.FormatSuccess(fmt.Sprintf("%s added", name))
				if !added {
					msg = cli.FormatInfo(fmt.Sprintf("%s is already known", name))
				}
				_, err = fmt.Fprintln(a.out, msg)
				return err
			})
		},
	}

	cmd.Flags().String("name", "", "person to register")

	return cmd
}

func listPeopleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-people",
		Short: "List everyone known to the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd.Context(), report.SectionPeople)
		},
	}
}
