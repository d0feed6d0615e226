// Package report renders ledger reports for the terminal and as HTML.
package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

// Section selects parts of a report for the terminal renderer.
type Section uint8

// Report sections.
const (
	SectionExpenses Section = 1 << iota
	SectionPayments
	SectionPeople
	SectionBalances
	SectionSettlements
	SectionSummary

	AllSections = SectionExpenses | SectionPayments | SectionPeople |
		SectionBalances | SectionSettlements | SectionSummary
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "$"

var _ service.ReportRenderer = (*Terminal)(nil)

// Terminal writes lipgloss-styled report sections to a writer.
type Terminal struct {
	w        io.Writer
	currency string
	sections Section
}

// NewTerminal creates a terminal renderer for the given sections.
func NewTerminal(w io.Writer, currency string, sections Section) *Terminal {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Terminal{w: w, currency: currency, sections: sections}
}

// Render writes the selected sections in a fixed order.
func (t *Terminal) Render(ctx context.Context, report *service.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.sections&SectionSettlements != 0 && report.SettlementErr != nil {
		return report.SettlementErr
	}

	var parts []string
	if t.sections&SectionExpenses != 0 {
		parts = append(parts, t.expenses(report.Expenses))
	}
	if t.sections&SectionPayments != 0 {
		parts = append(parts, t.payments(report.Payments))
	}
	if t.sections&SectionPeople != 0 {
		parts = append(parts, t.people(report.People))
	}
	if t.sections&SectionSummary != 0 {
		parts = append(parts, t.summary(report))
	}
	if t.sections&SectionBalances != 0 {
		parts = append(parts, t.balances(report.Balances))
	}
	if t.sections&SectionSettlements != 0 {
		parts = append(parts, t.settlements(report.Settlements))
	}

	if _, err := fmt.Fprintln(t.w, strings.Join(parts, "\n")); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (t *Terminal) money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%s%.2f", sign, t.currency, v)
}

func (t *Terminal) expenses(expenses []model.Expense) string {
	if len(expenses) == 0 {
		return cli.FormatInfo("No expenses recorded yet.")
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("All Expenses"))
	b.WriteString("\n")
	for _, exp := range expenses {
		lines := []string{
			fmt.Sprintf("Description: %s", exp.Description),
			fmt.Sprintf("Amount: %s", t.money(exp.Amount)),
			fmt.Sprintf("Paid by: %s", exp.PaidBy),
			fmt.Sprintf("Involved: %s (each owes %s)", strings.Join(exp.InvolvedPeople, ", "), t.money(exp.SplitAmount)),
		}
		if !exp.CreatedAt.IsZero() {
			lines = append(lines, cli.SubtleStyle.Render("Date: "+model.FormatTimestamp(exp.CreatedAt)))
		}
		b.WriteString(cli.RenderBox(fmt.Sprintf("ID: %d", exp.ID), strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Terminal) payments(payments []model.Payment) string {
	if len(payments) == 0 {
		return cli.FormatInfo("No payments recorded yet.")
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("All Payments"))
	b.WriteString("\n")
	for _, p := range payments {
		lines := []string{
			fmt.Sprintf("Description: %s", p.Description),
			fmt.Sprintf("Amount: %s", t.money(p.Amount)),
			fmt.Sprintf("From: %s", p.Payer),
			fmt.Sprintf("To: %s", p.Payee),
		}
		if !p.CreatedAt.IsZero() {
			lines = append(lines, cli.SubtleStyle.Render("Date: "+model.FormatTimestamp(p.CreatedAt)))
		}
		b.WriteString(cli.RenderBox(fmt.Sprintf("ID: %d", p.ID), strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Terminal) people(people []string) string {
	if len(people) == 0 {
		return cli.FormatInfo("No people registered yet.")
	}

	lines := make([]string, len(people))
	for i, p := range people {
		lines[i] = "• " + p
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		cli.FormatTitle("All People"),
		strings.Join(lines, "\n"),
	)
}

func (t *Terminal) summary(report *service.Report) string {
	s := report.Summary
	rows := []string{
		cli.TableHeaderStyle.Render(fmt.Sprintf("%-16s %12s %12s", "Person", "Paid", "Share")),
	}
	for _, ps := range s.People {
		rows = append(rows, cli.TableCellStyle.Render(
			fmt.Sprintf("%-16s %12s %12s", ps.Name, t.money(ps.Paid), t.money(ps.Share))))
	}
	rows = append(rows,
		"",
		fmt.Sprintf("Total expenses: %s (%d)", cli.BoldStyle.Render(t.money(s.TotalExpenses)), s.ExpenseCount),
		fmt.Sprintf("Total payments: %s (%d)", cli.BoldStyle.Render(t.money(s.TotalPayments)), s.PaymentCount),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		cli.FormatTitle("Summary"),
		strings.Join(rows, "\n"),
	)
}

func (t *Terminal) balances(balances model.Balances) string {
	if len(balances) == 0 {
		return cli.FormatInfo("No transactions to calculate balances.")
	}

	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	slices.Sort(names)

	lines := make([]string, len(names))
	for i, name := range names {
		v := balances[name]
		amount := t.money(v)
		switch {
		case v > 0.005:
			amount = cli.SuccessStyle.Render(amount)
		case v < -0.005:
			amount = cli.ErrorStyle.Render(amount)
		default:
			amount = cli.SubtleStyle.Render(t.money(0))
		}
		lines[i] = fmt.Sprintf("%s: %s", name, amount)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		cli.FormatTitle("Net Balances"),
		strings.Join(lines, "\n"),
	)
}

func (t *Terminal) settlements(settlements []model.Settlement) string {
	if len(settlements) == 0 {
		return cli.FormatSuccess("No settlements needed at this moment.")
	}

	lines := make([]string, len(settlements))
	for i, s := range settlements {
		lines[i] = fmt.Sprintf("%s owes %s %s", s.From, s.To, cli.BoldStyle.Render(t.money(s.Amount)))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		cli.FormatTitle("Suggested Settlements"),
		strings.Join(lines, "\n"),
	)
}
