package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/settle-up/internal/ledger"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

var generated = time.Date(2025, time.May, 6, 20, 45, 0, 0, time.Local)

func sampleReport(t *testing.T) *service.Report {
	t.Helper()

	dinner, err := model.NewExpense(1, "Dinner <at> Luigi's", 90, "Alice", []string{"Alice", "Bob", "Carol"}, generated)
	require.NoError(t, err)
	payment, err := model.NewPayment(1, "Bob", "Alice", 30, "", generated)
	require.NoError(t, err)

	expenses := []model.Expense{dinner}
	payments := []model.Payment{payment}
	people := ledger.KnownPeople(nil, expenses, payments)
	balances := ledger.ComputeBalances(expenses, payments)
	settlements, err := ledger.Simplify(balances)
	require.NoError(t, err)

	return &service.Report{
		GeneratedAt: generated,
		People:      people,
		Expenses:    expenses,
		Payments:    payments,
		Balances:    balances,
		Settlements: settlements,
		Summary:     ledger.Summarize(people, expenses, payments),
	}
}

func TestTerminal_AllSections(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, "", AllSections)

	require.NoError(t, r.Render(context.Background(), sampleReport(t)))
	out := buf.String()

	for _, want := range []string{
		"All Expenses",
		"Dinner <at> Luigi's",
		"each owes $30.00",
		"All Payments",
		"Direct Payment",
		"All People",
		"Carol",
		"Net Balances",
		"Alice: $30.00",
		"Carol: -$30.00",
		"Suggested Settlements",
		"Carol owes Alice $30.00",
		"Total expenses: $90.00 (1)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTerminal_SelectedSectionsOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, "€", SectionSettlements)

	require.NoError(t, r.Render(context.Background(), sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "Carol owes Alice €30.00")
	assert.NotContains(t, out, "All Expenses")
	assert.NotContains(t, out, "Net Balances")
}

func TestTerminal_EmptyMessages(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, "", AllSections)

	require.NoError(t, r.Render(context.Background(), &service.Report{Balances: model.Balances{}}))
	out := buf.String()

	for _, want := range []string{
		"No expenses recorded yet.",
		"No payments recorded yet.",
		"No people registered yet.",
		"No transactions to calculate balances.",
		"No settlements needed at this moment.",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTerminal_SettlementErrorOnlyFailsSettlements(t *testing.T) {
	report := sampleReport(t)
	report.Settlements = nil
	report.SettlementErr = ledger.ErrUnbalanced

	var buf bytes.Buffer
	views := SectionExpenses | SectionPayments | SectionPeople | SectionBalances | SectionSummary
	require.NoError(t, NewTerminal(&buf, "", views).Render(context.Background(), report))
	assert.Contains(t, buf.String(), "Dinner <at> Luigi's")
	assert.Contains(t, buf.String(), "Alice: $30.00")

	buf.Reset()
	err := NewTerminal(&buf, "", SectionSettlements).Render(context.Background(), report)
	assert.ErrorIs(t, err, ledger.ErrUnbalanced)
	assert.Zero(t, buf.Len())

	h, err := NewHTML(&buf, "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, h.Render(context.Background(), report), ledger.ErrUnbalanced)
	assert.Zero(t, buf.Len())
}

func TestTerminal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewTerminal(&buf, "", AllSections).Render(ctx, sampleReport(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestHTML_Render(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewHTML(&buf, "", "")
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), sampleReport(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Shared Expense Report</title>")
	assert.Contains(t, out, "Generated May 06, 2025")
	assert.Contains(t, out, "May 06, 2025, 08:45 PM")
	assert.Contains(t, out, "Dinner &lt;at&gt; Luigi&#39;s")
	assert.Contains(t, out, "Alice, Bob, Carol")
	assert.Contains(t, out, "<td>Carol</td><td>Alice</td><td class=\"num\">$30.00</td>")
	assert.Contains(t, out, `class="num negative">-$30.00`)
	assert.NotContains(t, out, "No settlements needed")
}

func TestHTML_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewHTML(&buf, "Trip", "£")
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), &service.Report{GeneratedAt: generated}))
	out := buf.String()

	assert.Contains(t, out, "<h1>Trip</h1>")
	assert.Contains(t, out, "£0.00")
	assert.Contains(t, out, "No expenses recorded yet.")
	assert.Contains(t, out, "No settlements needed at this moment.")
}
