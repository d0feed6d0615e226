package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

// FixedTime is the timestamp given to seeded records.
var FixedTime = time.Date(2025, time.March, 14, 18, 30, 0, 0, time.Local)

// LedgerBuilder accumulates expenses, payments and registered people for a
// test ledger. Ids are assigned in insertion order starting at 1.
type LedgerBuilder struct {
	t        *testing.T
	people   []string
	expenses []model.Expense
	payments []model.Payment
}

// NewLedgerBuilder creates an empty builder.
func NewLedgerBuilder(t *testing.T) *LedgerBuilder {
	t.Helper()
	return &LedgerBuilder{t: t}
}

// WithPeople registers names without any records.
func (b *LedgerBuilder) WithPeople(names ...string) *LedgerBuilder {
	b.people = append(b.people, names...)
	return b
}

// WithExpense adds an expense, failing the test if it is invalid.
func (b *LedgerBuilder) WithExpense(description string, amount float64, paidBy string, involved ...string) *LedgerBuilder {
	b.t.Helper()
	exp, err := model.NewExpense(len(b.expenses)+1, description, amount, paidBy, involved, FixedTime)
	if err != nil {
		b.t.Fatalf("invalid fixture expense %q: %v", description, err)
	}
	b.expenses = append(b.expenses, exp)
	return b
}

// WithPayment adds a payment, failing the test if it is invalid.
func (b *LedgerBuilder) WithPayment(payer, payee string, amount float64) *LedgerBuilder {
	b.t.Helper()
	p, err := model.NewPayment(len(b.payments)+1, payer, payee, amount, "", FixedTime)
	if err != nil {
		b.t.Fatalf("invalid fixture payment %s->%s: %v", payer, payee, err)
	}
	b.payments = append(b.payments, p)
	return b
}

// Expenses returns the accumulated expenses.
func (b *LedgerBuilder) Expenses() []model.Expense {
	return b.expenses
}

// Payments returns the accumulated payments.
func (b *LedgerBuilder) Payments() []model.Payment {
	return b.payments
}

// Build writes everything into store and returns the seeded records.
func (b *LedgerBuilder) Build(ctx context.Context, store service.LedgerStore) ([]model.Expense, []model.Payment, error) {
	if _, err := store.Register(ctx, b.people); err != nil {
		return nil, nil, fmt.Errorf("failed to register people: %w", err)
	}
	for _, exp := range b.expenses {
		if err := store.AppendExpense(ctx, exp); err != nil {
			return nil, nil, fmt.Errorf("failed to seed expense %d: %w", exp.ID, err)
		}
	}
	for _, p := range b.payments {
		if err := store.AppendPayment(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("failed to seed payment %d: %w", p.ID, err)
		}
	}
	return b.expenses, b.payments, nil
}
