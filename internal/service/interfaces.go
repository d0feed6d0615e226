// Package service defines the interfaces between the ledger core and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/settle-up/internal/ledger"
	"github.com/Veraticus/settle-up/internal/model"
)

// LedgerStore defines the contract for our persistence layer.
type LedgerStore interface {
	// Record operations
	LoadExpenses(ctx context.Context) ([]model.Expense, error)
	LoadPayments(ctx context.Context) ([]model.Payment, error)
	AppendExpense(ctx context.Context, expense model.Expense) error
	AppendPayment(ctx context.Context, payment model.Payment) error

	// Person registry
	LoadPeople(ctx context.Context) ([]string, error)
	Register(ctx context.Context, names []string) (int, error)

	// Storage management
	Migrate(ctx context.Context) error
	Close() error
}

// Snapshot is a consistent view of every record in a store.
type Snapshot struct {
	Expenses []model.Expense
	Payments []model.Payment
	People   []string
}

// Snapshotter is implemented by stores that can read all records atomically.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ReportRenderer formats a Report for display or export.
type ReportRenderer interface {
	Render(ctx context.Context, report *Report) error
}

// Report is everything a renderer needs to present the state of the ledger.
type Report struct {
	GeneratedAt time.Time
	Balances    model.Balances
	People      []string
	Expenses    []model.Expense
	Payments    []model.Payment
	Settlements []model.Settlement
	// SettlementErr is set when Settlements could not be computed.
	SettlementErr error
	Summary       ledger.Summary
}
