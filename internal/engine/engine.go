// Package engine implements the ledger workflow on top of a LedgerStore:
// id assignment, the person registry and report building.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/settle-up/internal/ledger"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

// ErrNilRenderer is returned by Export when no renderer is supplied.
var ErrNilRenderer = errors.New("renderer cannot be nil")

// Ledger orchestrates reads and writes against a LedgerStore.
type Ledger struct {
	store  service.LedgerStore
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used to timestamp new records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used by the ledger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Ledger backed by store.
func New(store service.LedgerStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddExpense records a new expense and registers everyone it mentions.
func (l *Ledger) AddExpense(ctx context.Context, description string, amount float64, paidBy string, involved []string) (model.Expense, error) {
	expenses, err := l.store.LoadExpenses(ctx)
	if err != nil {
		return model.Expense{}, fmt.Errorf("failed to load expenses: %w", err)
	}

	ids := make([]int, len(expenses))
	for i, exp := range expenses {
		ids[i] = exp.ID
	}

	expense, err := model.NewExpense(model.NextID(ids), description, amount, paidBy, involved, l.now())
	if err != nil {
		return model.Expense{}, err
	}

	if err := l.store.AppendExpense(ctx, expense); err != nil {
		return model.Expense{}, fmt.Errorf("failed to save expense: %w", err)
	}

	names := append([]string{expense.PaidBy}, expense.InvolvedPeople...)
	if _, err := l.store.Register(ctx, names); err != nil {
		return model.Expense{}, fmt.Errorf("failed to register people: %w", err)
	}

	l.logger.Info("Added expense",
		"id", expense.ID,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy,
		"involved", len(expense.InvolvedPeople))

	return expense, nil
}

// AddPayment records a direct payment from payer to payee. An empty
// description becomes model.DefaultPaymentDescription.
func (l *Ledger) AddPayment(ctx context.Context, payer, payee string, amount float64, description string) (model.Payment, error) {
	payments, err := l.store.LoadPayments(ctx)
	if err != nil {
		return model.Payment{}, fmt.Errorf("failed to load payments: %w", err)
	}

	ids := make([]int, len(payments))
	for i, p := range payments {
		ids[i] = p.ID
	}

	payment, err := model.NewPayment(model.NextID(ids), payer, payee, amount, description, l.now())
	if err != nil {
		return model.Payment{}, err
	}

	if err := l.store.AppendPayment(ctx, payment); err != nil {
		return model.Payment{}, fmt.Errorf("failed to save payment: %w", err)
	}

	if _, err := l.store.Register(ctx, []string{payment.Payer, payment.Payee}); err != nil {
		return model.Payment{}, fmt.Errorf("failed to register people: %w", err)
	}

	l.logger.Info("Added payment",
		"id", payment.ID,
		"payer", payment.Payer,
		"payee", payment.Payee,
		"amount", payment.Amount)

	return payment, nil
}

// AddPerson registers a single name. It reports whether the name was new.
func (l *Ledger) AddPerson(ctx context.Context, name string) (bool, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return false, model.ErrEmptyName
	}

	added, err := l.store.Register(ctx, []string{name})
	if err != nil {
		return false, fmt.Errorf("failed to register %q: %w", name, err)
	}
	return added > 0, nil
}

// People returns every known person: registered names plus anyone who
// appears in an expense or payment, sorted.
func (l *Ledger) People(ctx context.Context) ([]string, error) {
	snap, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.KnownPeople(snap.People, snap.Expenses, snap.Payments), nil
}

// Expenses returns all recorded expenses.
func (l *Ledger) Expenses(ctx context.Context) ([]model.Expense, error) {
	expenses, err := l.store.LoadExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return expenses, nil
}

// Payments returns all recorded payments.
func (l *Ledger) Payments(ctx context.Context) ([]model.Payment, error) {
	payments, err := l.store.LoadPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return payments, nil
}

// Balances computes the current net balance of every person in the ledger.
func (l *Ledger) Balances(ctx context.Context) (model.Balances, error) {
	snap, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeBalances(snap.Expenses, snap.Payments), nil
}

// Settlements returns the suggested transfers that clear every balance.
func (l *Ledger) Settlements(ctx context.Context) ([]model.Settlement, error) {
	snap, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	balances := ledger.ComputeBalances(snap.Expenses, snap.Payments)
	return ledger.SimplifyWithin(balances, ledger.Tolerance(snap.Expenses))
}

// Report gathers everything a renderer needs from a single consistent read.
// A settlement failure does not fail the report; it is carried in
// SettlementErr for renderers that show settlements.
func (l *Ledger) Report(ctx context.Context) (*service.Report, error) {
	snap, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	people := ledger.KnownPeople(snap.People, snap.Expenses, snap.Payments)
	balances := ledger.ComputeBalances(snap.Expenses, snap.Payments)

	settlements, err := ledger.SimplifyWithin(balances, ledger.Tolerance(snap.Expenses))
	if err != nil {
		l.logger.Warn("Cannot compute settlements", "error", err)
	}

	return &service.Report{
		GeneratedAt:   l.now(),
		People:        people,
		Expenses:      snap.Expenses,
		Payments:      snap.Payments,
		Balances:      balances,
		Settlements:   settlements,
		SettlementErr: err,
		Summary:       ledger.Summarize(people, snap.Expenses, snap.Payments),
	}, nil
}

// Export builds a report and hands it to renderer.
func (l *Ledger) Export(ctx context.Context, renderer service.ReportRenderer) error {
	if renderer == nil {
		return ErrNilRenderer
	}

	report, err := l.Report(ctx)
	if err != nil {
		return err
	}

	if err := renderer.Render(ctx, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// snapshot reads all records, atomically when the store supports it and
// otherwise with concurrent loads.
func (l *Ledger) snapshot(ctx context.Context) (*service.Snapshot, error) {
	if s, ok := l.store.(service.Snapshotter); ok {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		return snap, nil
	}

	var snap service.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		expenses, err := l.store.LoadExpenses(gctx)
		if err != nil {
			return fmt.Errorf("failed to load expenses: %w", err)
		}
		snap.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		payments, err := l.store.LoadPayments(gctx)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		snap.Payments = payments
		return nil
	})
	g.Go(func() error {
		people, err := l.store.LoadPeople(gctx)
		if err != nil {
			return fmt.Errorf("failed to load people: %w", err)
		}
		snap.People = people
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
