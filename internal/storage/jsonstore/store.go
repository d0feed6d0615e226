// Package jsonstore keeps the ledger in three JSON files: expenses.json,
// payments.json and people.json.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

// File names inside the data directory.
const (
	ExpensesFile = "expenses.json"
	PaymentsFile = "payments.json"
	PeopleFile   = "people.json"
)

var (
	_ service.LedgerStore = (*Store)(nil)
	_ service.Snapshotter = (*Store)(nil)
)

// Store implements service.LedgerStore on top of JSON files.
type Store struct {
	logger *slog.Logger
	dir    string
	mu     sync.Mutex
}

// New creates a store rooted at dir. A nil logger falls back to slog.Default.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: data directory is required", common.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Migrate creates the data directory and seeds missing files with empty lists.
func (s *Store) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	for _, name := range []string{ExpensesFile, PaymentsFile, PeopleFile} {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if err := writeJSON(path, []any{}); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; every operation opens and closes its own files.
func (s *Store) Close() error {
	return nil
}

// LoadExpenses returns every stored expense in file order.
func (s *Store) LoadExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadExpenses()
}

// LoadPayments returns every stored payment in file order.
func (s *Store) LoadPayments(ctx context.Context) ([]model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPayments()
}

// LoadPeople returns the registered names.
func (s *Store) LoadPeople(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPeople(), nil
}

// Snapshot reads all three files under a single lock.
func (s *Store) Snapshot(ctx context.Context) (*service.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.loadExpenses()
	if err != nil {
		return nil, err
	}
	payments, err := s.loadPayments()
	if err != nil {
		return nil, err
	}

	return &service.Snapshot{
		Expenses: expenses,
		Payments: payments,
		People:   s.loadPeople(),
	}, nil
}

// AppendExpense rewrites expenses.json with the new expense at the end.
func (s *Store) AppendExpense(ctx context.Context, expense model.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []model.ExpenseRecord
	if err := s.readList(ExpensesFile, &records); err != nil {
		return fmt.Errorf("refusing to overwrite %s: %w", ExpensesFile, err)
	}
	for _, rec := range records {
		if rec.ID == expense.ID {
			return fmt.Errorf("%w: expense %d", common.ErrDuplicateEntry, expense.ID)
		}
	}

	records = append(records, expense.Record())
	return writeJSON(filepath.Join(s.dir, ExpensesFile), records)
}

// AppendPayment rewrites payments.json with the new payment at the end.
func (s *Store) AppendPayment(ctx context.Context, payment model.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []model.PaymentRecord
	if err := s.readList(PaymentsFile, &records); err != nil {
		return fmt.Errorf("refusing to overwrite %s: %w", PaymentsFile, err)
	}
	for _, rec := range records {
		if rec.ID == payment.ID {
			return fmt.Errorf("%w: payment %d", common.ErrDuplicateEntry, payment.ID)
		}
	}

	records = append(records, payment.Record())
	return writeJSON(filepath.Join(s.dir, PaymentsFile), records)
}

// Register adds unseen names to people.json and returns how many were added.
// The file is only rewritten when something changed.
func (s *Store) Register(ctx context.Context, names []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored []string
	if err := s.readList(PeopleFile, &stored); err != nil {
		return 0, fmt.Errorf("refusing to overwrite %s: %w", PeopleFile, err)
	}
	existing := model.CanonicalPeople(stored)
	merged := model.CanonicalPeople(append(append([]string{}, existing...), names...))
	added := len(merged) - len(existing)
	if added == 0 {
		return 0, nil
	}

	if err := writeJSON(filepath.Join(s.dir, PeopleFile), merged); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) loadExpenses() ([]model.Expense, error) {
	var records []model.ExpenseRecord
	_ = s.readList(ExpensesFile, &records)

	expenses := make([]model.Expense, 0, len(records))
	for _, rec := range records {
		exp, err := model.ExpenseFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabaseCorrupted, ExpensesFile, err)
		}
		expenses = append(expenses, exp)
	}
	return expenses, nil
}

func (s *Store) loadPayments() ([]model.Payment, error) {
	var records []model.PaymentRecord
	_ = s.readList(PaymentsFile, &records)

	payments := make([]model.Payment, 0, len(records))
	for _, rec := range records {
		p, err := model.PaymentFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabaseCorrupted, PaymentsFile, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *Store) loadPeople() []string {
	var people []string
	_ = s.readList(PeopleFile, &people)
	return model.CanonicalPeople(people)
}

// readList decodes a JSON list into dst. A missing file leaves dst empty and
// is not an error. An unreadable or malformed file is logged, leaves dst
// empty and returns an error wrapping common.ErrDatabaseCorrupted; readers
// treat it as empty, writers must not replace it.
func (s *Store) readList(name string, dst any) error {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path) //nolint:gosec // path is built from the configured data directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		s.logger.Warn("Failed to read ledger file", "file", path, "error", err)
		return fmt.Errorf("%w: %s: %w", common.ErrDatabaseCorrupted, name, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("Ignoring corrupt ledger file", "file", path, "error", err)
		return fmt.Errorf("%w: %s: %w", common.ErrDatabaseCorrupted, name, err)
	}
	return nil
}

// writeJSON writes v to path through a temporary file and a rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
