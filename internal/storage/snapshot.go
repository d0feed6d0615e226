package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/settle-up/internal/service"
)

var _ service.Snapshotter = (*SQLiteStorage)(nil)

// Snapshot reads expenses, payments and registered people inside one read
// transaction so a report never mixes states.
func (s *SQLiteStorage) Snapshot(ctx context.Context) (*service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	expenses, err := s.loadExpensesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	payments, err := s.loadPaymentsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	people, err := s.loadPeopleTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &service.Snapshot{
		Expenses: expenses,
		Payments: payments,
		People:   people,
	}, nil
}
