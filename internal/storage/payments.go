package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/model"
)

// AppendPayment stores a new payment.
func (s *SQLiteStorage) AppendPayment(ctx context.Context, payment model.Payment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayment(payment); err != nil {
		return err
	}

	rec := payment.Record()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, payer, payee, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Payer, rec.Payee, rec.Amount, rec.Description, rec.Date)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: payment %d", common.ErrDuplicateEntry, rec.ID)
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

// LoadPayments returns every payment ordered by id.
func (s *SQLiteStorage) LoadPayments(ctx context.Context) ([]model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadPaymentsTx(ctx, s.db)
}

func (s *SQLiteStorage) loadPaymentsTx(ctx context.Context, q queryable) ([]model.Payment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, payer, payee, amount, description, created_at
		FROM payments
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Payer,
			&rec.Payee,
			&rec.Amount,
			&rec.Description,
			&rec.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p, err := model.PaymentFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
