package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/model"
)

// AppendExpense stores a new expense together with its involved people.
func (s *SQLiteStorage) AppendExpense(ctx context.Context, expense model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.appendExpenseTx(ctx, tx, expense)
	})
}

func (s *SQLiteStorage) appendExpenseTx(ctx context.Context, tx *sql.Tx, expense model.Expense) error {
	rec := expense.Record()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount, paid_by, split_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Description, rec.Amount, rec.PaidBy, rec.SplitAmount, rec.Date)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: expense %d", common.ErrDuplicateEntry, rec.ID)
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expense_people (expense_id, person) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, person := range rec.InvolvedPeople {
		if _, err := stmt.ExecContext(ctx, rec.ID, person); err != nil {
			return fmt.Errorf("failed to save involved person %q: %w", person, err)
		}
	}

	return nil
}

// LoadExpenses returns every expense ordered by id.
func (s *SQLiteStorage) LoadExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadExpensesTx(ctx, s.db)
}

func (s *SQLiteStorage) loadExpensesTx(ctx context.Context, q queryable) ([]model.Expense, error) {
	involved, err := s.loadInvolvedPeople(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, description, amount, paid_by, split_amount, created_at
		FROM expenses
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var rec model.ExpenseRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Description,
			&rec.Amount,
			&rec.PaidBy,
			&rec.SplitAmount,
			&rec.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		rec.InvolvedPeople = involved[rec.ID]

		exp, err := model.ExpenseFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
		}
		expenses = append(expenses, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

func (s *SQLiteStorage) loadInvolvedPeople(ctx context.Context, q queryable) (map[int][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT expense_id, person
		FROM expense_people
		ORDER BY expense_id, person
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query involved people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	involved := make(map[int][]string)
	for rows.Next() {
		var id int
		var person string
		if err := rows.Scan(&id, &person); err != nil {
			return nil, fmt.Errorf("failed to scan involved person: %w", err)
		}
		involved[id] = append(involved[id], person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating involved people: %w", err)
	}

	return involved, nil
}
