package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/settle-up/internal/model"
)

// LoadPeople returns the registered names in sorted order.
func (s *SQLiteStorage) LoadPeople(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadPeopleTx(ctx, s.db)
}

func (s *SQLiteStorage) loadPeopleTx(ctx context.Context, q queryable) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT name FROM people ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var people []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// Register adds names to the person registry, ignoring blanks and names
// already present. It returns how many names were newly added.
func (s *SQLiteStorage) Register(ctx context.Context, names []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	names = model.CanonicalPeople(names)
	if len(names) == 0 {
		return 0, nil
	}

	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO people (name) VALUES (?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, name := range names {
			res, err := stmt.ExecContext(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to register %q: %w", name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}
