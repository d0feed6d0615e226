// Package testutil provides test utilities for the settle-up project.
// It offers in-memory ledger stores and a fluent builder for seeding records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  *storage.SQLiteStorage
	t        *testing.T
	Expenses []model.Expense
	Payments []model.Payment
}

// SetupTestDB creates a new in-memory test database seeded by the given
// builder (which may be nil). It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewLedgerBuilder(t).
//			WithExpense("Dinner", 90, "A", "A", "B", "C").
//			WithPayment("B", "A", 30),
//	)
func SetupTestDB(t *testing.T, builder *LedgerBuilder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{
		Storage: store,
		t:       t,
	}

	if builder != nil {
		db.Expenses, db.Payments, err = builder.Build(ctx, store)
		if err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
	}

	return db
}
