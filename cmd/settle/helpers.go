package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/config"
	"github.com/Veraticus/settle-up/internal/engine"
	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/report"
	"github.com/Veraticus/settle-up/internal/service"
	"github.com/Veraticus/settle-up/internal/storage"
	"github.com/Veraticus/settle-up/internal/storage/jsonstore"
)

// openStore opens the configured ledger store and applies migrations.
func openStore(ctx context.Context, cfg config.StorageConfig) (service.LedgerStore, error) {
	var (
		store service.LedgerStore
		err   error
	)

	switch cfg.Backend {
	case config.BackendJSON:
		store, err = jsonstore.New(cfg.Path, slog.Default())
	default:
		store, err = storage.NewSQLiteStorage(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withLedger opens the store, runs fn against a Ledger and closes the store.
func (a *app) withLedger(ctx context.Context, fn func(*engine.Ledger) error) error {
	store, err := openStore(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close store", "error", cerr)
		}
	}()

	return fn(engine.New(store, engine.WithLogger(slog.Default())))
}

// render shows the given terminal sections of the current report.
func (a *app) render(ctx context.Context, sections report.Section) error {
	return a.withLedger(ctx, func(l *engine.Ledger) error {
		return userFacing(l.Export(ctx, report.NewTerminal(a.out, a.cfg.Currency, sections)))
	})
}

var validationErrors = []error{
	model.ErrInvalidID,
	model.ErrEmptyDescription,
	model.ErrNonPositiveAmount,
	model.ErrEmptyPayer,
	model.ErrEmptyPayee,
	model.ErrSelfPayment,
	model.ErrNoInvolvedPeople,
	model.ErrDuplicateInvolved,
	model.ErrSplitMismatch,
	model.ErrEmptyName,
}

// userFacing turns record validation failures into UserErrors.
func userFacing(err error) error {
	if err == nil {
		return nil
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return err
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return common.NewUserError("Invalid input", err)
		}
	}
	return err
}
