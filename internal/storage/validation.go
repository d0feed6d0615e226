// Package storage provides the SQLite ledger store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/settle-up/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidPayment = errors.New("invalid payment")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense catches zero-value expenses that bypassed model.NewExpense.
func validateExpense(exp model.Expense) error {
	if exp.ID <= 0 {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if exp.PaidBy == "" {
		return fmt.Errorf("%w: missing payer", ErrInvalidExpense)
	}
	if len(exp.InvolvedPeople) == 0 {
		return fmt.Errorf("%w: no involved people", ErrInvalidExpense)
	}
	if exp.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrInvalidExpense)
	}
	return nil
}

// validatePayment catches zero-value payments that bypassed model.NewPayment.
func validatePayment(p model.Payment) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: missing ID", ErrInvalidPayment)
	}
	if p.Payer == "" || p.Payee == "" {
		return fmt.Errorf("%w: missing payer or payee", ErrInvalidPayment)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrInvalidPayment)
	}
	return nil
}
