package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/settle-up/internal/model"
)

func TestValidateContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
	assert.NoError(t, validateContext(context.Background()))
}

func TestValidateString(t *testing.T) {
	assert.ErrorIs(t, validateString("", "name"), ErrEmptyString)
	assert.ErrorIs(t, validateString("   ", "name"), ErrEmptyString)
	assert.NoError(t, validateString("x", "name"))
}

func TestValidateExpense(t *testing.T) {
	valid := model.Expense{ID: 1, PaidBy: "A", InvolvedPeople: []string{"A"}, Amount: 10, SplitAmount: 10}

	tests := []struct {
		name   string
		mutate func(*model.Expense)
		ok     bool
	}{
		{name: "valid", mutate: func(*model.Expense) {}, ok: true},
		{name: "missing id", mutate: func(e *model.Expense) { e.ID = 0 }},
		{name: "missing payer", mutate: func(e *model.Expense) { e.PaidBy = "" }},
		{name: "no people", mutate: func(e *model.Expense) { e.InvolvedPeople = nil }},
		{name: "zero amount", mutate: func(e *model.Expense) { e.Amount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := valid
			tt.mutate(&exp)
			err := validateExpense(exp)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidExpense)
			}
		})
	}
}

func TestValidatePayment(t *testing.T) {
	assert.NoError(t, validatePayment(model.Payment{ID: 1, Payer: "A", Payee: "B", Amount: 1}))
	assert.ErrorIs(t, validatePayment(model.Payment{ID: 1, Payer: "A", Amount: 1}), ErrInvalidPayment)
	assert.ErrorIs(t, validatePayment(model.Payment{Payer: "A", Payee: "B", Amount: 1}), ErrInvalidPayment)
}
