package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseFromRecord(t *testing.T) {
	valid := ExpenseRecord{
		ID:             7,
		Description:    "Dinner",
		Amount:         90,
		PaidBy:         "A",
		InvolvedPeople: []string{"A", "B", "C"},
		SplitAmount:    30,
		Date:           "2025-03-14 18:30:00",
	}

	t.Run("valid record", func(t *testing.T) {
		exp, err := ExpenseFromRecord(valid)
		require.NoError(t, err)
		assert.Equal(t, 7, exp.ID)
		assert.Equal(t, time.Date(2025, 3, 14, 18, 30, 0, 0, time.Local), exp.CreatedAt)
		assert.Equal(t, valid, exp.Record())
	})

	t.Run("duplicate involved people", func(t *testing.T) {
		rec := valid
		rec.InvolvedPeople = []string{"A", "B", "B"}
		_, err := ExpenseFromRecord(rec)
		assert.ErrorIs(t, err, ErrDuplicateInvolved)
	})

	t.Run("blank involved name", func(t *testing.T) {
		rec := valid
		rec.InvolvedPeople = []string{"A", " ", "C"}
		_, err := ExpenseFromRecord(rec)
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.NotErrorIs(t, err, ErrDuplicateInvolved)
	})

	t.Run("half cent split rounded to even", func(t *testing.T) {
		rec := valid
		rec.Amount = 10.25
		rec.InvolvedPeople = []string{"A", "B"}
		rec.SplitAmount = 5.12
		exp, err := ExpenseFromRecord(rec)
		require.NoError(t, err)
		assert.InDelta(t, 5.12, exp.SplitAmount, 0.0001)
	})

	t.Run("stored split within a cent is kept", func(t *testing.T) {
		rec := valid
		rec.Amount = 10.25
		rec.InvolvedPeople = []string{"A", "B"}
		rec.SplitAmount = 5.13
		exp, err := ExpenseFromRecord(rec)
		require.NoError(t, err)
		assert.InDelta(t, 5.13, exp.SplitAmount, 0.0001)
		assert.Equal(t, rec, exp.Record())
	})

	t.Run("split mismatch", func(t *testing.T) {
		rec := valid
		rec.SplitAmount = 45
		_, err := ExpenseFromRecord(rec)
		assert.ErrorIs(t, err, ErrSplitMismatch)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		rec := valid
		rec.Date = "yesterday"
		_, err := ExpenseFromRecord(rec)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})

	t.Run("invalid amount", func(t *testing.T) {
		rec := valid
		rec.Amount = -90
		_, err := ExpenseFromRecord(rec)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})
}

func TestPaymentFromRecord(t *testing.T) {
	rec := PaymentRecord{
		ID:          3,
		Payer:       "B",
		Payee:       "A",
		Amount:      50,
		Date:        "2025-03-15 09:00:00",
		Description: DefaultPaymentDescription,
	}

	p, err := PaymentFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, rec, p.Record())

	rec.Payee = "B"
	_, err = PaymentFromRecord(rec)
	assert.ErrorIs(t, err, ErrSelfPayment)
}
