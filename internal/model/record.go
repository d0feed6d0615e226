package model

import (
	"fmt"
	"math"
	"time"
)

// maxSplitDrift is how far a stored split may differ from the recomputed one.
const maxSplitDrift = 0.01 + 1e-9

// ExpenseRecord is the plain key-value form of an Expense used for persistence.
type ExpenseRecord struct {
	ID             int      `json:"id"`
	Description    string   `json:"description"`
	Amount         float64  `json:"amount"`
	PaidBy         string   `json:"paid_by"`
	InvolvedPeople []string `json:"involved_people"`
	SplitAmount    float64  `json:"split_amount_per_person"`
	Date           string   `json:"date"`
}

// PaymentRecord is the plain key-value form of a Payment used for persistence.
type PaymentRecord struct {
	ID          int     `json:"id"`
	Payer       string  `json:"payer"`
	Payee       string  `json:"payee"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// Record converts the expense to its persisted form.
func (e Expense) Record() ExpenseRecord {
	return ExpenseRecord{
		ID:             e.ID,
		Description:    e.Description,
		Amount:         e.Amount,
		PaidBy:         e.PaidBy,
		InvolvedPeople: append([]string(nil), e.InvolvedPeople...),
		SplitAmount:    e.SplitAmount,
		Date:           FormatTimestamp(e.CreatedAt),
	}
}

// ExpenseFromRecord rebuilds an Expense from its persisted form, re-checking
// every invariant the constructor enforces.
func ExpenseFromRecord(rec ExpenseRecord) (Expense, error) {
	created, err := ParseTimestamp(rec.Date)
	if err != nil {
		return Expense{}, fmt.Errorf("expense %d: %w", rec.ID, err)
	}

	for _, name := range rec.InvolvedPeople {
		if NormalizeName(name) == "" {
			return Expense{}, fmt.Errorf("expense %d: involved people: %w", rec.ID, ErrEmptyName)
		}
	}
	if len(CanonicalPeople(rec.InvolvedPeople)) != len(rec.InvolvedPeople) {
		return Expense{}, fmt.Errorf("expense %d: %w", rec.ID, ErrDuplicateInvolved)
	}

	exp, err := NewExpense(rec.ID, rec.Description, rec.Amount, rec.PaidBy, rec.InvolvedPeople, created)
	if err != nil {
		return Expense{}, fmt.Errorf("expense %d: %w", rec.ID, err)
	}

	// The stored share is authoritative when it is a rounding of the same
	// quotient.
	if math.Abs(exp.SplitAmount-rec.SplitAmount) > maxSplitDrift {
		return Expense{}, fmt.Errorf("expense %d: %w: stored %.2f, expected %.2f",
			rec.ID, ErrSplitMismatch, rec.SplitAmount, exp.SplitAmount)
	}
	exp.SplitAmount = rec.SplitAmount

	return exp, nil
}

// Record converts the payment to its persisted form.
func (p Payment) Record() PaymentRecord {
	return PaymentRecord{
		ID:          p.ID,
		Payer:       p.Payer,
		Payee:       p.Payee,
		Amount:      p.Amount,
		Date:        FormatTimestamp(p.CreatedAt),
		Description: p.Description,
	}
}

// PaymentFromRecord rebuilds a Payment from its persisted form.
func PaymentFromRecord(rec PaymentRecord) (Payment, error) {
	created, err := ParseTimestamp(rec.Date)
	if err != nil {
		return Payment{}, fmt.Errorf("payment %d: %w", rec.ID, err)
	}

	p, err := NewPayment(rec.ID, rec.Payer, rec.Payee, rec.Amount, rec.Description, created)
	if err != nil {
		return Payment{}, fmt.Errorf("payment %d: %w", rec.ID, err)
	}
	return p, nil
}

// FormatTimestamp formats t with TimestampLayout. The zero time formats as "".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string in local time. An empty
// string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t, nil
}
