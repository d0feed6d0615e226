package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPaymentDescription labels payments recorded without a description.
const DefaultPaymentDescription = "Direct Payment"

// Payment is a direct transfer of money from one person to another.
type Payment struct {
	CreatedAt   time.Time
	Payer       string
	Payee       string
	Description string
	ID          int
	Amount      float64
}

// NewPayment validates its inputs and builds a Payment. The amount is rounded
// to cents.
func NewPayment(id int, payer, payee string, amount float64, description string, createdAt time.Time) (Payment, error) {
	if id <= 0 {
		return Payment{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	if !isPositive(amount) {
		return Payment{}, fmt.Errorf("%w: %v", ErrNonPositiveAmount, amount)
	}

	payer = NormalizeName(payer)
	payee = NormalizeName(payee)
	if payer == "" {
		return Payment{}, ErrEmptyPayer
	}
	if payee == "" {
		return Payment{}, ErrEmptyPayee
	}
	if payer == payee {
		return Payment{}, fmt.Errorf("%w: %s", ErrSelfPayment, payer)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultPaymentDescription
	}

	rounded := RoundCents(amount)
	if rounded <= 0 {
		return Payment{}, fmt.Errorf("%w: %v rounds to zero", ErrNonPositiveAmount, amount)
	}

	return Payment{
		ID:          id,
		Payer:       payer,
		Payee:       payee,
		Amount:      rounded,
		Description: description,
		CreatedAt:   createdAt,
	}, nil
}
