// Package model defines the ledger records shared by every layer of the application.
package model

import "errors"

// Validation errors returned by the record constructors.
var (
	ErrInvalidID         = errors.New("id must be positive")
	ErrEmptyDescription  = errors.New("description cannot be empty")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrEmptyPayer        = errors.New("payer name cannot be empty")
	ErrEmptyPayee        = errors.New("payee name cannot be empty")
	ErrSelfPayment       = errors.New("payer and payee cannot be the same person")
	ErrNoInvolvedPeople  = errors.New("no people selected for splitting")
	ErrDuplicateInvolved = errors.New("involved people contain duplicates")
	ErrSplitMismatch     = errors.New("split amount does not match amount and involved people")
	ErrEmptyName         = errors.New("person name cannot be empty")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
)
