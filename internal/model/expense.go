package model

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout used for record timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Expense is a purchase paid by one person and split equally among the involved people.
// Expenses are immutable once constructed.
type Expense struct {
	CreatedAt      time.Time
	Description    string
	PaidBy         string
	InvolvedPeople []string // sorted, no duplicates
	ID             int
	Amount         float64
	SplitAmount    float64 // Amount / len(InvolvedPeople), rounded to cents
}

// NewExpense validates its inputs and builds an Expense.
// Involved names are trimmed, blank names dropped, duplicates removed and the
// result sorted.
func NewExpense(id int, description string, amount float64, paidBy string, involved []string, createdAt time.Time) (Expense, error) {
	if id <= 0 {
		return Expense{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}

	people := CanonicalPeople(involved)
	if len(people) == 0 {
		return Expense{}, ErrNoInvolvedPeople
	}
	if !isPositive(amount) {
		return Expense{}, fmt.Errorf("%w: %v", ErrNonPositiveAmount, amount)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return Expense{}, ErrEmptyDescription
	}
	paidBy = NormalizeName(paidBy)
	if paidBy == "" {
		return Expense{}, ErrEmptyPayer
	}

	return Expense{
		ID:             id,
		Description:    description,
		Amount:         amount,
		PaidBy:         paidBy,
		InvolvedPeople: people,
		SplitAmount:    SplitAmount(amount, len(people)),
		CreatedAt:      createdAt,
	}, nil
}

// SplitAmount divides amount equally among count people and rounds the share
// to two decimal places. The exact binary quotient is rounded and exact halves
// go to the even cent, so 10.25 split two ways is 5.12.
func SplitAmount(amount float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	share := amount / float64(count)
	f, err := strconv.ParseFloat(strconv.FormatFloat(share, 'f', 2, 64), 64)
	if err != nil {
		return RoundCents(share)
	}
	return f
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Involves reports whether name takes a share of the expense.
func (e Expense) Involves(name string) bool {
	_, found := slices.BinarySearch(e.InvolvedPeople, name)
	return found
}

// NormalizeName trims surrounding whitespace from a person name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// CanonicalPeople normalizes, deduplicates and sorts a list of names.
func CanonicalPeople(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	people := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		people = append(people, n)
	}
	slices.Sort(people)
	return people
}

// NextID returns the id to assign to a new record: max(ids)+1, or 1 when
// there are no records yet.
func NextID(ids []int) int {
	if len(ids) == 0 {
		return 1
	}
	return slices.Max(ids) + 1
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
