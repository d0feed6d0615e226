package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Veraticus/settle-up/internal/model"
)

const (
	// NoiseThreshold is the amount at or below which a balance or transfer is
	// treated as already settled.
	NoiseThreshold = 0.01

	// MaxImbalance bounds how far the sum of balances may drift from zero
	// before Simplify refuses them, when the records behind them are unknown.
	MaxImbalance = 1.00
)

// SplitResidue is the total amount that split rounding leaves unassigned
// across expenses: the sum of |amount - split*involved| per expense.
func SplitResidue(expenses []model.Expense) float64 {
	var residue float64
	for _, exp := range expenses {
		residue += math.Abs(exp.Amount - exp.SplitAmount*float64(len(exp.InvolvedPeople)))
	}
	return residue
}

// Tolerance is the imbalance that balances computed from expenses may carry:
// their split residue plus NoiseThreshold for float error.
func Tolerance(expenses []model.Expense) float64 {
	return SplitResidue(expenses) + NoiseThreshold
}

// ErrUnbalanced indicates that balances handed to Simplify do not sum to zero.
var ErrUnbalanced = errors.New("balances do not sum to zero")

type party struct {
	name    string
	balance float64
}

// Simplify returns transfers that bring every balance to zero, refusing
// balances whose sum is further than MaxImbalance from zero.
func Simplify(balances model.Balances) ([]model.Settlement, error) {
	return SimplifyWithin(balances, MaxImbalance)
}

// SimplifyWithin is Simplify with an explicit imbalance tolerance, normally
// Tolerance of the expenses the balances were computed from.
//
// Creditors (givers) are sorted by balance descending and debtors (takers)
// by balance ascending, ties broken by name. The largest giver and the
// largest taker are matched repeatedly; each match fully settles at least one
// side, so at most nonzero-1 transfers are produced.
func SimplifyWithin(balances model.Balances, tolerance float64) ([]model.Settlement, error) {
	if residual := Sum(balances); math.Abs(residual) > tolerance {
		return nil, fmt.Errorf("%w: residual %.2f exceeds %.2f", ErrUnbalanced, residual, tolerance)
	}

	var givers, takers []party
	for name, bal := range balances {
		switch {
		case bal > 0:
			givers = append(givers, party{name: name, balance: bal})
		case bal < 0:
			takers = append(takers, party{name: name, balance: bal})
		}
	}

	if len(givers) == 0 && len(takers) == 0 {
		return []model.Settlement{}, nil
	}

	slices.SortFunc(givers, func(a, b party) int {
		return cmp.Or(cmp.Compare(b.balance, a.balance), cmp.Compare(a.name, b.name))
	})
	slices.SortFunc(takers, func(a, b party) int {
		return cmp.Or(cmp.Compare(a.balance, b.balance), cmp.Compare(a.name, b.name))
	})

	settlements := []model.Settlement{}
	i, j := 0, 0
	for i < len(givers) && j < len(takers) {
		giver := &givers[i]
		taker := &takers[j]

		amount := min(giver.balance, -taker.balance)

		if amount > NoiseThreshold {
			settlements = append(settlements, model.Settlement{
				From:   taker.name,
				To:     giver.name,
				Amount: model.RoundCents(amount),
			})
		}

		giver.balance -= amount
		taker.balance += amount

		if giver.balance <= NoiseThreshold {
			i++
		}
		if taker.balance >= -NoiseThreshold {
			j++
		}
	}

	return settlements, nil
}
