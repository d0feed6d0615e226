// Package ledger computes net balances from expenses and payments and reduces
// them to a short list of settling transfers.
//
// Everything in this package is a pure function of its inputs. Callers own
// the records they pass in and the maps and slices returned.
package ledger

import (
	"slices"

	"github.com/Veraticus/settle-up/internal/model"
)

// ComputeBalances returns each person's net balance across all expenses and
// payments.
//
// Algorithm:
//   - Expense: payer is credited the full amount, every involved person
//     (payer included when involved) is debited the split amount
//   - Payment: payer is credited, payee is debited
//
// Every person named in any record gets an entry, possibly 0.
func ComputeBalances(expenses []model.Expense, payments []model.Payment) model.Balances {
	balances := make(model.Balances)

	for _, exp := range expenses {
		balances[exp.PaidBy] += exp.Amount
		for _, person := range exp.InvolvedPeople {
			balances[person] -= exp.SplitAmount
		}
	}

	for _, p := range payments {
		balances[p.Payer] += p.Amount
		balances[p.Payee] -= p.Amount
	}

	return balances
}

// Sum adds up all balances. For balances produced by ComputeBalances it is
// zero up to split rounding.
func Sum(balances model.Balances) float64 {
	var total float64
	for _, name := range sortedNames(balances) {
		total += balances[name]
	}
	return total
}

// KnownPeople returns the sorted union of registered names and every name
// appearing in the given records.
func KnownPeople(registered []string, expenses []model.Expense, payments []model.Payment) []string {
	names := make([]string, 0, len(registered)+2*len(expenses)+2*len(payments))
	names = append(names, registered...)
	for _, exp := range expenses {
		names = append(names, exp.PaidBy)
		names = append(names, exp.InvolvedPeople...)
	}
	for _, p := range payments {
		names = append(names, p.Payer, p.Payee)
	}
	return model.CanonicalPeople(names)
}

func sortedNames(balances model.Balances) []string {
	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
