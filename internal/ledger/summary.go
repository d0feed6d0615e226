package ledger

import (
	"cmp"
	"slices"

	"github.com/Veraticus/settle-up/internal/model"
)

// PersonSummary aggregates one person's activity in the ledger.
type PersonSummary struct {
	Name     string
	Paid     float64 // expenses paid for the group
	Share    float64 // sum of this person's split amounts
	Sent     float64 // direct payments made
	Received float64 // direct payments received
	Net      float64 // net balance
}

// Summary aggregates the whole ledger for reports.
type Summary struct {
	People        []PersonSummary // sorted by Share descending, then name
	TotalExpenses float64
	TotalPayments float64
	ExpenseCount  int
	PaymentCount  int
}

// Summarize builds a Summary covering people plus everyone named in the records.
func Summarize(people []string, expenses []model.Expense, payments []model.Payment) Summary {
	byName := make(map[string]*PersonSummary)
	get := func(name string) *PersonSummary {
		ps, ok := byName[name]
		if !ok {
			ps = &PersonSummary{Name: name}
			byName[name] = ps
		}
		return ps
	}

	for _, name := range KnownPeople(people, expenses, payments) {
		get(name)
	}

	summary := Summary{
		ExpenseCount: len(expenses),
		PaymentCount: len(payments),
	}

	for _, exp := range expenses {
		summary.TotalExpenses += exp.Amount
		get(exp.PaidBy).Paid += exp.Amount
		for _, person := range exp.InvolvedPeople {
			get(person).Share += exp.SplitAmount
		}
	}

	for _, p := range payments {
		summary.TotalPayments += p.Amount
		get(p.Payer).Sent += p.Amount
		get(p.Payee).Received += p.Amount
	}

	for name, bal := range ComputeBalances(expenses, payments) {
		get(name).Net = bal
	}

	summary.People = make([]PersonSummary, 0, len(byName))
	for _, ps := range byName {
		summary.People = append(summary.People, *ps)
	}
	slices.SortFunc(summary.People, func(a, b PersonSummary) int {
		return cmp.Or(cmp.Compare(b.Share, a.Share), cmp.Compare(a.Name, b.Name))
	})

	return summary
}
