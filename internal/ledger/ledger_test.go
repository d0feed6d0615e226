package ledger

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/settle-up/internal/model"
)

func mustExpense(t *testing.T, id int, amount float64, paidBy string, involved ...string) model.Expense {
	t.Helper()
	exp, err := model.NewExpense(id, "expense", amount, paidBy, involved, time.Now())
	require.NoError(t, err)
	return exp
}

func mustPayment(t *testing.T, id int, payer, payee string, amount float64) model.Payment {
	t.Helper()
	p, err := model.NewPayment(id, payer, payee, amount, "", time.Now())
	require.NoError(t, err)
	return p
}

func assertBalances(t *testing.T, want, got model.Balances) {
	t.Helper()
	require.Len(t, got, len(want))
	for name, w := range want {
		g, ok := got[name]
		require.True(t, ok, "missing balance for %s", name)
		assert.InDelta(t, w, g, 0.01, "balance for %s", name)
	}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		want     model.Balances
		name     string
		expenses []model.Expense
		payments []model.Payment
	}{
		{
			name: "no records",
			want: model.Balances{},
		},
		{
			name:     "payer involved in split",
			expenses: []model.Expense{mustExpense(t, 1, 90, "A", "A", "B", "C")},
			want:     model.Balances{"A": 60, "B": -30, "C": -30},
		},
		{
			name:     "payer not involved",
			expenses: []model.Expense{mustExpense(t, 1, 50, "A", "B", "C")},
			want:     model.Balances{"A": 50, "B": -25, "C": -25},
		},
		{
			name:     "expense then payment settles",
			expenses: []model.Expense{mustExpense(t, 1, 100, "A", "A", "B")},
			payments: []model.Payment{mustPayment(t, 1, "B", "A", 50)},
			want:     model.Balances{"A": 0, "B": 0},
		},
		{
			name:     "payment only",
			payments: []model.Payment{mustPayment(t, 1, "B", "A", 20)},
			want:     model.Balances{"A": -20, "B": 20},
		},
		{
			name: "several expenses",
			expenses: []model.Expense{
				mustExpense(t, 1, 120, "A", "A", "B", "C"),
				mustExpense(t, 2, 60, "B", "B", "C"),
			},
			want: model.Balances{"A": 80, "B": -10, "C": -70},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.expenses, tt.payments)
			require.NotNil(t, got)
			assertBalances(t, tt.want, got)
		})
	}
}

func TestComputeBalances_OrderIndependent(t *testing.T) {
	expenses := []model.Expense{
		mustExpense(t, 1, 100, "A", "A", "B", "C"),
		mustExpense(t, 2, 45.5, "C", "A", "C"),
		mustExpense(t, 3, 12, "B", "B", "D"),
	}
	payments := []model.Payment{
		mustPayment(t, 1, "B", "A", 10),
		mustPayment(t, 2, "D", "B", 6),
	}

	forward := ComputeBalances(expenses, payments)

	reversedExp := []model.Expense{expenses[2], expenses[1], expenses[0]}
	reversedPay := []model.Payment{payments[1], payments[0]}
	backward := ComputeBalances(reversedExp, reversedPay)

	assertBalances(t, forward, backward)
}

func TestComputeBalances_SplitCorrectness(t *testing.T) {
	exp := mustExpense(t, 1, 100, "A", "A", "B", "C")
	assert.InDelta(t, 100.0/3, exp.SplitAmount, 0.01)

	got := ComputeBalances([]model.Expense{exp}, nil)
	assert.InDelta(t, 100-exp.SplitAmount, got["A"], 1e-9)
	assert.InDelta(t, -exp.SplitAmount, got["B"], 1e-9)
	assert.InDelta(t, -exp.SplitAmount, got["C"], 1e-9)
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances model.Balances
		want     []model.Settlement
	}{
		{
			name:     "empty",
			balances: model.Balances{},
			want:     []model.Settlement{},
		},
		{
			name:     "single zero",
			balances: model.Balances{"A": 0},
			want:     []model.Settlement{},
		},
		{
			name:     "one creditor two debtors ties by name",
			balances: model.Balances{"C": -30, "A": 60, "B": -30},
			want: []model.Settlement{
				{From: "B", To: "A", Amount: 30},
				{From: "C", To: "A", Amount: 30},
			},
		},
		{
			name:     "largest debtor first",
			balances: model.Balances{"A": 70, "B": -30, "C": -40},
			want: []model.Settlement{
				{From: "C", To: "A", Amount: 40},
				{From: "B", To: "A", Amount: 30},
			},
		},
		{
			name:     "two creditors two debtors",
			balances: model.Balances{"A": 50, "B": 30, "C": -60, "D": -20},
			want: []model.Settlement{
				{From: "C", To: "A", Amount: 50},
				{From: "C", To: "B", Amount: 10},
				{From: "D", To: "B", Amount: 20},
			},
		},
		{
			name:     "noise is dropped",
			balances: model.Balances{"A": 0.005, "B": -0.005},
			want:     []model.Settlement{},
		},
		{
			name:     "rounding drift from three way split",
			balances: model.Balances{"A": 66.67, "B": -33.33, "C": -33.33},
			want: []model.Settlement{
				{From: "B", To: "A", Amount: 33.33},
				{From: "C", To: "A", Amount: 33.33},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Simplify(tt.balances)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].From, got[i].From)
				assert.Equal(t, tt.want[i].To, got[i].To)
				assert.InDelta(t, tt.want[i].Amount, got[i].Amount, 0.001)
			}
		})
	}
}

func TestSimplify_Unbalanced(t *testing.T) {
	got, err := Simplify(model.Balances{"A": 50, "B": -10})
	require.ErrorIs(t, err, ErrUnbalanced)
	assert.Nil(t, got)
}

func TestSimplifyWithin_LongLedgerRoundingResidue(t *testing.T) {
	expenses := make([]model.Expense, 0, 101)
	for id := 1; id <= 101; id++ {
		expenses = append(expenses, mustExpense(t, id, 100, "A", "A", "B", "C"))
	}

	balances := ComputeBalances(expenses, nil)
	require.InDelta(t, 1.01, Sum(balances), 0.0001)
	assert.InDelta(t, 1.02, Tolerance(expenses), 0.0001)

	got, err := SimplifyWithin(balances, Tolerance(expenses))
	require.NoError(t, err)
	assert.Equal(t, []model.Settlement{
		{From: "B", To: "A", Amount: 3366.33},
		{From: "C", To: "A", Amount: 3366.33},
	}, got)
}

func TestSimplifyWithin_RejectsDriftBeyondRounding(t *testing.T) {
	expenses := []model.Expense{
		mustExpense(t, 1, 100, "A", "A", "B", "C"),
		mustExpense(t, 2, 90, "B", "A", "B", "C"),
	}
	balances := ComputeBalances(expenses, nil)
	balances["A"] += 0.5

	_, err := SimplifyWithin(balances, Tolerance(expenses))
	assert.ErrorIs(t, err, ErrUnbalanced)
}

func TestSplitResidue(t *testing.T) {
	assert.InDelta(t, 0.0, SplitResidue(nil), 0.0001)
	assert.InDelta(t, 0.0, SplitResidue([]model.Expense{mustExpense(t, 1, 90, "A", "A", "B", "C")}), 0.0001)
	assert.InDelta(t, 0.02, SplitResidue([]model.Expense{
		mustExpense(t, 1, 100, "A", "A", "B", "C"),
		mustExpense(t, 2, 200, "A", "A", "B", "C"),
	}), 0.0001)
}

func TestSimplify_DoesNotMutateInput(t *testing.T) {
	balances := model.Balances{"A": 60, "B": -30, "C": -30}
	_, err := Simplify(balances)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"A": 60, "B": -30, "C": -30}, balances)
}

func TestScenarios(t *testing.T) {
	t.Run("three way dinner", func(t *testing.T) {
		balances := ComputeBalances([]model.Expense{mustExpense(t, 1, 90, "A", "A", "B", "C")}, nil)
		assertBalances(t, model.Balances{"A": 60, "B": -30, "C": -30}, balances)

		got, err := Simplify(balances)
		require.NoError(t, err)
		assert.Equal(t, []model.Settlement{
			{From: "B", To: "A", Amount: 30},
			{From: "C", To: "A", Amount: 30},
		}, got)
	})

	t.Run("payment clears expense", func(t *testing.T) {
		balances := ComputeBalances(
			[]model.Expense{mustExpense(t, 1, 100, "A", "A", "B")},
			[]model.Payment{mustPayment(t, 1, "B", "A", 50)},
		)
		assertBalances(t, model.Balances{"A": 0, "B": 0}, balances)

		got, err := Simplify(balances)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unequal amounts need two transfers", func(t *testing.T) {
		balances := ComputeBalances(
			[]model.Expense{mustExpense(t, 1, 120, "A", "A", "B", "C")},
			[]model.Payment{mustPayment(t, 1, "B", "A", 10)},
		)
		assertBalances(t, model.Balances{"A": 70, "B": -30, "C": -40}, balances)

		got, err := Simplify(balances)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

// TestSimplify_Properties checks zero-sum, settlement correctness and the
// transfer count bound over generated ledgers.
func TestSimplify_Properties(t *testing.T) {
	people := []string{"Ann", "Ben", "Cat", "Dan", "Eve", "Fay"}
	rng := rand.New(rand.NewPCG(42, 7))

	for round := 0; round < 200; round++ {
		var expenses []model.Expense
		var payments []model.Payment

		expenseCount, paymentCount := 1+rng.IntN(8), rng.IntN(4)
		for id := 1; id <= expenseCount; id++ {
			k := 1 + rng.IntN(len(people))
			involved := make([]string, 0, k)
			for _, idx := range rng.Perm(len(people))[:k] {
				involved = append(involved, people[idx])
			}
			// Whole-cent shares keep splits exact.
			cents := 1 + rng.IntN(10000)
			amount := float64(cents*k) / 100
			expenses = append(expenses, mustExpense(t, id, amount, people[rng.IntN(len(people))], involved...))
		}
		for id := 1; id <= paymentCount; id++ {
			perm := rng.Perm(len(people))
			amount := float64(1+rng.IntN(5000)) / 100
			payments = append(payments, mustPayment(t, id, people[perm[0]], people[perm[1]], amount))
		}

		balances := ComputeBalances(expenses, payments)
		require.InDelta(t, 0, Sum(balances), 0.01, "zero-sum in round %d", round)

		settlements, err := Simplify(balances)
		require.NoError(t, err)

		nonzero := 0
		for _, bal := range balances {
			if math.Abs(bal) > NoiseThreshold {
				nonzero++
			}
		}
		assert.LessOrEqual(t, len(settlements), max(0, nonzero-1), "transfer bound in round %d", round)

		remaining := make(model.Balances, len(balances))
		for name, bal := range balances {
			remaining[name] = bal
		}
		for _, s := range settlements {
			assert.Greater(t, s.Amount, NoiseThreshold)
			remaining[s.From] += s.Amount
			remaining[s.To] -= s.Amount
		}
		for name, bal := range remaining {
			assert.InDelta(t, 0, bal, 0.01, "%s unsettled in round %d", name, round)
		}
	}
}

func TestKnownPeople(t *testing.T) {
	expenses := []model.Expense{mustExpense(t, 1, 30, "Zed", "Amy", "Bob")}
	payments := []model.Payment{mustPayment(t, 1, "Cal", "Amy", 5)}

	got := KnownPeople([]string{"Dee", "Bob"}, expenses, payments)
	assert.Equal(t, []string{"Amy", "Bob", "Cal", "Dee", "Zed"}, got)
}

func TestSummarize(t *testing.T) {
	expenses := []model.Expense{
		mustExpense(t, 1, 90, "A", "A", "B", "C"),
		mustExpense(t, 2, 40, "B", "B", "C"),
	}
	payments := []model.Payment{mustPayment(t, 1, "C", "A", 15)}

	s := Summarize([]string{"D"}, expenses, payments)

	assert.InDelta(t, 130, s.TotalExpenses, 0.001)
	assert.InDelta(t, 15, s.TotalPayments, 0.001)
	assert.Equal(t, 2, s.ExpenseCount)
	assert.Equal(t, 1, s.PaymentCount)
	require.Len(t, s.People, 4)

	// Sorted by share: C 50, B 50, A 30, D 0; ties by name.
	assert.Equal(t, "B", s.People[0].Name)
	assert.Equal(t, "C", s.People[1].Name)
	assert.Equal(t, "A", s.People[2].Name)
	assert.Equal(t, "D", s.People[3].Name)

	c := s.People[1]
	assert.InDelta(t, 50, c.Share, 0.001)
	assert.InDelta(t, 15, c.Sent, 0.001)
	assert.InDelta(t, -35, c.Net, 0.001)
	assert.InDelta(t, 0, s.People[3].Net, 0.001)
}
