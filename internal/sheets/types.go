package sheets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/settle-up/internal/model"
	"github.com/Veraticus/settle-up/internal/service"
)

// Tab names, in the order they appear in the spreadsheet.
const (
	TabSummary     = "Summary"
	TabBalances    = "Balances"
	TabSettlements = "Settlements"
	TabExpenses    = "Expenses"
	TabPayments    = "Payments"
)

// Tabs lists every tab the writer maintains.
var Tabs = []string{TabSummary, TabBalances, TabSettlements, TabExpenses, TabPayments}

// PersonRow is one person's line on the Summary tab.
type PersonRow struct {
	Name     string
	Paid     decimal.Decimal
	Share    decimal.Decimal
	Sent     decimal.Decimal
	Received decimal.Decimal
}

// BalanceRow is one line of the Balances tab.
type BalanceRow struct {
	Name    string
	Balance decimal.Decimal
}

// SettlementRow is one line of the Settlements tab.
type SettlementRow struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// ExpenseRow is one line of the Expenses tab.
type ExpenseRow struct {
	Date        string
	Description string
	PaidBy      string
	Involved    string
	Amount      decimal.Decimal
	Split       decimal.Decimal
	ID          int
}

// PaymentRow is one line of the Payments tab.
type PaymentRow struct {
	Date        string
	Description string
	Payer       string
	Payee       string
	Amount      decimal.Decimal
	ID          int
}

// TabData holds everything written to the spreadsheet.
type TabData struct {
	GeneratedAt   string
	TotalExpenses decimal.Decimal
	TotalPayments decimal.Decimal
	People        []PersonRow
	Balances      []BalanceRow
	Settlements   []SettlementRow
	Expenses      []ExpenseRow
	Payments      []PaymentRow
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// BuildTabData converts a report into spreadsheet rows.
func BuildTabData(report *service.Report) TabData {
	data := TabData{
		GeneratedAt:   model.FormatTimestamp(report.GeneratedAt),
		TotalExpenses: cents(report.Summary.TotalExpenses),
		TotalPayments: cents(report.Summary.TotalPayments),
	}

	for _, ps := range report.Summary.People {
		data.People = append(data.People, PersonRow{
			Name:     ps.Name,
			Paid:     cents(ps.Paid),
			Share:    cents(ps.Share),
			Sent:     cents(ps.Sent),
			Received: cents(ps.Received),
		})
	}

	names := make([]string, 0, len(report.Balances))
	for name := range report.Balances {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		data.Balances = append(data.Balances, BalanceRow{Name: name, Balance: cents(report.Balances[name])})
	}

	for _, s := range report.Settlements {
		data.Settlements = append(data.Settlements, SettlementRow{From: s.From, To: s.To, Amount: cents(s.Amount)})
	}

	for _, exp := range report.Expenses {
		data.Expenses = append(data.Expenses, ExpenseRow{
			ID:          exp.ID,
			Date:        model.FormatTimestamp(exp.CreatedAt),
			Description: exp.Description,
			PaidBy:      exp.PaidBy,
			Involved:    strings.Join(exp.InvolvedPeople, ", "),
			Amount:      cents(exp.Amount),
			Split:       cents(exp.SplitAmount),
		})
	}

	for _, p := range report.Payments {
		data.Payments = append(data.Payments, PaymentRow{
			ID:          p.ID,
			Date:        model.FormatTimestamp(p.CreatedAt),
			Description: p.Description,
			Payer:       p.Payer,
			Payee:       p.Payee,
			Amount:      cents(p.Amount),
		})
	}

	return data
}

// money renders an amount as a number the sheet can format and sum.
func money(d decimal.Decimal) any {
	return d.InexactFloat64()
}

// Values returns the cell values for a tab, header row first.
func (d TabData) Values(tab string) ([][]any, error) {
	switch tab {
	case TabSummary:
		values := [][]any{
			{"Shared Expense Report", d.GeneratedAt},
			{},
			{"Total Expenses", money(d.TotalExpenses)},
			{"Total Direct Payments", money(d.TotalPayments)},
			{},
			{"Person", "Paid", "Share", "Sent", "Received"},
		}
		for _, r := range d.People {
			values = append(values, []any{r.Name, money(r.Paid), money(r.Share), money(r.Sent), money(r.Received)})
		}
		return values, nil

	case TabBalances:
		values := [][]any{{"Person", "Net Balance"}}
		for _, r := range d.Balances {
			values = append(values, []any{r.Name, money(r.Balance)})
		}
		return values, nil

	case TabSettlements:
		values := [][]any{{"From", "To", "Amount"}}
		for _, r := range d.Settlements {
			values = append(values, []any{r.From, r.To, money(r.Amount)})
		}
		return values, nil

	case TabExpenses:
		values := [][]any{{"ID", "Date", "Description", "Paid By", "Involved", "Amount", "Each"}}
		for _, r := range d.Expenses {
			values = append(values, []any{r.ID, r.Date, r.Description, r.PaidBy, r.Involved, money(r.Amount), money(r.Split)})
		}
		return values, nil

	case TabPayments:
		values := [][]any{{"ID", "Date", "Description", "From", "To", "Amount"}}
		for _, r := range d.Payments {
			values = append(values, []any{r.ID, r.Date, r.Description, r.Payer, r.Payee, money(r.Amount)})
		}
		return values, nil
	}

	return nil, fmt.Errorf("unknown tab %q", tab)
}

// currencyColumns lists the zero-based columns holding amounts on each tab.
var currencyColumns = map[string][]int64{
	TabSummary:     {1, 2, 3, 4},
	TabBalances:    {1},
	TabSettlements: {2},
	TabExpenses:    {5, 6},
	TabPayments:    {5},
}
