package model

// Balances maps a person to their net amount.
// Positive means the person is owed money, negative means they owe money.
type Balances map[string]float64

// Settlement is a suggested transfer from a debtor to a creditor.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}
