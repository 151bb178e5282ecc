package core

// MonthlySummary aggregates the flow of money for a single calendar month.
type MonthlySummary struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}

// Balance is the month's income minus its expenses; negative when the month
// ran at a loss.
func (s MonthlySummary) Balance() Money {
	return Money{Cents: s.Income.Cents - s.Expense.Cents}
}
