package models

import (
	"fmt"
	"time"
)

// Budget caps spending for one category in one month
type Budget struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"user_id"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"` // monthly cap
	Month           string  `json:"month"`  // YYYY-MM
	CurrentSpending float64 `json:"current_spending"`
}

// PercentSpent returns spent as a percentage of the budget cap
func (b *Budget) PercentSpent(spent float64) float64 {
	return spent / b.Amount * 100
}

// ParseMonthToken validates a YYYY-MM token and returns the first instant of that month
func ParseMonthToken(token string) (time.Time, error) {
	t, err := time.Parse("2006-01", token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", token)
	}
	return t, nil
}
