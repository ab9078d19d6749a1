package models

import "time"

// CategoryTotal is one line of a report breakdown
type CategoryTotal struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// Report is an immutable monthly summary snapshot
type Report struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	TotalIncome  float64         `json:"total_income"`
	TotalExpense float64         `json:"total_expense"`
	Categories   []CategoryTotal `json:"categories"`
	CreatedAt    time.Time       `json:"created_at"`
}
