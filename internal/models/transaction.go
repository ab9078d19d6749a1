package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransactionKind is either income or expense
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is a known kind
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// RecurrencePattern is the unit added to a recurring transaction's date
type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// Valid reports whether p is a known pattern
func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Next returns t advanced by one unit of the pattern. Monthly steps clamp to the
// last day of the target month (Jan 31 -> Feb 28).
func (p RecurrencePattern) Next(t time.Time) time.Time {
	switch p {
	case RecurDaily:
		return t.AddDate(0, 0, 1)
	case RecurWeekly:
		return t.AddDate(0, 0, 7)
	case RecurMonthly:
		next := t.AddDate(0, 1, 0)
		if next.Day() != t.Day() {
			// overflowed into the following month; step back to its day 0
			next = next.AddDate(0, 0, -next.Day())
		}
		return next
	}
	return t
}

// Recurrence describes an optionally repeating transaction
type Recurrence struct {
	IsRecurring bool              `json:"is_recurring"`
	Pattern     RecurrencePattern `json:"pattern,omitempty"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
}

// Transaction represents an income or expense entry
type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Kind            TransactionKind `json:"kind"`
	Amount          float64         `json:"amount"`   // original amount
	Currency        string          `json:"currency"` // original currency
	ConvertedAmount float64         `json:"converted_amount"`
	Category        string          `json:"category"`
	Tags            []string        `json:"tags"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	Recurrence      Recurrence      `json:"recurrence"`
}

// Month returns the year-month token of the occurrence date
func (t *Transaction) Month() string {
	return MonthToken(t.Date)
}

// HasAnyTag reports whether the transaction carries at least one of tags
func (t *Transaction) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// NewTransaction holds the caller supplied fields of a transaction create
type NewTransaction struct {
	Kind        TransactionKind `json:"kind"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Recurrence  Recurrence      `json:"recurrence"`
}

// ParseDate accepts an RFC3339 timestamp or a bare YYYY-MM-DD date, which is
// read as midnight UTC
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func (n *NewTransaction) UnmarshalJSON(data []byte) error {
	type Alias NewTransaction
	aux := struct {
		*Alias
		Date string `json:"date"`
	}{Alias: (*Alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		return nil
	}
	date, err := ParseDate(aux.Date)
	if err != nil {
		return err
	}
	n.Date = date
	return nil
}

// TransactionPatch carries the fields of a partial update. Nil means "leave as is".
type TransactionPatch struct {
	Kind            *TransactionKind `json:"kind,omitempty"`
	Amount          *float64         `json:"amount,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	ConvertedAmount *float64         `json:"converted_amount,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Tags            *[]string        `json:"tags,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Date            *time.Time       `json:"date,omitempty"`
	Recurrence      *Recurrence      `json:"recurrence,omitempty"`
}

func (p *TransactionPatch) UnmarshalJSON(data []byte) error {
	type Alias TransactionPatch
	aux := struct {
		*Alias
		Date *string `json:"date,omitempty"`
	}{Alias: (*Alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == nil {
		return nil
	}
	date, err := ParseDate(*aux.Date)
	if err != nil {
		return err
	}
	p.Date = &date
	return nil
}

// Apply overwrites the supplied fields of t
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Currency != nil {
		t.Currency = *p.Currency
	}
	if p.ConvertedAmount != nil {
		t.ConvertedAmount = *p.ConvertedAmount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Recurrence != nil {
		t.Recurrence = *p.Recurrence
	}
}

// TransactionFilter narrows a transaction search. Zero values do not constrain.
// From and To are inclusive.
type TransactionFilter struct {
	UserID        int64
	Kind          TransactionKind
	Category      string
	From          time.Time
	To            time.Time
	AnyTags       []string
	RecurringOnly bool
}

// Match reports whether t satisfies the filter
func (f TransactionFilter) Match(t *Transaction) bool {
	if f.UserID != 0 && t.UserID != f.UserID {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if len(f.AnyTags) > 0 && !t.HasAnyTag(f.AnyTags) {
		return false
	}
	if f.RecurringOnly && !t.Recurrence.IsRecurring {
		return false
	}
	return true
}

// MonthToken formats t as a YYYY-MM budget key
func MonthToken(t time.Time) string {
	return t.UTC().Format("2006-01")
}
