package models

import (
	"fmt"
	"time"
)

// PercentScale tells how a goal's PercentageChange is read
type PercentScale string

const (
	// ScaleFraction uses PercentageChange as a multiplier as-is (0.1 = 10%)
	ScaleFraction PercentScale = "fraction"
	// ScalePercent divides PercentageChange by 100 (10 = 10%)
	ScalePercent PercentScale = "percent"
)

// ParsePercentScale validates a scale name
func ParsePercentScale(s string) (PercentScale, error) {
	switch PercentScale(s) {
	case ScaleFraction, ScalePercent:
		return PercentScale(s), nil
	}
	return "", fmt.Errorf("invalid percent scale %q: must be %q or %q", s, ScaleFraction, ScalePercent)
}

// Multiplier converts a percentage change into the factor applied to amounts
func (s PercentScale) Multiplier(percentageChange float64) float64 {
	if s == ScaleFraction {
		return percentageChange
	}
	return percentageChange / 100
}

// GoalAlertThreshold is the saved percentage at which a goal alert fires
const GoalAlertThreshold = 80.0

// Goal represents a savings goal
type Goal struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Name             string    `json:"name"`
	TargetAmount     float64   `json:"target_amount"`
	SavedAmount      float64   `json:"saved_amount"`
	TargetDate       time.Time `json:"target_date"`
	PercentageChange float64   `json:"percentage_change"`
	NotificationSent bool      `json:"notification_sent"`
}

// PercentSaved returns saved amount as a percentage of the target
func (g *Goal) PercentSaved() float64 {
	return g.SavedAmount / g.TargetAmount * 100
}

// GoalAdjustment is a direct income/expense change to a goal. Zero fields are skipped.
type GoalAdjustment struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// GoalPatch updates user editable goal fields
type GoalPatch struct {
	Name             *string    `json:"name,omitempty"`
	TargetAmount     *float64   `json:"target_amount,omitempty"`
	SavedAmount      *float64   `json:"saved_amount,omitempty"`
	TargetDate       *time.Time `json:"target_date,omitempty"`
	PercentageChange *float64   `json:"percentage_change,omitempty"`
}

// Apply overwrites the supplied fields of g
func (p GoalPatch) Apply(g *Goal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.SavedAmount != nil {
		g.SavedAmount = *p.SavedAmount
	}
	if p.TargetDate != nil {
		g.TargetDate = *p.TargetDate
	}
	if p.PercentageChange != nil {
		g.PercentageChange = *p.PercentageChange
	}
}
