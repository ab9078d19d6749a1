package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// GoalTracker maintains goals and their saved amounts.
//
// The batch path (income transactions) and the direct path (explicit
// modify requests) read PercentageChange with their own scales.
type GoalTracker struct {
	store           GoalStore
	log             *logrus.Logger
	allocationScale models.PercentScale
	directScale     models.PercentScale
}

// NewGoalTracker initializes a goal tracker
func NewGoalTracker(store GoalStore, log *logrus.Logger, allocationScale, directScale models.PercentScale) *GoalTracker {
	return &GoalTracker{store: store, log: log, allocationScale: allocationScale, directScale: directScale}
}

// ApplyIncome raises the saved amount by the goal's share of income
func ApplyIncome(goal *models.Goal, income float64, scale models.PercentScale) {
	goal.SavedAmount += scale.Multiplier(goal.PercentageChange) * income
}

// ApplyExpense lowers the saved amount by the goal's share of expense
func ApplyExpense(goal *models.Goal, expense float64, scale models.PercentScale) {
	goal.SavedAmount -= scale.Multiplier(goal.PercentageChange) * expense
}

// AllocateIncome credits every goal of userID with a positive percentage change.
// A failing goal is logged and skipped; the number of updated goals is returned.
func (t *GoalTracker) AllocateIncome(ctx context.Context, userID int64, amount float64) (int, error) {
	goals, err := t.store.ListGoals(ctx, userID)
	if err != nil {
		return 0, persistenceError("list goals", err)
	}
	updated := 0
	for i := range goals {
		goal := &goals[i]
		if goal.PercentageChange <= 0 {
			continue
		}
		share := t.allocationScale.Multiplier(goal.PercentageChange) * amount
		if err := t.store.AddGoalSavings(ctx, goal.ID, share); err != nil {
			t.log.WithField("goal_id", goal.ID).Errorf("Failed to allocate income to goal: %v", err)
			continue
		}
		updated++
	}
	return updated, nil
}

// DirectModify applies a non-zero income and/or expense to one goal
func (t *GoalTracker) DirectModify(ctx context.Context, goalID, userID int64, adj models.GoalAdjustment) (*models.Goal, error) {
	goal, err := t.owned(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if adj.Income != 0 {
		ApplyIncome(goal, adj.Income, t.directScale)
	}
	if adj.Expense != 0 {
		ApplyExpense(goal, adj.Expense, t.directScale)
	}
	if err := t.store.UpdateGoal(ctx, goal); err != nil {
		return nil, persistenceError("update goal", err)
	}
	t.log.Infof("Updated savedAmount for user %d: %s", userID, goal.Name)
	return goal, nil
}

func validateGoal(g *models.Goal) error {
	if g.Name == "" {
		return validationError("goal name is required")
	}
	if g.TargetAmount <= 0 {
		return validationError("target amount must be positive")
	}
	if g.TargetDate.IsZero() {
		return validationError("target date is required")
	}
	return nil
}

// CreateGoal creates a goal for userID
func (t *GoalTracker) CreateGoal(ctx context.Context, userID int64, name string, target, saved float64, targetDate time.Time, percentageChange float64) (*models.Goal, error) {
	goal := &models.Goal{
		UserID:           userID,
		Name:             name,
		TargetAmount:     target,
		SavedAmount:      saved,
		TargetDate:       targetDate,
		PercentageChange: percentageChange,
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	if err := t.store.CreateGoal(ctx, goal); err != nil {
		return nil, persistenceError("create goal", err)
	}
	t.log.Infof("Goal created for user %d: %s, Target: %.2f", userID, name, target)
	return goal, nil
}

// ListGoals returns the user's goals
func (t *GoalTracker) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	goals, err := t.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, persistenceError("list goals", err)
	}
	return goals, nil
}

// UpdateGoal overwrites supplied goal fields. The alert flag is not touched.
func (t *GoalTracker) UpdateGoal(ctx context.Context, goalID, userID int64, patch models.GoalPatch) (*models.Goal, error) {
	goal, err := t.owned(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	patch.Apply(goal)
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	if err := t.store.UpdateGoal(ctx, goal); err != nil {
		return nil, persistenceError("update goal", err)
	}
	t.log.Infof("Goal updated for user %d: %s, Target: %.2f", userID, goal.Name, goal.TargetAmount)
	return goal, nil
}

// DeleteGoal removes one of the user's goals
func (t *GoalTracker) DeleteGoal(ctx context.Context, goalID, userID int64) error {
	if _, err := t.owned(ctx, goalID, userID); err != nil {
		return err
	}
	if err := t.store.DeleteGoal(ctx, goalID); err != nil {
		return persistenceError("delete goal", err)
	}
	t.log.Infof("Goal deleted for user %d: %d", userID, goalID)
	return nil
}

func (t *GoalTracker) owned(ctx context.Context, goalID, userID int64) (*models.Goal, error) {
	goal, err := t.store.GetGoal(ctx, goalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("goal %d: %w", goalID, ErrGoalNotFound)
	}
	if err != nil {
		return nil, persistenceError("find goal", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal %d: %w", goalID, ErrGoalNotFound)
	}
	return goal, nil
}
