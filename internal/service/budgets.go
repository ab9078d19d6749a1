package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// BudgetTracker maintains budgets and their accumulated spending
type BudgetTracker struct {
	store BudgetStore
	log   *logrus.Logger
}

// NewBudgetTracker initializes a budget tracker
func NewBudgetTracker(store BudgetStore, log *logrus.Logger) *BudgetTracker {
	return &BudgetTracker{store: store, log: log}
}

// Increment adds amount to the matching budget's spending. Spending outside a
// defined budget is not tracked.
func (t *BudgetTracker) Increment(ctx context.Context, userID int64, category, month string, amount float64) error {
	return t.adjust(ctx, userID, category, month, amount)
}

// Decrement subtracts amount from the matching budget's spending
func (t *BudgetTracker) Decrement(ctx context.Context, userID int64, category, month string, amount float64) error {
	return t.adjust(ctx, userID, category, month, -amount)
}

func (t *BudgetTracker) adjust(ctx context.Context, userID int64, category, month string, delta float64) error {
	budget, err := t.store.FindBudget(ctx, userID, category, month)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return persistenceError("find budget", err)
	}
	spending, err := t.store.AddBudgetSpending(ctx, budget.ID, delta)
	if err != nil {
		return persistenceError("update budget spending", err)
	}
	t.log.WithFields(logrus.Fields{"budget_id": budget.ID, "user_id": userID}).
		Infof("Budget spending for %s %s is now %.2f", category, month, spending)
	return nil
}

// OnExpenseCreated books a new expense. Creation counts the converted amount.
func (t *BudgetTracker) OnExpenseCreated(ctx context.Context, tx *models.Transaction) error {
	return t.Increment(ctx, tx.UserID, tx.Category, tx.Month(), tx.ConvertedAmount)
}

// OnExpenseDeleted reverses a deleted expense. Deletion takes back the original
// amount, not the converted one; the two only agree for same-currency entries.
func (t *BudgetTracker) OnExpenseDeleted(ctx context.Context, tx *models.Transaction) error {
	return t.Decrement(ctx, tx.UserID, tx.Category, tx.Month(), tx.Amount)
}

func validateBudget(b *models.Budget) error {
	if b.Category == "" {
		return validationError("category is required")
	}
	if b.Amount <= 0 {
		return validationError("amount must be positive")
	}
	if _, err := models.ParseMonthToken(b.Month); err != nil {
		return validationError("%v", err)
	}
	return nil
}

// CreateBudget creates a budget for userID with zero spending
func (t *BudgetTracker) CreateBudget(ctx context.Context, userID int64, category string, amount float64, month string) (*models.Budget, error) {
	budget := &models.Budget{UserID: userID, Category: category, Amount: amount, Month: month}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if err := t.store.CreateBudget(ctx, budget); err != nil {
		return nil, persistenceError("create budget", err)
	}
	t.log.Infof("Budget created for user %d: %s, %.2f, Month: %s", userID, category, amount, month)
	return budget, nil
}

// ListBudgets returns the user's budgets
func (t *BudgetTracker) ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	budgets, err := t.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, persistenceError("list budgets", err)
	}
	return budgets, nil
}

// UpdateBudget edits category, cap and month. Accumulated spending is kept.
func (t *BudgetTracker) UpdateBudget(ctx context.Context, id, userID int64, category string, amount float64, month string) (*models.Budget, error) {
	budget, err := t.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if category != "" {
		budget.Category = category
	}
	if amount != 0 {
		budget.Amount = amount
	}
	if month != "" {
		budget.Month = month
	}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if err := t.store.UpdateBudget(ctx, budget); err != nil {
		return nil, persistenceError("update budget", err)
	}
	t.log.Infof("Budget updated for user %d: %s, %.2f, Month: %s", userID, budget.Category, budget.Amount, budget.Month)
	return budget, nil
}

// DeleteBudget removes one of the user's budgets
func (t *BudgetTracker) DeleteBudget(ctx context.Context, id, userID int64) error {
	if _, err := t.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := t.store.DeleteBudget(ctx, id); err != nil {
		return persistenceError("delete budget", err)
	}
	t.log.Infof("Budget deleted for user %d: %d", userID, id)
	return nil
}

func (t *BudgetTracker) owned(ctx context.Context, id, userID int64) (*models.Budget, error) {
	budget, err := t.store.GetBudget(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("budget %d: %w", id, ErrNotFoundOrUnauthorized)
	}
	if err != nil {
		return nil, persistenceError("find budget", err)
	}
	if budget.UserID != userID {
		return nil, fmt.Errorf("budget %d: %w", id, ErrNotFoundOrUnauthorized)
	}
	return budget, nil
}
