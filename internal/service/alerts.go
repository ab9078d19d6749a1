package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/sirupsen/logrus"
)

// BudgetAlertThreshold is the spent percentage at which a budget alert fires
const BudgetAlertThreshold = 80.0

// Reminder lookahead for recurring transactions, relative to the sweep time
const (
	reminderWindowStart = 2 * 24 * time.Hour
	reminderWindowEnd   = 3 * 24 * time.Hour
)

// Suppressor can veto a notification before it is stored, e.g. to
// deduplicate repeated budget alerts. A nil Suppressor lets everything through.
type Suppressor interface {
	Suppress(ctx context.Context, n *models.Notification) bool
}

// AlertEngine derives notifications from goals, budgets and recurring transactions.
// Sweeps are global and take no lock; concurrent sweeps may notify twice.
type AlertEngine struct {
	goals         GoalStore
	budgets       BudgetStore
	txs           TransactionStore
	notifications NotificationStore
	suppressor    Suppressor
	log           *logrus.Logger
	now           func() time.Time
}

// NewAlertEngine initializes an alert engine
func NewAlertEngine(goals GoalStore, budgets BudgetStore, txs TransactionStore, notifications NotificationStore, log *logrus.Logger) *AlertEngine {
	return &AlertEngine{
		goals:         goals,
		budgets:       budgets,
		txs:           txs,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

// SetSuppressor installs a notification filter
func (e *AlertEngine) SetSuppressor(s Suppressor) {
	e.suppressor = s
}

// RunSweep runs the goal, budget and recurring passes in order. A pass that
// cannot load its collection is logged and the sweep moves on; the joined
// errors are returned at the end.
func (e *AlertEngine) RunSweep(ctx context.Context) error {
	var errs []error
	for _, pass := range []struct {
		name string
		run  func(context.Context) error
	}{
		{"goals", e.CheckGoals},
		{"budgets", e.CheckBudgets},
		{"recurring", e.CheckRecurring},
	} {
		if err := pass.run(ctx); err != nil {
			e.log.Errorf("Alert pass %s failed: %v", pass.name, err)
			errs = append(errs, fmt.Errorf("%s pass: %w", pass.name, err))
		}
	}
	return errors.Join(errs...)
}

// CheckGoals alerts once per goal when its saved amount reaches 80% of target.
// The flag is claimed before the alert is stored, so a failed store loses
// that alert rather than repeating it.
func (e *AlertEngine) CheckGoals(ctx context.Context) error {
	goals, err := e.goals.AllGoals(ctx)
	if err != nil {
		return persistenceError("list goals", err)
	}
	for i := range goals {
		goal := &goals[i]
		if goal.NotificationSent {
			continue
		}
		if goal.TargetAmount <= 0 {
			e.log.WithField("goal_id", goal.ID).Warn("Skipping goal with non-positive target")
			continue
		}
		if goal.PercentSaved() < models.GoalAlertThreshold {
			continue
		}
		// only the flag is written so concurrent savings updates survive
		claimed, err := e.goals.MarkGoalNotified(ctx, goal.ID)
		if err != nil {
			e.log.WithField("goal_id", goal.ID).Errorf("Failed to mark goal as notified: %v", err)
			continue
		}
		if !claimed {
			continue
		}
		e.log.Infof("Alert: Goal %q for user %d has reached 80%% of the target!", goal.Name, goal.UserID)
		e.emit(ctx, goal.UserID, fmt.Sprintf("Goal %q has reached 80%% of the target!", goal.Name), models.NotificationAlert)
	}
	return nil
}

// CheckBudgets alerts for every budget whose current month expenses reach 80%
// of its cap, using the current UTC month. Spending is recomputed from transactions on each sweep and no
// flag is kept, so the alert repeats while the condition holds.
func (e *AlertEngine) CheckBudgets(ctx context.Context) error {
	budgets, err := e.budgets.AllBudgets(ctx)
	if err != nil {
		return persistenceError("list budgets", err)
	}
	now := e.now().UTC()
	from, last := MonthWindow(int(now.Month()), now.Year())
	to := last.AddDate(0, 0, 1).Add(-time.Nanosecond)

	for i := range budgets {
		budget := &budgets[i]
		if budget.Amount <= 0 {
			continue
		}
		txs, err := e.txs.FindTransactions(ctx, models.TransactionFilter{
			UserID:   budget.UserID,
			Kind:     models.KindExpense,
			Category: budget.Category,
			From:     from,
			To:       to,
		})
		if err != nil {
			e.log.WithField("budget_id", budget.ID).Errorf("Failed to load budget transactions: %v", err)
			continue
		}
		var spent float64
		for _, t := range txs {
			spent += t.Amount
		}
		if budget.PercentSpent(spent) >= BudgetAlertThreshold {
			e.emit(ctx, budget.UserID, fmt.Sprintf("You have spent 80%% of your budget for category: %s", budget.Category), models.NotificationAlert)
		}
	}
	return nil
}

// CheckRecurring reminds users of recurring transactions whose next occurrence
// falls strictly between two and three days from now.
func (e *AlertEngine) CheckRecurring(ctx context.Context) error {
	txs, err := e.txs.FindTransactions(ctx, models.TransactionFilter{RecurringOnly: true})
	if err != nil {
		return persistenceError("list recurring transactions", err)
	}
	now := e.now()
	windowStart := now.Add(reminderWindowStart)
	windowEnd := now.Add(reminderWindowEnd)

	for i := range txs {
		tx := &txs[i]
		if !tx.Recurrence.Pattern.Valid() {
			e.log.WithField("transaction_id", tx.ID).Warnf("Unknown recurrence pattern %q", tx.Recurrence.Pattern)
			continue
		}
		next := tx.Recurrence.Pattern.Next(tx.Date)
		if end := tx.Recurrence.EndDate; end != nil && next.After(*end) {
			continue
		}
		if next.After(windowStart) && next.Before(windowEnd) {
			e.emit(ctx, tx.UserID, fmt.Sprintf("You have a recurring transaction due in 2 days: %s", tx.Description), models.NotificationReminder)
		}
	}
	return nil
}

// emit stores a notification; failures are logged and swallowed
func (e *AlertEngine) emit(ctx context.Context, userID int64, message string, kind models.NotificationKind) {
	n := &models.Notification{
		UserID:    userID,
		Message:   message,
		Kind:      kind,
		CreatedAt: e.now(),
	}
	if e.suppressor != nil && e.suppressor.Suppress(ctx, n) {
		return
	}
	if err := e.notifications.CreateNotification(ctx, n); err != nil {
		e.log.Errorf("Error creating notification for user %d: %v", userID, err)
		return
	}
	e.log.Infof("Notification created for user %d: %s", userID, message)
}
