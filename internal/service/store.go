package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
)

// UserStore persists users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// TransactionStore persists transactions. FindTransactions orders by date
// ascending, ListTransactions by date descending.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	FindTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
}

// BudgetStore persists budgets
type BudgetStore interface {
	CreateBudget(ctx context.Context, b *models.Budget) error
	GetBudget(ctx context.Context, id int64) (*models.Budget, error)
	FindBudget(ctx context.Context, userID int64, category, month string) (*models.Budget, error)
	// UpdateBudget saves everything but spending and refreshes b's spending
	UpdateBudget(ctx context.Context, b *models.Budget) error
	// AddBudgetSpending shifts current spending by delta in place and
	// returns the new total
	AddBudgetSpending(ctx context.Context, id int64, delta float64) (float64, error)
	DeleteBudget(ctx context.Context, id int64) error
	ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error)
	AllBudgets(ctx context.Context) ([]models.Budget, error)
}

// GoalStore persists goals
type GoalStore interface {
	CreateGoal(ctx context.Context, g *models.Goal) error
	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	// UpdateGoal saves everything but the notification flag
	UpdateGoal(ctx context.Context, g *models.Goal) error
	AddGoalSavings(ctx context.Context, id int64, delta float64) error
	// MarkGoalNotified sets the notification flag and reports whether this
	// call was the one that set it
	MarkGoalNotified(ctx context.Context, id int64) (bool, error)
	DeleteGoal(ctx context.Context, id int64) error
	ListGoals(ctx context.Context, userID int64) ([]models.Goal, error)
	AllGoals(ctx context.Context) ([]models.Goal, error)
}

// ReportStore persists report snapshots
type ReportStore interface {
	CreateReport(ctx context.Context, r *models.Report) error
	ListReports(ctx context.Context, userID int64) ([]models.Report, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID int64, ids []int64) (int64, error)
}

// Store is everything the services need from persistence
type Store interface {
	UserStore
	TransactionStore
	BudgetStore
	GoalStore
	ReportStore
	NotificationStore
}
