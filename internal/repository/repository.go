package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO finance.users (name, email, password_hash, role, preferred_currency, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.PreferredCurrency).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password_hash, role, preferred_currency, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.PreferredCurrency, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by id
func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM finance.users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM finance.users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// UpdateUser saves profile fields of a user
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE finance.users
		SET name = $1, email = $2, password_hash = $3, role = $4, preferred_currency = $5
		WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.PreferredCurrency, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectRow(res)
}

const transactionColumns = `id, user_id, kind, amount, currency, converted_amount, category, tags,
	description, occurred_at, is_recurring, recurrence_pattern, recurrence_end`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var (
		tags    pq.StringArray
		pattern string
		end     sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.Currency, &t.ConvertedAmount, &t.Category, &tags,
		&t.Description, &t.Date, &t.Recurrence.IsRecurring, &pattern, &end)
	if err != nil {
		return nil, err
	}
	t.Tags = []string(tags)
	t.Recurrence.Pattern = models.RecurrencePattern(pattern)
	if end.Valid {
		endDate := end.Time
		t.Recurrence.EndDate = &endDate
	}
	return t, nil
}

// tagsArray never yields NULL; the column is NOT NULL
func tagsArray(tags []string) any {
	if tags == nil {
		tags = []string{}
	}
	return pq.Array(tags)
}

func recurrenceEnd(rec models.Recurrence) sql.NullTime {
	if rec.EndDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *rec.EndDate, Valid: true}
}

// CreateTransaction inserts a transaction and fills its id
func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO finance.transactions (user_id, kind, amount, currency, converted_amount, category, tags,
			description, occurred_at, is_recurring, recurrence_pattern, recurrence_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, t.UserID, t.Kind, t.Amount, t.Currency, t.ConvertedAmount, t.Category,
		tagsArray(t.Tags), t.Description, t.Date, t.Recurrence.IsRecurring, string(t.Recurrence.Pattern),
		recurrenceEnd(t.Recurrence)).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by id
func (r *Repository) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM finance.transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites all mutable columns of a transaction
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE finance.transactions
		SET kind = $1, amount = $2, currency = $3, converted_amount = $4, category = $5, tags = $6,
			description = $7, occurred_at = $8, is_recurring = $9, recurrence_pattern = $10, recurrence_end = $11
		WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query, t.Kind, t.Amount, t.Currency, t.ConvertedAmount, t.Category,
		tagsArray(t.Tags), t.Description, t.Date, t.Recurrence.IsRecurring, string(t.Recurrence.Pattern),
		recurrenceEnd(t.Recurrence), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectRow(res)
}

// DeleteTransaction removes a transaction
func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM finance.transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectRow(res)
}

// ListTransactions returns the user's transactions, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM finance.transactions
		WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC`
	return r.queryTransactions(ctx, query, userID)
}

// FindTransactions returns transactions matching filter, oldest first
func (r *Repository) FindTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != 0 {
		add("user_id = $%d", f.UserID)
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if !f.From.IsZero() {
		add("occurred_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("occurred_at <= $%d", f.To)
	}
	if len(f.AnyTags) > 0 {
		add("tags && $%d", pq.Array(f.AnyTags))
	}
	if f.RecurringOnly {
		conds = append(conds, "is_recurring")
	}

	query := `SELECT ` + transactionColumns + ` FROM finance.transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at, id"
	return r.queryTransactions(ctx, query, args...)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return out, nil
}

const budgetColumns = `id, user_id, category, amount, month, current_spending`

func scanBudget(row rowScanner) (*models.Budget, error) {
	b := &models.Budget{}
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Month, &b.CurrentSpending); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBudget inserts a budget
func (r *Repository) CreateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		INSERT INTO finance.budgets (user_id, category, amount, month, current_spending)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, b.UserID, b.Category, b.Amount, b.Month, b.CurrentSpending).Scan(&b.ID); err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by id
func (r *Repository) GetBudget(ctx context.Context, id int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM finance.budgets WHERE id = $1`
	return r.oneBudget(ctx, query, id)
}

// FindBudget retrieves the budget for a user, category and month
func (r *Repository) FindBudget(ctx context.Context, userID int64, category, month string) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM finance.budgets
		WHERE user_id = $1 AND category = $2 AND month = $3 ORDER BY id LIMIT 1`
	return r.oneBudget(ctx, query, userID, category, month)
}

func (r *Repository) oneBudget(ctx context.Context, query string, args ...any) (*models.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return b, nil
}

// UpdateBudget saves category, cap and month. Spending only moves through
// AddBudgetSpending; the stored value is read back into b.
func (r *Repository) UpdateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		UPDATE finance.budgets SET category = $1, amount = $2, month = $3
		WHERE id = $4
		RETURNING current_spending`
	err := r.db.QueryRowContext(ctx, query, b.Category, b.Amount, b.Month, b.ID).Scan(&b.CurrentSpending)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

// AddBudgetSpending shifts a budget's spending without touching its other fields
func (r *Repository) AddBudgetSpending(ctx context.Context, id int64, delta float64) (float64, error) {
	query := `
		UPDATE finance.budgets SET current_spending = current_spending + $1
		WHERE id = $2
		RETURNING current_spending`
	var spending float64
	err := r.db.QueryRowContext(ctx, query, delta, id).Scan(&spending)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update budget spending: %w", err)
	}
	return spending, nil
}

// DeleteBudget removes a budget
func (r *Repository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM finance.budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return expectRow(res)
}

// ListBudgets returns a user's budgets
func (r *Repository) ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM finance.budgets WHERE user_id = $1 ORDER BY id`
	return r.queryBudgets(ctx, query, userID)
}

// AllBudgets returns every budget of every user
func (r *Repository) AllBudgets(ctx context.Context) ([]models.Budget, error) {
	return r.queryBudgets(ctx, `SELECT `+budgetColumns+` FROM finance.budgets ORDER BY id`)
}

func (r *Repository) queryBudgets(ctx context.Context, query string, args ...any) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var out []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

const goalColumns = `id, user_id, name, target_amount, saved_amount, target_date, percentage_change, notification_sent`

func scanGoal(row rowScanner) (*models.Goal, error) {
	g := &models.Goal{}
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.TargetDate, &g.PercentageChange, &g.NotificationSent)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGoal inserts a goal
func (r *Repository) CreateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO finance.goals (user_id, name, target_amount, saved_amount, target_date, percentage_change, notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, g.UserID, g.Name, g.TargetAmount, g.SavedAmount, g.TargetDate,
		g.PercentageChange, g.NotificationSent).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by id
func (r *Repository) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM finance.goals WHERE id = $1`
	g, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}
	return g, nil
}

// UpdateGoal saves a goal's editable fields. notification_sent is only set by
// MarkGoalNotified and is read back into g.
func (r *Repository) UpdateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		UPDATE finance.goals
		SET name = $1, target_amount = $2, saved_amount = $3, target_date = $4, percentage_change = $5
		WHERE id = $6
		RETURNING notification_sent`
	err := r.db.QueryRowContext(ctx, query, g.Name, g.TargetAmount, g.SavedAmount, g.TargetDate, g.PercentageChange,
		g.ID).Scan(&g.NotificationSent)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// AddGoalSavings shifts a goal's saved amount in place
func (r *Repository) AddGoalSavings(ctx context.Context, id int64, delta float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE finance.goals SET saved_amount = saved_amount + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to update goal savings: %w", err)
	}
	return expectRow(res)
}

// MarkGoalNotified sets notification_sent unless another caller already did
func (r *Repository) MarkGoalNotified(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE finance.goals SET notification_sent = true WHERE id = $1 AND NOT notification_sent`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark goal notified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark goal notified: %w", err)
	}
	return n == 1, nil
}

// DeleteGoal removes a goal
func (r *Repository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM finance.goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return expectRow(res)
}

// ListGoals returns a user's goals
func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	return r.queryGoals(ctx, `SELECT `+goalColumns+` FROM finance.goals WHERE user_id = $1 ORDER BY id`, userID)
}

// AllGoals returns every goal of every user
func (r *Repository) AllGoals(ctx context.Context) ([]models.Goal, error) {
	return r.queryGoals(ctx, `SELECT `+goalColumns+` FROM finance.goals ORDER BY id`)
}

func (r *Repository) queryGoals(ctx context.Context, query string, args ...any) ([]models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var out []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// CreateReport stores a report snapshot
func (r *Repository) CreateReport(ctx context.Context, rep *models.Report) error {
	categories, err := json.Marshal(rep.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode report categories: %w", err)
	}
	query := `
		INSERT INTO finance.reports (user_id, start_date, end_date, total_income, total_expense, categories, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, rep.UserID, rep.StartDate, rep.EndDate, rep.TotalIncome, rep.TotalExpense, categories).
		Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ListReports returns a user's report snapshots, newest first
func (r *Repository) ListReports(ctx context.Context, userID int64) ([]models.Report, error) {
	query := `
		SELECT id, user_id, start_date, end_date, total_income, total_expense, categories, created_at
		FROM finance.reports WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var (
			rep        models.Report
			categories []byte
		)
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.StartDate, &rep.EndDate, &rep.TotalIncome, &rep.TotalExpense,
			&categories, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if err := json.Unmarshal(categories, &rep.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode report categories: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// CreateNotification stores a notification
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO finance.notifications (user_id, message, kind, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, n.UserID, n.Message, n.Kind, n.CreatedAt, n.IsRead).Scan(&n.ID); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, optionally only unread ones
func (r *Repository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, user_id, message, kind, created_at, is_read FROM finance.notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Kind, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsRead flags the user's notifications with the given ids as read
func (r *Repository) MarkNotificationsRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	query := `UPDATE finance.notifications SET is_read = TRUE WHERE user_id = $1 AND id = ANY($2)`
	res, err := r.db.ExecContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count updated notifications: %w", err)
	}
	return n, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
