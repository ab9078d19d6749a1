// Package memory is an in-process store with the same contract as the
// PostgreSQL repository. It backs tests and DATA_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	users         map[int64]models.User
	transactions  map[int64]models.Transaction
	budgets       map[int64]models.Budget
	goals         map[int64]models.Goal
	reports       map[int64]models.Report
	notifications map[int64]models.Notification
}

func New() *Store {
	return &Store{
		users:         map[int64]models.User{},
		transactions:  map[int64]models.Transaction{},
		budgets:       map[int64]models.Budget{},
		goals:         map[int64]models.Goal{},
		reports:       map[int64]models.Report{},
		notifications: map[int64]models.Notification{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

func (s *Store) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.transactions[t.ID] = cloneTransaction(*t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTransaction(t)
	return &t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return repository.ErrNotFound
	}
	s.transactions[t.ID] = cloneTransaction(*t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// ListTransactions returns the user's transactions, newest first
func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	out, err := s.FindTransactions(ctx, models.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// FindTransactions returns matches ordered by date then id
func (s *Store) FindTransactions(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if f.Match(&t) {
			out = append(out, cloneTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Store) FindBudget(_ context.Context, userID int64, category, month string) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.Category == category && b.Month == month {
			if found == nil || b.ID < found.ID {
				b := b
				found = &b
			}
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

// UpdateBudget keeps the stored spending and copies it back into b
func (s *Store) UpdateBudget(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.budgets[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	b.CurrentSpending = current.CurrentSpending
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) AddBudgetSpending(_ context.Context, id int64, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	b.CurrentSpending += delta
	s.budgets[id] = b
	return b.CurrentSpending, nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, userID int64) ([]models.Budget, error) {
	return s.budgetsWhere(func(b models.Budget) bool { return b.UserID == userID }), nil
}

func (s *Store) AllBudgets(_ context.Context) ([]models.Budget, error) {
	return s.budgetsWhere(func(models.Budget) bool { return true }), nil
}

func (s *Store) budgetsWhere(keep func(models.Budget) bool) []models.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Budget
	for _, b := range s.budgets {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateGoal(_ context.Context, g *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

// UpdateGoal keeps the stored notification flag and copies it back into g
func (s *Store) UpdateGoal(_ context.Context, g *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.goals[g.ID]
	if !ok {
		return repository.ErrNotFound
	}
	g.NotificationSent = current.NotificationSent
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) AddGoalSavings(_ context.Context, id int64, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.SavedAmount += delta
	s.goals[id] = g
	return nil
}

func (s *Store) MarkGoalNotified(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if g.NotificationSent {
		return false, nil
	}
	g.NotificationSent = true
	s.goals[id] = g
	return true, nil
}

func (s *Store) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID int64) ([]models.Goal, error) {
	return s.goalsWhere(func(g models.Goal) bool { return g.UserID == userID }), nil
}

func (s *Store) AllGoals(_ context.Context) ([]models.Goal, error) {
	return s.goalsWhere(func(models.Goal) bool { return true }), nil
}

func (s *Store) goalsWhere(keep func(models.Goal) bool) []models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Goal
	for _, g := range s.goals {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateReport(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	cp.Categories = append([]models.CategoryTotal(nil), r.Categories...)
	s.reports[r.ID] = cp
	return nil
}

// ListReports returns a user's reports, newest first
func (s *Store) ListReports(_ context.Context, userID int64) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id()
	s.notifications[n.ID] = *n
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (s *Store) ListNotifications(_ context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) MarkNotificationsRead(_ context.Context, userID int64, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.UserID != userID {
			continue
		}
		n.IsRead = true
		s.notifications[id] = n
		updated++
	}
	return updated, nil
}

// AllNotifications returns every stored notification ordered by id
func (s *Store) AllNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
