package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// SweepRunner runs one alert evaluation sweep
type SweepRunner interface {
	RunSweep(ctx context.Context) error
}

// LedgerService applies transaction mutations and their budget and goal side
// effects. Steps run in order without a surrounding transaction: the record is
// committed first and a failing side effect is logged, not rolled back.
type LedgerService struct {
	users    UserStore
	txs      TransactionStore
	currency *CurrencyGateway
	budgets  *BudgetTracker
	goals    *GoalTracker
	alerts   SweepRunner
	log      *logrus.Logger
	now      func() time.Time
}

// NewLedgerService initializes a ledger service. alerts may be nil.
func NewLedgerService(users UserStore, txs TransactionStore, currency *CurrencyGateway, budgets *BudgetTracker,
	goals *GoalTracker, alerts SweepRunner, log *logrus.Logger) *LedgerService {
	return &LedgerService{
		users:    users,
		txs:      txs,
		currency: currency,
		budgets:  budgets,
		goals:    goals,
		alerts:   alerts,
		log:      log,
		now:      time.Now,
	}
}

func validateNewTransaction(in models.NewTransaction) error {
	if !in.Kind.Valid() {
		return validationError("kind must be %q or %q", models.KindIncome, models.KindExpense)
	}
	if in.Amount <= 0 {
		return validationError("amount must be positive")
	}
	if in.Currency == "" {
		return validationError("currency is required")
	}
	if in.Category == "" {
		return validationError("category is required")
	}
	if in.Recurrence.IsRecurring && !in.Recurrence.Pattern.Valid() {
		return validationError("recurrence pattern must be daily, weekly or monthly")
	}
	return nil
}

// Create records a transaction for userID in the user's preferred currency
func (s *LedgerService) Create(ctx context.Context, userID int64, in models.NewTransaction) (*models.Transaction, error) {
	if err := validateNewTransaction(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Errorf("User not found: %d", userID)
		return nil, fmt.Errorf("user %d: %w", userID, ErrOwnerNotFound)
	}
	if err != nil {
		return nil, persistenceError("find user", err)
	}

	currency := strings.ToUpper(in.Currency)
	converted := in.Amount
	if currency != user.PreferredCurrency {
		converted, err = s.currency.Convert(ctx, in.Amount, currency, user.PreferredCurrency)
		if err != nil {
			return nil, err
		}
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := &models.Transaction{
		UserID:          userID,
		Kind:            in.Kind,
		Amount:          in.Amount,
		Currency:        currency,
		ConvertedAmount: converted,
		Category:        in.Category,
		Tags:            in.Tags,
		Description:     in.Description,
		Date:            date,
		Recurrence:      in.Recurrence,
	}
	if err := s.txs.CreateTransaction(ctx, tx); err != nil {
		return nil, persistenceError("create transaction", err)
	}
	logger := s.log.WithFields(logrus.Fields{"user_id": userID, "transaction_id": tx.ID})
	logger.Infof("Transaction created: %s %.2f %s", tx.Kind, tx.Amount, tx.Currency)

	switch tx.Kind {
	case models.KindIncome:
		// goals are credited from the original amount
		if n, err := s.goals.AllocateIncome(ctx, userID, tx.Amount); err != nil {
			logger.Errorf("Failed to allocate income to goals: %v", err)
		} else if n > 0 {
			logger.Infof("Allocated income to %d goals", n)
		}
		if s.alerts != nil {
			if err := s.alerts.RunSweep(ctx); err != nil {
				logger.Errorf("Alert sweep after income failed: %v", err)
			}
		}
	case models.KindExpense:
		if err := s.budgets.OnExpenseCreated(ctx, tx); err != nil {
			logger.Errorf("Failed to update budget spending: %v", err)
		}
	}
	return tx, nil
}

// Get returns one of the user's transactions
func (s *LedgerService) Get(ctx context.Context, id, userID int64) (*models.Transaction, error) {
	return s.owned(ctx, id, userID)
}

// List returns the user's transactions, newest first
func (s *LedgerService) List(ctx context.Context, userID int64) ([]models.Transaction, error) {
	txs, err := s.txs.ListTransactions(ctx, userID)
	if err != nil {
		return nil, persistenceError("list transactions", err)
	}
	s.log.Infof("Fetched transactions for user %d", userID)
	return txs, nil
}

// Update overwrites the supplied fields. Budgets and goals are not re-evaluated.
func (s *LedgerService) Update(ctx context.Context, id, userID int64, patch models.TransactionPatch) (*models.Transaction, error) {
	tx, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	patch.Apply(tx)
	tx.Currency = strings.ToUpper(tx.Currency)
	if err := validateNewTransaction(models.NewTransaction{
		Kind:       tx.Kind,
		Amount:     tx.Amount,
		Currency:   tx.Currency,
		Category:   tx.Category,
		Recurrence: tx.Recurrence,
	}); err != nil {
		return nil, err
	}
	if err := s.txs.UpdateTransaction(ctx, tx); err != nil {
		return nil, persistenceError("update transaction", err)
	}
	s.log.Infof("Transaction updated for user %d: %d", userID, id)
	return tx, nil
}

// Delete removes a transaction, reversing its budget effect for expenses.
// Goal allocations are kept.
func (s *LedgerService) Delete(ctx context.Context, id, userID int64) error {
	tx, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if tx.Kind == models.KindExpense {
		if err := s.budgets.OnExpenseDeleted(ctx, tx); err != nil {
			s.log.WithField("transaction_id", id).Errorf("Failed to reverse budget spending: %v", err)
		}
	}
	if err := s.txs.DeleteTransaction(ctx, id); err != nil {
		return persistenceError("delete transaction", err)
	}
	s.log.Infof("Transaction deleted for user %d: %d", userID, id)
	return nil
}

func (s *LedgerService) owned(ctx context.Context, id, userID int64) (*models.Transaction, error) {
	tx, err := s.txs.GetTransaction(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && tx.UserID != userID) {
		s.log.Warnf("Transaction not found or unauthorized: %d", id)
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFoundOrUnauthorized)
	}
	if err != nil {
		return nil, persistenceError("find transaction", err)
	}
	return tx, nil
}
