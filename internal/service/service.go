package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service bundles the domain services over one store
type Service struct {
	Users         *UserService
	Currency      *CurrencyGateway
	Ledger        *LedgerService
	Budgets       *BudgetTracker
	Goals         *GoalTracker
	Reports       *ReportService
	Alerts        *AlertEngine
	Notifications *NotificationService
}

// NewService wires every domain service
func NewService(store Store, rates RateProvider, log *logrus.Logger, cfg *config.Config) *Service {
	currency := NewCurrencyGateway(rates, log)
	budgets := NewBudgetTracker(store, log)
	goals := NewGoalTracker(store, log, cfg.GoalAllocationScale, cfg.GoalDirectScale)
	alerts := NewAlertEngine(store, store, store, store, log)
	return &Service{
		Users:         NewUserService(store, log, cfg.JWTSecret, cfg.JWTTTL),
		Currency:      currency,
		Ledger:        NewLedgerService(store, store, currency, budgets, goals, alerts, log),
		Budgets:       budgets,
		Goals:         goals,
		Reports:       NewReportService(store, store, log),
		Alerts:        alerts,
		Notifications: NewNotificationService(store, log),
	}
}

// UserService handles registration, login and profiles
type UserService struct {
	store     UserStore
	log       *logrus.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

// NewUserService initializes a user service
func NewUserService(store UserStore, log *logrus.Logger, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{store: store, log: log, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a new user with hashed password
func (s *UserService) Register(ctx context.Context, name, email, password, preferredCurrency string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		s.log.Warnf("Attempt to register with existing email: %s", email)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, persistenceError("find user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if preferredCurrency == "" {
		preferredCurrency = models.DefaultCurrency
	}

	user := &models.User{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hashedPassword),
		Role:              "user",
		PreferredCurrency: strings.ToUpper(preferredCurrency),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, persistenceError("create user", err)
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		s.log.Warnf("Login attempt with unknown email: %s", email)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warnf("Invalid password attempt for email: %s", email)
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// Profile returns the user
func (s *UserService) Profile(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOwnerNotFound
	}
	if err != nil {
		return nil, persistenceError("find user", err)
	}
	return user, nil
}

// UpdateProfile changes the non-empty fields of patch
func (s *UserService) UpdateProfile(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	if patch.PreferredCurrency != "" {
		user.PreferredCurrency = strings.ToUpper(patch.PreferredCurrency)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, persistenceError("update user", err)
	}
	s.log.Infof("User profile updated for: %d", id)
	return user, nil
}
