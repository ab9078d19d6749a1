package service

import (
	"errors"
	"fmt"
)

var (
	ErrOwnerNotFound          = errors.New("owner not found")
	ErrConversionUnavailable  = errors.New("conversion rate unavailable")
	ErrNotFoundOrUnauthorized = errors.New("not found or unauthorized")
	ErrGoalNotFound           = errors.New("goal not found")
	ErrInvalidPeriod          = errors.New("month and year are required")
	ErrNoData                 = errors.New("no transactions found for the specified period")
	ErrPersistence            = errors.New("persistence failure")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already exists")
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, op, err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
