package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
)

func TestLedgerService_ExpenseUpdatesBudget(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")

	budget, err := svc.Budgets.CreateBudget(ctx, user.ID, "Groceries", 500, "2023-10")
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	tx, err := svc.Ledger.Create(ctx, user.ID, models.NewTransaction{
		Kind:     models.KindExpense,
		Amount:   200,
		Currency: "USD",
		Category: "Groceries",
		Date:     date(2023, time.October, 5, 12),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ConvertedAmount != 200 {
		t.Errorf("ConvertedAmount = %v, want 200", tx.ConvertedAmount)
	}

	got, _ := store.GetBudget(ctx, budget.ID)
	if got.CurrentSpending != 200 {
		t.Errorf("spending after create = %v, want 200", got.CurrentSpending)
	}

	if err := svc.Ledger.Delete(ctx, tx.ID, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = store.GetBudget(ctx, budget.ID)
	if got.CurrentSpending != 0 {
		t.Errorf("spending after delete = %v, want 0", got.CurrentSpending)
	}
}

func TestLedgerService_ExpenseOutsideBudgetMonth(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")

	budget, _ := svc.Budgets.CreateBudget(ctx, user.ID, "Groceries", 500, "2023-10")
	if _, err := svc.Ledger.Create(ctx, user.ID, models.NewTransaction{
		Kind: models.KindExpense, Amount: 50, Currency: "USD", Category: "Groceries",
		Date: date(2023, time.November, 1, 9),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := store.GetBudget(ctx, budget.ID)
	if got.CurrentSpending != 0 {
		t.Errorf("spending = %v, want 0", got.CurrentSpending)
	}
}

func TestLedgerService_ConvertsToPreferredCurrency(t *testing.T) {
	rates := &staticRates{tables: map[string]map[string]float64{"EUR": {"USD": 1.1}}}
	svc, store := newTestService(t, rates)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	budget, _ := svc.Budgets.CreateBudget(ctx, user.ID, "Travel", 1000, "2023-10")

	tx, err := svc.Ledger.Create(ctx, user.ID, models.NewTransaction{
		Kind: models.KindExpense, Amount: 100, Currency: "eur", Category: "Travel",
		Date: date(2023, time.October, 3, 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.Currency != "EUR" || tx.Amount != 100 {
		t.Errorf("original amount not kept: %+v", tx)
	}
	if !approx(tx.ConvertedAmount, 110) {
		t.Errorf("ConvertedAmount = %v, want 110", tx.ConvertedAmount)
	}

	got, _ := store.GetBudget(ctx, budget.ID)
	if !approx(got.CurrentSpending, 110) {
		t.Errorf("spending after create = %v, want 110", got.CurrentSpending)
	}

	// deletion takes back the original amount
	if err := svc.Ledger.Delete(ctx, tx.ID, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = store.GetBudget(ctx, budget.ID)
	if !approx(got.CurrentSpending, 10) {
		t.Errorf("spending after delete = %v, want 10", got.CurrentSpending)
	}
}

func TestLedgerService_CreateErrors(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")

	valid := models.NewTransaction{Kind: models.KindIncome, Amount: 10, Currency: "USD", Category: "Salary"}

	tests := []struct {
		name    string
		userID  int64
		mutate  func(*models.NewTransaction)
		wantErr error
	}{
		{"unknown user", 999, func(*models.NewTransaction) {}, ErrOwnerNotFound},
		{"non-positive amount", user.ID, func(in *models.NewTransaction) { in.Amount = 0 }, ErrValidation},
		{"unknown kind", user.ID, func(in *models.NewTransaction) { in.Kind = "transfer" }, ErrValidation},
		{"missing category", user.ID, func(in *models.NewTransaction) { in.Category = "" }, ErrValidation},
		{"bad recurrence", user.ID, func(in *models.NewTransaction) {
			in.Recurrence = models.Recurrence{IsRecurring: true, Pattern: "yearly"}
		}, ErrValidation},
		{"no rate", user.ID, func(in *models.NewTransaction) { in.Currency = "GBP" }, ErrConversionUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			if _, err := svc.Ledger.Create(ctx, tt.userID, in); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	txs, _ := svc.Ledger.List(ctx, user.ID)
	if len(txs) != 0 {
		t.Errorf("failed creates persisted %d transactions", len(txs))
	}
}

func TestLedgerService_DefaultsDateToNow(t *testing.T) {
	svc, store := newTestService(t, nil)
	user := createUser(t, store, "USD")
	now := date(2024, time.March, 3, 8)
	svc.Ledger.now = func() time.Time { return now }

	tx, err := svc.Ledger.Create(context.Background(), user.ID, models.NewTransaction{
		Kind: models.KindExpense, Amount: 5, Currency: "USD", Category: "Coffee",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !tx.Date.Equal(now) {
		t.Errorf("Date = %v, want %v", tx.Date, now)
	}
}

func TestLedgerService_IncomeAllocatesToGoals(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	target := date(2025, time.January, 1, 0)

	saving, _ := svc.Goals.CreateGoal(ctx, user.ID, "Car", 5000, 0, target, 10)
	idle, _ := svc.Goals.CreateGoal(ctx, user.ID, "Boat", 5000, 0, target, 0)

	if _, err := svc.Ledger.Create(ctx, user.ID, models.NewTransaction{
		Kind: models.KindIncome, Amount: 1000, Currency: "USD", Category: "Salary",
		Date: date(2023, time.October, 1, 9),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := store.GetGoal(ctx, saving.ID)
	if !approx(got.SavedAmount, 100) {
		t.Errorf("saved = %v, want 100", got.SavedAmount)
	}
	got, _ = store.GetGoal(ctx, idle.ID)
	if got.SavedAmount != 0 {
		t.Errorf("goal without percentage changed: %v", got.SavedAmount)
	}

	modified, err := svc.Goals.DirectModify(ctx, saving.ID, user.ID, models.GoalAdjustment{Expense: 500})
	if err != nil {
		t.Fatalf("DirectModify: %v", err)
	}
	if !approx(modified.SavedAmount, 50) {
		t.Errorf("saved after direct expense = %v, want 50", modified.SavedAmount)
	}
}

func TestLedgerService_IncomeTriggersGoalAlertOnce(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	goal, _ := svc.Goals.CreateGoal(ctx, user.ID, "Trip", 1000, 700, date(2025, time.June, 1, 0), 10)

	income := models.NewTransaction{Kind: models.KindIncome, Amount: 1000, Currency: "USD", Category: "Salary"}
	for i := 0; i < 2; i++ {
		if _, err := svc.Ledger.Create(ctx, user.ID, income); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	got, _ := store.GetGoal(ctx, goal.ID)
	if !got.NotificationSent {
		t.Error("goal not flagged as notified")
	}
	notes, _ := svc.Notifications.List(ctx, user.ID)
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	if want := `Goal "Trip" has reached 80% of the target!`; notes[0].Message != want {
		t.Errorf("message = %q, want %q", notes[0].Message, want)
	}
}

func TestLedgerService_OwnershipAndUpdate(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	owner := createUser(t, store, "USD")
	other := createUser(t, store, "EUR")
	budget, _ := svc.Budgets.CreateBudget(ctx, owner.ID, "Rent", 2000, "2023-10")

	tx, err := svc.Ledger.Create(ctx, owner.ID, models.NewTransaction{
		Kind: models.KindExpense, Amount: 900, Currency: "USD", Category: "Rent",
		Date: date(2023, time.October, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Ledger.Get(ctx, tx.ID, other.ID); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Errorf("foreign Get error = %v, want ErrNotFoundOrUnauthorized", err)
	}
	if err := svc.Ledger.Delete(ctx, tx.ID, other.ID); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Errorf("foreign Delete error = %v, want ErrNotFoundOrUnauthorized", err)
	}
	if _, err := svc.Ledger.Get(ctx, 12345, owner.ID); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Errorf("missing Get error = %v, want ErrNotFoundOrUnauthorized", err)
	}

	amount := 950.0
	desc := "October rent"
	updated, err := svc.Ledger.Update(ctx, tx.ID, owner.ID, models.TransactionPatch{Amount: &amount, Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Amount != 950 || updated.Description != desc || updated.Category != "Rent" {
		t.Errorf("unexpected update result %+v", updated)
	}

	// updates do not touch budgets
	got, _ := store.GetBudget(ctx, budget.ID)
	if got.CurrentSpending != 900 {
		t.Errorf("spending = %v, want 900", got.CurrentSpending)
	}
}

func TestLedgerService_UpdateValidation(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	tx, err := svc.Ledger.Create(ctx, user.ID, models.NewTransaction{
		Kind: models.KindExpense, Amount: 40, Currency: "USD", Category: "Books", Date: date(2023, time.October, 7, 15),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	zero, negative := 0.0, -3.0
	empty := ""
	tests := []struct {
		name  string
		patch models.TransactionPatch
	}{
		{"zero amount", models.TransactionPatch{Amount: &zero}},
		{"negative amount", models.TransactionPatch{Amount: &negative}},
		{"empty category", models.TransactionPatch{Category: &empty}},
		{"empty currency", models.TransactionPatch{Currency: &empty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Ledger.Update(ctx, tx.ID, user.ID, tt.patch); !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}

	stored, _ := store.GetTransaction(ctx, tx.ID)
	if stored.Amount != 40 || stored.Category != "Books" || stored.Currency != "USD" {
		t.Errorf("rejected patches changed the record: %+v", stored)
	}

	lower := "eur"
	updated, err := svc.Ledger.Update(ctx, tx.ID, user.ID, models.TransactionPatch{Currency: &lower})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", updated.Currency)
	}
}
