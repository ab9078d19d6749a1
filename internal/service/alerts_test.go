package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
)

type suppressAll struct{ seen int }

func (s *suppressAll) Suppress(context.Context, *models.Notification) bool {
	s.seen++
	return true
}

func TestAlertEngine_CheckBudgets(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	svc.Alerts.now = func() time.Time { return date(2023, time.October, 20, 12) }

	if _, err := svc.Budgets.CreateBudget(ctx, user.ID, "Groceries", 100, "2023-10"); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if _, err := svc.Budgets.CreateBudget(ctx, user.ID, "Fuel", 100, "2023-10"); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	for _, tx := range []models.Transaction{
		{UserID: user.ID, Kind: models.KindExpense, Amount: 50, Category: "Groceries", Date: date(2023, time.October, 2, 10)},
		{UserID: user.ID, Kind: models.KindExpense, Amount: 35, Category: "Groceries", Date: date(2023, time.October, 18, 10)},
		// previous month does not count
		{UserID: user.ID, Kind: models.KindExpense, Amount: 90, Category: "Fuel", Date: date(2023, time.September, 30, 10)},
		{UserID: user.ID, Kind: models.KindExpense, Amount: 10, Category: "Fuel", Date: date(2023, time.October, 1, 10)},
	} {
		if err := store.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := svc.Alerts.CheckBudgets(ctx); err != nil {
			t.Fatalf("CheckBudgets: %v", err)
		}
	}

	notes := store.AllNotifications()
	if len(notes) != 2 {
		t.Fatalf("notifications = %d, want 2 (one per sweep)", len(notes))
	}
	for _, n := range notes {
		if n.Message != "You have spent 80% of your budget for category: Groceries" || n.Kind != models.NotificationAlert {
			t.Errorf("unexpected notification %+v", n)
		}
	}
}

func TestAlertEngine_CheckGoals(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	target := date(2030, time.January, 1, 0)

	reached := &models.Goal{UserID: user.ID, Name: "House", TargetAmount: 1000, SavedAmount: 850, TargetDate: target}
	short := &models.Goal{UserID: user.ID, Name: "Bike", TargetAmount: 1000, SavedAmount: 790, TargetDate: target}
	broken := &models.Goal{UserID: user.ID, Name: "Zero", TargetAmount: 0, SavedAmount: 10, TargetDate: target}
	for _, g := range []*models.Goal{reached, short, broken} {
		if err := store.CreateGoal(ctx, g); err != nil {
			t.Fatalf("CreateGoal: %v", err)
		}
	}

	if err := svc.Alerts.RunSweep(ctx); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if err := svc.Alerts.RunSweep(ctx); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	notes := store.AllNotifications()
	if len(notes) != 1 || !strings.Contains(notes[0].Message, `"House"`) {
		t.Fatalf("notifications = %+v, want a single House alert", notes)
	}
	got, _ := store.GetGoal(ctx, reached.ID)
	if !got.NotificationSent {
		t.Error("reached goal not flagged")
	}
	got, _ = store.GetGoal(ctx, short.ID)
	if got.NotificationSent {
		t.Error("goal below threshold flagged")
	}
}

func TestAlertEngine_CheckRecurring(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	now := date(2023, time.October, 10, 12)
	svc.Alerts.now = func() time.Time { return now }
	pastEnd := date(2023, time.October, 11, 0)

	recurring := func(desc string, pattern models.RecurrencePattern, at time.Time, end *time.Time) models.Transaction {
		return models.Transaction{
			UserID: user.ID, Kind: models.KindExpense, Amount: 10, Category: "Bills", Description: desc, Date: at,
			Recurrence: models.Recurrence{IsRecurring: true, Pattern: pattern, EndDate: end},
		}
	}
	for _, tx := range []models.Transaction{
		recurring("daily", models.RecurDaily, date(2023, time.October, 11, 13), nil),
		recurring("weekly", models.RecurWeekly, date(2023, time.October, 5, 13), nil),
		recurring("monthly", models.RecurMonthly, date(2023, time.September, 12, 13), nil),
		// next occurrence exactly at the window start is excluded
		recurring("boundary", models.RecurDaily, date(2023, time.October, 11, 12), nil),
		recurring("too far", models.RecurWeekly, date(2023, time.October, 8, 13), nil),
		recurring("ended", models.RecurDaily, date(2023, time.October, 11, 13), &pastEnd),
		{UserID: user.ID, Kind: models.KindExpense, Amount: 10, Category: "Bills", Description: "one-off", Date: date(2023, time.October, 11, 13)},
	} {
		if err := store.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	if err := svc.Alerts.CheckRecurring(ctx); err != nil {
		t.Fatalf("CheckRecurring: %v", err)
	}

	got := map[string]bool{}
	for _, n := range store.AllNotifications() {
		if n.Kind != models.NotificationReminder {
			t.Errorf("unexpected kind %q", n.Kind)
		}
		got[strings.TrimPrefix(n.Message, "You have a recurring transaction due in 2 days: ")] = true
	}
	want := map[string]bool{"daily": true, "weekly": true, "monthly": true}
	if len(got) != len(want) {
		t.Errorf("reminders = %v, want %v", got, want)
	}
	for desc := range want {
		if !got[desc] {
			t.Errorf("missing reminder for %s", desc)
		}
	}
}

func TestAlertEngine_Suppressor(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	if err := store.CreateGoal(ctx, &models.Goal{UserID: user.ID, Name: "Full", TargetAmount: 10, SavedAmount: 10}); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	s := &suppressAll{}
	svc.Alerts.SetSuppressor(s)
	if err := svc.Alerts.RunSweep(ctx); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if s.seen != 1 {
		t.Errorf("suppressor saw %d notifications, want 1", s.seen)
	}
	if n := len(store.AllNotifications()); n != 0 {
		t.Errorf("stored %d notifications, want 0", n)
	}
}

func TestAlertEngine_BudgetMonthIsUTC(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := createUser(t, store, "USD")
	// still October locally, already November in UTC
	svc.Alerts.now = func() time.Time {
		return time.Date(2023, time.October, 31, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	}

	for _, category := range []string{"October", "November"} {
		if _, err := svc.Budgets.CreateBudget(ctx, user.ID, category, 100, "2023-11"); err != nil {
			t.Fatalf("CreateBudget: %v", err)
		}
	}
	for _, tx := range []models.Transaction{
		{UserID: user.ID, Kind: models.KindExpense, Amount: 90, Category: "October", Date: date(2023, time.October, 31, 12)},
		{UserID: user.ID, Kind: models.KindExpense, Amount: 90, Category: "November", Date: date(2023, time.November, 1, 6)},
	} {
		if err := store.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	if err := svc.Alerts.CheckBudgets(ctx); err != nil {
		t.Fatalf("CheckBudgets: %v", err)
	}
	notes := store.AllNotifications()
	if len(notes) != 1 || !strings.HasSuffix(notes[0].Message, "category: November") {
		t.Errorf("notifications = %+v, want one November alert", notes)
	}
}
