package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReportService builds monthly report snapshots
type ReportService struct {
	txs     TransactionStore
	reports ReportStore
	log     *logrus.Logger
}

// NewReportService initializes a report service
func NewReportService(txs TransactionStore, reports ReportStore, log *logrus.Logger) *ReportService {
	return &ReportService{txs: txs, reports: reports, log: log}
}

// MonthWindow returns the first and last calendar day of month/year
func MonthWindow(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Generate summarizes the user's transactions of one month, optionally
// restricted to transactions carrying any of tags, and stores the snapshot.
func (s *ReportService) Generate(ctx context.Context, userID int64, month, year int, tags []string) (*models.Report, error) {
	if month == 0 || year == 0 {
		return nil, ErrInvalidPeriod
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	s.log.Infof("Generating monthly report for user %d for %d/%d", userID, month, year)

	start, end := MonthWindow(month, year)
	txs, err := s.txs.FindTransactions(ctx, models.TransactionFilter{
		UserID: userID,
		From:   start,
		// whole last day
		To:      end.AddDate(0, 0, 1).Add(-time.Nanosecond),
		AnyTags: tags,
	})
	if err != nil {
		return nil, persistenceError("find transactions", err)
	}
	if len(txs) == 0 {
		return nil, ErrNoData
	}

	report := Summarize(txs)
	report.UserID = userID
	report.StartDate = start
	report.EndDate = end
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, persistenceError("create report", err)
	}
	s.log.Infof("Monthly report generated successfully for user %d", userID)
	return report, nil
}

// Summarize totals transactions by kind and by category. Categories keep the
// order in which they first appear in txs.
func Summarize(txs []models.Transaction) *models.Report {
	var (
		income, expense decimal.Decimal
		order           []string
		byCategory      = map[string]decimal.Decimal{}
	)
	for _, t := range txs {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Kind {
		case models.KindIncome:
			income = income.Add(amount)
		case models.KindExpense:
			expense = expense.Add(amount)
		}
		if _, seen := byCategory[t.Category]; !seen {
			order = append(order, t.Category)
		}
		byCategory[t.Category] = byCategory[t.Category].Add(amount)
	}

	report := &models.Report{
		TotalIncome:  income.InexactFloat64(),
		TotalExpense: expense.InexactFloat64(),
		Categories:   make([]models.CategoryTotal, 0, len(order)),
	}
	for _, c := range order {
		report.Categories = append(report.Categories, models.CategoryTotal{Category: c, TotalAmount: byCategory[c].InexactFloat64()})
	}
	return report
}

// List returns the user's stored reports
func (s *ReportService) List(ctx context.Context, userID int64) ([]models.Report, error) {
	reports, err := s.reports.ListReports(ctx, userID)
	if err != nil {
		return nil, persistenceError("list reports", err)
	}
	return reports, nil
}
