package service

import (
	"sort"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/TheCodister/financial-management-app/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// StatsService computes aggregated summaries over a date window
type StatsService struct {
	transactionRepo domain.TransactionRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(transactionRepo domain.TransactionRepository) *StatsService {
	return &StatsService{transactionRepo: transactionRepo}
}

// Summarize computes totals, the expense category ranking, and the
// daily trend for the window. A nil window defaults to the calendar
// month containing now (UTC), inclusive on both ends.
//
// The component queries are independent reads executed concurrently;
// under interleaved writes they may observe slightly different
// snapshots, which the domain tolerates.
func (s *StatsService) Summarize(window *domain.Window) (*domain.StatsSummary, error) {
	var start, end time.Time
	if window != nil {
		start = window.Start.UTC()
		end = window.End.UTC()
	} else {
		now := time.Now().UTC()
		start = util.StartOfMonth(now)
		end = util.EndOfMonth(now)
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	incomeType := domain.TransactionTypeIncome
	expenseType := domain.TransactionTypeExpense
	allInWindow := domain.AggregateFilters{StartDate: start, EndDate: end}

	var (
		totalIncome   decimal.Decimal
		totalExpenses decimal.Decimal
		count         int64
		byCategory    []*domain.CategorySum
		windowTxs     []*domain.Transaction
	)

	g := new(errgroup.Group)
	g.Go(func() (err error) {
		totalIncome, err = s.transactionRepo.SumAmount(domain.AggregateFilters{
			Type: &incomeType, StartDate: start, EndDate: end,
		})
		return err
	})
	g.Go(func() (err error) {
		totalExpenses, err = s.transactionRepo.SumAmount(domain.AggregateFilters{
			Type: &expenseType, StartDate: start, EndDate: end,
		})
		return err
	})
	g.Go(func() (err error) {
		count, err = s.transactionRepo.CountInWindow(allInWindow)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.transactionRepo.GroupSumByCategory(domain.AggregateFilters{
			Type: &expenseType, StartDate: start, EndDate: end,
		}, domain.TopCategoriesLimit)
		return err
	})
	g.Go(func() (err error) {
		windowTxs, err = s.transactionRepo.FindInWindow(allInWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if byCategory == nil {
		byCategory = []*domain.CategorySum{}
	}

	return &domain.StatsSummary{
		Totals: domain.StatsTotals{
			TotalIncome:      totalIncome,
			TotalExpenses:    totalExpenses,
			Net:              totalIncome.Sub(totalExpenses),
			TransactionCount: count,
		},
		ByCategory: byCategory,
		Trend:      buildTrend(windowTxs),
		Start:      start,
		End:        end,
	}, nil
}

// buildTrend folds the window's transactions into UTC calendar-day
// buckets. Days without transactions are not synthesized; the series
// only contains days that saw at least one transaction.
func buildTrend(transactions []*domain.Transaction) []*domain.TrendPoint {
	buckets := make(map[string]*domain.TrendPoint)
	for _, tx := range transactions {
		key := util.DayKey(tx.Date)
		point, ok := buckets[key]
		if !ok {
			point = &domain.TrendPoint{
				Date:    key,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			buckets[key] = point
		}
		if tx.Type == domain.TransactionTypeIncome {
			point.Income = point.Income.Add(tx.Amount)
		} else {
			point.Expense = point.Expense.Add(tx.Amount)
		}
	}

	trend := make([]*domain.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		trend = append(trend, point)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Date < trend[j].Date
	})
	return trend
}
