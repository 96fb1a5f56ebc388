/**
 * @description
 * This file contains the analytics aggregation engine: spending trends,
 * per-category trends, income-vs-expense comparisons, and the overall
 * financial summary. The service methods resolve the time window and fetch
 * the raw transactions; the build* functions are pure aggregations over that
 * slice, so all bucketing, classification and ranking rules are unit-testable
 * without a database.
 *
 * Aggregation rules worth calling out:
 * - Monthly buckets key on "YYYY-MM" and yearly buckets on "YYYY"; results
 *   sort lexicographically on the key, which is chronological for these
 *   formats.
 * - Transfers move money between the user's own accounts, so they count
 *   toward a month's transaction count but toward neither income nor
 *   expenses.
 * - A category's trend compares the mean of the first half of its monthly
 *   series against the mean of the second half (split index len/2, so the
 *   second half gets the extra month on odd counts). More than +10% is
 *   increasing, less than -10% is decreasing, otherwise stable.
 * - Category trends rank by total amount descending and keep the top 10.
 * - "Top" pickers use strict greater-than, so the first bucket encountered
 *   wins ties.
 */

package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

const (
	monthKeyLayout   = "2006-01"
	yearKeyLayout    = "2006"
	shortMonthLayout = "Jan"
	longMonthLayout  = "January 2006"
)

// SpendingTrends aggregates income, expenses and savings per calendar month
// over the trailing window of the given number of months.
func (s *Service) SpendingTrends(ctx context.Context, userID uuid.UUID, months int) ([]domain.SpendingTrend, error) {
	end := time.Now()
	start := end.AddDate(0, -months, 0)

	txns, err := s.repo.FindTransactionsInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return buildSpendingTrends(txns), nil
}

// CategoryTrends aggregates expense totals per category per month over the
// trailing window, classifies each category's direction, and returns the top
// ten categories by total spend.
func (s *Service) CategoryTrends(ctx context.Context, userID uuid.UUID, months int) ([]domain.CategoryTrend, error) {
	end := time.Now()
	start := end.AddDate(0, -months, 0)

	txns, err := s.repo.FindTransactionsInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return buildCategoryTrends(txns, months), nil
}

// IncomeVsExpense compares income against expenses per period. Period is
// "monthly" or "yearly"; a yearly comparison widens the window to whole years
// covering the requested number of months.
func (s *Service) IncomeVsExpense(ctx context.Context, userID uuid.UUID, period string, months int) ([]domain.IncomeVsExpense, error) {
	if period != domain.PeriodMonthly && period != domain.PeriodYearly {
		return nil, &InvalidInputError{Field: "period", Reason: fmt.Sprintf("unrecognized period %q", period)}
	}

	end := time.Now()
	var start time.Time
	if period == domain.PeriodYearly {
		years := (months + 11) / 12
		start = end.AddDate(-years, 0, 0)
	} else {
		start = end.AddDate(0, -months, 0)
	}

	txns, err := s.repo.FindTransactionsInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return buildIncomeVsExpense(txns, period), nil
}

// FinancialSummary reports window-wide totals, monthly averages, the savings
// rate, and the standout category and months for the trailing window.
func (s *Service) FinancialSummary(ctx context.Context, userID uuid.UUID, months int) (*domain.FinancialSummary, error) {
	end := time.Now()
	start := end.AddDate(0, -months, 0)

	txns, err := s.repo.FindTransactionsInWindow(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	summary := buildFinancialSummary(txns, months)
	return &summary, nil
}

func buildSpendingTrends(transactions []domain.Transaction) []domain.SpendingTrend {
	type bucket struct {
		key   string
		trend domain.SpendingTrend
	}

	index := make(map[string]int)
	buckets := make([]bucket, 0)

	for _, txn := range transactions {
		key := txn.Date.Format(monthKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, bucket{
				key: key,
				trend: domain.SpendingTrend{
					Month: txn.Date.Format(shortMonthLayout),
					Year:  txn.Date.Year(),
				},
			})
		}

		t := &buckets[i].trend
		if txn.Kind == domain.TransactionIncome {
			t.Income = t.Income.Add(txn.Amount)
		} else if txn.Kind == domain.TransactionExpense {
			t.Expenses = t.Expenses.Add(txn.Amount)
		}
		t.TransactionCount++
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].key < buckets[j].key })

	trends := make([]domain.SpendingTrend, len(buckets))
	for i, b := range buckets {
		b.trend.Savings = b.trend.Income.Sub(b.trend.Expenses)
		trends[i] = b.trend
	}
	return trends
}

func buildCategoryTrends(transactions []domain.Transaction, months int) []domain.CategoryTrend {
	type accumulator struct {
		trend     domain.CategoryTrend
		monthIdx  map[string]int
		monthKeys []string
	}

	index := make(map[uuid.UUID]int)
	accs := make([]*accumulator, 0)

	for _, txn := range transactions {
		if txn.Kind != domain.TransactionExpense || txn.CategoryID == nil {
			continue
		}

		i, ok := index[*txn.CategoryID]
		if !ok {
			i = len(accs)
			index[*txn.CategoryID] = i
			acc := &accumulator{
				trend: domain.CategoryTrend{
					CategoryID:   *txn.CategoryID,
					CategoryName: "Unknown",
				},
				monthIdx: make(map[string]int),
			}
			if txn.Category != nil {
				acc.trend.CategoryName = txn.Category.Name
				acc.trend.CategoryColor = txn.Category.Color
				acc.trend.CategoryIcon = txn.Category.Icon
			}
			accs = append(accs, acc)
		}
		acc := accs[i]

		key := txn.Date.Format(monthKeyLayout)
		mi, ok := acc.monthIdx[key]
		if !ok {
			mi = len(acc.trend.MonthlyData)
			acc.monthIdx[key] = mi
			acc.monthKeys = append(acc.monthKeys, key)
			acc.trend.MonthlyData = append(acc.trend.MonthlyData, domain.CategoryMonth{
				Month: txn.Date.Format(shortMonthLayout),
				Year:  txn.Date.Year(),
			})
		}
		acc.trend.MonthlyData[mi].Amount = acc.trend.MonthlyData[mi].Amount.Add(txn.Amount)
		acc.trend.MonthlyData[mi].TransactionCount++
		acc.trend.TotalAmount = acc.trend.TotalAmount.Add(txn.Amount)
	}

	monthsDivisor := decimal.NewFromInt(int64(months))
	trends := make([]domain.CategoryTrend, 0, len(accs))
	for _, acc := range accs {
		// Sort the monthly series chronologically before classifying.
		order := make([]int, len(acc.monthKeys))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool { return acc.monthKeys[order[i]] < acc.monthKeys[order[j]] })

		sorted := make([]domain.CategoryMonth, len(order))
		amounts := make([]decimal.Decimal, len(order))
		for i, idx := range order {
			sorted[i] = acc.trend.MonthlyData[idx]
			amounts[i] = sorted[i].Amount
		}
		acc.trend.MonthlyData = sorted
		acc.trend.AverageMonthly = acc.trend.TotalAmount.Div(monthsDivisor)
		acc.trend.Trend = classifyTrend(amounts)
		trends = append(trends, acc.trend)
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].TotalAmount.GreaterThan(trends[j].TotalAmount)
	})
	if len(trends) > 10 {
		trends = trends[:10]
	}
	return trends
}

// classifyTrend compares the first half of a chronological monthly series
// against the second half. Change is computed in float64 so a zero first-half
// mean yields +Inf and classifies as increasing rather than erroring.
func classifyTrend(monthly []decimal.Decimal) string {
	if len(monthly) < 2 {
		return domain.TrendStable
	}

	split := len(monthly) / 2
	first := meanFloat(monthly[:split])
	second := meanFloat(monthly[split:])

	change := (second - first) / first * 100
	switch {
	case change > 10:
		return domain.TrendIncreasing
	case change < -10:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

func meanFloat(values []decimal.Decimal) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.InexactFloat64() / float64(len(values))
}

func buildIncomeVsExpense(transactions []domain.Transaction, period string) []domain.IncomeVsExpense {
	type bucket struct {
		key    string
		report domain.IncomeVsExpense
	}

	layout := monthKeyLayout
	if period == domain.PeriodYearly {
		layout = yearKeyLayout
	}

	index := make(map[string]int)
	buckets := make([]bucket, 0)

	for _, txn := range transactions {
		key := txn.Date.Format(layout)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, bucket{key: key, report: domain.IncomeVsExpense{Period: key}})
		}

		r := &buckets[i].report
		if txn.Kind == domain.TransactionIncome {
			r.Income = r.Income.Add(txn.Amount)
		} else if txn.Kind == domain.TransactionExpense {
			r.Expenses = r.Expenses.Add(txn.Amount)
		}
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].key < buckets[j].key })

	reports := make([]domain.IncomeVsExpense, len(buckets))
	for i, b := range buckets {
		b.report.NetSavings = b.report.Income.Sub(b.report.Expenses)
		if b.report.Income.IsPositive() {
			b.report.SavingsRate = b.report.NetSavings.InexactFloat64() / b.report.Income.InexactFloat64() * 100
		}
		reports[i] = b.report
	}
	return reports
}

func buildFinancialSummary(transactions []domain.Transaction, months int) domain.FinancialSummary {
	var summary domain.FinancialSummary

	categoryTotals := make(map[string]decimal.Decimal)
	categoryOrder := make([]string, 0)
	incomeByMonth := make(map[string]decimal.Decimal)
	incomeOrder := make([]string, 0)
	expenseByMonth := make(map[string]decimal.Decimal)
	expenseOrder := make([]string, 0)

	for _, txn := range transactions {
		monthKey := txn.Date.Format(longMonthLayout)
		if txn.Kind == domain.TransactionIncome {
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
			if _, ok := incomeByMonth[monthKey]; !ok {
				incomeOrder = append(incomeOrder, monthKey)
			}
			incomeByMonth[monthKey] = incomeByMonth[monthKey].Add(txn.Amount)
		} else if txn.Kind == domain.TransactionExpense {
			summary.TotalExpenses = summary.TotalExpenses.Add(txn.Amount)
			if _, ok := expenseByMonth[monthKey]; !ok {
				expenseOrder = append(expenseOrder, monthKey)
			}
			expenseByMonth[monthKey] = expenseByMonth[monthKey].Add(txn.Amount)

			// Only categorized spend competes for the top category. The
			// "Unknown" label covers a set category id whose record is gone.
			if txn.CategoryID != nil {
				name := "Unknown"
				if txn.Category != nil {
					name = txn.Category.Name
				}
				if _, ok := categoryTotals[name]; !ok {
					categoryOrder = append(categoryOrder, name)
				}
				categoryTotals[name] = categoryTotals[name].Add(txn.Amount)
			}
		}
	}

	summary.TotalSavings = summary.TotalIncome.Sub(summary.TotalExpenses)

	monthsDivisor := decimal.NewFromInt(int64(months))
	summary.AverageMonthlyIncome = summary.TotalIncome.Div(monthsDivisor)
	summary.AverageMonthlyExpenses = summary.TotalExpenses.Div(monthsDivisor)

	if summary.TotalIncome.IsPositive() {
		summary.SavingsRate = summary.TotalSavings.InexactFloat64() / summary.TotalIncome.InexactFloat64() * 100
	}

	summary.TopExpenseCategory = topByAmount(categoryOrder, categoryTotals, "No categories")
	summary.TopIncomeMonth = topByAmount(incomeOrder, incomeByMonth, "No data")
	summary.HighestExpenseMonth = topByAmount(expenseOrder, expenseByMonth, "No data")

	return summary
}

// topByAmount returns the key with the largest total, iterating in encounter
// order so the first key seen wins ties.
func topByAmount(order []string, totals map[string]decimal.Decimal, empty string) string {
	if len(order) == 0 {
		return empty
	}
	best := order[0]
	for _, key := range order[1:] {
		if totals[key].GreaterThan(totals[best]) {
			best = key
		}
	}
	return best
}
