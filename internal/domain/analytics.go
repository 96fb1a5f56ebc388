package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trend classifications produced by category trend analysis.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Analytics period granularities for income-vs-expense series.
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// SpendingTrend is one calendar-month bucket of a user's activity.
type SpendingTrend struct {
	Month            string          `json:"month"` // short month name, e.g. "Jan"
	Year             int             `json:"year"`
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Savings          decimal.Decimal `json:"savings"`
	TransactionCount int             `json:"transaction_count"`
}

// CategoryMonth is one monthly bucket within a category trend.
type CategoryMonth struct {
	Month            string          `json:"month"`
	Year             int             `json:"year"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transaction_count"`
}

// CategoryTrend aggregates a single category's expense activity over the
// requested window, with a coarse direction classification.
type CategoryTrend struct {
	CategoryID     uuid.UUID       `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	CategoryColor  string          `json:"category_color"`
	CategoryIcon   string          `json:"category_icon"`
	MonthlyData    []CategoryMonth `json:"monthly_data"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AverageMonthly decimal.Decimal `json:"average_monthly"`
	Trend          string          `json:"trend"`
}

// IncomeVsExpense is one period bucket comparing income against expenses.
type IncomeVsExpense struct {
	Period      string          `json:"period"` // "YYYY-MM" or "YYYY"
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	NetSavings  decimal.Decimal `json:"net_savings"`
	SavingsRate float64         `json:"savings_rate"`
}

// FinancialSummary aggregates a user's totals over the requested window.
type FinancialSummary struct {
	TotalIncome            decimal.Decimal `json:"total_income"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	TotalSavings           decimal.Decimal `json:"total_savings"`
	AverageMonthlyIncome   decimal.Decimal `json:"average_monthly_income"`
	AverageMonthlyExpenses decimal.Decimal `json:"average_monthly_expenses"`
	SavingsRate            float64         `json:"savings_rate"`
	TopExpenseCategory     string          `json:"top_expense_category"`
	TopIncomeMonth         string          `json:"top_income_month"`
	HighestExpenseMonth    string          `json:"highest_expense_month"`
}
