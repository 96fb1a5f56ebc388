package app

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

func txnAt(kind domain.TransactionKind, amount string, year int, month time.Month) domain.Transaction {
	return domain.Transaction{
		ID:     uuid.New(),
		Kind:   kind,
		Amount: dec(amount),
		Date:   time.Date(year, month, 15, 12, 0, 0, 0, time.UTC),
	}
}

func expenseIn(category *domain.Category, amount string, year int, month time.Month) domain.Transaction {
	txn := txnAt(domain.TransactionExpense, amount, year, month)
	if category != nil {
		txn.CategoryID = &category.ID
		txn.Category = category
	}
	return txn
}

func TestBuildSpendingTrends(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(domain.TransactionIncome, "1000", 2026, time.February),
		txnAt(domain.TransactionExpense, "300", 2026, time.February),
		txnAt(domain.TransactionTransfer, "100", 2026, time.February),
		txnAt(domain.TransactionIncome, "500", 2026, time.January),
	}

	trends := buildSpendingTrends(txns)
	if len(trends) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(trends))
	}

	jan := trends[0]
	if jan.Month != "Jan" || jan.Year != 2026 {
		t.Fatalf("expected first bucket Jan 2026, got %s %d", jan.Month, jan.Year)
	}
	if !jan.Income.Equal(dec("500")) || !jan.Savings.Equal(dec("500")) {
		t.Fatalf("expected Jan income/savings 500, got %s/%s", jan.Income, jan.Savings)
	}

	feb := trends[1]
	if !feb.Income.Equal(dec("1000")) {
		t.Fatalf("expected Feb income 1000, got %s", feb.Income)
	}
	// The transfer is counted but contributes nothing to expenses.
	if !feb.Expenses.Equal(dec("300")) {
		t.Fatalf("expected Feb expenses 300, got %s", feb.Expenses)
	}
	if !feb.Savings.Equal(dec("700")) {
		t.Fatalf("expected Feb savings 700, got %s", feb.Savings)
	}
	if feb.TransactionCount != 3 {
		t.Fatalf("expected Feb transaction count 3, got %d", feb.TransactionCount)
	}
}

func TestTransfersNeverEnterIncomeOrExpenseTotals(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(domain.TransactionTransfer, "100", 2026, time.February),
	}

	trends := buildSpendingTrends(txns)
	if len(trends) != 1 {
		t.Fatalf("expected 1 month bucket, got %d", len(trends))
	}
	if !trends[0].Income.IsZero() || !trends[0].Expenses.IsZero() {
		t.Fatalf("expected zero income and expenses, got %s/%s", trends[0].Income, trends[0].Expenses)
	}
	if trends[0].TransactionCount != 1 {
		t.Fatalf("expected transaction count 1, got %d", trends[0].TransactionCount)
	}

	reports := buildIncomeVsExpense(txns, domain.PeriodMonthly)
	if len(reports) != 1 {
		t.Fatalf("expected 1 period bucket, got %d", len(reports))
	}
	if !reports[0].Income.IsZero() || !reports[0].Expenses.IsZero() {
		t.Fatalf("expected zero income and expenses, got %s/%s", reports[0].Income, reports[0].Expenses)
	}

	summary := buildFinancialSummary(txns, 1)
	if !summary.TotalIncome.IsZero() || !summary.TotalExpenses.IsZero() {
		t.Fatalf("expected zero totals, got %s/%s", summary.TotalIncome, summary.TotalExpenses)
	}
	if summary.HighestExpenseMonth != "No data" {
		t.Fatalf("expected no expense months, got %q", summary.HighestExpenseMonth)
	}
}

func TestBuildCategoryTrends_Classification(t *testing.T) {
	groceries := &domain.Category{ID: uuid.New(), Name: "Groceries", Color: "#FF6B6B", Icon: "restaurant"}

	tests := []struct {
		name    string
		amounts []string
		want    string
	}{
		{"rising halves classify increasing", []string{"100", "100", "300", "300"}, domain.TrendIncreasing},
		{"flat halves classify stable", []string{"100", "100", "100", "100"}, domain.TrendStable},
		{"falling halves classify decreasing", []string{"300", "300", "100", "100"}, domain.TrendDecreasing},
		{"single month is stable", []string{"250"}, domain.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txns []domain.Transaction
			for i, amount := range tt.amounts {
				txns = append(txns, expenseIn(groceries, amount, 2026, time.Month(i+1)))
			}

			trends := buildCategoryTrends(txns, len(tt.amounts))
			if len(trends) != 1 {
				t.Fatalf("expected 1 category trend, got %d", len(trends))
			}
			if trends[0].Trend != tt.want {
				t.Fatalf("expected trend %s, got %s", tt.want, trends[0].Trend)
			}
		})
	}
}

func TestBuildCategoryTrends_OddMonthCountSplitsAfterFloor(t *testing.T) {
	// Five months split 2/3: first half mean 100, second half mean 100, so
	// the middle month belongs to the second half and the series is stable.
	groceries := &domain.Category{ID: uuid.New(), Name: "Groceries"}
	txns := []domain.Transaction{
		expenseIn(groceries, "100", 2026, time.January),
		expenseIn(groceries, "100", 2026, time.February),
		expenseIn(groceries, "100", 2026, time.March),
		expenseIn(groceries, "100", 2026, time.April),
		expenseIn(groceries, "100", 2026, time.May),
	}

	trends := buildCategoryTrends(txns, 5)
	if trends[0].Trend != domain.TrendStable {
		t.Fatalf("expected stable trend, got %s", trends[0].Trend)
	}
}

func TestBuildCategoryTrends_AverageAndRanking(t *testing.T) {
	groceries := &domain.Category{ID: uuid.New(), Name: "Groceries"}
	transport := &domain.Category{ID: uuid.New(), Name: "Transport"}

	txns := []domain.Transaction{
		expenseIn(transport, "50", 2026, time.January),
		expenseIn(groceries, "200", 2026, time.January),
		expenseIn(groceries, "100", 2026, time.February),
		// Income and uncategorized expenses never enter category trends.
		txnAt(domain.TransactionIncome, "5000", 2026, time.January),
		txnAt(domain.TransactionExpense, "75", 2026, time.January),
	}

	trends := buildCategoryTrends(txns, 3)
	if len(trends) != 2 {
		t.Fatalf("expected 2 category trends, got %d", len(trends))
	}
	if trends[0].CategoryName != "Groceries" {
		t.Fatalf("expected Groceries ranked first, got %s", trends[0].CategoryName)
	}
	if !trends[0].TotalAmount.Equal(dec("300")) {
		t.Fatalf("expected Groceries total 300, got %s", trends[0].TotalAmount)
	}
	// Average divides by the requested window, not by active months.
	if !trends[0].AverageMonthly.Equal(dec("100")) {
		t.Fatalf("expected Groceries monthly average 100, got %s", trends[0].AverageMonthly)
	}
	if len(trends[0].MonthlyData) != 2 {
		t.Fatalf("expected 2 monthly buckets for Groceries, got %d", len(trends[0].MonthlyData))
	}
	if trends[0].MonthlyData[0].Month != "Jan" {
		t.Fatalf("expected monthly data sorted chronologically, first month %s", trends[0].MonthlyData[0].Month)
	}
}

func TestBuildCategoryTrends_KeepsTopTen(t *testing.T) {
	var txns []domain.Transaction
	for i := 0; i < 12; i++ {
		category := &domain.Category{ID: uuid.New(), Name: "Category"}
		txns = append(txns, expenseIn(category, decimal.NewFromInt(int64(20+i)).String(), 2026, time.January))
	}

	trends := buildCategoryTrends(txns, 1)
	if len(trends) != 10 {
		t.Fatalf("expected trends truncated to 10, got %d", len(trends))
	}
	for i := 1; i < len(trends); i++ {
		if trends[i].TotalAmount.GreaterThan(trends[i-1].TotalAmount) {
			t.Fatalf("expected totals sorted descending at index %d", i)
		}
	}
}

func TestBuildIncomeVsExpense_MonthlyKeysSortedChronologically(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(domain.TransactionExpense, "200", 2026, time.March),
		txnAt(domain.TransactionIncome, "1000", 2025, time.December),
		txnAt(domain.TransactionIncome, "800", 2026, time.March),
	}

	reports := buildIncomeVsExpense(txns, domain.PeriodMonthly)
	if len(reports) != 2 {
		t.Fatalf("expected 2 period buckets, got %d", len(reports))
	}
	if reports[0].Period != "2025-12" || reports[1].Period != "2026-03" {
		t.Fatalf("expected periods [2025-12 2026-03], got [%s %s]", reports[0].Period, reports[1].Period)
	}

	march := reports[1]
	if !march.NetSavings.Equal(dec("600")) {
		t.Fatalf("expected March net savings 600, got %s", march.NetSavings)
	}
	if march.SavingsRate != 75 {
		t.Fatalf("expected March savings rate 75, got %f", march.SavingsRate)
	}
}

func TestBuildIncomeVsExpense_YearlyBuckets(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(domain.TransactionIncome, "100", 2025, time.January),
		txnAt(domain.TransactionIncome, "200", 2025, time.November),
		txnAt(domain.TransactionExpense, "50", 2026, time.February),
	}

	reports := buildIncomeVsExpense(txns, domain.PeriodYearly)
	if len(reports) != 2 {
		t.Fatalf("expected 2 year buckets, got %d", len(reports))
	}
	if reports[0].Period != "2025" || reports[1].Period != "2026" {
		t.Fatalf("expected periods [2025 2026], got [%s %s]", reports[0].Period, reports[1].Period)
	}
	if !reports[0].Income.Equal(dec("300")) {
		t.Fatalf("expected 2025 income 300, got %s", reports[0].Income)
	}
	// A bucket without income reports a zero savings rate.
	if reports[1].SavingsRate != 0 {
		t.Fatalf("expected zero savings rate without income, got %f", reports[1].SavingsRate)
	}
}

func TestBuildFinancialSummary(t *testing.T) {
	groceries := &domain.Category{ID: uuid.New(), Name: "Groceries"}
	txns := []domain.Transaction{
		txnAt(domain.TransactionIncome, "1000", 2026, time.May),
		expenseIn(groceries, "400", 2026, time.May),
	}

	summary := buildFinancialSummary(txns, 1)
	if !summary.TotalSavings.Equal(dec("600")) {
		t.Fatalf("expected total savings 600, got %s", summary.TotalSavings)
	}
	if summary.SavingsRate != 60 {
		t.Fatalf("expected savings rate 60, got %f", summary.SavingsRate)
	}
	if !summary.AverageMonthlyIncome.Equal(dec("1000")) {
		t.Fatalf("expected average monthly income 1000, got %s", summary.AverageMonthlyIncome)
	}
	if summary.TopExpenseCategory != "Groceries" {
		t.Fatalf("expected top expense category Groceries, got %s", summary.TopExpenseCategory)
	}
	if summary.TopIncomeMonth != "May 2026" {
		t.Fatalf("expected top income month 'May 2026', got %q", summary.TopIncomeMonth)
	}
	if summary.HighestExpenseMonth != "May 2026" {
		t.Fatalf("expected highest expense month 'May 2026', got %q", summary.HighestExpenseMonth)
	}
}

func TestBuildFinancialSummary_EmptyWindowSentinels(t *testing.T) {
	summary := buildFinancialSummary(nil, 6)
	if summary.TopExpenseCategory != "No categories" {
		t.Fatalf("expected 'No categories', got %q", summary.TopExpenseCategory)
	}
	if summary.TopIncomeMonth != "No data" || summary.HighestExpenseMonth != "No data" {
		t.Fatalf("expected 'No data' sentinels, got %q and %q", summary.TopIncomeMonth, summary.HighestExpenseMonth)
	}
	if summary.SavingsRate != 0 {
		t.Fatalf("expected zero savings rate, got %f", summary.SavingsRate)
	}
}

func TestBuildFinancialSummary_TiesFavorFirstSeen(t *testing.T) {
	first := &domain.Category{ID: uuid.New(), Name: "First"}
	second := &domain.Category{ID: uuid.New(), Name: "Second"}
	txns := []domain.Transaction{
		expenseIn(first, "100", 2026, time.January),
		expenseIn(second, "100", 2026, time.January),
	}

	summary := buildFinancialSummary(txns, 1)
	if summary.TopExpenseCategory != "First" {
		t.Fatalf("expected tie to favor first-seen category, got %q", summary.TopExpenseCategory)
	}
}

func TestBuildFinancialSummary_UncategorizedSpendNeverCompetes(t *testing.T) {
	groceries := &domain.Category{ID: uuid.New(), Name: "Groceries"}
	txns := []domain.Transaction{
		txnAt(domain.TransactionExpense, "900", 2026, time.January),
		expenseIn(groceries, "40", 2026, time.January),
	}

	summary := buildFinancialSummary(txns, 1)
	// The uncategorized 900 counts toward totals but not the top category.
	if !summary.TotalExpenses.Equal(dec("940")) {
		t.Fatalf("expected total expenses 940, got %s", summary.TotalExpenses)
	}
	if summary.TopExpenseCategory != "Groceries" {
		t.Fatalf("expected top expense category Groceries, got %q", summary.TopExpenseCategory)
	}
}

func TestBuildFinancialSummary_OnlyUncategorizedSpendMeansNoCategories(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(domain.TransactionExpense, "40", 2026, time.January),
	}

	summary := buildFinancialSummary(txns, 1)
	if summary.TopExpenseCategory != "No categories" {
		t.Fatalf("expected 'No categories' when all spend is uncategorized, got %q", summary.TopExpenseCategory)
	}
}

func TestBuildFinancialSummary_DanglingCategoryReportsUnknown(t *testing.T) {
	// Category id set but the joined record is gone (deleted category).
	danglingID := uuid.New()
	txn := txnAt(domain.TransactionExpense, "40", 2026, time.January)
	txn.CategoryID = &danglingID

	summary := buildFinancialSummary([]domain.Transaction{txn}, 1)
	if summary.TopExpenseCategory != "Unknown" {
		t.Fatalf("expected Unknown for a dangling category id, got %q", summary.TopExpenseCategory)
	}
}
