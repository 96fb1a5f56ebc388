package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finwell/finance-service/internal/domain"
)

func TestBudgetStatusClassification(t *testing.T) {
	budget := domain.Budget{Amount: dec("100")}

	tests := []struct {
		name           string
		spent          string
		wantStatus     string
		wantPercentage float64
	}{
		{"under 80 percent is on track", "50", domain.BudgetOnTrack, 50},
		{"at 80 percent warns", "80", domain.BudgetWarning, 80},
		{"at limit is exceeded", "100", domain.BudgetExceeded, 100},
		{"over limit caps reported percentage", "150", domain.BudgetExceeded, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := budgetStatus(budget, dec(tt.spent))
			if status.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, status.Status)
			}
			if status.Percentage != tt.wantPercentage {
				t.Fatalf("expected percentage %f, got %f", tt.wantPercentage, status.Percentage)
			}
			if !status.Remaining.Equal(budget.Amount.Sub(dec(tt.spent))) {
				t.Fatalf("expected remaining %s, got %s", budget.Amount.Sub(dec(tt.spent)), status.Remaining)
			}
		})
	}
}

func TestBudgetStatus_ZeroAmountBudget(t *testing.T) {
	status := budgetStatus(domain.Budget{Amount: dec("0")}, dec("25"))
	if status.Percentage != 0 {
		t.Fatalf("expected zero percentage for zero-amount budget, got %f", status.Percentage)
	}
	if status.Status != domain.BudgetOnTrack {
		t.Fatalf("expected on-track status, got %s", status.Status)
	}
}

func TestBudgetAnalytics_SumsCategoryExpensesInWindow(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "1000")

	category := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Groceries"}
	if err := repo.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	start := time.Now().AddDate(0, -1, 0)
	end := time.Now().AddDate(0, 1, 0)
	budget, err := svc.CreateBudget(context.Background(), userID, CreateBudgetRequest{
		Name:       "Monthly groceries",
		Amount:     dec("200"),
		Period:     domain.BudgetMonthly,
		StartDate:  start,
		EndDate:    end,
		CategoryID: &category.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two in-category expenses plus one uncategorized that must not count.
	for _, amount := range []string{"60", "90"} {
		if _, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
			AccountID:  accountID,
			Amount:     dec(amount),
			Kind:       domain.TransactionExpense,
			CategoryID: &category.ID,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("500"),
		Kind:      domain.TransactionExpense,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses, err := svc.BudgetAnalytics(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 budget status, got %d", len(statuses))
	}
	got := statuses[0]
	if got.ID != budget.ID {
		t.Fatalf("expected status for budget %s, got %s", budget.ID, got.ID)
	}
	if !got.Spent.Equal(dec("150")) {
		t.Fatalf("expected spent 150, got %s", got.Spent)
	}
	if got.Status != domain.BudgetOnTrack {
		t.Fatalf("expected on-track status, got %s", got.Status)
	}
}

func TestActiveBudgets_FiltersByWindow(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	if _, err := svc.CreateBudget(context.Background(), userID, CreateBudgetRequest{
		Name:      "Current",
		Amount:    dec("100"),
		Period:    domain.BudgetMonthly,
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 1, 0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateBudget(context.Background(), userID, CreateBudgetRequest{
		Name:      "Expired",
		Amount:    dec("100"),
		Period:    domain.BudgetMonthly,
		StartDate: time.Now().AddDate(0, -3, 0),
		EndDate:   time.Now().AddDate(0, -2, 0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := svc.ActiveBudgets(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Current" {
		t.Fatalf("expected only the current budget, got %d entries", len(active))
	}
}
