package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

// CreateBudgetRequest carries the fields for a new budget.
type CreateBudgetRequest struct {
	Name       string              `json:"name"`
	Amount     decimal.Decimal     `json:"amount"`
	Period     domain.BudgetPeriod `json:"period"`
	StartDate  time.Time           `json:"start_date"`
	EndDate    time.Time           `json:"end_date"`
	CategoryID *uuid.UUID          `json:"category_id,omitempty"`
}

// CreateBudget creates a new spending budget.
func (s *Service) CreateBudget(ctx context.Context, userID uuid.UUID, req CreateBudgetRequest) (*domain.Budget, error) {
	if req.Name == "" {
		return nil, &InvalidInputError{Field: "name", Reason: "name is required"}
	}
	if !req.Period.Valid() {
		return nil, &InvalidInputError{Field: "period", Reason: fmt.Sprintf("unrecognized budget period %q", req.Period)}
	}
	if !req.Amount.IsPositive() {
		return nil, &InvalidInputError{Field: "amount", Reason: "amount must be strictly positive"}
	}

	budget := &domain.Budget{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       req.Name,
		Amount:     req.Amount,
		Period:     req.Period,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CategoryID: req.CategoryID,
	}
	if err := s.repo.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// ListBudgets returns all of the user's budgets.
func (s *Service) ListBudgets(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	return s.repo.FindBudgetsByUserID(ctx, userID)
}

// GetBudget returns one budget owned by the user.
func (s *Service) GetBudget(ctx context.Context, budgetID, userID uuid.UUID) (*domain.Budget, error) {
	return s.repo.FindBudgetByID(ctx, budgetID, userID)
}

// UpdateBudget applies a partial change set to a budget.
func (s *Service) UpdateBudget(ctx context.Context, budgetID, userID uuid.UUID, changes domain.BudgetChanges) (*domain.Budget, error) {
	if changes.Period != nil && !changes.Period.Valid() {
		return nil, &InvalidInputError{Field: "period", Reason: fmt.Sprintf("unrecognized budget period %q", *changes.Period)}
	}
	return s.repo.UpdateBudget(ctx, budgetID, userID, changes)
}

// DeleteBudget removes a budget.
func (s *Service) DeleteBudget(ctx context.Context, budgetID, userID uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, budgetID, userID)
}

// ActiveBudgets returns the budgets whose window covers the current instant.
func (s *Service) ActiveBudgets(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	return s.repo.FindActiveBudgets(ctx, userID, time.Now())
}

// BudgetAnalytics reports each budget's consumption: expenses inside the
// budget window (filtered to the budget's category when it has one) against
// the budgeted amount.
func (s *Service) BudgetAnalytics(ctx context.Context, userID uuid.UUID) ([]domain.BudgetStatus, error) {
	budgets, err := s.repo.FindBudgetsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		expenses, err := s.repo.FindExpenseTransactions(ctx, userID, budget.CategoryID, budget.StartDate, budget.EndDate)
		if err != nil {
			return nil, err
		}
		spent := decimal.Zero
		for _, txn := range expenses {
			spent = spent.Add(txn.Amount)
		}
		statuses = append(statuses, budgetStatus(budget, spent))
	}
	return statuses, nil
}

// budgetStatus classifies a budget's consumption. Status thresholds use the
// uncapped percentage; the reported percentage is then capped at 100.
func budgetStatus(budget domain.Budget, spent decimal.Decimal) domain.BudgetStatus {
	percentage := 0.0
	if budget.Amount.IsPositive() {
		percentage = spent.InexactFloat64() / budget.Amount.InexactFloat64() * 100
	}

	status := domain.BudgetOnTrack
	switch {
	case percentage >= 100:
		status = domain.BudgetExceeded
	case percentage >= 80:
		status = domain.BudgetWarning
	}
	if percentage > 100 {
		percentage = 100
	}

	return domain.BudgetStatus{
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget.Amount.Sub(spent),
		Percentage: percentage,
		Status:     status,
	}
}
