package api

import (
	"net/http"

	"github.com/finwell/finance-service/internal/app"
	"github.com/finwell/finance-service/internal/domain"
)

// CreateBudgetHandler creates a new budget.
func (h *Handlers) CreateBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req app.CreateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.service.CreateBudget(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, budget)
}

// ListBudgetsHandler returns all of the user's budgets.
func (h *Handlers) ListBudgetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	budgets, err := h.service.ListBudgets(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, budgets)
}

// GetBudgetHandler returns a single budget.
func (h *Handlers) GetBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.service.GetBudget(r.Context(), budgetID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, budget)
}

// UpdateBudgetHandler applies a partial update to a budget.
func (h *Handlers) UpdateBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var changes domain.BudgetChanges
	if err := decodeJSON(r, &changes); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.service.UpdateBudget(r.Context(), budgetID, userID, changes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, budget)
}

// DeleteBudgetHandler removes a budget.
func (h *Handlers) DeleteBudgetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteBudget(r.Context(), budgetID, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BudgetAnalyticsHandler reports consumption for every budget.
func (h *Handlers) BudgetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	statuses, err := h.service.BudgetAnalytics(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statuses)
}

// ActiveBudgetsHandler returns budgets whose window covers now.
func (h *Handlers) ActiveBudgetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	budgets, err := h.service.ActiveBudgets(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, budgets)
}
