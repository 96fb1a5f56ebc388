package api

import (
	"net/http"

	"github.com/finwell/finance-service/internal/domain"
)

const defaultAnalyticsMonths = 12

// SpendingTrendsHandler returns per-month income/expense/savings buckets.
func (h *Handlers) SpendingTrendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r, "months", defaultAnalyticsMonths)
	if err != nil || months <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid months")
		return
	}

	trends, err := h.service.SpendingTrends(r.Context(), userID, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trends)
}

// CategoryTrendsHandler returns the top expense categories with direction
// classification.
func (h *Handlers) CategoryTrendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r, "months", defaultAnalyticsMonths)
	if err != nil || months <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid months")
		return
	}

	trends, err := h.service.CategoryTrends(r.Context(), userID, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trends)
}

// IncomeVsExpenseHandler compares income against expenses per period.
func (h *Handlers) IncomeVsExpenseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r, "months", defaultAnalyticsMonths)
	if err != nil || months <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid months")
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = domain.PeriodMonthly
	}

	reports, err := h.service.IncomeVsExpense(r.Context(), userID, period, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

// FinancialSummaryHandler returns window-wide totals and standouts.
func (h *Handlers) FinancialSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r, "months", defaultAnalyticsMonths)
	if err != nil || months <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid months")
		return
	}

	summary, err := h.service.FinancialSummary(r.Context(), userID, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}
