package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/finwell/finance-service/internal/domain"
)

// CreateTransactionHandler records a new transaction through the ledger engine.
func (h *Handlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req domain.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.service.CreateTransaction(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, txn)
}

// ListTransactionsHandler returns the user's transactions newest-first,
// with optional limit, offset and category query parameters.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	opts := domain.TransactionListOptions{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid category_id")
			return
		}
		opts.CategoryID = &categoryID
	}

	txns, err := h.service.ListTransactions(r.Context(), userID, opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txns)
}

// UpdateTransactionHandler amends a transaction with a partial change set.
func (h *Handlers) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var changes domain.TransactionChanges
	if err := decodeJSON(r, &changes); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.service.UpdateTransaction(r.Context(), userID, transactionID, changes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txn)
}

// DeleteTransactionHandler removes a transaction and reverses its effect.
func (h *Handlers) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
