package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

type createAccountRequest struct {
	Name    string             `json:"name"`
	Kind    domain.AccountKind `json:"kind"`
	Balance decimal.Decimal    `json:"balance"`
}

// CreateAccountHandler opens a new account with an opening balance.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.CreateAccount(r.Context(), userID, req.Name, req.Kind, req.Balance)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// ListAccountsHandler returns all of the user's accounts.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// GetAccountHandler returns a single account.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// UpdateAccountHandler applies a partial update to an account.
func (h *Handlers) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var changes domain.AccountChanges
	if err := decodeJSON(r, &changes); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.UpdateAccount(r.Context(), accountID, userID, changes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// DeleteAccountHandler removes an account and its transactions.
func (h *Handlers) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TotalBalanceHandler returns the sum of all the user's account balances.
func (h *Handlers) TotalBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	total, err := h.service.TotalBalance(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total_balance": total})
}
