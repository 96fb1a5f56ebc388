/**
 * @description
 * This file contains the shared plumbing for the finance-service's HTTP
 * handlers: the Handlers struct, JSON response helpers, request decoding,
 * and the mapping from service-layer errors to HTTP status codes. Handlers
 * are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/store: For service logic and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finwell/finance-service/internal/app"
	"github.com/finwell/finance-service/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and store errors onto HTTP status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var invalidInput *app.InvalidInputError
	if errors.As(err, &invalidInput) {
		h.writeError(w, http.StatusBadRequest, invalidInput.Error())
		return
	}

	var insufficientFunds *app.InsufficientFundsError
	if errors.As(err, &insufficientFunds) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   "insufficient funds",
			"balance": insufficientFunds.Balance.String(),
			"amount":  insufficientFunds.Amount.String(),
		})
		return
	}

	var rateLimited *app.RateLimitedError
	if errors.As(err, &rateLimited) {
		w.Header().Set("Retry-After", strconv.Itoa(rateLimited.RetryAfterSeconds))
		h.writeError(w, http.StatusTooManyRequests, rateLimited.Error())
		return
	}

	switch {
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrInvalidRefreshToken):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrEmailTaken):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrTransactionNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrBudgetNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, falling back to def
// when absent. Malformed values are an error.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
