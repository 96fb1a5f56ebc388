/**
 * @description
 * This file sets up the HTTP router for the finance-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the finance service.
func Routes(h *Handlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public authentication endpoints.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
		r.Post("/refresh", h.RefreshHandler)
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccountsHandler)
			r.Post("/", h.CreateAccountHandler)
			r.Get("/total-balance", h.TotalBalanceHandler)
			r.Get("/{accountID}", h.GetAccountHandler)
			r.Put("/{accountID}", h.UpdateAccountHandler)
			r.Delete("/{accountID}", h.DeleteAccountHandler)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactionsHandler)
			r.Post("/", h.CreateTransactionHandler)
			r.Put("/{transactionID}", h.UpdateTransactionHandler)
			r.Delete("/{transactionID}", h.DeleteTransactionHandler)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategoriesHandler)
			r.Post("/", h.CreateCategoryHandler)
			r.Post("/seed-defaults", h.SeedDefaultCategoriesHandler)
			r.Get("/{categoryID}", h.GetCategoryHandler)
			r.Put("/{categoryID}", h.UpdateCategoryHandler)
			r.Delete("/{categoryID}", h.DeleteCategoryHandler)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgetsHandler)
			r.Post("/", h.CreateBudgetHandler)
			r.Get("/analytics", h.BudgetAnalyticsHandler)
			r.Get("/active", h.ActiveBudgetsHandler)
			r.Get("/{budgetID}", h.GetBudgetHandler)
			r.Put("/{budgetID}", h.UpdateBudgetHandler)
			r.Delete("/{budgetID}", h.DeleteBudgetHandler)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/spending-trends", h.SpendingTrendsHandler)
			r.Get("/category-trends", h.CategoryTrendsHandler)
			r.Get("/income-vs-expense", h.IncomeVsExpenseHandler)
			r.Get("/summary", h.FinancialSummaryHandler)
		})
	})

	return r
}
