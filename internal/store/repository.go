/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the finance-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * The three *Atomic methods are the storage gateway's serializable read-modify-write
 * primitives: each one locks the affected account row, invokes a pure decision callback
 * supplied by the ledger engine, and commits the transaction row and the balance write
 * as one unit. A non-nil error from the callback aborts the whole operation.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - github.com/shopspring/decimal: For balances and amounts.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBudgetNotFound      = errors.New("budget not found")
)

// BalanceDecision inspects the locked account and returns the balance the
// account must hold after the new transaction commits.
type BalanceDecision func(account domain.Account) (decimal.Decimal, error)

// TransactionMutation inspects the locked transaction and account rows and
// returns the merged transaction together with the account's final balance.
type TransactionMutation func(old domain.Transaction, account domain.Account) (domain.Transaction, decimal.Decimal, error)

// TransactionReversal inspects the locked transaction and account rows and
// returns the account balance after the transaction's effect is reversed.
type TransactionReversal func(old domain.Transaction, account domain.Account) decimal.Decimal

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Account methods
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccountByID(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)
	FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID, userID uuid.UUID, changes domain.AccountChanges) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID, userID uuid.UUID) error
	TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// Category methods
	CreateCategory(ctx context.Context, category *domain.Category) error
	FindCategoryByID(ctx context.Context, categoryID, userID uuid.UUID) (*domain.Category, error)
	FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID, userID uuid.UUID, changes domain.CategoryChanges) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) error

	// Budget methods
	CreateBudget(ctx context.Context, budget *domain.Budget) error
	FindBudgetByID(ctx context.Context, budgetID, userID uuid.UUID) (*domain.Budget, error)
	FindBudgetsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error)
	FindActiveBudgets(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, budgetID, userID uuid.UUID, changes domain.BudgetChanges) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, budgetID, userID uuid.UUID) error

	// Ledger primitives. Each executes as one atomic unit against the pair
	// (account row, transaction row); mutations on the same account are
	// serialized, different accounts proceed in parallel.
	CreateTransactionAtomic(ctx context.Context, txn *domain.Transaction, decide BalanceDecision) (*domain.Transaction, error)
	UpdateTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, mutate TransactionMutation) (*domain.Transaction, error)
	DeleteTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, reverse TransactionReversal) error

	// Transaction reads
	FindTransactionByID(ctx context.Context, transactionID, userID uuid.UUID) (*domain.Transaction, error)
	FindTransactionsByUserID(ctx context.Context, userID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error)
	FindTransactionsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Transaction, error)
	FindExpenseTransactions(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]domain.Transaction, error)
}
