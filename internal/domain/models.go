/**
 * @description
 * This file defines the core domain models for the finance-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and change sets
 *   ensures clear separation of concerns and type safety.
 * - Amounts and balances are `decimal.Decimal` values; a transaction's amount is
 *   always strictly positive and its sign is carried by the transaction kind.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind enumerates the supported account types.
type AccountKind string

const (
	AccountChecking   AccountKind = "CHECKING"
	AccountSavings    AccountKind = "SAVINGS"
	AccountCash       AccountKind = "CASH"
	AccountInvestment AccountKind = "INVESTMENT"
	AccountCredit     AccountKind = "CREDIT"
)

// Valid reports whether the kind is part of the closed account-kind set.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountCash, AccountInvestment, AccountCredit:
		return true
	}
	return false
}

// AllowsOverdraft reports whether the account kind may carry a negative balance.
// Only credit accounts are exempt from the overdraft policy.
func (k AccountKind) AllowsOverdraft() bool {
	return k == AccountCredit
}

// TransactionKind enumerates the supported transaction types.
type TransactionKind string

const (
	TransactionIncome   TransactionKind = "INCOME"
	TransactionExpense  TransactionKind = "EXPENSE"
	TransactionTransfer TransactionKind = "TRANSFER"
)

// Valid reports whether the kind is part of the closed transaction-kind set.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// BudgetPeriod enumerates the supported budget periods.
type BudgetPeriod string

const (
	BudgetWeekly  BudgetPeriod = "WEEKLY"
	BudgetMonthly BudgetPeriod = "MONTHLY"
	BudgetYearly  BudgetPeriod = "YEARLY"
)

// Valid reports whether the period is part of the closed budget-period set.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetWeekly, BudgetMonthly, BudgetYearly:
		return true
	}
	return false
}

// User represents a registered user of the service.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account represents a user's money account. The balance is maintained
// incrementally by the ledger engine and is never recomputed from history.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Kind      AccountKind     `json:"kind"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction represents a single ledger record against one account.
// This struct maps directly to the `transactions` table in the database.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Account and Category are joined views populated for display purposes.
	Account  *Account  `json:"account,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// Category represents display metadata used to classify expense transactions.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Budget represents a spending target over a bounded period, optionally
// scoped to a single category.
type Budget struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Period     BudgetPeriod    `json:"period"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty"`
}

// Budget status values reported by budget analytics.
const (
	BudgetOnTrack  = "ON_TRACK"
	BudgetWarning  = "WARNING"
	BudgetExceeded = "EXCEEDED"
)

// BudgetStatus is a budget joined with its consumption within the budget window.
type BudgetStatus struct {
	Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
}

// CreateTransactionRequest is the DTO for a new transaction intent handed to
// the ledger engine.
type CreateTransactionRequest struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
	Description string          `json:"description"`
}

// TransactionChanges is a partial change set for an existing transaction.
// Nil fields retain the stored value.
type TransactionChanges struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Kind        *TransactionKind `json:"kind,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// AccountChanges is a partial change set for an existing account.
type AccountChanges struct {
	Name    *string          `json:"name,omitempty"`
	Kind    *AccountKind     `json:"kind,omitempty"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// CategoryChanges is a partial change set for an existing category.
type CategoryChanges struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// BudgetChanges is a partial change set for an existing budget.
type BudgetChanges struct {
	Name       *string          `json:"name,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Period     *BudgetPeriod    `json:"period,omitempty"`
	StartDate  *time.Time       `json:"start_date,omitempty"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
}

// TransactionListOptions controls pagination and category filtering for
// transaction listings.
type TransactionListOptions struct {
	Limit      int
	Offset     int
	CategoryID *uuid.UUID
}
