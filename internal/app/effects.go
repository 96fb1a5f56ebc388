/**
 * @description
 * This file contains the pure computation layer of the ledger engine: signed
 * effects, partial-change merging, and the balance planning for create, update
 * and delete. Keeping these free of storage concerns lets the engine's
 * correctness-critical arithmetic be tested without a database; the service
 * hands them to the repository's atomic primitives as decision callbacks.
 */

package app

import (
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

// signedEffect returns the balance delta a transaction contributes to its
// account: +amount for INCOME, -amount for EXPENSE and TRANSFER (this system
// models only the outgoing leg of a transfer).
func signedEffect(kind domain.TransactionKind, amount decimal.Decimal) decimal.Decimal {
	if kind == domain.TransactionIncome {
		return amount
	}
	return amount.Neg()
}

// mergeChanges overlays a partial change set onto a stored transaction.
// Nil fields retain the stored value.
func mergeChanges(old domain.Transaction, changes domain.TransactionChanges) domain.Transaction {
	merged := old
	if changes.Amount != nil {
		merged.Amount = *changes.Amount
	}
	if changes.Kind != nil {
		merged.Kind = *changes.Kind
	}
	if changes.CategoryID != nil {
		merged.CategoryID = changes.CategoryID
	}
	if changes.Date != nil {
		merged.Date = *changes.Date
	}
	if changes.Description != nil {
		merged.Description = *changes.Description
	}
	return merged
}

// planCreate computes the account balance after a new transaction commits,
// enforcing the overdraft policy for non-credit accounts.
func planCreate(account domain.Account, kind domain.TransactionKind, amount decimal.Decimal) (decimal.Decimal, error) {
	next := account.Balance.Add(signedEffect(kind, amount))
	if next.IsNegative() && !account.Kind.AllowsOverdraft() {
		return decimal.Zero, &InsufficientFundsError{Balance: account.Balance, Amount: amount}
	}
	return next, nil
}

// planUpdate computes the account balance after an existing transaction is
// amended. The old effect is reverted before the merged effect is applied;
// a naive incremental adjustment would be wrong whenever the old and new
// effects differ in sign.
func planUpdate(account domain.Account, old, merged domain.Transaction) (decimal.Decimal, error) {
	reverted := account.Balance.Sub(signedEffect(old.Kind, old.Amount))
	final := reverted.Add(signedEffect(merged.Kind, merged.Amount))
	if final.IsNegative() && !account.Kind.AllowsOverdraft() {
		return decimal.Zero, &InsufficientFundsError{Balance: reverted, Amount: merged.Amount}
	}
	return final, nil
}

// planDelete computes the account balance after a transaction's effect is
// reversed. Delete never checks the overdraft policy: refusing a removal that
// makes the ledger reflect reality would be incorrect.
func planDelete(account domain.Account, old domain.Transaction) decimal.Decimal {
	return account.Balance.Sub(signedEffect(old.Kind, old.Amount))
}
