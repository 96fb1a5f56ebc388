package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

// CreateAccount opens a new account with an opening balance. The opening
// balance is the one balance write that bypasses the ledger: from then on
// only committed transactions move it.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name string, kind domain.AccountKind, openingBalance decimal.Decimal) (*domain.Account, error) {
	if name == "" {
		return nil, &InvalidInputError{Field: "name", Reason: "name is required"}
	}
	if !kind.Valid() {
		return nil, &InvalidInputError{Field: "kind", Reason: fmt.Sprintf("unrecognized account kind %q", kind)}
	}

	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    name,
		Kind:    kind,
		Balance: openingBalance,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all of the user's accounts.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	return s.repo.FindAccountsByUserID(ctx, userID)
}

// GetAccount returns one account owned by the user.
func (s *Service) GetAccount(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, accountID, userID)
}

// UpdateAccount applies a partial change set to an account.
func (s *Service) UpdateAccount(ctx context.Context, accountID, userID uuid.UUID, changes domain.AccountChanges) (*domain.Account, error) {
	if changes.Kind != nil && !changes.Kind.Valid() {
		return nil, &InvalidInputError{Field: "kind", Reason: fmt.Sprintf("unrecognized account kind %q", *changes.Kind)}
	}
	return s.repo.UpdateAccount(ctx, accountID, userID, changes)
}

// DeleteAccount removes an account and its transactions.
func (s *Service) DeleteAccount(ctx context.Context, accountID, userID uuid.UUID) error {
	return s.repo.DeleteAccount(ctx, accountID, userID)
}

// TotalBalance returns the sum of all the user's account balances.
func (s *Service) TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.TotalBalance(ctx, userID)
}
