/**
 * @description
 * This file contains the ledger engine's service-layer operations: creating,
 * updating, deleting and listing transactions. Every mutation validates its
 * input, charges the write rate limit, and then delegates the balance
 * arithmetic to the pure planning functions in effects.go, executed inside
 * the repository's atomic primitives so the transaction row and the account
 * balance always commit together.
 *
 * Key invariants upheld here:
 * - An account balance only changes together with the transaction row that
 *   explains the change.
 * - A non-credit account never commits to a negative balance.
 * - Updates revert the old effect before applying the new one, so kind flips
 *   and account-preserving amends stay exact.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
	"github.com/finwell/finance-service/pkg/rabbitmq"
)

// Routing keys for ledger events published after a committed mutation.
const (
	routingKeyTransactionCreated = "ledger.transaction.created"
	routingKeyTransactionUpdated = "ledger.transaction.updated"
	routingKeyTransactionDeleted = "ledger.transaction.deleted"
)

// CreateTransaction validates and commits a new transaction, adjusting the
// account balance atomically. The transaction amount must be strictly
// positive; direction is carried by the kind.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if !req.Kind.Valid() {
		return nil, &InvalidInputError{Field: "kind", Reason: fmt.Sprintf("unrecognized transaction kind %q", req.Kind)}
	}
	if !req.Amount.IsPositive() {
		return nil, &InvalidInputError{Field: "amount", Reason: "amount must be strictly positive"}
	}
	if req.AccountID == uuid.Nil {
		return nil, &InvalidInputError{Field: "account_id", Reason: "account_id is required"}
	}
	if err := s.consumeWriteBudget(ctx, userID.String()); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Description: req.Description,
		Date:        date,
	}

	created, err := s.repo.CreateTransactionAtomic(ctx, txn, func(account domain.Account) (decimal.Decimal, error) {
		return planCreate(account, req.Kind, req.Amount)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=ledger msg=\"transaction created\" transaction_id=%s account_id=%s kind=%s amount=%s", created.ID, created.AccountID, created.Kind, created.Amount)
	s.publishLedgerEvent(ctx, routingKeyTransactionCreated, created)
	return created, nil
}

// UpdateTransaction amends an existing transaction with a partial change set.
// The stored effect is reverted and the merged effect applied in one atomic
// unit; the overdraft policy is re-checked against the reverted balance.
func (s *Service) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, changes domain.TransactionChanges) (*domain.Transaction, error) {
	if changes.Kind != nil && !changes.Kind.Valid() {
		return nil, &InvalidInputError{Field: "kind", Reason: fmt.Sprintf("unrecognized transaction kind %q", *changes.Kind)}
	}
	if changes.Amount != nil && !changes.Amount.IsPositive() {
		return nil, &InvalidInputError{Field: "amount", Reason: "amount must be strictly positive"}
	}
	if err := s.consumeWriteBudget(ctx, userID.String()); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateTransactionAtomic(ctx, transactionID, userID, func(old domain.Transaction, account domain.Account) (domain.Transaction, decimal.Decimal, error) {
		merged := mergeChanges(old, changes)
		final, err := planUpdate(account, old, merged)
		if err != nil {
			return domain.Transaction{}, decimal.Zero, err
		}
		return merged, final, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=ledger msg=\"transaction updated\" transaction_id=%s account_id=%s kind=%s amount=%s", updated.ID, updated.AccountID, updated.Kind, updated.Amount)
	s.publishLedgerEvent(ctx, routingKeyTransactionUpdated, updated)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its effect on the
// account balance. Reversal is unconditional: no overdraft check applies.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	if err := s.consumeWriteBudget(ctx, userID.String()); err != nil {
		return err
	}

	var event rabbitmq.LedgerEvent
	err := s.repo.DeleteTransactionAtomic(ctx, transactionID, userID, func(old domain.Transaction, account domain.Account) decimal.Decimal {
		newBalance := planDelete(account, old)
		event = rabbitmq.LedgerEvent{
			UserID:        userID,
			TransactionID: old.ID,
			AccountID:     old.AccountID,
			Kind:          string(old.Kind),
			Amount:        old.Amount,
			Balance:       newBalance,
			OccurredAt:    time.Now().UTC(),
		}
		return newBalance
	})
	if err != nil {
		return err
	}

	log.Printf("level=info component=ledger msg=\"transaction deleted\" transaction_id=%s account_id=%s", event.TransactionID, event.AccountID)
	if s.events != nil {
		if pubErr := s.events.Publish(ctx, s.eventExchange, routingKeyTransactionDeleted, event); pubErr != nil {
			log.Printf("level=warn component=ledger msg=\"ledger event publish failed\" routing_key=%s err=%v", routingKeyTransactionDeleted, pubErr)
		}
	}
	return nil
}

// ListTransactions returns the user's transactions newest-first with optional
// pagination and category filtering.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error) {
	return s.repo.FindTransactionsByUserID(ctx, userID, opts)
}

func (s *Service) publishLedgerEvent(ctx context.Context, routingKey string, txn *domain.Transaction) {
	if s.events == nil {
		return
	}
	event := rabbitmq.LedgerEvent{
		UserID:        txn.UserID,
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Kind:          string(txn.Kind),
		Amount:        txn.Amount,
		OccurredAt:    time.Now().UTC(),
	}
	if txn.Account != nil {
		event.Balance = txn.Account.Balance
	}
	if err := s.events.Publish(ctx, s.eventExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=ledger msg=\"ledger event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
