package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
	"github.com/finwell/finance-service/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryRepository) {
	t.Helper()
	repo := store.NewMemoryRepository()
	svc := NewService(repo, nil, "finwell.events", "test-secret", "test-refresh-secret", 15*time.Minute, 168*time.Hour)
	return svc, repo
}

func seedAccount(t *testing.T, repo *store.MemoryRepository, kind domain.AccountKind, balance string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    "Main",
		Kind:    kind,
		Balance: dec(balance),
	}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return userID, account.ID
}

func accountBalance(t *testing.T, repo *store.MemoryRepository, accountID, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	account, err := repo.FindAccountByID(context.Background(), accountID, userID)
	if err != nil {
		t.Fatalf("failed to read account: %v", err)
	}
	return account.Balance
}

func TestCreateTransaction_AdjustsBalance(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	txn, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("40"),
		Kind:      domain.TransactionExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID == uuid.Nil {
		t.Fatal("expected a transaction ID")
	}
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("60")) {
		t.Fatalf("expected balance 60, got %s", got)
	}
}

func TestCreateTransaction_RejectsInvalidInputWithoutMutation(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	tests := []struct {
		name string
		req  domain.CreateTransactionRequest
	}{
		{"zero amount", domain.CreateTransactionRequest{AccountID: accountID, Amount: dec("0"), Kind: domain.TransactionExpense}},
		{"negative amount", domain.CreateTransactionRequest{AccountID: accountID, Amount: dec("-10"), Kind: domain.TransactionIncome}},
		{"unknown kind", domain.CreateTransactionRequest{AccountID: accountID, Amount: dec("10"), Kind: "WITHDRAWAL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), userID, tt.req)
			var invalidInput *InvalidInputError
			if !errors.As(err, &invalidInput) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("100")) {
				t.Fatalf("expected balance unchanged at 100, got %s", got)
			}
		})
	}
}

func TestCreateTransaction_OverdraftRejectionLeavesStateUntouched(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	_, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("150"),
		Kind:      domain.TransactionExpense,
	})
	var insufficientFunds *InsufficientFundsError
	if !errors.As(err, &insufficientFunds) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}

	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("100")) {
		t.Fatalf("expected balance unchanged at 100, got %s", got)
	}
	txns, err := repo.FindTransactionsByUserID(context.Background(), userID, domain.TransactionListOptions{})
	if err != nil {
		t.Fatalf("unexpected error listing transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected no transaction rows after rejection, got %d", len(txns))
	}
}

func TestCreateTransaction_CreditAccountMayGoNegative(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountCredit, "0")

	_, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("500"),
		Kind:      domain.TransactionExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("-500")) {
		t.Fatalf("expected balance -500, got %s", got)
	}
}

func TestUpdateTransaction_KindFlip(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	txn, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("50"),
		Kind:      domain.TransactionExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newKind := domain.TransactionIncome
	updated, err := svc.UpdateTransaction(context.Background(), userID, txn.ID, domain.TransactionChanges{Kind: &newKind})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Kind != domain.TransactionIncome {
		t.Fatalf("expected updated kind INCOME, got %s", updated.Kind)
	}
	// 100 - 50 = 50 committed; flip reverts to 100 then adds 50.
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("150")) {
		t.Fatalf("expected balance 150 after kind flip, got %s", got)
	}
}

func TestUpdateTransaction_RejectionKeepsOldRow(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	txn, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("30"),
		Kind:      domain.TransactionExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tooLarge := dec("200")
	_, err = svc.UpdateTransaction(context.Background(), userID, txn.ID, domain.TransactionChanges{Amount: &tooLarge})
	var insufficientFunds *InsufficientFundsError
	if !errors.As(err, &insufficientFunds) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}

	stored, err := repo.FindTransactionByID(context.Background(), txn.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.Amount.Equal(dec("30")) {
		t.Fatalf("expected stored amount unchanged at 30, got %s", stored.Amount)
	}
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("70")) {
		t.Fatalf("expected balance unchanged at 70, got %s", got)
	}
}

func TestDeleteTransaction_RestoresExactBalance(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	txn, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("33.33"),
		Kind:      domain.TransactionExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteTransaction(context.Background(), userID, txn.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("100")) {
		t.Fatalf("expected balance restored to 100, got %s", got)
	}
	if _, err := repo.FindTransactionByID(context.Background(), txn.ID, userID); !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound after delete, got %v", err)
	}
}

func TestDeleteTransaction_MayDriveBalanceNegative(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "0")

	income, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("100"),
		Kind:      domain.TransactionIncome,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("60"),
		Kind:      domain.TransactionExpense,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteTransaction(context.Background(), userID, income.ID); err != nil {
		t.Fatalf("expected delete to succeed regardless of overdraft, got %v", err)
	}
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("-60")) {
		t.Fatalf("expected balance -60 after reversal, got %s", got)
	}
}

func TestCreateTransaction_ConcurrentCreatesKeepBalanceConsistent(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "1000")

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
				AccountID: accountID,
				Amount:    dec("10"),
				Kind:      domain.TransactionExpense,
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("800")) {
		t.Fatalf("expected balance 800 after 20 concurrent expenses of 10, got %s", got)
	}
	txns, err := repo.FindTransactionsByUserID(context.Background(), userID, domain.TransactionListOptions{Limit: 100})
	if err != nil {
		t.Fatalf("unexpected error listing transactions: %v", err)
	}
	if len(txns) != workers {
		t.Fatalf("expected %d transaction rows, got %d", workers, len(txns))
	}
}

func TestCreateTransaction_RateLimited(t *testing.T) {
	svc, repo := newTestService(t)
	userID, accountID := seedAccount(t, repo, domain.AccountChecking, "100")

	svc.SetWriteRateLimiter(&stubLimiter{count: 3}, 2)

	_, err := svc.CreateTransaction(context.Background(), userID, domain.CreateTransactionRequest{
		AccountID: accountID,
		Amount:    dec("10"),
		Kind:      domain.TransactionExpense,
	})
	var rateLimited *RateLimitedError
	if !errors.As(err, &rateLimited) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rateLimited.RetryAfterSeconds != 30 {
		t.Fatalf("expected retry-after 30, got %d", rateLimited.RetryAfterSeconds)
	}
	if got := accountBalance(t, repo, accountID, userID); !got.Equal(dec("100")) {
		t.Fatalf("expected balance unchanged at 100, got %s", got)
	}
}

type stubLimiter struct {
	count int
}

func (l *stubLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	return l.count, 30, nil
}
