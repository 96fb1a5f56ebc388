package app

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSignedEffect(t *testing.T) {
	tests := []struct {
		name   string
		kind   domain.TransactionKind
		amount string
		want   string
	}{
		{"income adds", domain.TransactionIncome, "100", "100"},
		{"expense subtracts", domain.TransactionExpense, "100", "-100"},
		{"transfer subtracts", domain.TransactionTransfer, "42.50", "-42.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signedEffect(tt.kind, dec(tt.amount))
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("expected effect %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMergeChanges(t *testing.T) {
	categoryID := uuid.New()
	old := domain.Transaction{
		Amount:      dec("50"),
		Kind:        domain.TransactionExpense,
		Description: "groceries",
	}

	newAmount := dec("75")
	newKind := domain.TransactionIncome
	merged := mergeChanges(old, domain.TransactionChanges{
		Amount:     &newAmount,
		Kind:       &newKind,
		CategoryID: &categoryID,
	})

	if !merged.Amount.Equal(dec("75")) {
		t.Fatalf("expected merged amount 75, got %s", merged.Amount)
	}
	if merged.Kind != domain.TransactionIncome {
		t.Fatalf("expected merged kind INCOME, got %s", merged.Kind)
	}
	if merged.CategoryID == nil || *merged.CategoryID != categoryID {
		t.Fatalf("expected merged category %s, got %v", categoryID, merged.CategoryID)
	}
	if merged.Description != "groceries" {
		t.Fatalf("expected description to be retained, got %q", merged.Description)
	}
}

func TestPlanCreate_OverdraftPolicy(t *testing.T) {
	tests := []struct {
		name        string
		accountKind domain.AccountKind
		balance     string
		txnKind     domain.TransactionKind
		amount      string
		wantBalance string
		wantErr     bool
	}{
		{"income always allowed", domain.AccountChecking, "0", domain.TransactionIncome, "100", "100", false},
		{"expense within balance", domain.AccountChecking, "100", domain.TransactionExpense, "100", "0", false},
		{"expense beyond balance rejected", domain.AccountChecking, "100", domain.TransactionExpense, "150", "", true},
		{"transfer beyond balance rejected", domain.AccountSavings, "10", domain.TransactionTransfer, "10.01", "", true},
		{"credit account may go negative", domain.AccountCredit, "0", domain.TransactionExpense, "500", "-500", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := domain.Account{Kind: tt.accountKind, Balance: dec(tt.balance)}
			got, err := planCreate(account, tt.txnKind, dec(tt.amount))
			if tt.wantErr {
				var insufficientFunds *InsufficientFundsError
				if !errors.As(err, &insufficientFunds) {
					t.Fatalf("expected InsufficientFundsError, got %v", err)
				}
				if !insufficientFunds.Balance.Equal(dec(tt.balance)) {
					t.Fatalf("expected error balance %s, got %s", tt.balance, insufficientFunds.Balance)
				}
				if !insufficientFunds.Amount.Equal(dec(tt.amount)) {
					t.Fatalf("expected error amount %s, got %s", tt.amount, insufficientFunds.Amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.wantBalance)) {
				t.Fatalf("expected balance %s, got %s", tt.wantBalance, got)
			}
		})
	}
}

func TestPlanUpdate_RevertsOldEffectFirst(t *testing.T) {
	// Balance 100 holds a committed EXPENSE of 50. Flipping it to an INCOME
	// of 50 must land at 200: revert to 150, then add 50.
	account := domain.Account{Kind: domain.AccountChecking, Balance: dec("100")}
	old := domain.Transaction{Kind: domain.TransactionExpense, Amount: dec("50")}
	merged := domain.Transaction{Kind: domain.TransactionIncome, Amount: dec("50")}

	got, err := planUpdate(account, old, merged)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("200")) {
		t.Fatalf("expected balance 200 after sign flip, got %s", got)
	}
}

func TestPlanUpdate_ChecksAgainstRevertedBalance(t *testing.T) {
	// Balance 100 includes an INCOME of 80. Amending it to an EXPENSE of 30
	// would land at -10; the error must report the reverted balance of 20.
	account := domain.Account{Kind: domain.AccountChecking, Balance: dec("100")}
	old := domain.Transaction{Kind: domain.TransactionIncome, Amount: dec("80")}
	merged := domain.Transaction{Kind: domain.TransactionExpense, Amount: dec("30")}

	_, err := planUpdate(account, old, merged)
	var insufficientFunds *InsufficientFundsError
	if !errors.As(err, &insufficientFunds) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if !insufficientFunds.Balance.Equal(dec("20")) {
		t.Fatalf("expected reverted balance 20 in error, got %s", insufficientFunds.Balance)
	}
}

func TestPlanDelete_ReversesWithoutOverdraftCheck(t *testing.T) {
	// Deleting an INCOME may drive the balance negative; delete never rejects.
	account := domain.Account{Kind: domain.AccountChecking, Balance: dec("30")}
	old := domain.Transaction{Kind: domain.TransactionIncome, Amount: dec("100")}

	got := planDelete(account, old)
	if !got.Equal(dec("-70")) {
		t.Fatalf("expected balance -70 after reversal, got %s", got)
	}
}
