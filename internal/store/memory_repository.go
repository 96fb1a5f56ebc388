// Package store: MemoryRepository is an in-memory implementation of Repository.
// It backs the engine tests so ledger semantics can be exercised without a
// database. Ledger mutations are serialized per account with a mutex map, the
// same guarantee the PostgreSQL implementation gets from row locks.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

// MemoryRepository stores all entities in maps guarded by a single state
// mutex; insertion-order slices keep listings deterministic.
type MemoryRepository struct {
	mu sync.RWMutex

	users        map[uuid.UUID]domain.User
	emails       map[string]uuid.UUID
	accounts     map[uuid.UUID]domain.Account
	accountOrder []uuid.UUID
	categories   map[uuid.UUID]domain.Category
	catOrder     []uuid.UUID
	budgets      map[uuid.UUID]domain.Budget
	budgetOrder  []uuid.UUID
	transactions map[uuid.UUID]domain.Transaction
	txnOrder     []uuid.UUID

	accountMu map[uuid.UUID]*sync.Mutex
	muMapMu   sync.Mutex
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:        make(map[uuid.UUID]domain.User),
		emails:       make(map[string]uuid.UUID),
		accounts:     make(map[uuid.UUID]domain.Account),
		categories:   make(map[uuid.UUID]domain.Category),
		budgets:      make(map[uuid.UUID]domain.Budget),
		transactions: make(map[uuid.UUID]domain.Transaction),
		accountMu:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockForAccount returns the mutex serializing ledger mutations on one account.
func (r *MemoryRepository) lockForAccount(accountID uuid.UUID) *sync.Mutex {
	r.muMapMu.Lock()
	defer r.muMapMu.Unlock()
	if _, ok := r.accountMu[accountID]; !ok {
		r.accountMu[accountID] = &sync.Mutex{}
	}
	return r.accountMu[accountID]
}

// --- Users ---

func (r *MemoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.emails[key]; ok {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.emails[key] = user.ID
	return nil
}

func (r *MemoryRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// --- Accounts ---

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = *account
	r.accountOrder = append(r.accountOrder, account.ID)
	return nil
}

func (r *MemoryRepository) FindAccountByID(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findAccountLocked(accountID, userID)
}

func (r *MemoryRepository) findAccountLocked(accountID, userID uuid.UUID) (*domain.Account, error) {
	account, ok := r.accounts[accountID]
	if !ok || account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (r *MemoryRepository) FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []domain.Account
	for i := len(r.accountOrder) - 1; i >= 0; i-- {
		if account, ok := r.accounts[r.accountOrder[i]]; ok && account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (r *MemoryRepository) UpdateAccount(ctx context.Context, accountID, userID uuid.UUID, changes domain.AccountChanges) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok || account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	if changes.Name != nil {
		account.Name = *changes.Name
	}
	if changes.Kind != nil {
		account.Kind = *changes.Kind
	}
	if changes.Balance != nil {
		account.Balance = *changes.Balance
	}
	account.UpdatedAt = time.Now().UTC()
	r.accounts[accountID] = account
	return &account, nil
}

func (r *MemoryRepository) DeleteAccount(ctx context.Context, accountID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok || account.UserID != userID {
		return ErrAccountNotFound
	}
	delete(r.accounts, accountID)
	return nil
}

func (r *MemoryRepository) TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, account := range r.accounts {
		if account.UserID == userID {
			total = total.Add(account.Balance)
		}
	}
	return total, nil
}

// --- Categories ---

func (r *MemoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	r.categories[category.ID] = *category
	r.catOrder = append(r.catOrder, category.ID)
	return nil
}

func (r *MemoryRepository) FindCategoryByID(ctx context.Context, categoryID, userID uuid.UUID) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok || category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

func (r *MemoryRepository) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var categories []domain.Category
	for _, id := range r.catOrder {
		if category, ok := r.categories[id]; ok && category.UserID == userID {
			categories = append(categories, category)
		}
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *MemoryRepository) UpdateCategory(ctx context.Context, categoryID, userID uuid.UUID, changes domain.CategoryChanges) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[categoryID]
	if !ok || category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	if changes.Name != nil {
		category.Name = *changes.Name
	}
	if changes.Color != nil {
		category.Color = *changes.Color
	}
	if changes.Icon != nil {
		category.Icon = *changes.Icon
	}
	category.UpdatedAt = time.Now().UTC()
	r.categories[categoryID] = category
	return &category, nil
}

func (r *MemoryRepository) DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[categoryID]
	if !ok || category.UserID != userID {
		return ErrCategoryNotFound
	}
	delete(r.categories, categoryID)
	// mirror the schema's ON DELETE SET NULL
	for id, txn := range r.transactions {
		if txn.CategoryID != nil && *txn.CategoryID == categoryID {
			txn.CategoryID = nil
			r.transactions[id] = txn
		}
	}
	return nil
}

// --- Budgets ---

func (r *MemoryRepository) CreateBudget(ctx context.Context, budget *domain.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	r.budgets[budget.ID] = *budget
	r.budgetOrder = append(r.budgetOrder, budget.ID)
	return nil
}

func (r *MemoryRepository) FindBudgetByID(ctx context.Context, budgetID, userID uuid.UUID) (*domain.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	budget, ok := r.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return nil, ErrBudgetNotFound
	}
	r.attachBudgetCategoryLocked(&budget)
	return &budget, nil
}

func (r *MemoryRepository) attachBudgetCategoryLocked(budget *domain.Budget) {
	if budget.CategoryID == nil {
		return
	}
	if category, ok := r.categories[*budget.CategoryID]; ok {
		budget.Category = &category
	}
}

func (r *MemoryRepository) FindBudgetsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var budgets []domain.Budget
	for i := len(r.budgetOrder) - 1; i >= 0; i-- {
		if budget, ok := r.budgets[r.budgetOrder[i]]; ok && budget.UserID == userID {
			r.attachBudgetCategoryLocked(&budget)
			budgets = append(budgets, budget)
		}
	}
	return budgets, nil
}

func (r *MemoryRepository) FindActiveBudgets(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.Budget, error) {
	budgets, err := r.FindBudgetsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var active []domain.Budget
	for _, budget := range budgets {
		if !budget.StartDate.After(at) && !budget.EndDate.Before(at) {
			active = append(active, budget)
		}
	}
	return active, nil
}

func (r *MemoryRepository) UpdateBudget(ctx context.Context, budgetID, userID uuid.UUID, changes domain.BudgetChanges) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	budget, ok := r.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return nil, ErrBudgetNotFound
	}
	if changes.Name != nil {
		budget.Name = *changes.Name
	}
	if changes.Amount != nil {
		budget.Amount = *changes.Amount
	}
	if changes.Period != nil {
		budget.Period = *changes.Period
	}
	if changes.StartDate != nil {
		budget.StartDate = *changes.StartDate
	}
	if changes.EndDate != nil {
		budget.EndDate = *changes.EndDate
	}
	if changes.CategoryID != nil {
		budget.CategoryID = changes.CategoryID
	}
	budget.UpdatedAt = time.Now().UTC()
	r.budgets[budgetID] = budget
	r.attachBudgetCategoryLocked(&budget)
	return &budget, nil
}

func (r *MemoryRepository) DeleteBudget(ctx context.Context, budgetID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	budget, ok := r.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return ErrBudgetNotFound
	}
	delete(r.budgets, budgetID)
	return nil
}

// --- Ledger primitives ---

func (r *MemoryRepository) CreateTransactionAtomic(ctx context.Context, txn *domain.Transaction, decide BalanceDecision) (*domain.Transaction, error) {
	lock := r.lockForAccount(txn.AccountID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	account, err := r.findAccountLocked(txn.AccountID, txn.UserID)
	if err != nil {
		return nil, err
	}

	newBalance, err := decide(*account)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	r.transactions[txn.ID] = *txn
	r.txnOrder = append(r.txnOrder, txn.ID)

	account.Balance = newBalance
	account.UpdatedAt = now
	r.accounts[account.ID] = *account

	return r.joinedTransactionLocked(txn.ID), nil
}

func (r *MemoryRepository) UpdateTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, mutate TransactionMutation) (*domain.Transaction, error) {
	r.mu.RLock()
	old, ok := r.transactions[transactionID]
	r.mu.RUnlock()
	if !ok || old.UserID != userID {
		return nil, ErrTransactionNotFound
	}

	lock := r.lockForAccount(old.AccountID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-read under the account lock; the row may have changed in between.
	old, ok = r.transactions[transactionID]
	if !ok || old.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	account, err := r.findAccountLocked(old.AccountID, userID)
	if err != nil {
		return nil, err
	}

	merged, finalBalance, err := mutate(old, *account)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	merged.UpdatedAt = now
	r.transactions[transactionID] = merged

	account.Balance = finalBalance
	account.UpdatedAt = now
	r.accounts[account.ID] = *account

	return r.joinedTransactionLocked(transactionID), nil
}

func (r *MemoryRepository) DeleteTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, reverse TransactionReversal) error {
	r.mu.RLock()
	old, ok := r.transactions[transactionID]
	r.mu.RUnlock()
	if !ok || old.UserID != userID {
		return ErrTransactionNotFound
	}

	lock := r.lockForAccount(old.AccountID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok = r.transactions[transactionID]
	if !ok || old.UserID != userID {
		return ErrTransactionNotFound
	}
	account, err := r.findAccountLocked(old.AccountID, userID)
	if err != nil {
		return err
	}

	newBalance := reverse(old, *account)

	delete(r.transactions, transactionID)
	account.Balance = newBalance
	account.UpdatedAt = time.Now().UTC()
	r.accounts[account.ID] = *account
	return nil
}

// --- Transaction reads ---

func (r *MemoryRepository) joinedTransactionLocked(transactionID uuid.UUID) *domain.Transaction {
	txn := r.transactions[transactionID]
	if account, ok := r.accounts[txn.AccountID]; ok {
		txn.Account = &account
	}
	if txn.CategoryID != nil {
		if category, ok := r.categories[*txn.CategoryID]; ok {
			txn.Category = &category
		}
	}
	return &txn
}

func (r *MemoryRepository) FindTransactionByID(ctx context.Context, transactionID, userID uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[transactionID]
	if !ok || txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return r.joinedTransactionLocked(transactionID), nil
}

func (r *MemoryRepository) FindTransactionsByUserID(ctx context.Context, userID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var transactions []domain.Transaction
	for _, id := range r.txnOrder {
		txn, ok := r.transactions[id]
		if !ok || txn.UserID != userID {
			continue
		}
		if opts.CategoryID != nil && (txn.CategoryID == nil || *txn.CategoryID != *opts.CategoryID) {
			continue
		}
		transactions = append(transactions, *r.joinedTransactionLocked(id))
	}
	sort.SliceStable(transactions, func(i, j int) bool { return transactions[i].Date.After(transactions[j].Date) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(transactions) {
		return nil, nil
	}
	end := offset + limit
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[offset:end], nil
}

func (r *MemoryRepository) FindTransactionsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var transactions []domain.Transaction
	for _, id := range r.txnOrder {
		txn, ok := r.transactions[id]
		if !ok || txn.UserID != userID {
			continue
		}
		if txn.Date.Before(from) || txn.Date.After(to) {
			continue
		}
		transactions = append(transactions, *r.joinedTransactionLocked(id))
	}
	sort.SliceStable(transactions, func(i, j int) bool { return transactions[i].Date.Before(transactions[j].Date) })
	return transactions, nil
}

func (r *MemoryRepository) FindExpenseTransactions(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	window, err := r.FindTransactionsInWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	var transactions []domain.Transaction
	for _, txn := range window {
		if txn.Kind != domain.TransactionExpense {
			continue
		}
		if categoryID != nil && (txn.CategoryID == nil || *txn.CategoryID != *categoryID) {
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}
