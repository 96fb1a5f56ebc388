/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to users, accounts, transactions, categories, and budgets.
 *
 * Ledger mutations run inside a database transaction with `SELECT ... FOR UPDATE`
 * on the affected rows, so concurrent mutations against the same account are
 * serialized and the transaction row and balance write commit as one unit.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finwell/finance-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Users ---

// CreateUser inserts a new user row. A duplicate email maps to ErrEmailTaken.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindUserByEmail retrieves a user from the database by their email address.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE lower(email) = lower($1)`
	err := r.db.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// --- Accounts ---

// CreateAccount inserts a new account row with its opening balance.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, kind, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		account.ID, account.UserID, account.Name, string(account.Kind), account.Balance,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
}

// FindAccountByID retrieves an account owned by the given user.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, name, kind, balance, created_at, updated_at FROM accounts WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(ctx, query, accountID, userID).Scan(
		&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountsByUserID retrieves all accounts for a user, newest first.
func (r *PostgresRepository) FindAccountsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	query := `SELECT id, user_id, name, kind, balance, created_at, updated_at FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Balance,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateAccount applies a partial change set to an account. Nil fields keep the
// stored value. Balance edits here bypass the ledger engine by design.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, accountID, userID uuid.UUID, changes domain.AccountChanges) (*domain.Account, error) {
	var kind *string
	if changes.Kind != nil {
		k := string(*changes.Kind)
		kind = &k
	}

	var account domain.Account
	query := `
		UPDATE accounts
		SET name = COALESCE($3, name),
		    kind = COALESCE($4, kind),
		    balance = COALESCE($5, balance),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, kind, balance, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, accountID, userID, changes.Name, kind, changes.Balance).Scan(
		&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account owned by the given user.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, accountID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// TotalBalance sums the balances of all of a user's accounts.
func (r *PostgresRepository) TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// --- Categories ---

// CreateCategory inserts a new category row.
func (r *PostgresRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		category.ID, category.UserID, category.Name, category.Color, category.Icon,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
}

// FindCategoryByID retrieves a category owned by the given user.
func (r *PostgresRepository) FindCategoryByID(ctx context.Context, categoryID, userID uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT id, user_id, name, color, icon, created_at, updated_at FROM categories WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(ctx, query, categoryID, userID).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Color, &category.Icon,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindCategoriesByUserID retrieves all categories for a user, sorted by name.
func (r *PostgresRepository) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	query := `SELECT id, user_id, name, color, icon, created_at, updated_at FROM categories WHERE user_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID, &category.UserID, &category.Name, &category.Color, &category.Icon,
			&category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// UpdateCategory applies a partial change set to a category.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, categoryID, userID uuid.UUID, changes domain.CategoryChanges) (*domain.Category, error) {
	var category domain.Category
	query := `
		UPDATE categories
		SET name = COALESCE($3, name),
		    color = COALESCE($4, color),
		    icon = COALESCE($5, icon),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, color, icon, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, categoryID, userID, changes.Name, changes.Color, changes.Icon).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Color, &category.Icon,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category; referencing transactions keep a NULL
// category via the schema's ON DELETE SET NULL.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// --- Budgets ---

const budgetColumns = `
	b.id, b.user_id, b.name, b.amount, b.period, b.start_date, b.end_date, b.category_id, b.created_at, b.updated_at,
	c.id, c.user_id, c.name, c.color, c.icon, c.created_at, c.updated_at`

const budgetFrom = `
	FROM budgets b
	LEFT JOIN categories c ON c.id = b.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var budget domain.Budget
	var catID, catUserID *uuid.UUID
	var catName, catColor, catIcon *string
	var catCreated, catUpdated *time.Time

	err := row.Scan(
		&budget.ID, &budget.UserID, &budget.Name, &budget.Amount, &budget.Period,
		&budget.StartDate, &budget.EndDate, &budget.CategoryID, &budget.CreatedAt, &budget.UpdatedAt,
		&catID, &catUserID, &catName, &catColor, &catIcon, &catCreated, &catUpdated,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		budget.Category = &domain.Category{
			ID:        *catID,
			UserID:    *catUserID,
			Name:      *catName,
			Color:     *catColor,
			Icon:      *catIcon,
			CreatedAt: *catCreated,
			UpdatedAt: *catUpdated,
		}
	}
	return &budget, nil
}

// CreateBudget inserts a new budget row.
func (r *PostgresRepository) CreateBudget(ctx context.Context, budget *domain.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, name, amount, period, start_date, end_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		budget.ID, budget.UserID, budget.Name, budget.Amount, string(budget.Period),
		budget.StartDate, budget.EndDate, budget.CategoryID,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)
}

// FindBudgetByID retrieves a budget owned by the given user, with its category joined.
func (r *PostgresRepository) FindBudgetByID(ctx context.Context, budgetID, userID uuid.UUID) (*domain.Budget, error) {
	query := `SELECT` + budgetColumns + budgetFrom + ` WHERE b.id = $1 AND b.user_id = $2`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, budgetID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// FindBudgetsByUserID retrieves all budgets for a user, newest first.
func (r *PostgresRepository) FindBudgetsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	query := `SELECT` + budgetColumns + budgetFrom + ` WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	return r.queryBudgets(ctx, query, userID)
}

// FindActiveBudgets retrieves budgets whose window contains the given instant.
func (r *PostgresRepository) FindActiveBudgets(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.Budget, error) {
	query := `SELECT` + budgetColumns + budgetFrom + ` WHERE b.user_id = $1 AND b.start_date <= $2 AND b.end_date >= $2 ORDER BY b.created_at DESC`
	return r.queryBudgets(ctx, query, userID, at)
}

func (r *PostgresRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *budget)
	}
	return budgets, rows.Err()
}

// UpdateBudget applies a partial change set to a budget.
func (r *PostgresRepository) UpdateBudget(ctx context.Context, budgetID, userID uuid.UUID, changes domain.BudgetChanges) (*domain.Budget, error) {
	var period *string
	if changes.Period != nil {
		p := string(*changes.Period)
		period = &p
	}

	query := `
		UPDATE budgets
		SET name = COALESCE($3, name),
		    amount = COALESCE($4, amount),
		    period = COALESCE($5, period),
		    start_date = COALESCE($6, start_date),
		    end_date = COALESCE($7, end_date),
		    category_id = COALESCE($8, category_id),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.Exec(ctx, query, budgetID, userID,
		changes.Name, changes.Amount, period, changes.StartDate, changes.EndDate, changes.CategoryID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrBudgetNotFound
	}
	return r.FindBudgetByID(ctx, budgetID, userID)
}

// DeleteBudget removes a budget owned by the given user.
func (r *PostgresRepository) DeleteBudget(ctx context.Context, budgetID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// --- Transactions ---

const transactionColumns = `
	t.id, t.user_id, t.account_id, t.category_id, t.amount, t.kind, t.description, t.date, t.created_at, t.updated_at,
	a.id, a.user_id, a.name, a.kind, a.balance, a.created_at, a.updated_at,
	c.id, c.user_id, c.name, c.color, c.icon, c.created_at, c.updated_at`

const transactionFrom = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var txn domain.Transaction
	var account domain.Account
	var catID, catUserID *uuid.UUID
	var catName, catColor, catIcon *string
	var catCreated, catUpdated *time.Time

	err := row.Scan(
		&txn.ID, &txn.UserID, &txn.AccountID, &txn.CategoryID, &txn.Amount, &txn.Kind,
		&txn.Description, &txn.Date, &txn.CreatedAt, &txn.UpdatedAt,
		&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
		&catID, &catUserID, &catName, &catColor, &catIcon, &catCreated, &catUpdated,
	)
	if err != nil {
		return nil, err
	}
	txn.Account = &account
	if catID != nil {
		txn.Category = &domain.Category{
			ID:        *catID,
			UserID:    *catUserID,
			Name:      *catName,
			Color:     *catColor,
			Icon:      *catIcon,
			CreatedAt: *catCreated,
			UpdatedAt: *catUpdated,
		}
	}
	return &txn, nil
}

// FindTransactionByID retrieves a transaction owned by the given user, joined
// with its account and category for display.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, transactionID, userID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + ` WHERE t.id = $1 AND t.user_id = $2`
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

// FindTransactionsByUserID retrieves a page of a user's transactions, newest
// first, optionally filtered by category.
func (r *PostgresRepository) FindTransactionsByUserID(ctx context.Context, userID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT` + transactionColumns + transactionFrom + `
		WHERE t.user_id = $1 AND ($2::uuid IS NULL OR t.category_id = $2)
		ORDER BY t.date DESC
		LIMIT $3 OFFSET $4`
	return r.queryTransactions(ctx, query, userID, opts.CategoryID, limit, offset)
}

// FindTransactionsInWindow retrieves a user's transactions inside [from, to],
// in ascending date order, with categories joined.
func (r *PostgresRepository) FindTransactionsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + `
		WHERE t.user_id = $1 AND t.date >= $2 AND t.date <= $3
		ORDER BY t.date ASC`
	return r.queryTransactions(ctx, query, userID, from, to)
}

// FindExpenseTransactions retrieves EXPENSE transactions in [from, to],
// optionally restricted to one category. Used for budget consumption.
func (r *PostgresRepository) FindExpenseTransactions(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionFrom + `
		WHERE t.user_id = $1 AND t.kind = 'EXPENSE'
		  AND t.date >= $2 AND t.date <= $3
		  AND ($4::uuid IS NULL OR t.category_id = $4)
		ORDER BY t.date ASC`
	return r.queryTransactions(ctx, query, userID, from, to, categoryID)
}

func (r *PostgresRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// lockAccount reads an account row under FOR UPDATE inside the given database
// transaction, serializing concurrent ledger mutations on the same account.
func lockAccount(ctx context.Context, tx pgx.Tx, accountID, userID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, name, kind, balance, created_at, updated_at FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`
	err := tx.QueryRow(ctx, query, accountID, userID).Scan(
		&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// lockTransaction reads a transaction row under FOR UPDATE inside the given
// database transaction.
func lockTransaction(ctx context.Context, tx pgx.Tx, transactionID, userID uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	query := `
		SELECT id, user_id, account_id, category_id, amount, kind, description, date, created_at, updated_at
		FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`
	err := tx.QueryRow(ctx, query, transactionID, userID).Scan(
		&txn.ID, &txn.UserID, &txn.AccountID, &txn.CategoryID, &txn.Amount, &txn.Kind,
		&txn.Description, &txn.Date, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// CreateTransactionAtomic writes the transaction row and the account's new
// balance as one atomic unit. The decision callback sees the balance read
// under the row lock; its error aborts the operation with no changes.
func (r *PostgresRepository) CreateTransactionAtomic(ctx context.Context, txn *domain.Transaction, decide BalanceDecision) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := lockAccount(ctx, tx, txn.AccountID, txn.UserID)
	if err != nil {
		return nil, err
	}

	newBalance, err := decide(*account)
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount, kind, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.Exec(ctx, insert,
		txn.ID, txn.UserID, txn.AccountID, txn.CategoryID, txn.Amount, string(txn.Kind),
		txn.Description, txn.Date,
	); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, txn.AccountID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.FindTransactionByID(ctx, txn.ID, txn.UserID)
}

// UpdateTransactionAtomic applies a mutation to an existing transaction and
// sets the account's final balance in one atomic unit.
func (r *PostgresRepository) UpdateTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, mutate TransactionMutation) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	old, err := lockTransaction(ctx, tx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	account, err := lockAccount(ctx, tx, old.AccountID, userID)
	if err != nil {
		return nil, err
	}

	merged, finalBalance, err := mutate(*old, *account)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE transactions
		SET amount = $2, kind = $3, category_id = $4, description = $5, date = $6, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, update,
		transactionID, merged.Amount, string(merged.Kind), merged.CategoryID, merged.Description, merged.Date,
	); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
		finalBalance, old.AccountID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.FindTransactionByID(ctx, transactionID, userID)
}

// DeleteTransactionAtomic removes the transaction row and applies the reverse
// of its signed effect to the account balance in one atomic unit.
func (r *PostgresRepository) DeleteTransactionAtomic(ctx context.Context, transactionID, userID uuid.UUID, reverse TransactionReversal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	old, err := lockTransaction(ctx, tx, transactionID, userID)
	if err != nil {
		return err
	}
	account, err := lockAccount(ctx, tx, old.AccountID, userID)
	if err != nil {
		return err
	}

	newBalance := reverse(*old, *account)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, old.AccountID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
