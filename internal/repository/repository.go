package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the pulse schema and tables if they do not exist
func (r *Repository) Migrate() error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS pulse`,
		`CREATE TABLE IF NOT EXISTS pulse.users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pulse.income_entries (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES pulse.users(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			frequency TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pulse.bill_entries (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES pulse.users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			due_date INT NOT NULL CHECK (due_date BETWEEN 1 AND 31),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pulse.account_balances (
			user_id BIGINT PRIMARY KEY REFERENCES pulse.users(id) ON DELETE CASCADE,
			balance NUMERIC(12,2),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO pulse.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at::text, updated_at::text`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return apperrors.Validation("email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at::text, updated_at::text
		FROM pulse.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at::text, updated_at::text
		FROM pulse.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users. Used by the reminder job.
func (r *Repository) ListUsers() ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at::text, updated_at::text
		FROM pulse.users
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateIncome creates a new income entry
func (r *Repository) CreateIncome(entry *models.IncomeEntry) error {
	query := `
		INSERT INTO pulse.income_entries (user_id, source, amount, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at::text, updated_at::text`
	err := r.db.QueryRow(query, entry.UserID, entry.Source, entry.Amount, string(entry.Frequency)).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create income entry: %w", err)
	}
	return nil
}

// ListIncomes returns all income entries owned by the user
func (r *Repository) ListIncomes(userID int64) ([]models.IncomeEntry, error) {
	query := `
		SELECT id, user_id, source, amount, frequency, created_at::text, updated_at::text
		FROM pulse.income_entries
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income entries: %w", err)
	}
	defer rows.Close()

	var entries []models.IncomeEntry
	for rows.Next() {
		var e models.IncomeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Source, &e.Amount, &e.Frequency, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateIncome replaces an income entry. The row must belong to the user.
func (r *Repository) UpdateIncome(entry *models.IncomeEntry) error {
	query := `
		UPDATE pulse.income_entries
		SET source = $1, amount = $2, frequency = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at::text`
	err := r.db.QueryRow(query, entry.Source, entry.Amount, string(entry.Frequency), entry.ID, entry.UserID).
		Scan(&entry.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("income entry not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update income entry: %w", err)
	}
	return nil
}

// DeleteIncome removes an income entry owned by the user
func (r *Repository) DeleteIncome(userID, id int64) error {
	res, err := r.db.Exec(`DELETE FROM pulse.income_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete income entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("income entry not found")
	}
	return nil
}

// CreateBill creates a new bill entry
func (r *Repository) CreateBill(bill *models.BillEntry) error {
	query := `
		INSERT INTO pulse.bill_entries (user_id, name, amount, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at::text, updated_at::text`
	err := r.db.QueryRow(query, bill.UserID, bill.Name, bill.Amount, bill.DueDate).
		Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bill entry: %w", err)
	}
	return nil
}

// ListBills returns all bill entries owned by the user
func (r *Repository) ListBills(userID int64) ([]models.BillEntry, error) {
	query := `
		SELECT id, user_id, name, amount, due_date, created_at::text, updated_at::text
		FROM pulse.bill_entries
		WHERE user_id = $1
		ORDER BY due_date, id`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill entries: %w", err)
	}
	defer rows.Close()

	var bills []models.BillEntry
	for rows.Next() {
		var b models.BillEntry
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.DueDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill entry: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpdateBill replaces a bill entry. The row must belong to the user.
func (r *Repository) UpdateBill(bill *models.BillEntry) error {
	query := `
		UPDATE pulse.bill_entries
		SET name = $1, amount = $2, due_date = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at::text`
	err := r.db.QueryRow(query, bill.Name, bill.Amount, bill.DueDate, bill.ID, bill.UserID).
		Scan(&bill.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("bill entry not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update bill entry: %w", err)
	}
	return nil
}

// DeleteBill removes a bill entry owned by the user
func (r *Repository) DeleteBill(userID, id int64) error {
	res, err := r.db.Exec(`DELETE FROM pulse.bill_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bill entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("bill entry not found")
	}
	return nil
}

// GetBalance returns the user's stored balance. An absent row means the
// balance was never verified; that is reported as an unset balance, not an
// error.
func (r *Repository) GetBalance(userID int64) (*models.AccountBalance, error) {
	bal := &models.AccountBalance{UserID: userID}
	query := `
		SELECT balance, updated_at::text
		FROM pulse.account_balances
		WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&bal.Balance, &bal.UpdatedAt)
	if err == sql.ErrNoRows {
		return bal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return bal, nil
}

// UpsertBalance stores the user-verified balance
func (r *Repository) UpsertBalance(userID int64, balance float64) (*models.AccountBalance, error) {
	bal := &models.AccountBalance{UserID: userID, Balance: &balance}
	query := `
		INSERT INTO pulse.account_balances (user_id, balance, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET balance = $2, updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at::text`
	if err := r.db.QueryRow(query, userID, balance).Scan(&bal.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert balance: %w", err)
	}
	return bal, nil
}
