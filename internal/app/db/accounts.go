package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNameTaken is returned when an account name already exists.
	ErrNameTaken = errors.New("db: account name already taken")

	// ErrAccountNotFound is returned when no account matches the name.
	ErrAccountNotFound = errors.New("db: account not found")
)

// Account is one registered chat account.
type Account struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// Accounts persists registered user accounts.
type Accounts struct {
	pool *pgxpool.Pool
}

// NewAccounts wraps the pool into an account store.
func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

// Create inserts a new account. A duplicate name fails with ErrNameTaken.
func (a *Accounts) Create(ctx context.Context, name, passwordHash string) (*Account, error) {
	const query = `
		INSERT INTO accounts (name, password_hash)
		VALUES ($1, $2)
		RETURNING id, name, password_hash`

	var acc Account
	err := a.pool.QueryRow(ctx, query, name, passwordHash).
		Scan(&acc.ID, &acc.Name, &acc.PasswordHash)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &acc, nil
}

// GetByName fetches an account by its unique name.
func (a *Accounts) GetByName(ctx context.Context, name string) (*Account, error) {
	const query = `
		SELECT id, name, password_hash
		FROM accounts
		WHERE name = $1`

	var acc Account
	err := a.pool.QueryRow(ctx, query, name).
		Scan(&acc.ID, &acc.Name, &acc.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &acc, nil
}

// Exists reports whether an account with the given name is registered.
func (a *Accounts) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE name = $1)`

	var exists bool
	if err := a.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account name: %w", err)
	}

	return exists, nil
}
