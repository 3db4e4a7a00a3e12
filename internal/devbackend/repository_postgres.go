package devbackend

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed implementation.
func NewPostgresRepository(pool *pgxpool.Pool) AccountRepository {
	return &postgresRepository{pool: pool}
}

// EnsureSchema creates the accounts table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS dev_accounts (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            identifier TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            federated BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`

	_, err := pool.Exec(ctx, ddl)
	return err
}

func (r *postgresRepository) Create(ctx context.Context, account *Account) error {
	const query = `
        INSERT INTO dev_accounts (identifier, password_hash, role, federated)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		account.Identifier,
		account.PasswordHash,
		account.Role,
		account.Federated,
	).Scan(&account.ID, &account.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *postgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	const query = `
        SELECT id, identifier, password_hash, role, federated, created_at
        FROM dev_accounts WHERE identifier=$1`

	var account Account
	if err := r.pool.QueryRow(ctx, query, identifier).Scan(
		&account.ID,
		&account.Identifier,
		&account.PasswordHash,
		&account.Role,
		&account.Federated,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}
