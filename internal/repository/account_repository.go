package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookticket/user-service/internal/domain"
)

// AccountRepository defines persistence access for accounts. Handle and
// email uniqueness is enforced by the store itself: a conflicting insert or
// update fails with the typed duplicate error even when a pre-check raced
// with a concurrent writer.
type AccountRepository interface {
	Insert(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Account, error)
	DeleteByID(ctx context.Context, id string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const uniqueViolation = "23505"

// mapPgError translates driver failures into domain errors, keyed on the
// violated constraint for duplicates.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "handle") {
				return domain.ErrDuplicateHandle
			}
			return domain.ErrDuplicateEmail
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return errors.Join(domain.ErrStoreUnavailable, err)
}

func (r *accountRepository) Insert(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (handle, email, password_hash, roles, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Handle,
		account.Email,
		account.PasswordHash,
		rolesToStrings(account.Roles),
		account.CreatedBy,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// Update rewrites identity fields under a row lock so the uniqueness
// re-check and the write are atomic relative to other writers of the row.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapPgError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id=$1 FOR UPDATE`, account.ID).Scan(&id); err != nil {
		return mapPgError(err)
	}

	const query = `
        UPDATE accounts SET handle=$1, email=$2, password_hash=$3, roles=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	if err := tx.QueryRow(ctx, query,
		account.Handle,
		account.Email,
		account.PasswordHash,
		rolesToStrings(account.Roles),
		account.ID,
	).Scan(&account.UpdatedAt); err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *accountRepository) GetByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	return r.getBy(ctx, "handle", handle)
}

func (r *accountRepository) getBy(ctx context.Context, column, value string) (*domain.Account, error) {
	query := `
        SELECT id, handle, email, password_hash, roles, created_by, created_at, updated_at
        FROM accounts WHERE ` + column + `=$1`

	var account domain.Account
	var roles []string
	if err := r.pool.QueryRow(ctx, query, value).Scan(
		&account.ID,
		&account.Handle,
		&account.Email,
		&account.PasswordHash,
		&roles,
		&account.CreatedBy,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	account.Roles = rolesFromStrings(roles)
	return &account, nil
}

func (r *accountRepository) DeleteByID(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func rolesFromStrings(roles []string) []domain.Role {
	out := make([]domain.Role, len(roles))
	for i, r := range roles {
		out[i] = domain.Role(r)
	}
	return out
}
