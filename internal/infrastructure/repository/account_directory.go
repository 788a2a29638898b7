package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

const (
	pgUniqueViolation = "23505"

	usernameConstraint = "users_username_key"
	// not created by the migrations; deployments that want unique emails add it
	emailConstraint = "users_email_key"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var (
	_ domain.AccountDirectory     = (*AccountDirectory)(nil)
	_ domain.UsernamePrefixLister = (*AccountDirectory)(nil)
)

// AccountDirectory stores imported accounts in the users and user_roles
// tables. Each account is written in its own transaction.
type AccountDirectory struct {
	pool *pgxpool.Pool
}

func NewAccountDirectory(pool *pgxpool.Pool) *AccountDirectory {
	return &AccountDirectory{pool: pool}
}

func (r *AccountDirectory) FindByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, username, first_name, last_name, email, enabled, created_at
FROM users
WHERE username = $1
`, username)
	if err != nil {
		return nil, fmt.Errorf("find users by username: %w", err)
	}

	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, fmt.Errorf("scan users by username: %w", err)
	}
	return accounts, nil
}

// UsernamesWithPrefix matches the prefix literally. The pattern is anchored
// on the left so users_username_pattern_idx can serve it.
func (r *AccountDirectory) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT username
FROM users
WHERE username LIKE $1 ESCAPE '\'
ORDER BY username
`, likePrefixPattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("list usernames with prefix: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan usernames with prefix: %w", err)
	}
	return names, nil
}

func (r *AccountDirectory) CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error) {
	id := uuid.NewString()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO users (id, username, first_name, last_name, email, init_email, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
`, id, req.Username, req.FirstName, req.LastName, req.Email, req.InitialEmail, req.Enabled, req.CreatedAt); err != nil {
		return "", translateInsertError(err)
	}

	if len(req.Roles) > 0 {
		if _, err := tx.Exec(ctx, `
INSERT INTO user_roles (user_id, role)
SELECT $1, unnest($2::text[])
ON CONFLICT DO NOTHING
`, id, domain.RoleStrings(req.Roles)); err != nil {
			return "", fmt.Errorf("insert user roles: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit user: %w", err)
	}

	return id, nil
}

func likePrefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, pgErr.Detail)
		case emailConstraint:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, pgErr.Detail)
		}
	}
	return fmt.Errorf("insert user: %w", err)
}

func scanAccount(row pgx.CollectableRow) (domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.Enabled,
		&account.CreatedAt,
	)
	return account, err
}
