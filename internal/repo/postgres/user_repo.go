package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmdelbarrio/adet/internal/domain/enums"
	"github.com/rmdelbarrio/adet/internal/domain/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrRefreshTokenStale = errors.New("refresh token is stale")
)

const uniqueViolation = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, password_hash, role, current_refresh_token, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string, role enums.Role) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" || passwordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO users (username, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
RETURNING `+userColumns+`
`, strings.TrimSpace(username), passwordHash, role)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.User{}, ErrUserNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" {
		return model.User{}, ErrUserNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE username = $1
`, strings.TrimSpace(username))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}

	return user, nil
}

// GetByRefreshToken matches the stored token by exact string equality.
// A token that decodes validly but was already rotated away must miss here.
func (r *UserRepo) GetByRefreshToken(ctx context.Context, token string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if token == "" {
		return model.User{}, ErrUserNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE current_refresh_token = $1
`, token)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by refresh token: %w", err)
	}

	return user, nil
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID int64, token *string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return ErrUserNotFound
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET current_refresh_token = $2, updated_at = NOW()
WHERE id = $1
`, userID, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken is the compare-and-swap that makes rotation single-use:
// the update only lands if the stored token still equals oldToken, so of two
// concurrent rotations presenting the same token at most one succeeds.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, userID int64, oldToken, newToken string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || oldToken == "" || newToken == "" {
		return fmt.Errorf("invalid rotation payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET current_refresh_token = $3, updated_at = NOW()
WHERE id = $1 AND current_refresh_token = $2
`, userID, oldToken, newToken)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenStale
	}

	return nil
}

func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID int64, oldToken string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || oldToken == "" {
		return fmt.Errorf("invalid revocation payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET current_refresh_token = NULL, updated_at = NOW()
WHERE id = $1 AND current_refresh_token = $2
`, userID, oldToken)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenStale
	}

	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepo) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, userID int64, role enums.Role) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return ErrUserNotFound
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET role = $2, updated_at = NOW()
WHERE id = $1
`, userID, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes the user together with the positions they created.
func (r *UserRepo) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUserNotFound
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM positions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete user positions: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.CurrentRefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}
