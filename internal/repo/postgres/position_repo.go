package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmdelbarrio/adet/internal/domain/model"
)

var (
	ErrPositionNotFound  = errors.New("position not found")
	ErrPositionCodeTaken = errors.New("position code already exists")
)

type PositionRepo struct {
	pool *pgxpool.Pool
}

type PositionUpdate struct {
	Code       *string
	Name       *string
	MinSalary  *float64
	Department *string
}

func NewPositionRepo(pool *pgxpool.Pool) *PositionRepo {
	return &PositionRepo{pool: pool}
}

const positionColumns = `
p.position_id, p.position_code, p.position_name, p.min_salary, p.department,
p.user_id, COALESCE(u.username, ''), p.created_at`

func (r *PositionRepo) Create(ctx context.Context, code, name string, minSalary *float64, department *string, userID int64) (model.Position, error) {
	if r.pool == nil {
		return model.Position{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(name) == "" || userID <= 0 {
		return model.Position{}, fmt.Errorf("invalid position payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO positions (position_code, position_name, min_salary, department, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING position_id
`, strings.TrimSpace(code), strings.TrimSpace(name), minSalary, department, userID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Position{}, ErrPositionCodeTaken
		}
		return model.Position{}, fmt.Errorf("create position: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *PositionRepo) GetByID(ctx context.Context, id int64) (model.Position, error) {
	if r.pool == nil {
		return model.Position{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Position{}, ErrPositionNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+positionColumns+`
FROM positions p
LEFT JOIN users u ON p.user_id = u.id
WHERE p.position_id = $1
`, id)

	position, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Position{}, ErrPositionNotFound
		}
		return model.Position{}, fmt.Errorf("find position by id: %w", err)
	}

	return position, nil
}

func (r *PositionRepo) GetByCode(ctx context.Context, code string) (model.Position, error) {
	if r.pool == nil {
		return model.Position{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(code) == "" {
		return model.Position{}, ErrPositionNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+positionColumns+`
FROM positions p
LEFT JOIN users u ON p.user_id = u.id
WHERE p.position_code = $1
`, strings.TrimSpace(code))

	position, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Position{}, ErrPositionNotFound
		}
		return model.Position{}, fmt.Errorf("find position by code: %w", err)
	}

	return position, nil
}

func (r *PositionRepo) List(ctx context.Context) ([]model.Position, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+positionColumns+`
FROM positions p
LEFT JOIN users u ON p.user_id = u.id
ORDER BY p.created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	return collectPositions(rows)
}

func (r *PositionRepo) ListByUser(ctx context.Context, userID int64) ([]model.Position, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+positionColumns+`
FROM positions p
LEFT JOIN users u ON p.user_id = u.id
WHERE p.user_id = $1
ORDER BY p.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions by user: %w", err)
	}
	defer rows.Close()

	return collectPositions(rows)
}

func (r *PositionRepo) Update(ctx context.Context, id int64, upd PositionUpdate) (model.Position, error) {
	if r.pool == nil {
		return model.Position{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.Position{}, ErrPositionNotFound
	}

	fields := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendField := func(column string, value any) {
		args = append(args, value)
		fields = append(fields, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Code != nil {
		appendField("position_code", strings.TrimSpace(*upd.Code))
	}
	if upd.Name != nil {
		appendField("position_name", strings.TrimSpace(*upd.Name))
	}
	if upd.MinSalary != nil {
		appendField("min_salary", *upd.MinSalary)
	}
	if upd.Department != nil {
		appendField("department", *upd.Department)
	}

	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE positions SET %s WHERE position_id = $%d`, strings.Join(fields, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Position{}, ErrPositionCodeTaken
		}
		return model.Position{}, fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Position{}, ErrPositionNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *PositionRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return ErrPositionNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM positions WHERE position_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPositionNotFound
	}

	return nil
}

func scanPosition(row pgx.Row) (model.Position, error) {
	var position model.Position
	err := row.Scan(
		&position.ID,
		&position.Code,
		&position.Name,
		&position.MinSalary,
		&position.Department,
		&position.UserID,
		&position.CreatedBy,
		&position.CreatedAt,
	)
	if err != nil {
		return model.Position{}, err
	}
	return position, nil
}

func collectPositions(rows pgx.Rows) ([]model.Position, error) {
	var positions []model.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}
	return positions, nil
}
