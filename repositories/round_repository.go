package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrRoundNotFound        = errors.New("round not found")
	ErrRoundNumberConflict  = errors.New("round number already exists in category")
	ErrRoundAlreadyActive   = errors.New("category already has an active round")
	ErrRoundInvalidPeriod   = errors.New("round period end is before its start")
	ErrRoundCategoryInvalid = errors.New("round category does not exist")
)

const roundsActiveIndex = "rounds_one_active_per_category"

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	// GetByIDForUpdate locks the round row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	GetByNumber(ctx context.Context, exec SQLExecutor, categoryID, number int) (*models.Round, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Round, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Round, error)
	// ListElapsedActive returns active rounds whose period ended before today.
	ListElapsedActive(ctx context.Context, exec SQLExecutor, today time.Time) ([]*models.Round, error)
	HasOtherActive(ctx context.Context, exec SQLExecutor, categoryID, exceptRoundID int) (bool, error)
	CountByCategory(ctx context.Context, exec SQLExecutor, categoryID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, round *models.Round) error
	UpdateDates(ctx context.Context, exec SQLExecutor, round *models.Round) error
	DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundColumns = `id, category_id, round_number, period_start, period_end, status, closed_at, created_at, updated_at`

func scanRound(row rowScanner) (*models.Round, error) {
	var rd models.Round
	err := row.Scan(
		&rd.ID, &rd.CategoryID, &rd.Number, &rd.PeriodStart, &rd.PeriodEnd,
		&rd.Status, &rd.ClosedAt, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &rd, nil
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (category_id, round_number, period_start, period_end, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		round.CategoryID, round.Number, round.PeriodStart, round.PeriodEnd, round.Status,
	).Scan(&round.ID, &round.CreatedAt, &round.UpdatedAt)
	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	return r.getOne(ctx, exec, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
}

func (r *postgresRoundRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	return r.getOne(ctx, exec, `SELECT `+roundColumns+` FROM rounds WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, exec SQLExecutor, categoryID, number int) (*models.Round, error) {
	return r.getOne(ctx, exec, `SELECT `+roundColumns+` FROM rounds WHERE category_id = $1 AND round_number = $2`, categoryID, number)
}

func (r *postgresRoundRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Round, error) {
	rd, err := scanRound(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil && !errors.Is(err, ErrRoundNotFound) {
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return rd, err
}

func (r *postgresRoundRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE category_id = $1 ORDER BY round_number ASC`
	return r.queryRounds(ctx, exec, query, categoryID)
}

func (r *postgresRoundRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Round, error) {
	result := make(map[int]*models.Round, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rounds, err := r.queryRounds(ctx, exec, `SELECT `+roundColumns+` FROM rounds WHERE id = ANY($1)`, intArray(ids))
	if err != nil {
		return nil, err
	}
	for _, rd := range rounds {
		result[rd.ID] = rd
	}
	return result, nil
}

func (r *postgresRoundRepository) ListElapsedActive(ctx context.Context, exec SQLExecutor, today time.Time) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds
		WHERE status = $1 AND period_end < $2
		ORDER BY category_id ASC, round_number ASC`
	return r.queryRounds(ctx, exec, query, models.RoundStatusActive, today)
}

func (r *postgresRoundRepository) queryRounds(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Round, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		rd, scanErr := scanRound(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, rd)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) HasOtherActive(ctx context.Context, exec SQLExecutor, categoryID, exceptRoundID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM rounds WHERE category_id = $1 AND status = $2 AND id <> $3)`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, categoryID, models.RoundStatusActive, exceptRoundID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active rounds of category %d: %w", categoryID, err)
	}
	return exists, nil
}

func (r *postgresRoundRepository) CountByCategory(ctx context.Context, exec SQLExecutor, categoryID int) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rounds of category %d: %w", categoryID, err)
	}
	return count, nil
}

// UpdateStatus persists Status and ClosedAt.
func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		UPDATE rounds SET status = $1, closed_at = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, round.Status, round.ClosedAt, round.ID).Scan(&round.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoundNotFound
	}
	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) UpdateDates(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		UPDATE rounds SET period_start = $1, period_end = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, round.PeriodStart, round.PeriodEnd, round.ID).Scan(&round.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoundNotFound
	}
	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM rounds WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("failed to delete rounds of category %d: %w", categoryID, err)
	}
	return nil
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint := pqErrorCode(err)
	switch code {
	case pqUniqueViolation:
		if constraint == roundsActiveIndex {
			return ErrRoundAlreadyActive
		}
		return ErrRoundNumberConflict
	case pqCheckViolation:
		return ErrRoundInvalidPeriod
	case pqForeignKeyViolation:
		return ErrRoundCategoryInvalid
	}
	return err
}
