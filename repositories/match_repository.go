package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchPlayerInvalid = errors.New("match player conflict or invalid")
	ErrMatchRoundInvalid  = errors.New("match round or category invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Match, error)
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.Match, error)
	// UpdateOutcome replaces the stored outcome with match.Outcome.
	UpdateOutcome(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// CountUnresolved counts matches of the round that are neither decided nor
	// marked unreported.
	CountUnresolved(ctx context.Context, exec SQLExecutor, roundID int) (int, error)
	// MarkUndecidedUnreported flags every unresolved match of the round as
	// unreported and returns how many were changed.
	MarkUndecidedUnreported(ctx context.Context, exec SQLExecutor, roundID int) (int, error)
	HasResults(ctx context.Context, exec SQLExecutor, categoryID int) (bool, error)
	DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, round_id, category_id, player1_id, player2_id,
	winner_id, is_walkover, walkover_reason, is_not_reported,
	set1_player1_games, set1_player2_games, set2_player1_games, set2_player2_games,
	set3_player1_games, set3_player2_games,
	result_loaded_at, created_at, updated_at`

// outcomeRow is the column layout of an outcome. It is the only place where
// the Outcome variant meets its nullable columns.
type outcomeRow struct {
	WinnerID       sql.NullInt64
	IsWalkover     bool
	WalkoverReason sql.NullString
	IsNotReported  bool
	Sets           [3][2]sql.NullInt64
}

// toOutcome не валидирует число сетов: битая строка читается как есть,
// иначе одна запись блокирует чтение всей категории. Её отбрасывает
// пересчёт таблицы.
func (o *outcomeRow) toOutcome() models.Outcome {
	if o.IsNotReported {
		return models.Unreported{}
	}
	if !o.WinnerID.Valid {
		return models.Undecided{}
	}
	winner := int(o.WinnerID.Int64)
	if o.IsWalkover {
		w := models.Walkover{WinnerID: winner}
		if o.WalkoverReason.Valid {
			reason := o.WalkoverReason.String
			w.Reason = &reason
		}
		return w
	}
	d := models.Decisive{WinnerID: winner}
	for _, set := range o.Sets {
		if !set[0].Valid || !set[1].Valid {
			continue
		}
		d.Sets = append(d.Sets, models.SetScore{Player1Games: int(set[0].Int64), Player2Games: int(set[1].Int64)})
	}
	return d
}

func outcomeRowOf(outcome models.Outcome) outcomeRow {
	var row outcomeRow
	switch o := outcome.(type) {
	case models.Unreported:
		row.IsNotReported = true
	case models.Walkover:
		row.WinnerID = sql.NullInt64{Int64: int64(o.WinnerID), Valid: true}
		row.IsWalkover = true
		if o.Reason != nil {
			row.WalkoverReason = sql.NullString{String: *o.Reason, Valid: true}
		}
	case models.Decisive:
		row.WinnerID = sql.NullInt64{Int64: int64(o.WinnerID), Valid: true}
		for i, set := range o.Sets {
			if i >= len(row.Sets) {
				break
			}
			row.Sets[i][0] = sql.NullInt64{Int64: int64(set.Player1Games), Valid: true}
			row.Sets[i][1] = sql.NullInt64{Int64: int64(set.Player2Games), Valid: true}
		}
	}
	return row
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var o outcomeRow
	err := row.Scan(
		&m.ID, &m.RoundID, &m.CategoryID, &m.Player1ID, &m.Player2ID,
		&o.WinnerID, &o.IsWalkover, &o.WalkoverReason, &o.IsNotReported,
		&o.Sets[0][0], &o.Sets[0][1], &o.Sets[1][0], &o.Sets[1][1],
		&o.Sets[2][0], &o.Sets[2][1],
		&m.ResultLoadedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	m.Outcome = o.toOutcome()
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (round_id, category_id, player1_id, player2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.RoundID, match.CategoryID, match.Player1ID, match.Player2ID,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		switch code, _ := pqErrorCode(err); code {
		case pqCheckViolation:
			return ErrMatchPlayerInvalid
		case pqForeignKeyViolation:
			return ErrMatchRoundInvalid
		}
		return err
	}
	match.Outcome = models.Undecided{}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrMatchNotFound) {
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, err
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round_id = $1 ORDER BY id ASC`
	return r.queryMatches(ctx, exec, query, roundID)
}

func (r *postgresMatchRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE category_id = $1 ORDER BY round_id ASC, id ASC`
	return r.queryMatches(ctx, exec, query, categoryID)
}

func (r *postgresMatchRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE player1_id = $1 OR player2_id = $1 ORDER BY round_id ASC, id ASC`
	return r.queryMatches(ctx, exec, query, playerID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateOutcome(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	o := outcomeRowOf(match.CurrentOutcome())
	query := `
		UPDATE matches SET
			winner_id = $1, is_walkover = $2, walkover_reason = $3, is_not_reported = $4,
			set1_player1_games = $5, set1_player2_games = $6,
			set2_player1_games = $7, set2_player2_games = $8,
			set3_player1_games = $9, set3_player2_games = $10,
			result_loaded_at = CASE WHEN $1::int IS NULL THEN NULL ELSE NOW() END,
			updated_at = NOW()
		WHERE id = $11
		RETURNING result_loaded_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		o.WinnerID, o.IsWalkover, o.WalkoverReason, o.IsNotReported,
		o.Sets[0][0], o.Sets[0][1], o.Sets[1][0], o.Sets[1][1], o.Sets[2][0], o.Sets[2][1],
		match.ID,
	).Scan(&match.ResultLoadedAt, &match.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		if code, _ := pqErrorCode(err); code == pqCheckViolation || code == pqForeignKeyViolation {
			return ErrMatchPlayerInvalid
		}
		return fmt.Errorf("failed to update outcome of match %d: %w", match.ID, err)
	}
	return nil
}

func (r *postgresMatchRepository) CountUnresolved(ctx context.Context, exec SQLExecutor, roundID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE round_id = $1 AND winner_id IS NULL AND NOT is_not_reported`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, roundID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unresolved matches of round %d: %w", roundID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) MarkUndecidedUnreported(ctx context.Context, exec SQLExecutor, roundID int) (int, error) {
	query := `
		UPDATE matches SET is_not_reported = TRUE, updated_at = NOW()
		WHERE round_id = $1 AND winner_id IS NULL AND NOT is_not_reported`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, roundID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark matches of round %d as unreported: %w", roundID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}

func (r *postgresMatchRepository) HasResults(ctx context.Context, exec SQLExecutor, categoryID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE category_id = $1 AND winner_id IS NOT NULL)`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check results of category %d: %w", categoryID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("failed to delete matches of category %d: %w", categoryID, err)
	}
	return nil
}
