package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var ErrStandingPlayerInvalid = errors.New("standing player or category invalid")

type StandingRepository interface {
	// Upsert writes the row keyed by (category, player), creating it if missing.
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	BatchUpsert(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error
	// ListByCategory returns the table ordered by position, with players attached.
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Standing, error)
	// DeleteByCategoryExcept drops the rows of players no longer in keepPlayerIDs.
	DeleteByCategoryExcept(ctx context.Context, exec SQLExecutor, categoryID int, keepPlayerIDs []int) error
	DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error
}

type postgresStandingRepository struct {
	db *sql.DB // используется, когда exec == nil
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Standing) error {
	query := `
		INSERT INTO standings
			(category_id, player_id, position, points, matches_played, matches_won, matches_lost,
			 matches_won_by_wo, matches_lost_by_wo, matches_not_reported,
			 sets_won, sets_lost, games_won, games_lost, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (category_id, player_id) DO UPDATE SET
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			matches_played = EXCLUDED.matches_played,
			matches_won = EXCLUDED.matches_won,
			matches_lost = EXCLUDED.matches_lost,
			matches_won_by_wo = EXCLUDED.matches_won_by_wo,
			matches_lost_by_wo = EXCLUDED.matches_lost_by_wo,
			matches_not_reported = EXCLUDED.matches_not_reported,
			sets_won = EXCLUDED.sets_won,
			sets_lost = EXCLUDED.sets_lost,
			games_won = EXCLUDED.games_won,
			games_lost = EXCLUDED.games_lost,
			updated_at = NOW()
		RETURNING id, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		s.CategoryID, s.PlayerID, s.Position, s.Points, s.MatchesPlayed, s.MatchesWon, s.MatchesLost,
		s.MatchesWonByWalkover, s.MatchesLostByWalkover, s.MatchesNotReported,
		s.SetsWon, s.SetsLost, s.GamesWon, s.GamesLost,
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		if code, _ := pqErrorCode(err); code == pqForeignKeyViolation {
			return ErrStandingPlayerInvalid
		}
		return err
	}
	return nil
}

func (r *postgresStandingRepository) BatchUpsert(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error {
	executor := r.getExecutor(exec)
	for _, s := range standings {
		if err := r.Upsert(ctx, executor, s); err != nil {
			return fmt.Errorf("BatchUpsert failed for player %d: %w", s.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Standing, error) {
	query := `
		SELECT s.id, s.category_id, s.player_id, s.position, s.points, s.matches_played,
		       s.matches_won, s.matches_lost, s.matches_won_by_wo, s.matches_lost_by_wo,
		       s.matches_not_reported, s.sets_won, s.sets_lost, s.games_won, s.games_lost, s.updated_at,
		       p.first_name, p.last_name, p.status
		FROM standings s
		JOIN players p ON p.id = s.player_id
		WHERE s.category_id = $1
		ORDER BY s.position ASC, LOWER(p.last_name) ASC, LOWER(p.first_name) ASC, s.player_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings of category %d: %w", categoryID, err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		p := &models.Player{}
		if scanErr := rows.Scan(
			&s.ID, &s.CategoryID, &s.PlayerID, &s.Position, &s.Points, &s.MatchesPlayed,
			&s.MatchesWon, &s.MatchesLost, &s.MatchesWonByWalkover, &s.MatchesLostByWalkover,
			&s.MatchesNotReported, &s.SetsWon, &s.SetsLost, &s.GamesWon, &s.GamesLost, &s.UpdatedAt,
			&p.FirstName, &p.LastName, &p.Status,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		p.ID = s.PlayerID
		p.CurrentCategoryID = s.CategoryID
		s.Player = p
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

func (r *postgresStandingRepository) DeleteByCategoryExcept(ctx context.Context, exec SQLExecutor, categoryID int, keepPlayerIDs []int) error {
	query := `DELETE FROM standings WHERE category_id = $1 AND NOT (player_id = ANY($2))`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, categoryID, intArray(keepPlayerIDs)); err != nil {
		return fmt.Errorf("failed to prune standings of category %d: %w", categoryID, err)
	}
	return nil
}

func (r *postgresStandingRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM standings WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("failed to delete standings of category %d: %w", categoryID, err)
	}
	return nil
}
