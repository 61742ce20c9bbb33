package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerEmailConflict   = errors.New("player email already in use")
	ErrPlayerCategoryInvalid = errors.New("player category does not exist")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PlayerStatus, deactivatedAt *time.Time) error
	// ListByCategory returns the players currently assigned to the category,
	// ordered by last name, first name. A nil status returns every player.
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int, status *models.PlayerStatus) ([]*models.Player, error)
	GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, first_name, last_name, email, phone, notes, status,
	initial_category_id, current_category_id, created_at, updated_at, deactivated_at`

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Notes, &p.Status,
		&p.InitialCategoryID, &p.CurrentCategoryID, &p.CreatedAt, &p.UpdatedAt, &p.DeactivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players
			(first_name, last_name, email, phone, notes, status, initial_category_id, current_category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		player.FirstName, player.LastName, player.Email, player.Phone, player.Notes,
		player.Status, player.InitialCategoryID, player.CurrentCategoryID,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return p, err
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET first_name = $1, last_name = $2, email = $3, phone = $4, notes = $5,
		    current_category_id = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		player.FirstName, player.LastName, player.Email, player.Phone, player.Notes,
		player.CurrentCategoryID, player.ID,
	).Scan(&player.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PlayerStatus, deactivatedAt *time.Time) error {
	query := `UPDATE players SET status = $1, deactivated_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, deactivatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update status of player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int, status *models.PlayerStatus) ([]*models.Player, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + playerColumns + ` FROM players WHERE current_category_id = $1`)
	args := []interface{}{categoryID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY last_name ASC, first_name ASC, id ASC")

	return r.queryPlayers(ctx, exec, queryBuilder.String(), args...)
}

func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Player, error) {
	result := make(map[int]*models.Player, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1)`
	players, err := r.queryPlayers(ctx, exec, query, intArray(ids))
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		result[p.ID] = p
	}
	return result, nil
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	switch code, _ := pqErrorCode(err); code {
	case pqUniqueViolation:
		return ErrPlayerEmailConflict
	case pqForeignKeyViolation:
		return ErrPlayerCategoryInvalid
	}
	return err
}
