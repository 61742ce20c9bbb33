package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailConflict  = errors.New("user email conflict")
	ErrUserPlayerConflict = errors.New("player already has an account")
	ErrUserPlayerInvalid  = errors.New("user player invalid")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error)
	GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID int) (*models.User, error)
	UpdatePassword(ctx context.Context, exec SQLExecutor, id int, passwordHash string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, email, password_hash, role, player_id, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var playerID sql.NullInt64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &playerID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if playerID.Valid {
		id := int(playerID.Int64)
		u.PlayerID = &id
	}
	return &u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role, player_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.PlayerID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		code, constraint := pqErrorCode(err)
		switch code {
		case pqUniqueViolation:
			if constraint == "users_player_id_key" {
				return ErrUserPlayerConflict
			}
			return ErrUserEmailConflict
		case pqForeignKeyViolation:
			return ErrUserPlayerInvalid
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	return r.getOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error) {
	return r.getOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *postgresUserRepository) GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID int) (*models.User, error) {
	return r.getOne(ctx, exec, `SELECT `+userColumns+` FROM users WHERE player_id = $1`, playerID)
}

func (r *postgresUserRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.User, error) {
	u, err := scanUser(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, err
}

func (r *postgresUserRepository) UpdatePassword(ctx context.Context, exec SQLExecutor, id int, passwordHash string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password of user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
