package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

// User is a login account. Player accounts link to exactly one Player.
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	PlayerID     *int      `json:"player_id,omitempty" db:"player_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
