package models

import (
	"strings"
	"time"
)

type PlayerStatus string

const (
	PlayerStatusActive   PlayerStatus = "active"
	PlayerStatusInactive PlayerStatus = "inactive"
)

type Player struct {
	ID                int          `json:"id" db:"id"`
	FirstName         string       `json:"first_name" db:"first_name"`
	LastName          string       `json:"last_name" db:"last_name"`
	Email             string       `json:"email" db:"email"`
	Phone             *string      `json:"phone,omitempty" db:"phone"`
	Notes             *string      `json:"notes,omitempty" db:"notes"`
	Status            PlayerStatus `json:"status" db:"status"`
	InitialCategoryID int          `json:"initial_category_id" db:"initial_category_id"`
	CurrentCategoryID int          `json:"current_category_id" db:"current_category_id"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
	DeactivatedAt     *time.Time   `json:"deactivated_at,omitempty" db:"deactivated_at"`
}

func (p *Player) IsActive() bool {
	return p != nil && p.Status == PlayerStatusActive
}

// FullName returns "First Last".
func (p *Player) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func IsValidPlayerStatus(s PlayerStatus) bool {
	return s == PlayerStatusActive || s == PlayerStatusInactive
}
