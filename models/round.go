package models

import "time"

// RoundStatus соответствует ENUM round_status в БД.
type RoundStatus string

const (
	RoundStatusPending   RoundStatus = "pending"
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
	RoundStatusExpired   RoundStatus = "expired"
)

// Round is one block of play within a category. PeriodStart and PeriodEnd are
// calendar dates (UTC midnight), both inclusive.
type Round struct {
	ID          int         `json:"id" db:"id"`
	CategoryID  int         `json:"category_id" db:"category_id"`
	Number      int         `json:"round_number" db:"round_number"`
	PeriodStart time.Time   `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time   `json:"period_end" db:"period_end"`
	Status      RoundStatus `json:"status" db:"status"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	Matches []*Match `json:"matches,omitempty" db:"-"`
}

// IsClosed reports whether the round has been closed, manually or by expiry.
func (r *Round) IsClosed() bool {
	return r.Status == RoundStatusCompleted || r.Status == RoundStatusExpired
}
