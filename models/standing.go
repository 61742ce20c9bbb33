package models

import "time"

// Standing is a derived row of the category table. It is rebuilt from the
// match set on every round close and never patched incrementally.
type Standing struct {
	ID                    int       `json:"id" db:"id"`
	CategoryID            int       `json:"category_id" db:"category_id"`
	PlayerID              int       `json:"player_id" db:"player_id"`
	Position              int       `json:"position" db:"position"` // 0 пока позиция не присвоена
	Points                int       `json:"points" db:"points"`
	MatchesPlayed         int       `json:"matches_played" db:"matches_played"`
	MatchesWon            int       `json:"matches_won" db:"matches_won"`
	MatchesLost           int       `json:"matches_lost" db:"matches_lost"`
	MatchesWonByWalkover  int       `json:"matches_won_by_wo" db:"matches_won_by_wo"`
	MatchesLostByWalkover int       `json:"matches_lost_by_wo" db:"matches_lost_by_wo"`
	MatchesNotReported    int       `json:"matches_not_reported" db:"matches_not_reported"`
	SetsWon               int       `json:"sets_won" db:"sets_won"`
	SetsLost              int       `json:"sets_lost" db:"sets_lost"`
	GamesWon              int       `json:"games_won" db:"games_won"`
	GamesLost             int       `json:"games_lost" db:"games_lost"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

func (s *Standing) SetDifference() int {
	return s.SetsWon - s.SetsLost
}

func (s *Standing) GameDifference() int {
	return s.GamesWon - s.GamesLost
}
