package models

import (
	"encoding/json"
	"time"
)

type OutcomeKind string

const (
	OutcomeUndecided  OutcomeKind = "undecided"
	OutcomeDecisive   OutcomeKind = "decisive"
	OutcomeWalkover   OutcomeKind = "walkover"
	OutcomeUnreported OutcomeKind = "unreported"
)

// Outcome is one of Undecided, Decisive, Walkover or Unreported.
type Outcome interface {
	Kind() OutcomeKind
	// Winner returns the winning player id, if the outcome has one.
	Winner() (int, bool)
}

// SetScore holds the games won in one set by the match's Player1 and Player2.
type SetScore struct {
	Player1Games int `json:"player1_games"`
	Player2Games int `json:"player2_games"`
}

// Player1Won reports whether Player1 took the set. Callers validate that a
// set is never tied before it is stored.
func (s SetScore) Player1Won() bool {
	return s.Player1Games > s.Player2Games
}

type Undecided struct{}

type Decisive struct {
	WinnerID int
	Sets     []SetScore
}

type Walkover struct {
	WinnerID int
	Reason   *string
}

type Unreported struct{}

func (Undecided) Kind() OutcomeKind { return OutcomeUndecided }
func (Decisive) Kind() OutcomeKind { return OutcomeDecisive }
func (Walkover) Kind() OutcomeKind { return OutcomeWalkover }
func (Unreported) Kind() OutcomeKind { return OutcomeUnreported }

func (Undecided) Winner() (int, bool) { return 0, false }
func (d Decisive) Winner() (int, bool) { return d.WinnerID, true }
func (w Walkover) Winner() (int, bool) { return w.WinnerID, true }
func (Unreported) Winner() (int, bool) { return 0, false }

type Match struct {
	ID             int        `json:"id" db:"id"`
	RoundID        int        `json:"round_id" db:"round_id"`
	CategoryID     int        `json:"category_id" db:"category_id"`
	Player1ID      int        `json:"player1_id" db:"player1_id"`
	Player2ID      int        `json:"player2_id" db:"player2_id"`
	Outcome        Outcome    `json:"-" db:"-"`
	ResultLoadedAt *time.Time `json:"result_loaded_at,omitempty" db:"result_loaded_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

// CurrentOutcome treats a nil Outcome as Undecided.
func (m *Match) CurrentOutcome() Outcome {
	if m.Outcome == nil {
		return Undecided{}
	}
	return m.Outcome
}

func (m *Match) HasPlayer(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Opponent returns the other participant, or 0 if playerID is not in the match.
func (m *Match) Opponent(playerID int) int {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	default:
		return 0
	}
}

// IsDecided reports whether the match has a recorded winner.
func (m *Match) IsDecided() bool {
	_, ok := m.CurrentOutcome().Winner()
	return ok
}

// IsResolved reports whether the match no longer blocks its round from closing.
func (m *Match) IsResolved() bool {
	return m.CurrentOutcome().Kind() != OutcomeUndecided
}

type outcomeJSON struct {
	Kind           OutcomeKind `json:"kind"`
	WinnerID       *int        `json:"winner_id,omitempty"`
	Sets           []SetScore  `json:"sets,omitempty"`
	WalkoverReason *string     `json:"walkover_reason,omitempty"`
}

func (m Match) MarshalJSON() ([]byte, error) {
	type matchAlias Match
	out := outcomeJSON{Kind: m.CurrentOutcome().Kind()}
	switch o := m.CurrentOutcome().(type) {
	case Decisive:
		winner := o.WinnerID
		out.WinnerID = &winner
		out.Sets = o.Sets
	case Walkover:
		winner := o.WinnerID
		out.WinnerID = &winner
		out.WalkoverReason = o.Reason
	}
	return json.Marshal(struct {
		matchAlias
		Outcome outcomeJSON `json:"outcome"`
	}{
		matchAlias: matchAlias(m),
		Outcome:    out,
	})
}
