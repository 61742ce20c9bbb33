package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/fixture"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/storage"
)

// MaxGamesPerSet - верхняя граница геймов в сете (7 при тай-брейке).
const MaxGamesPerSet = 7

// CategoryNotifier pushes events to everyone watching a category.
type CategoryNotifier interface {
	NotifyCategory(categoryID int, eventType string, payload interface{})
}

// StandingsArchiver stores a standings snapshot and returns where it went.
type StandingsArchiver interface {
	ArchiveStandings(ctx context.Context, snapshot storage.StandingsSnapshot) (string, error)
}

func validateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: period start and end are required", ErrValidationFailed)
	}
	if fixture.DateOf(end).Before(fixture.DateOf(start)) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return nil
}

// allowedTransitions описывает допустимые ручные переходы.
// Автоматическое истечение (active -> expired) проверяется отдельно.
var allowedTransitions = map[models.RoundStatus][]models.RoundStatus{
	models.RoundStatusPending:   {models.RoundStatusActive, models.RoundStatusCompleted},
	models.RoundStatusActive:    {models.RoundStatusCompleted},
	models.RoundStatusCompleted: {models.RoundStatusPending},
	models.RoundStatusExpired:   {models.RoundStatusPending},
}

func isValidRoundTransition(current, next models.RoundStatus) bool {
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// validateSets checks a decisive result against the match participants and
// returns the normalised outcome.
func validateSets(match *models.Match, winnerID int, sets []models.SetScore) (models.Decisive, error) {
	if !match.HasPlayer(winnerID) {
		return models.Decisive{}, fmt.Errorf("%w: player %d does not play match %d", ErrInvalidWinner, winnerID, match.ID)
	}
	if len(sets) < 2 || len(sets) > 3 {
		return models.Decisive{}, fmt.Errorf("%w: expected 2 or 3 sets, got %d", ErrInvalidSetScores, len(sets))
	}

	var p1Sets, p2Sets int
	for i, set := range sets {
		if set.Player1Games < 0 || set.Player2Games < 0 || set.Player1Games > MaxGamesPerSet || set.Player2Games > MaxGamesPerSet {
			return models.Decisive{}, fmt.Errorf("%w: set %d games must be between 0 and %d", ErrInvalidSetScores, i+1, MaxGamesPerSet)
		}
		if set.Player1Games == set.Player2Games {
			return models.Decisive{}, fmt.Errorf("%w: set %d has no winner", ErrInvalidSetScores, i+1)
		}
		// третий сет играется только при 1:1
		if i == 2 && p1Sets != p2Sets {
			return models.Decisive{}, fmt.Errorf("%w: match was already decided after two sets", ErrInvalidSetScores)
		}
		if set.Player1Won() {
			p1Sets++
		} else {
			p2Sets++
		}
	}
	if p1Sets == p2Sets {
		return models.Decisive{}, fmt.Errorf("%w: sets are level at %d-%d", ErrInvalidSetScores, p1Sets, p2Sets)
	}

	setWinner := match.Player1ID
	if p2Sets > p1Sets {
		setWinner = match.Player2ID
	}
	if setWinner != winnerID {
		return models.Decisive{}, fmt.Errorf("%w: sets were won by player %d", ErrInvalidWinner, setWinner)
	}

	return models.Decisive{WinnerID: winnerID, Sets: append([]models.SetScore(nil), sets...)}, nil
}

func validateWalkover(match *models.Match, winnerID int, reason *string) (models.Walkover, error) {
	if !match.HasPlayer(winnerID) {
		return models.Walkover{}, fmt.Errorf("%w: player %d does not play match %d", ErrInvalidWinner, winnerID, match.ID)
	}
	if reason != nil && *reason == "" {
		reason = nil
	}
	return models.Walkover{WinnerID: winnerID, Reason: reason}, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
