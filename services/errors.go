package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidSetScores    = errors.New("invalid set scores")
	ErrDuplicateSchedule   = errors.New("category already has a fixture")
	ErrInsufficientPlayers = errors.New("not enough active players to generate a fixture")
	ErrInvalidDateRange    = errors.New("period end must not be before period start")
	ErrInvalidWinner       = errors.New("winner does not match the match participants or the set scores")
	ErrPasswordTooShort    = errors.New("password is too short")

	// Ошибки состояния
	ErrRoundNotActive         = errors.New("round is not active")
	ErrAlreadyDecided         = errors.New("match already has a result")
	ErrNotParticipant         = errors.New("player is not a participant of this match")
	ErrRoundClosed            = errors.New("round is closed, reopen it to edit results")
	ErrInvalidRoundTransition = errors.New("invalid round status transition")
	ErrAnotherRoundActive     = errors.New("another round of this category is already active")
	ErrFixtureHasResults      = errors.New("fixture already has recorded results")
	ErrPlayerInactive         = errors.New("player is not active")
	ErrUnresolvedMatches      = errors.New("round has unresolved matches")

	// Ошибки конфликтов
	ErrCategoryNameConflict = errors.New("category name already exists for this season")
	ErrCategoryInUse        = errors.New("category still has players or rounds")
	ErrEmailConflict        = errors.New("email address is already in use")
	ErrCredentialsExist     = errors.New("player already has an account")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Не найдено
	ErrCategoryNotFound = errors.New("category not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrUserNotFound     = errors.New("user not found")
)

// UnresolvedMatchesError is returned by Close when some matches of the round
// are neither decided nor marked unreported.
type UnresolvedMatchesError struct {
	RoundID int
	Count   int
}

func (e *UnresolvedMatchesError) Error() string {
	return fmt.Sprintf("round %d has %d unresolved matches", e.RoundID, e.Count)
}

func (e *UnresolvedMatchesError) Is(target error) bool {
	return target == ErrUnresolvedMatches
}

// handleRepositoryError maps repository sentinels onto the service taxonomy.
// Anything unknown is wrapped with op and treated as infrastructure failure.
func handleRepositoryError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrCategoryNameConflict):
		return ErrCategoryNameConflict
	case errors.Is(err, repositories.ErrCategoryInUse):
		return ErrCategoryInUse
	case errors.Is(err, repositories.ErrPlayerEmailConflict), errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrEmailConflict
	case errors.Is(err, repositories.ErrUserPlayerConflict):
		return ErrCredentialsExist
	case errors.Is(err, repositories.ErrPlayerCategoryInvalid):
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrCategoryNotFound)
	case errors.Is(err, repositories.ErrRoundAlreadyActive):
		return ErrAnotherRoundActive
	case errors.Is(err, repositories.ErrRoundInvalidPeriod):
		return ErrInvalidDateRange
	}
	return fmt.Errorf("%s: %w", op, err)
}
