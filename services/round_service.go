package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/fixture"
	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// AutoExpireResult describes what one automatic expiry changed.
type AutoExpireResult struct {
	Round             *models.Round
	UnreportedMatches int
	ActivatedNext     *models.Round
}

type RoundService interface {
	Activate(ctx context.Context, roundID int) (*models.Round, error)
	Close(ctx context.Context, roundID int) (*models.Round, error)
	Reopen(ctx context.Context, roundID int) (*models.Round, error)
	// AutoExpire is reserved for the expiry trigger.
	AutoExpire(ctx context.Context, roundID int) (*AutoExpireResult, error)
	UpdateDates(ctx context.Context, roundID int, start, end time.Time) (*models.Round, error)
	GetRound(ctx context.Context, roundID int) (*models.Round, error)
	ListRounds(ctx context.Context, categoryID int) ([]*models.Round, error)
}

type roundService struct {
	db           *sql.DB
	categoryRepo repositories.CategoryRepository
	roundRepo    repositories.RoundRepository
	matchRepo    repositories.MatchRepository
	standings    StandingsService
	notifier     CategoryNotifier // может быть nil
	logger       *slog.Logger
	now          func() time.Time
}

func NewRoundService(
	db *sql.DB,
	categoryRepo repositories.CategoryRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	standingsService StandingsService,
	notifier CategoryNotifier,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		db:           db,
		categoryRepo: categoryRepo,
		roundRepo:    roundRepo,
		matchRepo:    matchRepo,
		standings:    standingsService,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// lockRound loads the round with a row lock held until tx ends.
func (s *roundService) lockRound(ctx context.Context, tx *sql.Tx, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByIDForUpdate(ctx, tx, roundID)
	if err != nil {
		return nil, handleRepositoryError(err, fmt.Sprintf("lock round %d", roundID))
	}
	return round, nil
}

func (s *roundService) Activate(ctx context.Context, roundID int) (*models.Round, error) {
	var round *models.Round
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		round, err = s.lockRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if round.Status != models.RoundStatusPending {
			return fmt.Errorf("%w: cannot activate a round that is %s", ErrInvalidRoundTransition, round.Status)
		}
		busy, err := s.roundRepo.HasOtherActive(ctx, tx, round.CategoryID, round.ID)
		if err != nil {
			return fmt.Errorf("check active rounds of category %d: %w", round.CategoryID, err)
		}
		if busy {
			return ErrAnotherRoundActive
		}

		round.Status = models.RoundStatusActive
		round.ClosedAt = nil
		return handleRepositoryError(s.roundRepo.UpdateStatus(ctx, tx, round), "activate round")
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, round)
	return round, nil
}

func (s *roundService) Close(ctx context.Context, roundID int) (*models.Round, error) {
	var (
		round *models.Round
		table []*models.Standing
	)
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		round, err = s.lockRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if !isValidRoundTransition(round.Status, models.RoundStatusCompleted) {
			return fmt.Errorf("%w: cannot close a round that is %s", ErrInvalidRoundTransition, round.Status)
		}
		unresolved, err := s.matchRepo.CountUnresolved(ctx, tx, round.ID)
		if err != nil {
			return fmt.Errorf("count unresolved matches of round %d: %w", round.ID, err)
		}
		if unresolved > 0 {
			return &UnresolvedMatchesError{RoundID: round.ID, Count: unresolved}
		}

		table, err = s.standings.Recompute(ctx, tx, round.CategoryID)
		if err != nil {
			return err
		}

		closedAt := s.now().UTC()
		round.Status = models.RoundStatusCompleted
		round.ClosedAt = &closedAt
		return handleRepositoryError(s.roundRepo.UpdateStatus(ctx, tx, round), "close round")
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, round)
	s.standings.Publish(ctx, round, table)
	return round, nil
}

func (s *roundService) Reopen(ctx context.Context, roundID int) (*models.Round, error) {
	var round *models.Round
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		round, err = s.lockRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if !isValidRoundTransition(round.Status, models.RoundStatusPending) {
			return fmt.Errorf("%w: cannot reopen a round that is %s", ErrInvalidRoundTransition, round.Status)
		}
		round.Status = models.RoundStatusPending
		round.ClosedAt = nil
		return handleRepositoryError(s.roundRepo.UpdateStatus(ctx, tx, round), "reopen round")
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, round)
	return round, nil
}

func (s *roundService) AutoExpire(ctx context.Context, roundID int) (*AutoExpireResult, error) {
	result := &AutoExpireResult{}
	var table []*models.Standing
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		round, err := s.lockRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		// Повторный запуск триггера видит уже закрытую фазу.
		if round.Status != models.RoundStatusActive {
			return fmt.Errorf("%w: round %d is %s", ErrRoundNotActive, round.ID, round.Status)
		}

		result.UnreportedMatches, err = s.matchRepo.MarkUndecidedUnreported(ctx, tx, round.ID)
		if err != nil {
			return fmt.Errorf("mark unreported matches of round %d: %w", round.ID, err)
		}

		closedAt := s.now().UTC()
		round.Status = models.RoundStatusExpired
		round.ClosedAt = &closedAt
		if err := s.roundRepo.UpdateStatus(ctx, tx, round); err != nil {
			return handleRepositoryError(err, "expire round")
		}
		result.Round = round

		table, err = s.standings.Recompute(ctx, tx, round.CategoryID)
		if err != nil {
			return err
		}

		next, err := s.activateNext(ctx, tx, round)
		if err != nil {
			return err
		}
		result.ActivatedNext = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordUnreported(result.UnreportedMatches)
	s.afterTransition(ctx, result.Round)
	if result.ActivatedNext != nil {
		s.afterTransition(ctx, result.ActivatedNext)
	}
	s.standings.Publish(ctx, result.Round, table)
	return result, nil
}

// activateNext moves the following round of the category to active when it is
// still pending. The last round has no successor.
func (s *roundService) activateNext(ctx context.Context, tx *sql.Tx, expired *models.Round) (*models.Round, error) {
	next, err := s.roundRepo.GetByNumber(ctx, tx, expired.CategoryID, expired.Number+1)
	if errors.Is(err, repositories.ErrRoundNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load round %d of category %d: %w", expired.Number+1, expired.CategoryID, err)
	}
	next, err = s.lockRound(ctx, tx, next.ID)
	if err != nil {
		return nil, err
	}
	if next.Status != models.RoundStatusPending {
		return nil, nil
	}
	next.Status = models.RoundStatusActive
	next.ClosedAt = nil
	if err := s.roundRepo.UpdateStatus(ctx, tx, next); err != nil {
		return nil, handleRepositoryError(err, "activate next round")
	}
	return next, nil
}

func (s *roundService) afterTransition(ctx context.Context, round *models.Round) {
	metrics.RecordRoundTransition(string(round.Status))
	s.logger.InfoContext(ctx, "round status changed",
		slog.Int("round_id", round.ID),
		slog.Int("category_id", round.CategoryID),
		slog.Int("round_number", round.Number),
		slog.String("status", string(round.Status)))
	if s.notifier != nil {
		s.notifier.NotifyCategory(round.CategoryID, live.EventRoundUpdated, round)
	}
}

func (s *roundService) UpdateDates(ctx context.Context, roundID int, start, end time.Time) (*models.Round, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	round, err := s.roundRepo.GetByID(ctx, nil, roundID)
	if err != nil {
		return nil, handleRepositoryError(err, "update round dates: load round")
	}
	round.PeriodStart = fixture.DateOf(start)
	round.PeriodEnd = fixture.DateOf(end)
	if err := s.roundRepo.UpdateDates(ctx, nil, round); err != nil {
		return nil, handleRepositoryError(err, "update round dates")
	}
	if s.notifier != nil {
		s.notifier.NotifyCategory(round.CategoryID, live.EventRoundUpdated, round)
	}
	return round, nil
}

func (s *roundService) GetRound(ctx context.Context, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, nil, roundID)
	if err != nil {
		return nil, handleRepositoryError(err, "get round")
	}
	matches, err := s.matchRepo.ListByRound(ctx, nil, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of round %d: %w", round.ID, err)
	}
	round.Matches = emptyIfNil(matches)
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context, categoryID int) ([]*models.Round, error) {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return nil, handleRepositoryError(err, "list rounds: load category")
	}
	rounds, err := s.roundRepo.ListByCategory(ctx, nil, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of category %d: %w", categoryID, err)
	}
	return emptyIfNil(rounds), nil
}
