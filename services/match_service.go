package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// ResultInput is a result as submitted by a participant.
type ResultInput struct {
	WinnerID       int               `json:"winner_id"`
	Walkover       bool              `json:"walkover"`
	WalkoverReason *string           `json:"walkover_reason,omitempty"`
	Sets           []models.SetScore `json:"sets,omitempty"`
}

// PlayerMatch is a match seen from one of its players.
type PlayerMatch struct {
	Match     *models.Match  `json:"match"`
	Round     *models.Round  `json:"round"`
	Opponent  *models.Player `json:"opponent,omitempty"`
	CanSubmit bool           `json:"can_submit"`
}

type MatchService interface {
	RecordDecisive(ctx context.Context, matchID, winnerID int, sets []models.SetScore) (*models.Match, error)
	RecordWalkover(ctx context.Context, matchID, winnerID int, reason *string) (*models.Match, error)
	MarkUnreported(ctx context.Context, matchID int) (*models.Match, error)
	SubmitAsParticipant(ctx context.Context, matchID, actingPlayerID int, input ResultInput) (*models.Match, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListCategoryFixture(ctx context.Context, categoryID int) ([]*models.Round, error)
	ListPlayerMatches(ctx context.Context, playerID int) ([]*PlayerMatch, error)
}

type matchService struct {
	db           *sql.DB
	categoryRepo repositories.CategoryRepository
	playerRepo   repositories.PlayerRepository
	roundRepo    repositories.RoundRepository
	matchRepo    repositories.MatchRepository
	notifier     CategoryNotifier // может быть nil
	logger       *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	categoryRepo repositories.CategoryRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	notifier CategoryNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:           db,
		categoryRepo: categoryRepo,
		playerRepo:   playerRepo,
		roundRepo:    roundRepo,
		matchRepo:    matchRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// lockMatch locks the match's round and reads the match again under that
// lock. Every outcome write holds the round lock, so the second read sees the
// latest committed result.
func (s *matchService) lockMatch(ctx context.Context, tx *sql.Tx, matchID int) (*models.Match, *models.Round, error) {
	match, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "load match")
	}
	round, err := s.roundRepo.GetByIDForUpdate(ctx, tx, match.RoundID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "lock round")
	}
	match, err = s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "reload match")
	}
	return match, round, nil
}

// adminUpdate applies change under the round lock. Closed rounds must be
// reopened before their results can be edited.
func (s *matchService) adminUpdate(ctx context.Context, matchID int, change func(m *models.Match) (models.Outcome, error)) (*models.Match, error) {
	var match *models.Match
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var (
			round *models.Round
			err   error
		)
		match, round, err = s.lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if round.IsClosed() {
			return ErrRoundClosed
		}
		outcome, err := change(match)
		if err != nil {
			return err
		}
		match.Outcome = outcome
		return handleRepositoryError(s.matchRepo.UpdateOutcome(ctx, tx, match), "update match outcome")
	})
	if err != nil {
		return nil, err
	}
	s.afterUpdate(ctx, match)
	return match, nil
}

func (s *matchService) RecordDecisive(ctx context.Context, matchID, winnerID int, sets []models.SetScore) (*models.Match, error) {
	return s.adminUpdate(ctx, matchID, func(m *models.Match) (models.Outcome, error) {
		return validateSets(m, winnerID, sets)
	})
}

func (s *matchService) RecordWalkover(ctx context.Context, matchID, winnerID int, reason *string) (*models.Match, error) {
	return s.adminUpdate(ctx, matchID, func(m *models.Match) (models.Outcome, error) {
		return validateWalkover(m, winnerID, reason)
	})
}

func (s *matchService) MarkUnreported(ctx context.Context, matchID int) (*models.Match, error) {
	return s.adminUpdate(ctx, matchID, func(*models.Match) (models.Outcome, error) {
		return models.Unreported{}, nil
	})
}

func (s *matchService) SubmitAsParticipant(ctx context.Context, matchID, actingPlayerID int, input ResultInput) (*models.Match, error) {
	var match *models.Match
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var (
			round *models.Round
			err   error
		)
		match, round, err = s.lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if !match.HasPlayer(actingPlayerID) {
			return ErrNotParticipant
		}
		player, err := s.playerRepo.GetByID(ctx, tx, actingPlayerID)
		if err != nil {
			return handleRepositoryError(err, "load acting player")
		}
		if !player.IsActive() {
			return ErrPlayerInactive
		}
		if round.Status != models.RoundStatusActive {
			return ErrRoundNotActive
		}
		if match.IsDecided() {
			return ErrAlreadyDecided
		}

		var outcome models.Outcome
		if input.Walkover {
			outcome, err = validateWalkover(match, input.WinnerID, input.WalkoverReason)
		} else {
			outcome, err = validateSets(match, input.WinnerID, input.Sets)
		}
		if err != nil {
			return err
		}
		match.Outcome = outcome
		return handleRepositoryError(s.matchRepo.UpdateOutcome(ctx, tx, match), "update match outcome")
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "result submitted by participant",
		slog.Int("match_id", match.ID),
		slog.Int("player_id", actingPlayerID))
	s.afterUpdate(ctx, match)
	return match, nil
}

func (s *matchService) afterUpdate(ctx context.Context, match *models.Match) {
	s.logger.InfoContext(ctx, "match outcome stored",
		slog.Int("match_id", match.ID),
		slog.Int("round_id", match.RoundID),
		slog.String("outcome", string(match.CurrentOutcome().Kind())))
	if s.notifier != nil {
		s.notifier.NotifyCategory(match.CategoryID, live.EventMatchUpdated, match)
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, handleRepositoryError(err, "get match")
	}
	if err := s.attachPlayers(ctx, []*models.Match{match}); err != nil {
		return nil, err
	}
	return match, nil
}

// ListCategoryFixture returns the rounds of the category in order, each with
// its matches.
func (s *matchService) ListCategoryFixture(ctx context.Context, categoryID int) ([]*models.Round, error) {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return nil, handleRepositoryError(err, "list fixture: load category")
	}

	var (
		rounds  []*models.Round
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = s.roundRepo.ListByCategory(gCtx, nil, categoryID)
		if err != nil {
			return fmt.Errorf("failed to list rounds of category %d: %w", categoryID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByCategory(gCtx, nil, categoryID)
		if err != nil {
			return fmt.Errorf("failed to list matches of category %d: %w", categoryID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attachPlayers(ctx, matches); err != nil {
		return nil, err
	}
	byRound := make(map[int][]*models.Match, len(rounds))
	for _, m := range matches {
		byRound[m.RoundID] = append(byRound[m.RoundID], m)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	for _, r := range rounds {
		r.Matches = emptyIfNil(byRound[r.ID])
	}
	return emptyIfNil(rounds), nil
}

func (s *matchService) ListPlayerMatches(ctx context.Context, playerID int) ([]*PlayerMatch, error) {
	if _, err := s.playerRepo.GetByID(ctx, nil, playerID); err != nil {
		return nil, handleRepositoryError(err, "list player matches: load player")
	}
	matches, err := s.matchRepo.ListByPlayer(ctx, nil, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of player %d: %w", playerID, err)
	}
	if len(matches) == 0 {
		return []*PlayerMatch{}, nil
	}

	roundIDs := make([]int, 0, len(matches))
	for _, m := range matches {
		roundIDs = append(roundIDs, m.RoundID)
	}
	var rounds map[int]*models.Round
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = s.roundRepo.ListByIDs(gCtx, nil, roundIDs)
		if err != nil {
			return fmt.Errorf("failed to load rounds of player %d: %w", playerID, err)
		}
		return nil
	})
	g.Go(func() error {
		return s.attachPlayers(gCtx, matches)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]*PlayerMatch, 0, len(matches))
	for _, m := range matches {
		round := rounds[m.RoundID]
		if round == nil {
			s.logger.WarnContext(ctx, "match without round", slog.Int("match_id", m.ID), slog.Int("round_id", m.RoundID))
			continue
		}
		opponent := m.Player1
		if m.Player1ID == playerID {
			opponent = m.Player2
		}
		views = append(views, &PlayerMatch{
			Match:     m,
			Round:     round,
			Opponent:  opponent,
			CanSubmit: round.Status == models.RoundStatusActive && !m.IsDecided(),
		})
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Round.Number < views[j].Round.Number })
	return views, nil
}

func (s *matchService) attachPlayers(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(matches)*2)
	ids := make([]int, 0, len(matches)*2)
	for _, m := range matches {
		for _, id := range []int{m.Player1ID, m.Player2ID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	players, err := s.playerRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to load match players: %w", err)
	}
	for _, m := range matches {
		m.Player1 = players[m.Player1ID]
		m.Player2 = players[m.Player2ID]
	}
	return nil
}
