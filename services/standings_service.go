package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

type StandingsService interface {
	// Recompute rebuilds and stores the category table. It must be called
	// with the transaction that closes or expires a round.
	Recompute(ctx context.Context, exec repositories.SQLExecutor, categoryID int) ([]*models.Standing, error)
	GetStandings(ctx context.Context, categoryID int) ([]*models.Standing, error)
	// Publish pushes a committed table to live subscribers and the archive.
	Publish(ctx context.Context, round *models.Round, table []*models.Standing)
}

type standingsService struct {
	categoryRepo repositories.CategoryRepository
	playerRepo   repositories.PlayerRepository
	matchRepo    repositories.MatchRepository
	standingRepo repositories.StandingRepository
	pointsPerWin int
	notifier     CategoryNotifier  // может быть nil
	archiver     StandingsArchiver // может быть nil
	logger       *slog.Logger
	now          func() time.Time
}

func NewStandingsService(
	categoryRepo repositories.CategoryRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	pointsPerWin int,
	notifier CategoryNotifier,
	archiver StandingsArchiver,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		categoryRepo: categoryRepo,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		pointsPerWin: pointsPerWin,
		notifier:     notifier,
		archiver:     archiver,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *standingsService) Recompute(ctx context.Context, exec repositories.SQLExecutor, categoryID int) ([]*models.Standing, error) {
	started := time.Now()

	if _, err := s.categoryRepo.GetByID(ctx, exec, categoryID); err != nil {
		return nil, handleRepositoryError(err, "recompute: load category")
	}
	// Все игроки категории, включая неактивных: их сыгранные матчи остаются в таблице.
	players, err := s.playerRepo.ListByCategory(ctx, exec, categoryID, nil)
	if err != nil {
		return nil, fmt.Errorf("recompute: load players of category %d: %w", categoryID, err)
	}
	matches, err := s.matchRepo.ListByCategory(ctx, exec, categoryID)
	if err != nil {
		return nil, fmt.Errorf("recompute: load matches of category %d: %w", categoryID, err)
	}

	table := standings.Compute(categoryID, players, matches, s.pointsPerWin)
	for _, skip := range table.Skipped {
		s.logger.WarnContext(ctx, "match skipped while rebuilding standings",
			slog.Int("category_id", categoryID),
			slog.Int("match_id", skip.MatchID),
			slog.String("reason", skip.Reason))
	}

	keep := make([]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		keep = append(keep, row.PlayerID)
	}
	if err := s.standingRepo.DeleteByCategoryExcept(ctx, exec, categoryID, keep); err != nil {
		return nil, fmt.Errorf("recompute: prune standings of category %d: %w", categoryID, err)
	}
	if err := s.standingRepo.BatchUpsert(ctx, exec, table.Rows); err != nil {
		return nil, fmt.Errorf("recompute: store standings of category %d: %w", categoryID, err)
	}

	metrics.ObserveRecompute(time.Since(started), len(table.Skipped))
	s.logger.InfoContext(ctx, "standings rebuilt",
		slog.Int("category_id", categoryID),
		slog.Int("players", len(table.Rows)),
		slog.Int("decided_matches", table.Decided),
		slog.Int("skipped_matches", len(table.Skipped)))
	return table.Rows, nil
}

func (s *standingsService) GetStandings(ctx context.Context, categoryID int) ([]*models.Standing, error) {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return nil, handleRepositoryError(err, "get standings: load category")
	}
	rows, err := s.standingRepo.ListByCategory(ctx, nil, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for category %d: %w", categoryID, err)
	}
	return emptyIfNil(rows), nil
}

func (s *standingsService) Publish(ctx context.Context, round *models.Round, table []*models.Standing) {
	if round == nil || (s.notifier == nil && s.archiver == nil) {
		return
	}
	snapshot := storage.StandingsSnapshot{
		CategoryID:  round.CategoryID,
		RoundID:     round.ID,
		RoundNumber: round.Number,
		RoundStatus: round.Status,
		GeneratedAt: s.now().UTC(),
		Standings:   emptyIfNil(table),
	}

	g, gCtx := errgroup.WithContext(ctx)
	if s.notifier != nil {
		g.Go(func() error {
			s.notifier.NotifyCategory(round.CategoryID, live.EventStandingsUpdated, snapshot)
			return nil
		})
	}
	if s.archiver != nil {
		g.Go(func() error {
			location, err := s.archiver.ArchiveStandings(gCtx, snapshot)
			if err != nil {
				return fmt.Errorf("archive standings snapshot %s: %w", snapshot.Key(), err)
			}
			s.logger.InfoContext(ctx, "standings snapshot archived",
				slog.Int("round_id", round.ID),
				slog.String("location", location))
			return nil
		})
	}
	// Таблица уже сохранена, ошибки публикации только логируем.
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "standings publication failed",
			slog.Int("category_id", round.CategoryID),
			slog.Int("round_id", round.ID),
			slog.Any("error", err))
	}
}
