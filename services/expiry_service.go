package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-system/fixture"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/repositories"
)

// RoundExpiry is the outcome for one round of an expiry run.
type RoundExpiry struct {
	RoundID           int    `json:"round_id"`
	RoundNumber       int    `json:"round_number"`
	CategoryID        int    `json:"category_id"`
	Success           bool   `json:"success"`
	UnreportedMatches int    `json:"unreported_matches"`
	ActivatedNext     *int   `json:"activated_next_round_id,omitempty"`
	Error             string `json:"error,omitempty"`
}

type ExpiryReport struct {
	RunID  string        `json:"run_id"`
	Today  string        `json:"today"`
	Rounds []RoundExpiry `json:"rounds"`
}

// Failed returns the number of rounds that could not be expired.
func (r *ExpiryReport) Failed() int {
	n := 0
	for _, round := range r.Rounds {
		if !round.Success {
			n++
		}
	}
	return n
}

type ExpiryService interface {
	ExpireElapsed(ctx context.Context, now time.Time) (*ExpiryReport, error)
}

type expiryService struct {
	roundRepo repositories.RoundRepository
	rounds    RoundService
	location  *time.Location
	logger    *slog.Logger
}

func NewExpiryService(roundRepo repositories.RoundRepository, rounds RoundService, location *time.Location, logger *slog.Logger) ExpiryService {
	if location == nil {
		location = time.UTC
	}
	return &expiryService{
		roundRepo: roundRepo,
		rounds:    rounds,
		location:  location,
		logger:    logger,
	}
}

// ExpireElapsed closes every active round whose play window ended before today
// in the league time zone. A failing round is reported and the batch goes on.
func (s *expiryService) ExpireElapsed(ctx context.Context, now time.Time) (*ExpiryReport, error) {
	today := fixture.DateOf(now.In(s.location))
	report := &ExpiryReport{
		RunID:  uuid.NewString(),
		Today:  today.Format(time.DateOnly),
		Rounds: []RoundExpiry{},
	}
	log := s.logger.With(slog.String("run_id", report.RunID), slog.String("today", report.Today))

	elapsed, err := s.roundRepo.ListElapsedActive(ctx, nil, today)
	if err != nil {
		metrics.RecordExpiryRun(false)
		return nil, fmt.Errorf("failed to list elapsed rounds: %w", err)
	}
	log.InfoContext(ctx, "expiry run started", slog.Int("elapsed_rounds", len(elapsed)))

	for _, round := range elapsed {
		if err := ctx.Err(); err != nil {
			metrics.RecordExpiryRun(false)
			return report, err
		}
		entry := RoundExpiry{RoundID: round.ID, RoundNumber: round.Number, CategoryID: round.CategoryID}

		result, err := s.rounds.AutoExpire(ctx, round.ID)
		switch {
		case errors.Is(err, ErrRoundNotActive):
			// Кто-то закрыл фазу между выборкой и блокировкой.
			log.InfoContext(ctx, "round no longer active, skipped", slog.Int("round_id", round.ID))
			continue
		case err != nil:
			entry.Error = err.Error()
			log.ErrorContext(ctx, "round expiry failed", slog.Int("round_id", round.ID), slog.Any("error", err))
		default:
			entry.Success = true
			entry.UnreportedMatches = result.UnreportedMatches
			if result.ActivatedNext != nil {
				id := result.ActivatedNext.ID
				entry.ActivatedNext = &id
			}
		}
		report.Rounds = append(report.Rounds, entry)
	}

	metrics.RecordExpiryRun(report.Failed() == 0)
	log.InfoContext(ctx, "expiry run finished",
		slog.Int("processed", len(report.Rounds)),
		slog.Int("failed", report.Failed()))
	return report, nil
}
