package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
)

const testSecret = "test-secret"

// Заглушки: встроенный интерфейс паникует на непереопределённых методах.

type stubMatchService struct {
	services.MatchService
	decisive func(matchID, winnerID int, sets []models.SetScore) (*models.Match, error)
	walkover func(matchID, winnerID int, reason *string) (*models.Match, error)
	submit   func(matchID, playerID int, input services.ResultInput) (*models.Match, error)
}

func (s stubMatchService) RecordDecisive(_ context.Context, matchID, winnerID int, sets []models.SetScore) (*models.Match, error) {
	return s.decisive(matchID, winnerID, sets)
}

func (s stubMatchService) RecordWalkover(_ context.Context, matchID, winnerID int, reason *string) (*models.Match, error) {
	return s.walkover(matchID, winnerID, reason)
}

func (s stubMatchService) SubmitAsParticipant(_ context.Context, matchID, playerID int, input services.ResultInput) (*models.Match, error) {
	return s.submit(matchID, playerID, input)
}

type stubRoundService struct {
	services.RoundService
	closeRound func(roundID int) (*models.Round, error)
}

func (s stubRoundService) Close(_ context.Context, roundID int) (*models.Round, error) {
	return s.closeRound(roundID)
}

type stubFixtureService struct {
	services.FixtureService
	generate func(categoryID int, start time.Time, days int) ([]*models.Round, error)
}

func (s stubFixtureService) GenerateFixture(_ context.Context, categoryID int, start time.Time, days int) ([]*models.Round, error) {
	return s.generate(categoryID, start, days)
}

type stubExpiryService struct {
	report *services.ExpiryReport
	calls  int
}

func (s *stubExpiryService) ExpireElapsed(context.Context, time.Time) (*services.ExpiryReport, error) {
	s.calls++
	return s.report, nil
}

func serve(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func playerToken(t *testing.T, playerID int) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		services.ClaimUserID:   50,
		services.ClaimRole:     string(models.RolePlayer),
		services.ClaimPlayerID: playerID,
		"exp":                  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrRoundNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", services.ErrMatchNotFound), http.StatusNotFound},
		{services.ErrInvalidSetScores, http.StatusUnprocessableEntity},
		{services.ErrInvalidWinner, http.StatusUnprocessableEntity},
		{services.ErrValidationFailed, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", services.ErrValidationFailed, services.ErrCategoryNotFound), http.StatusBadRequest},
		{services.ErrInsufficientPlayers, http.StatusBadRequest},
		{services.ErrRoundClosed, http.StatusConflict},
		{services.ErrAnotherRoundActive, http.StatusConflict},
		{services.ErrDuplicateSchedule, http.StatusConflict},
		{services.ErrAlreadyDecided, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrNotParticipant, http.StatusForbidden},
		{services.ErrPlayerInactive, http.StatusForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCloseRoundReportsUnresolvedCount(t *testing.T) {
	h := NewRoundHandler(stubRoundService{closeRound: func(roundID int) (*models.Round, error) {
		return nil, &services.UnresolvedMatchesError{RoundID: roundID, Count: 3}
	}})
	router := chi.NewRouter()
	router.Post("/rounds/{roundID}/close", h.CloseRound)

	rec := serve(t, router, http.MethodPost, "/rounds/5/close", "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	details, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), details["unresolved_count"])

	rec = serve(t, router, http.MethodPost, "/rounds/abc/close", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordResultDispatchesByKind(t *testing.T) {
	var gotWalkover, gotDecisive bool
	h := NewMatchHandler(stubMatchService{
		walkover: func(matchID, winnerID int, reason *string) (*models.Match, error) {
			gotWalkover = true
			require.NotNil(t, reason)
			assert.Equal(t, "lesión", *reason)
			return &models.Match{ID: matchID, Player1ID: 10, Player2ID: 11, Outcome: models.Walkover{WinnerID: winnerID, Reason: reason}}, nil
		},
		decisive: func(matchID, winnerID int, sets []models.SetScore) (*models.Match, error) {
			gotDecisive = true
			assert.Len(t, sets, 2)
			return &models.Match{ID: matchID, Player1ID: 10, Player2ID: 11, Outcome: models.Decisive{WinnerID: winnerID, Sets: sets}}, nil
		},
	})
	router := chi.NewRouter()
	router.Put("/matches/{matchID}/result", h.RecordResult)

	rec := serve(t, router, http.MethodPut, "/matches/20/result", `{"winner_id":11,"walkover":true,"walkover_reason":"lesión"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotWalkover)
	outcome := decode(t, rec)["match"].(map[string]interface{})["outcome"].(map[string]interface{})
	assert.Equal(t, "walkover", outcome["kind"])

	rec = serve(t, router, http.MethodPut, "/matches/20/result",
		`{"winner_id":10,"sets":[{"player1_games":6,"player2_games":4},{"player1_games":6,"player2_games":2}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotDecisive)

	rec = serve(t, router, http.MethodPut, "/matches/20/result", `{"winner":10}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitMyResultUsesTokenPlayer(t *testing.T) {
	var gotPlayer int
	h := NewMatchHandler(stubMatchService{
		submit: func(matchID, playerID int, input services.ResultInput) (*models.Match, error) {
			gotPlayer = playerID
			if playerID != 10 {
				return nil, services.ErrNotParticipant
			}
			return &models.Match{ID: matchID, Player1ID: 10, Player2ID: 11}, nil
		},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.With(middleware.Authenticate(testSecret, logger)).Post("/me/matches/{matchID}/result", h.SubmitMyResult)

	body := `{"winner_id":10,"sets":[{"player1_games":6,"player2_games":4},{"player1_games":6,"player2_games":2}]}`
	rec := serve(t, router, http.MethodPost, "/me/matches/20/result", body, map[string]string{"Authorization": playerToken(t, 10)})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotPlayer)

	rec = serve(t, router, http.MethodPost, "/me/matches/20/result", body, map[string]string{"Authorization": playerToken(t, 12)})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, router, http.MethodPost, "/me/matches/20/result", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateFixtureParsesStartDate(t *testing.T) {
	var gotStart time.Time
	var gotDays int
	h := NewFixtureHandler(stubFixtureService{generate: func(categoryID int, start time.Time, days int) ([]*models.Round, error) {
		gotStart, gotDays = start, days
		return []*models.Round{{ID: 1, CategoryID: categoryID, Number: 1}}, nil
	}}, nil, nil)
	router := chi.NewRouter()
	router.Post("/categories/{categoryID}/fixture", h.GenerateFixture)

	rec := serve(t, router, http.MethodPost, "/categories/1/fixture", `{"start_date":"2025-03-01","round_length_days":15}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), gotStart)
	assert.Equal(t, 15, gotDays)

	rec = serve(t, router, http.MethodPost, "/categories/1/fixture", `{"start_date":"01/03/2025"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCloseElapsedRoundsReturnsReport(t *testing.T) {
	next := 6
	expiry := &stubExpiryService{report: &services.ExpiryReport{
		RunID: "run-1",
		Today: "2025-03-16",
		Rounds: []services.RoundExpiry{
			{RoundID: 5, RoundNumber: 1, CategoryID: 1, Success: true, UnreportedMatches: 2, ActivatedNext: &next},
		},
	}}
	h := NewCronHandler(expiry)
	router := chi.NewRouter()
	router.Post("/cron/close-rounds", h.CloseElapsedRounds)

	rec := serve(t, router, http.MethodPost, "/cron/close-rounds", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "run-1", body["run_id"])
	rounds := body["rounds"].([]interface{})
	require.Len(t, rounds, 1)
	assert.Equal(t, float64(2), rounds[0].(map[string]interface{})["unreported_matches"])
	assert.Equal(t, 1, expiry.calls)
}
