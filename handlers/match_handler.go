package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// GetMatch godoc
// @Summary Получить матч
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Матч не найден"
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult godoc
// @Summary Загрузить или исправить результат (админ)
// @Tags matches
// @Description walkover=true записывает W.O. без сетов, иначе нужны 2-3 сета.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.ResultInput true "Результат"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Раунд закрыт"
// @Failure 422 {object} map[string]string "Неверный счёт или победитель"
// @Security BearerAuth
// @Router /matches/{matchID}/result [put]
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var match *models.Match
	if input.Walkover {
		match, err = h.matchService.RecordWalkover(r.Context(), matchID, input.WinnerID, input.WalkoverReason)
	} else {
		match, err = h.matchService.RecordDecisive(r.Context(), matchID, input.WinnerID, input.Sets)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkUnreported godoc
// @Summary Отметить матч как не сыгранный
// @Tags matches
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/unreported [post]
func (h *MatchHandler) MarkUnreported(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.MarkUnreported(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMyMatches godoc
// @Summary Матчи текущего игрока
// @Tags me
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /me/matches [get]
func (h *MatchHandler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayerID(w, r)
	if !ok {
		return
	}

	matches, err := h.matchService.ListPlayerMatches(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitMyResult godoc
// @Summary Загрузить результат своего матча
// @Tags me
// @Description Только в активном раунде и только пока у матча нет результата.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.ResultInput true "Результат"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Не участник матча"
// @Failure 409 {object} map[string]string "Раунд не активен или результат уже есть"
// @Security BearerAuth
// @Router /me/matches/{matchID}/result [post]
func (h *MatchHandler) SubmitMyResult(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayerID(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitAsParticipant(r.Context(), matchID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func currentPlayerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		if errors.Is(err, middleware.ErrNoPlayer) {
			forbiddenResponse(w, r, "account is not linked to a player")
			return 0, false
		}
		unauthorizedResponse(w, r, "failed to identify current player")
		return 0, false
	}
	return playerID, true
}
