package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(rs services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: rs}
}

// ListRounds godoc
// @Summary Раунды категории
// @Tags rounds
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories/{categoryID}/rounds [get]
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRound godoc
// @Summary Раунд с матчами
// @Tags rounds
// @Produce json
// @Param roundID path int true "Round ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Раунд не найден"
// @Router /rounds/{roundID} [get]
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.roundService.GetRound)
}

// ActivateRound godoc
// @Summary Открыть раунд для результатов
// @Tags rounds
// @Param roundID path int true "Round ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Уже есть активный раунд"
// @Security BearerAuth
// @Router /rounds/{roundID}/activate [post]
func (h *RoundHandler) ActivateRound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.roundService.Activate)
}

// CloseRound godoc
// @Summary Закрыть раунд
// @Tags rounds
// @Description Пересчитывает таблицу категории. Все матчи должны иметь исход.
// @Param roundID path int true "Round ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Есть матчи без результата"
// @Security BearerAuth
// @Router /rounds/{roundID}/close [post]
func (h *RoundHandler) CloseRound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.roundService.Close)
}

// ReopenRound godoc
// @Summary Переоткрыть закрытый раунд
// @Tags rounds
// @Param roundID path int true "Round ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /rounds/{roundID}/reopen [post]
func (h *RoundHandler) ReopenRound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.roundService.Reopen)
}

type updateRoundDatesRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// UpdateRoundDates godoc
// @Summary Изменить даты раунда
// @Tags rounds
// @Accept json
// @Produce json
// @Param roundID path int true "Round ID"
// @Param body body updateRoundDatesRequest true "Даты YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /rounds/{roundID}/dates [patch]
func (h *RoundHandler) UpdateRoundDates(w http.ResponseWriter, r *http.Request) {
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updateRoundDatesRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	start, err := parseDate("period_start", req.PeriodStart)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	end, err := parseDate("period_end", req.PeriodEnd)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.UpdateDates(r.Context(), roundID, start, end)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) (*models.Round, error)) {
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := fn(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
