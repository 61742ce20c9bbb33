package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type FixtureHandler struct {
	fixtureService   services.FixtureService
	matchService     services.MatchService
	standingsService services.StandingsService
}

func NewFixtureHandler(fs services.FixtureService, ms services.MatchService, ss services.StandingsService) *FixtureHandler {
	return &FixtureHandler{
		fixtureService:   fs,
		matchService:     ms,
		standingsService: ss,
	}
}

type generateFixtureRequest struct {
	StartDate       string `json:"start_date"`
	RoundLengthDays int    `json:"round_length_days,omitempty"`
}

// GenerateFixture godoc
// @Summary Сгенерировать календарь категории
// @Tags fixture
// @Description Круговая система: все раунды и матчи создаются сразу, таблица обнуляется.
// @Accept json
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param body body generateFixtureRequest true "Дата начала (YYYY-MM-DD) и длина раунда в днях"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недостаточно игроков или неверная дата"
// @Failure 409 {object} map[string]string "Календарь уже существует"
// @Security BearerAuth
// @Router /categories/{categoryID}/fixture [post]
func (h *FixtureHandler) GenerateFixture(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req generateFixtureRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.fixtureService.GenerateFixture(r.Context(), categoryID, startDate, req.RoundLengthDays)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteFixture godoc
// @Summary Удалить календарь категории
// @Tags fixture
// @Param categoryID path int true "Category ID"
// @Success 204
// @Failure 409 {object} map[string]string "Есть загруженные результаты"
// @Security BearerAuth
// @Router /categories/{categoryID}/fixture [delete]
func (h *FixtureHandler) DeleteFixture(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.fixtureService.DeleteFixture(r.Context(), categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFixture godoc
// @Summary Календарь категории
// @Tags fixture
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories/{categoryID}/fixture [get]
func (h *FixtureHandler) GetFixture(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.matchService.ListCategoryFixture(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandings godoc
// @Summary Таблица категории
// @Tags fixture
// @Description Таблица на момент последнего закрытого раунда.
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories/{categoryID}/standings [get]
func (h *FixtureHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.GetStandings(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
