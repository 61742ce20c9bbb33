package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
	authService   services.AuthService
}

func NewPlayerHandler(ps services.PlayerService, as services.AuthService) *PlayerHandler {
	return &PlayerHandler{
		playerService: ps,
		authService:   as,
	}
}

// CreatePlayer godoc
// @Summary Зарегистрировать игрока
// @Tags players
// @Accept json
// @Produce json
// @Param body body services.PlayerInput true "Данные игрока"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Email уже используется"
// @Security BearerAuth
// @Router /players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayer godoc
// @Summary Получить игрока по ID
// @Tags players
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Security BearerAuth
// @Router /players/{playerID} [get]
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Get(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePlayer godoc
// @Summary Обновить игрока
// @Tags players
// @Description Смена category_id переводит игрока в другую категорию.
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param body body services.PlayerInput true "Данные игрока"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /players/{playerID} [put]
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeactivatePlayer godoc
// @Summary Деактивировать игрока
// @Tags players
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /players/{playerID}/deactivate [post]
func (h *PlayerHandler) DeactivatePlayer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.playerService.Deactivate)
}

// ReactivatePlayer godoc
// @Summary Вернуть игрока в активные
// @Tags players
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /players/{playerID}/reactivate [post]
func (h *PlayerHandler) ReactivatePlayer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.playerService.Reactivate)
}

func (h *PlayerHandler) setStatus(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) (*models.Player, error)) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := fn(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreatePlayerCredentials godoc
// @Summary Создать учётную запись игрока
// @Tags players
// @Description Пароль возвращается один раз и нигде не хранится в открытом виде.
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Учётная запись уже есть"
// @Security BearerAuth
// @Router /players/{playerID}/credentials [post]
func (h *PlayerHandler) CreatePlayerCredentials(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, password, err := h.authService.CreatePlayerCredentials(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	response := jsonResponse{"user": user, "password": password}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
