package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
	playerService   services.PlayerService
}

func NewCategoryHandler(cs services.CategoryService, ps services.PlayerService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: cs,
		playerService:   ps,
	}
}

// ListCategories godoc
// @Summary Список категорий
// @Tags categories
// @Description Категории по сезону (новые первыми) и порядку отображения.
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetCategory godoc
// @Summary Получить категорию по ID
// @Tags categories
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Категория не найдена"
// @Router /categories/{categoryID} [get]
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.Get(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateCategory godoc
// @Summary Создать категорию
// @Tags categories
// @Accept json
// @Produce json
// @Param body body services.CategoryInput true "Название и сезон"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Название уже занято в сезоне"
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input services.CategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateCategory godoc
// @Summary Обновить категорию
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param body body services.CategoryInput true "Название и сезон"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /categories/{categoryID} [put]
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.Update(r.Context(), categoryID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteCategory godoc
// @Summary Удалить категорию
// @Tags categories
// @Param categoryID path int true "Category ID"
// @Success 204
// @Failure 409 {object} map[string]string "В категории есть игроки или раунды"
// @Security BearerAuth
// @Router /categories/{categoryID} [delete]
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.categoryService.Delete(r.Context(), categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCategoryUp godoc
// @Summary Поднять категорию в списке сезона
// @Tags categories
// @Param categoryID path int true "Category ID"
// @Success 204
// @Security BearerAuth
// @Router /categories/{categoryID}/move-up [post]
func (h *CategoryHandler) MoveCategoryUp(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.categoryService.MoveUp)
}

// MoveCategoryDown godoc
// @Summary Опустить категорию в списке сезона
// @Tags categories
// @Param categoryID path int true "Category ID"
// @Success 204
// @Security BearerAuth
// @Router /categories/{categoryID}/move-down [post]
func (h *CategoryHandler) MoveCategoryDown(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.categoryService.MoveDown)
}

func (h *CategoryHandler) move(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) error) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := fn(r.Context(), categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategoryPlayers godoc
// @Summary Игроки категории
// @Tags categories
// @Description Активные и неактивные игроки, по фамилии.
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /categories/{categoryID}/players [get]
func (h *CategoryHandler) ListCategoryPlayers(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roster, err := h.playerService.ListByCategory(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
