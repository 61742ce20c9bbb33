package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/league-system/services"
)

type CronHandler struct {
	expiryService services.ExpiryService
	now           func() time.Time
}

func NewCronHandler(es services.ExpiryService) *CronHandler {
	return &CronHandler{expiryService: es, now: time.Now}
}

// CloseElapsedRounds godoc
// @Summary Истечение раундов по дате
// @Tags cron
// @Description Закрывает активные раунды, чей период закончился. Повторный вызов ничего не меняет.
// @Produce json
// @Success 200 {object} services.ExpiryReport
// @Failure 401 {object} map[string]string "Неверный секрет"
// @Security CronSecret
// @Router /cron/close-rounds [post]
func (h *CronHandler) CloseElapsedRounds(w http.ResponseWriter, r *http.Request) {
	report, err := h.expiryService.ExpireElapsed(r.Context(), h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// частичные сбои видны в отчёте, статус остаётся 200
	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
