package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/services"
)

type WebSocketHandler struct {
	hub             *live.Hub
	categoryService services.CategoryService
	upgrader        websocket.Upgrader
}

// NewWebSocketHandler принимает разрешённые Origin; "*" разрешает любой.
func NewWebSocketHandler(hub *live.Hub, cs services.CategoryService, allowedOrigins []string) *WebSocketHandler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub:             hub,
		categoryService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWs подписывает клиента на обновления категории.
// Клиент подключается к /ws/categories/{categoryID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.categoryService.Get(r.Context(), categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("category_id", categoryID), slog.Any("error", err))
		return
	}
	h.hub.Attach(conn, categoryID)
}
