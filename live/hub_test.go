package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, 7)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToCategoryRoom(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Subscribers(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.NotifyCategory(8, EventRoundUpdated, "other category")
	hub.NotifyCategory(7, EventStandingsUpdated, map[string]int{"round_number": 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type       string         `json:"type"`
		CategoryID int            `json:"category_id"`
		Payload    map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventStandingsUpdated, msg.Type)
	assert.Equal(t, 7, msg.CategoryID)
	assert.Equal(t, 3, msg.Payload["round_number"])
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Subscribers(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers(7) == 0 }, 2*time.Second, 10*time.Millisecond)

	// no subscribers: must not block
	hub.NotifyCategory(7, EventRoundUpdated, nil)
}

func TestRoomFor(t *testing.T) {
	assert.Equal(t, "category_12", RoomFor(12))
}
