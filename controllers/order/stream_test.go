package orderControllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufra-app/restaurant-api/models"
)

func newStreamServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/orders/ws", hub.Handler())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/orders/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)

	a := dialStream(t, srv)
	b := dialStream(t, srv)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	order := models.Order{ID: "o1", OrderNumber: "ORD-20250908-AB12", Status: models.OrderStatusPending}
	hub.Broadcast(Event{Type: EventInsert, New: &order})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, EventInsert, ev.Type)
		require.NotNil(t, ev.New)
		assert.Equal(t, "o1", ev.New.ID)
		assert.Nil(t, ev.Old)
	}
}

func TestHubUpdateCarriesOldAndNew(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)
	conn := dialStream(t, srv)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	before := models.Order{ID: "o1", Status: models.OrderStatusPending}
	after := models.Order{ID: "o1", Status: models.OrderStatusPreparing}
	hub.Broadcast(Event{Type: EventUpdate, New: &after, Old: &before})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventUpdate, ev.Type)
	assert.Equal(t, models.OrderStatusPreparing, ev.New.Status)
	assert.Equal(t, models.OrderStatusPending, ev.Old.Status)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(t, hub)
	conn := dialStream(t, srv)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	order := models.Order{ID: "o1"}
	hub.Broadcast(Event{Type: EventDelete, Old: &order})
	assert.Equal(t, 0, hub.ClientCount())
}
