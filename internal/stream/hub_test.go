package stream

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/MrMark1127/arma-tactical/pkg/streaming"
	"github.com/goccy/go-json"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hubServer upgrades each request and subscribes it to the plan named in
// the URL path.
func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		planID := strings.TrimPrefix(r.URL.Path, "/")
		hub.Subscribe(planID, conn)
	}))
}

func dial(t *testing.T, srv *httptest.Server, planID string) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + planID
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, planID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(planID) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers for %s, got %d", n, planID, hub.SubscriberCount(planID))
}

func readEnvelope(t *testing.T, conn *ws.Conn) streaming.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()
	srv := hubServer(t, hub)
	defer srv.Close()

	c1 := dial(t, srv, "plan-1")
	c2 := dial(t, srv, "plan-1")
	waitForSubscribers(t, hub, "plan-1", 2)

	env, err := streaming.NewEnvelope(streaming.TypeMarkerAdded, streaming.MarkerPayload{
		Marker: core.Marker{ID: 7, PlanID: "plan-1", Label: "OBJ"},
	})
	require.NoError(t, err)
	hub.Broadcast("plan-1", env)

	for _, conn := range []*ws.Conn{c1, c2} {
		got := readEnvelope(t, conn)
		assert.Equal(t, streaming.TypeMarkerAdded, got.Type)

		var payload streaming.MarkerPayload
		require.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, uint(7), payload.Marker.ID)
	}
}

func TestHub_BroadcastIsPlanScoped(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()
	srv := hubServer(t, hub)
	defer srv.Close()

	c1 := dial(t, srv, "plan-1")
	c2 := dial(t, srv, "plan-2")
	waitForSubscribers(t, hub, "plan-1", 1)
	waitForSubscribers(t, hub, "plan-2", 1)

	env, err := streaming.NewEnvelope(streaming.TypeRouteDeleted, streaming.DeletedPayload{PlanID: "plan-1", ID: 3})
	require.NoError(t, err)
	hub.Broadcast("plan-1", env)

	got := readEnvelope(t, c1)
	assert.Equal(t, streaming.TypeRouteDeleted, got.Type)

	// The plan-2 subscriber must not see plan-1 traffic.
	require.NoError(t, c2.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = c2.ReadMessage()
	assert.Error(t, err)
}

func TestHub_DisconnectRemovesSubscriber(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()
	srv := hubServer(t, hub)
	defer srv.Close()

	c1 := dial(t, srv, "plan-1")
	waitForSubscribers(t, hub, "plan-1", 1)

	require.NoError(t, c1.Close())
	waitForSubscribers(t, hub, "plan-1", 0)
}

func TestHub_BroadcastToEmptyPlanIsNoop(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	env, err := streaming.NewEnvelope(streaming.TypePlanUpdated, streaming.PlanPayload{})
	require.NoError(t, err)
	hub.Broadcast("nobody-home", env)
}
