package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/assessment-hisan/auction-backend/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubEmit(t *testing.T) {
	h := NewHub(testutil.Logger(), 8, "")
	t.Cleanup(h.Close)

	first := dialHub(t, h)
	second := dialHub(t, h)
	require.Eventually(t, func() bool { return h.Count() == 2 }, time.Second, 10*time.Millisecond)

	h.Emit(EventSectionCompleted, map[string]string{"section": "Bidayay"})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, EventSectionCompleted, msg.Event)
		require.Equal(t, "Bidayay", msg.Data["section"])
	}
}

func TestHubEmitRawPayload(t *testing.T) {
	h := NewHub(testutil.Logger(), 8, "")
	t.Cleanup(h.Close)

	conn := dialHub(t, h)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)

	h.Emit(EventTeamsUpdated, json.RawMessage(`[{"name":"Red"}]`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"teams_updated","data":[{"name":"Red"}]}`, string(data))
}

func TestHubViewerDisconnect(t *testing.T) {
	h := NewHub(testutil.Logger(), 8, "")
	t.Cleanup(h.Close)

	conn := dialHub(t, h)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Emitting with nobody connected is a no-op.
	h.Emit(EventStudentsUpdated, []string{})
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	h := NewHub(testutil.Logger(), 8, "http://localhost:5173")
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	_, _, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.Equal(t, 0, h.Count())
}
