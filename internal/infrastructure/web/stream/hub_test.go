package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/domain/entities"
)

func startHub(t *testing.T, origins ...string) (*Hub, string) {
	hub := NewHub(origins)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) dto.MarketsResponse {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp dto.MarketsResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	return resp
}

func testSnapshot(ids ...string) *entities.Snapshot {
	markets := make([]entities.Market, len(ids))
	for i, id := range ids {
		markets[i] = entities.Market{ID: id}
	}
	return entities.NewSnapshot("usd", markets, time.Now())
}

func TestHub_BroadcastsSnapshots(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, nil)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.OnSnapshot(testSnapshot("bitcoin", "ethereum"))

	resp := readSnapshot(t, conn)
	assert.Equal(t, "usd", resp.VsCurrency)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "bitcoin", resp.Markets[0].ID)
}

func TestHub_SendsLatestOnConnect(t *testing.T) {
	hub, url := startHub(t)
	hub.OnSnapshot(testSnapshot("solana"))

	conn := dial(t, url, nil)

	resp := readSnapshot(t, conn)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "solana", resp.Markets[0].ID)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
}

func TestHub_ClientLeaving(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	_, url := startHub(t, "http://localhost:5173")

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://localhost:5173")
	conn := dial(t, url, header)
	assert.NotNil(t, conn)
}

func TestHub_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub, url := startHub(t)
	dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.OnSnapshot(testSnapshot("bitcoin"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnSnapshot blocked on a client that never reads")
	}
}
