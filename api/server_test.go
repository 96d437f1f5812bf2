package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilberGecko6917/HackTheFleet/game/lobby"
	"github.com/SilberGecko6917/HackTheFleet/game/presence"
	"github.com/SilberGecko6917/HackTheFleet/game/router"
	"github.com/SilberGecko6917/HackTheFleet/transport/websocket"
)

type testEnv struct {
	lobbies *lobby.Manager
	server  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	lobbies := lobby.NewManager(5, 3, logger)
	tracker := presence.NewTracker(logger)
	hub := websocket.NewHub(logger)
	game := router.New(lobbies, tracker, hub, 45*time.Second, logger)

	server := httptest.NewServer(NewServer(lobbies, game, hub, logger))
	t.Cleanup(server.Close)
	return &testEnv{lobbies: lobbies, server: server}
}

func (e *testEnv) getJSON(t *testing.T, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

// dialWS opens a game connection and consumes the welcome frame.
func (e *testEnv) dialWS(t *testing.T) (*gorilla.Conn, string) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var welcome struct {
		PlayerID string `json:"player_id"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(data, &welcome))
	require.Len(t, welcome.PlayerID, 8)
	require.NotEmpty(t, welcome.Token)
	return conn, welcome.PlayerID
}

func readFrame(t *testing.T, conn *gorilla.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]string
	status := env.getJSON(t, "/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestListLobbiesEmpty(t *testing.T) {
	env := newTestEnv(t)

	var body struct {
		Count   int           `json:"count"`
		Lobbies []interface{} `json:"lobbies"`
	}
	status := env.getJSON(t, "/api/lobbies", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Lobbies, "empty list must encode as [], not null")
}

func TestGetLobbyNotFound(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]string
	status := env.getJSON(t, "/api/lobbies/000000", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestLobbyOverviewOmitsBoards(t *testing.T) {
	env := newTestEnv(t)
	l, err := env.lobbies.Create("alice", false)
	require.NoError(t, err)

	var raw map[string]interface{}
	status := env.getJSON(t, "/api/lobbies/"+l.ID(), &raw)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, l.ID(), raw["lobby_id"])
	assert.Equal(t, "waiting", raw["state"])
	assert.Equal(t, "alice", raw["owner_id"])
	assert.NotContains(t, raw, "board")
	assert.NotContains(t, raw, "opponent_view")
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.lobbies.Create("alice", false)
	require.NoError(t, err)

	var stats map[string]interface{}
	status := env.getJSON(t, "/api/stats", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, stats["total_lobbies"])
	assert.Contains(t, stats, "connections")
	assert.Contains(t, stats, "by_phase")
	assert.Contains(t, stats, "public_queue")
}

func TestWebSocketWelcomeAndHeartbeat(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dialWS(t)

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte("heartbeat")))
	assert.Equal(t, "heartbeat_ack", string(readFrame(t, conn)))
}

func TestWebSocketCreateLobbyVisibleOverREST(t *testing.T) {
	env := newTestEnv(t)
	conn, playerID := env.dialWS(t)

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"option":"create_private_game"}`)))

	var state struct {
		Type    string `json:"type"`
		LobbyID string `json:"lobby_id"`
		OwnerID string `json:"owner_id"`
	}
	require.NoError(t, json.Unmarshal(readFrame(t, conn), &state))
	assert.Equal(t, "lobby", state.Type)
	assert.Equal(t, playerID, state.OwnerID)
	require.Len(t, state.LobbyID, 6)

	var body struct {
		Count int `json:"count"`
	}
	env.getJSON(t, "/api/lobbies", &body)
	assert.Equal(t, 1, body.Count)
}

func TestWebSocketTwoPlayerJoin(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceID := env.dialWS(t)
	bob, _ := env.dialWS(t)

	require.NoError(t, alice.WriteMessage(gorilla.TextMessage, []byte(`{"option":"create_private_game"}`)))
	var created struct {
		LobbyID string `json:"lobby_id"`
	}
	require.NoError(t, json.Unmarshal(readFrame(t, alice), &created))

	join := `{"option":"join_private_game","input":"` + created.LobbyID + `"}`
	require.NoError(t, bob.WriteMessage(gorilla.TextMessage, []byte(join)))

	for _, conn := range []*gorilla.Conn{alice, bob} {
		var state struct {
			OwnerID   string `json:"owner_id"`
			LobbyData struct {
				Players []string `json:"players"`
			} `json:"lobby_data"`
		}
		require.NoError(t, json.Unmarshal(readFrame(t, conn), &state))
		assert.Len(t, state.LobbyData.Players, 2)
		assert.Equal(t, aliceID, state.OwnerID)
	}
}

func TestWebSocketDisconnectRemovesLobby(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dialWS(t)

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"option":"create_private_game"}`)))
	readFrame(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if env.lobbies.Count() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("lobby not destroyed after its only player disconnected")
}
