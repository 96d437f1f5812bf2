package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/SilberGecko6917/HackTheFleet/game/lobby"
	"github.com/SilberGecko6917/HackTheFleet/game/router"
	"github.com/SilberGecko6917/HackTheFleet/transport/websocket"
)

// Server exposes the WebSocket endpoint plus a read-only REST surface for
// inspecting lobbies.
type Server struct {
	lobbies *lobby.Manager
	game    *router.Router
	hub     *websocket.Hub
	mux     *mux.Router
	logger  *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(lobbies *lobby.Manager, game *router.Router, hub *websocket.Hub, logger *slog.Logger) *Server {
	s := &Server{
		lobbies: lobbies,
		game:    game,
		hub:     hub,
		mux:     mux.NewRouter(),
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	api := s.mux.PathPrefix("/api").Subrouter()
	api.HandleFunc("/lobbies", s.handleListLobbies).Methods("GET")
	api.HandleFunc("/lobbies/{id}", s.handleGetLobby).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Mount attaches an extra handler under the given path prefix. Used for the
// MCP endpoint.
func (s *Server) Mount(prefix string, h http.Handler) {
	s.mux.PathPrefix(prefix).Handler(h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// lobbyOverview is the REST view of a lobby. It never includes boards, so
// nothing here can leak ship positions to a spectator.
type lobbyOverview struct {
	LobbyID   string    `json:"lobby_id"`
	Public    bool      `json:"public"`
	State     string    `json:"state"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Players   []string  `json:"players"`
	Turn      string    `json:"turn,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func overviewOf(l *lobby.Lobby) lobbyOverview {
	return lobbyOverview{
		LobbyID:   l.ID(),
		Public:    l.Public(),
		State:     string(l.Phase()),
		OwnerID:   l.OwnerID(),
		Players:   l.Players(),
		Turn:      l.Turn(),
		Winner:    l.Winner(),
		CreatedAt: l.CreatedAt(),
	}
}

// Lobby handlers

func (s *Server) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	all := s.lobbies.List()
	overviews := make([]lobbyOverview, 0, len(all))
	for _, l := range all {
		overviews = append(overviews, overviewOf(l))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(overviews),
		"lobbies": overviews,
	})
}

func (s *Server) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	l, err := s.lobbies.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, overviewOf(l))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.lobbies.Stats()
	stats["connections"] = s.hub.Count()
	respondJSON(w, http.StatusOK, stats)
}

// WebSocket handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Upgrade(w, r)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	playerID := s.game.NewPlayerID()
	client := s.hub.NewClient(playerID, conn)

	// Track the player and queue the welcome before any frame is read, so
	// an eager client can't race its own registration.
	s.game.Connect(playerID, client)
	client.Start(s.game)
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
