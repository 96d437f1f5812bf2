package lobby

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrAlreadyInLobby   = errors.New("player already in a lobby")
	ErrNoLobbyForPlayer = errors.New("player is not in any lobby")
)

// lobbyIDLength is the length of the numeric join code.
const lobbyIDLength = 6

// Manager owns every live lobby plus the public matchmaking queue. It is the
// only component allowed to create or destroy lobbies; a lobby whose player
// set becomes empty is deleted here, never retained.
type Manager struct {
	mu          sync.RWMutex
	lobbies     map[string]*Lobby
	playerLobby map[string]string // player id -> lobby id
	publicQueue []string          // FIFO, arrival order

	boardSize     int
	shipsRequired int
	logger        *slog.Logger
}

// NewManager creates an empty registry.
func NewManager(boardSize, shipsRequired int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		lobbies:       make(map[string]*Lobby),
		playerLobby:   make(map[string]string),
		boardSize:     boardSize,
		shipsRequired: shipsRequired,
		logger:        logger,
	}
}

// Create makes a new lobby with creator as sole player and owner.
func (m *Manager) Create(creatorID string, public bool) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.playerLobby[creatorID]; taken {
		return nil, ErrAlreadyInLobby
	}

	l := New(m.generateID(), public, m.boardSize, m.shipsRequired)
	if err := l.AddPlayer(creatorID); err != nil {
		return nil, fmt.Errorf("add creator: %w", err)
	}
	m.lobbies[l.ID()] = l
	m.playerLobby[creatorID] = l.ID()

	m.logger.Info("lobby created",
		"lobby_id", l.ID(),
		"owner_id", creatorID,
		"public", public)
	return l, nil
}

// Join adds a player to an existing lobby by id.
func (m *Manager) Join(playerID, lobbyID string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if current, taken := m.playerLobby[playerID]; taken && current != lobbyID {
		return nil, ErrAlreadyInLobby
	}
	if err := l.AddPlayer(playerID); err != nil {
		return nil, err
	}
	m.playerLobby[playerID] = lobbyID

	m.logger.Info("player joined lobby", "lobby_id", lobbyID, "player_id", playerID)
	return l, nil
}

// JoinPublic runs FIFO matchmaking. With nobody waiting, the player is
// enqueued and nil is returned. Otherwise the longest-waiting player is
// dequeued and a fresh public lobby pairs the two immediately. Queue entries
// whose players have since joined a lobby or disconnected are skipped.
func (m *Manager) JoinPublic(playerID string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.playerLobby[playerID]; taken {
		return nil, ErrAlreadyInLobby
	}

	var opponentID string
	for len(m.publicQueue) > 0 {
		head := m.publicQueue[0]
		m.publicQueue = m.publicQueue[1:]
		if head == playerID {
			continue
		}
		if _, matched := m.playerLobby[head]; matched {
			continue
		}
		opponentID = head
		break
	}

	if opponentID == "" {
		m.publicQueue = append(m.publicQueue, playerID)
		m.logger.Info("player queued for public game",
			"player_id", playerID, "queue_len", len(m.publicQueue))
		return nil, nil
	}

	l := New(m.generateID(), true, m.boardSize, m.shipsRequired)
	if err := l.AddPlayer(opponentID); err != nil {
		return nil, fmt.Errorf("add queued player: %w", err)
	}
	if err := l.AddPlayer(playerID); err != nil {
		return nil, fmt.Errorf("add joining player: %w", err)
	}
	m.lobbies[l.ID()] = l
	m.playerLobby[opponentID] = l.ID()
	m.playerLobby[playerID] = l.ID()

	m.logger.Info("public game matched",
		"lobby_id", l.ID(), "players", []string{opponentID, playerID})
	return l, nil
}

// DropFromQueue removes a disconnected player from the public queue.
func (m *Manager) DropFromQueue(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, id := range m.publicQueue {
		if id == playerID {
			m.publicQueue = append(m.publicQueue[:i], m.publicQueue[i+1:]...)
			return
		}
	}
}

// Get looks up a lobby by id.
func (m *Manager) Get(lobbyID string) (*Lobby, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l, nil
}

// LobbyOf returns the lobby a player currently belongs to.
func (m *Manager) LobbyOf(playerID string) (*Lobby, error) {
	m.mu.RLock()
	lobbyID, ok := m.playerLobby[playerID]
	l := m.lobbies[lobbyID]
	m.mu.RUnlock()

	if !ok || l == nil {
		return nil, ErrNoLobbyForPlayer
	}
	return l, nil
}

// Leave removes a player from a lobby, deleting the lobby once empty. It
// returns the lobby so callers can notify remaining members; deleted reports
// whether the lobby was destroyed.
func (m *Manager) Leave(playerID, lobbyID string) (l *Lobby, deleted bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, false, ErrLobbyNotFound
	}

	removed, empty := l.RemovePlayer(playerID)
	if removed {
		delete(m.playerLobby, playerID)
		m.logger.Info("player left lobby", "lobby_id", lobbyID, "player_id", playerID)
	}
	if empty {
		delete(m.lobbies, lobbyID)
		m.logger.Info("lobby removed", "lobby_id", lobbyID)
		return l, true, nil
	}
	return l, false, nil
}

// List returns all live lobbies.
func (m *Manager) List() []*Lobby {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		out = append(out, l)
	}
	return out
}

// Count returns the number of live lobbies.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lobbies)
}

// Stats summarizes the registry for the operator read surface.
func (m *Manager) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byPhase := make(map[Phase]int)
	totalPlayers := 0
	for _, l := range m.lobbies {
		byPhase[l.Phase()]++
		totalPlayers += len(l.Players())
	}
	return map[string]any{
		"total_lobbies": len(m.lobbies),
		"total_players": totalPlayers,
		"by_phase":      byPhase,
		"public_queue":  len(m.publicQueue),
	}
}

// generateID returns a numeric join code free of collisions against live
// lobbies; callers must hold the write lock.
func (m *Manager) generateID() string {
	for {
		id := randomDigits(lobbyIDLength)
		if _, exists := m.lobbies[id]; !exists {
			return id
		}
	}
}

func randomDigits(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = digits[int(b[i])%len(digits)]
	}
	return string(b)
}
