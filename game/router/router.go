// Package router dispatches decoded client intents onto the lobby registry
// and presence tracker, and fans the resulting lobby snapshots back out to
// every connected member. It holds no game state of its own.
package router

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SilberGecko6917/HackTheFleet/game/board"
	"github.com/SilberGecko6917/HackTheFleet/game/lobby"
	"github.com/SilberGecko6917/HackTheFleet/game/presence"
	"github.com/SilberGecko6917/HackTheFleet/protocol"
)

// playerIDLength matches the original 8-character alphanumeric player ids.
const playerIDLength = 8

// Sender delivers outbound messages to connected players. The websocket hub
// implements it; tests substitute fakes.
type Sender interface {
	// Send delivers one message, reporting whether the player is connected.
	Send(playerID string, msg protocol.ServerMessage) bool
	// ClosePlayer tears down the player's connection if one is open.
	ClosePlayer(playerID string)
}

// Router translates client frames into lobby and presence operations.
type Router struct {
	lobbies   *lobby.Manager
	tracker   *presence.Tracker
	sender    Sender
	countdown time.Duration
	logger    *slog.Logger

	// after schedules the placement countdown; swapped out in tests.
	after func(d time.Duration, f func())
}

// New creates a router over the given collaborators. countdown is the fixed
// placement deadline started by a successful start_game.
func New(lobbies *lobby.Manager, tracker *presence.Tracker, sender Sender, countdown time.Duration, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		lobbies:   lobbies,
		tracker:   tracker,
		sender:    sender,
		countdown: countdown,
		logger:    logger,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// NewPlayerID generates a player id unique among live connections.
func (r *Router) NewPlayerID() string {
	for {
		id := randomAlnum(playerIDLength)
		if !r.tracker.Tracked(id) {
			return id
		}
	}
}

// Connect registers a freshly accepted connection and greets it with the
// player id and an ephemeral session token.
func (r *Router) Connect(playerID string, conn io.Closer) {
	r.tracker.Track(playerID, conn)
	r.sender.Send(playerID, protocol.Welcome{
		PlayerID: playerID,
		Token:    uuid.NewString(),
	})
	r.logger.Info("player connected", "player_id", playerID)
}

// HandleFrame processes one inbound text frame from a connection. Rule
// violations and validation failures are reported to the sender only; a
// frame that cannot be decoded at all is logged and dropped so a single bad
// frame never kills the connection.
func (r *Router) HandleFrame(playerID string, raw []byte) {
	intent, err := protocol.Decode(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrMissingField) {
			r.sendError(playerID, err)
			return
		}
		r.logger.Warn("undecodable frame", "player_id", playerID, "error", err)
		return
	}

	switch intent.Kind {
	case protocol.IntentHeartbeat:
		r.tracker.Heartbeat(playerID)
		r.sender.Send(playerID, protocol.HeartbeatAck{})

	case protocol.IntentMenu:
		r.sender.Send(playerID, protocol.StartMenu())

	case protocol.IntentCreatePrivate:
		r.handleCreatePrivate(playerID)

	case protocol.IntentJoinPublic:
		r.handleJoinPublic(playerID)

	case protocol.IntentJoinPrivate:
		r.handleJoinPrivate(playerID, intent.LobbyID)

	case protocol.IntentStartGame:
		r.handleStartGame(playerID)

	case protocol.IntentPlaceShip:
		r.handlePlacement(playerID, intent.X, intent.Y, false)

	case protocol.IntentRemoveShip:
		r.handlePlacement(playerID, intent.X, intent.Y, true)

	case protocol.IntentShoot:
		r.handleShoot(playerID, intent.X, intent.Y)
	}
}

// Disconnect removes a player from presence, matchmaking and their lobby,
// notifying any remaining lobby member. It is the single cleanup path for
// transport closes, explicit leaves and sweep evictions, and is safe to call
// more than once.
func (r *Router) Disconnect(playerID string) {
	r.tracker.Forget(playerID)
	r.lobbies.DropFromQueue(playerID)

	l, err := r.lobbies.LobbyOf(playerID)
	if err != nil {
		r.logger.Info("player disconnected", "player_id", playerID)
		return
	}

	left, deleted, err := r.lobbies.Leave(playerID, l.ID())
	if err != nil {
		r.logger.Warn("leave on disconnect failed", "player_id", playerID, "error", err)
		return
	}
	if !deleted {
		r.broadcast(left, protocol.TypeLog, fmt.Sprintf("Player %s left the lobby.", playerID), 0)
	}
	r.logger.Info("player disconnected", "player_id", playerID, "lobby_id", l.ID())
}

// HandleEvictions reacts to a presence sweep: the tracker has already closed
// the connections, the router cascades the session cleanup.
func (r *Router) HandleEvictions(evicted []string) {
	for _, playerID := range evicted {
		r.sender.ClosePlayer(playerID)
		r.Disconnect(playerID)
	}
}

func (r *Router) handleCreatePrivate(playerID string) {
	l, err := r.lobbies.Create(playerID, false)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	msg := r.stateFor(l, playerID, protocol.TypeLobby, "Lobby created", 0)
	r.sender.Send(playerID, msg)
}

func (r *Router) handleJoinPublic(playerID string) {
	l, err := r.lobbies.JoinPublic(playerID)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	if l == nil {
		r.sender.Send(playerID, protocol.Info{Message: "Waiting for opponent..."})
		return
	}
	r.broadcast(l, protocol.TypeLobby, "Joined public game", 0)
}

func (r *Router) handleJoinPrivate(playerID, lobbyID string) {
	l, err := r.lobbies.Join(playerID, lobbyID)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	r.broadcast(l, protocol.TypeLobby, fmt.Sprintf("Player %s joined the lobby.", playerID), 0)
}

func (r *Router) handleStartGame(playerID string) {
	l, err := r.lobbies.LobbyOf(playerID)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	if err := l.StartPlacement(playerID); err != nil {
		r.sendError(playerID, err)
		return
	}

	seconds := int(r.countdown / time.Second)
	r.broadcast(l, protocol.TypePlacing, "Place your ships", seconds)

	// The countdown always runs to completion; disconnects never cancel it.
	// FinishPlacement itself refuses lobbies that left the placing phase.
	r.after(r.countdown, func() {
		if l.FinishPlacement() {
			r.broadcast(l, protocol.TypeStart, "All ships placed. Battle begins", 0)
		}
	})
	r.logger.Info("placement started", "lobby_id", l.ID(), "countdown", r.countdown)
}

func (r *Router) handlePlacement(playerID string, x, y int, remove bool) {
	l, err := r.lobbies.LobbyOf(playerID)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	if remove {
		err = l.RemoveShip(playerID, x, y)
	} else {
		err = l.PlaceShip(playerID, x, y)
	}
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	// Snapshots are per recipient, so the opponent never sees the placed
	// ships, only that the board exists.
	r.broadcast(l, protocol.TypeUpdate, "", 0)
}

func (r *Router) handleShoot(playerID string, x, y int) {
	l, err := r.lobbies.LobbyOf(playerID)
	if err != nil {
		r.sendError(playerID, err)
		return
	}
	out, err := l.Shoot(playerID, x, y)
	if err != nil {
		r.sendError(playerID, err)
		return
	}

	var msg string
	switch {
	case out.Finished:
		msg = fmt.Sprintf("Player %s wins!", out.Winner)
	case out.Result == board.ShotAlreadyTargeted:
		msg = "Cell already targeted"
	case out.Result == board.ShotHit:
		msg = "Hit!"
	default:
		msg = "Miss"
	}
	r.broadcast(l, protocol.TypeUpdate, msg, 0)
}

// broadcast fans a snapshot out to every lobby member, each with their own
// view of the boards.
func (r *Router) broadcast(l *lobby.Lobby, typ, message string, countdownSeconds int) {
	for _, playerID := range l.Players() {
		r.sender.Send(playerID, r.stateFor(l, playerID, typ, message, countdownSeconds))
	}
}

func (r *Router) stateFor(l *lobby.Lobby, viewerID, typ, message string, countdownSeconds int) protocol.LobbyState {
	snap := l.Snapshot(viewerID)
	return protocol.LobbyState{
		Type:             typ,
		LobbyID:          snap.LobbyID,
		State:            string(snap.Phase),
		Message:          message,
		LobbyData:        protocol.LobbyData{Players: snap.Players},
		OwnerID:          snap.OwnerID,
		Turn:             snap.Turn,
		Winner:           snap.Winner,
		ShipsRequired:    snap.ShipsRequired,
		CountdownSeconds: countdownSeconds,
		Board:            snap.Board,
		OpponentView:     snap.OpponentView,
		Logs:             snap.Logs,
	}
}

func (r *Router) sendError(playerID string, err error) {
	r.sender.Send(playerID, protocol.ErrorMessage{Error: errorText(err)})
}

// errorText maps sentinel errors to the human-readable strings put on the
// wire.
func errorText(err error) string {
	switch {
	case errors.Is(err, lobby.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, board.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, board.ErrCellOccupied):
		return "Cell already occupied"
	case errors.Is(err, board.ErrNoShipAtCell):
		return "No ship at position"
	case errors.Is(err, lobby.ErrPlacementLimit):
		return "All ships already placed"
	case errors.Is(err, lobby.ErrLobbyFull):
		return "Lobby is full"
	case errors.Is(err, lobby.ErrNotOwner):
		return "Only the lobby owner can start the game"
	case errors.Is(err, lobby.ErrNotEnoughPlayers):
		return "Not enough players"
	case errors.Is(err, lobby.ErrInvalidPhase):
		return "Invalid in current phase"
	case errors.Is(err, lobby.ErrLobbyNotFound):
		return "Lobby not found"
	case errors.Is(err, lobby.ErrNoLobbyForPlayer):
		return "You are not in a lobby"
	case errors.Is(err, lobby.ErrAlreadyInLobby):
		return "You are already in a lobby"
	case errors.Is(err, lobby.ErrNoOpponent):
		return "No opponent in lobby"
	case errors.Is(err, lobby.ErrNotMember):
		return "You are not in this lobby"
	case errors.Is(err, protocol.ErrMissingField):
		return "Missing required field"
	default:
		return err.Error()
	}
}

func randomAlnum(n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = chars[int(b[i])%len(chars)]
	}
	return string(b)
}
