package lobby

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SilberGecko6917/HackTheFleet/game/board"
)

var (
	ErrLobbyFull        = errors.New("lobby is full")
	ErrNotOwner         = errors.New("only the lobby owner can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrInvalidPhase     = errors.New("invalid in current phase")
	ErrPlacementLimit   = errors.New("all ships already placed")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNoOpponent       = errors.New("no opponent in lobby")
	ErrNotMember        = errors.New("player is not in this lobby")
)

// MaxPlayers is the hard cap on lobby membership.
const MaxPlayers = 2

// maxLogLines bounds the per-lobby event log sent in snapshots.
const maxLogLines = 20

// Phase is the lobby's position in its state machine.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlacing  Phase = "placing"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Lobby is one match between up to two players. It owns both boards and the
// turn/winner state; all mutating operations are linearized through its
// mutex, so two connections acting on the same lobby can never interleave
// their effects.
type Lobby struct {
	mu sync.Mutex

	id            string
	public        bool
	ownerID       string
	players       []string // join order; players[0] takes the first turn
	boards        map[string]*board.Board
	boardSize     int
	shipsRequired int
	phase         Phase
	turn          string
	winner        string
	createdAt     time.Time
	logs          []string
}

// New creates an empty lobby in the Waiting phase.
func New(id string, public bool, boardSize, shipsRequired int) *Lobby {
	return &Lobby{
		id:            id,
		public:        public,
		boards:        make(map[string]*board.Board),
		boardSize:     boardSize,
		shipsRequired: shipsRequired,
		phase:         PhaseWaiting,
		createdAt:     time.Now(),
	}
}

// ID returns the lobby's join code.
func (l *Lobby) ID() string {
	return l.id
}

// Public reports whether the lobby was created through public matchmaking.
func (l *Lobby) Public() bool {
	return l.public
}

// Phase returns the current phase.
func (l *Lobby) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// OwnerID returns the current owner, or "" for an empty lobby.
func (l *Lobby) OwnerID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ownerID
}

// Players returns the member ids in join order.
func (l *Lobby) Players() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.players))
	copy(out, l.players)
	return out
}

// Turn returns whose turn it is, or "" outside the playing phase.
func (l *Lobby) Turn() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.turn
}

// Winner returns the winning player once the game finished, else "".
func (l *Lobby) Winner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.winner
}

// CreatedAt returns when the lobby was created.
func (l *Lobby) CreatedAt() time.Time {
	return l.createdAt
}

// HasPlayer reports membership.
func (l *Lobby) HasPlayer(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(playerID) >= 0
}

func (l *Lobby) indexOf(playerID string) int {
	for i, p := range l.players {
		if p == playerID {
			return i
		}
	}
	return -1
}

// AddPlayer joins a player to the lobby. Joining twice is a no-op; the first
// joiner becomes the owner and every member gets their own board. New
// players are only accepted while the lobby is still waiting.
func (l *Lobby) AddPlayer(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(playerID) >= 0 {
		return nil
	}
	if l.phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if len(l.players) >= MaxPlayers {
		return ErrLobbyFull
	}

	l.players = append(l.players, playerID)
	if l.ownerID == "" {
		l.ownerID = playerID
	}
	l.boards[playerID] = board.New(l.boardSize)
	l.appendLog(fmt.Sprintf("Player %s joined the lobby.", playerID))
	return nil
}

// RemovePlayer drops a player and their board. Ownership transfers to the
// remaining first joiner. It returns whether the player was a member and
// whether the lobby is now empty; destroying an empty lobby is the
// registry's job, not the lobby's.
func (l *Lobby) RemovePlayer(playerID string) (removed, empty bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(playerID)
	if idx < 0 {
		return false, len(l.players) == 0
	}

	l.players = append(l.players[:idx], l.players[idx+1:]...)
	delete(l.boards, playerID)
	if l.ownerID == playerID {
		l.ownerID = ""
		if len(l.players) > 0 {
			l.ownerID = l.players[0]
		}
	}
	l.appendLog(fmt.Sprintf("Player %s left the lobby.", playerID))
	return true, len(l.players) == 0
}

// StartPlacement transitions Waiting -> Placing. Only the owner may start,
// and only with a full lobby. Both boards are reset; the placement countdown
// itself is owned by the caller, which must invoke FinishPlacement when it
// elapses.
func (l *Lobby) StartPlacement(callerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase == PhaseFinished {
		return ErrInvalidPhase
	}
	if l.phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if callerID != l.ownerID {
		return ErrNotOwner
	}
	if len(l.players) < MaxPlayers {
		return ErrNotEnoughPlayers
	}

	for _, b := range l.boards {
		b.Reset()
	}
	l.phase = PhasePlacing
	l.appendLog("Ship placement started.")
	return nil
}

// PlaceShip places one of the player's ships during the Placing phase.
func (l *Lobby) PlaceShip(playerID string, x, y int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase != PhasePlacing {
		return ErrInvalidPhase
	}
	b, ok := l.boards[playerID]
	if !ok {
		return ErrNotMember
	}
	if b.ShipsRemaining() >= l.shipsRequired {
		return ErrPlacementLimit
	}
	return b.Place(x, y)
}

// RemoveShip takes one of the player's ships back off the board. Permitted
// during the Placing phase only.
func (l *Lobby) RemoveShip(playerID string, x, y int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase != PhasePlacing {
		return ErrInvalidPhase
	}
	b, ok := l.boards[playerID]
	if !ok {
		return ErrNotMember
	}
	return b.Remove(x, y)
}

// FinishPlacement ends the placement countdown: any player short of the
// required ship count has the remainder auto-filled onto random free cells,
// and the game enters Playing with the first joiner's turn. It reports
// whether the transition happened; a lobby that left the Placing phase in
// the meantime (players gone, already finished) is left alone.
func (l *Lobby) FinishPlacement() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase != PhasePlacing || len(l.players) < MaxPlayers {
		return false
	}

	for _, playerID := range l.players {
		b := l.boards[playerID]
		if missing := l.shipsRequired - b.ShipsRemaining(); missing > 0 {
			b.FillRandom(missing)
			l.appendLog(fmt.Sprintf("Auto-placed %d ship(s) for %s.", missing, playerID))
		}
	}
	l.phase = PhasePlaying
	l.turn = l.players[0]
	l.appendLog(fmt.Sprintf("Game started. %s shoots first.", l.turn))
	return true
}

// ShotOutcome describes the effect of a single shot.
type ShotOutcome struct {
	Result   board.ShotResult
	Finished bool
	Winner   string
}

// Shoot resolves a shot by playerID against the opponent's board. The turn
// switches to the opponent after every resolved shot, hit or miss; hits do
// not grant an extra turn. Re-shooting a resolved cell changes nothing and
// keeps the turn. A shot that removes the opponent's last ship finishes the
// game with the shooter as winner.
func (l *Lobby) Shoot(playerID string, x, y int) (ShotOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase == PhaseFinished {
		return ShotOutcome{}, ErrInvalidPhase
	}
	if l.phase != PhasePlaying {
		return ShotOutcome{}, ErrInvalidPhase
	}
	if l.indexOf(playerID) < 0 {
		return ShotOutcome{}, ErrNotMember
	}
	opponentID := l.opponentOf(playerID)
	if opponentID == "" {
		return ShotOutcome{}, ErrNoOpponent
	}
	if l.turn != playerID {
		return ShotOutcome{}, ErrNotYourTurn
	}

	result, err := l.boards[opponentID].ResolveShot(x, y)
	if err != nil {
		return ShotOutcome{}, err
	}
	if result == board.ShotAlreadyTargeted {
		return ShotOutcome{Result: result}, nil
	}

	l.turn = opponentID
	switch result {
	case board.ShotHit:
		l.appendLog(fmt.Sprintf("%s hit a ship at (%d,%d).", playerID, x, y))
	case board.ShotMiss:
		l.appendLog(fmt.Sprintf("%s missed at (%d,%d).", playerID, x, y))
	}

	if l.boards[opponentID].ShipsRemaining() == 0 {
		l.phase = PhaseFinished
		l.winner = playerID
		l.turn = ""
		l.appendLog(fmt.Sprintf("%s sank the last ship and wins.", playerID))
		return ShotOutcome{Result: result, Finished: true, Winner: playerID}, nil
	}
	return ShotOutcome{Result: result}, nil
}

func (l *Lobby) opponentOf(playerID string) string {
	for _, p := range l.players {
		if p != playerID {
			return p
		}
	}
	return ""
}

// Snapshot is a per-recipient view of the lobby: the viewer's own board in
// full, the opponent's board masked through its public view.
type Snapshot struct {
	LobbyID       string
	Phase         Phase
	OwnerID       string
	Players       []string
	Turn          string
	Winner        string
	ShipsRequired int
	ShipsPlaced   int
	Board         [][]string
	OpponentView  [][]string
	Logs          []string
}

// Snapshot builds the view of the lobby as seen by viewerID.
func (l *Lobby) Snapshot(viewerID string) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		LobbyID:       l.id,
		Phase:         l.phase,
		OwnerID:       l.ownerID,
		Players:       append([]string(nil), l.players...),
		Turn:          l.turn,
		Winner:        l.winner,
		ShipsRequired: l.shipsRequired,
		Logs:          append([]string(nil), l.logs...),
	}
	if own, ok := l.boards[viewerID]; ok {
		snap.Board = own.Rows()
		snap.ShipsPlaced = own.ShipsRemaining()
	}
	if opponentID := l.opponentOf(viewerID); opponentID != "" {
		snap.OpponentView = l.boards[opponentID].PublicView().Rows()
	} else {
		snap.OpponentView = board.New(l.boardSize).Rows()
	}
	return snap
}

// appendLog records an event line; callers must hold the mutex.
func (l *Lobby) appendLog(line string) {
	l.logs = append(l.logs, line)
	if len(l.logs) > maxLogLines {
		l.logs = l.logs[len(l.logs)-maxLogLines:]
	}
}
