// Package protocol defines the wire format spoken over a player connection.
// Inbound frames decode into a single Intent value; outbound traffic is a
// closed set of tagged message types, one Go type per message kind, so the
// whole protocol is checkable at compile time.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrMissingField   = errors.New("missing required field")
)

// Literal frames exchanged outside the JSON envelope.
const (
	FrameHeartbeat    = "heartbeat"
	FrameHeartbeatAck = "heartbeat_ack"
	FrameMenuRequest  = "MENU_start_options"
)

// IntentKind discriminates decoded client frames.
type IntentKind int

const (
	IntentHeartbeat IntentKind = iota
	IntentMenu
	IntentCreatePrivate
	IntentJoinPublic
	IntentJoinPrivate
	IntentStartGame
	IntentPlaceShip
	IntentRemoveShip
	IntentShoot
)

// Intent is a decoded client frame. LobbyID is set for IntentJoinPrivate;
// X and Y are set for the coordinate-carrying actions.
type Intent struct {
	Kind    IntentKind
	LobbyID string
	X, Y    int
}

// clientFrame is the superset JSON envelope clients send.
type clientFrame struct {
	Option string `json:"option"`
	Action string `json:"action"`
	Input  string `json:"input"`
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
}

// Decode parses one inbound text frame. Malformed JSON, unknown
// discriminators and missing required fields are reported as errors; the
// connection loop is expected to survive all of them.
func Decode(raw []byte) (Intent, error) {
	switch string(raw) {
	case FrameHeartbeat:
		return Intent{Kind: IntentHeartbeat}, nil
	case FrameMenuRequest:
		return Intent{Kind: IntentMenu}, nil
	}

	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrUnknownMessage, err)
	}

	switch frame.Option {
	case "create_private_game":
		return Intent{Kind: IntentCreatePrivate}, nil
	case "join_public_game":
		return Intent{Kind: IntentJoinPublic}, nil
	case "join_private_game":
		if frame.Input == "" {
			return Intent{}, fmt.Errorf("%w: input", ErrMissingField)
		}
		return Intent{Kind: IntentJoinPrivate, LobbyID: frame.Input}, nil
	}

	switch frame.Action {
	case "start_game":
		return Intent{Kind: IntentStartGame}, nil
	case "place_ship", "remove_ship", "shoot":
		if frame.X == nil || frame.Y == nil {
			return Intent{}, fmt.Errorf("%w: x, y", ErrMissingField)
		}
		kind := IntentPlaceShip
		switch frame.Action {
		case "remove_ship":
			kind = IntentRemoveShip
		case "shoot":
			kind = IntentShoot
		}
		return Intent{Kind: kind, X: *frame.X, Y: *frame.Y}, nil
	}

	return Intent{}, ErrUnknownMessage
}

// ServerMessage is implemented by every outbound message type.
type ServerMessage interface {
	serverMessage()
}

// Welcome is the first message on a new connection.
type Welcome struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// MenuOption is one entry of the start menu.
type MenuOption struct {
	DisplayName      string `json:"display_name"`
	ID               string `json:"id"`
	Input            bool   `json:"input,omitempty"`
	InputPlaceholder string `json:"input_placeholder,omitempty"`
	Disabled         bool   `json:"disabled,omitempty"`
}

// Menu lists the start menu options.
type Menu struct {
	Options []MenuOption `json:"options"`
}

// LobbyData carries the member list inside lobby snapshots.
type LobbyData struct {
	Players []string `json:"players"`
}

// Snapshot kinds carried in LobbyState.Type.
const (
	TypeLobby   = "lobby"   // membership / waiting-room update
	TypePlacing = "placing" // placement phase began
	TypeStart   = "start"   // combat began
	TypeUpdate  = "update"  // combat state changed
	TypeLog     = "log"     // informational, no phase change
)

// LobbyState is the per-recipient lobby snapshot: the recipient's own board
// in full, the opponent's board only through its masked view.
type LobbyState struct {
	Type             string     `json:"type"`
	LobbyID          string     `json:"lobby_id"`
	State            string     `json:"state"`
	Message          string     `json:"message,omitempty"`
	LobbyData        LobbyData  `json:"lobby_data"`
	OwnerID          string     `json:"owner_id"`
	Turn             string     `json:"turn,omitempty"`
	Winner           string     `json:"winner,omitempty"`
	ShipsRequired    int        `json:"ships_required,omitempty"`
	CountdownSeconds int        `json:"countdown_seconds,omitempty"`
	Board            [][]string `json:"board,omitempty"`
	OpponentView     [][]string `json:"opponent_view,omitempty"`
	Logs             []string   `json:"logs,omitempty"`
}

// Info is a bare informational message, e.g. "Waiting for opponent...".
type Info struct {
	Message string `json:"message"`
}

// ErrorMessage reports a rejected request to the offending connection.
type ErrorMessage struct {
	Error string `json:"error"`
}

// HeartbeatAck answers a heartbeat; it encodes as the literal frame.
type HeartbeatAck struct{}

func (Welcome) serverMessage()      {}
func (Menu) serverMessage()         {}
func (LobbyState) serverMessage()   {}
func (Info) serverMessage()         {}
func (ErrorMessage) serverMessage() {}
func (HeartbeatAck) serverMessage() {}

// Encode renders a server message as one outbound text frame.
func Encode(msg ServerMessage) ([]byte, error) {
	if _, ok := msg.(HeartbeatAck); ok {
		return []byte(FrameHeartbeatAck), nil
	}
	return json.Marshal(msg)
}

// StartMenu is the menu served to every fresh connection.
func StartMenu() Menu {
	return Menu{Options: []MenuOption{
		{DisplayName: "Join Public Game", ID: "join_public_game"},
		{DisplayName: "Join Private Game", ID: "join_private_game", Input: true, InputPlaceholder: "Enter the game ID"},
		{DisplayName: "Create Private Game", ID: "create_private_game"},
	}}
}
