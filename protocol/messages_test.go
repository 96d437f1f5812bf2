package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{"heartbeat literal", `heartbeat`, Intent{Kind: IntentHeartbeat}},
		{"menu request literal", `MENU_start_options`, Intent{Kind: IntentMenu}},
		{"create private", `{"option":"create_private_game"}`, Intent{Kind: IntentCreatePrivate}},
		{"join public", `{"option":"join_public_game"}`, Intent{Kind: IntentJoinPublic}},
		{"join private", `{"option":"join_private_game","input":"123456"}`, Intent{Kind: IntentJoinPrivate, LobbyID: "123456"}},
		{"start game", `{"action":"start_game"}`, Intent{Kind: IntentStartGame}},
		{"place ship", `{"action":"place_ship","x":2,"y":3}`, Intent{Kind: IntentPlaceShip, X: 2, Y: 3}},
		{"remove ship", `{"action":"remove_ship","x":0,"y":0}`, Intent{Kind: IntentRemoveShip}},
		{"shoot", `{"action":"shoot","x":4,"y":1}`, Intent{Kind: IntentShoot, X: 4, Y: 1}},
		{"zero coordinates are valid", `{"action":"shoot","x":0,"y":0}`, Intent{Kind: IntentShoot}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"garbage", `not json at all`, ErrUnknownMessage},
		{"unknown option", `{"option":"hack_the_planet"}`, ErrUnknownMessage},
		{"unknown action", `{"action":"nuke"}`, ErrUnknownMessage},
		{"empty object", `{}`, ErrUnknownMessage},
		{"join private without input", `{"option":"join_private_game"}`, ErrMissingField},
		{"shoot without coordinates", `{"action":"shoot"}`, ErrMissingField},
		{"place with only x", `{"action":"place_ship","x":1}`, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncode(t *testing.T) {
	t.Run("heartbeat ack is a literal frame", func(t *testing.T) {
		raw, err := Encode(HeartbeatAck{})
		require.NoError(t, err)
		assert.Equal(t, FrameHeartbeatAck, string(raw))
	})

	t.Run("welcome", func(t *testing.T) {
		raw, err := Encode(Welcome{PlayerID: "abc12345", Token: "tok"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"player_id":"abc12345","token":"tok"}`, string(raw))
	})

	t.Run("error message", func(t *testing.T) {
		raw, err := Encode(ErrorMessage{Error: "Lobby not found"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"Lobby not found"}`, string(raw))
	})

	t.Run("lobby state keeps flat key layout", func(t *testing.T) {
		raw, err := Encode(LobbyState{
			Type:      TypeUpdate,
			LobbyID:   "123456",
			State:     "playing",
			OwnerID:   "abc12345",
			Turn:      "abc12345",
			LobbyData: LobbyData{Players: []string{"abc12345", "def67890"}},
			Board:     [][]string{{"~", "S"}, {"X", "O"}},
		})
		require.NoError(t, err)

		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &decoded))
		for _, key := range []string{"type", "lobby_id", "state", "lobby_data", "owner_id", "turn", "board"} {
			assert.Contains(t, decoded, key)
		}
		assert.NotContains(t, decoded, "winner", "empty optional fields stay off the wire")
	})
}

func TestStartMenu(t *testing.T) {
	menu := StartMenu()
	require.Len(t, menu.Options, 3)

	ids := make([]string, 0, 3)
	for _, opt := range menu.Options {
		ids = append(ids, opt.ID)
		assert.False(t, opt.Disabled)
	}
	assert.Equal(t, []string{"join_public_game", "join_private_game", "create_private_game"}, ids)
	assert.True(t, menu.Options[1].Input, "private join prompts for a lobby id")
}
