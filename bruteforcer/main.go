// Command bruteforcer drives a complete HackTheFleet duel against a running
// server. It opens two WebSocket connections, pairs them in a private lobby,
// places both fleets, and fires shots until one side wins. Useful for load
// poking and for exercising the full wire protocol end to end.
//
// Run the server with a short placement countdown to keep duels fast:
//
//	HTF_PLACEMENT_SECONDS=1 ./hackthefleet serve
//	go run ./bruteforcer -server ws://localhost:8000/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	serverURL = flag.String("server", "ws://localhost:8000/ws", "WebSocket endpoint of the game server")
	strategy  = flag.String("strategy", "sweep", "shot ordering: sweep or random")
	boardSize = flag.Int("board-size", 5, "board side length the server is configured with")
	ships     = flag.Int("ships", 3, "ships per fleet the server is configured with")
	timeout   = flag.Duration("timeout", 2*time.Minute, "give up if the duel has not finished by then")
)

// ServerFrame is the union of every server message the bot cares about.
type ServerFrame struct {
	// Welcome
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`

	// Lobby snapshots
	Type    string `json:"type"`
	LobbyID string `json:"lobby_id"`
	State   string `json:"state"`
	Message string `json:"message"`
	OwnerID string `json:"owner_id"`
	Turn    string `json:"turn"`
	Winner  string `json:"winner"`

	// Errors
	Error string `json:"error"`
}

// Bot is one player: a connection, an identity, and a shot plan.
type Bot struct {
	name     string
	conn     *websocket.Conn
	playerID string
	strategy Strategy

	mu sync.Mutex // serializes writes against the heartbeat ticker
}

func main() {
	flag.Parse()

	alpha, err := connect("alpha")
	if err != nil {
		log.Fatalf("connect alpha: %v", err)
	}
	defer alpha.conn.Close()

	bravo, err := connect("bravo")
	if err != nil {
		log.Fatalf("connect bravo: %v", err)
	}
	defer bravo.conn.Close()

	done := make(chan struct{})
	defer close(done)
	go alpha.heartbeat(done)
	go bravo.heartbeat(done)

	// Alpha owns the lobby; bravo joins by ID.
	if err := alpha.send(map[string]string{"option": "create_private_game"}); err != nil {
		log.Fatalf("create lobby: %v", err)
	}
	lobbyFrame, err := alpha.waitFor(func(f *ServerFrame) bool { return f.LobbyID != "" })
	if err != nil {
		log.Fatalf("await lobby: %v", err)
	}
	log.Printf("lobby %s created by %s", lobbyFrame.LobbyID, alpha.playerID)

	if err := bravo.send(map[string]string{"option": "join_private_game", "input": lobbyFrame.LobbyID}); err != nil {
		log.Fatalf("join lobby: %v", err)
	}
	if _, err := alpha.waitFor(func(f *ServerFrame) bool { return f.Type == "lobby" && f.Message != "" }); err != nil {
		log.Fatalf("await join: %v", err)
	}

	if err := alpha.send(map[string]interface{}{"action": "start_game"}); err != nil {
		log.Fatalf("start game: %v", err)
	}
	if _, err := alpha.waitFor(func(f *ServerFrame) bool { return f.Type == "placing" }); err != nil {
		log.Fatalf("await placement: %v", err)
	}
	log.Printf("placement phase started")

	// Both fleets on the first cells of the board; the server validates
	// coordinates, the bot just needs a legal layout.
	for _, bot := range []*Bot{alpha, bravo} {
		for i := 0; i < *ships; i++ {
			place := map[string]interface{}{"action": "place_ship", "x": i % *boardSize, "y": i / *boardSize}
			if err := bot.send(place); err != nil {
				log.Fatalf("%s place ship: %v", bot.name, err)
			}
		}
	}

	start, err := alpha.waitFor(func(f *ServerFrame) bool { return f.Type == "start" })
	if err != nil {
		log.Fatalf("await combat: %v", err)
	}
	bravo.drainUntil(func(f *ServerFrame) bool { return f.Type == "start" })
	log.Printf("combat started, %s shoots first", start.Turn)

	winner, shots, err := runDuel(alpha, bravo, start.Turn)
	if err != nil {
		log.Fatalf("duel: %v", err)
	}
	log.Printf("duel finished after %d shots, winner: %s", shots, winner)
}

// runDuel alternates shots until the server reports a winner.
func runDuel(alpha, bravo *Bot, firstTurn string) (winner string, shots int, err error) {
	bots := map[string]*Bot{alpha.playerID: alpha, bravo.playerID: bravo}
	turn := firstTurn
	deadline := time.Now().Add(*timeout)

	for time.Now().Before(deadline) {
		bot := bots[turn]
		other := alpha
		if bot == alpha {
			other = bravo
		}
		x, y, ok := bot.strategy.Next()
		if !ok {
			return "", shots, fmt.Errorf("%s ran out of cells to shoot", bot.name)
		}
		if err := bot.send(map[string]interface{}{"action": "shoot", "x": x, "y": y}); err != nil {
			return "", shots, fmt.Errorf("%s shoot: %w", bot.name, err)
		}
		shots++

		frame, err := bot.waitFor(func(f *ServerFrame) bool {
			return f.Type == "update" || f.Error != ""
		})
		if err != nil {
			return "", shots, err
		}
		if frame.Error != "" {
			return "", shots, fmt.Errorf("%s rejected: %s", bot.name, frame.Error)
		}
		log.Printf("%s shoots (%d,%d): %s", bot.name, x, y, frame.Message)

		if frame.Winner != "" {
			return frame.Winner, shots, nil
		}
		// Each shot is broadcast to both players; the opponent must consume
		// its copy or stale updates satisfy its next wait.
		other.drainUntil(func(f *ServerFrame) bool { return f.Type == "update" })
		turn = frame.Turn
	}
	return "", shots, fmt.Errorf("duel did not finish within %s", *timeout)
}

// connect dials the server and consumes the welcome frame.
func connect(name string) (*Bot, error) {
	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", *serverURL, err)
	}

	bot := &Bot{name: name, conn: conn, strategy: newStrategy(*strategy, *boardSize)}
	welcome, err := bot.waitFor(func(f *ServerFrame) bool { return f.PlayerID != "" })
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("welcome: %w", err)
	}
	bot.playerID = welcome.PlayerID
	log.Printf("%s connected as %s", name, bot.playerID)
	return bot, nil
}

func (b *Bot) send(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

// heartbeat keeps the presence tracker happy for the life of the duel.
func (b *Bot) heartbeat(done <-chan struct{}) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			b.mu.Lock()
			b.conn.WriteMessage(websocket.TextMessage, []byte("heartbeat"))
			b.mu.Unlock()
		}
	}
}

// waitFor reads frames until match returns true, skipping heartbeat acks and
// frames the caller doesn't care about.
func (b *Bot) waitFor(match func(*ServerFrame) bool) (*ServerFrame, error) {
	for {
		b.conn.SetReadDeadline(time.Now().Add(*timeout))
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%s read: %w", b.name, err)
		}
		if string(data) == "heartbeat_ack" {
			continue
		}

		var frame ServerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if match(&frame) {
			return &frame, nil
		}
	}
}

// drainUntil discards frames until match succeeds; read errors are ignored.
func (b *Bot) drainUntil(match func(*ServerFrame) bool) {
	b.waitFor(match)
}
