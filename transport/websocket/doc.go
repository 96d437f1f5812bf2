// Package websocket provides the WebSocket transport for HackTheFleet.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - One live connection per player ID
//   - Connection lifecycle management
//   - Per-player outbound message queues
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub holds every
// connection keyed by player ID. Each connection runs a dedicated read and
// write goroutine; inbound frames are handed to a FrameHandler, outbound
// messages are queued per client and flushed by the write pump.
//
// Message Protocol:
//
// Frames are the game wire protocol: literal frames ("heartbeat",
// "MENU_start_options") and JSON objects with an "option" or "action"
// discriminator. Outbound messages are encoded by the protocol package, one
// message per WebSocket text frame.
//
// Connection Lifecycle:
//
// 1. The API layer upgrades the request and calls NewClient
// 2. The game layer registers the player and queues the welcome frame
// 3. Start launches the pumps; frames flow to the FrameHandler
// 4. Connection death fires FrameHandler.Disconnect exactly once
//
// A second connection under the same player ID replaces the first. Clients
// that cannot drain their outbound queue are dropped.
//
// Concurrency:
//
// The hub and clients are safe for concurrent use. Sends, closes, and
// connection churn may happen from any goroutine.
package websocket
