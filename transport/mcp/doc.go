// Package mcp provides the Model Context Protocol surface of HackTheFleet.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Read-only tools over the REST inspection API
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_lobbies: List all active lobbies
//   - get_lobby: Get one lobby's phase, members, turn and winner
//   - server_stats: Server-wide counters
//   - game_rules: The game rules and wire protocol summary
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: an /mcp endpoint on the main HTTP server
//
// The client is a thin proxy: every tool call becomes a request against
// the REST API of a running game server, so the MCP surface can never
// drift from what the server actually reports. Gameplay itself is not
// reachable from here; agents that want to play connect over WebSocket
// like any other client.
package mcp
