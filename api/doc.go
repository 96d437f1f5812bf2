// Package api provides the HTTP surface of the HackTheFleet server.
//
// The api package implements:
//   - The /ws WebSocket endpoint where all gameplay happens
//   - A read-only REST surface for inspecting lobbies
//   - Health checking
//   - Mounting of auxiliary handlers (the /mcp endpoint)
//
// Endpoints:
//
// Gameplay:
//   - GET /ws - Upgrade to WebSocket; the server assigns a player ID and
//     sends a welcome frame before anything else
//
// Inspection:
//   - GET /api/lobbies - List all lobbies
//   - GET /api/lobbies/{id} - Get one lobby
//   - GET /api/stats - Server-wide counters
//
// Health:
//   - GET /healthz - Liveness probe
//
// The REST surface is deliberately read-only and board-free: lobby
// overviews never include ship positions, so polling it leaks nothing a
// player could not already see. All mutation flows through the WebSocket
// protocol.
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
