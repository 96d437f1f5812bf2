package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"HackTheFleet",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`HackTheFleet - MCP Interface

This is a thin client that proxies all requests to the REST API server.

HackTheFleet is a two-player naval combat game. Players place single-cell
ships on a grid, then take turns shooting cells on the opponent's board.
First player to sink every enemy ship wins. Gameplay itself happens over
WebSocket; these tools are a read-only inspection surface.

AVAILABLE TOOLS:
- list_lobbies: List all active lobbies
- get_lobby: Get details of a specific lobby
- server_stats: Get server-wide statistics
- game_rules: Get the game rules and wire protocol summary`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_lobbies",
		Description: "List all active game lobbies",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLobbies)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_lobby",
		Description: "Get details of a specific lobby",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"lobby_id": map[string]interface{}{
					"type":        "string",
					"description": "Six-digit lobby ID to retrieve",
				},
			},
			Required: []string{"lobby_id"},
		},
	}, c.handleGetLobby)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get server-wide statistics: lobby counts by phase, connected players, matchmaking queue length",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the game rules and a summary of the WebSocket wire protocol",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// lobbyOverview mirrors the REST lobby representation.
type lobbyOverview struct {
	LobbyID   string    `json:"lobby_id"`
	Public    bool      `json:"public"`
	State     string    `json:"state"`
	OwnerID   string    `json:"owner_id"`
	Players   []string  `json:"players"`
	Turn      string    `json:"turn"`
	Winner    string    `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// Tool handlers

func (c *Client) handleListLobbies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int             `json:"count"`
		Lobbies []lobbyOverview `json:"lobbies"`
	}

	err := c.apiCall("GET", "/api/lobbies", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Lobbies (%d):\n\n", response.Count)
	for _, l := range response.Lobbies {
		visibility := "private"
		if l.Public {
			visibility = "public"
		}
		result += fmt.Sprintf("- %s (%s, %s, players: %s, created: %s)\n",
			l.LobbyID, visibility, l.State,
			strings.Join(l.Players, ", "),
			l.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	lobbyID, _ := args["lobby_id"].(string)

	var l lobbyOverview
	err := c.apiCall("GET", fmt.Sprintf("/api/lobbies/%s", lobbyID), nil, &l)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLobby(&l)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats map[string]interface{}
	err := c.apiCall("GET", "/api/stats", nil, &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Server Statistics:\n\n" + string(data)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `HackTheFleet - Game Rules

OBJECTIVE:
Sink all of your opponent's ships before they sink yours.

SETUP:
- Each player gets a 5x5 board and 3 single-cell ships.
- A lobby holds exactly 2 players. The first player to join owns the lobby
  and is the only one who can start the game.
- Lobbies are either private (joined by six-digit ID) or public (matched
  first-come-first-served from a queue).

PLACEMENT PHASE:
- Once the owner starts the game, both players place ships by cell.
- Ships can be placed and removed freely until the countdown expires.
- When the countdown ends, any missing ships are placed randomly and
  combat begins. There is no way to delay the start.

COMBAT PHASE:
- The player who joined first shoots first.
- Players alternate shots. Every resolved shot passes the turn, hit or
  miss. Re-shooting an already-targeted cell is rejected and does not
  pass the turn.
- Board glyphs: "~" water, "S" ship, "X" hit, "O" miss. You never see
  unhit ships on the opponent's board.

WINNING:
- The first player to hit all 3 enemy ships wins immediately.

CONNECTION RULES:
- Gameplay runs over a persistent WebSocket at /ws.
- Clients must send the literal frame "heartbeat" at least every 10
  seconds; the server answers "heartbeat_ack". Silent connections are
  evicted and treated as having left.
- Leaving a lobby hands ownership to the remaining player. An empty
  lobby is destroyed.

WIRE PROTOCOL (summary):
- Menu frame: the literal "MENU_start_options" returns the lobby menu.
- Menu choices: {"option": "create_private_game" | "join_public_game" |
  "join_private_game", "input": "<lobby id>"}
- Game actions: {"action": "start_game" | "place_ship" | "remove_ship" |
  "shoot", "x": <col>, "y": <row>}

These MCP tools are read-only; to actually play, connect over WebSocket.`

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatLobby(l *lobbyOverview) string {
	visibility := "private"
	if l.Public {
		visibility = "public"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Lobby: %s (%s)\n", l.LobbyID, visibility))
	b.WriteString(fmt.Sprintf("State: %s\n", l.State))
	b.WriteString(fmt.Sprintf("Owner: %s\n", l.OwnerID))
	b.WriteString(fmt.Sprintf("Players: %s\n", strings.Join(l.Players, ", ")))
	if l.Turn != "" {
		b.WriteString(fmt.Sprintf("Turn: %s\n", l.Turn))
	}
	if l.Winner != "" {
		b.WriteString(fmt.Sprintf("Winner: %s\n", l.Winner))
	}
	b.WriteString(fmt.Sprintf("Created: %s\n", l.CreatedAt.Format("2006-01-02 15:04:05")))
	return b.String()
}
