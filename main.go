// Command hackthefleet starts the HackTheFleet session server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the WebSocket game
//     endpoint, the REST inspection API, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server proxying a running HTTP server
//
// All runtime settings come from HTF_* environment variables; a .env file in
// the working directory is loaded when present.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/SilberGecko6917/HackTheFleet/api"
	"github.com/SilberGecko6917/HackTheFleet/config"
	"github.com/SilberGecko6917/HackTheFleet/game/lobby"
	"github.com/SilberGecko6917/HackTheFleet/game/presence"
	"github.com/SilberGecko6917/HackTheFleet/game/router"
	"github.com/SilberGecko6917/HackTheFleet/transport/mcp"
	"github.com/SilberGecko6917/HackTheFleet/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "HackTheFleet Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := &cli.Command{
		Name:    "hackthefleet",
		Usage:   "real-time two-player naval combat server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with WebSocket, REST and MCP endpoints",
				Action: runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp"},
				Usage:   "run an MCP stdio server proxying a running HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "base URL of the running HTTP server",
						Value: "http://localhost:8000",
					},
				},
				Action: runStdioMCP,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger at the requested level.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// runServe wires the full server and blocks until a shutdown signal.
func runServe(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Debug || c.Bool("debug"))
	logger.Info("starting", "app", AppName, "version", Version,
		"addr", cfg.Addr, "board_size", cfg.BoardSize, "ships_required", cfg.ShipsRequired)

	lobbies := lobby.NewManager(cfg.BoardSize, cfg.ShipsRequired, logger)
	tracker := presence.NewTracker(logger)
	hub := websocket.NewHub(logger)
	game := router.New(lobbies, tracker, hub, cfg.PlacementCountdown(), logger)

	apiServer := api.NewServer(lobbies, game, hub, logger)
	apiServer.Mount("/mcp", mcpHTTPHandler(mcp.NewClient(localBaseURL(cfg.Addr))))

	// No WriteTimeout: the /ws connections are long-lived.
	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     apiServer,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Presence sweeper: silent connections get closed and treated as leaves.
	go tracker.Run(ctx, cfg.HeartbeatTimeout, game.HandleEvictions)

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Addr)
		logger.Info("endpoints",
			"websocket", "/ws", "rest", "/api", "mcp", "/mcp", "health", "/healthz")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	hub.Shutdown()

	logger.Info("server stopped")
	return nil
}

// runStdioMCP serves the MCP tools over stdio against a running HTTP server.
func runStdioMCP(ctx context.Context, c *cli.Command) error {
	client := mcp.NewClient(c.String("api-url"))
	if err := mcpserver.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

// localBaseURL turns a listen address into a URL the MCP proxy can call.
func localBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// mcpHTTPHandler exposes the MCP server over plain HTTP POST.
func mcpHTTPHandler(client *mcp.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
}
