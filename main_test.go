package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SilberGecko6917/HackTheFleet/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestLocalBaseURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8000", "http://localhost:8000"},
		{"0.0.0.0:9090", "http://0.0.0.0:9090"},
		{"127.0.0.1:8000", "http://127.0.0.1:8000"},
	}
	for _, tt := range tests {
		if got := localBaseURL(tt.addr); got != tt.want {
			t.Errorf("localBaseURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	debugLogger := newLogger(true)
	if !debugLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug logger should accept debug records")
	}

	infoLogger := newLogger(false)
	if infoLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("info logger should drop debug records")
	}
}

func TestMCPHTTPHandlerRejectsGet(t *testing.T) {
	handler := mcpHTTPHandler(mcp.NewClient("http://localhost:8000"))

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestMCPHTTPHandlerAnswersInitialize(t *testing.T) {
	handler := mcpHTTPHandler(mcp.NewClient("http://localhost:8000"))

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "HackTheFleet") {
		t.Errorf("expected server info in response, got: %s", rec.Body.String())
	}
}
