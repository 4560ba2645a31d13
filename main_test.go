package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/session"
	"github.com/wricardo/knight-path/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Knight Path Server" {
		t.Errorf("Expected app name Knight Path Server, got %s", AppName)
	}
}

// runApp runs the command tree with args and returns what it printed
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"knight-path"}, args...))
	return out.String(), err
}

func TestDistanceCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
		err      error
	}{
		{name: "Opposite corners", args: []string{"0,0", "7,7"}, expected: "6\n"},
		{name: "Same square", args: []string{"4,4", "4,4"}, expected: "0\n"},
		{name: "Centre to corner", args: []string{"3,3", "0,0"}, expected: "2\n"},
		{name: "Off-board target", args: []string{"0,0", "8,0"}, err: knight.ErrInvalidPosition},
		{name: "Malformed square", args: []string{"0-0", "1,2"}, err: knight.ErrInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, append([]string{"distance"}, tt.args...)...)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("Expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestDistanceCommand_WrongArgCount(t *testing.T) {
	if _, err := runApp(t, "distance", "0,0"); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("Expected usage error, got %v", err)
	}
}

func TestMovesCommand(t *testing.T) {
	out, err := runApp(t, "moves", "0,0")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "1,2\n2,1\n" {
		t.Errorf("Expected the two corner moves in offset order, got %q", out)
	}

	if _, err := runApp(t, "moves", "8,0"); !errors.Is(err, knight.ErrInvalidPosition) {
		t.Errorf("Expected invalid position, got %v", err)
	}
}

// newCaptureCommand records the resolved server config instead of serving
func newCaptureCommand(cfg *serverConfig) *cli.Command {
	return &cli.Command{
		Name: "capture",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			*cfg = configFromCommand(cmd)
			return nil
		},
	}
}

func TestConfigFromFlags(t *testing.T) {
	var cfg serverConfig
	app := newApp()
	app.Commands = append(app.Commands, newCaptureCommand(&cfg))

	err := app.Run(context.Background(), []string{
		"knight-path", "--port", "9090", "--host", "0.0.0.0", "--sessions-dir", "/tmp/knights", "capture",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.addr() != "0.0.0.0:9090" {
		t.Errorf("Expected addr 0.0.0.0:9090, got %s", cfg.addr())
	}
	if cfg.SessionsDir != "/tmp/knights" {
		t.Errorf("Expected sessions dir /tmp/knights, got %s", cfg.SessionsDir)
	}
	if cfg.Ngrok {
		t.Error("Expected ngrok to be disabled by default")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("NGROK_AUTH_TOKEN", "tok")

	var cfg serverConfig
	app := newApp()
	app.Commands = append(app.Commands, newCaptureCommand(&cfg))

	if err := app.Run(context.Background(), []string{"knight-path", "capture"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != 7070 {
		t.Errorf("Expected port 7070 from PORT, got %d", cfg.Port)
	}
	if !cfg.Ngrok || cfg.NgrokAuth != "tok" {
		t.Errorf("Expected ngrok enabled with token from env, got %+v", cfg)
	}
}

func TestInitializeServices(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")

	knightService, err := initializeServices(dir)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	info, err := knightService.CreateSession(context.Background(), knight.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, info.ID+".json")); err != nil {
		t.Errorf("Expected session file to be written: %v", err)
	}
}

func TestInitializeServices_InvalidSessionsDir(t *testing.T) {
	// A regular file where the directory should be
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := initializeServices(filepath.Join(file, "sessions")); err == nil {
		t.Error("Expected error for unusable sessions directory")
	}
}

func TestSyncWithFilesystem(t *testing.T) {
	dir := t.TempDir()
	persistence, err := session.NewFilePersistence(dir)
	if err != nil {
		t.Fatal(err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	kept, _ := manager.Create("", knight.Position{X: 0, Y: 0})
	removed, _ := manager.Create("", knight.Position{X: 7, Y: 7})

	if err := os.Remove(filepath.Join(dir, removed.ID+".json")); err != nil {
		t.Fatal(err)
	}

	if pruned := syncWithFilesystem(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected %s to remain: %v", kept.ID, err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
}

func TestMCPEndpoint(t *testing.T) {
	mcpClient := mcp.NewClient("http://127.0.0.1:0")
	router := newRouter(http.NotFoundHandler(), mcpClient)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse MCP response: %v", err)
	}

	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"create_session", "shortest_number_of_moves", "knight_distance", "possible_moves"} {
		if !names[want] {
			t.Errorf("Expected tool %s to be listed, got %v", want, names)
		}
	}
}
