package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/knight-path/api"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
	"github.com/wricardo/knight-path/game/session"
	"github.com/wricardo/knight-path/transport/websocket"
)

// newAPIServer starts the real REST API over an in-memory session manager
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	server := httptest.NewServer(api.NewServer(service.NewKnightService(session.NewManager()), hub))
	t.Cleanup(server.Close)
	return server
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func createSession(t *testing.T, client *Client, x, y int) string {
	t.Helper()
	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"x": float64(x),
		"y": float64(y),
	}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("create_session returned error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	line := strings.SplitN(text, "\n", 2)[0]
	return strings.TrimSpace(strings.TrimPrefix(line, "Created session:"))
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"from": map[string]int{"x": 0, "y": 0}, "moves": 6})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response service.DistanceResult
	if err := client.apiCall(context.Background(), "GET", "/api/distance", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response.Moves != 6 {
		t.Errorf("Expected 6 moves, got %d", response.Moves)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "Plain body", body: "Internal Server Error", expected: "API error: 500"},
		{name: "JSON error", body: `{"error":"boom"}`, expected: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil || err.Error() != tt.expected {
				t.Errorf("Expected error %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	id := createSession(t, client, 0, 0)
	if len(id) != 4 {
		t.Errorf("Expected a 4-character session ID, got %q", id)
	}

	// Missing coordinates never reach the API
	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{"x": float64(1)}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result when y is missing")
	}

	// Off-board start surfaces the API error
	result, _ = client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"x": float64(8), "y": float64(0),
	}))
	if !result.IsError || !strings.Contains(resultText(t, result), "invalid position") {
		t.Errorf("Expected invalid position error, got %+v", result)
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int
		present bool
		wantErr bool
	}{
		{name: "Absent", value: nil},
		{name: "Whole float", value: float64(3), want: 3, present: true},
		{name: "Negative whole float", value: float64(-1), want: -1, present: true},
		{name: "Int", value: 5, want: 5, present: true},
		{name: "Fraction", value: 2.9, present: true, wantErr: true},
		{name: "Too large", value: 1e300, present: true, wantErr: true},
		{name: "String", value: "2", present: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{}
			if tt.value != nil {
				args["x"] = tt.value
			}

			got, present, err := intArg(args, "x")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if present != tt.present {
				t.Errorf("Expected present=%v, got %v", tt.present, present)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestClient_fractionalCoordinates(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{
		"x": 2.9, "y": float64(0),
	}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "x must be a whole number") {
		t.Errorf("Expected whole number error, got %+v", result)
	}

	id := createSession(t, client, 0, 0)
	result, _ = client.handleShortestNumberOfMoves(ctx, callTool("shortest_number_of_moves", map[string]interface{}{
		"session_id": id, "target_x": float64(7), "target_y": 6.5,
	}))
	if !result.IsError || !strings.Contains(resultText(t, result), "target_y must be a whole number") {
		t.Errorf("Expected whole number error for target_y, got %+v", result)
	}

	result, _ = client.handleQueryHistory(ctx, callTool("query_history", map[string]interface{}{
		"session_id": id, "limit": 0.5,
	}))
	if !result.IsError {
		t.Error("Expected error for fractional limit")
	}
}

func TestClient_shortestNumberOfMoves(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()
	id := createSession(t, client, 0, 0)

	tests := []struct {
		name     string
		args     map[string]interface{}
		isError  bool
		expected string
	}{
		{
			name:     "Opposite corner",
			args:     map[string]interface{}{"session_id": id, "target_x": float64(7), "target_y": float64(7)},
			expected: "Shortest path from 0,0 to 7,7: 6 moves (query #1)",
		},
		{
			name:     "Single jump",
			args:     map[string]interface{}{"session_id": id, "target_x": float64(1), "target_y": float64(2)},
			expected: "1 move (query #2)",
		},
		{
			name:     "Off-board target",
			args:     map[string]interface{}{"session_id": id, "target_x": float64(9), "target_y": float64(0)},
			isError:  true,
			expected: "invalid position",
		},
		{
			name:     "Unknown session",
			args:     map[string]interface{}{"session_id": "zzzz", "target_x": float64(1), "target_y": float64(2)},
			isError:  true,
			expected: "session not found",
		},
		{
			name:     "Missing target",
			args:     map[string]interface{}{"session_id": id},
			isError:  true,
			expected: "target_x and target_y are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleShortestNumberOfMoves(ctx, callTool("shortest_number_of_moves", tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result.IsError != tt.isError {
				t.Errorf("Expected IsError=%v, got %v", tt.isError, result.IsError)
			}
			if text := resultText(t, result); !strings.Contains(text, tt.expected) {
				t.Errorf("Expected %q in result, got: %s", tt.expected, text)
			}
		})
	}
}

func TestClient_possibleMoves(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()
	id := createSession(t, client, 0, 0)

	result, err := client.handlePossibleMoves(ctx, callTool("possible_moves", map[string]interface{}{"session_id": id}))
	if err != nil {
		t.Fatalf("possible_moves failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Possible moves from 0,0 (2)") {
		t.Errorf("Expected two moves from the corner, got: %s", text)
	}

	result, _ = client.handlePossibleMoves(ctx, callTool("possible_moves", map[string]interface{}{
		"session_id": id, "x": float64(3), "y": float64(3),
	}))
	if text := resultText(t, result); !strings.Contains(text, "Possible moves from 3,3 (8)") {
		t.Errorf("Expected eight moves from the centre, got: %s", text)
	}
}

func TestClient_knightDistance(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	result, err := client.handleKnightDistance(context.Background(), callTool("knight_distance", map[string]interface{}{
		"from_x": float64(3), "from_y": float64(3), "to_x": float64(0), "to_y": float64(0),
	}))
	if err != nil {
		t.Fatalf("knight_distance failed: %v", err)
	}
	if text := resultText(t, result); text != "Shortest path from 3,3 to 0,0: 2 moves" {
		t.Errorf("Unexpected result: %s", text)
	}
}

func TestClient_queryHistory(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	ctx := context.Background()
	id := createSession(t, client, 0, 0)

	client.handleShortestNumberOfMoves(ctx, callTool("shortest_number_of_moves", map[string]interface{}{
		"session_id": id, "target_x": float64(7), "target_y": float64(7),
	}))
	client.handlePossibleMoves(ctx, callTool("possible_moves", map[string]interface{}{"session_id": id}))

	result, err := client.handleQueryHistory(ctx, callTool("query_history", map[string]interface{}{
		"session_id": id, "order": "asc",
	}))
	if err != nil {
		t.Fatalf("query_history failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Total: 2", "#1 distance 0,0 -> 7,7 = 6", "#2 moves from 0,0: 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in history, got: %s", want, text)
		}
	}
}

func TestFormatBoard(t *testing.T) {
	board := formatBoard(knight.Position{X: 0, Y: 0}, []knight.Position{{X: 1, Y: 2}, {X: 2, Y: 1}})
	lines := strings.Split(strings.TrimRight(board, "\n"), "\n")

	if len(lines) != knight.BoardSize+1 {
		t.Fatalf("Expected %d lines, got %d:\n%s", knight.BoardSize+1, len(lines), board)
	}

	// Rows are printed from y=7 down to y=0
	expected := map[int]string{
		5: "2 .*......",
		6: "1 ..*.....",
		7: "0 N.......",
		8: "  01234567",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Line %d: expected %q, got %q", i, want, lines[i])
		}
	}
}

func TestClient_handleKnightInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleKnightInstructions(context.Background(), callTool("knight_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleKnightInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, section := range []string{"BOARD:", "MOVEMENT:", "DISTANCES:", "WORKFLOW:"} {
		if !strings.Contains(text, section) {
			t.Errorf("Expected %q in instructions", section)
		}
	}
}
