package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/knight-path/game/knight"
	"github.com/wricardo/knight-path/game/service"
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
		"Knight Path",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Knight Path - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Squares are (x,y) pairs with 0 <= x,y <= 7. A session pins a knight to a
start square; distance queries are answered from that square.

AVAILABLE TOOLS:
- create_session: Place a knight on a start square
- list_sessions: List all active sessions
- get_session: Get session details
- possible_moves: Legal jumps from the session's square (or a given one)
- shortest_number_of_moves: Minimum jumps from the session's square to a target
- knight_distance: Minimum jumps between any two squares, no session needed
- query_history: View past queries of a session
- knight_instructions: Rules and coordinate conventions`),
	)

	c.registerTools()
}

func squareProperties(prefix, what string) map[string]interface{} {
	return map[string]interface{}{
		prefix + "x": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"maximum":     knight.BoardSize - 1,
			"description": what + " column (x)",
		},
		prefix + "y": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"maximum":     knight.BoardSize - 1,
			"description": what + " row (y)",
		},
	}
}

func withSessionID(props map[string]interface{}) map[string]interface{} {
	props["session_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session with the knight on a start square",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: squareProperties("", "Start"),
			Required:   []string{"x", "y"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active knight sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withSessionID(map[string]interface{}{}),
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Queries
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "possible_moves",
		Description: "List the legal knight jumps from the session's square, or from x,y when given",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withSessionID(squareProperties("", "Origin")),
			Required:   []string{"session_id"},
		},
	}, c.handlePossibleMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shortest_number_of_moves",
		Description: "Minimum number of knight moves from the session's square to a target square",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withSessionID(squareProperties("target_", "Target")),
			Required:   []string{"session_id", "target_x", "target_y"},
		},
	}, c.handleShortestNumberOfMoves)

	distanceProps := squareProperties("from_", "Origin")
	for k, v := range squareProperties("to_", "Target") {
		distanceProps[k] = v
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "knight_distance",
		Description: "Minimum number of knight moves between two squares without opening a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: distanceProps,
			Required:   []string{"from_x", "from_y", "to_x", "to_y"},
		},
	}, c.handleKnightDistance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "query_history",
		Description: "Get paginated history of a session's answered queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withSessionID(map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			}),
			Required: []string{"session_id"},
		},
	}, c.handleQueryHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "knight_instructions",
		Description: "Get rules, coordinate conventions and tool usage",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleKnightInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

// intArg reads a whole-number JSON argument. present is false when key is
// absent; fractional or out-of-range numbers are errors.
func intArg(args map[string]interface{}, key string) (n int, present bool, err error) {
	switch v := args[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return 0, true, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// squareArg reads the <prefix>x and <prefix>y arguments; present reports
// whether either was supplied
func squareArg(args map[string]interface{}, prefix string) (pos knight.Position, present bool, err error) {
	x, hasX, err := intArg(args, prefix+"x")
	if err != nil {
		return knight.Position{}, true, err
	}
	y, hasY, err := intArg(args, prefix+"y")
	if err != nil {
		return knight.Position{}, true, err
	}
	if !hasX && !hasY {
		return knight.Position{}, false, nil
	}
	if !hasX || !hasY {
		return knight.Position{}, true, fmt.Errorf("both %sx and %sy are required", prefix, prefix)
	}
	return knight.Position{X: x, Y: y}, true, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	start, present, err := squareArg(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !present {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	var session service.SessionInfo
	body := map[string]interface{}{"start": start}
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\n\n%s", session.ID, formatSessionInfo(&session))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Knight: %s, Queries: %d, Created: %s)\n",
			s.ID, s.Start, s.QueryCount, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handlePossibleMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	from, present, err := squareArg(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := fmt.Sprintf("/api/sessions/%s/moves", url.PathEscape(sessionID))
	if present {
		path += "?from=" + url.QueryEscape(from.String())
	}

	var result service.MovesResult
	if err := c.apiCall(ctx, "GET", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMovesResult(&result)), nil
}

func (c *Client) handleShortestNumberOfMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	target, present, err := squareArg(args, "target_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !present {
		return mcp.NewToolResultError("target_x and target_y are required"), nil
	}

	var result service.DistanceResult
	body := map[string]interface{}{"target": target}
	path := fmt.Sprintf("/api/sessions/%s/distance", url.PathEscape(sessionID))
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDistanceResult(&result)), nil
}

func (c *Client) handleKnightDistance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	from, fromPresent, err := squareArg(args, "from_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, toPresent, err := squareArg(args, "to_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !fromPresent || !toPresent {
		return mcp.NewToolResultError("from_x, from_y, to_x and to_y are required"), nil
	}

	query := url.Values{}
	query.Set("from", from.String())
	query.Set("to", to.String())

	var result service.DistanceResult
	if err := c.apiCall(ctx, "GET", "/api/distance?"+query.Encode(), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDistanceResult(&result)), nil
}

func (c *Client) handleQueryHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	for _, key := range []string{"page", "limit"} {
		n, ok, err := intArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ok {
			query.Set(key, fmt.Sprint(n))
		}
	}
	if order, ok := args["order"].(string); ok && order != "" {
		query.Set("order", order)
	}

	path := fmt.Sprintf("/api/sessions/%s/history", url.PathEscape(sessionID))
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleKnightInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Knight Path - Instructions

BOARD:
• 8x8 squares, (x,y) with x and y in 0..7
• (0,0) is a corner and (7,7) the opposite corner

MOVEMENT:
• A knight jumps two squares along one axis and one along the other
• Jumps are listed in a fixed order: (+1,+2) (+2,+1) (+2,-1) (+1,-2)
  (-1,-2) (-2,-1) (-2,+1) (-1,+2)
• Jumps that would leave the board are not legal

DISTANCES:
• The distance from a square to itself is 0
• Every square of an 8x8 board is reachable from every other in at most 6 moves
• Distance is symmetric: a to b equals b to a

WORKFLOW:
1. create_session with the knight's start square
2. possible_moves to see the legal jumps
3. shortest_number_of_moves for each target you care about
4. query_history to review answered queries

Use knight_distance for one-off questions that need no session.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nKnight: %s\nQueries: %d\nCreated: %s\n\n",
		session.ID, session.Start, session.QueryCount,
		session.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(formatBoard(session.Start, session.PossibleMoves))
	return b.String()
}

func formatMovesResult(result *service.MovesResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Possible moves from %s (%d):\n", result.From, result.Count)
	for _, m := range result.Moves {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(result.From, result.Moves))
	return b.String()
}

func formatDistanceResult(result *service.DistanceResult) string {
	noun := "moves"
	if result.Moves == 1 {
		noun = "move"
	}
	line := fmt.Sprintf("Shortest path from %s to %s: %d %s", result.From, result.To, result.Moves, noun)
	if result.QueryNumber > 0 {
		line += fmt.Sprintf(" (query #%d)", result.QueryNumber)
	}
	return line
}

// formatBoard draws the board with N on the knight's square and * on each
// reachable square, highest row first
func formatBoard(knightAt knight.Position, targets []knight.Position) string {
	marked := make(map[knight.Position]bool, len(targets))
	for _, t := range targets {
		marked[t] = true
	}

	var b strings.Builder
	for y := knight.BoardSize - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%d ", y)
		for x := 0; x < knight.BoardSize; x++ {
			p := knight.Position{X: x, Y: y}
			switch {
			case p == knightAt:
				b.WriteString("N")
			case marked[p]:
				b.WriteString("*")
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("  ")
	for x := 0; x < knight.BoardSize; x++ {
		fmt.Fprintf(&b, "%d", x)
	}
	b.WriteString("\n")
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalQueries)

	for _, q := range history.Queries {
		switch q.Kind {
		case service.QueryDistance:
			to := "?"
			if q.To != nil {
				to = q.To.String()
			}
			fmt.Fprintf(&b, "#%d distance %s -> %s = %d\n", q.QueryNumber, q.From, to, q.Moves)
		default:
			fmt.Fprintf(&b, "#%d moves from %s: %d\n", q.QueryNumber, q.From, q.Moves)
		}
	}

	if len(history.Queries) == 0 {
		b.WriteString("(no queries on this page)\n")
	}

	return b.String()
}
