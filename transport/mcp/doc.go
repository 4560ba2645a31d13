// Package mcp provides a Model Context Protocol server for the knight path server.
//
// The Client registers MCP tools on a mark3labs/mcp-go server and answers
// each call by proxying to the REST API, then rendering the JSON answer as
// text for the agent.
//
// MCP Tools:
//   - create_session: Place a knight on a start square
//   - list_sessions: List all active sessions
//   - get_session: Session details with a board diagram
//   - possible_moves: Legal jumps from the session's square or a given one
//   - shortest_number_of_moves: Minimum jumps to a target square
//   - knight_distance: Minimum jumps between any two squares
//   - query_history: Paginated log of a session's answered queries
//   - knight_instructions: Rules and coordinate conventions
//
// Transport Modes:
//
// The same MCPServer is served over stdio (server.ServeStdio) for local
// clients, or mounted on the HTTP server at /mcp.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
