// Package api provides HTTP REST API handlers for the knight path server.
//
// The api package implements:
//   - Session management endpoints
//   - Possible-move and shortest-distance queries, per session and stateless
//   - Paginated query history
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session with a knight on {"start":{"x":0,"y":0}}
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Session Queries:
//   - GET /api/sessions/{id}/moves?from=x,y - Legal jumps (default: start square)
//   - POST /api/sessions/{id}/distance - Shortest distance to {"target":{"x":7,"y":7}}
//   - GET /api/sessions/{id}/history - Query history (page, limit, order)
//
// Stateless Queries:
//   - GET /api/moves?from=x,y
//   - GET /api/distance?from=x,y&to=x,y
//
// Other:
//   - GET /api/health
//   - GET /ws?session=<id> - WebSocket feed of answered distance queries
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "invalid position: (8,0) is outside 0..7"}
//
// Off-board or malformed squares map to 400, unknown sessions to 404 and
// unreachable targets to 422.
package api
