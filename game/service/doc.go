// Package service provides the business logic layer for the knight path server.
//
// The service package implements:
//   - Multi-session knight management
//   - Possible-move and shortest-distance queries
//   - Per-session query history with pagination
//   - Stateless queries that need no session
//
// Core Interfaces:
//
// KnightService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the knight package. Each session owns one pathfinder anchored at its start
// square; the pathfinder itself is immutable, so the only mutable per-session
// state is the query log and the access timestamps kept by the manager.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	knightService := service.NewKnightService(sessionMgr)
//
//	info, err := knightService.CreateSession(ctx, knight.Position{X: 0, Y: 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := knightService.ShortestPath(ctx, info.ID, knight.Position{X: 7, Y: 7})
//	// result.Moves == 6
package service
