// Package websocket provides WebSocket transport for the knight path server.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client gets a read pump and a write pump goroutine; the
// hub's Run loop handles registration and fan-out.
//
// Message Protocol:
//
// Connections are read-only from the client's point of view. Each outgoing
// frame is one JSON message:
//
//	{"session_id":"ab12","event":"distance_computed","data":{"from":{"x":0,"y":0},"to":{"x":7,"y":7},"moves":6}}
//
// Clients subscribe to a session with /ws?session=ab12 and only receive
// events for that session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.BroadcastDistance(result.SessionID, result)
package websocket
