// Package websocket provides the real-time transport for shared maze rooms.
//
// The websocket package implements:
//   - Room matching on connect
//   - Move handling with authoritative position broadcasts
//   - Departure announcements on close or transport failure
//   - Connection keepalive with ping/pong
//
// Architecture:
//
// A central Hub upgrades HTTP requests and tracks live clients. Each client
// connection has a read goroutine, which runs the protocol callbacks in
// order, and a write goroutine that drains a buffered send queue. Sending
// never blocks: a full queue counts as a failed delivery for that recipient
// only.
//
// Message Protocol:
//
// Frames are JSON text messages tagged by "type":
//   - JOIN (server): {type, roomId, playerId, playerCount, obstacles}
//   - MOVE (client): {type, position: {x, y}} where x and y are in [-1, 1]
//   - POSITION_UPDATE (server): {type, position: {x, y}}
//   - LEAVE (server): {type, roomId, playerId, playerCount}
//
// Every MOVE produces a POSITION_UPDATE for the whole room, even when the
// move is rejected, so clients resynchronize to the authoritative position.
// Unknown types are ignored and malformed frames are dropped without closing
// the connection.
//
// Connection Lifecycle:
//
// 1. Client connects and is assigned to a room with a free seat
// 2. JOIN is broadcast to the room, including the new player
// 3. Client sends MOVE frames, every member receives POSITION_UPDATE
// 4. On close, LEAVE is broadcast and the membership is dropped
// 5. On a transport fault the same cleanup runs and the socket is closed
// with status 1011
//
// Usage:
//
//	hub := websocket.NewHub(directory, logger)
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", hub.ServeWS)
package websocket
