// Package api provides HTTP handlers for the maze room server.
//
// The api package implements:
//   - Read-only status endpoints over the room directory
//   - Maze profile listing and previews
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Status:
//   - GET /api/health - Liveness check
//   - GET /api/status - {activeRooms, totalPlayers}
//   - GET /api/connect - WebSocket URL for this host
//
// Rooms:
//   - GET /api/rooms - {rooms: {<id>: {playerCount, isFull}}}
//   - GET /api/rooms/{id} - Occupancy, shared position and maze size
//
// Profiles:
//   - GET /api/profiles - Valid maze profiles
//   - GET /api/profiles/{name}/preview?seed=N - Freshly generated maze
//
// Real-time:
//   - GET /ws - Upgrades into the room protocol
//
// Nothing here mutates room state; gameplay happens only over the websocket.
package api
