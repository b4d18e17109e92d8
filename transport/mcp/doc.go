// Package mcp exposes the maze server's status API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool performs one REST call against the
// api package and formats the response as text. It never touches room state
// directly, so it can run in a separate process (stdio mode) or be mounted at
// /mcp on the main HTTP server.
//
// Tools:
//   - server_status
//   - list_rooms
//   - get_room (room_id)
//   - list_profiles
//   - preview_maze (profile, optional seed)
package mcp
