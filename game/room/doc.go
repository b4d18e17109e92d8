// Package room manages shared maze rooms and the directory that matches
// connections to them.
//
// A Room owns one maze, a bounded set of participant connections and a
// single shared avatar position. Moves are validated against the maze and
// broadcast to every participant in commit order.
//
// The Directory keeps the room index and the connection-to-room membership
// consistent under one lock. Rooms are created on demand when every existing
// room is full and removed as soon as their last participant leaves.
//
// Lock order is Directory before Room; a Room never calls back into the
// Directory.
package room
