package room

import (
	"sync"

	"github.com/wricardo/mazerooms/game/maze"
	"go.uber.org/zap"
)

// DefaultMaxPlayers is the room capacity when none is configured.
const DefaultMaxPlayers = 30

// Connection is the transport handle the core broadcasts to. Send must not block.
type Connection interface {
	ID() string
	Send(payload []byte) error
	IsOpen() bool
}

// Room is a shared maze plus the single avatar position every participant moves.
type Room struct {
	id         string
	maze       *maze.Maze
	maxPlayers int
	logger     *zap.SugaredLogger

	mu           sync.RWMutex
	participants map[string]Connection
	position     maze.Position

	// seq orders move commits with their broadcasts.
	seq sync.Mutex
}

// NewRoom creates a room positioned at the maze entry
func NewRoom(id string, m *maze.Maze, maxPlayers int, logger *zap.SugaredLogger) *Room {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Room{
		id:           id,
		maze:         m,
		maxPlayers:   maxPlayers,
		logger:       logger.With("room_id", id),
		participants: make(map[string]Connection),
		position:     m.Entry,
	}
}

// ID returns the room identifier
func (r *Room) ID() string {
	return r.id
}

// Maze returns the room's immutable maze
func (r *Room) Maze() *maze.Maze {
	return r.maze
}

// MaxPlayers returns the room capacity
func (r *Room) MaxPlayers() int {
	return r.maxPlayers
}

// AddParticipant registers conn. It returns false, changing nothing, when the
// room is full.
func (r *Room) AddParticipant(conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.participants[conn.ID()]; exists {
		return true
	}
	if len(r.participants) >= r.maxPlayers {
		return false
	}
	r.participants[conn.ID()] = conn
	return true
}

// RemoveParticipant drops the connection. Unknown ids are ignored.
func (r *Room) RemoveParticipant(connID string) {
	r.mu.Lock()
	delete(r.participants, connID)
	r.mu.Unlock()
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants) >= r.maxPlayers
}

// ParticipantCount returns the number of registered connections
func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Position returns the shared avatar position
func (r *Room) Position() maze.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.position
}

// ApplyMove offsets the shared position by dir. A target outside the grid or
// on a wall is rejected. The returned position is authoritative either way.
func (r *Room) ApplyMove(dir maze.Position) (maze.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := r.position.Add(dir)
	if !r.maze.Passable(candidate) {
		return r.position, false
	}

	r.position = candidate
	return r.position, true
}

// MoveAndBroadcast applies dir and broadcasts the encoded result before any
// other move in this room can commit, so every participant sees positions in
// commit order. Rejected moves still broadcast the unchanged position.
func (r *Room) MoveAndBroadcast(dir maze.Position, encode func(maze.Position) ([]byte, error)) (maze.Position, bool, error) {
	r.seq.Lock()
	defer r.seq.Unlock()

	pos, accepted := r.ApplyMove(dir)
	payload, err := encode(pos)
	if err != nil {
		return pos, accepted, err
	}
	r.broadcast(payload)
	return pos, accepted, nil
}

// Broadcast delivers payload to every open participant. Failures are logged
// per recipient and never stop delivery to the rest.
func (r *Room) Broadcast(payload []byte) {
	r.seq.Lock()
	defer r.seq.Unlock()
	r.broadcast(payload)
}

func (r *Room) broadcast(payload []byte) {
	for _, conn := range r.snapshot() {
		if !conn.IsOpen() {
			continue
		}
		if err := conn.Send(payload); err != nil {
			r.logger.Warnw("delivery failed", "player_id", conn.ID(), "error", err)
		}
	}
}

func (r *Room) snapshot() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Connection, 0, len(r.participants))
	for _, conn := range r.participants {
		conns = append(conns, conn)
	}
	return conns
}
