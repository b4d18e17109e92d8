package room

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wricardo/mazerooms/game/maze"
	"go.uber.org/zap"
)

var ErrRoomNotFound = errors.New("room not found")

// Directory tracks live rooms and which room each connection belongs to.
// Both maps change together under mu; mu is always taken before a room's lock.
type Directory struct {
	generator  maze.Generator
	maxPlayers int
	logger     *zap.SugaredLogger

	mu         sync.RWMutex
	rooms      map[string]*Room
	membership map[string]string
}

// NewDirectory creates an empty directory. Every room gets a maze from gen.
func NewDirectory(gen maze.Generator, maxPlayers int, logger *zap.SugaredLogger) *Directory {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Directory{
		generator:  gen,
		maxPlayers: maxPlayers,
		logger:     logger,
		rooms:      make(map[string]*Room),
		membership: make(map[string]string),
	}
}

// CreateRoom builds and registers a room with a freshly generated maze.
func (d *Directory) CreateRoom() *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createRoomLocked()
}

func (d *Directory) createRoomLocked() *Room {
	id := uuid.NewString()
	m := d.generator.Generate()
	r := NewRoom(id, m, d.maxPlayers, d.logger)
	d.rooms[id] = r

	d.logger.Infow("room created",
		"room_id", id,
		"obstacles", m.WallCount(),
		"attempts", m.Attempts,
		"degenerate", m.Degenerate,
	)
	return r
}

// FindAvailableRoom returns some room that is not full, creating one if needed.
func (d *Directory) FindAvailableRoom() *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findAvailableLocked()
}

func (d *Directory) findAvailableLocked() *Room {
	for _, r := range d.rooms {
		if !r.IsFull() {
			return r
		}
	}
	return d.createRoomLocked()
}

// AddParticipant records conn in roomID when the room exists and accepts it.
// A connection already placed in another room stays where it is. Otherwise
// nothing changes; callers check RoomOf.
func (d *Directory) AddParticipant(conn Connection, roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if current, ok := d.membership[conn.ID()]; ok && current != roomID {
		return
	}

	r, ok := d.rooms[roomID]
	if !ok {
		return
	}
	if r.AddParticipant(conn) {
		d.membership[conn.ID()] = roomID
	}
}

// Assign places conn in an available room as one step, so concurrent joins
// cannot both take the last seat.
func (d *Directory) Assign(conn Connection) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	if roomID, ok := d.membership[conn.ID()]; ok {
		if r, ok := d.rooms[roomID]; ok {
			return r
		}
	}

	r := d.findAvailableLocked()
	if !r.AddParticipant(conn) {
		// findAvailableLocked only returns rooms with a free seat while mu is held.
		r = d.createRoomLocked()
		r.AddParticipant(conn)
	}
	d.membership[conn.ID()] = r.ID()
	return r
}

// RemoveParticipant forgets connID and deletes its room once empty.
// Unknown ids are ignored.
func (d *Directory) RemoveParticipant(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	roomID, ok := d.membership[connID]
	if !ok {
		return
	}
	delete(d.membership, connID)

	r, ok := d.rooms[roomID]
	if !ok {
		return
	}
	r.RemoveParticipant(connID)

	if r.ParticipantCount() == 0 {
		delete(d.rooms, roomID)
		d.logger.Infow("room removed", "room_id", roomID)
	}
}

// RoomOf returns the room holding connID
func (d *Directory) RoomOf(connID string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	roomID, ok := d.membership[connID]
	if !ok {
		return nil, false
	}
	r, ok := d.rooms[roomID]
	return r, ok
}

// Room looks up a room by id
func (d *Directory) Room(id string) (*Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Count returns the number of live rooms
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// RoomStatus is a read-only snapshot of one room
type RoomStatus struct {
	ID               string        `json:"id"`
	ParticipantCount int           `json:"playerCount"`
	MaxPlayers       int           `json:"maxPlayers"`
	IsFull           bool          `json:"isFull"`
	Position         maze.Position `json:"position"`
	Obstacles        int           `json:"obstacles"`
	Degenerate       bool          `json:"degenerate"`
}

// Stats summarizes the directory
type Stats struct {
	ActiveRooms  int          `json:"activeRooms"`
	TotalPlayers int          `json:"totalPlayers"`
	Rooms        []RoomStatus `json:"rooms"`
}

// Status snapshots a single room
func (r *Room) Status() RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomStatus{
		ID:               r.id,
		ParticipantCount: len(r.participants),
		MaxPlayers:       r.maxPlayers,
		IsFull:           len(r.participants) >= r.maxPlayers,
		Position:         r.position,
		Obstacles:        r.maze.WallCount(),
		Degenerate:       r.maze.Degenerate,
	}
}

// Stats returns a snapshot of every room ordered by id.
func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := Stats{
		ActiveRooms: len(d.rooms),
		Rooms:       make([]RoomStatus, 0, len(d.rooms)),
	}
	for _, r := range d.rooms {
		s := r.Status()
		stats.TotalPlayers += s.ParticipantCount
		stats.Rooms = append(stats.Rooms, s)
	}
	sort.Slice(stats.Rooms, func(i, j int) bool {
		return stats.Rooms[i].ID < stats.Rooms[j].ID
	})
	return stats
}
