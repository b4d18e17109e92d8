package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mazerooms/game/maze"
	"go.uber.org/zap/zaptest"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) Generate() *maze.Maze {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return testMaze()
}

func newTestDirectory(t *testing.T, maxPlayers int) (*Directory, *countingGenerator) {
	gen := &countingGenerator{}
	return NewDirectory(gen, maxPlayers, zaptest.NewLogger(t).Sugar()), gen
}

func TestDirectory_CreateRoomGeneratesOnce(t *testing.T) {
	d, gen := newTestDirectory(t, 5)

	r := d.CreateRoom()
	require.NotNil(t, r)
	assert.NotEmpty(t, r.ID())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, d.Count())

	found, err := d.Room(r.ID())
	require.NoError(t, err)
	assert.Same(t, r, found)
}

func TestDirectory_RoomNotFound(t *testing.T) {
	d, _ := newTestDirectory(t, 5)
	_, err := d.Room("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDirectory_FindAvailableRoomReusesOpenRoom(t *testing.T) {
	d, gen := newTestDirectory(t, 2)

	first := d.FindAvailableRoom()
	second := d.FindAvailableRoom()
	assert.Same(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestDirectory_FindAvailableRoomSkipsFullRooms(t *testing.T) {
	d, _ := newTestDirectory(t, 1)

	full := d.CreateRoom()
	d.AddParticipant(newFakeConn("a"), full.ID())
	require.True(t, full.IsFull())

	for i := 0; i < 5; i++ {
		r := d.FindAvailableRoom()
		assert.False(t, r.IsFull())
		assert.NotEqual(t, full.ID(), r.ID())
	}
}

func TestDirectory_SequentialJoinsShareRoom(t *testing.T) {
	d, _ := newTestDirectory(t, DefaultMaxPlayers)

	a := newFakeConn("a")
	b := newFakeConn("b")
	ra := d.Assign(a)
	rb := d.Assign(b)

	assert.Same(t, ra, rb)
	assert.Equal(t, 2, rb.ParticipantCount())

	got, ok := d.RoomOf("b")
	require.True(t, ok)
	assert.Same(t, ra, got)
}

func TestDirectory_OverflowGoesToNewRoom(t *testing.T) {
	d, _ := newTestDirectory(t, 30)

	first := d.CreateRoom()
	for i := 0; i < 30; i++ {
		d.AddParticipant(newFakeConn(fmt.Sprintf("p%d", i)), first.ID())
	}
	require.True(t, first.IsFull())

	extra := newFakeConn("p30")
	assert.False(t, first.AddParticipant(extra))
	assert.Equal(t, 30, first.ParticipantCount())

	r := d.Assign(extra)
	assert.NotEqual(t, first.ID(), r.ID())
	assert.Equal(t, 1, r.ParticipantCount())
	assert.Equal(t, 2, d.Count())
}

func TestDirectory_AddParticipantUnknownRoomIsSilent(t *testing.T) {
	d, _ := newTestDirectory(t, 5)

	d.AddParticipant(newFakeConn("a"), "missing")

	_, ok := d.RoomOf("a")
	assert.False(t, ok)
}

func TestDirectory_AddParticipantFullRoomRecordsNothing(t *testing.T) {
	d, _ := newTestDirectory(t, 1)
	r := d.CreateRoom()
	d.AddParticipant(newFakeConn("a"), r.ID())

	d.AddParticipant(newFakeConn("b"), r.ID())

	_, ok := d.RoomOf("b")
	assert.False(t, ok)
	assert.Equal(t, 1, r.ParticipantCount())
}

func TestDirectory_AddParticipantKeepsExistingMembership(t *testing.T) {
	d, _ := newTestDirectory(t, 5)
	first := d.CreateRoom()
	second := d.CreateRoom()
	c := newFakeConn("c1")

	d.AddParticipant(c, first.ID())
	d.AddParticipant(c, second.ID())

	got, ok := d.RoomOf("c1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, first.ParticipantCount())
	assert.Equal(t, 0, second.ParticipantCount())

	// Re-adding to the same room is harmless.
	d.AddParticipant(c, first.ID())
	assert.Equal(t, 1, first.ParticipantCount())

	d.RemoveParticipant("c1")
	_, ok = d.RoomOf("c1")
	assert.False(t, ok)
	_, err := d.Room(first.ID())
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, second.ParticipantCount())
}

func TestDirectory_RemovingLastParticipantDeletesRoom(t *testing.T) {
	d, _ := newTestDirectory(t, 5)

	a := newFakeConn("a")
	b := newFakeConn("b")
	r := d.Assign(a)
	d.Assign(b)

	d.RemoveParticipant("a")
	assert.Equal(t, 1, d.Count())
	_, ok := d.RoomOf("a")
	assert.False(t, ok)

	d.RemoveParticipant("b")
	assert.Equal(t, 0, d.Count())
	_, ok = d.RoomOf("b")
	assert.False(t, ok)

	_, err := d.Room(r.ID())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDirectory_RemoveUnknownIsNoop(t *testing.T) {
	d, _ := newTestDirectory(t, 5)
	d.Assign(newFakeConn("a"))

	d.RemoveParticipant("nobody")
	d.RemoveParticipant("a")
	d.RemoveParticipant("a")

	assert.Equal(t, 0, d.Count())
}

func TestDirectory_AssignIsIdempotentPerConnection(t *testing.T) {
	d, _ := newTestDirectory(t, 5)
	a := newFakeConn("a")

	first := d.Assign(a)
	second := d.Assign(a)
	assert.Same(t, first, second)
	assert.Equal(t, 1, first.ParticipantCount())
}

func TestDirectory_ConcurrentAssignNeverOverfills(t *testing.T) {
	const maxPlayers = 3
	const joins = 40
	d, _ := newTestDirectory(t, maxPlayers)

	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Assign(newFakeConn(fmt.Sprintf("c%d", i)))
		}(i)
	}
	wg.Wait()

	stats := d.Stats()
	assert.Equal(t, joins, stats.TotalPlayers)
	for _, s := range stats.Rooms {
		assert.LessOrEqual(t, s.ParticipantCount, maxPlayers)
	}

	for i := 0; i < joins; i++ {
		_, ok := d.RoomOf(fmt.Sprintf("c%d", i))
		assert.True(t, ok)
	}

	for i := 0; i < joins; i++ {
		d.RemoveParticipant(fmt.Sprintf("c%d", i))
	}
	assert.Equal(t, 0, d.Count())
}

func TestDirectory_Stats(t *testing.T) {
	d, _ := newTestDirectory(t, 2)
	d.Assign(newFakeConn("a"))
	d.Assign(newFakeConn("b"))
	d.Assign(newFakeConn("c"))

	stats := d.Stats()
	assert.Equal(t, 2, stats.ActiveRooms)
	assert.Equal(t, 3, stats.TotalPlayers)
	require.Len(t, stats.Rooms, 2)

	full := 0
	for _, s := range stats.Rooms {
		assert.Equal(t, 2, s.MaxPlayers)
		assert.Equal(t, maze.Position{X: 0, Y: 0}, s.Position)
		if s.IsFull {
			full++
		}
	}
	assert.Equal(t, 1, full)
}
