package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mazerooms/game/maze"
	"go.uber.org/zap/zaptest"
)

type fakeConn struct {
	id      string
	mu      sync.Mutex
	sent    [][]byte
	closed  bool
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	for i, p := range c.sent {
		out[i] = string(p)
	}
	return out
}

// layoutMaze builds a maze from rows of '#' (wall) and '.' (passage).
// Entry is the top-left corner.
func layoutMaze(rows ...string) *maze.Maze {
	grid := make([][]maze.Cell, len(rows))
	for r, line := range rows {
		grid[r] = make([]maze.Cell, len(line))
		for c, ch := range line {
			if ch == '.' {
				grid[r][c] = maze.Passage
			}
		}
	}
	return &maze.Maze{
		Rows:  len(rows),
		Cols:  len(rows[0]),
		Grid:  grid,
		Entry: maze.Position{X: 0, Y: 0},
		Exit:  maze.Position{X: len(rows[0]) - 1, Y: len(rows) - 1},
	}
}

func testMaze() *maze.Maze {
	return layoutMaze(
		"..#..",
		"#.#.#",
		"#...#",
		"###..",
	)
}

func newTestRoom(t *testing.T, maxPlayers int) *Room {
	return NewRoom("room-1", testMaze(), maxPlayers, zaptest.NewLogger(t).Sugar())
}

func TestRoom_StartsAtEntry(t *testing.T) {
	r := newTestRoom(t, 5)
	assert.Equal(t, maze.Position{X: 0, Y: 0}, r.Position())
	assert.Equal(t, 0, r.ParticipantCount())
	assert.False(t, r.IsFull())
	assert.Equal(t, 5, r.MaxPlayers())
}

func TestRoom_DefaultCapacity(t *testing.T) {
	r := NewRoom("r", testMaze(), 0, nil)
	assert.Equal(t, DefaultMaxPlayers, r.MaxPlayers())
}

func TestRoom_AddParticipantRespectsCapacity(t *testing.T) {
	r := newTestRoom(t, 2)

	assert.True(t, r.AddParticipant(newFakeConn("a")))
	assert.True(t, r.AddParticipant(newFakeConn("b")))
	assert.True(t, r.IsFull())

	assert.False(t, r.AddParticipant(newFakeConn("c")))
	assert.Equal(t, 2, r.ParticipantCount())
}

func TestRoom_RemoveParticipantIsIdempotent(t *testing.T) {
	r := newTestRoom(t, 2)
	r.AddParticipant(newFakeConn("a"))

	r.RemoveParticipant("a")
	r.RemoveParticipant("a")
	r.RemoveParticipant("never-joined")

	assert.Equal(t, 0, r.ParticipantCount())
}

func TestRoom_ApplyMove(t *testing.T) {
	tests := []struct {
		name     string
		moves    []maze.Position
		want     maze.Position
		accepted bool
	}{
		{"left off grid", []maze.Position{{X: -1, Y: 0}}, maze.Position{X: 0, Y: 0}, false},
		{"up off grid", []maze.Position{{X: 0, Y: -1}}, maze.Position{X: 0, Y: 0}, false},
		{"down into wall", []maze.Position{{X: 0, Y: 1}}, maze.Position{X: 0, Y: 0}, false},
		{"right onto passage", []maze.Position{{X: 1, Y: 0}}, maze.Position{X: 1, Y: 0}, true},
		{"right then wall", []maze.Position{{X: 1, Y: 0}, {X: 1, Y: 0}}, maze.Position{X: 1, Y: 0}, false},
		{"diagonal onto passage", []maze.Position{{X: 1, Y: 1}}, maze.Position{X: 1, Y: 1}, true},
		{"two cells into wall", []maze.Position{{X: 2, Y: 0}}, maze.Position{X: 0, Y: 0}, false},
		{"jump over wall onto passage", []maze.Position{{X: 3, Y: 0}}, maze.Position{X: 3, Y: 0}, true},
		{"jump off grid", []maze.Position{{X: 5, Y: 0}}, maze.Position{X: 0, Y: 0}, false},
		{"zero", []maze.Position{{X: 0, Y: 0}}, maze.Position{X: 0, Y: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRoom(t, 5)
			var got maze.Position
			var accepted bool
			for _, m := range tt.moves {
				got, accepted = r.ApplyMove(m)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.accepted, accepted)
			assert.Equal(t, tt.want, r.Position())
		})
	}
}

func TestRoom_RandomMovesStayOnPassages(t *testing.T) {
	gen, err := maze.NewGenerator(maze.Options{}, nil, maze.WithSeed(11))
	require.NoError(t, err)
	m := gen.Generate()
	r := NewRoom("random", m, 5, nil)

	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 5000; i++ {
		before := r.Position()
		d := maze.Directions[rng.IntN(len(maze.Directions))]
		pos, accepted := r.ApplyMove(d)

		require.True(t, m.Passable(pos), "step %d left the passages at %+v", i, pos)
		if !accepted {
			require.Equal(t, before, pos)
		}
	}
}

func TestRoom_BroadcastIsolatesFailures(t *testing.T) {
	r := newTestRoom(t, 5)
	good := newFakeConn("good")
	broken := newFakeConn("broken")
	broken.sendErr = errors.New("queue full")
	gone := newFakeConn("gone")
	gone.closed = true

	r.AddParticipant(good)
	r.AddParticipant(broken)
	r.AddParticipant(gone)

	r.Broadcast([]byte("hello"))

	assert.Equal(t, []string{"hello"}, good.messages())
	assert.Empty(t, broken.messages())
	assert.Empty(t, gone.messages())
}

func TestRoom_MoveAndBroadcastSendsAuthoritativePosition(t *testing.T) {
	r := newTestRoom(t, 5)
	a := newFakeConn("a")
	b := newFakeConn("b")
	r.AddParticipant(a)
	r.AddParticipant(b)

	encode := func(p maze.Position) ([]byte, error) {
		return []byte(fmt.Sprintf("%d,%d", p.X, p.Y)), nil
	}

	pos, accepted, err := r.MoveAndBroadcast(maze.Position{X: -1, Y: 0}, encode)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, maze.Position{X: 0, Y: 0}, pos)

	_, accepted, err = r.MoveAndBroadcast(maze.Position{X: 1, Y: 0}, encode)
	require.NoError(t, err)
	assert.True(t, accepted)

	for _, c := range []*fakeConn{a, b} {
		assert.Equal(t, []string{"0,0", "1,0"}, c.messages())
	}
}

func TestRoom_MoveAndBroadcastEncodeError(t *testing.T) {
	r := newTestRoom(t, 5)
	a := newFakeConn("a")
	r.AddParticipant(a)

	_, _, err := r.MoveAndBroadcast(maze.Position{X: 1, Y: 0}, func(maze.Position) ([]byte, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Empty(t, a.messages())
	assert.Equal(t, maze.Position{X: 1, Y: 0}, r.Position())
}

func TestRoom_ConcurrentMovesBroadcastInCommitOrder(t *testing.T) {
	r := NewRoom("open", layoutMaze(
		"..........",
		"..........",
		"..........",
	), 5, nil)
	a := newFakeConn("a")
	b := newFakeConn("b")
	r.AddParticipant(a)
	r.AddParticipant(b)

	encode := func(p maze.Position) ([]byte, error) {
		return []byte(fmt.Sprintf("%d,%d", p.X, p.Y)), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := maze.Position{X: 1, Y: 0}
			if i%2 == 1 {
				dir = maze.Position{X: 0, Y: 1}
			}
			r.MoveAndBroadcast(dir, encode)
		}(i)
	}
	wg.Wait()

	require.Len(t, a.messages(), 8)
	assert.Equal(t, a.messages(), b.messages())
	last := a.messages()[7]
	final := r.Position()
	assert.Equal(t, fmt.Sprintf("%d,%d", final.X, final.Y), last)
}
