package maze

import "strings"

// Cell represents a single grid cell
type Cell uint8

const (
	Wall Cell = iota
	Passage
)

const (
	DefaultRows          = 21
	DefaultCols          = 31
	DefaultMaxAttempts   = 10
	DefaultObstacleCount = 50

	// ObstacleType is the type tag clients expect on every obstacle.
	ObstacleType = "obstacle"
)

// Mode selects the generation strategy
type Mode string

const (
	ModePrim    Mode = "prim"
	ModeScatter Mode = "scatter"
)

// Position represents x,y coordinates (x is the column, y is the row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Obstacle is the client-facing form of a wall cell
type Obstacle struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"`
}

// Maze is an immutable grid plus its entry and exit.
type Maze struct {
	Rows  int
	Cols  int
	Grid  [][]Cell
	Entry Position
	Exit  Position

	// Attempts is the number of generation passes used.
	Attempts int
	// Degenerate is set when every attempt failed and the grid was opened up.
	Degenerate bool
}

// InBounds reports whether p lies on the grid
func (m *Maze) InBounds(p Position) bool {
	return p.Y >= 0 && p.Y < m.Rows && p.X >= 0 && p.X < m.Cols
}

// IsWall reports whether p is a wall. Out-of-bounds positions are not walls.
func (m *Maze) IsWall(p Position) bool {
	return m.InBounds(p) && m.Grid[p.Y][p.X] == Wall
}

// Passable reports whether p is in bounds and open
func (m *Maze) Passable(p Position) bool {
	return m.InBounds(p) && m.Grid[p.Y][p.X] == Passage
}

// Obstacles lists every wall cell in row-major order.
func (m *Maze) Obstacles() []Obstacle {
	obstacles := make([]Obstacle, 0)
	for r, row := range m.Grid {
		for c, cell := range row {
			if cell == Wall {
				obstacles = append(obstacles, Obstacle{X: c, Y: r, Type: ObstacleType})
			}
		}
	}
	return obstacles
}

// WallCount returns the number of wall cells
func (m *Maze) WallCount() int {
	n := 0
	for _, row := range m.Grid {
		for _, cell := range row {
			if cell == Wall {
				n++
			}
		}
	}
	return n
}

// Render draws the maze as text: '#' wall, '.' passage, 'S' entry, 'E' exit.
// A non-nil marker is drawn as '@'.
func (m *Maze) Render(marker *Position) string {
	var b strings.Builder
	for r, row := range m.Grid {
		for c, cell := range row {
			p := Position{X: c, Y: r}
			switch {
			case marker != nil && *marker == p:
				b.WriteByte('@')
			case p == m.Entry:
				b.WriteByte('S')
			case p == m.Exit:
				b.WriteByte('E')
			case cell == Wall:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func newGrid(rows, cols int, fill Cell) [][]Cell {
	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		if fill != Wall {
			for c := range grid[r] {
				grid[r][c] = fill
			}
		}
	}
	return grid
}
