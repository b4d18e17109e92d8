package maze

import "math/rand/v2"

// maxStraightRun bounds how many consecutive steps the reserved path may take
// in one direction, so the guaranteed route bends.
const maxStraightRun = 2

type pathState struct {
	pos Position
	dir int
	run int
}

// carveScatter reserves a bending shortest path from the top-left to the
// bottom-right corner, then drops obstacles uniformly on the remaining cells.
func carveScatter(rows, cols int, rng *rand.Rand, obstacles int) ([][]Cell, Position, Position) {
	grid := newGrid(rows, cols, Passage)
	entry := Position{X: 0, Y: 0}
	exit := Position{X: cols - 1, Y: rows - 1}

	reserved := reservePath(rows, cols, entry, exit)

	available := make([]Position, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := Position{X: c, Y: r}
			if !reserved[p] {
				available = append(available, p)
			}
		}
	}

	count := min(obstacles, len(available))
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(available)-i)
		available[i], available[j] = available[j], available[i]
		p := available[i]
		grid[p.Y][p.X] = Wall
	}

	return grid, entry, exit
}

// reservePath finds a shortest route whose straight runs never exceed
// maxStraightRun. The search state includes heading and run length so a cell
// reached late with a fresh heading is not shadowed by an earlier visit.
func reservePath(rows, cols int, from, to Position) map[Position]bool {
	start := pathState{pos: from, dir: -1}
	parent := map[pathState]pathState{start: start}
	queue := []pathState{start}

	var end *pathState
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.pos == to {
			end = &current
			break
		}

		for i, d := range Directions {
			run := 1
			if current.dir == i {
				run = current.run + 1
			}
			if run > maxStraightRun {
				continue
			}
			next := pathState{pos: current.pos.Add(d), dir: i, run: run}
			if next.pos.Y < 0 || next.pos.Y >= rows || next.pos.X < 0 || next.pos.X >= cols {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}

	reserved := map[Position]bool{from: true, to: true}
	if end == nil {
		return reserved
	}
	for s := *end; s != start; s = parent[s] {
		reserved[s.pos] = true
	}
	return reserved
}
