package maze

import "math/rand/v2"

type frontierEntry struct {
	cell Position
	from Position
}

// carvePrim runs randomized Prim over an all-wall grid. Cells are visited on a
// stride of two so each carve opens the target and the wall between it and its
// parent. Entry is the top-left corner, exit sits at (rows-2, cols-2).
func carvePrim(rows, cols int, rng *rand.Rand, _ int) ([][]Cell, Position, Position) {
	grid := newGrid(rows, cols, Wall)
	entry := Position{X: 0, Y: 0}
	exit := Position{X: cols - 2, Y: rows - 2}

	frontier := []frontierEntry{{cell: entry, from: entry}}
	for len(frontier) > 0 {
		i := rng.IntN(len(frontier))
		next := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		c := next.cell
		if grid[c.Y][c.X] != Wall {
			continue
		}

		grid[c.Y][c.X] = Passage
		mid := Position{X: (c.X + next.from.X) / 2, Y: (c.Y + next.from.Y) / 2}
		grid[mid.Y][mid.X] = Passage

		for _, d := range Directions {
			n := Position{X: c.X + 2*d.X, Y: c.Y + 2*d.Y}
			if n.Y < 0 || n.Y >= rows || n.X < 0 || n.X >= cols {
				continue
			}
			if grid[n.Y][n.X] == Wall {
				frontier = append(frontier, frontierEntry{cell: n, from: c})
			}
		}
	}

	grid[entry.Y][entry.X] = Passage
	grid[exit.Y][exit.X] = Passage
	return grid, entry, exit
}
