package maze

// Directions in up, down, left, right order
var Directions = []Position{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

func passable(grid [][]Cell, p Position) bool {
	return p.Y >= 0 && p.Y < len(grid) && p.X >= 0 && p.X < len(grid[p.Y]) && grid[p.Y][p.X] == Passage
}

// Reachable runs a 4-adjacency BFS over passage cells.
func Reachable(grid [][]Cell, from, to Position) bool {
	return ShortestPath(grid, from, to) >= 0
}

// ShortestPath returns the number of steps between from and to over passage
// cells, or -1 when no path exists.
func ShortestPath(grid [][]Cell, from, to Position) int {
	if !passable(grid, from) || !passable(grid, to) {
		return -1
	}

	dist := make(map[Position]int)
	dist[from] = 0
	queue := []Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == to {
			return dist[current]
		}

		for _, d := range Directions {
			next := current.Add(d)
			if _, seen := dist[next]; seen || !passable(grid, next) {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}

	return -1
}
