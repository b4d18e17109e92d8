// Package maze generates the grids shared by a room.
//
// Two strategies are available:
//   - prim: randomized Prim carving over an all-wall grid (the default).
//     Entry is (0,0) and exit is (rows-2, cols-2).
//   - scatter: a bending shortest path from corner to corner is reserved and
//     a fixed number of obstacles is dropped on the remaining cells.
//
// Every generated maze is checked with a breadth-first search from entry to
// exit. Unsolvable grids are regenerated up to Options.MaxAttempts times;
// after that an open grid is returned with Degenerate set, so callers never
// see a failure.
//
// Usage:
//
//	gen, err := maze.NewGenerator(maze.Options{Mode: maze.ModePrim}, logger)
//	if err != nil {
//		return err
//	}
//	m := gen.Generate()
//	obstacles := m.Obstacles()
package maze
