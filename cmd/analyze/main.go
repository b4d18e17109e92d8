// Command analyze prints quick, human-readable heuristics about the maze
// profiles in the project's configs directory. For each profile it generates a
// batch of seeded mazes and summarizes wall density, shortest entry-to-exit
// path lengths, retry counts, and how often generation fell back to an open grid.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/mazerooms/game/config"
	"github.com/wricardo/mazerooms/game/maze"
)

// defaultSamples is the number of mazes generated per profile.
const defaultSamples = 50

// Analysis aggregates statistics over a batch of generated mazes.
type Analysis struct {
	Samples     int
	Degenerate  int
	Unsolvable  int
	AvgAttempts float64
	AvgDensity  float64
	MinPath     int
	MaxPath     int
	AvgPath     float64
}

func main() {
	files, err := filepath.Glob(filepath.Join("configs", "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Println("No profiles found in configs/")
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))

		profile, err := config.ReadProfile(file)
		if err != nil {
			fmt.Printf("Error reading profile: %v\n", err)
			continue
		}

		analysis, err := analyzeProfile(profile, defaultSamples)
		if err != nil {
			fmt.Printf("Error analyzing profile: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, profile, analysis)
	}
}

// analyzeProfile generates samples mazes with seeds 1..samples.
func analyzeProfile(profile *config.Profile, samples int) (Analysis, error) {
	a := Analysis{Samples: samples, MinPath: -1}
	if samples <= 0 {
		return a, nil
	}

	var attempts, solved, pathTotal int
	var density float64

	for seed := uint64(1); seed <= uint64(samples); seed++ {
		gen, err := profile.NewGenerator(nil, maze.WithSeed(seed))
		if err != nil {
			return a, err
		}
		m := gen.Generate()

		attempts += m.Attempts
		density += float64(m.WallCount()) / float64(m.Rows*m.Cols)

		if m.Degenerate {
			a.Degenerate++
		}

		steps := maze.ShortestPath(m.Grid, m.Entry, m.Exit)
		if steps < 0 {
			a.Unsolvable++
			continue
		}
		solved++
		pathTotal += steps
		if a.MinPath < 0 || steps < a.MinPath {
			a.MinPath = steps
		}
		if steps > a.MaxPath {
			a.MaxPath = steps
		}
	}

	a.AvgAttempts = float64(attempts) / float64(samples)
	a.AvgDensity = density / float64(samples)
	if solved > 0 {
		a.AvgPath = float64(pathTotal) / float64(solved)
	}
	return a, nil
}

func printAnalysis(w io.Writer, profile *config.Profile, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", profile.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", profile.Rows, profile.Cols)
	fmt.Fprintf(w, "Generator: %s\n", profile.Generator)
	fmt.Fprintf(w, "Players per room: %d\n", profile.MaxPlayers)
	fmt.Fprintf(w, "Samples: %d\n", a.Samples)
	fmt.Fprintf(w, "Wall density: %.1f%%\n", a.AvgDensity*100)
	fmt.Fprintf(w, "Attempts per maze: %.2f\n", a.AvgAttempts)

	if a.MinPath >= 0 {
		fmt.Fprintf(w, "Shortest path: min %d, avg %.1f, max %d\n", a.MinPath, a.AvgPath, a.MaxPath)
	}

	if a.Degenerate > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d/%d mazes fell back to an open grid\n", a.Degenerate, a.Samples)
	}

	if a.Unsolvable > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d/%d mazes have no path from entry to exit!\n", a.Unsolvable, a.Samples)
	} else {
		fmt.Fprintf(w, "✅ Every sample maze is solvable\n")
	}
}
