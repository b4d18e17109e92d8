package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/mazerooms/game/config"
	"github.com/wricardo/mazerooms/game/maze"
)

func primProfile() *config.Profile {
	return &config.Profile{
		Name:       "Test Prim",
		Rows:       11,
		Cols:       15,
		MaxPlayers: 4,
		Generator:  maze.ModePrim,
	}
}

func TestAnalyzeProfile_Prim(t *testing.T) {
	a, err := analyzeProfile(primProfile(), 10)
	if err != nil {
		t.Fatalf("analyzeProfile failed: %v", err)
	}

	if a.Samples != 10 {
		t.Errorf("Expected 10 samples, got %d", a.Samples)
	}
	if a.Unsolvable != 0 {
		t.Errorf("Expected every maze to be solvable, got %d unsolvable", a.Unsolvable)
	}
	if a.AvgAttempts < 1 {
		t.Errorf("Expected at least one attempt per maze, got %.2f", a.AvgAttempts)
	}
	if a.AvgDensity <= 0 || a.AvgDensity >= 1 {
		t.Errorf("Expected wall density in (0,1), got %.2f", a.AvgDensity)
	}
	if a.Degenerate < a.Samples {
		if a.MinPath <= 0 || a.MinPath > a.MaxPath {
			t.Errorf("Unexpected path range %d..%d", a.MinPath, a.MaxPath)
		}
		if a.AvgPath < float64(a.MinPath) || a.AvgPath > float64(a.MaxPath) {
			t.Errorf("Average path %.1f outside %d..%d", a.AvgPath, a.MinPath, a.MaxPath)
		}
	}
}

func TestAnalyzeProfile_Scatter(t *testing.T) {
	obstacles := 50
	profile := &config.Profile{
		Name:          "Test Scatter",
		Rows:          20,
		Cols:          20,
		MaxPlayers:    5,
		Generator:     maze.ModeScatter,
		ObstacleCount: &obstacles,
	}

	a, err := analyzeProfile(profile, 5)
	if err != nil {
		t.Fatalf("analyzeProfile failed: %v", err)
	}

	if a.Degenerate != 0 || a.Unsolvable != 0 {
		t.Errorf("Expected solvable scatter mazes, got %+v", a)
	}
	// 50 obstacles on 400 cells
	if a.AvgDensity != 0.125 {
		t.Errorf("Expected density 0.125, got %f", a.AvgDensity)
	}
	// Manhattan distance from corner to corner
	if a.MinPath < 38 {
		t.Errorf("Expected path of at least 38 steps, got %d", a.MinPath)
	}
}

func TestAnalyzeProfile_Deterministic(t *testing.T) {
	first, err := analyzeProfile(primProfile(), 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := analyzeProfile(primProfile(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Expected identical analyses, got %+v and %+v", first, second)
	}
}

func TestAnalyzeProfile_InvalidProfile(t *testing.T) {
	profile := primProfile()
	profile.Rows = 1

	if _, err := analyzeProfile(profile, 3); err == nil {
		t.Error("Expected error for a grid smaller than 3x3")
	}
}

func TestAnalyzeProfile_NoSamples(t *testing.T) {
	a, err := analyzeProfile(primProfile(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if a.Samples != 0 || a.MinPath != -1 {
		t.Errorf("Unexpected empty analysis %+v", a)
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, primProfile(), Analysis{
		Samples:     4,
		Degenerate:  1,
		Unsolvable:  0,
		AvgAttempts: 1.5,
		AvgDensity:  0.5,
		MinPath:     10,
		MaxPath:     20,
		AvgPath:     15,
	})

	out := buf.String()
	for _, want := range []string{
		"Name: Test Prim",
		"Grid Size: 11 x 15",
		"Wall density: 50.0%",
		"Shortest path: min 10, avg 15.0, max 20",
		"1/4 mazes fell back to an open grid",
		"Every sample maze is solvable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintAnalysis_Unsolvable(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, primProfile(), Analysis{Samples: 2, Unsolvable: 2, MinPath: -1})

	out := buf.String()
	if !strings.Contains(out, "CRITICAL: 2/2") {
		t.Errorf("Expected critical warning in output:\n%s", out)
	}
	if strings.Contains(out, "Shortest path") {
		t.Errorf("Expected no path summary without solvable mazes:\n%s", out)
	}
}
