// Command validate provides a small CLI that validates maze profile JSON
// files in the ../configs directory. It checks:
//   - JSON structure and field ranges (via the config package validator)
//   - That a generator can be built for the profile
//   - Solvability: sample mazes connect entry to exit
//   - How often generation falls back to an open grid
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mazerooms/game/config"
	"github.com/wricardo/mazerooms/game/maze"
)

// sampleCount is the number of seeded mazes generated per profile.
const sampleCount = 20

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateProfile loads and validates a single profile file, then generates
// sampleCount seeded mazes and checks each one.
func validateProfile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	profile, err := config.ReadProfile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Profile: %s (%dx%d, %d players, %s)",
		profile.Name, profile.Rows, profile.Cols, profile.MaxPlayers, profile.Generator))

	unsolvable := 0
	degenerate := 0
	for seed := uint64(1); seed <= sampleCount; seed++ {
		gen, err := profile.NewGenerator(nil, maze.WithSeed(seed))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Generator rejected profile: %v", err))
			return result
		}

		m := gen.Generate()
		if m.Degenerate {
			degenerate++
			continue
		}
		if !maze.Reachable(m.Grid, m.Entry, m.Exit) {
			unsolvable++
		}
	}

	if unsolvable > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d sample mazes have no path from entry to exit", unsolvable, sampleCount))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: %d/%d sample mazes solvable", sampleCount-degenerate, sampleCount))
	}

	switch {
	case degenerate == sampleCount:
		result.Valid = false
		result.Errors = append(result.Errors, "Generation always falls back to an open grid")
	case degenerate > 0:
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Fallback: %d/%d samples used an open grid", degenerate, sampleCount))
	}

	return result
}

// main scans the configs directory (../configs unless given as the first
// argument) for *.json files and validates each one, printing a concise report
// and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding profile files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No profile files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateProfile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All profiles are valid!")
	} else {
		fmt.Println("❌ Some profiles have errors")
		os.Exit(1)
	}
}
