package maze

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

// Generator produces a fresh maze on every call. Generate never fails.
type Generator interface {
	Generate() *Maze
}

// Options controls maze shape and strategy
type Options struct {
	Mode          Mode
	Rows          int
	Cols          int
	MaxAttempts   int
	// ObstacleCount is the number of walls scatter places. Nil means
	// DefaultObstacleCount; zero leaves the field open.
	ObstacleCount *int
}

// Option customizes a generator
type Option func(*generator)

// WithSeed makes every Generate call replay the same random stream.
func WithSeed(seed uint64) Option {
	return func(g *generator) {
		g.seeded = true
		g.seed = seed
	}
}

type carver func(rows, cols int, rng *rand.Rand, obstacles int) (grid [][]Cell, entry, exit Position)

type generator struct {
	opts      Options
	obstacles int
	carve     carver
	logger    *zap.SugaredLogger
	seeded    bool
	seed      uint64
}

// NewGenerator validates opts, fills in defaults and returns a Generator.
func NewGenerator(opts Options, logger *zap.SugaredLogger, options ...Option) (Generator, error) {
	if opts.Mode == "" {
		opts.Mode = ModePrim
	}
	if opts.Rows == 0 {
		opts.Rows = DefaultRows
	}
	if opts.Cols == 0 {
		opts.Cols = DefaultCols
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	obstacles := DefaultObstacleCount
	if opts.ObstacleCount != nil {
		obstacles = *opts.ObstacleCount
	}

	if opts.Rows < 3 || opts.Cols < 3 {
		return nil, fmt.Errorf("grid must be at least 3x3, got %dx%d", opts.Rows, opts.Cols)
	}
	if obstacles < 0 {
		return nil, fmt.Errorf("obstacle count must not be negative, got %d", obstacles)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	g := &generator{opts: opts, obstacles: obstacles, logger: logger}
	switch opts.Mode {
	case ModePrim:
		g.carve = carvePrim
	case ModeScatter:
		g.carve = carveScatter
	default:
		return nil, fmt.Errorf("unknown generator mode %q", opts.Mode)
	}

	for _, o := range options {
		o(g)
	}
	return g, nil
}

func (g *generator) random() *rand.Rand {
	if g.seeded {
		return rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Generate carves until the exit is reachable from the entry. When every
// attempt fails the grid is returned fully open and flagged degenerate.
func (g *generator) Generate() *Maze {
	rng := g.random()
	rows, cols := g.opts.Rows, g.opts.Cols

	var entry, exit Position
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		var grid [][]Cell
		grid, entry, exit = g.carve(rows, cols, rng, g.obstacles)
		if Reachable(grid, entry, exit) {
			return &Maze{
				Rows:     rows,
				Cols:     cols,
				Grid:     grid,
				Entry:    entry,
				Exit:     exit,
				Attempts: attempt,
			}
		}
		g.logger.Debugw("maze attempt unsolvable", "attempt", attempt, "mode", g.opts.Mode)
	}

	g.logger.Warnw("maze generation exhausted, using open grid",
		"mode", g.opts.Mode,
		"attempts", g.opts.MaxAttempts,
		"rows", rows,
		"cols", cols,
	)
	return &Maze{
		Rows:       rows,
		Cols:       cols,
		Grid:       newGrid(rows, cols, Passage),
		Entry:      entry,
		Exit:       exit,
		Attempts:   g.opts.MaxAttempts,
		Degenerate: true,
	}
}

