package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/wricardo/mazerooms/game/maze"
	"go.uber.org/zap"
)

// Profile describes how rooms are sized and how their mazes are generated.
type Profile struct {
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description"`
	Rows          int       `json:"rows" validate:"min=3,max=201"`
	Cols          int       `json:"cols" validate:"min=3,max=201"`
	MaxPlayers    int       `json:"max_players" validate:"min=1,max=1000"`
	Generator     maze.Mode `json:"generator" validate:"oneof=prim scatter"`
	ObstacleCount *int      `json:"obstacle_count,omitempty" validate:"omitempty,min=0"`
	MaxAttempts   int       `json:"max_attempts,omitempty" validate:"min=0,max=100"`
}

// ProfileInfo is the listing form of a profile
type ProfileInfo struct {
	Filename    string    `json:"filename"`
	ProfileID   string    `json:"profile_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	MaxPlayers  int       `json:"max_players"`
	Generator   maze.Mode `json:"generator"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the generator mode
func (p *Profile) Validate() error {
	return validate.Struct(p)
}

// GeneratorOptions maps the profile onto maze generator options
func (p *Profile) GeneratorOptions() maze.Options {
	return maze.Options{
		Mode:          p.Generator,
		Rows:          p.Rows,
		Cols:          p.Cols,
		MaxAttempts:   p.MaxAttempts,
		ObstacleCount: p.ObstacleCount,
	}
}

// NewGenerator builds a maze generator for this profile
func (p *Profile) NewGenerator(logger *zap.SugaredLogger, opts ...maze.Option) (maze.Generator, error) {
	return maze.NewGenerator(p.GeneratorOptions(), logger, opts...)
}

func (p *Profile) info(filename, id string) *ProfileInfo {
	return &ProfileInfo{
		Filename:    filename,
		ProfileID:   id,
		Name:        p.Name,
		Description: p.Description,
		Rows:        p.Rows,
		Cols:        p.Cols,
		MaxPlayers:  p.MaxPlayers,
		Generator:   p.Generator,
	}
}
