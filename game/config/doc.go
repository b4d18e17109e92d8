// Package config provides maze profile management for the room server.
//
// The config package handles:
//   - Loading maze profiles from JSON files
//   - Profile validation
//   - Default profile selection
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as JSON files in the configs directory. Each profile
// defines the grid size, the per-room player cap, the generator mode
// ("prim" or "scatter") and its knobs:
//
//	{
//	  "name": "Classic",
//	  "rows": 21,
//	  "cols": 31,
//	  "max_players": 30,
//	  "generator": "prim",
//	  "max_attempts": 10
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		return err
//	}
//	profile := manager.GetDefault()
//	gen, err := profile.NewGenerator(logger)
//
// The classic profile is the default when present; otherwise the first valid
// file is used, and a built-in profile when the directory holds none.
package config
