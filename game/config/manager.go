package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mazerooms/game/maze"
	"github.com/wricardo/mazerooms/game/room"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// DefaultProfileName is loaded as the default when present
const DefaultProfileName = "classic"

// Manager handles maze profile loading and caching
type Manager struct {
	configDir      string
	defaultProfile *Profile
	profiles       map[string]*Profile
	mu             sync.RWMutex
}

// NewManager creates a new profile manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	if err := m.loadDefaultProfile(); err != nil {
		return nil, fmt.Errorf("failed to load default profile: %w", err)
	}

	return m, nil
}

// LoadProfile loads a profile by name
func (m *Manager) LoadProfile(name string) (*Profile, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if profile, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return profile, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if profile, exists := m.profiles[name]; exists {
		return profile, nil
	}

	profile, err := ReadProfile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		return nil, err
	}

	m.profiles[name] = profile
	return profile, nil
}

// ReadProfile parses and validates a single profile file. Missing
// generator settings fall back to prim with the default attempt budget.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	if profile.Generator == "" {
		profile.Generator = maze.ModePrim
	}
	if profile.MaxPlayers == 0 {
		profile.MaxPlayers = room.DefaultMaxPlayers
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	return &profile, nil
}

// ListProfiles returns information about all valid profiles
func (m *Manager) ListProfiles() ([]*ProfileInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var profiles []*ProfileInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		profile, err := m.LoadProfile(name)
		if err != nil {
			// Skip invalid profiles
			continue
		}

		profiles = append(profiles, profile.info(entry.Name(), name))
	}

	return profiles, nil
}

// GetDefault returns the default profile
func (m *Manager) GetDefault() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultProfile
}

// SetDefault sets the default profile by name
func (m *Manager) SetDefault(name string) error {
	profile, err := m.LoadProfile(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultProfile = profile
	return nil
}

// loadDefaultProfile prefers classic, then the first valid file, then a
// built-in profile.
func (m *Manager) loadDefaultProfile() error {
	profile, err := m.LoadProfile(DefaultProfileName)
	if err != nil {
		profiles, listErr := m.ListProfiles()
		if listErr != nil || len(profiles) == 0 {
			m.defaultProfile = createMinimalProfile()
			return nil
		}

		profile, err = m.LoadProfile(profiles[0].ProfileID)
		if err != nil {
			m.defaultProfile = createMinimalProfile()
			return nil
		}
	}

	m.defaultProfile = profile
	return nil
}

func createMinimalProfile() *Profile {
	return &Profile{
		Name:        "default",
		Description: "Built-in profile used when no profile files are available",
		Rows:        maze.DefaultRows,
		Cols:        maze.DefaultCols,
		MaxPlayers:  room.DefaultMaxPlayers,
		Generator:   maze.ModePrim,
		MaxAttempts: maze.DefaultMaxAttempts,
	}
}
