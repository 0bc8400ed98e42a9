// Package config holds the editor's persisted settings. Settings are read
// from a YAML file and then overridden from PATHEDIT_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DefaultUndoLimit = 100
	DefaultSnapStep  = 5
	MaxRecent        = 10
)

// Snap configures grid snapping per entity kind and axis.
type Snap struct {
	MapObjectX bool `yaml:"map_object_x" env:"PATHEDIT_SNAP_MAP_OBJECT_X"`
	MapObjectY bool `yaml:"map_object_y" env:"PATHEDIT_SNAP_MAP_OBJECT_Y"`
	CollisionX bool `yaml:"collision_x" env:"PATHEDIT_SNAP_COLLISION_X"`
	CollisionY bool `yaml:"collision_y" env:"PATHEDIT_SNAP_COLLISION_Y"`
	Step       int  `yaml:"step" env:"PATHEDIT_SNAP_STEP"`
}

type Settings struct {
	Theme       string   `yaml:"theme" env:"PATHEDIT_THEME"`
	LastOpenDir string   `yaml:"last_open_dir" env:"PATHEDIT_LAST_OPEN_DIR"`
	UndoLimit   int      `yaml:"undo_limit" env:"PATHEDIT_UNDO_LIMIT"`
	Snap        Snap     `yaml:"snap"`
	Recent      []string `yaml:"recent"`

	ShowGrid         bool `yaml:"show_grid" env:"PATHEDIT_SHOW_GRID"`
	ItemTransparency bool `yaml:"item_transparency" env:"PATHEDIT_ITEM_TRANSPARENCY"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Theme:     ThemeDark,
		UndoLimit: DefaultUndoLimit,
		ShowGrid:  true,
		Snap: Snap{
			MapObjectX: true,
			MapObjectY: true,
			CollisionX: true,
			CollisionY: true,
			Step:       DefaultSnapStep,
		},
	}
}

// DefaultPath is pathedit/pathedit.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: user config dir: %w", err)
	}
	return filepath.Join(dir, "pathedit", "pathedit.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes the settings to path, creating its directory.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("config: unknown theme %q", s.Theme)
	}
	if s.UndoLimit < 0 {
		return fmt.Errorf("config: undo limit %d is negative", s.UndoLimit)
	}
	if s.Snap.Step <= 0 {
		return fmt.Errorf("config: snap step %d must be positive", s.Snap.Step)
	}
	return nil
}

// AddRecent moves path to the front of the recent files list.
func (s *Settings) AddRecent(path string) {
	out := []string{path}
	for _, p := range s.Recent {
		if strings.EqualFold(p, path) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > MaxRecent {
		out = out[:MaxRecent]
	}
	s.Recent = out
}
