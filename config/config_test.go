package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.UndoLimit != DefaultUndoLimit || s.Theme != ThemeDark || s.Snap.Step != DefaultSnapStep {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if !s.ShowGrid || s.ItemTransparency {
		t.Fatalf("view defaults grid=%v transparency=%v", s.ShowGrid, s.ItemTransparency)
	}
}

func TestViewToggles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathedit.yaml")
	if err := os.WriteFile(path, []byte("show_grid: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATHEDIT_ITEM_TRANSPARENCY", "true")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.ShowGrid || !s.ItemTransparency {
		t.Fatalf("grid=%v transparency=%v", s.ShowGrid, s.ItemTransparency)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathedit.yaml")
	body := "theme: light\nundo_limit: 40\nsnap:\n  step: 8\n  collision_x: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		env   map[string]string
		limit int
		theme string
		step  int
	}{
		{"file_only", nil, 40, ThemeLight, 8},
		{"env_wins", map[string]string{"PATHEDIT_UNDO_LIMIT": "7", "PATHEDIT_THEME": "dark"}, 7, ThemeDark, 8},
		{"env_snap", map[string]string{"PATHEDIT_SNAP_STEP": "16"}, 40, ThemeLight, 16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			s, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if s.UndoLimit != c.limit || s.Theme != c.theme || s.Snap.Step != c.step {
				t.Fatalf("got limit=%d theme=%s step=%d", s.UndoLimit, s.Theme, s.Snap.Step)
			}
			if s.Snap.CollisionX {
				t.Fatalf("file value for collision_x lost")
			}
			if !s.Snap.MapObjectX {
				t.Fatalf("default for map_object_x lost")
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("theme: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "config: unmarshal") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}

	t.Setenv("PATHEDIT_UNDO_LIMIT", "lots")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected env error, got %v", err)
	}

	t.Setenv("PATHEDIT_UNDO_LIMIT", "-1")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pathedit.yaml")
	s := Default()
	s.Theme = ThemeLight
	s.AddRecent("/levels/a.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.Theme != ThemeLight || len(again.Recent) != 1 {
		t.Fatalf("unexpected reload %+v", again)
	}
}

func TestAddRecent(t *testing.T) {
	var s Settings
	for i := 0; i < MaxRecent+3; i++ {
		s.AddRecent(fmt.Sprintf("/p/%d.json", i))
	}
	if len(s.Recent) != MaxRecent {
		t.Fatalf("expected %d recent files, got %d", MaxRecent, len(s.Recent))
	}
	s.AddRecent("/P/5.JSON")
	if s.Recent[0] != "/P/5.JSON" {
		t.Fatalf("expected newest first, got %v", s.Recent)
	}
	for _, p := range s.Recent[1:] {
		if strings.EqualFold(p, "/p/5.json") {
			t.Fatalf("duplicate entry kept: %v", s.Recent)
		}
	}
}
