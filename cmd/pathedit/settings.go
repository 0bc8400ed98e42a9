package main

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/milk9111/pathedit/config"
	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/scene"
)

func settingsPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return config.DefaultPath()
}

func loadSettings(flag string) (config.Settings, string, error) {
	path, err := settingsPath(flag)
	if err != nil {
		return config.Settings{}, "", err
	}
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, "", err
	}
	return s, path, nil
}

func tabOptions(s config.Settings) editor.TabOptions {
	return editor.TabOptions{
		UndoLimit: s.UndoLimit,
		Snap: scene.Snap{
			MapObjectX: s.Snap.MapObjectX,
			MapObjectY: s.Snap.MapObjectY,
			CollisionX: s.Snap.CollisionX,
			CollisionY: s.Snap.CollisionY,
			Step:       s.Snap.Step,
		},
	}
}

// openTab opens a path JSON file, or one path of a level container when
// pathID is not negative.
func openTab(ws *editor.Workspace, file string, pathID int) (*editor.Tab, error) {
	opts := editor.OpenOptions{}
	if pathID >= 0 {
		opts.SelectPath = func(ids []int) (int, bool) {
			for _, id := range ids {
				if id == pathID {
					return id, true
				}
			}
			return 0, false
		}
	}
	t, err := ws.Open(file, opts)
	if errors.Is(err, editor.ErrCancelled) {
		return nil, fmt.Errorf("%s: path %d not found", file, pathID)
	}
	if err != nil {
		log.Printf("open %s: %v", file, err)
		return nil, fmt.Errorf("%s: %s", file, levelapi.UserMessage(err))
	}
	return t, nil
}

func parsePathID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid path id %q", s)
	}
	return id, nil
}
