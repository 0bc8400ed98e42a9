package editor

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/milk9111/pathedit/clipboard"
	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/model"
)

// ErrCancelled is returned when a prompt callback declines to continue.
var ErrCancelled = errors.New("editor: cancelled")

// ErrAlreadyOpen is returned by SaveAs when another tab owns the target
// file.
var ErrAlreadyOpen = errors.New("editor: file is open in another tab")

// LevelExt is the extension of level containers.
const LevelExt = ".lvl"

// OpenOptions control how a level container is opened. Plain path JSON
// files ignore them.
type OpenOptions struct {
	// CreateNewPath opens the first path of the container as an empty
	// template numbered NewPathID.
	CreateNewPath bool
	NewPathID     int
	// SelectPath picks one of the container's path ids. A nil SelectPath
	// opens the first one; returning false cancels.
	SelectPath func(ids []int) (int, bool)
}

// Workspace holds the open tabs and the shared clipboard.
type Workspace struct {
	tabs    []*Tab
	current int
	source  levelapi.Source
	opts    TabOptions
	clip    *clipboard.Data

	// OnTabsChanged is called after a tab is opened or closed.
	OnTabsChanged func()
}

func NewWorkspace(source levelapi.Source, opts TabOptions) *Workspace {
	if source == nil {
		source = levelapi.Bundle{}
	}
	return &Workspace{source: source, opts: opts, current: -1}
}

// NormalizePath returns the identity used to detect files that are
// already open: absolute, cleaned, forward slashes, lower case.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func lvlKey(lvl string, id int) string {
	return fmt.Sprintf("%s:%d", NormalizePath(lvl), id)
}

// Open opens path in a new tab, or focuses the tab that already shows it.
func (w *Workspace) Open(path string, opts OpenOptions) (*Tab, error) {
	if strings.EqualFold(filepath.Ext(path), LevelExt) {
		return w.openLevel(path, opts)
	}
	if i := w.Find(NormalizePath(path)); i >= 0 {
		w.current = i
		return w.tabs[i], nil
	}
	t, err := OpenTab(path, w.opts)
	if err != nil {
		return nil, err
	}
	log.Printf("opened %s", path)
	return w.add(t), nil
}

func (w *Workspace) openLevel(lvl string, opts OpenOptions) (*Tab, error) {
	ids, err := w.source.EnumeratePaths(lvl)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, levelapi.New(levelapi.KindOpenPath, "%s has no paths", lvl)
	}

	id := ids[0]
	if !opts.CreateNewPath && opts.SelectPath != nil {
		var ok bool
		if id, ok = opts.SelectPath(ids); !ok {
			return nil, ErrCancelled
		}
	}
	if !opts.CreateNewPath {
		if i := w.Find(lvlKey(lvl, id)); i >= 0 {
			w.current = i
			return w.tabs[i], nil
		}
	}

	tmp := filepath.Join(os.TempDir(), uuid.NewString()+".json")
	defer os.Remove(tmp)
	if err := w.source.ExportPathBinaryToJSON(tmp, lvl, id); err != nil {
		return nil, err
	}
	doc, err := model.LoadFile(tmp)
	if err != nil {
		return nil, err
	}

	key := lvlKey(lvl, id)
	if opts.CreateNewPath {
		doc.CreateAsNewPath(opts.NewPathID)
		key = lvlKey(lvl, opts.NewPathID)
	}
	t := NewTab(doc, w.opts)
	t.key = key
	t.lvlPath = lvl
	t.source = w.source
	t.forceSaveAs = true
	t.title = doc.Title()
	log.Printf("opened path %d of %s as %s", id, lvl, t.title)
	return w.add(t), nil
}

func (w *Workspace) add(t *Tab) *Tab {
	w.tabs = append(w.tabs, t)
	w.current = len(w.tabs) - 1
	w.changed()
	return t
}

// Find returns the index of the tab with the given key, or -1.
func (w *Workspace) Find(key string) int {
	for i, t := range w.tabs {
		if t.key != "" && t.key == key {
			return i
		}
	}
	return -1
}

// Close closes tab i. Tabs with unsaved changes ask confirm first; a nil
// confirm closes without asking.
func (w *Workspace) Close(i int, confirm func(*Tab) bool) error {
	if i < 0 || i >= len(w.tabs) {
		return fmt.Errorf("editor: no tab %d", i)
	}
	t := w.tabs[i]
	if !t.IsClean() && confirm != nil && !confirm(t) {
		return ErrCancelled
	}
	w.tabs = append(w.tabs[:i], w.tabs[i+1:]...)
	switch {
	case len(w.tabs) == 0:
		w.current = -1
	case w.current >= len(w.tabs):
		w.current = len(w.tabs) - 1
	case w.current > i:
		w.current--
	}
	log.Printf("closed %s", t.title)
	w.changed()
	return nil
}

// SaveAs saves t under path unless another tab already edits that file.
func (w *Workspace) SaveAs(t *Tab, path string) error {
	if i := w.Find(NormalizePath(path)); i >= 0 && w.tabs[i] != t {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, path)
	}
	if err := t.SaveAs(path); err != nil {
		return err
	}
	w.changed()
	return nil
}

// SaveAll saves every dirty tab that has a file of its own. Tabs that
// need Save As are skipped.
func (w *Workspace) SaveAll() error {
	var errs []error
	for _, t := range w.tabs {
		if t.IsClean() || t.NeedsSaveAs() {
			continue
		}
		if err := t.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dirty reports whether any tab has unsaved changes.
func (w *Workspace) Dirty() bool {
	for _, t := range w.tabs {
		if !t.IsClean() {
			return true
		}
	}
	return false
}

func (w *Workspace) Tabs() []*Tab { return w.tabs }

// Current returns the focused tab, nil when none is open.
func (w *Workspace) Current() *Tab {
	if w.current < 0 || w.current >= len(w.tabs) {
		return nil
	}
	return w.tabs[w.current]
}

func (w *Workspace) CurrentIndex() int { return w.current }

func (w *Workspace) SetCurrent(i int) bool {
	if i < 0 || i >= len(w.tabs) {
		return false
	}
	w.current = i
	return true
}

// Copy stores the current tab's selection in the workspace clipboard.
func (w *Workspace) Copy() bool {
	t := w.Current()
	if t == nil {
		return false
	}
	if d := t.Copy(); d != nil {
		w.clip = d
		return true
	}
	return false
}

func (w *Workspace) Cut() bool {
	t := w.Current()
	if t == nil {
		return false
	}
	if d := t.Cut(); d != nil {
		w.clip = d
		return true
	}
	return false
}

// Paste pastes the workspace clipboard into the current tab.
func (w *Workspace) Paste() ([]model.Handle, error) {
	t := w.Current()
	if t == nil || w.clip == nil {
		return nil, nil
	}
	return t.Paste(w.clip)
}

func (w *Workspace) Clipboard() *clipboard.Data { return w.clip }

// SetClipboard replaces the clipboard, e.g. with data read from the
// system clipboard.
func (w *Workspace) SetClipboard(d *clipboard.Data) { w.clip = d }

func (w *Workspace) changed() {
	if w.OnTabsChanged != nil {
		w.OnTabsChanged()
	}
}
