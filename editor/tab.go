// Package editor ties one open path together: document, scene, undo stack
// and inspector live in a Tab, and a Workspace keeps the open tabs keyed by
// their normalized source path.
package editor

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/clipboard"
	"github.com/milk9111/pathedit/command"
	"github.com/milk9111/pathedit/inspector"
	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

// ErrNeedsSaveAs is returned by Save for tabs without a JSON file of their
// own, such as paths pulled out of a level container.
var ErrNeedsSaveAs = errors.New("editor: save as required")

// DefaultCollisionLength is the width of a collision added by AddCollision
// when both ends coincide.
const DefaultCollisionLength = 25

type TabOptions struct {
	UndoLimit int
	Snap      scene.Snap
}

// Tab is one open path.
type Tab struct {
	doc   *model.Document
	scene *scene.Scene
	stack *command.Stack
	insp  *inspector.Inspector

	path        string
	key         string
	title       string
	lvlPath     string
	forceSaveAs bool
	source      levelapi.Source
}

// NewTab builds the scene, stack and inspector for doc and wires scene
// gestures onto the stack.
func NewTab(doc *model.Document, opts TabOptions) *Tab {
	t := &Tab{
		doc:   doc,
		scene: scene.New(doc, scene.Options{Snap: opts.Snap}),
		stack: command.NewStack(opts.UndoLimit),
		title: doc.Title(),
	}
	t.insp = inspector.New(doc, t.stack)
	t.scene.OnSelectionChanged = func(old, new []model.Handle) {
		t.stack.Push(command.NewSelection(t.scene, t.insp, old, new))
	}
	t.scene.OnItemsMoved = func(old, new scene.Positions) {
		t.stack.Push(command.NewMoveItems(t.scene, old, new))
	}
	return t
}

// OpenTab loads the path JSON at path into a new tab.
func OpenTab(path string, opts TabOptions) (*Tab, error) {
	doc, err := model.LoadFile(path)
	if err != nil {
		return nil, err
	}
	t := NewTab(doc, opts)
	t.path = path
	t.key = NormalizePath(path)
	t.title = filepath.Base(path)
	return t, nil
}

func (t *Tab) Document() *model.Document       { return t.doc }
func (t *Tab) Scene() *scene.Scene             { return t.scene }
func (t *Tab) Stack() *command.Stack           { return t.stack }
func (t *Tab) Inspector() *inspector.Inspector { return t.insp }

// Path is the JSON file the tab saves to, empty until Save As.
func (t *Tab) Path() string { return t.path }

// Key is the normalized identity used to find an already open tab.
func (t *Tab) Key() string { return t.key }

func (t *Tab) Title() string { return t.title }

// LevelPath is the level container the path was opened from, if any.
func (t *Tab) LevelPath() string { return t.lvlPath }

func (t *Tab) IsClean() bool { return t.stack.IsClean() }

// NeedsSaveAs reports whether Save would fail with ErrNeedsSaveAs.
func (t *Tab) NeedsSaveAs() bool { return t.path == "" || t.forceSaveAs }

func (t *Tab) Undo() bool { return t.stack.Undo() }
func (t *Tab) Redo() bool { return t.stack.Redo() }

func (t *Tab) ZoomIn() bool  { return t.scene.ZoomIn() }
func (t *Tab) ZoomOut() bool { return t.scene.ZoomOut() }
func (t *Tab) ResetZoom()    { t.scene.ResetZoom() }

// Save writes the document back to its JSON file and marks the stack
// clean.
func (t *Tab) Save() error {
	if t.NeedsSaveAs() {
		return ErrNeedsSaveAs
	}
	if err := t.doc.SaveFile(t.path); err != nil {
		return fmt.Errorf("editor: save %s: %w", t.path, err)
	}
	t.stack.SetClean()
	log.Printf("saved %s", t.path)
	return nil
}

// SaveAs writes the document to path and makes it the tab's file.
func (t *Tab) SaveAs(path string) error {
	if err := t.doc.SaveFile(path); err != nil {
		return fmt.Errorf("editor: save as %s: %w", path, err)
	}
	t.path = path
	t.key = NormalizePath(path)
	t.title = filepath.Base(path)
	t.forceSaveAs = false
	t.stack.SetClean()
	log.Printf("saved %s", path)
	return nil
}

// Export stores the path into the level container lvl through the tab's
// level source. An empty lvl exports to the container the tab came from.
func (t *Tab) Export(lvl string) error {
	if lvl == "" {
		lvl = t.lvlPath
	}
	if lvl == "" {
		return fmt.Errorf("editor: export: no level file")
	}
	src := t.source
	if src == nil {
		src = levelapi.Bundle{}
	}
	tmp := filepath.Join(os.TempDir(), uuid.NewString()+".json")
	defer os.Remove(tmp)
	if err := t.doc.SaveFile(tmp); err != nil {
		return fmt.Errorf("editor: export: %w", err)
	}
	if err := src.ImportPathJSONToBinary(lvl, tmp); err != nil {
		return fmt.Errorf("editor: export %s: %w", lvl, err)
	}
	log.Printf("exported path %d to %s", t.doc.MapInfo().PathID, lvl)
	return nil
}

// Copy returns the current selection as clipboard data, nil when nothing
// is selected.
func (t *Tab) Copy() *clipboard.Data {
	sel := t.scene.Selection()
	if len(sel) == 0 {
		return nil
	}
	return clipboard.Copy(t.doc, sel)
}

// Cut copies the selection and removes it as one undoable command.
func (t *Tab) Cut() *clipboard.Data {
	data := t.Copy()
	if data == nil {
		return nil
	}
	sel := t.scene.Selection()
	t.stack.Push(command.NewRemoveItems(t.doc, t.scene, t.insp, command.CutText(len(sel)), sel))
	return data
}

// Delete removes the selection.
func (t *Tab) Delete() bool {
	sel := t.scene.Selection()
	if len(sel) == 0 {
		return false
	}
	t.stack.Push(command.NewRemoveItems(t.doc, t.scene, t.insp, command.DeleteText(len(sel)), sel))
	return true
}

// Paste inserts data at its original coordinates. Map objects go to the
// camera under their top left corner, or the first camera when that cell
// is empty.
func (t *Tab) Paste(data *clipboard.Data) ([]model.Handle, error) {
	if data.Len() == 0 {
		return nil, nil
	}
	if err := data.Validate(t.doc); err != nil {
		return nil, err
	}
	var places []model.Placement
	for _, o := range data.MapObjects {
		cx, cy, err := t.cameraFor(o.Rect.X, o.Rect.Y)
		if err != nil {
			return nil, err
		}
		places = append(places, model.Placement{Kind: model.KindMapObject, CamX: cx, CamY: cy, Index: -1, MapObject: o})
	}
	for _, c := range data.Collisions {
		places = append(places, model.Placement{Kind: model.KindCollision, Index: -1, Collision: c})
	}
	add := command.NewAddItems(t.doc, t.scene, t.insp, command.PasteText(len(places)), places)
	t.stack.Push(add)
	return add.Handles(), nil
}

// AddObject places a new map object of the given structure with its top
// left corner at pt.
func (t *Tab) AddObject(structure string, pt cp.Vector, w, h int) (model.Handle, error) {
	x, y := pixel(pt.X), pixel(pt.Y)
	obj, err := t.doc.NewMapObject(structure, model.Rect{X: x, Y: y, W: w, H: h})
	if err != nil {
		return 0, fmt.Errorf("editor: add object: %w", err)
	}
	cx, cy, err := t.cameraFor(x, y)
	if err != nil {
		return 0, err
	}
	add := command.NewAddItems(t.doc, t.scene, t.insp, command.TextAddObject, []model.Placement{
		{Kind: model.KindMapObject, CamX: cx, CamY: cy, Index: -1, MapObject: obj},
	})
	t.stack.Push(add)
	return first(add.Handles())
}

// AddCollision adds a collision line from a to b.
func (t *Tab) AddCollision(a, b cp.Vector) (model.Handle, error) {
	if a == b {
		b = a.Add(cp.Vector{X: DefaultCollisionLength})
	}
	c := t.doc.NewCollision(model.Line{X1: pixel(a.X), Y1: pixel(a.Y), X2: pixel(b.X), Y2: pixel(b.Y)})
	add := command.NewAddItems(t.doc, t.scene, t.insp, command.TextAddCollision, []model.Placement{
		{Kind: model.KindCollision, Index: -1, Collision: c},
	})
	t.stack.Push(add)
	return first(add.Handles())
}

// SetGeometry moves or resizes one item as an undoable command.
func (t *Tab) SetGeometry(h model.Handle, g scene.Geometry) error {
	old := t.scene.Snapshot(h)
	if len(old) == 0 {
		return fmt.Errorf("editor: no item %d", h)
	}
	if !t.scene.SetGeometry(h, g) {
		return fmt.Errorf("editor: item %d is a %s", h, old[h].Kind)
	}
	now := t.scene.Snapshot(h)
	if now.Equal(old) {
		return nil
	}
	t.stack.Push(command.NewMoveItems(t.scene, old, now))
	return nil
}

// SetProperty parses text as the new value of the named property.
func (t *Tab) SetProperty(h model.Handle, name, text string) error {
	props, ok := t.doc.Properties(h)
	if !ok {
		return fmt.Errorf("editor: no entity %d", h)
	}
	i := model.PropertyIndex(props, name)
	if i < 0 {
		return levelapi.New(levelapi.KindPropertyNotFound, "%s", name)
	}
	before := props[i]
	after, err := inspector.ParseValue(t.doc.FindType(before.TypeName), before, text)
	if err != nil {
		return err
	}
	if after.Basic == before.Basic && after.Enum == before.Enum {
		return nil
	}
	t.stack.Push(command.NewEditProperty(t.doc, t.insp, h, i, before, after))
	return nil
}

// Rename renames an entity as an undoable command.
func (t *Tab) Rename(h model.Handle, name string) error {
	old, ok := t.doc.Name(h)
	if !ok {
		return fmt.Errorf("editor: no entity %d", h)
	}
	if old == name {
		return nil
	}
	t.stack.Push(command.NewRename(t.doc, t.insp, h, old, name))
	return nil
}

// Select replaces the selection as an undoable command.
func (t *Tab) Select(hs []model.Handle) {
	old := t.scene.Selection()
	t.scene.SetSelection(hs)
	now := t.scene.Selection()
	if fmt.Sprint(old) == fmt.Sprint(now) {
		return
	}
	t.stack.Push(command.NewSelection(t.scene, t.insp, old, now))
}

func (t *Tab) cameraFor(x, y int) (int, int, error) {
	cx, cy := t.doc.CameraCellAt(x, y)
	if t.doc.CameraAt(cx, cy) != nil {
		return cx, cy, nil
	}
	cams := t.doc.Cameras()
	if len(cams) == 0 {
		return 0, 0, fmt.Errorf("editor: path has no cameras")
	}
	return cams[0].X, cams[0].Y, nil
}

func pixel(v float64) int { return int(math.Round(v)) }

func first(hs []model.Handle) (model.Handle, error) {
	if len(hs) == 0 {
		return 0, fmt.Errorf("editor: nothing was added")
	}
	return hs[0], nil
}
