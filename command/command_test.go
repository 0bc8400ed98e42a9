package command

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/levels"
	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

type fakeInspector struct {
	target    model.Handle
	has       bool
	populates int
}

func (f *fakeInspector) Populate(h model.Handle) {
	f.target, f.has = h, true
	f.populates++
}

func (f *fakeInspector) Clear() { f.target, f.has = 0, false }

func (f *fakeInspector) Target() (model.Handle, bool) { return f.target, f.has }

type fixture struct {
	doc   *model.Document
	scene *scene.Scene
	insp  *fakeInspector
	stack *Stack
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := levels.LoadPathFromFS("ae_ba_4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return &fixture{
		doc:   doc,
		scene: scene.New(doc, scene.Options{}),
		insp:  &fakeInspector{},
		stack: NewStack(DefaultLimit),
	}
}

// state renders everything a user can observe: the saved document, the
// selection, the inspector target and every item's geometry.
func (f *fixture) state(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.doc.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	fmt.Fprintf(&buf, "sel=%v insp=%v/%v\n", f.scene.Selection(), f.insp.target, f.insp.has)
	items := f.scene.Items()
	sort.Slice(items, func(i, j int) bool { return items[i].Handle < items[j].Handle })
	for _, it := range items {
		fmt.Fprintf(&buf, "%d %+v\n", it.Handle, it.Geometry)
	}
	return buf.String()
}

func (f *fixture) door() model.Handle { return f.doc.CameraAt(0, 0).MapObjects[0].Handle() }

func (f *fixture) selectItems(hs ...model.Handle) {
	old := f.scene.Selection()
	f.scene.SetSelection(hs)
	f.stack.Push(NewSelection(f.scene, f.insp, old, f.scene.Selection()))
}

func (f *fixture) move(h model.Handle, dx, dy float64) {
	old := f.scene.Snapshot(h)
	g := old[h]
	g.Pos = g.Pos.Add(cp.Vector{X: dx, Y: dy})
	f.scene.SetGeometry(h, g)
	f.stack.Push(NewMoveItems(f.scene, old, f.scene.Snapshot(h)))
}

func (f *fixture) setBasic(h model.Handle, name string, v int64) {
	props, _ := f.doc.Properties(h)
	i := model.PropertyIndex(props, name)
	before := props[i]
	after := before
	after.Basic = v
	f.stack.Push(NewEditProperty(f.doc, f.insp, h, i, before, after))
}

type counter struct{ n *int }

func (c counter) Redo()        { *c.n++ }
func (c counter) Undo()        { *c.n-- }
func (c counter) Text() string { return "count" }

func TestUndoRedoAtEnds(t *testing.T) {
	s := NewStack(DefaultLimit)
	if s.Undo() || s.Redo() {
		t.Fatalf("empty stack should not undo or redo")
	}
	n := 0
	s.Push(counter{&n})
	if s.Redo() {
		t.Fatalf("redo at end should be a no-op")
	}
	if !s.Undo() || s.Undo() {
		t.Fatalf("expected exactly one undo")
	}
	if n != 0 {
		t.Fatalf("counter = %d", n)
	}
}

func TestUndoRedoRestoresObservableState(t *testing.T) {
	f := newFixture(t)
	door := f.door()
	mud := f.doc.CameraAt(1, 0).MapObjects[0].Handle()
	col := f.doc.Collisions()[0].Handle()

	steps := []func(){
		func() { f.selectItems(door) },
		func() { f.move(door, 15, -5) },
		func() { f.setBasic(door, "Door Number", 9) },
		func() { f.stack.Push(NewRename(f.doc, f.insp, door, "Door", "Exit")) },
		func() { f.selectItems(door, mud, col) },
		func() { f.move(col, 0, 12) },
		func() {
			obj, err := f.doc.NewMapObject("Lever", model.Rect{X: 400, Y: 100, W: 25, H: 25})
			if err != nil {
				t.Fatalf("new object: %v", err)
			}
			f.stack.Push(NewAddItems(f.doc, f.scene, f.insp, TextAddObject, []model.Placement{{Kind: model.KindMapObject, CamX: 1, CamY: 0, Index: -1, MapObject: obj}}))
		},
		func() { f.stack.Push(NewRemoveItems(f.doc, f.scene, f.insp, DeleteText(2), []model.Handle{mud, col})) },
		func() { f.selectItems() },
	}

	states := []string{f.state(t)}
	for _, step := range steps {
		step()
		states = append(states, f.state(t))
	}
	n := len(steps)

	for i := n; i > 0; i-- {
		if !f.stack.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if got := f.state(t); got != states[i-1] {
			t.Fatalf("state after undo to %d differs:\n%s\nwant:\n%s", i-1, got, states[i-1])
		}
	}
	for i := 1; i <= n; i++ {
		if !f.stack.Redo() {
			t.Fatalf("redo %d failed", i)
		}
		if got := f.state(t); got != states[i] {
			t.Fatalf("state after redo to %d differs:\n%s\nwant:\n%s", i, got, states[i])
		}
	}
}

func TestPushAfterUndoPrunes(t *testing.T) {
	for k := 1; k <= 3; k++ {
		t.Run(fmt.Sprintf("undo_%d", k), func(t *testing.T) {
			n := 0
			s := NewStack(DefaultLimit)
			for i := 0; i < 3; i++ {
				s.Push(counter{&n})
			}
			for i := 0; i < k; i++ {
				s.Undo()
			}
			s.Push(counter{&n})
			if s.Count() != 3-k+1 || s.Index() != s.Count() {
				t.Fatalf("count=%d index=%d", s.Count(), s.Index())
			}
			if s.CanRedo() || s.Redo() {
				t.Fatalf("redo should be a no-op after a push")
			}
			if n != 3-k+1 {
				t.Fatalf("counter = %d", n)
			}
		})
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	for _, limit := range []int{1, 10, DefaultLimit} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			n := 0
			s := NewStack(limit)
			for i := 0; i < limit+5; i++ {
				s.Push(counter{&n})
			}
			if s.Count() != limit {
				t.Fatalf("count = %d, want %d", s.Count(), limit)
			}
			undone := 0
			for s.Undo() {
				undone++
			}
			if undone != limit {
				t.Fatalf("undid %d commands, want %d", undone, limit)
			}
			if n != 5 {
				t.Fatalf("earliest commands should stay applied, counter = %d", n)
			}
		})
	}
}

func TestSetLimitTrims(t *testing.T) {
	n := 0
	s := NewStack(0)
	for i := 0; i < 8; i++ {
		s.Push(counter{&n})
	}
	s.SetLimit(3)
	if s.Count() != 3 || s.Index() != 3 {
		t.Fatalf("count=%d index=%d", s.Count(), s.Index())
	}
}

func TestCleanState(t *testing.T) {
	n := 0
	s := NewStack(DefaultLimit)
	var changes []bool
	s.OnCleanChanged = func(clean bool) { changes = append(changes, clean) }

	if !s.IsClean() {
		t.Fatalf("new stack should be clean")
	}
	s.Push(counter{&n})
	s.SetClean()
	s.Push(counter{&n})
	s.Undo()
	if !s.IsClean() {
		t.Fatalf("undo back to the saved point should be clean")
	}
	s.Undo()
	s.Push(counter{&n})
	if s.IsClean() {
		t.Fatalf("pruned clean point should be unreachable")
	}
	want := []bool{false, true, false, true, false}
	if fmt.Sprint(changes) != fmt.Sprint(want) {
		t.Fatalf("clean changes = %v, want %v", changes, want)
	}

	s.Clear()
	if !s.IsClean() || s.Count() != 0 {
		t.Fatalf("clear should leave an empty clean stack")
	}
}

func TestCleanPointEvicted(t *testing.T) {
	n := 0
	s := NewStack(2)
	for i := 0; i < 3; i++ {
		s.Push(counter{&n})
	}
	for s.Undo() {
	}
	if s.IsClean() {
		t.Fatalf("evicted clean point should be unreachable")
	}
}

func TestMoveLabels(t *testing.T) {
	obj := scene.Geometry{Kind: model.KindMapObject, Pos: cp.Vector{X: 10, Y: 10}, Rect: cp.BB{R: 20, T: 20}}
	line := scene.Geometry{Kind: model.KindCollision, Pos: cp.Vector{X: 0, Y: 0}, B: cp.Vector{X: 50}}

	moved := func(g scene.Geometry) scene.Geometry { g.Pos = g.Pos.Add(cp.Vector{X: 5, Y: 7}); return g }
	resized := func(g scene.Geometry) scene.Geometry {
		g.Rect.R += 4
		g.B.Y += 3
		return g
	}

	cases := []struct {
		name     string
		old, new scene.Positions
		want     string
	}{
		{"object_move", scene.Positions{1: obj}, scene.Positions{1: moved(obj)}, "Move map object"},
		{"object_resize", scene.Positions{1: obj}, scene.Positions{1: resized(obj)}, "Resize map object"},
		{"object_both", scene.Positions{1: obj}, scene.Positions{1: moved(resized(obj))}, "Move and resize map object"},
		{"collision_move", scene.Positions{2: line}, scene.Positions{2: moved(line)}, "Move collision"},
		{"collision_point", scene.Positions{2: line}, scene.Positions{2: resized(line)}, "Move collision point"},
		{"collision_both", scene.Positions{2: line}, scene.Positions{2: moved(resized(line))}, "Move and resize collision"},
		{"many", scene.Positions{1: obj, 2: line}, scene.Positions{1: moved(obj), 2: moved(line)}, "Move 2 item(s)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NewMoveItems(nil, c.old, c.new).Text(); got != c.want {
				t.Fatalf("label = %q, want %q", got, c.want)
			}
		})
	}
}

func TestMoveItemsFirstRedoIsNoop(t *testing.T) {
	f := newFixture(t)
	door := f.door()
	old := f.scene.Snapshot(door)
	g := old[door]
	g.Pos = cp.Vector{X: 100, Y: 100}
	target := scene.Positions{door: g}

	// The scene still shows old; pushing must not apply target.
	f.stack.Push(NewMoveItems(f.scene, old, target))
	if f.doc.CameraAt(0, 0).MapObjects[0].Rect.X != 40 {
		t.Fatalf("first redo moved the item")
	}
	f.stack.Undo()
	f.stack.Redo()
	if r := f.doc.CameraAt(0, 0).MapObjects[0].Rect; r.X != 100 || r.Y != 100 {
		t.Fatalf("redo did not apply the snapshot: %+v", r)
	}
}

func TestSelectionFirstRedo(t *testing.T) {
	f := newFixture(t)
	door := f.door()

	f.stack.Push(NewSelection(f.scene, f.insp, nil, []model.Handle{door}))
	if len(f.scene.Selection()) != 0 {
		t.Fatalf("first redo changed the scene selection")
	}
	if h, ok := f.insp.Target(); !ok || h != door {
		t.Fatalf("first redo did not populate the inspector")
	}
	if f.stack.UndoText() != "Select 1 item(s)" {
		t.Fatalf("label = %q", f.stack.UndoText())
	}

	f.stack.Undo()
	if _, ok := f.insp.Target(); ok {
		t.Fatalf("undo should clear the inspector")
	}
	f.stack.Redo()
	if sel := f.scene.Selection(); len(sel) != 1 || sel[0] != door {
		t.Fatalf("redo selection = %v", sel)
	}

	lever := f.doc.CameraAt(0, 0).MapObjects[1].Handle()
	f.stack.Push(NewSelection(f.scene, f.insp, []model.Handle{door}, []model.Handle{door, lever}))
	if _, ok := f.insp.Target(); ok {
		t.Fatalf("two selected items should clear the inspector")
	}
	f.stack.Push(NewSelection(f.scene, f.insp, []model.Handle{door, lever}, nil))
	if f.stack.UndoText() != "Clear selection" {
		t.Fatalf("label = %q", f.stack.UndoText())
	}
}

func TestEditPropertyAndRename(t *testing.T) {
	f := newFixture(t)
	door := f.door()
	f.insp.Populate(door)
	populates := f.insp.populates

	f.setBasic(door, "Door Number", 7)
	if got := f.stack.UndoText(); got != "Change Door Number from 3 to 7" {
		t.Fatalf("label = %q", got)
	}
	if f.insp.populates != populates+1 {
		t.Fatalf("inspector not refreshed")
	}
	props, _ := f.doc.Properties(door)
	if props[2].Basic != 7 {
		t.Fatalf("value = %d", props[2].Basic)
	}
	f.stack.Undo()
	if props, _ := f.doc.Properties(door); props[2].Basic != 3 {
		t.Fatalf("undo left %d", props[2].Basic)
	}

	f.stack.Push(NewRename(f.doc, f.insp, door, "Door", "Exit"))
	if name, _ := f.doc.Name(door); name != "Exit" || f.stack.UndoText() != "Rename Door to Exit" {
		t.Fatalf("rename: %q %q", name, f.stack.UndoText())
	}
	f.stack.Undo()
	if name, _ := f.doc.Name(door); name != "Door" {
		t.Fatalf("undo rename left %q", name)
	}
}

func TestRemoveItemsKeepsHandles(t *testing.T) {
	f := newFixture(t)
	cam := f.doc.CameraAt(0, 0)
	door, lever := cam.MapObjects[0].Handle(), cam.MapObjects[1].Handle()
	f.scene.SetSelection([]model.Handle{door})

	f.stack.Push(NewRemoveItems(f.doc, f.scene, f.insp, CutText(2), []model.Handle{door, lever}))
	if len(cam.MapObjects) != 0 || len(f.scene.Items()) != 4 {
		t.Fatalf("items not removed")
	}
	if len(f.scene.Selection()) != 0 {
		t.Fatalf("removed items still selected")
	}

	f.stack.Undo()
	if len(cam.MapObjects) != 2 || cam.MapObjects[0].Handle() != door || cam.MapObjects[1].Handle() != lever {
		t.Fatalf("items not restored in order")
	}
	if sel := f.scene.Selection(); len(sel) != 1 || sel[0] != door {
		t.Fatalf("selection not restored: %v", sel)
	}
	if _, ok := f.scene.Item(lever); !ok {
		t.Fatalf("scene item not restored")
	}
}

func TestAddItemsReusesHandles(t *testing.T) {
	f := newFixture(t)
	c := f.doc.NewCollision(model.Line{X1: 10, Y1: 10, X2: 90, Y2: 10})
	add := NewAddItems(f.doc, f.scene, f.insp, TextAddCollision, []model.Placement{{Kind: model.KindCollision, Index: -1, Collision: c}})

	f.stack.Push(add)
	hs := add.Handles()
	if len(hs) != 1 {
		t.Fatalf("expected one handle, got %v", hs)
	}
	if h, ok := f.insp.Target(); !ok || h != hs[0] {
		t.Fatalf("added item should be shown in the inspector")
	}
	f.stack.Undo()
	if _, ok := f.doc.Collision(hs[0]); ok {
		t.Fatalf("undo left the collision")
	}
	f.stack.Redo()
	if _, ok := f.doc.Collision(hs[0]); !ok {
		t.Fatalf("redo issued a different handle")
	}
}
