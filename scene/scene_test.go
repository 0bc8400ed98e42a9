package scene

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/levels"
	"github.com/milk9111/pathedit/model"
)

type recorder struct {
	events []string
	oldSel []model.Handle
	newSel []model.Handle
	before Positions
	after  Positions
}

func newTestScene(t *testing.T) (*Scene, *recorder) {
	t.Helper()
	doc, err := levels.LoadPathFromFS("ae_ba_4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := New(doc, Options{})
	rec := &recorder{}
	s.OnSelectionChanged = func(old, new []model.Handle) {
		rec.events = append(rec.events, "selection")
		rec.oldSel, rec.newSel = old, new
	}
	s.OnItemsMoved = func(old, new Positions) {
		rec.events = append(rec.events, "moved")
		rec.before, rec.after = old, new
	}
	return s, rec
}

func door(s *Scene) model.Handle  { return s.Document().CameraAt(0, 0).MapObjects[0].Handle() }
func lever(s *Scene) model.Handle { return s.Document().CameraAt(0, 0).MapObjects[1].Handle() }

func v(x, y float64) cp.Vector { return cp.Vector{X: x, Y: y} }

func TestNewBuildsItemsAndCells(t *testing.T) {
	s, _ := newTestScene(t)

	if got := len(s.Cells()); got != 6 {
		t.Fatalf("expected 6 cells, got %d", got)
	}
	empty := 0
	for _, c := range s.Cells() {
		if c.Empty {
			empty++
			if c.X != 2 || c.Y != 1 {
				t.Fatalf("unexpected empty cell %d,%d", c.X, c.Y)
			}
		}
	}
	if empty != 1 {
		t.Fatalf("expected one empty cell, got %d", empty)
	}
	if got := len(s.Items()); got != 6 {
		t.Fatalf("expected 6 items, got %d", got)
	}
	want := cp.BB{L: -100, B: -100, R: 1225, T: 620}
	if s.Rect() != want {
		t.Fatalf("scene rect = %+v, want %+v", s.Rect(), want)
	}
	it, ok := s.Item(door(s))
	if !ok || it.Bounds() != (cp.BB{L: 40, B: 120, R: 65, T: 180}) {
		t.Fatalf("door item bounds %+v", it.Bounds())
	}
}

func TestNonPrimaryButtonsRejected(t *testing.T) {
	for _, b := range []Button{ButtonRight, ButtonMiddle} {
		s, rec := newTestScene(t)
		if s.Press(b, v(50, 150), 0) {
			t.Fatalf("button %d press accepted", b)
		}
		if s.Drag(v(300, 300)) {
			t.Fatalf("drag accepted without a gesture")
		}
		if _, ok := s.Band(); ok {
			t.Fatalf("rubber band started")
		}
		if s.Release(b, v(300, 300)) {
			t.Fatalf("button %d release accepted", b)
		}
		if len(s.Selection()) != 0 || len(rec.events) != 0 {
			t.Fatalf("rejected press changed state: %v", rec.events)
		}
		if got := s.Document().CameraAt(0, 0).MapObjects[0].Rect; got.X != 40 || got.Y != 120 {
			t.Fatalf("rejected drag moved the door to %+v", got)
		}
	}
}

func TestGestures(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(s *Scene)
		press  cp.Vector
		mods   Modifiers
		drag   cp.Vector
		events []string
		check  func(t *testing.T, s *Scene, rec *recorder)
	}{
		{
			name:   "click_selects",
			press:  v(50, 150),
			drag:   v(50, 150),
			events: []string{"selection"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if len(rec.oldSel) != 0 || len(rec.newSel) != 1 || rec.newSel[0] != door(s) {
					t.Fatalf("selection %v -> %v", rec.oldSel, rec.newSel)
				}
			},
		},
		{
			name:   "drag_moves",
			press:  v(50, 150),
			drag:   v(60, 155),
			events: []string{"selection", "moved"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				h := door(s)
				if rec.before[h].Pos != v(40, 120) || rec.after[h].Pos != v(50, 125) {
					t.Fatalf("move %v -> %v", rec.before[h].Pos, rec.after[h].Pos)
				}
				if r := s.Document().CameraAt(0, 0).MapObjects[0].Rect; r != (model.Rect{X: 50, Y: 125, W: 25, H: 60}) {
					t.Fatalf("model not updated: %+v", r)
				}
			},
		},
		{
			name:   "drag_selected_group",
			setup:  func(s *Scene) { s.SetSelection([]model.Handle{door(s), lever(s)}) },
			press:  v(210, 160),
			drag:   v(215, 160),
			events: []string{"moved"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if len(rec.after) != 2 {
					t.Fatalf("expected both items moved, got %d", len(rec.after))
				}
				if rec.after[door(s)].Pos != v(45, 120) {
					t.Fatalf("door at %v", rec.after[door(s)].Pos)
				}
			},
		},
		{
			name:   "resize_handle",
			setup:  func(s *Scene) { s.SetSelection([]model.Handle{door(s)}) },
			press:  v(65, 180),
			drag:   v(75, 200),
			events: []string{"moved"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				g := rec.after[door(s)]
				if g.Pos != v(40, 120) || g.Rect != (cp.BB{L: 0, B: 0, R: 35, T: 80}) {
					t.Fatalf("resized geometry %+v", g)
				}
				if r := s.Document().CameraAt(0, 0).MapObjects[0].Rect; r != (model.Rect{X: 40, Y: 120, W: 35, H: 80}) {
					t.Fatalf("model not updated: %+v", r)
				}
			},
		},
		{
			name:   "rubber_band",
			press:  v(450, 100),
			drag:   v(600, 230),
			events: []string{"selection"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				mud := s.Document().CameraAt(1, 0).MapObjects[0].Handle()
				if len(rec.newSel) != 1 || rec.newSel[0] != mud {
					t.Fatalf("band selected %v", rec.newSel)
				}
			},
		},
		{
			name:   "ctrl_toggles",
			setup:  func(s *Scene) { s.SetSelection([]model.Handle{door(s)}) },
			press:  v(210, 160),
			mods:   ModCtrl,
			drag:   v(210, 160),
			events: []string{"selection"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if len(rec.newSel) != 2 {
					t.Fatalf("expected door and lever selected, got %v", rec.newSel)
				}
			},
		},
		{
			name:   "empty_click_clears",
			setup:  func(s *Scene) { s.SetSelection([]model.Handle{door(s)}) },
			press:  v(300, 20),
			drag:   v(300, 20),
			events: []string{"selection"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if len(rec.newSel) != 0 {
					t.Fatalf("expected empty selection, got %v", rec.newSel)
				}
			},
		},
		{
			name:   "line_hit",
			press:  v(100, 242),
			drag:   v(100, 242),
			events: []string{"selection"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if s.Document().Kind(rec.newSel[0]) != model.KindCollision {
					t.Fatalf("expected a collision selected")
				}
			},
		},
		{
			name:   "line_endpoint",
			setup:  func(s *Scene) { s.SetSelection([]model.Handle{s.Document().Collisions()[2].Handle()}) },
			press:  v(750, 0),
			drag:   v(760, 10),
			events: []string{"moved"},
			check: func(t *testing.T, s *Scene, rec *recorder) {
				if l := s.Document().Collisions()[2].Line; l != (model.Line{X1: 760, Y1: 10, X2: 750, Y2: 240}) {
					t.Fatalf("line = %+v", l)
				}
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, rec := newTestScene(t)
			if c.setup != nil {
				c.setup(s)
			}
			if !s.Press(ButtonLeft, c.press, c.mods) {
				t.Fatalf("press rejected")
			}
			s.Drag(c.drag)
			if !s.Release(ButtonLeft, c.drag) {
				t.Fatalf("release rejected")
			}
			if len(rec.events) != len(c.events) {
				t.Fatalf("events = %v, want %v", rec.events, c.events)
			}
			for i := range c.events {
				if rec.events[i] != c.events[i] {
					t.Fatalf("events = %v, want %v", rec.events, c.events)
				}
			}
			c.check(t, s, rec)
		})
	}
}

func TestSnapDuringMove(t *testing.T) {
	s, rec := newTestScene(t)
	s.SetSnap(Snap{MapObjectX: true, MapObjectY: true, Step: 10})

	s.Press(ButtonLeft, v(50, 150), 0)
	s.Drag(v(57, 154))
	s.Release(ButtonLeft, v(57, 154))

	if got := rec.after[door(s)].Pos; got != v(50, 120) {
		t.Fatalf("snapped position %v", got)
	}
}

func TestSubPixelDrag(t *testing.T) {
	s, rec := newTestScene(t)
	h := door(s)

	s.Press(ButtonLeft, v(50, 150), 0)
	s.Release(ButtonLeft, v(50.3, 150.2))
	if len(rec.events) != 1 || rec.events[0] != "selection" {
		t.Fatalf("events %v, want only a selection change", rec.events)
	}
	it, _ := s.Item(h)
	if it.Pos != v(40, 120) {
		t.Fatalf("item drifted to %v", it.Pos)
	}

	rec.events = nil
	s.Press(ButtonLeft, v(50, 150), 0)
	s.Release(ButtonLeft, v(57.6, 150.4))
	if len(rec.events) != 1 || rec.events[0] != "moved" {
		t.Fatalf("events %v, want one move", rec.events)
	}
	if it.Pos != v(48, 120) || rec.after[h].Pos != v(48, 120) {
		t.Fatalf("item at %v, snapshot %v", it.Pos, rec.after[h].Pos)
	}
	if r := s.Document().CameraAt(0, 0).MapObjects[0].Rect; r != (model.Rect{X: 48, Y: 120, W: 25, H: 60}) {
		t.Fatalf("document rect %+v", r)
	}
}

func TestPositionsRestore(t *testing.T) {
	s, _ := newTestScene(t)
	h := door(s)
	snap := s.Snapshot(h)

	g := snap[h]
	g.Pos = v(0, 0)
	g.Rect = cp.BB{R: 10, T: 10}
	s.SetGeometry(h, g)

	snap.Restore(s)
	if r := s.Document().CameraAt(0, 0).MapObjects[0].Rect; r != (model.Rect{X: 40, Y: 120, W: 25, H: 60}) {
		t.Fatalf("restore left %+v", r)
	}
	if !s.Snapshot(h).Equal(snap) {
		t.Fatalf("snapshot differs after restore")
	}
}

func TestZoomClamp(t *testing.T) {
	s, _ := newTestScene(t)
	steps := 0
	for i := 0; i < 30; i++ {
		if s.ZoomIn() {
			steps++
		}
	}
	if steps != 14 || math.Abs(s.Zoom()-2.4) > 1e-9 {
		t.Fatalf("zoom in: %d steps to %v", steps, s.Zoom())
	}
	s.ResetZoom()
	for i := 0; i < 30; i++ {
		s.ZoomOut()
	}
	if math.Abs(s.Zoom()-0.5) > 1e-9 {
		t.Fatalf("zoom out clamped at %v", s.Zoom())
	}

	before := s.Document().CameraAt(0, 0).MapObjects[0].Rect
	p := v(123, 45)
	back := s.ViewToScene(s.SceneToView(p))
	if back.Distance(p) > 1e-9 {
		t.Fatalf("view round trip %v -> %v", p, back)
	}
	if s.Document().CameraAt(0, 0).MapObjects[0].Rect != before {
		t.Fatalf("zoom changed model coordinates")
	}
}

func TestRemoveItemDeselects(t *testing.T) {
	s, _ := newTestScene(t)
	h := door(s)
	s.SetSelection([]model.Handle{h})
	if !s.RemoveItem(h) {
		t.Fatalf("remove failed")
	}
	if s.IsSelected(h) || len(s.Items()) != 5 {
		t.Fatalf("item still present")
	}
	if _, ok := s.ItemAt(v(50, 150)); ok {
		t.Fatalf("removed item still hit")
	}
}
