package scene

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/model"
)

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModShift
)

type gestureMode int

const (
	gestureMove gestureMode = iota + 1
	gestureResize
	gestureBand
)

type handleID int

const (
	handleTopLeft handleID = iota + 1
	handleTopRight
	handleBottomLeft
	handleBottomRight
	handleLineA
	handleLineB
)

type gesture struct {
	active bool
	mode   gestureMode
	press  cp.Vector
	oldSel []model.Handle
	before Positions

	target model.Handle
	handle handleID

	bandBase map[model.Handle]bool
	band     cp.BB
}

// Press starts a gesture at scene point pt. Only the left button starts
// anything; other buttons are rejected and return false.
func (s *Scene) Press(b Button, pt cp.Vector, mods Modifiers) bool {
	if b != ButtonLeft || s.g.active {
		return false
	}
	s.g = gesture{active: true, press: pt, oldSel: s.Selection()}

	if h, hd, ok := s.handleAt(pt); ok {
		s.g.mode = gestureResize
		s.g.target = h
		s.g.handle = hd
		s.g.before = s.Snapshot(h)
		return true
	}

	if h, ok := s.ItemAt(pt); ok {
		switch {
		case mods&ModCtrl != 0 && s.selected[h]:
			delete(s.selected, h)
		case mods&ModCtrl != 0:
			s.selected[h] = true
		case !s.selected[h]:
			s.SetSelection([]model.Handle{h})
		}
		s.g.mode = gestureMove
		s.g.before = s.Snapshot(s.Selection()...)
		return true
	}

	if mods&ModCtrl == 0 {
		s.selected = make(map[model.Handle]bool)
	}
	s.g.mode = gestureBand
	s.g.bandBase = make(map[model.Handle]bool, len(s.selected))
	for h := range s.selected {
		s.g.bandBase[h] = true
	}
	s.g.band = cp.BB{L: pt.X, B: pt.Y, R: pt.X, T: pt.Y}
	return true
}

// Drag updates the active gesture. It returns false when no gesture is in
// progress.
func (s *Scene) Drag(pt cp.Vector) bool {
	if !s.g.active {
		return false
	}
	switch s.g.mode {
	case gestureMove:
		delta := pt.Sub(s.g.press)
		if delta.X == 0 && delta.Y == 0 {
			s.g.before.Restore(s)
			break
		}
		for _, h := range s.g.before.Handles() {
			g := s.g.before[h]
			g.Pos = s.opts.Snap.apply(g.Kind, g.Pos.Add(delta))
			s.SetGeometry(h, g)
		}
	case gestureResize:
		if pt == s.g.press {
			s.g.before.Restore(s)
			break
		}
		g := s.g.before[s.g.target]
		local := s.opts.Snap.apply(g.Kind, pt).Sub(g.Pos)
		s.SetGeometry(s.g.target, resized(g, s.g.handle, local))
	case gestureBand:
		s.g.band = cp.BB{
			L: math.Min(s.g.press.X, pt.X), B: math.Min(s.g.press.Y, pt.Y),
			R: math.Max(s.g.press.X, pt.X), T: math.Max(s.g.press.Y, pt.Y),
		}
		sel := make(map[model.Handle]bool, len(s.g.bandBase))
		for h := range s.g.bandBase {
			sel[h] = true
		}
		for _, h := range s.ItemsIn(s.g.band) {
			sel[h] = true
		}
		s.selected = sel
	}
	return true
}

// Release ends the gesture. Observers see at most one SelectionChanged and
// then at most one ItemsMoved.
func (s *Scene) Release(b Button, pt cp.Vector) bool {
	if b != ButtonLeft || !s.g.active {
		return false
	}
	s.Drag(pt)
	g := s.g
	s.g = gesture{}

	newSel := s.Selection()
	if !sameHandles(g.oldSel, newSel) && s.OnSelectionChanged != nil {
		s.OnSelectionChanged(g.oldSel, newSel)
	}
	if len(g.before) > 0 {
		after := s.Snapshot(g.before.Handles()...)
		if !after.Equal(g.before) && s.OnItemsMoved != nil {
			s.OnItemsMoved(g.before, after)
		}
	}
	return true
}

// Band returns the rubber band rectangle while one is being dragged.
func (s *Scene) Band() (cp.BB, bool) {
	if !s.g.active || s.g.mode != gestureBand {
		return cp.BB{}, false
	}
	return s.g.band, true
}

// Dragging reports whether a gesture is in progress.
func (s *Scene) Dragging() bool { return s.g.active }

// handleAt finds a resize handle of the single selected item under pt.
func (s *Scene) handleAt(pt cp.Vector) (model.Handle, handleID, bool) {
	if len(s.selected) != 1 {
		return 0, 0, false
	}
	var h model.Handle
	for sel := range s.selected {
		h = sel
	}
	it := s.items[h]
	near := func(v cp.Vector) bool {
		return math.Abs(v.X-pt.X) <= s.opts.HandleSize && math.Abs(v.Y-pt.Y) <= s.opts.HandleSize
	}
	if it.Kind == model.KindCollision {
		a, b := it.Endpoints()
		switch {
		case near(a):
			return h, handleLineA, true
		case near(b):
			return h, handleLineB, true
		}
		return 0, 0, false
	}
	bb := it.Bounds()
	corners := []struct {
		v  cp.Vector
		id handleID
	}{
		{cp.Vector{X: bb.L, Y: bb.B}, handleTopLeft},
		{cp.Vector{X: bb.R, Y: bb.B}, handleTopRight},
		{cp.Vector{X: bb.L, Y: bb.T}, handleBottomLeft},
		{cp.Vector{X: bb.R, Y: bb.T}, handleBottomRight},
	}
	for _, c := range corners {
		if near(c.v) {
			return h, c.id, true
		}
	}
	return 0, 0, false
}

func resized(g Geometry, hd handleID, local cp.Vector) Geometry {
	switch hd {
	case handleLineA:
		g.A = local
		return g
	case handleLineB:
		g.B = local
		return g
	case handleTopLeft:
		g.Rect.L, g.Rect.B = local.X, local.Y
	case handleTopRight:
		g.Rect.R, g.Rect.B = local.X, local.Y
	case handleBottomLeft:
		g.Rect.L, g.Rect.T = local.X, local.Y
	case handleBottomRight:
		g.Rect.R, g.Rect.T = local.X, local.Y
	}
	if g.Rect.L > g.Rect.R {
		g.Rect.L, g.Rect.R = g.Rect.R, g.Rect.L
	}
	if g.Rect.B > g.Rect.T {
		g.Rect.B, g.Rect.T = g.Rect.T, g.Rect.B
	}
	return g
}

func sameHandles(a, b []model.Handle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
