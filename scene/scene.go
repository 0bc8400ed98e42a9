// Package scene projects a model.Document onto interactive visual items and
// turns pointer gestures into selection and move notifications.
//
// Items are views: they hold a model.Handle, never an entity pointer, and
// every geometry change is written straight back to the document.
package scene

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/model"
)

// Margin is the empty border around the camera grid, in level pixels.
const Margin = 100

// Geometry is the exact placement of one item. Map objects use Rect in
// item-local coordinates; collisions use the local endpoints A and B.
type Geometry struct {
	Kind model.EntityKind
	Pos  cp.Vector
	Rect cp.BB
	A, B cp.Vector
}

// Bounds returns the scene-space bounding box.
func (g Geometry) Bounds() cp.BB {
	if g.Kind == model.KindCollision {
		a, b := g.Pos.Add(g.A), g.Pos.Add(g.B)
		return cp.BB{
			L: math.Min(a.X, b.X), B: math.Min(a.Y, b.Y),
			R: math.Max(a.X, b.X), T: math.Max(a.Y, b.Y),
		}
	}
	return cp.BB{L: g.Pos.X + g.Rect.L, B: g.Pos.Y + g.Rect.B, R: g.Pos.X + g.Rect.R, T: g.Pos.Y + g.Rect.T}
}

func (g Geometry) rounded() Geometry {
	rv := func(v cp.Vector) cp.Vector { return cp.Vector{X: math.Round(v.X), Y: math.Round(v.Y)} }
	g.Pos, g.A, g.B = rv(g.Pos), rv(g.A), rv(g.B)
	g.Rect = cp.BB{L: math.Round(g.Rect.L), B: math.Round(g.Rect.B), R: math.Round(g.Rect.R), T: math.Round(g.Rect.T)}
	return g
}

// Endpoints returns a collision's endpoints in scene space.
func (g Geometry) Endpoints() (cp.Vector, cp.Vector) {
	return g.Pos.Add(g.A), g.Pos.Add(g.B)
}

// Item is the visual projection of one map object or collision.
type Item struct {
	Handle model.Handle
	Geometry
}

// Cell is one camera slot of the grid. Empty cells have no camera.
type Cell struct {
	X, Y  int
	Name  string
	Empty bool
	BB    cp.BB
}

type Options struct {
	Snap Snap
	// HandleSize is the half width of resize handles in scene pixels.
	HandleSize float64
	// LineTolerance is how far from a collision line a press still hits it.
	LineTolerance float64
}

func (o Options) withDefaults() Options {
	if o.HandleSize <= 0 {
		o.HandleSize = 4
	}
	if o.LineTolerance <= 0 {
		o.LineTolerance = 4
	}
	return o
}

// Scene holds every visual item of one document.
type Scene struct {
	doc   *model.Document
	opts  Options
	cells []Cell
	rect  cp.BB

	items map[model.Handle]*Item
	// order is the paint order; hit testing walks it backwards.
	order    []model.Handle
	selected map[model.Handle]bool

	zoomSteps int
	Scroll    cp.Vector

	g gesture

	// OnSelectionChanged and OnItemsMoved are called synchronously from
	// Release, selection first, each at most once per gesture.
	OnSelectionChanged func(old, new []model.Handle)
	OnItemsMoved       func(old, new Positions)
}

// New builds one cell per grid slot, one rect item per map object and one
// line item per collision.
func New(doc *model.Document, opts Options) *Scene {
	s := &Scene{
		doc:      doc,
		opts:     opts.withDefaults(),
		items:    make(map[model.Handle]*Item),
		selected: make(map[model.Handle]bool),
	}
	info := doc.MapInfo()
	gw, gh := float64(info.XGridSize), float64(info.YGridSize)
	for y := 0; y < info.YSize; y++ {
		for x := 0; x < info.XSize; x++ {
			c := Cell{X: x, Y: y, BB: cp.BB{L: float64(x) * gw, B: float64(y) * gh, R: float64(x+1) * gw, T: float64(y+1) * gh}}
			if cam := doc.CameraAt(x, y); cam != nil {
				c.Name = cam.Name
			} else {
				c.Empty = true
			}
			s.cells = append(s.cells, c)
		}
	}
	s.rect = cp.BB{L: -Margin, B: -Margin, R: float64(info.XSize)*gw + Margin, T: float64(info.YSize)*gh + Margin}

	for _, h := range doc.Handles(model.KindCollision) {
		s.AddItem(h)
	}
	for _, h := range doc.Handles(model.KindMapObject) {
		s.AddItem(h)
	}
	return s
}

func (s *Scene) Document() *model.Document { return s.doc }

// Cells returns the camera grid in row major order.
func (s *Scene) Cells() []Cell { return s.cells }

// Rect is the scene extent: the camera grid plus Margin on every side.
func (s *Scene) Rect() cp.BB { return s.rect }

// SetSnap replaces the snapping settings.
func (s *Scene) SetSnap(snap Snap) { s.opts.Snap = snap }

func (s *Scene) Snap() Snap { return s.opts.Snap }

// Items returns items in paint order.
func (s *Scene) Items() []*Item {
	out := make([]*Item, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.items[h])
	}
	return out
}

// Item returns the item bound to h.
func (s *Scene) Item(h model.Handle) (*Item, bool) {
	it, ok := s.items[h]
	return it, ok
}

// AddItem creates the item for a live document entity. It is a no-op when
// the item already exists or the handle is not live.
func (s *Scene) AddItem(h model.Handle) bool {
	if _, ok := s.items[h]; ok {
		return false
	}
	g, ok := geometryFor(s.doc, h)
	if !ok {
		return false
	}
	s.items[h] = &Item{Handle: h, Geometry: g}
	s.order = append(s.order, h)
	return true
}

// RemoveItem drops the item for h and deselects it.
func (s *Scene) RemoveItem(h model.Handle) bool {
	if _, ok := s.items[h]; !ok {
		return false
	}
	delete(s.items, h)
	delete(s.selected, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Refresh re-reads the geometry of h from the document.
func (s *Scene) Refresh(h model.Handle) {
	it, ok := s.items[h]
	if !ok {
		return
	}
	if g, ok := geometryFor(s.doc, h); ok {
		it.Geometry = g
	}
}

// SetGeometry places the item for h and writes the result to the document.
// The geometry is rounded to whole level pixels first so the item always
// matches the document.
func (s *Scene) SetGeometry(h model.Handle, g Geometry) bool {
	it, ok := s.items[h]
	if !ok || it.Kind != g.Kind {
		return false
	}
	it.Geometry = g.rounded()
	s.writeBack(it)
	return true
}

func geometryFor(doc *model.Document, h model.Handle) (Geometry, bool) {
	if o, ok := doc.MapObject(h); ok {
		return Geometry{
			Kind: model.KindMapObject,
			Pos:  cp.Vector{X: float64(o.Rect.X), Y: float64(o.Rect.Y)},
			Rect: cp.BB{R: float64(o.Rect.W), T: float64(o.Rect.H)},
		}, true
	}
	if c, ok := doc.Collision(h); ok {
		return Geometry{
			Kind: model.KindCollision,
			Pos:  cp.Vector{X: float64(c.Line.X1), Y: float64(c.Line.Y1)},
			B:    cp.Vector{X: float64(c.Line.X2 - c.Line.X1), Y: float64(c.Line.Y2 - c.Line.Y1)},
		}, true
	}
	return Geometry{}, false
}

func (s *Scene) writeBack(it *Item) {
	switch it.Kind {
	case model.KindMapObject:
		o, ok := s.doc.MapObject(it.Handle)
		if !ok {
			return
		}
		bb := it.Bounds()
		o.Rect = model.Rect{X: round(bb.L), Y: round(bb.B), W: round(bb.R - bb.L), H: round(bb.T - bb.B)}
	case model.KindCollision:
		c, ok := s.doc.Collision(it.Handle)
		if !ok {
			return
		}
		a, b := it.Endpoints()
		c.Line = model.Line{X1: round(a.X), Y1: round(a.Y), X2: round(b.X), Y2: round(b.Y)}
	}
}

func round(v float64) int { return int(math.Round(v)) }

// Selection returns the selected handles in ascending order.
func (s *Scene) Selection() []model.Handle {
	out := make([]model.Handle, 0, len(s.selected))
	for h := range s.selected {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSelected reports whether h is selected.
func (s *Scene) IsSelected(h model.Handle) bool { return s.selected[h] }

// SetSelection replaces the selection without notifying observers. Handles
// without an item are ignored.
func (s *Scene) SetSelection(hs []model.Handle) {
	s.selected = make(map[model.Handle]bool, len(hs))
	for _, h := range hs {
		if _, ok := s.items[h]; ok {
			s.selected[h] = true
		}
	}
}

// ItemAt returns the topmost item under pt.
func (s *Scene) ItemAt(pt cp.Vector) (model.Handle, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		it := s.items[s.order[i]]
		if s.hits(it, pt) {
			return it.Handle, true
		}
	}
	return 0, false
}

// ItemsIn returns every item whose shape intersects bb, in paint order.
func (s *Scene) ItemsIn(bb cp.BB) []model.Handle {
	var out []model.Handle
	for _, h := range s.order {
		it := s.items[h]
		if it.Kind == model.KindCollision {
			a, b := it.Endpoints()
			if bb.ContainsVect(a) || bb.ContainsVect(b) || bb.IntersectsSegment(a, b) {
				out = append(out, h)
			}
			continue
		}
		if it.Bounds().Intersects(bb) {
			out = append(out, h)
		}
	}
	return out
}

func (s *Scene) hits(it *Item, pt cp.Vector) bool {
	if it.Kind == model.KindCollision {
		a, b := it.Endpoints()
		return segmentDistance(pt, a, b) <= s.opts.LineTolerance
	}
	return it.Bounds().ContainsVect(pt)
}

func segmentDistance(p, a, b cp.Vector) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Mult(t)))
}
