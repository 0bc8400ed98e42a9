package scene

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/model"
)

const (
	ZoomStep     = 0.1
	minZoomSteps = -5
	maxZoomSteps = 14
)

// Zoom is the current view scale. It only changes the view transform.
func (s *Scene) Zoom() float64 {
	return 1 + ZoomStep*float64(s.zoomSteps)
}

// ZoomIn scales the view up one step. It reports false at the limit.
func (s *Scene) ZoomIn() bool {
	if s.zoomSteps >= maxZoomSteps {
		return false
	}
	s.zoomSteps++
	return true
}

// ZoomOut scales the view down one step. It reports false at the limit.
func (s *Scene) ZoomOut() bool {
	if s.zoomSteps <= minZoomSteps {
		return false
	}
	s.zoomSteps--
	return true
}

func (s *Scene) ResetZoom() { s.zoomSteps = 0 }

// SceneToView maps a scene point to view pixels.
func (s *Scene) SceneToView(p cp.Vector) cp.Vector {
	origin := cp.Vector{X: s.rect.L, Y: s.rect.B}
	return p.Sub(origin).Mult(s.Zoom()).Sub(s.Scroll)
}

// ViewToScene maps view pixels back to a scene point.
func (s *Scene) ViewToScene(p cp.Vector) cp.Vector {
	origin := cp.Vector{X: s.rect.L, Y: s.rect.B}
	return p.Add(s.Scroll).Mult(1 / s.Zoom()).Add(origin)
}

// Snap configures grid snapping per entity kind and axis.
type Snap struct {
	MapObjectX bool
	MapObjectY bool
	CollisionX bool
	CollisionY bool
	Step       int
}

func (sn Snap) apply(kind model.EntityKind, v cp.Vector) cp.Vector {
	if sn.Step <= 1 {
		return v
	}
	sx, sy := sn.MapObjectX, sn.MapObjectY
	if kind == model.KindCollision {
		sx, sy = sn.CollisionX, sn.CollisionY
	}
	step := float64(sn.Step)
	if sx {
		v.X = math.Round(v.X/step) * step
	}
	if sy {
		v.Y = math.Round(v.Y/step) * step
	}
	return v
}
