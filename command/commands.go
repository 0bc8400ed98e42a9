package command

import (
	"fmt"

	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

// Inspector is the part of the property inspector commands keep in sync.
type Inspector interface {
	Populate(h model.Handle)
	Clear()
	Target() (model.Handle, bool)
}

// syncInspector shows the single selected entity, or nothing.
func syncInspector(insp Inspector, sel []model.Handle) {
	if insp == nil {
		return
	}
	if len(sel) == 1 {
		insp.Populate(sel[0])
		return
	}
	insp.Clear()
}

func refreshInspector(insp Inspector, h model.Handle) {
	if insp == nil {
		return
	}
	if t, ok := insp.Target(); ok && t == h {
		insp.Populate(h)
	}
}

// Selection records a selection change made by a gesture.
type Selection struct {
	scene    *scene.Scene
	insp     Inspector
	old, new []model.Handle
	first    bool
}

// NewSelection expects the scene to already show new. The first Redo only
// resyncs the inspector.
func NewSelection(sc *scene.Scene, insp Inspector, old, new []model.Handle) *Selection {
	return &Selection{
		scene: sc,
		insp:  insp,
		old:   append([]model.Handle(nil), old...),
		new:   append([]model.Handle(nil), new...),
		first: true,
	}
}

func (c *Selection) Redo() {
	if c.first {
		c.first = false
	} else {
		c.scene.SetSelection(c.new)
	}
	syncInspector(c.insp, c.new)
}

func (c *Selection) Undo() {
	c.scene.SetSelection(c.old)
	syncInspector(c.insp, c.old)
}

func (c *Selection) Text() string {
	if len(c.new) == 0 {
		return "Clear selection"
	}
	return fmt.Sprintf("Select %d item(s)", len(c.new))
}

// MoveItems records a move or resize of one or more items as exact
// geometry snapshots.
type MoveItems struct {
	scene    *scene.Scene
	old, new scene.Positions
	first    bool
	text     string
}

// NewMoveItems expects the scene to already show new; the first Redo is a
// no-op.
func NewMoveItems(sc *scene.Scene, old, new scene.Positions) *MoveItems {
	return &MoveItems{
		scene: sc,
		old:   old.Clone(),
		new:   new.Clone(),
		first: true,
		text:  moveText(old, new),
	}
}

func (c *MoveItems) Redo() {
	if c.first {
		c.first = false
		return
	}
	c.new.Restore(c.scene)
}

func (c *MoveItems) Undo() { c.old.Restore(c.scene) }

func (c *MoveItems) Text() string { return c.text }

func moveText(old, new scene.Positions) string {
	if len(new) != 1 {
		return fmt.Sprintf("Move %d item(s)", len(new))
	}
	for h, ng := range new {
		og := old[h]
		moved := og.Pos != ng.Pos
		if ng.Kind == model.KindCollision {
			reshaped := og.A != ng.A || og.B != ng.B
			switch {
			case moved && reshaped:
				return "Move and resize collision"
			case moved:
				return "Move collision"
			default:
				return "Move collision point"
			}
		}
		reshaped := og.Rect != ng.Rect
		switch {
		case moved && reshaped:
			return "Move and resize map object"
		case moved:
			return "Move map object"
		default:
			return "Resize map object"
		}
	}
	return ""
}

// EditProperty replaces one property value.
type EditProperty struct {
	doc           *model.Document
	insp          Inspector
	h             model.Handle
	index         int
	before, after model.Property
}

func NewEditProperty(doc *model.Document, insp Inspector, h model.Handle, index int, before, after model.Property) *EditProperty {
	return &EditProperty{doc: doc, insp: insp, h: h, index: index, before: before, after: after}
}

func (c *EditProperty) Redo() {
	c.doc.SetProperty(c.h, c.index, c.after)
	refreshInspector(c.insp, c.h)
}

func (c *EditProperty) Undo() {
	c.doc.SetProperty(c.h, c.index, c.before)
	refreshInspector(c.insp, c.h)
}

func (c *EditProperty) Text() string {
	return fmt.Sprintf("Change %s from %s to %s", c.after.Name, c.before.ValueString(), c.after.ValueString())
}

// Rename changes the name of a map object or collision.
type Rename struct {
	doc           *model.Document
	insp          Inspector
	h             model.Handle
	before, after string
}

func NewRename(doc *model.Document, insp Inspector, h model.Handle, before, after string) *Rename {
	return &Rename{doc: doc, insp: insp, h: h, before: before, after: after}
}

func (c *Rename) Redo() {
	c.doc.SetName(c.h, c.after)
	refreshInspector(c.insp, c.h)
}

func (c *Rename) Undo() {
	c.doc.SetName(c.h, c.before)
	refreshInspector(c.insp, c.h)
}

func (c *Rename) Text() string {
	return fmt.Sprintf("Rename %s to %s", c.before, c.after)
}
