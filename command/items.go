package command

import (
	"fmt"
	"log"

	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

type itemSet struct {
	doc     *model.Document
	scene   *scene.Scene
	insp    Inspector
	places  []model.Placement
	prevSel []model.Handle
	text    string
}

func (c *itemSet) insert() []model.Handle {
	hs := make([]model.Handle, 0, len(c.places))
	for i := range c.places {
		h, err := c.doc.Insert(c.places[i])
		if err != nil {
			log.Printf("command: %s: %v", c.text, err)
			continue
		}
		c.places[i].Handle = h
		c.scene.AddItem(h)
		hs = append(hs, h)
	}
	return hs
}

func (c *itemSet) remove() {
	for i := len(c.places) - 1; i >= 0; i-- {
		h := c.places[i].Handle
		p, ok := c.doc.Remove(h)
		if !ok {
			continue
		}
		c.places[i] = p
		c.scene.RemoveItem(h)
	}
}

// insertReverse puts removed entities back so each lands on its original
// index.
func (c *itemSet) insertReverse() {
	for i := len(c.places) - 1; i >= 0; i-- {
		if _, err := c.doc.Insert(c.places[i]); err != nil {
			log.Printf("command: undo %s: %v", c.text, err)
			continue
		}
		c.scene.AddItem(c.places[i].Handle)
	}
}

func (c *itemSet) restoreSelection() {
	c.scene.SetSelection(c.prevSel)
	syncInspector(c.insp, c.scene.Selection())
}

// AddItems inserts new entities and selects them.
type AddItems struct {
	itemSet
}

// NewAddItems takes placements with a zero Handle; the first Redo issues
// handles that later Redos reuse.
func NewAddItems(doc *model.Document, sc *scene.Scene, insp Inspector, text string, places []model.Placement) *AddItems {
	c := &AddItems{itemSet{doc: doc, scene: sc, insp: insp, text: text}}
	for _, p := range places {
		if p.MapObject != nil {
			p.MapObject = p.MapObject.Clone()
		}
		if p.Collision != nil {
			p.Collision = p.Collision.Clone()
		}
		c.places = append(c.places, p)
	}
	return c
}

func (c *AddItems) Redo() {
	c.prevSel = c.scene.Selection()
	hs := c.insert()
	c.scene.SetSelection(hs)
	syncInspector(c.insp, hs)
}

func (c *AddItems) Undo() {
	c.remove()
	c.restoreSelection()
}

func (c *AddItems) Text() string { return c.text }

// Handles returns the handles issued by the last Redo.
func (c *AddItems) Handles() []model.Handle {
	out := make([]model.Handle, 0, len(c.places))
	for _, p := range c.places {
		if p.Handle != 0 {
			out = append(out, p.Handle)
		}
	}
	return out
}

// RemoveItems detaches entities; Undo puts them back with the same
// handles at the same indices.
type RemoveItems struct {
	itemSet
}

func NewRemoveItems(doc *model.Document, sc *scene.Scene, insp Inspector, text string, hs []model.Handle) *RemoveItems {
	c := &RemoveItems{itemSet{doc: doc, scene: sc, insp: insp, text: text}}
	for _, h := range hs {
		c.places = append(c.places, model.Placement{Handle: h})
	}
	return c
}

func (c *RemoveItems) Redo() {
	c.prevSel = c.scene.Selection()
	for i := range c.places {
		h := c.places[i].Handle
		p, ok := c.doc.Remove(h)
		if !ok {
			continue
		}
		c.places[i] = p
		c.scene.RemoveItem(h)
	}
	syncInspector(c.insp, c.scene.Selection())
}

func (c *RemoveItems) Undo() {
	c.insertReverse()
	c.restoreSelection()
}

func (c *RemoveItems) Text() string { return c.text }

const (
	TextAddObject    = "Add map object"
	TextAddCollision = "Add collision"
)

func PasteText(n int) string  { return fmt.Sprintf("Paste %d item(s)", n) }
func CutText(n int) string    { return fmt.Sprintf("Cut %d item(s)", n) }
func DeleteText(n int) string { return fmt.Sprintf("Delete %d item(s)", n) }
