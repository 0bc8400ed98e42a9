// Package clipboard carries copied map objects and collisions between tabs.
// A payload is tagged with the game it was copied from and only pastes into
// documents of the same game whose schema types every property the same
// way.
package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/milk9111/pathedit/model"
)

// ErrIncompatible rejects a paste across games or schemas.
var ErrIncompatible = errors.New("You can't cut/copy paste data between AO and AE")

const format = "pathedit-clipboard"

// Data is one copied selection. Entities are detached copies.
type Data struct {
	SourceGame string
	MapObjects []*model.MapObject
	Collisions []*model.CollisionObject
}

// Copy captures detached copies of the entities behind hs.
func Copy(doc *model.Document, hs []model.Handle) *Data {
	d := &Data{SourceGame: doc.SchemaID()}
	for _, h := range hs {
		if o, ok := doc.MapObject(h); ok {
			d.MapObjects = append(d.MapObjects, o.Clone())
		} else if c, ok := doc.Collision(h); ok {
			d.Collisions = append(d.Collisions, c.Clone())
		}
	}
	return d
}

// Len is the number of copied entities.
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.MapObjects) + len(d.Collisions)
}

// Validate checks that d can be pasted into target.
func (d *Data) Validate(target *model.Document) error {
	if d.SourceGame != target.SchemaID() {
		return ErrIncompatible
	}
	for _, o := range d.MapObjects {
		if err := checkProperties(target, o.Name, o.Properties); err != nil {
			return err
		}
	}
	for _, c := range d.Collisions {
		if err := checkProperties(target, c.Name, c.Properties); err != nil {
			return err
		}
	}
	return nil
}

func checkProperties(target *model.Document, owner string, props []model.Property) error {
	for _, p := range props {
		ref := target.FindType(p.TypeName)
		if ref.Kind() != p.Kind {
			return fmt.Errorf("clipboard: %s.%s: type %s differs: %w", owner, p.Name, p.TypeName, ErrIncompatible)
		}
		switch {
		case ref.Basic != nil && !ref.Basic.Contains(p.Basic):
			return fmt.Errorf("clipboard: %s.%s: %d out of range: %w", owner, p.Name, p.Basic, ErrIncompatible)
		case ref.Enum != nil && !ref.Enum.Has(p.Enum):
			return fmt.Errorf("clipboard: %s.%s: unknown value %q: %w", owner, p.Name, p.Enum, ErrIncompatible)
		}
	}
	return nil
}

type wire struct {
	Format     string                   `json:"format"`
	Game       string                   `json:"game"`
	MapObjects []*model.MapObject       `json:"map_objects"`
	Collisions []*model.CollisionObject `json:"collisions"`
}

// Marshal encodes d for the system clipboard.
func (d *Data) Marshal() ([]byte, error) {
	b, err := json.Marshal(wire{Format: format, Game: d.SourceGame, MapObjects: d.MapObjects, Collisions: d.Collisions})
	if err != nil {
		return nil, fmt.Errorf("clipboard: marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes text taken from the system clipboard. Text that is not
// a payload written by Marshal is rejected.
func Unmarshal(b []byte) (*Data, error) {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("clipboard: unmarshal: %w", err)
	}
	if w.Format != format {
		return nil, fmt.Errorf("clipboard: not a pathedit payload")
	}
	d := &Data{SourceGame: w.Game, MapObjects: w.MapObjects, Collisions: w.Collisions}
	for _, o := range d.MapObjects {
		normalize(o.Properties)
	}
	for _, c := range d.Collisions {
		normalize(c.Properties)
	}
	return d, nil
}

// normalize drops the raw value decoded for resolved properties.
func normalize(props []model.Property) {
	for i := range props {
		if props[i].Kind != model.PropertyUnresolved {
			props[i].Raw = nil
		}
	}
}
