package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Equal reports whether two documents describe the same path. Cameras are
// matched by grid position, map objects within a camera and collisions are
// compared as unordered collections, properties keep their order.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.info != b.info {
		return false
	}
	if !reflect.DeepEqual(a.schema.encodeForCompare(), b.schema.encodeForCompare()) {
		return false
	}
	if len(a.cameras) != len(b.cameras) {
		return false
	}
	for _, ca := range a.cameras {
		cb := b.CameraAt(ca.X, ca.Y)
		if cb == nil || ca.Name != cb.Name || ca.ID != cb.ID {
			return false
		}
		if !sameMultiset(objectKeys(ca.MapObjects), objectKeys(cb.MapObjects)) {
			return false
		}
	}
	return sameMultiset(collisionKeys(a.collisions), collisionKeys(b.collisions))
}

func (s *Schema) encodeForCompare() *schemaJSON {
	if s == nil {
		return nil
	}
	return encodeSchema(s)
}

func objectKeys(objs []*MapObject) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, fmt.Sprintf("%s|%s|%v|%s", o.Name, o.Structure, o.Rect, propertiesKey(o.Properties)))
	}
	return out
}

func collisionKeys(cols []*CollisionObject) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, fmt.Sprintf("%s|%v|%s", c.Name, c.Line, propertiesKey(c.Properties)))
	}
	return out
}

func propertiesKey(props []Property) string {
	var buf bytes.Buffer
	for _, p := range props {
		raw := p.Raw
		if p.Kind == PropertyUnresolved {
			var compact bytes.Buffer
			if json.Compact(&compact, raw) == nil {
				raw = compact.Bytes()
			}
		}
		fmt.Fprintf(&buf, "%s:%s:%t:%d:%d:%s:%s;", p.Name, p.TypeName, p.Visible, p.Kind, p.Basic, p.Enum, raw)
	}
	return buf.String()
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
