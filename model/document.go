// Package model is the in-memory form of one level path: a grid of cameras
// holding map objects, a flat list of collision lines and the property
// schema every object is typed against.
//
// After load a Document is only mutated through the command stack. Views
// refer to entities by Handle and never hold entity pointers across
// commands.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Handle identifies a map object or collision inside one Document. Handles
// are issued by the Document and never reused.
type Handle uint64

// EntityKind tells map objects and collisions apart.
type EntityKind int

const (
	KindMapObject EntityKind = iota + 1
	KindCollision
)

func (k EntityKind) String() string {
	switch k {
	case KindMapObject:
		return "map object"
	case KindCollision:
		return "collision"
	default:
		return "unknown"
	}
}

// MapInfo is the path header.
type MapInfo struct {
	Game      string
	PathBnd   string
	PathID    int
	XGridSize int
	YGridSize int
	XSize     int
	YSize     int
}

// Rect is an axis aligned rectangle in level pixels.
type Rect struct {
	X, Y, W, H int
}

// Line is a segment in level pixels.
type Line struct {
	X1, Y1, X2, Y2 int
}

// PropertyKind records how a property's type resolved at load.
type PropertyKind int

const (
	PropertyUnresolved PropertyKind = iota
	PropertyBasic
	PropertyEnum
)

// Property is one typed value on a map object or collision.
type Property struct {
	Name     string
	TypeName string
	Visible  bool
	Kind     PropertyKind
	Basic    int64
	Enum     string
	// Raw holds the untouched JSON value of a property whose type is not in
	// the schema, so it survives a save.
	Raw json.RawMessage
}

// ValueString renders the value the way the inspector shows it.
func (p Property) ValueString() string {
	switch p.Kind {
	case PropertyBasic:
		return fmt.Sprintf("%d", p.Basic)
	case PropertyEnum:
		return p.Enum
	default:
		return string(p.Raw)
	}
}

func (p Property) clone() Property {
	out := p
	if p.Raw != nil {
		out.Raw = append(json.RawMessage(nil), p.Raw...)
	}
	return out
}

// MapObject is a rectangular, property bearing entity placed in a camera.
type MapObject struct {
	handle     Handle
	Name       string
	Structure  string
	Rect       Rect
	Properties []Property
}

// Handle returns the object's document handle, zero for detached copies.
func (o *MapObject) Handle() Handle { return o.handle }

// Clone returns a detached deep copy.
func (o *MapObject) Clone() *MapObject {
	out := &MapObject{Name: o.Name, Structure: o.Structure, Rect: o.Rect}
	out.Properties = cloneProperties(o.Properties)
	return out
}

// CollisionObject is a line segment of collision geometry.
type CollisionObject struct {
	handle     Handle
	Name       string
	Line       Line
	Properties []Property
}

// Handle returns the collision's document handle, zero for detached copies.
func (c *CollisionObject) Handle() Handle { return c.handle }

// Clone returns a detached deep copy.
func (c *CollisionObject) Clone() *CollisionObject {
	out := &CollisionObject{Name: c.Name, Line: c.Line}
	out.Properties = cloneProperties(c.Properties)
	return out
}

func cloneProperties(src []Property) []Property {
	if src == nil {
		return nil
	}
	out := make([]Property, len(src))
	for i, p := range src {
		out[i] = p.clone()
	}
	return out
}

// PropertyIndex returns the index of the named property or -1.
func PropertyIndex(props []Property, name string) int {
	for i := range props {
		if props[i].Name == name {
			return i
		}
	}
	return -1
}

// Camera is one grid cell.
type Camera struct {
	Name       string
	ID         int
	X, Y       int
	MapObjects []*MapObject
}

type entry struct {
	kind EntityKind
	cam  *Camera
	obj  *MapObject
	col  *CollisionObject
}

// Document owns every entity of a loaded path.
type Document struct {
	info       MapInfo
	apiVersion int
	schema     *Schema
	cameras    []*Camera
	grid       map[[2]int]*Camera
	collisions []*CollisionObject

	nextHandle Handle
	entities   map[Handle]entry
}

func newDocument(info MapInfo, schema *Schema) *Document {
	return &Document{
		info:       info,
		apiVersion: APIVersion,
		schema:     schema,
		grid:       make(map[[2]int]*Camera),
		entities:   make(map[Handle]entry),
	}
}

// MapInfo returns the path header.
func (d *Document) MapInfo() MapInfo { return d.info }

// Schema returns the property schema loaded with the document.
func (d *Document) Schema() *Schema { return d.schema }

// SchemaID identifies the dataset the schema belongs to. Clipboard payloads
// are only accepted by documents with the same id.
func (d *Document) SchemaID() string { return d.info.Game }

// Cameras returns cameras in file order.
func (d *Document) Cameras() []*Camera { return d.cameras }

// CameraAt returns the camera at grid cell (x, y) or nil.
func (d *Document) CameraAt(x, y int) *Camera {
	return d.grid[[2]int{x, y}]
}

// Collisions returns collision objects in file order.
func (d *Document) Collisions() []*CollisionObject { return d.collisions }

// MapObject resolves h to a live map object.
func (d *Document) MapObject(h Handle) (*MapObject, bool) {
	e, ok := d.entities[h]
	if !ok || e.kind != KindMapObject {
		return nil, false
	}
	return e.obj, true
}

// Collision resolves h to a live collision object.
func (d *Document) Collision(h Handle) (*CollisionObject, bool) {
	e, ok := d.entities[h]
	if !ok || e.kind != KindCollision {
		return nil, false
	}
	return e.col, true
}

// Kind reports the entity kind behind h, zero when h is not live.
func (d *Document) Kind(h Handle) EntityKind {
	return d.entities[h].kind
}

// Properties returns the live property slice of the entity behind h.
func (d *Document) Properties(h Handle) ([]Property, bool) {
	e, ok := d.entities[h]
	if !ok {
		return nil, false
	}
	if e.kind == KindMapObject {
		return e.obj.Properties, true
	}
	return e.col.Properties, true
}

// Name returns the name of the entity behind h.
func (d *Document) Name(h Handle) (string, bool) {
	e, ok := d.entities[h]
	if !ok {
		return "", false
	}
	if e.kind == KindMapObject {
		return e.obj.Name, true
	}
	return e.col.Name, true
}

// SetName renames the entity behind h.
func (d *Document) SetName(h Handle, name string) bool {
	e, ok := d.entities[h]
	if !ok {
		return false
	}
	if e.kind == KindMapObject {
		e.obj.Name = name
	} else {
		e.col.Name = name
	}
	return true
}

// SetProperty replaces property i of the entity behind h.
func (d *Document) SetProperty(h Handle, i int, p Property) bool {
	props, ok := d.Properties(h)
	if !ok || i < 0 || i >= len(props) {
		return false
	}
	props[i] = p.clone()
	return true
}

// Handles lists live handles of the given kind in document order.
func (d *Document) Handles(kind EntityKind) []Handle {
	var out []Handle
	switch kind {
	case KindMapObject:
		for _, cam := range d.cameras {
			for _, o := range cam.MapObjects {
				out = append(out, o.handle)
			}
		}
	case KindCollision:
		for _, c := range d.collisions {
			out = append(out, c.handle)
		}
	}
	return out
}

// Clone returns a deep copy that keeps every handle, so selections and
// commands recorded against d resolve against the copy too. The schema is
// shared; it is never mutated after load.
func (d *Document) Clone() *Document {
	out := newDocument(d.info, d.schema)
	out.apiVersion = d.apiVersion
	out.nextHandle = d.nextHandle
	for _, cam := range d.cameras {
		c := &Camera{Name: cam.Name, ID: cam.ID, X: cam.X, Y: cam.Y}
		for _, o := range cam.MapObjects {
			oc := o.Clone()
			oc.handle = o.handle
			c.MapObjects = append(c.MapObjects, oc)
			out.entities[oc.handle] = entry{kind: KindMapObject, cam: c, obj: oc}
		}
		out.cameras = append(out.cameras, c)
		out.grid[[2]int{c.X, c.Y}] = c
	}
	for _, col := range d.collisions {
		cc := col.Clone()
		cc.handle = col.handle
		out.collisions = append(out.collisions, cc)
		out.entities[cc.handle] = entry{kind: KindCollision, col: cc}
	}
	return out
}

func (d *Document) issue() Handle {
	d.nextHandle++
	return d.nextHandle
}

func (d *Document) addCamera(cam *Camera) {
	d.cameras = append(d.cameras, cam)
	d.grid[[2]int{cam.X, cam.Y}] = cam
	for _, o := range cam.MapObjects {
		o.handle = d.issue()
		d.entities[o.handle] = entry{kind: KindMapObject, cam: cam, obj: o}
	}
}

func (d *Document) addCollisionEntry(c *CollisionObject) {
	c.handle = d.issue()
	d.entities[c.handle] = entry{kind: KindCollision, col: c}
}

// Placement describes where an entity lives so it can be detached and
// later put back in exactly the same slot with the same handle.
type Placement struct {
	Handle    Handle
	Kind      EntityKind
	CamX      int
	CamY      int
	Index     int
	MapObject *MapObject
	Collision *CollisionObject
}

// Insert attaches the entity described by p. A zero p.Handle issues a new
// handle; a non-zero one is reused so views and commands keep resolving.
// Index is clamped to the target slice.
func (d *Document) Insert(p Placement) (Handle, error) {
	if p.Handle != 0 {
		if _, live := d.entities[p.Handle]; live {
			return 0, fmt.Errorf("model: handle %d already live", p.Handle)
		}
	}
	h := p.Handle
	if h == 0 {
		h = d.issue()
	}
	switch p.Kind {
	case KindMapObject:
		if p.MapObject == nil {
			return 0, fmt.Errorf("model: insert map object: nil object")
		}
		cam := d.CameraAt(p.CamX, p.CamY)
		if cam == nil {
			return 0, fmt.Errorf("model: insert map object: no camera at %d,%d", p.CamX, p.CamY)
		}
		obj := p.MapObject.Clone()
		obj.handle = h
		idx := clampIndex(p.Index, len(cam.MapObjects))
		cam.MapObjects = append(cam.MapObjects, nil)
		copy(cam.MapObjects[idx+1:], cam.MapObjects[idx:])
		cam.MapObjects[idx] = obj
		d.entities[h] = entry{kind: KindMapObject, cam: cam, obj: obj}
	case KindCollision:
		if p.Collision == nil {
			return 0, fmt.Errorf("model: insert collision: nil collision")
		}
		col := p.Collision.Clone()
		col.handle = h
		idx := clampIndex(p.Index, len(d.collisions))
		d.collisions = append(d.collisions, nil)
		copy(d.collisions[idx+1:], d.collisions[idx:])
		d.collisions[idx] = col
		d.entities[h] = entry{kind: KindCollision, col: col}
	default:
		return 0, fmt.Errorf("model: insert: unknown kind %d", p.Kind)
	}
	if h > d.nextHandle {
		d.nextHandle = h
	}
	return h, nil
}

// Remove detaches the entity behind h and returns a placement holding a
// detached copy that Insert accepts.
func (d *Document) Remove(h Handle) (Placement, bool) {
	e, ok := d.entities[h]
	if !ok {
		return Placement{}, false
	}
	p := Placement{Handle: h, Kind: e.kind}
	switch e.kind {
	case KindMapObject:
		idx := indexOf(e.cam.MapObjects, e.obj)
		p.CamX, p.CamY, p.Index = e.cam.X, e.cam.Y, idx
		p.MapObject = e.obj.Clone()
		e.cam.MapObjects = append(e.cam.MapObjects[:idx], e.cam.MapObjects[idx+1:]...)
	case KindCollision:
		idx := indexOf(d.collisions, e.col)
		p.Index = idx
		p.Collision = e.col.Clone()
		d.collisions = append(d.collisions[:idx], d.collisions[idx+1:]...)
	}
	delete(d.entities, h)
	return p, true
}

// Locate returns the placement of a live entity without detaching it.
func (d *Document) Locate(h Handle) (Placement, bool) {
	e, ok := d.entities[h]
	if !ok {
		return Placement{}, false
	}
	p := Placement{Handle: h, Kind: e.kind}
	if e.kind == KindMapObject {
		p.CamX, p.CamY, p.Index = e.cam.X, e.cam.Y, indexOf(e.cam.MapObjects, e.obj)
		p.MapObject = e.obj
	} else {
		p.Index = indexOf(d.collisions, e.col)
		p.Collision = e.col
	}
	return p, true
}

// CameraCellAt maps a level pixel position to the grid cell containing it,
// clamped to the grid.
func (d *Document) CameraCellAt(x, y int) (int, int) {
	cx, cy := 0, 0
	if d.info.XGridSize > 0 {
		cx = x / d.info.XGridSize
	}
	if d.info.YGridSize > 0 {
		cy = y / d.info.YGridSize
	}
	return clamp(cx, 0, d.info.XSize-1), clamp(cy, 0, d.info.YSize-1)
}

// CreateAsNewPath turns a loaded path into an empty template for a new
// path: header and cameras are kept, every object and collision is dropped.
func (d *Document) CreateAsNewPath(pathID int) {
	d.info.PathID = pathID
	for _, cam := range d.cameras {
		for _, o := range cam.MapObjects {
			delete(d.entities, o.handle)
		}
		cam.MapObjects = nil
	}
	for _, c := range d.collisions {
		delete(d.entities, c.handle)
	}
	d.collisions = nil
}

// NewMapObject instantiates structure with default property values at rect.
func (d *Document) NewMapObject(structure string, rect Rect) (*MapObject, error) {
	st, ok := d.schema.Structure(structure)
	if !ok {
		return nil, fmt.Errorf("model: unknown object structure %q", structure)
	}
	return &MapObject{
		Name:       structure,
		Structure:  structure,
		Rect:       rect,
		Properties: d.schema.defaults(st.Properties),
	}, nil
}

// NewCollision instantiates a collision line with default properties.
func (d *Document) NewCollision(line Line) *CollisionObject {
	return &CollisionObject{
		Line:       line,
		Properties: d.schema.defaults(d.schema.CollisionStructure),
	}
}

func indexOf[T comparable](s []T, v T) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}
	return -1
}

func clampIndex(i, n int) int {
	if i < 0 || i > n {
		return n
	}
	return i
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Title names the path the way tabs and generated file names show it.
func (d *Document) Title() string {
	return strings.Join([]string{d.info.Game, d.info.PathBnd, fmt.Sprint(d.info.PathID)}, "_")
}
