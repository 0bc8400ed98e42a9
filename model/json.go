package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/milk9111/pathedit/levelapi"
)

// APIVersion is the path JSON version this editor reads and writes.
const APIVersion = 2

// MinUpgradableAPIVersion is the oldest path JSON version the level tools
// can still upgrade. Older files cannot be opened at all.
const MinUpgradableAPIVersion = 1

var validGames = map[string]bool{"AO": true, "AE": true}

type docJSON struct {
	APIVersion *int        `json:"api_version"`
	Game       *string     `json:"game"`
	Map        *mapJSON    `json:"map"`
	Schema     *schemaJSON `json:"schema"`
}

type mapJSON struct {
	PathBnd    string          `json:"path_bnd"`
	PathID     *int            `json:"path_id"`
	XGridSize  *int            `json:"x_grid_size"`
	YGridSize  *int            `json:"y_grid_size"`
	XSize      *int            `json:"x_size"`
	YSize      *int            `json:"y_size"`
	Cameras    []cameraJSON    `json:"cameras"`
	Collisions []collisionJSON `json:"collisions"`
}

type cameraJSON struct {
	Name       string          `json:"name"`
	ID         int             `json:"id"`
	X          int             `json:"x"`
	Y          int             `json:"y"`
	MapObjects []mapObjectJSON `json:"map_objects"`
}

type mapObjectJSON struct {
	Name       string         `json:"name"`
	Structure  string         `json:"object_structures_type"`
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Properties []propertyJSON `json:"properties"`
}

type collisionJSON struct {
	Name       string         `json:"name,omitempty"`
	X1         int            `json:"x1"`
	Y1         int            `json:"y1"`
	X2         int            `json:"x2"`
	Y2         int            `json:"y2"`
	Properties []propertyJSON `json:"properties"`
}

type propertyJSON struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Visible bool            `json:"visible"`
	Value   json.RawMessage `json:"value"`
}

type schemaJSON struct {
	BasicTypes         []basicTypeJSON    `json:"basic_types"`
	Enums              []enumJSON         `json:"enums"`
	ObjectStructures   []structureJSON    `json:"object_structures"`
	CollisionStructure []propertySpecJSON `json:"collision_structure"`
}

type basicTypeJSON struct {
	Name     string `json:"name"`
	MinValue int64  `json:"min_value"`
	MaxValue int64  `json:"max_value"`
}

type enumJSON struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type structureJSON struct {
	Name       string             `json:"name"`
	Properties []propertySpecJSON `json:"properties"`
}

type propertySpecJSON struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

// LoadFile reads and loads the path JSON at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadFailure(levelapi.Wrap(levelapi.KindIORead, err, "%s", path))
	}
	defer f.Close()
	return Load(f)
}

// Load parses a path JSON document. It either returns a complete Document
// or a *LoadError; no partially built document escapes.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, loadFailure(levelapi.Wrap(levelapi.KindIORead, err, "read path json"))
	}
	doc, lerr := decode(data)
	if lerr != nil {
		return nil, loadFailure(lerr)
	}
	return doc, nil
}

func decode(data []byte) (*Document, *levelapi.Error) {
	var raw docJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, levelapi.Wrap(levelapi.KindInvalidJSON, err, "path json")
	}
	if raw.APIVersion == nil {
		return nil, levelapi.MissingKey("api_version")
	}
	if *raw.APIVersion < MinUpgradableAPIVersion {
		return nil, levelapi.New(levelapi.KindJSONVersionTooOld, "version %d, expected %d", *raw.APIVersion, APIVersion)
	}
	if *raw.APIVersion < APIVersion {
		return nil, levelapi.New(levelapi.KindJSONNeedsUpgrading, "version %d, expected %d", *raw.APIVersion, APIVersion)
	}
	if *raw.APIVersion > APIVersion {
		return nil, levelapi.New(levelapi.KindJSONVersionTooNew, "version %d, expected %d", *raw.APIVersion, APIVersion)
	}
	if raw.Game == nil {
		return nil, levelapi.MissingKey("game")
	}
	if !validGames[*raw.Game] {
		return nil, levelapi.New(levelapi.KindInvalidGame, "%q", *raw.Game)
	}
	if raw.Map == nil {
		return nil, levelapi.MissingKey("map")
	}
	if raw.Schema == nil {
		return nil, levelapi.MissingKey("schema")
	}

	info, lerr := decodeMapInfo(*raw.Game, raw.Map)
	if lerr != nil {
		return nil, lerr
	}
	schema, lerr := decodeSchema(raw.Schema)
	if lerr != nil {
		return nil, lerr
	}

	doc := newDocument(info, schema)
	for _, cj := range raw.Map.Cameras {
		cam, lerr := decodeCamera(cj, info, schema)
		if lerr != nil {
			return nil, lerr
		}
		if doc.CameraAt(cam.X, cam.Y) != nil {
			return nil, levelapi.New(levelapi.KindStructureMismatch, "two cameras at %d,%d", cam.X, cam.Y)
		}
		doc.addCamera(cam)
	}
	for i, cj := range raw.Map.Collisions {
		props, lerr := decodeProperties(cj.Properties, schema, fmt.Sprintf("collision %d", i))
		if lerr != nil {
			return nil, lerr
		}
		doc.collisions = append(doc.collisions, &CollisionObject{
			Name:       cj.Name,
			Line:       Line{X1: cj.X1, Y1: cj.Y1, X2: cj.X2, Y2: cj.Y2},
			Properties: props,
		})
		doc.addCollisionEntry(doc.collisions[len(doc.collisions)-1])
	}
	return doc, nil
}

func decodeMapInfo(game string, m *mapJSON) (MapInfo, *levelapi.Error) {
	required := []struct {
		key string
		v   *int
	}{
		{"path_id", m.PathID},
		{"x_grid_size", m.XGridSize},
		{"y_grid_size", m.YGridSize},
		{"x_size", m.XSize},
		{"y_size", m.YSize},
	}
	for _, r := range required {
		if r.v == nil {
			return MapInfo{}, levelapi.MissingKey(r.key)
		}
	}
	info := MapInfo{
		Game:      game,
		PathBnd:   m.PathBnd,
		PathID:    *m.PathID,
		XGridSize: *m.XGridSize,
		YGridSize: *m.YGridSize,
		XSize:     *m.XSize,
		YSize:     *m.YSize,
	}
	if info.XGridSize <= 0 || info.YGridSize <= 0 || info.XSize < 0 || info.YSize < 0 {
		return MapInfo{}, levelapi.New(levelapi.KindStructureMismatch, "grid %dx%d of %dx%d cells", info.XSize, info.YSize, info.XGridSize, info.YGridSize)
	}
	return info, nil
}

func decodeSchema(s *schemaJSON) (*Schema, *levelapi.Error) {
	schema := &Schema{}
	seen := make(map[string]bool)
	for _, b := range s.BasicTypes {
		if b.Name == "" {
			return nil, levelapi.New(levelapi.KindEmptyTypeName, "basic type")
		}
		if seen[b.Name] {
			return nil, levelapi.New(levelapi.KindDuplicateEnumName, "%s", b.Name)
		}
		seen[b.Name] = true
		schema.BasicTypes = append(schema.BasicTypes, &BasicType{Name: b.Name, Min: b.MinValue, Max: b.MaxValue})
	}
	for _, e := range s.Enums {
		if e.Name == "" {
			return nil, levelapi.New(levelapi.KindEmptyTypeName, "enum")
		}
		// A name may resolve to a basic type or an enum, never both.
		if seen[e.Name] {
			return nil, levelapi.New(levelapi.KindDuplicateEnumName, "%s", e.Name)
		}
		seen[e.Name] = true
		schema.Enums = append(schema.Enums, &Enum{Name: e.Name, Values: append([]string(nil), e.Values...)})
	}
	for _, st := range s.ObjectStructures {
		if st.Name == "" {
			return nil, levelapi.New(levelapi.KindEmptyTypeName, "object structure")
		}
		specs, lerr := decodeSpecs(st.Properties, st.Name)
		if lerr != nil {
			return nil, lerr
		}
		schema.Structures = append(schema.Structures, &ObjectStructure{Name: st.Name, Properties: specs})
	}
	specs, lerr := decodeSpecs(s.CollisionStructure, "collision")
	if lerr != nil {
		return nil, lerr
	}
	schema.CollisionStructure = specs
	schema.index()
	return schema, nil
}

func decodeSpecs(in []propertySpecJSON, owner string) ([]PropertySpec, *levelapi.Error) {
	out := make([]PropertySpec, 0, len(in))
	names := make(map[string]bool, len(in))
	for _, p := range in {
		if p.Name == "" {
			return nil, levelapi.New(levelapi.KindEmptyPropertyName, "%s", owner)
		}
		if p.Type == "" {
			return nil, levelapi.New(levelapi.KindEmptyTypeName, "%s.%s", owner, p.Name)
		}
		if names[p.Name] {
			return nil, levelapi.New(levelapi.KindDuplicatePropertyKey, "%s.%s", owner, p.Name)
		}
		names[p.Name] = true
		out = append(out, PropertySpec{Name: p.Name, TypeName: p.Type, Visible: p.Visible})
	}
	return out, nil
}

func decodeCamera(cj cameraJSON, info MapInfo, schema *Schema) (*Camera, *levelapi.Error) {
	if cj.Name == "" {
		return nil, levelapi.New(levelapi.KindBadCameraName, "camera at %d,%d has no name", cj.X, cj.Y)
	}
	if cj.X < 0 || cj.Y < 0 || cj.X >= info.XSize || cj.Y >= info.YSize {
		return nil, levelapi.New(levelapi.KindCameraOutOfBounds, "%s at %d,%d outside %dx%d", cj.Name, cj.X, cj.Y, info.XSize, info.YSize)
	}
	cam := &Camera{Name: cj.Name, ID: cj.ID, X: cj.X, Y: cj.Y}
	for _, oj := range cj.MapObjects {
		owner := cj.Name + "/" + oj.Name
		props, lerr := decodeProperties(oj.Properties, schema, owner)
		if lerr != nil {
			return nil, lerr
		}
		cam.MapObjects = append(cam.MapObjects, &MapObject{
			Name:       oj.Name,
			Structure:  oj.Structure,
			Rect:       Rect{X: oj.X, Y: oj.Y, W: oj.Width, H: oj.Height},
			Properties: props,
		})
	}
	return cam, nil
}

func decodeProperties(in []propertyJSON, schema *Schema, owner string) ([]Property, *levelapi.Error) {
	out := make([]Property, 0, len(in))
	names := make(map[string]bool, len(in))
	for _, pj := range in {
		if pj.Name == "" {
			return nil, levelapi.New(levelapi.KindEmptyPropertyName, "%s", owner)
		}
		if pj.Type == "" {
			return nil, levelapi.New(levelapi.KindEmptyTypeName, "%s.%s", owner, pj.Name)
		}
		if names[pj.Name] {
			return nil, levelapi.New(levelapi.KindDuplicatePropertyName, "%s.%s", owner, pj.Name)
		}
		names[pj.Name] = true
		if pj.Value == nil {
			return nil, levelapi.MissingKey("value")
		}

		p := Property{Name: pj.Name, TypeName: pj.Type, Visible: pj.Visible}
		ref := schema.FindType(pj.Type)
		p.Kind = ref.Kind()
		switch p.Kind {
		case PropertyBasic:
			if err := json.Unmarshal(pj.Value, &p.Basic); err != nil {
				return nil, levelapi.Wrap(levelapi.KindInvalidJSON, err, "%s.%s", owner, pj.Name)
			}
			if !ref.Basic.Contains(p.Basic) {
				return nil, levelapi.New(levelapi.KindValueOutOfRange, "%s.%s = %d not in [%d, %d]", owner, pj.Name, p.Basic, ref.Basic.Min, ref.Basic.Max)
			}
		case PropertyEnum:
			if err := json.Unmarshal(pj.Value, &p.Enum); err != nil {
				return nil, levelapi.Wrap(levelapi.KindInvalidJSON, err, "%s.%s", owner, pj.Name)
			}
			if !ref.Enum.Has(p.Enum) {
				return nil, levelapi.New(levelapi.KindUnknownEnumValue, "%s.%s = %q is not a %s", owner, pj.Name, p.Enum, ref.Enum.Name)
			}
		default:
			p.Raw = append(json.RawMessage(nil), pj.Value...)
		}
		out = append(out, p)
	}
	return out, nil
}

// Save writes the document as path JSON.
func (d *Document) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.encode()); err != nil {
		return levelapi.Wrap(levelapi.KindIOWrite, err, "encode path json")
	}
	return nil
}

// SaveFile writes the document to path through a temporary sibling file so
// a failed write never truncates the previous contents.
func (d *Document) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return levelapi.Wrap(levelapi.KindIOWrite, err, "%s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return levelapi.Wrap(levelapi.KindIOWrite, err, "%s", path)
	}
	return nil
}

func (d *Document) encode() docJSON {
	version := d.apiVersion
	game := d.info.Game
	pathID, xg, yg, xs, ys := d.info.PathID, d.info.XGridSize, d.info.YGridSize, d.info.XSize, d.info.YSize
	m := &mapJSON{
		PathBnd:    d.info.PathBnd,
		PathID:     &pathID,
		XGridSize:  &xg,
		YGridSize:  &yg,
		XSize:      &xs,
		YSize:      &ys,
		Cameras:    make([]cameraJSON, 0, len(d.cameras)),
		Collisions: make([]collisionJSON, 0, len(d.collisions)),
	}
	for _, cam := range d.cameras {
		cj := cameraJSON{Name: cam.Name, ID: cam.ID, X: cam.X, Y: cam.Y, MapObjects: make([]mapObjectJSON, 0, len(cam.MapObjects))}
		for _, o := range cam.MapObjects {
			cj.MapObjects = append(cj.MapObjects, mapObjectJSON{
				Name:       o.Name,
				Structure:  o.Structure,
				X:          o.Rect.X,
				Y:          o.Rect.Y,
				Width:      o.Rect.W,
				Height:     o.Rect.H,
				Properties: encodeProperties(o.Properties),
			})
		}
		m.Cameras = append(m.Cameras, cj)
	}
	for _, c := range d.collisions {
		m.Collisions = append(m.Collisions, collisionJSON{
			Name:       c.Name,
			X1:         c.Line.X1,
			Y1:         c.Line.Y1,
			X2:         c.Line.X2,
			Y2:         c.Line.Y2,
			Properties: encodeProperties(c.Properties),
		})
	}
	return docJSON{APIVersion: &version, Game: &game, Map: m, Schema: encodeSchema(d.schema)}
}

func encodeProperties(props []Property) []propertyJSON {
	out := make([]propertyJSON, 0, len(props))
	for _, p := range props {
		pj := propertyJSON{Name: p.Name, Type: p.TypeName, Visible: p.Visible}
		switch p.Kind {
		case PropertyBasic:
			pj.Value = json.RawMessage(fmt.Sprintf("%d", p.Basic))
		case PropertyEnum:
			b, _ := json.Marshal(p.Enum)
			pj.Value = b
		default:
			pj.Value = p.Raw
			if pj.Value == nil {
				pj.Value = json.RawMessage("null")
			}
		}
		out = append(out, pj)
	}
	return out
}

func encodeSchema(s *Schema) *schemaJSON {
	out := &schemaJSON{
		BasicTypes:         make([]basicTypeJSON, 0, len(s.BasicTypes)),
		Enums:              make([]enumJSON, 0, len(s.Enums)),
		ObjectStructures:   make([]structureJSON, 0, len(s.Structures)),
		CollisionStructure: encodeSpecs(s.CollisionStructure),
	}
	for _, b := range s.BasicTypes {
		out.BasicTypes = append(out.BasicTypes, basicTypeJSON{Name: b.Name, MinValue: b.Min, MaxValue: b.Max})
	}
	for _, e := range s.Enums {
		out.Enums = append(out.Enums, enumJSON{Name: e.Name, Values: e.Values})
	}
	for _, st := range s.Structures {
		out.ObjectStructures = append(out.ObjectStructures, structureJSON{Name: st.Name, Properties: encodeSpecs(st.Properties)})
	}
	return out
}

func encodeSpecs(specs []PropertySpec) []propertySpecJSON {
	out := make([]propertySpecJSON, 0, len(specs))
	for _, s := range specs {
		out = append(out, propertySpecJSON{Name: s.Name, Type: s.TypeName, Visible: s.Visible})
	}
	return out
}
