// Package script runs tengo batch-edit scripts against an open tab. A
// script sees the path's entities in the `objects` array and edits them
// through the `editor` map; every edit is pushed onto the tab's undo
// stack like an edit made by hand.
package script

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

// Modules are the tengo standard modules scripts may import.
var Modules = []string{"fmt", "math", "text", "enum", "rand"}

type runner struct {
	tab   *editor.Tab
	edits int
}

// Run compiles and runs src against tab and returns the number of edits
// it pushed.
func Run(ctx context.Context, tab *editor.Tab, src []byte) (int, error) {
	r := &runner{tab: tab}

	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(Modules...))
	if err := s.Add("objects", r.objects()); err != nil {
		return 0, fmt.Errorf("script: %w", err)
	}
	if err := s.Add("editor", r.api()); err != nil {
		return 0, fmt.Errorf("script: %w", err)
	}
	compiled, err := s.Compile()
	if err != nil {
		return 0, fmt.Errorf("script: compile: %w", err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return r.edits, fmt.Errorf("script: run: %w", err)
	}
	return r.edits, nil
}

func (r *runner) objects() *tengo.Array {
	doc := r.tab.Document()
	arr := &tengo.Array{}
	for _, h := range doc.Handles(model.KindCollision) {
		c, _ := doc.Collision(h)
		arr.Value = append(arr.Value, &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"handle":     &tengo.Int{Value: int64(h)},
			"kind":       &tengo.String{Value: "collision"},
			"name":       &tengo.String{Value: c.Name},
			"x1":         &tengo.Int{Value: int64(c.Line.X1)},
			"y1":         &tengo.Int{Value: int64(c.Line.Y1)},
			"x2":         &tengo.Int{Value: int64(c.Line.X2)},
			"y2":         &tengo.Int{Value: int64(c.Line.Y2)},
			"properties": properties(c.Properties),
		}})
	}
	for _, h := range doc.Handles(model.KindMapObject) {
		o, _ := doc.MapObject(h)
		arr.Value = append(arr.Value, &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"handle":     &tengo.Int{Value: int64(h)},
			"kind":       &tengo.String{Value: "map_object"},
			"name":       &tengo.String{Value: o.Name},
			"structure":  &tengo.String{Value: o.Structure},
			"x":          &tengo.Int{Value: int64(o.Rect.X)},
			"y":          &tengo.Int{Value: int64(o.Rect.Y)},
			"w":          &tengo.Int{Value: int64(o.Rect.W)},
			"h":          &tengo.Int{Value: int64(o.Rect.H)},
			"properties": properties(o.Properties),
		}})
	}
	return arr
}

// properties exposes resolved values only; unresolved ones stay hidden
// as they do in the inspector.
func properties(props []model.Property) *tengo.ImmutableMap {
	m := map[string]tengo.Object{}
	for _, p := range props {
		switch p.Kind {
		case model.PropertyBasic:
			m[p.Name] = &tengo.Int{Value: p.Basic}
		case model.PropertyEnum:
			m[p.Name] = &tengo.String{Value: p.Enum}
		}
	}
	return &tengo.ImmutableMap{Value: m}
}

func (r *runner) api() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		h, nums, err := handleArgs("move", args, 2)
		if err != nil {
			return nil, err
		}
		// The target is the model position: a map object's top-left
		// corner or a collision's first endpoint.
		return r.geometry(h, func(g scene.Geometry) scene.Geometry {
			at := cp.Vector{X: nums[0], Y: nums[1]}
			if g.Kind == model.KindCollision {
				g.Pos = at.Sub(g.A)
			} else {
				g.Pos = at.Sub(cp.Vector{X: g.Rect.L, Y: g.Rect.B})
			}
			return g
		})
	}}

	values["resize"] = &tengo.UserFunction{Name: "resize", Value: func(args ...tengo.Object) (tengo.Object, error) {
		h, nums, err := handleArgs("resize", args, 2)
		if err != nil {
			return nil, err
		}
		return r.geometry(h, func(g scene.Geometry) scene.Geometry {
			if g.Kind == model.KindCollision {
				g.B = g.A.Add(cp.Vector{X: nums[0], Y: nums[1]})
			} else {
				g.Rect.R, g.Rect.T = g.Rect.L+nums[0], g.Rect.B+nums[1]
			}
			return g
		})
	}}

	values["set_property"] = &tengo.UserFunction{Name: "set_property", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		h, ok := toHandle(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "handle", Expected: "int", Found: args[0].TypeName()}
		}
		name := objectAsString(args[1])
		before := r.propertyValue(h, name)
		if err := r.tab.SetProperty(h, name, objectAsString(args[2])); err != nil {
			return errorObject(err), nil
		}
		return r.changed(before != r.propertyValue(h, name)), nil
	}}

	values["rename"] = &tengo.UserFunction{Name: "rename", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		h, ok := toHandle(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "handle", Expected: "int", Found: args[0].TypeName()}
		}
		before, _ := r.tab.Document().Name(h)
		name := objectAsString(args[1])
		if err := r.tab.Rename(h, name); err != nil {
			return errorObject(err), nil
		}
		return r.changed(before != name), nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = objectAsString(a)
		}
		log.Printf("script: %s", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (r *runner) geometry(h model.Handle, edit func(scene.Geometry) scene.Geometry) (tengo.Object, error) {
	it, ok := r.tab.Scene().Item(h)
	if !ok {
		return errorObject(fmt.Errorf("no item %d", h)), nil
	}
	before := it.Geometry
	if err := r.tab.SetGeometry(h, edit(before)); err != nil {
		return errorObject(err), nil
	}
	return r.changed(before != it.Geometry), nil
}

func (r *runner) propertyValue(h model.Handle, name string) string {
	props, _ := r.tab.Document().Properties(h)
	if i := model.PropertyIndex(props, name); i >= 0 {
		return props[i].ValueString()
	}
	return ""
}

func (r *runner) changed(ok bool) tengo.Object {
	if !ok {
		return tengo.FalseValue
	}
	r.edits++
	return tengo.TrueValue
}

func handleArgs(fn string, args []tengo.Object, n int) (model.Handle, []float64, error) {
	if len(args) != n+1 {
		return 0, nil, tengo.ErrWrongNumArguments
	}
	h, ok := toHandle(args[0])
	if !ok {
		return 0, nil, tengo.ErrInvalidArgumentType{Name: "handle", Expected: "int", Found: args[0].TypeName()}
	}
	nums := make([]float64, n)
	for i := range nums {
		v, ok := tengo.ToFloat64(args[i+1])
		if !ok {
			return 0, nil, tengo.ErrInvalidArgumentType{Name: fmt.Sprintf("%s argument %d", fn, i+2), Expected: "number", Found: args[i+1].TypeName()}
		}
		nums[i] = v
	}
	return h, nums, nil
}

func toHandle(obj tengo.Object) (model.Handle, bool) {
	v, ok := tengo.ToInt64(obj)
	if !ok || v <= 0 {
		return 0, false
	}
	return model.Handle(v), true
}

func errorObject(err error) tengo.Object {
	return &tengo.Error{Value: &tengo.String{Value: err.Error()}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
