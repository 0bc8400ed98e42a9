// Package inspector binds the single selected entity to a list of editable
// rows. Every committed edit goes through the command stack.
package inspector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/pathedit/command"
	"github.com/milk9111/pathedit/model"
)

var (
	ErrNoTarget      = errors.New("inspector: nothing selected")
	ErrRowOutOfRange = errors.New("inspector: row out of range")
)

// ValueError reports text that is not a legal value for its row.
type ValueError struct {
	Row    string
	Text   string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("inspector: %s: %q %s", e.Row, e.Text, e.Reason)
}

type RowKind int

const (
	RowString RowKind = iota
	RowBasic
	RowEnum
)

func (k RowKind) String() string {
	switch k {
	case RowBasic:
		return "basic"
	case RowEnum:
		return "enum"
	default:
		return "string"
	}
}

// Row is one editable line. The first row is always the entity name.
type Row struct {
	Label   string
	Kind    RowKind
	Value   string
	Min     int64
	Max     int64
	Options []string

	property int // index into the entity's properties, -1 for the name
}

type Inspector struct {
	doc   *model.Document
	stack *command.Stack

	target model.Handle
	has    bool
	rows   []Row

	// OnChanged is called whenever the rows are rebuilt or cleared.
	OnChanged func()
}

var _ command.Inspector = (*Inspector)(nil)

func New(doc *model.Document, stack *command.Stack) *Inspector {
	return &Inspector{doc: doc, stack: stack}
}

// Populate shows h: a name row and one row per visible property whose
// type resolves. Unresolved properties are left out.
func (in *Inspector) Populate(h model.Handle) {
	name, ok := in.doc.Name(h)
	if !ok {
		in.Clear()
		return
	}
	props, _ := in.doc.Properties(h)

	rows := []Row{{Label: "Name", Kind: RowString, Value: name, property: -1}}
	for i, p := range props {
		if !p.Visible {
			continue
		}
		ref := in.doc.FindType(p.TypeName)
		switch {
		case ref.Basic != nil:
			rows = append(rows, Row{Label: p.Name, Kind: RowBasic, Value: p.ValueString(), Min: ref.Basic.Min, Max: ref.Basic.Max, property: i})
		case ref.Enum != nil:
			rows = append(rows, Row{Label: p.Name, Kind: RowEnum, Value: p.ValueString(), Options: ref.Enum.Values, property: i})
		}
	}
	in.target, in.has, in.rows = h, true, rows
	in.changed()
}

func (in *Inspector) Clear() {
	in.target, in.has, in.rows = 0, false, nil
	in.changed()
}

// Target returns the entity being shown.
func (in *Inspector) Target() (model.Handle, bool) { return in.target, in.has }

// Rows returns a copy of the current rows.
func (in *Inspector) Rows() []Row {
	return append([]Row(nil), in.rows...)
}

// Commit parses text for row i and pushes the matching command. An
// unchanged value pushes nothing.
func (in *Inspector) Commit(i int, text string) error {
	if !in.has {
		return ErrNoTarget
	}
	if i < 0 || i >= len(in.rows) {
		return ErrRowOutOfRange
	}
	row := in.rows[i]
	h := in.target

	if row.property < 0 {
		if text == row.Value {
			return nil
		}
		in.stack.Push(command.NewRename(in.doc, in, h, row.Value, text))
		return nil
	}

	props, ok := in.doc.Properties(h)
	if !ok || row.property >= len(props) {
		return ErrNoTarget
	}
	before := props[row.property]
	after, err := ParseValue(in.doc.FindType(before.TypeName), before, text)
	if err != nil {
		return err
	}
	if after.Basic == before.Basic && after.Enum == before.Enum {
		return nil
	}
	in.stack.Push(command.NewEditProperty(in.doc, in, h, row.property, before, after))
	return nil
}

// ParseValue parses text as a new value for p, typed by ref. Unresolved
// properties cannot be edited.
func ParseValue(ref model.TypeRef, p model.Property, text string) (model.Property, error) {
	out := p
	switch {
	case ref.Basic != nil:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return p, &ValueError{Row: p.Name, Text: text, Reason: "is not an integer"}
		}
		if !ref.Basic.Contains(v) {
			return p, &ValueError{Row: p.Name, Text: text, Reason: fmt.Sprintf("is not in [%d, %d]", ref.Basic.Min, ref.Basic.Max)}
		}
		out.Basic = v
	case ref.Enum != nil:
		if !ref.Enum.Has(text) {
			return p, &ValueError{Row: p.Name, Text: text, Reason: "is not one of " + strings.Join(ref.Enum.Values, ", ")}
		}
		out.Enum = text
	default:
		return p, &ValueError{Row: p.Name, Text: text, Reason: "has an unknown type " + p.TypeName}
	}
	return out, nil
}

// RowIndex finds a row by label.
func (in *Inspector) RowIndex(label string) int {
	for i, r := range in.rows {
		if r.Label == label {
			return i
		}
	}
	return -1
}

func (in *Inspector) changed() {
	if in.OnChanged != nil {
		in.OnChanged()
	}
}
