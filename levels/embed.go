// Package levels embeds sample paths. They seed new paths from the CLI and
// serve as fixtures for tests.
package levels

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/milk9111/pathedit/model"
)

//go:embed *.json
var LevelsFS embed.FS

// Names lists the embedded sample paths, sorted.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Bytes returns the raw JSON of an embedded sample. The .json extension is
// optional.
func Bytes(name string) ([]byte, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return data, nil
}

// LoadPathFromFS loads an embedded sample into a Document.
func LoadPathFromFS(name string) (*model.Document, error) {
	data, err := Bytes(name)
	if err != nil {
		return nil, err
	}
	doc, err := model.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return doc, nil
}
