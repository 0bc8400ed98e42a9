package levelapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Source is the level container collaborator the editor consumes. A level
// container holds many paths; the editor works on one path at a time in its
// JSON form.
type Source interface {
	// EnumeratePaths lists the path ids stored in file, in a stable order.
	EnumeratePaths(file string) ([]int, error)
	// ExportPathBinaryToJSON writes path pathID of srcBinary as JSON to dest.
	ExportPathBinaryToJSON(dest, srcBinary string, pathID int) error
	// ImportPathJSONToBinary stores the JSON path in jsonFile into the
	// container at dest, replacing any path with the same id.
	ImportPathJSONToBinary(dest, jsonFile string) error
}

const bundleFormat = "pathedit-lvl"

// Bundle is a Source backed by a zstd-compressed JSON container. Paths are
// enumerated in ascending id order.
type Bundle struct{}

var _ Source = Bundle{}

type bundleFile struct {
	Format string       `json:"format"`
	Game   string       `json:"game"`
	Paths  []bundlePath `json:"paths"`
}

type bundlePath struct {
	ID   int             `json:"id"`
	JSON json.RawMessage `json:"json"`
}

// pathHeader is the part of a path document the container needs to file it.
type pathHeader struct {
	Game string `json:"game"`
	Map  *struct {
		PathID *int `json:"path_id"`
	} `json:"map"`
}

func (Bundle) EnumeratePaths(file string) ([]int, error) {
	b, err := readBundle(file)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(b.Paths))
	for _, p := range b.Paths {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return ids, nil
}

func (Bundle) ExportPathBinaryToJSON(dest, srcBinary string, pathID int) error {
	b, err := readBundle(srcBinary)
	if err != nil {
		return err
	}
	for _, p := range b.Paths {
		if p.ID != pathID {
			continue
		}
		var out bytes.Buffer
		if err := json.Indent(&out, p.JSON, "", "  "); err != nil {
			return Wrap(KindInvalidJSON, err, "path %d in %s", pathID, srcBinary)
		}
		out.WriteByte('\n')
		if err := os.WriteFile(dest, out.Bytes(), 0o644); err != nil {
			return Wrap(KindIOWrite, err, "%s", dest)
		}
		return nil
	}
	return New(KindOpenPath, "path %d not found in %s", pathID, srcBinary)
}

func (Bundle) ImportPathJSONToBinary(dest, jsonFile string) error {
	raw, err := os.ReadFile(jsonFile)
	if err != nil {
		return Wrap(KindIORead, err, "%s", jsonFile)
	}
	var hdr pathHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return Wrap(KindInvalidJSON, err, "%s", jsonFile)
	}
	if hdr.Map == nil {
		return MissingKey("map")
	}
	if hdr.Map.PathID == nil {
		return MissingKey("path_id")
	}

	b, err := readBundle(dest)
	if err != nil {
		if KindOf(err) != KindIORead || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		b = &bundleFile{Format: bundleFormat, Game: hdr.Game}
	}
	if b.Game != hdr.Game {
		return New(KindInvalidGame, "%s path cannot be stored in a %s level", hdr.Game, b.Game)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return Wrap(KindInvalidJSON, err, "%s", jsonFile)
	}
	entry := bundlePath{ID: *hdr.Map.PathID, JSON: compact.Bytes()}
	replaced := false
	for i := range b.Paths {
		if b.Paths[i].ID == entry.ID {
			b.Paths[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		b.Paths = append(b.Paths, entry)
	}
	sort.Slice(b.Paths, func(i, j int) bool { return b.Paths[i].ID < b.Paths[j].ID })
	return writeBundle(dest, b)
}

// WriteBundle creates a container at dest holding the given path documents,
// keyed by id. It is used by tooling and tests to build fixtures.
func WriteBundle(dest, game string, paths map[int][]byte) error {
	b := &bundleFile{Format: bundleFormat, Game: game}
	for id, doc := range paths {
		var compact bytes.Buffer
		if err := json.Compact(&compact, doc); err != nil {
			return Wrap(KindInvalidJSON, err, "path %d", id)
		}
		b.Paths = append(b.Paths, bundlePath{ID: id, JSON: compact.Bytes()})
	}
	sort.Slice(b.Paths, func(i, j int) bool { return b.Paths[i].ID < b.Paths[j].ID })
	return writeBundle(dest, b)
}

func readBundle(file string) (*bundleFile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, Wrap(KindIORead, err, "%s", file)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, Wrap(KindIORead, err, "zstd reader")
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, Wrap(KindIOReadPastEOF, err, "%s", file)
	}
	var b bundleFile
	if err := json.Unmarshal(plain, &b); err != nil {
		return nil, Wrap(KindInvalidJSON, err, "%s", file)
	}
	if b.Format != bundleFormat {
		return nil, New(KindOpenPath, "%s is not a level container", file)
	}
	return &b, nil
}

func writeBundle(dest string, b *bundleFile) error {
	plain, err := json.Marshal(b)
	if err != nil {
		return Wrap(KindIOWrite, err, "encode %s", dest)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return Wrap(KindIOWrite, err, "zstd writer")
	}
	defer enc.Close()
	if err := os.WriteFile(dest, enc.EncodeAll(plain, nil), 0o644); err != nil {
		return Wrap(KindIOWrite, err, "%s", dest)
	}
	return nil
}
