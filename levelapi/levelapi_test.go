package levelapi

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func pathDoc(game string, id int) []byte {
	return []byte(fmt.Sprintf(`{"api_version": 2, "game": %q, "map": {"path_id": %d}}`, game, id))
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), GenericFailure},
		{"missing_key", MissingKey("x_size"), "Missing json key: x_size"},
		{"io_read", New(KindIORead, "a.json"), "IO read failure: a.json"},
		{"too_new", New(KindJSONVersionTooNew, "3"), "Json version too new: 3"},
		{"needs_upgrading", New(KindJSONNeedsUpgrading, "version 1, expected 2"), "Json needs upgrading: version 1, expected 2"},
		{"wrapped", fmt.Errorf("open: %w", New(KindBadCameraName, "c1")), "Bad camera name: c1"},
		{"unknown_kind", New(KindUnknown, "?"), GenericFailure},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := UserMessage(c.err); got != c.want {
				t.Fatalf("UserMessage = %q, want %q", got, c.want)
			}
		})
	}
}

func TestErrorMatching(t *testing.T) {
	cause := fs.ErrNotExist
	err := fmt.Errorf("load: %w", Wrap(KindIORead, cause, "missing.json"))

	if !errors.Is(err, &Error{Kind: KindIORead}) {
		t.Fatalf("expected kind match")
	}
	if errors.Is(err, &Error{Kind: KindIOWrite}) {
		t.Fatalf("unexpected kind match")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("cause should be reachable")
	}
	if KindOf(err) != KindIORead {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if KindOf(errors.New("x")) != KindUnknown {
		t.Fatalf("unclassified errors should be unknown")
	}
}

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lvl := filepath.Join(dir, "R1.lvl")
	if err := WriteBundle(lvl, "AO", map[int][]byte{
		7: pathDoc("AO", 7),
		2: pathDoc("AO", 2),
		4: pathDoc("AO", 4),
	}); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	var src Source = Bundle{}
	ids, err := src.EnumeratePaths(lvl)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{2, 4, 7}) {
		t.Fatalf("ids = %v", ids)
	}

	out := filepath.Join(dir, "path4.json")
	if err := src.ExportPathBinaryToJSON(out, lvl, 4); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"path_id": 4`) {
		t.Fatalf("unexpected export %s", data)
	}

	if err := src.ExportPathBinaryToJSON(out, lvl, 99); KindOf(err) != KindOpenPath {
		t.Fatalf("missing path: got %v", err)
	}

	newPath := filepath.Join(dir, "path9.json")
	if err := os.WriteFile(newPath, pathDoc("AO", 9), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := src.ImportPathJSONToBinary(lvl, newPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	// Importing the same id again replaces it.
	if err := src.ImportPathJSONToBinary(lvl, newPath); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	ids, _ = src.EnumeratePaths(lvl)
	if !reflect.DeepEqual(ids, []int{2, 4, 7, 9}) {
		t.Fatalf("ids after import = %v", ids)
	}
}

func TestBundleImportErrors(t *testing.T) {
	dir := t.TempDir()
	lvl := filepath.Join(dir, "R1.lvl")
	if err := WriteBundle(lvl, "AO", map[int][]byte{1: pathDoc("AO", 1)}); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	cases := []struct {
		name string
		dest string
		file string
		kind Kind
	}{
		{"wrong_game", lvl, write("ae.json", string(pathDoc("AE", 3))), KindInvalidGame},
		{"no_map", lvl, write("nomap.json", `{"game": "AO"}`), KindMissingKey},
		{"no_path_id", lvl, write("noid.json", `{"game": "AO", "map": {}}`), KindMissingKey},
		{"bad_json", lvl, write("bad.json", `{`), KindInvalidJSON},
		{"missing_file", lvl, filepath.Join(dir, "nope.json"), KindIORead},
		{"not_a_container", write("plain.lvl", "plain"), write("ok.json", string(pathDoc("AO", 3))), KindIOReadPastEOF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Bundle{}.ImportPathJSONToBinary(c.dest, c.file)
			if KindOf(err) != c.kind {
				t.Fatalf("kind = %v, want %v (%v)", KindOf(err), c.kind, err)
			}
		})
	}

	created := filepath.Join(dir, "fresh.lvl")
	if err := (Bundle{}).ImportPathJSONToBinary(created, write("fresh.json", string(pathDoc("AE", 5)))); err != nil {
		t.Fatalf("import into new container: %v", err)
	}
	if ids, err := (Bundle{}).EnumeratePaths(created); err != nil || len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("fresh container ids = %v, %v", ids, err)
	}
}
