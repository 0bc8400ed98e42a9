package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/levels"
	"github.com/milk9111/pathedit/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "pathedit.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func fixtures(t *testing.T) (dir, jsonPath, lvl string) {
	t.Helper()
	dir = t.TempDir()
	data, err := levels.Bytes("ae_ba_4")
	if err != nil {
		t.Fatal(err)
	}
	jsonPath = filepath.Join(dir, "ae_ba_4.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	lvl = filepath.Join(dir, "BA.lvl")
	if err := levelapi.WriteBundle(lvl, "AE", map[int][]byte{4: data}); err != nil {
		t.Fatal(err)
	}
	return dir, jsonPath, lvl
}

func TestLevelCommands(t *testing.T) {
	dir, jsonPath, lvl := fixtures(t)

	out, err := run(t, "paths", lvl)
	if err != nil || strings.TrimSpace(out) != "4" {
		t.Fatalf("paths: %q %v", out, err)
	}

	exported := filepath.Join(dir, "out.json")
	if _, err := run(t, "export", lvl, "4", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	a, err := model.LoadFile(exported)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	b, _ := model.LoadFile(jsonPath)
	if !model.Equal(a, b) {
		t.Fatalf("exported path differs")
	}

	data, _ := os.ReadFile(jsonPath)
	seven := filepath.Join(dir, "seven.json")
	if err := os.WriteFile(seven, bytes.Replace(data, []byte(`"path_id": 4`), []byte(`"path_id": 7`), 1), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "import", lvl, seven); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, _ = run(t, "paths", lvl)
	if strings.Fields(out)[1] != "7" {
		t.Fatalf("paths after import: %q", out)
	}

	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing_level", []string{"paths", filepath.Join(dir, "none.lvl")}, "IO read failure"},
		{"missing_path", []string{"export", lvl, "99", exported}, "Open path failure"},
		{"bad_id", []string{"export", lvl, "x", exported}, "invalid path id"},
		{"bad_json", []string{"import", lvl, lvl}, "Invalid json"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := run(t, c.args...)
			if err == nil || !strings.Contains(err.Error(), c.msg) {
				t.Fatalf("expected %q, got %v", c.msg, err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	_, jsonPath, lvl := fixtures(t)
	for _, args := range [][]string{{"inspect", jsonPath}, {"inspect", lvl, "--path", "4"}} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		for _, want := range []string{
			"AE path 4 (BAPATH.BND)",
			"grid 3x2 of 375x260",
			"Door 40,120 25x60 [Scale=Full, Switch Id=",
			"collision 0 0,240 -> 375,240 [Type=Floor, Next=1, Previous=-1]",
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("%v: output missing %q:\n%s", args, want, out)
			}
		}
		if strings.Contains(out, "Reserved") || strings.Contains(out, "Legacy Flags") {
			t.Fatalf("hidden properties printed:\n%s", out)
		}
	}
	if _, err := run(t, "inspect", lvl, "--path", "8"); err == nil || !strings.Contains(err.Error(), "path 8 not found") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestRender(t *testing.T) {
	dir, jsonPath, _ := fixtures(t)
	png := filepath.Join(dir, "ae.png")
	if _, err := run(t, "render", jsonPath, "-o", png, "--scale", "0.25"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if st, err := os.Stat(png); err != nil || st.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}

func TestScript(t *testing.T) {
	dir, jsonPath, _ := fixtures(t)
	src := filepath.Join(dir, "rename.tengo")
	if err := os.WriteFile(src, []byte(`
for o in objects {
	if o.kind == "map_object" { editor.rename(o.handle, o.name + "2") }
}
`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "script", jsonPath, src, "--dry-run")
	if err != nil || !strings.Contains(out, "3 edit(s)") || !strings.Contains(out, "Rename Door to Door2") {
		t.Fatalf("dry run: %q %v", out, err)
	}
	doc, _ := model.LoadFile(jsonPath)
	if doc.CameraAt(0, 0).MapObjects[0].Name != "Door" {
		t.Fatalf("dry run saved")
	}

	saved := filepath.Join(dir, "renamed.json")
	if _, err := run(t, "script", jsonPath, src, "-o", saved); err != nil {
		t.Fatalf("script: %v", err)
	}
	doc, err = model.LoadFile(saved)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.CameraAt(1, 0).MapObjects[0].Name != "Mudokon2" {
		t.Fatalf("script edits not saved")
	}
}

func TestBadSettings(t *testing.T) {
	_, jsonPath, _ := fixtures(t)
	t.Setenv("PATHEDIT_UNDO_LIMIT", "-1")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "x.yaml"), "render", jsonPath, "-o", filepath.Join(t.TempDir(), "x.png")})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "undo limit") {
		t.Fatalf("expected undo limit error, got %v", err)
	}
}
