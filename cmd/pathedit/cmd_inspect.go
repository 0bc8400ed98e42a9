package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/model"
)

func newInspectCmd() *cobra.Command {
	var pathID int
	cmd := &cobra.Command{
		Use:   "inspect <path.json|level.lvl>",
		Short: "Print a path's header, cameras, map objects and collisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws := editor.NewWorkspace(nil, editor.TabOptions{})
			t, err := openTab(ws, args[0], pathID)
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), t.Document())
			return nil
		},
	}
	cmd.Flags().IntVar(&pathID, "path", -1, "path id to read from a level container (default: first)")
	return cmd
}

func writeSummary(w io.Writer, doc *model.Document) {
	info := doc.MapInfo()
	fmt.Fprintf(w, "%s path %d (%s)\n", info.Game, info.PathID, info.PathBnd)
	fmt.Fprintf(w, "grid %dx%d of %dx%d\n", info.XSize, info.YSize, info.XGridSize, info.YGridSize)
	for _, cam := range doc.Cameras() {
		fmt.Fprintf(w, "camera %d,%d %s\n", cam.X, cam.Y, cam.Name)
		for _, o := range cam.MapObjects {
			fmt.Fprintf(w, "  %s %d,%d %dx%d%s\n", o.Name, o.Rect.X, o.Rect.Y, o.Rect.W, o.Rect.H, propertyList(o.Properties))
		}
	}
	for i, c := range doc.Collisions() {
		fmt.Fprintf(w, "collision %d %d,%d -> %d,%d%s\n", i, c.Line.X1, c.Line.Y1, c.Line.X2, c.Line.Y2, propertyList(c.Properties))
	}
}

func propertyList(props []model.Property) string {
	var parts []string
	for _, p := range props {
		if !p.Visible || p.Kind == model.PropertyUnresolved {
			continue
		}
		parts = append(parts, p.Name+"="+p.ValueString())
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
