package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/colornames"

	"github.com/milk9111/pathedit/config"
	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/overview"
)

func newRenderCmd(configPath *string) *cobra.Command {
	var (
		pathID   int
		out      string
		scale    float64
		noLabels bool
	)
	cmd := &cobra.Command{
		Use:   "render <path.json|level.lvl>",
		Short: "Render an overview PNG of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			ws := editor.NewWorkspace(nil, editor.TabOptions{})
			t, err := openTab(ws, args[0], pathID)
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.TrimSuffix(t.Title(), ".json") + ".png"
			}
			opts := overview.DefaultOptions()
			opts.Scale = scale
			opts.Labels = !noLabels
			if settings.Theme == config.ThemeLight {
				opts.Background = colornames.White
				opts.Cell = colornames.Lightsteelblue
				opts.EmptyCell = colornames.Gainsboro
				opts.Text = colornames.Black
			}
			if err := overview.WritePNGFile(out, t.Document(), opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().IntVar(&pathID, "path", -1, "path id to read from a level container (default: first)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <title>.png)")
	cmd.Flags().Float64Var(&scale, "scale", 0.5, "pixels per level pixel")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit camera names")
	return cmd
}
