package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
)

func newEditCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [files...]",
		Short: "Open the graphical editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, path, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			log.Println("pathedit starting...")

			app := newApp(settings, path)
			defer func() {
				if app.watcher != nil {
					_ = app.watcher.Close()
				}
			}()
			for _, f := range args {
				app.OpenFile(f)
			}

			ebiten.SetWindowSize(1280, 800)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetWindowClosingHandled(true)
			ebiten.SetWindowTitle("pathedit")
			return ebiten.RunGame(app)
		},
	}
}
