package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/script"
)

func newScriptCmd(configPath *string) *cobra.Command {
	var (
		out     string
		dryRun  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "script <path.json> <script.tengo>",
		Short: "Run a tengo batch-edit script over a path and save the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(*configPath)
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("script: %w", err)
			}
			ws := editor.NewWorkspace(nil, tabOptions(settings))
			t, err := openTab(ws, args[0], -1)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			n, err := script.Run(ctx, t, src)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, text := range t.Stack().Texts() {
				fmt.Fprintln(w, text)
			}
			fmt.Fprintf(w, "%d edit(s)\n", n)
			if dryRun || n == 0 {
				return nil
			}

			if out != "" {
				err = ws.SaveAs(t, out)
			} else {
				err = t.Save()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "saved %s\n", t.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of overwriting the input")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the edits without saving")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "abort scripts that run longer (0 disables)")
	return cmd
}
