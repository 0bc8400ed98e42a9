package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/model"
)

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths <level.lvl>",
		Short: "List the path ids stored in a level container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := levelapi.Bundle{}.EnumeratePaths(args[0])
			if err != nil {
				return fmt.Errorf("paths: %s", levelapi.UserMessage(err))
			}
			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <level.lvl> <path-id> <out.json>",
		Short: "Write one path of a level container as path JSON",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePathID(args[1])
			if err != nil {
				return err
			}
			if err := (levelapi.Bundle{}).ExportPathBinaryToJSON(args[2], args[0], id); err != nil {
				return fmt.Errorf("export: %s", levelapi.UserMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported path %d to %s\n", id, args[2])
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <level.lvl> <path.json>",
		Short: "Store a path JSON file into a level container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject paths the editor itself could not open.
			doc, err := model.LoadFile(args[1])
			if err != nil {
				return fmt.Errorf("import: %s", levelapi.UserMessage(err))
			}
			if err := (levelapi.Bundle{}).ImportPathJSONToBinary(args[0], args[1]); err != nil {
				return fmt.Errorf("import: %s", levelapi.UserMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported path %d into %s\n", doc.MapInfo().PathID, args[0])
			return nil
		},
	}
}
