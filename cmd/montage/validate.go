package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/montage/internal/discovery"
	"github.com/five82/montage/internal/processing"
	"github.com/five82/montage/internal/util"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Compile compositions and report configuration errors without rendering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, arg := range args {
				found, err := discovery.Resolve(arg)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			ok := color.New(color.FgGreen).Sprint("✓")
			bad := color.New(color.FgRed, color.Bold).Sprint("✗")
			out := cmd.OutOrStdout()

			failed := 0
			for _, f := range files {
				g, err := processing.Compile(f, processing.Options{})
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s\n    %v\n", bad, f, err)
					continue
				}
				fmt.Fprintf(out, "%s %s: %dx%d @ %d fps, %s (%d frames), %d layers, %d elements\n",
					ok, f, int(g.Viewport.W), int(g.Viewport.H), g.FPS,
					util.FormatDuration(g.Duration), g.Frames, len(g.Layers), len(g.Elements))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d compositions are invalid", failed, len(files))
			}
			return nil
		},
	}
}
