package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/five82/montage/internal/elements"
	"github.com/five82/montage/internal/processing"
	"github.com/five82/montage/internal/render"
	"github.com/five82/montage/internal/util"
)

func newFrameCmd() *cobra.Command {
	var (
		input  string
		output string
		at     float64
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Render a single frame of a composition to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = fmt.Sprintf("%s_%06.3f.png", util.GetFileStem(input), at)
			}
			return renderFrame(input, output, at)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Composition file")
	f.StringVarP(&output, "output", "o", "", "PNG file to write (defaults to <name>_<time>.png)")
	f.Float64VarP(&at, "time", "t", 0, "Time in seconds")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func renderFrame(input, output string, at float64) (err error) {
	reg := elements.DefaultRegistry()
	g, err := processing.Compile(input, processing.Options{Registry: reg})
	if err != nil {
		return err
	}
	if at < 0 || at > g.Duration {
		return fmt.Errorf("time %.3fs is outside the composition (0-%.3fs)", at, g.Duration)
	}

	r := render.NewRenderer(g, reg)
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err := r.RenderFrame(at)
	if err != nil {
		return err
	}

	if err := util.EnsureDirectory(filepath.Dir(output)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return f.Close()
}
