package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/five82/montage/internal/config"
	"github.com/five82/montage/internal/discovery"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/processing"
	"github.com/five82/montage/internal/reporter"
	"github.com/five82/montage/internal/util"
)

// renderArgs holds the parsed arguments for the render command.
type renderArgs struct {
	inputPath  string
	outputPath string
	logDir     string
	verbose    bool
	noLog      bool
	jsonOutput bool
	noValidate bool
	tempFiles  bool
	preset     string
	bitrate    string
	codec      string
	workers    int
	chunkSize  int
	window     int
}

func newRenderCmd() *cobra.Command {
	var ra renderArgs

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render composition files to video",
		Long: `Render a composition file, or every composition file in a directory,
to an encoded video. When the input is a single file and the output has a
container extension (.mp4, .mkv, .mov, .webm) the output names the file;
otherwise it names a directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRender(cmd, ra)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ra.inputPath, "input", "i", "", "Composition file or directory of composition files")
	f.StringVarP(&ra.outputPath, "output", "o", "", "Output directory, or filename if the input is a single file")
	f.StringVarP(&ra.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	f.BoolVarP(&ra.verbose, "verbose", "v", false, "Enable verbose output for troubleshooting")
	f.BoolVar(&ra.noLog, "no-log", false, "Disable log file creation")
	f.BoolVar(&ra.jsonOutput, "json", false, "Write progress as JSON lines instead of text")
	f.BoolVar(&ra.noValidate, "no-validate", false, "Skip probing the finished file")
	f.BoolVar(&ra.tempFiles, "temp-files", false, "Write frames to a temporary PNG sequence instead of piping them to ffmpeg")
	f.StringVar(&ra.preset, "preset", "", "Quality preset (draft, balanced, quality)")
	f.StringVar(&ra.bitrate, "bitrate", "", "Target video bitrate such as 8M, overrides the preset's CRF")
	f.StringVar(&ra.codec, "codec", config.DefaultCodec, "ffmpeg video encoder")
	f.IntVar(&ra.workers, "workers", 0, "Number of parallel frame renderers (0 = one per CPU thread)")
	f.IntVar(&ra.chunkSize, "chunk-size", config.DefaultChunkSize, "Frames handed to a worker at once (0 = auto)")
	f.IntVar(&ra.window, "window", 0, "Frames rendered ahead of the encoder (0 = auto from memory)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func executeRender(cmd *cobra.Command, ra renderArgs) error {
	inputPath, err := filepath.Abs(ra.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	outputPath, err := filepath.Abs(ra.outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	files, err := discovery.Resolve(inputPath)
	if err != nil {
		return err
	}

	out, err := util.ResolveOutputArg(inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("output %s is not a directory or a supported container", ra.outputPath)
	}
	if err := util.EnsureDirectory(out.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg, err := buildConfig(cmd, ra, out.OutputDir)
	if err != nil {
		return err
	}

	runLog, err := logging.Setup(cfg.LogDir, ra.verbose, ra.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer func() { _ = runLog.Close() }()

	logging.Info("rendering", "input", inputPath, "files", len(files), "output_dir", out.OutputDir)
	logging.Info("configuration", "workers", cfg.Workers, "chunk_size", cfg.ChunkSize, "window", cfg.Window,
		"codec", cfg.Codec, "crf", cfg.CRF, "preset", cfg.EncoderPreset, "bitrate", cfg.Bitrate, "pipe", cfg.UsePipe)

	var rep reporter.Reporter
	if ra.jsonOutput {
		rep = reporter.NewJSONReporterWithWriter(cmd.OutOrStdout())
	} else {
		rep = reporter.NewTerminalReporterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), ra.verbose)
	}
	if path := runLog.FilePath(); path != "" {
		rep.Verbose(fmt.Sprintf("Logging to %s", path))
	}

	_, err = processing.ProcessCompositions(cmd.Context(), cfg, files, processing.Options{
		Reporter:       rep,
		TargetOverride: out.FilenameOverride,
	})
	return err
}

// buildConfig layers defaults, MONTAGE_* environment variables and
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, ra renderArgs, outputDir string) (*config.Config, error) {
	cfg := config.NewConfig(outputDir, filepath.Join(outputDir, "logs"))
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if ra.preset != "" {
		preset, err := config.ParsePreset(ra.preset)
		if err != nil {
			return nil, err
		}
		cfg.ApplyPreset(preset)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = ra.workers
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = ra.logDir
	}
	if flags.Changed("codec") {
		cfg.Codec = ra.codec
	}
	cfg.Bitrate = ra.bitrate
	cfg.ChunkSize = ra.chunkSize
	cfg.Window = ra.window
	cfg.UsePipe = !ra.tempFiles
	cfg.ValidateOutput = !ra.noValidate

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
