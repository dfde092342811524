// Package processing renders batches of composition files and reports on
// their progress.
package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/five82/montage/internal/config"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/reporter"
	"github.com/five82/montage/internal/util"
)

// RenderResult contains the result of a single composition.
type RenderResult struct {
	Filename         string
	Output           string
	Elapsed          time.Duration
	Frames           int
	Size             uint64
	Validated        bool
	ValidationPassed bool
	Skipped          bool
	Err              error
}

// ProcessCompositions renders every file in turn. A failed composition is
// reported and the batch moves on; cancellation stops the batch. The
// returned error is non-nil when the batch was cancelled or any
// composition failed.
func ProcessCompositions(
	ctx context.Context,
	cfg *config.Config,
	filesToProcess []string,
	opts Options,
) ([]RenderResult, error) {
	opts = opts.withDefaults()
	rep := opts.Reporter

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname:      sysInfo.Hostname,
		OS:            sysInfo.OS + "/" + sysInfo.Arch,
		LogicalCores:  sysInfo.NumCPU,
		PhysicalCores: sysInfo.PhysicalCores,
		TotalMemory:   sysInfo.TotalMemory,
	})

	batch := len(filesToProcess) > 1
	if batch {
		fileNames := make([]string, 0, len(filesToProcess))
		for _, f := range filesToProcess {
			fileNames = append(fileNames, filepath.Base(f))
		}
		rep.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(filesToProcess),
			FileList:   fileNames,
			OutputDir:  cfg.OutputDir,
		})
	}

	var (
		results  []RenderResult
		failures int
		firstErr error
	)

	for fileIdx, inputPath := range filesToProcess {
		// Check for cancellation before starting each file
		if ctx.Err() != nil {
			rep.Warning("Rendering cancelled")
			return results, merrors.NewCancelledError()
		}

		if batch {
			rep.FileProgress(reporter.FileProgressContext{
				CurrentFile: fileIdx + 1,
				TotalFiles:  len(filesToProcess),
			})
		}

		override := ""
		if !batch {
			override = opts.TargetOverride
		}
		outputPath := util.ResolveOutputPath(inputPath, cfg.OutputDir, override)
		result := RenderResult{Filename: filepath.Base(inputPath), Output: outputPath}

		if util.FileExists(outputPath) {
			rep.Warning(fmt.Sprintf("Output file already exists: %s. Skipping render.", outputPath))
			result.Skipped = true
			results = append(results, result)
			continue
		}

		start := time.Now()
		res, err := RenderFile(ctx, cfg, inputPath, outputPath, opts)
		result.Elapsed = time.Since(start)

		if err != nil {
			if merrors.IsCancelled(err) || ctx.Err() != nil {
				rep.Warning(fmt.Sprintf("Rendering of %s cancelled", result.Filename))
				return results, merrors.NewCancelledError()
			}
			logging.Error("composition failed", "file", inputPath, "error", err)
			rep.Error(describeError(inputPath, err))
			result.Err = err
			results = append(results, result)
			failures++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		result.Frames = res.Frames
		result.Size = res.Size
		if res.Validation != nil {
			result.Validated = true
			result.ValidationPassed = res.Validation.IsValid()
		}
		results = append(results, result)
	}

	summarize(rep, results, len(filesToProcess))

	switch {
	case failures == 0:
		return results, nil
	case !batch:
		return results, firstErr
	default:
		return results, fmt.Errorf("%d of %d compositions failed: %w", failures, len(filesToProcess), firstErr)
	}
}

func summarize(rep reporter.Reporter, results []RenderResult, total int) {
	var rendered []RenderResult
	for _, r := range results {
		if !r.Skipped && r.Err == nil {
			rendered = append(rendered, r)
		}
	}

	if total == 1 {
		if len(rendered) == 1 {
			rep.OperationComplete(fmt.Sprintf("Successfully rendered %s", rendered[0].Filename))
		}
		return
	}
	if len(rendered) == 0 {
		rep.Warning("No compositions were successfully rendered")
	}

	summary := reporter.BatchSummary{
		SuccessfulCount: len(rendered),
		TotalFiles:      total,
	}
	for _, r := range results {
		summary.TotalDuration += r.Elapsed
		fr := reporter.FileResult{Filename: r.Filename, Elapsed: r.Elapsed, Size: r.Size}
		switch {
		case r.Err != nil:
			fr.Error = r.Err.Error()
		case r.Skipped:
			fr.Error = "skipped, output exists"
		default:
			summary.TotalSize += r.Size
			summary.TotalFrames += r.Frames
		}
		if r.Validated {
			if r.ValidationPassed {
				summary.ValidationPassedCount++
			} else {
				summary.ValidationFailedCount++
			}
		}
		summary.FileResults = append(summary.FileResults, fr)
	}
	rep.BatchComplete(summary)
}

// describeError picks a title and suggestion for the failure's kind.
func describeError(path string, err error) reporter.ReporterError {
	re := reporter.ReporterError{
		Message: err.Error(),
		Context: fmt.Sprintf("File: %s", path),
	}
	switch {
	case merrors.IsKind(err, merrors.KindConfig):
		re.Title = "Composition Error"
		re.Suggestion = "Run 'montage validate' on the file to check it"
	case merrors.IsKind(err, merrors.KindResource):
		re.Title = "Missing Asset"
		re.Suggestion = "Check that every src path exists relative to the composition file"
	case merrors.IsKind(err, merrors.KindRender):
		re.Title = "Render Error"
		re.Suggestion = "Check the failing element's properties"
	case merrors.IsKind(err, merrors.KindExport), merrors.IsKind(err, merrors.KindCommand):
		re.Title = "Export Error"
		re.Suggestion = "Check that ffmpeg is installed and supports the configured codec"
	default:
		re.Title = "Render Failed"
	}
	return re
}
