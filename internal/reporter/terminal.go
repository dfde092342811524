package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/montage/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	faint      *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a terminal reporter writing to stdout, with
// errors and the progress bar on stderr.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		faint:   color.New(color.Faint),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) heading(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.heading("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "OS:", summary.OS)
	r.printLabel(10, "CPU:", fmt.Sprintf("%d threads, %d cores", summary.LogicalCores, summary.PhysicalCores))
	if summary.TotalMemory > 0 {
		r.printLabel(10, "Memory:", util.FormatBytes(summary.TotalMemory))
	}
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.heading("COMPOSITION")
	r.printLabel(10, "File:", summary.InputFile)
	r.printLabel(10, "Output:", summary.OutputFile)
	r.printLabel(10, "Duration:", summary.Duration)
	r.printLabel(10, "Size:", fmt.Sprintf("%s @ %d fps (%d frames)", summary.Resolution, summary.FPS, summary.Frames))
	r.printLabel(10, "Content:", fmt.Sprintf("%d layers, %d elements", summary.Layers, summary.Elements))
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	if newStage {
		r.heading(strings.ToUpper(update.Stage))
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) RenderStarted(info RenderStartInfo) {
	r.finishProgress()

	r.heading("RENDERING")
	r.printLabel(8, "Frames:", fmt.Sprintf("%d in %d chunks", info.TotalFrames, info.Chunks))
	r.printLabel(8, "Workers:", fmt.Sprintf("%d (window %d frames)", info.Workers, info.Window))
	r.printLabel(8, "Mode:", info.Mode)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Rendering [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) RenderProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("frame %d/%d, chunk %d/%d, %.1f fps, eta %s",
		progress.CurrentFrame, progress.TotalFrames,
		progress.ChunksComplete, progress.ChunksTotal,
		progress.FPS, util.FormatDuration(progress.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) RenderComplete(summary RenderSummary) {
	r.finishProgress()
	_, _ = fmt.Fprintf(r.out, "  %s %d frames in %s (%.1f fps)\n",
		r.green.Sprint("✓"), summary.Frames,
		util.FormatDuration(summary.Elapsed.Seconds()), summary.FPS)
}

func (r *TerminalReporter) AudioPrepared(summary AudioSummary) {
	r.heading("AUDIO")
	if len(summary.Clips) == 0 {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint("no audio clips"))
		return
	}
	for _, c := range summary.Clips {
		_, _ = fmt.Fprintf(r.out, "  - %s %s at %.2fs for %.2fs\n",
			r.bold.Sprint(c.ElementID), c.Source, c.Start, c.Duration)
	}
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()

	r.heading("VALIDATION")
	if summary.Passed {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.green.Add(color.Bold).Sprint("All checks passed"))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprint("Validation failed"))
	}

	// Find the longest step name for alignment
	maxLen := 0
	for _, step := range summary.Steps {
		maxLen = max(maxLen, len(step.Name))
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		_, _ = fmt.Fprintf(r.out, "  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) ExportComplete(summary ExportOutcome) {
	r.finishProgress()

	r.heading("RESULTS")
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Output:"), r.bold.Sprint(summary.OutputFile))
	r.printLabel(8, "Size:", util.FormatBytes(summary.Size))
	r.printLabel(8, "Video:", fmt.Sprintf("%s, %d frames, %s", summary.Resolution, summary.Frames, util.FormatDuration(summary.Duration)))
	r.printLabel(8, "Audio:", fmt.Sprintf("%d clips", summary.AudioClips))
	_, _ = fmt.Fprintf(r.out, "  %s %s (render %s)\n",
		r.bold.Sprint("Time:"),
		util.FormatDuration(summary.TotalTime.Seconds()),
		util.FormatDuration(summary.RenderTime.Seconds()))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.heading("BATCH")
	_, _ = fmt.Fprintf(r.out, "  Rendering %d compositions -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nComposition %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.heading("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	_, _ = fmt.Fprintf(r.out, "  Validation: %s passed, %s failed\n",
		r.green.Sprint(summary.ValidationPassedCount),
		r.red.Sprint(summary.ValidationFailedCount))
	_, _ = fmt.Fprintf(r.out, "  Output: %s, %d frames\n", util.FormatBytes(summary.TotalSize), summary.TotalFrames)
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDuration(summary.TotalDuration.Seconds()))

	for _, result := range summary.FileResults {
		if result.Error != "" {
			_, _ = fmt.Fprintf(r.out, "  - %s %s\n", result.Filename, r.red.Sprint(result.Error))
			continue
		}
		_, _ = fmt.Fprintf(r.out, "  - %s (%s in %s)\n", result.Filename,
			util.FormatBytes(result.Size), util.FormatDuration(result.Elapsed.Seconds()))
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}
