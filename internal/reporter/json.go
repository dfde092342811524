package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON event per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
	now                func() time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
		now:                time.Now,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v["timestamp"] = r.timestamp()
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]any{
		"type":           "hardware",
		"hostname":       summary.Hostname,
		"os":             summary.OS,
		"logical_cores":  summary.LogicalCores,
		"physical_cores": summary.PhysicalCores,
		"total_memory":   summary.TotalMemory,
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":        "initialization",
		"input_file":  summary.InputFile,
		"output_file": summary.OutputFile,
		"duration":    summary.Duration,
		"resolution":  summary.Resolution,
		"fps":         summary.FPS,
		"frames":      summary.Frames,
		"layers":      summary.Layers,
		"elements":    summary.Elements,
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]any{
		"type":    "stage_progress",
		"stage":   update.Stage,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) RenderStarted(info RenderStartInfo) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":         "render_started",
		"total_frames": info.TotalFrames,
		"chunks":       info.Chunks,
		"workers":      info.Workers,
		"window":       info.Window,
		"mode":         info.Mode,
	})
}

// RenderProgress emits at most one event per whole percent, plus one every
// few seconds while the percentage is stuck.
func (r *JSONReporter) RenderProgress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.CurrentFrame == progress.TotalFrames
	if !shouldEmit {
		r.mu.Unlock()
		return
	}
	r.lastProgressBucket = max(r.lastProgressBucket, bucket)
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":            "render_progress",
		"stage":           "rendering",
		"current_frame":   progress.CurrentFrame,
		"total_frames":    progress.TotalFrames,
		"chunks_complete": progress.ChunksComplete,
		"chunks_total":    progress.ChunksTotal,
		"percent":         progress.Percent,
		"fps":             progress.FPS,
		"eta_seconds":     int64(progress.ETA.Seconds()),
	})
}

func (r *JSONReporter) RenderComplete(summary RenderSummary) {
	r.write(map[string]any{
		"type":            "render_complete",
		"frames":          summary.Frames,
		"elapsed_seconds": summary.Elapsed.Seconds(),
		"fps":             summary.FPS,
	})
}

func (r *JSONReporter) AudioPrepared(summary AudioSummary) {
	clips := make([]map[string]any, len(summary.Clips))
	for i, c := range summary.Clips {
		clips[i] = map[string]any{
			"element":  c.ElementID,
			"source":   c.Source,
			"start":    c.Start,
			"duration": c.Duration,
		}
	}
	r.write(map[string]any{
		"type":  "audio_prepared",
		"clips": clips,
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]any, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]any{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]any{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
	})
}

func (r *JSONReporter) ExportComplete(summary ExportOutcome) {
	r.write(map[string]any{
		"type":                   "export_complete",
		"input_file":             summary.InputFile,
		"output_file":            summary.OutputFile,
		"size":                   summary.Size,
		"frames":                 summary.Frames,
		"duration":               summary.Duration,
		"resolution":             summary.Resolution,
		"audio_clips":            summary.AudioClips,
		"render_seconds":         summary.RenderTime.Seconds(),
		"total_duration_seconds": summary.TotalTime.Seconds(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":    "operation_complete",
		"message": message,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]any{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]any{
			"file":            fr.Filename,
			"size":            fr.Size,
			"elapsed_seconds": fr.Elapsed.Seconds(),
			"error":           fr.Error,
		}
	}
	r.write(map[string]any{
		"type":                    "batch_complete",
		"successful_count":        summary.SuccessfulCount,
		"total_files":             summary.TotalFiles,
		"total_size":              summary.TotalSize,
		"total_frames":            summary.TotalFrames,
		"total_duration_seconds":  summary.TotalDuration.Seconds(),
		"validation_passed_count": summary.ValidationPassedCount,
		"validation_failed_count": summary.ValidationFailedCount,
		"file_results":            results,
	})
}

// Verbose messages go to the log file, not the event stream.
func (r *JSONReporter) Verbose(string) {}
