// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname      string
	OS            string
	LogicalCores  int
	PhysicalCores int
	TotalMemory   uint64
}

// InitializationSummary describes the current composition before rendering.
type InitializationSummary struct {
	InputFile  string
	OutputFile string
	Duration   string
	Resolution string
	FPS        int
	Frames     int
	Layers     int
	Elements   int
}

// RenderStartInfo describes how frames will be scheduled.
type RenderStartInfo struct {
	TotalFrames int
	Chunks      int
	Workers     int
	Window      int
	Mode        string
}

// ProgressSnapshot contains render progress information.
type ProgressSnapshot struct {
	CurrentFrame   int
	TotalFrames    int
	Percent        float32
	FPS            float32
	ETA            time.Duration
	ChunksComplete int
	ChunksTotal    int
}

// RenderSummary contains frame rendering statistics.
type RenderSummary struct {
	Frames  int
	Elapsed time.Duration
	FPS     float32
}

// AudioSummary lists the clips mixed into the soundtrack.
type AudioSummary struct {
	Clips []AudioClipInfo
}

// AudioClipInfo describes one audio clip.
type AudioClipInfo struct {
	ElementID string
	Source    string
	Start     float64
	Duration  float64
}

// ValidationSummary contains validation results.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// ExportOutcome contains final export results.
type ExportOutcome struct {
	InputFile  string
	OutputFile string
	Size       uint64
	Frames     int
	Duration   float64
	Resolution string
	AudioClips int
	RenderTime time.Duration
	TotalTime  time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	TotalSize             uint64
	TotalFrames           int
	TotalDuration         time.Duration
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains per-file export result.
type FileResult struct {
	Filename string
	Size     uint64
	Elapsed  time.Duration
	Error    string // empty on success
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
