package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Initialization(summary InitializationSummary)
	StageProgress(update StageProgress)
	RenderStarted(info RenderStartInfo)
	RenderProgress(progress ProgressSnapshot)
	RenderComplete(summary RenderSummary)
	AudioPrepared(summary AudioSummary)
	ValidationComplete(summary ValidationSummary)
	ExportComplete(summary ExportOutcome)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) Initialization(InitializationSummary) {}
func (NullReporter) StageProgress(StageProgress)          {}
func (NullReporter) RenderStarted(RenderStartInfo)        {}
func (NullReporter) RenderProgress(ProgressSnapshot)      {}
func (NullReporter) RenderComplete(RenderSummary)         {}
func (NullReporter) AudioPrepared(AudioSummary)           {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) ExportComplete(ExportOutcome)         {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}
