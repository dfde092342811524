// Package errors provides structured error types for montage operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindConfig represents composition or option validation errors.
	KindConfig
	// KindRender represents a failure while drawing a frame.
	KindRender
	// KindResource represents a missing or unreadable asset.
	KindResource
	// KindCommand represents external command execution errors.
	KindCommand
	// KindExport represents encoder, audio mix or mux failures.
	KindExport
	// KindNoFilesFound represents no composition files found.
	KindNoFilesFound
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "Configuration error"
	case KindRender:
		return "Render error"
	case KindResource:
		return "Resource error"
	case KindCommand:
		return "Command error"
	case KindExport:
		return "Export error"
	case KindNoFilesFound:
		return "No files found"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// Stage identifies which part of the pipeline produced an error.
type Stage int

const (
	StageUnknown Stage = iota
	StageBuild
	StageRender
	StageExport
)

func (s Stage) String() string {
	switch s {
	case StageBuild:
		return "build"
	case StageRender:
		return "render"
	case StageExport:
		return "export"
	default:
		return ""
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for montage operations.
//
// ElementID and Time are optional and identify the element, transition or
// layer that failed and the global time of the failing frame.
type CoreError struct {
	Kind       ErrorKind
	Stage      Stage
	ElementID  string
	Time       float64
	HasTime    bool
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	var b strings.Builder
	if e.Stage != StageUnknown {
		b.WriteString(e.Stage.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	switch {
	case e.ElementID != "" && e.HasTime:
		fmt.Fprintf(&b, " [%s at %.3fs]", e.ElementID, e.Time)
	case e.ElementID != "":
		fmt.Fprintf(&b, " [%s]", e.ElementID)
	case e.HasTime:
		fmt.Fprintf(&b, " [at %.3fs]", e.Time)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithElement records the identifier of the offending element or transition.
func (e *CoreError) WithElement(id string) *CoreError {
	e.ElementID = id
	return e
}

// WithTime records the global time of the failing frame.
func (e *CoreError) WithTime(t float64) *CoreError {
	e.Time = t
	e.HasTime = true
	return e
}

// WithStage records the pipeline stage.
func (e *CoreError) WithStage(s Stage) *CoreError {
	e.Stage = s
	return e
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewConfigError creates a build-time configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Stage: StageBuild, Message: message}
}

// NewConfigErrorf creates a build-time configuration error with a formatted message.
func NewConfigErrorf(format string, args ...any) *CoreError {
	return NewConfigError(fmt.Sprintf(format, args...))
}

// NewRenderError creates an error for a failed element draw or hook.
func NewRenderError(elementID string, t float64, underlying error) *CoreError {
	return &CoreError{
		Kind:       KindRender,
		Stage:      StageRender,
		ElementID:  elementID,
		Time:       t,
		HasTime:    true,
		Message:    "element failed to draw",
		Underlying: underlying,
	}
}

// NewResourceError creates an error for a missing or unreadable asset.
func NewResourceError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindResource, Message: fmt.Sprintf("cannot load %s", path), Underlying: underlying}
}

// NewExportError creates an error for a failed export step.
func NewExportError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindExport, Stage: StageExport, Message: message, Underlying: underlying}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewNoFilesFoundError creates an error for when no composition files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no composition files found in %s", dir)}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsNoFilesFound checks if the error is a no-files-found error.
func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}

// StageOf returns the stage recorded on the outermost CoreError, if any.
func StageOf(err error) Stage {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Stage
	}
	return StageUnknown
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
