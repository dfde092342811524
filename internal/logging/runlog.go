package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RunLog is the timestamped log file of one CLI run. Once set up, the
// global logger writes into it. All methods are safe on a nil RunLog.
type RunLog struct {
	file     *os.File
	filePath string
}

// Setup creates a timestamped log file in logDir and points the global
// logger at it. Returns nil if logging is disabled (noLog=true).
func Setup(logDir string, verbose, noLog bool) (*RunLog, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("montage_run_%s.log", timestamp)
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	Init(level, file)

	Info("montage starting", "log_file", filePath, "verbose", verbose)

	return &RunLog{file: file, filePath: filePath}, nil
}

// Close closes the log file and restores the default global logger.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	SetGlobal(New(DefaultConfig()))
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *RunLog) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Writer returns an io.Writer that writes to the log file.
func (l *RunLog) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
