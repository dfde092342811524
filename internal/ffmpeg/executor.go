package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/util"
)

// Progress represents encoding progress information.
type Progress struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates during encoding.
type ProgressCallback func(Progress)

// StderrTailBytes bounds how much encoder output is kept for error reports.
const StderrTailBytes = 4096

// waitDelay is how long Wait waits for output pipes after the process is killed.
const waitDelay = 2 * time.Second

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// Process is a running ffmpeg (or ffprobe) command. It runs in its own
// process group, so cancelling the context kills it along with any
// children it spawned.
type Process struct {
	name   string
	ctx    context.Context
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	tail   *tailBuffer
	done   chan struct{} // closed when stderr is drained
	waitMu sync.Mutex
	waited bool
	err    error
}

// Options configures a started process.
type Options struct {
	// Stdin opens a pipe to the process's standard input.
	Stdin bool
	// Duration and TotalFrames scale progress reports. Optional.
	Duration    float64
	TotalFrames uint64
	Progress    ProgressCallback
}

// Start launches path with args.
func Start(ctx context.Context, path string, args []string, opts Options) (*Process, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	p := &Process{
		name: path,
		ctx:  ctx,
		cmd:  cmd,
		tail: newTailBuffer(StderrTailBytes),
		done: make(chan struct{}),
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}
	if opts.Stdin {
		if p.stdin, err = cmd.StdinPipe(); err != nil {
			return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
		}
	}

	logging.Debug("starting command", "cmd", path, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return nil, merrors.NewCommandStartError(path, err)
	}

	go func() {
		defer close(p.done)
		parseProgress(stderr, p.tail, opts.Duration, opts.TotalFrames, opts.Progress)
	}()

	return p, nil
}

// Stdin returns the process's standard input, or nil when Options.Stdin
// was not set.
func (p *Process) Stdin() io.WriteCloser {
	return p.stdin
}

// Pid returns the process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Stderr returns the last StderrTailBytes of the process's error output.
func (p *Process) Stderr() string {
	return p.tail.String()
}

// Wait closes stdin, waits for the process to exit and returns a
// CommandError carrying the stderr tail on a nonzero exit. Calling Wait
// again returns the same result.
func (p *Process) Wait() error {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()
	if p.waited {
		return p.err
	}
	p.waited = true

	if p.stdin != nil {
		_ = p.stdin.Close()
	}
	<-p.done
	err := p.cmd.Wait()

	switch {
	case err == nil:
	case p.ctx.Err() != nil:
		p.err = fmt.Errorf("%s cancelled: %w", p.name, p.ctx.Err())
	default:
		p.err = merrors.WrapExecError(p.name, err, p.Stderr())
	}
	return p.err
}

// Kill terminates the process group immediately and reaps the process.
func (p *Process) Kill() {
	_ = killProcessGroup(p.cmd)
	_ = p.Wait()
}

// Run executes path with args and waits for it to finish.
func Run(ctx context.Context, path string, args []string, opts Options) error {
	opts.Stdin = false
	p, err := Start(ctx, path, args, opts)
	if err != nil {
		return err
	}
	return p.Wait()
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) WriteByte(b byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, b)
	if len(t.buf) > 2*t.max {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-t.max:]...)
	}
	return nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.buf
	if len(b) > t.max {
		b = b[len(b)-t.max:]
	}
	return strings.TrimSpace(string(b))
}

// parseProgress reads FFmpeg stderr and parses progress updates.
func parseProgress(stderr io.Reader, tail *tailBuffer, duration float64, totalFrames uint64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				logging.Debug("error reading stderr", "error", err)
			}
			break
		}

		_ = tail.WriteByte(b)

		// Progress lines end with \r or \n
		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "frame=") {
				progress := parseProgressLine(line, duration, totalFrames)
				if progress != nil {
					callback(*progress)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// field returns the value following key in a progress line.
func field(line, key string) string {
	idx := strings.Index(line, key)
	if idx < 0 {
		return ""
	}
	remaining := strings.TrimLeft(line[idx+len(key):], " ")
	if end := strings.IndexAny(remaining, " \t\r\n"); end >= 0 {
		remaining = remaining[:end]
	}
	return remaining
}

// parseProgressLine extracts progress information from an FFmpeg progress line.
func parseProgressLine(line string, duration float64, totalFrames uint64) *Progress {
	var elapsedSecs float64
	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			elapsedSecs = secs
		}
	}

	var frame uint64
	if f, err := strconv.ParseUint(field(line, "frame="), 10, 64); err == nil {
		frame = f
	}

	var fps, speed float32
	if f, err := strconv.ParseFloat(field(line, "fps="), 32); err == nil {
		fps = float32(f)
	}
	if s, err := strconv.ParseFloat(strings.TrimSuffix(field(line, "speed="), "x"), 32); err == nil {
		speed = float32(s)
	}
	bitrate := field(line, "bitrate=")

	var percent float32
	switch {
	case totalFrames > 0:
		percent = float32(frame) / float32(totalFrames) * 100
	case duration > 0:
		percent = float32((elapsedSecs / duration) * 100)
	}
	percent = min(percent, 100)

	var eta time.Duration
	if speed > 0 && duration > 0 {
		remainingDuration := duration - elapsedSecs
		etaSeconds := remainingDuration / float64(speed)
		eta = time.Duration(etaSeconds) * time.Second
	}

	return &Progress{
		CurrentFrame: frame,
		TotalFrames:  totalFrames,
		Percent:      percent,
		Speed:        speed,
		FPS:          fps,
		ETA:          eta,
		Bitrate:      bitrate,
		ElapsedSecs:  elapsedSecs,
	}
}
