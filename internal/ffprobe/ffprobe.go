// Package ffprobe provides functions for extracting media information using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	merrors "github.com/five82/montage/internal/errors"
)

// MediaInfo contains the properties of a probed file.
type MediaInfo struct {
	FormatName string
	Duration   float64
	Video      *VideoStream // nil when the file has no video stream
	Audio      []AudioStream
}

// VideoStream contains video stream properties.
type VideoStream struct {
	CodecName   string
	PixelFormat string
	Width       int
	Height      int
	FPS         float64
	Frames      uint64 // zero when the container does not record it
	BitDepth    *uint8
}

// AudioStream contains information about an audio stream.
type AudioStream struct {
	Index      int
	CodecName  string
	Channels   int
	SampleRate int
	Duration   float64
}

// HasAudio reports whether the file carries at least one audio stream.
func (m *MediaInfo) HasAudio() bool {
	return len(m.Audio) > 0
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType        string `json:"codec_type"`
	CodecName        string `json:"codec_name"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Channels         int    `json:"channels"`
	SampleRate       string `json:"sample_rate"`
	NbFrames         string `json:"nb_frames"`
	PixFmt           string `json:"pix_fmt"`
	RFrameRate       string `json:"r_frame_rate"`
	AvgFrameRate     string `json:"avg_frame_rate"`
	Duration         string `json:"duration"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
}

// Prober runs ffprobe.
type Prober struct {
	Path string // ffprobe binary, "ffprobe" when empty
}

// Probe returns the media information of path.
func (p Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	probe, err := p.run(ctx, path)
	if err != nil {
		return nil, err
	}
	return extractMediaInfo(probe)
}

// Duration returns the container duration of path in seconds.
func (p Prober) Duration(ctx context.Context, path string) (float64, error) {
	info, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// run executes ffprobe and returns the parsed output.
func (p Prober) run(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed on %s: %w", inputPath, merrors.WrapExecError(bin, err, strings.TrimSpace(stderr.String())))
	}
	return parseFFprobeOutput(output)
}

// parseFFprobeOutput decodes ffprobe's JSON output.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

// extractMediaInfo converts parsed output into MediaInfo.
func extractMediaInfo(probe *ffprobeOutput) (*MediaInfo, error) {
	info := &MediaInfo{FormatName: probe.Format.FormatName}

	if probe.Format.Duration != "" {
		d, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration %q", probe.Format.Duration)
		}
		info.Duration = d
	}

	audioIndex := 0
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.Video != nil {
				continue
			}
			v, err := extractVideoStream(s)
			if err != nil {
				return nil, err
			}
			info.Video = v
		case "audio":
			if s.Channels <= 0 {
				continue
			}
			rate, _ := strconv.Atoi(s.SampleRate)
			dur, _ := strconv.ParseFloat(s.Duration, 64)
			info.Audio = append(info.Audio, AudioStream{
				Index:      audioIndex,
				CodecName:  s.CodecName,
				Channels:   s.Channels,
				SampleRate: rate,
				Duration:   dur,
			})
			audioIndex++
		}
	}

	return info, nil
}

func extractVideoStream(s ffprobeStream) (*VideoStream, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", s.Width, s.Height)
	}

	v := &VideoStream{
		CodecName:   s.CodecName,
		PixelFormat: s.PixFmt,
		Width:       s.Width,
		Height:      s.Height,
	}
	if fps, ok := ParseFrameRate(s.AvgFrameRate); ok {
		v.FPS = fps
	} else if fps, ok := ParseFrameRate(s.RFrameRate); ok {
		v.FPS = fps
	}
	if s.NbFrames != "" {
		if frames, err := strconv.ParseUint(s.NbFrames, 10, 64); err == nil {
			v.Frames = frames
		}
	}
	if s.BitsPerRawSample != "" {
		if bd, err := strconv.ParseUint(s.BitsPerRawSample, 10, 8); err == nil {
			depth := uint8(bd)
			v.BitDepth = &depth
		}
	}
	return v, nil
}

// ParseFrameRate parses an ffprobe rational such as "30000/1001".
func ParseFrameRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !found {
		return n, n > 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 || n == 0 {
		return 0, false
	}
	return n / d, true
}
