// Package ffmpeg provides FFmpeg command building and execution.
package ffmpeg

import (
	"fmt"
	"strconv"
)

// EncodeParams describes the video stream produced from rendered frames.
type EncodeParams struct {
	Width       int
	Height      int
	FPS         int
	Frames      int
	Codec       string
	PixelFormat string
	CRF         uint8
	Preset      string
	Bitrate     string // Optional, overrides CRF
}

// Duration returns the stream length in seconds.
func (p *EncodeParams) Duration() float64 {
	if p.FPS <= 0 {
		return 0
	}
	return float64(p.Frames) / float64(p.FPS)
}

// QualityArgs returns the rate control arguments for the configured codec.
func QualityArgs(p *EncodeParams) []string {
	if p.Bitrate != "" {
		return []string{"-b:v", p.Bitrate}
	}
	switch p.Codec {
	case "h264_videotoolbox", "hevc_videotoolbox":
		// VideoToolbox has no CRF mode; approximate with a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", (52-int(p.CRF))*250)}
	case "h264_nvenc", "hevc_nvenc":
		return []string{"-cq", strconv.Itoa(int(p.CRF))}
	case "libvpx-vp9":
		return []string{"-crf", strconv.Itoa(int(p.CRF)), "-b:v", "0"}
	default: // libx264, libx265
		args := []string{"-crf", strconv.Itoa(int(p.CRF))}
		if p.Preset != "" {
			args = append(args, "-preset", p.Preset)
		}
		return args
	}
}

// outputVideoArgs returns the arguments shared by every video encode.
func outputVideoArgs(p *EncodeParams) []string {
	args := []string{}
	if vf := NewVideoFilterChain().AddEvenDimensions(p.Width, p.Height, p.PixelFormat).Build(); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args,
		"-r", strconv.Itoa(p.FPS),
		"-pix_fmt", p.PixelFormat,
		"-c:v", p.Codec,
	)
	args = append(args, QualityArgs(p)...)
	if p.Frames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(p.Frames))
	}
	return args
}

// BuildPipeArgs builds the arguments of an encoder reading raw RGBA frames
// from stdin.
func BuildPipeArgs(p *EncodeParams, output string) []string {
	args := []string{
		"-hide_banner",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", strconv.Itoa(p.FPS),
		"-i", "-",
	}
	args = append(args, outputVideoArgs(p)...)
	return append(args, output)
}

// FramePattern is the printf pattern of PNG sequence files.
const FramePattern = "frame_%06d.png"

// FrameFileName returns the sequence file name of frame index.
func FrameFileName(index int) string {
	return fmt.Sprintf(FramePattern, index)
}

// BuildSequenceArgs builds the arguments of an encoder reading a PNG
// sequence written with FramePattern into dir.
func BuildSequenceArgs(p *EncodeParams, dir, output string) []string {
	args := []string{
		"-hide_banner",
		"-y",
		"-framerate", strconv.Itoa(p.FPS),
		"-start_number", "0",
		"-i", dir + "/" + FramePattern,
	}
	args = append(args, outputVideoArgs(p)...)
	return append(args, output)
}
