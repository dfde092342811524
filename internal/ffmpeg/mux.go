package ffmpeg

import (
	"path/filepath"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// BuildMuxArgs builds a command that copies the encoded video and, when
// audio is not empty, the mixed audio track into output. The container is
// chosen from output's extension, or from format when output has none.
func BuildMuxArgs(video, audio, output, format string) []string {
	kwargs := ffmpeggo.KwArgs{"c:v": "copy"}
	streams := []*ffmpeggo.Stream{ffmpeggo.Input(video).Video()}
	if audio != "" {
		streams = append(streams, ffmpeggo.Input(audio).Audio())
		kwargs["c:a"] = "copy"
	}

	ext := strings.ToLower(filepath.Ext(output))
	switch {
	case format != "":
		kwargs["f"] = format
	case ext == "":
		kwargs["f"] = "mp4"
	}
	if ext == ".mp4" || ext == ".mov" || format == "mp4" || (ext == "" && format == "") {
		kwargs["movflags"] = "+faststart"
	}

	args := ffmpeggo.Output(streams, output, kwargs).OverWriteOutput().GetArgs()
	return append([]string{"-hide_banner"}, args...)
}

// FormatForExt returns the ffmpeg muxer name for a container extension.
func FormatForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp4":
		return "mp4"
	case ".mov":
		return "mov"
	case ".mkv":
		return "matroska"
	case ".webm":
		return "webm"
	default:
		return ""
	}
}
