package validation

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const (
	// durationToleranceSecs is the allowed difference between the composition
	// duration and the container duration, on top of one frame interval.
	durationToleranceSecs = 0.1
	// fpsTolerance is the allowed frame rate difference.
	fpsTolerance = 0.01
)

// Options contains optional parameters for validation.
type Options struct {
	ExpectedCodec      string // encoder name, e.g. libx264
	ExpectedDimensions *[2]uint32
	ExpectedDuration   *float64
	ExpectedFPS        *float64
	ExpectedAudio      *bool
}

// ValidateOutputVideo validates an exported file with ffprobe.
// It delegates to ValidateWithAnalyzer using the DefaultAnalyzer.
func ValidateOutputVideo(ctx context.Context, ffprobePath, outputPath string, opts Options) (*Result, error) {
	return ValidateWithAnalyzer(NewDefaultAnalyzer(ctx, ffprobePath), outputPath, opts)
}

// CodecFamily maps an ffmpeg encoder name to the codec ffprobe reports.
func CodecFamily(encoder string) string {
	e := strings.ToLower(encoder)
	switch {
	case strings.Contains(e, "264"):
		return "h264"
	case strings.Contains(e, "265"), strings.Contains(e, "hevc"):
		return "hevc"
	case strings.Contains(e, "vp9"):
		return "vp9"
	case strings.Contains(e, "vp8"):
		return "vp8"
	case strings.Contains(e, "av1"), strings.Contains(e, "aom"):
		return "av1"
	case strings.Contains(e, "prores"):
		return "prores"
	default:
		return e
	}
}

// validateDimensions checks that dimensions match expected values.
func validateDimensions(actualW, actualH, expectedW, expectedH uint32) (bool, string) {
	if actualW == expectedW && actualH == expectedH {
		return true, fmt.Sprintf("Dimensions match: %dx%d", actualW, actualH)
	}
	return false, fmt.Sprintf("Dimension mismatch: got %dx%d, expected %dx%d",
		actualW, actualH, expectedW, expectedH)
}

// validateDuration checks that duration is within acceptable tolerance.
func validateDuration(actual, expected, fps float64) (bool, string) {
	diff := math.Abs(actual - expected)
	tolerance := durationToleranceSecs
	if fps > 0 {
		tolerance += 1 / fps
	}

	if diff <= tolerance {
		return true, fmt.Sprintf("Duration matches composition (%.2fs)", actual)
	}
	return false, fmt.Sprintf("Duration mismatch: got %.2fs, expected %.2fs (diff: %.2fs)",
		actual, expected, diff)
}

// validateFrameRate checks the stream frame rate.
func validateFrameRate(actual, expected float64) (bool, string) {
	if math.Abs(actual-expected) <= fpsTolerance {
		return true, fmt.Sprintf("Frame rate matches: %g fps", expected)
	}
	return false, fmt.Sprintf("Frame rate mismatch: got %.3f fps, expected %g fps", actual, expected)
}

// ValidateWithAnalyzer performs validation using a MediaAnalyzer interface.
// This allows for testing without external tool dependencies.
func ValidateWithAnalyzer(analyzer MediaAnalyzer, outputPath string, opts Options) (*Result, error) {
	result := &Result{
		IsCodecCorrect:      true,
		IsDimensionsCorrect: true,
		IsDurationCorrect:   true,
		IsFrameRateCorrect:  true,
		IsAudioCorrect:      true,
		ExpectedCodec:       opts.ExpectedCodec,
	}

	// Get output video properties
	outputProps, err := analyzer.GetVideoProperties(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get output video properties: %w", err)
	}

	// Validate video codec
	codecName, err := analyzer.GetVideoCodec(outputPath)
	if err != nil {
		result.IsCodecCorrect = false
	} else {
		result.CodecName = codecName
		if opts.ExpectedCodec != "" {
			result.IsCodecCorrect = strings.EqualFold(codecName, CodecFamily(opts.ExpectedCodec))
		}
	}

	// Validate dimensions if expected
	if opts.ExpectedDimensions != nil {
		result.ActualDimensions = &[2]uint32{outputProps.Width, outputProps.Height}
		result.ExpectedDimensions = opts.ExpectedDimensions
		result.IsDimensionsCorrect, result.DimensionsMessage = validateDimensions(
			outputProps.Width, outputProps.Height,
			opts.ExpectedDimensions[0], opts.ExpectedDimensions[1],
		)
	} else {
		result.DimensionsMessage = "Dimension validation skipped"
	}

	// Validate duration if expected
	if opts.ExpectedDuration != nil {
		actualDur := outputProps.DurationSecs
		fps := outputProps.FPS
		if opts.ExpectedFPS != nil {
			fps = *opts.ExpectedFPS
		}
		result.ActualDuration = &actualDur
		result.ExpectedDuration = opts.ExpectedDuration
		result.IsDurationCorrect, result.DurationMessage = validateDuration(actualDur, *opts.ExpectedDuration, fps)
	} else {
		result.DurationMessage = "Duration validation skipped"
	}

	// Validate frame rate if expected
	result.ActualFPS = outputProps.FPS
	if opts.ExpectedFPS != nil {
		result.IsFrameRateCorrect, result.FrameRateMessage = validateFrameRate(outputProps.FPS, *opts.ExpectedFPS)
	} else {
		result.FrameRateMessage = "Frame rate validation skipped"
	}

	// Validate audio
	audioStreams, err := analyzer.GetAudioStreams(outputPath)
	if err != nil {
		result.IsAudioCorrect = false
		result.AudioMessage = "Failed to get audio info"
	} else {
		result.IsAudioCorrect, result.AudioCodecs, result.AudioMessage = validateAudioStreams(audioStreams, opts.ExpectedAudio)
	}

	return result, nil
}

// validateAudioStreams checks that an audio track exists exactly when the
// composition has audio clips.
func validateAudioStreams(streams []AnalyzerAudioStream, expected *bool) (bool, []string, string) {
	var codecs []string
	for _, stream := range streams {
		codecs = append(codecs, strings.ToLower(stream.Codec))
	}

	var message string
	switch len(streams) {
	case 0:
		message = "No audio tracks"
	case 1:
		message = fmt.Sprintf("Audio track is %s (%d channels)", codecs[0], streams[0].Channels)
	default:
		message = fmt.Sprintf("%d audio tracks: %s", len(streams), strings.Join(codecs, ", "))
	}

	if expected == nil {
		return true, codecs, message
	}
	if *expected && len(streams) == 0 {
		return false, codecs, "Expected an audio track, found none"
	}
	if !*expected && len(streams) > 0 {
		return false, codecs, "Expected no audio, found " + message
	}
	return true, codecs, message
}
