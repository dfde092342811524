// Package validation provides post-export validation checks.
package validation

// MediaAnalyzer provides media analysis capabilities for validation.
// This interface allows validation logic to be tested without external tools.
type MediaAnalyzer interface {
	// GetVideoProperties returns video stream properties for the given file.
	GetVideoProperties(path string) (*AnalyzerVideoProperties, error)

	// GetAudioStreams returns audio stream information for the given file.
	GetAudioStreams(path string) ([]AnalyzerAudioStream, error)

	// GetVideoCodec returns the video codec name for the given file.
	GetVideoCodec(path string) (string, error)
}

// AnalyzerVideoProperties contains video stream information needed for validation.
type AnalyzerVideoProperties struct {
	Width        uint32
	Height       uint32
	DurationSecs float64
	FPS          float64
	Frames       uint64
	PixelFormat  string
}

// AnalyzerAudioStream contains audio stream information.
type AnalyzerAudioStream struct {
	Codec    string
	Channels int
}
