// Package config provides export configuration types and defaults for montage.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Default constants
const (
	// DefaultCodec is the ffmpeg video encoder used for the output.
	DefaultCodec = "libx264"

	// DefaultPixelFormat is the output pixel format. Frames are always
	// piped as rgba and converted by the encoder.
	DefaultPixelFormat = "yuv420p"

	// DefaultCRF is the constant rate factor of the balanced preset.
	DefaultCRF uint8 = 20

	// DefaultEncoderPreset is the x264 speed preset of the balanced preset.
	DefaultEncoderPreset = "medium"

	// DefaultAudioCodec is the codec of the mixed audio track.
	DefaultAudioCodec = "aac"

	// DefaultAudioBitrate is the bitrate of the mixed audio track.
	DefaultAudioBitrate = "192k"

	// DefaultChunkSize is the number of consecutive frames handed to a
	// worker at once. Zero picks one second of frames.
	DefaultChunkSize = 0

	// DefaultMemoryFraction is the share of available memory the frame
	// window may occupy.
	DefaultMemoryFraction = 0.5

	// DraftPresetCRF is the CRF for the draft preset.
	DraftPresetCRF uint8 = 28

	// DraftPresetEncoderPreset is the x264 preset for the draft preset.
	DraftPresetEncoderPreset = "veryfast"

	// QualityPresetCRF is the CRF for the quality preset.
	QualityPresetCRF uint8 = 16

	// QualityPresetEncoderPreset is the x264 preset for the quality preset.
	QualityPresetEncoderPreset = "slow"

	// MaxCRF is the maximum valid CRF value for x264.
	MaxCRF uint8 = 51

	// MaxWorkers bounds the worker pool.
	MaxWorkers = 256
)

// EncoderPresets lists the speed presets accepted by x264 and x265.
var EncoderPresets = map[string]bool{
	"ultrafast": true,
	"superfast": true,
	"veryfast":  true,
	"faster":    true,
	"fast":      true,
	"medium":    true,
	"slow":      true,
	"slower":    true,
	"veryslow":  true,
	"placebo":   true,
}

var bitratePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[kKmM]?$`)

// Preset represents a bundled quality/speed choice.
type Preset string

const (
	PresetDraft    Preset = "draft"
	PresetBalanced Preset = "balanced"
	PresetQuality  Preset = "quality"
)

// ParsePreset parses a string into a Preset.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(s) {
	case "draft":
		return PresetDraft, nil
	case "balanced":
		return PresetBalanced, nil
	case "quality":
		return PresetQuality, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: draft, balanced, quality", ErrInvalidPreset, s)
	}
}

// String returns the string representation of the preset.
func (p Preset) String() string {
	return string(p)
}

// PresetValues contains bundled parameter values for a preset.
type PresetValues struct {
	CRF           uint8
	EncoderPreset string
}

// GetPresetValues returns the values for a given preset.
func GetPresetValues(p Preset) PresetValues {
	switch p {
	case PresetDraft:
		return PresetValues{CRF: DraftPresetCRF, EncoderPreset: DraftPresetEncoderPreset}
	case PresetQuality:
		return PresetValues{CRF: QualityPresetCRF, EncoderPreset: QualityPresetEncoderPreset}
	default:
		return PresetValues{CRF: DefaultCRF, EncoderPreset: DefaultEncoderPreset}
	}
}

// Config holds all configuration for an export.
type Config struct {
	OutputDir string
	LogDir    string
	TempDir   string // Optional, defaults to the output file's directory

	FFmpegPath  string
	FFprobePath string

	// Parallelism. Zero means derive from the host.
	Workers   int
	ChunkSize int
	Window    int

	// UsePipe streams raw frames into the encoder's stdin. When false the
	// frames are written as a PNG sequence first.
	UsePipe bool

	Codec         string
	PixelFormat   string
	CRF           uint8
	EncoderPreset string
	Bitrate       string // Optional, overrides CRF when set (e.g. "8M")

	AudioCodec   string
	AudioBitrate string

	MemoryFraction float64

	// ValidateOutput probes the finished file with ffprobe.
	ValidateOutput bool

	// Selected preset (optional)
	Preset *Preset
}

// NewConfig creates a new Config with default values.
func NewConfig(outputDir, logDir string) *Config {
	return &Config{
		OutputDir:      outputDir,
		LogDir:         logDir,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		ChunkSize:      DefaultChunkSize,
		UsePipe:        true,
		Codec:          DefaultCodec,
		PixelFormat:    DefaultPixelFormat,
		CRF:            DefaultCRF,
		EncoderPreset:  DefaultEncoderPreset,
		AudioCodec:     DefaultAudioCodec,
		AudioBitrate:   DefaultAudioBitrate,
		MemoryFraction: DefaultMemoryFraction,
		ValidateOutput: true,
	}
}

// ApplyPreset applies the given preset to the config.
func (c *Config) ApplyPreset(p Preset) {
	values := GetPresetValues(p)
	c.Preset = &p
	c.CRF = values.CRF
	c.EncoderPreset = values.EncoderPreset
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: must be 0-%d, got %d", ErrInvalidWorkers, MaxWorkers, c.Workers)
	}

	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk size must not be negative, got %d", ErrInvalidChunking, c.ChunkSize)
	}

	if c.Window < 0 {
		return fmt.Errorf("%w: window must not be negative, got %d", ErrInvalidChunking, c.Window)
	}

	if c.CRF > MaxCRF {
		return fmt.Errorf("%w: must be 0-%d, got %d", ErrInvalidCRF, MaxCRF, c.CRF)
	}

	if c.EncoderPreset != "" && !EncoderPresets[c.EncoderPreset] {
		return fmt.Errorf("%w: %q", ErrInvalidEncoderPreset, c.EncoderPreset)
	}

	if c.Bitrate != "" && !bitratePattern.MatchString(c.Bitrate) {
		return fmt.Errorf("%w: video bitrate %q", ErrInvalidBitrate, c.Bitrate)
	}

	if c.AudioBitrate != "" && !bitratePattern.MatchString(c.AudioBitrate) {
		return fmt.Errorf("%w: audio bitrate %q", ErrInvalidBitrate, c.AudioBitrate)
	}

	if c.MemoryFraction <= 0 || c.MemoryFraction > 1 {
		return fmt.Errorf("%w: memory fraction must be in (0, 1], got %g", ErrInvalidChunking, c.MemoryFraction)
	}

	if c.Codec == "" {
		return fmt.Errorf("%w: codec must be set", ErrMissingEncoder)
	}

	if c.FFmpegPath == "" {
		return fmt.Errorf("%w: ffmpeg path must be set", ErrMissingEncoder)
	}

	return nil
}

// GetTempDir returns the temp directory, falling back to OutputDir if not set.
func (c *Config) GetTempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return c.OutputDir
}
