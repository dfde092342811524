package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidPreset indicates an unknown preset name was provided.
	ErrInvalidPreset = errors.New("invalid preset")

	// ErrInvalidCRF indicates a CRF value outside the encoder's range.
	ErrInvalidCRF = errors.New("CRF value out of range")

	// ErrInvalidWorkers indicates a worker count outside the valid range.
	ErrInvalidWorkers = errors.New("worker count out of range")

	// ErrInvalidChunking indicates a bad chunk size, window or memory fraction.
	ErrInvalidChunking = errors.New("invalid frame scheduling settings")

	// ErrInvalidEncoderPreset indicates an unknown x264 speed preset.
	ErrInvalidEncoderPreset = errors.New("invalid encoder preset")

	// ErrInvalidBitrate indicates a bitrate that ffmpeg would not accept.
	ErrInvalidBitrate = errors.New("invalid bitrate")

	// ErrMissingEncoder indicates no encoder binary or codec was configured.
	ErrMissingEncoder = errors.New("encoder not configured")
)
