package validation

import "fmt"

// Result contains the overall validation result.
type Result struct {
	IsCodecCorrect      bool
	IsDimensionsCorrect bool
	IsDurationCorrect   bool
	IsFrameRateCorrect  bool
	IsAudioCorrect      bool

	// Details
	CodecName          string
	ExpectedCodec      string
	ActualDimensions   *[2]uint32
	ExpectedDimensions *[2]uint32
	DimensionsMessage  string
	ActualDuration     *float64
	ExpectedDuration   *float64
	DurationMessage    string
	ActualFPS          float64
	FrameRateMessage   string
	AudioCodecs        []string
	AudioMessage       string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.IsCodecCorrect &&
		r.IsDimensionsCorrect &&
		r.IsDurationCorrect &&
		r.IsFrameRateCorrect &&
		r.IsAudioCorrect
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{
			Name:    "Video codec",
			Passed:  r.IsCodecCorrect,
			Details: formatCodecDetails(r.CodecName, r.ExpectedCodec, r.IsCodecCorrect),
		},
		{
			Name:    "Dimensions",
			Passed:  r.IsDimensionsCorrect,
			Details: r.DimensionsMessage,
		},
		{
			Name:    "Video duration",
			Passed:  r.IsDurationCorrect,
			Details: r.DurationMessage,
		},
		{
			Name:    "Frame rate",
			Passed:  r.IsFrameRateCorrect,
			Details: r.FrameRateMessage,
		},
		{
			Name:    "Audio track",
			Passed:  r.IsAudioCorrect,
			Details: r.AudioMessage,
		},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}

func formatCodecDetails(codecName, expected string, passed bool) string {
	switch {
	case codecName == "":
		return "Unknown codec"
	case passed && expected != "":
		return fmt.Sprintf("%s (from %s)", codecName, expected)
	case passed:
		return codecName
	default:
		return fmt.Sprintf("Expected %s output, got %s", CodecFamily(expected), codecName)
	}
}
