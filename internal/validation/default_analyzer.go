package validation

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/montage/internal/ffprobe"
)

// DefaultAnalyzer implements MediaAnalyzer using ffprobe. Each file is
// probed once.
type DefaultAnalyzer struct {
	ctx    context.Context
	prober ffprobe.Prober

	mu    sync.Mutex
	cache map[string]*ffprobe.MediaInfo
}

// NewDefaultAnalyzer creates a new DefaultAnalyzer instance.
func NewDefaultAnalyzer(ctx context.Context, ffprobePath string) *DefaultAnalyzer {
	return &DefaultAnalyzer{
		ctx:    ctx,
		prober: ffprobe.Prober{Path: ffprobePath},
		cache:  make(map[string]*ffprobe.MediaInfo),
	}
}

func (a *DefaultAnalyzer) probe(path string) (*ffprobe.MediaInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if info, ok := a.cache[path]; ok {
		return info, nil
	}
	info, err := a.prober.Probe(a.ctx, path)
	if err != nil {
		return nil, err
	}
	a.cache[path] = info
	return info, nil
}

// GetVideoProperties returns video stream properties using ffprobe.
func (a *DefaultAnalyzer) GetVideoProperties(path string) (*AnalyzerVideoProperties, error) {
	info, err := a.probe(path)
	if err != nil {
		return nil, err
	}
	if info.Video == nil {
		return nil, fmt.Errorf("no video stream found in %s", path)
	}
	return &AnalyzerVideoProperties{
		Width:        uint32(info.Video.Width),
		Height:       uint32(info.Video.Height),
		DurationSecs: info.Duration,
		FPS:          info.Video.FPS,
		Frames:       info.Video.Frames,
		PixelFormat:  info.Video.PixelFormat,
	}, nil
}

// GetAudioStreams returns audio stream information using ffprobe.
func (a *DefaultAnalyzer) GetAudioStreams(path string) ([]AnalyzerAudioStream, error) {
	info, err := a.probe(path)
	if err != nil {
		return nil, err
	}

	result := make([]AnalyzerAudioStream, len(info.Audio))
	for i, s := range info.Audio {
		result[i] = AnalyzerAudioStream{
			Codec:    s.CodecName,
			Channels: s.Channels,
		}
	}
	return result, nil
}

// GetVideoCodec returns the video codec name using ffprobe.
func (a *DefaultAnalyzer) GetVideoCodec(path string) (string, error) {
	info, err := a.probe(path)
	if err != nil {
		return "", err
	}
	if info.Video == nil {
		return "", fmt.Errorf("no video stream found in %s", path)
	}
	return info.Video.CodecName, nil
}
