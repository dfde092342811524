package export

import (
	"context"

	"github.com/five82/montage/internal/ffmpeg"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/scene"
)

// audioFile is the name of the mixed audio track inside the work dir.
const audioFile = "audio.m4a"

// audioClips converts collected clips into mixer inputs.
func audioClips(clips []scene.AudioClip) []ffmpeg.AudioClip {
	out := make([]ffmpeg.AudioClip, len(clips))
	for i, c := range clips {
		out[i] = ffmpeg.AudioClip{
			Src:      c.Src,
			Start:    c.Start,
			Trim:     c.Trim,
			Duration: c.Duration,
			Gain:     c.Gain,
		}
	}
	return out
}

// mixAudio mixes every clip into one track as long as the video.
func (e *Exporter) mixAudio(ctx context.Context, r *run) (string, error) {
	e.step(StepAudio)
	out := r.workDir.Join(audioFile)

	args, err := ffmpeg.BuildAudioMixArgs(audioClips(r.clips), ffmpeg.AudioParams{
		Codec:    e.cfg.AudioCodec,
		Bitrate:  e.cfg.AudioBitrate,
		Duration: float64(r.g.Frames) / float64(r.g.FPS),
	}, out)
	if err != nil {
		return "", stepError(StepAudio, err)
	}

	logging.Info("mixing audio", "clips", len(r.clips))
	if err := ffmpeg.Run(ctx, e.cfg.FFmpegPath, args, ffmpeg.Options{}); err != nil {
		return "", stepError(StepAudio, err)
	}
	return out, nil
}
