package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// AudioClip is one source placed on the output timeline.
type AudioClip struct {
	Src      string
	Start    float64 // seconds on the output timeline
	Trim     float64 // seconds skipped at the head of the source
	Duration float64
	Gain     float64
}

// AudioParams describes the mixed audio track.
type AudioParams struct {
	Codec    string
	Bitrate  string
	Duration float64 // length of the mixed track, normally the video length
}

// BuildAudioMixArgs builds a command that trims, delays and mixes clips
// into a single track of exactly params.Duration seconds.
func BuildAudioMixArgs(clips []AudioClip, params AudioParams, output string) ([]string, error) {
	if len(clips) == 0 {
		return nil, errors.New("no audio clips to mix")
	}
	if params.Duration <= 0 {
		return nil, fmt.Errorf("invalid audio duration %g", params.Duration)
	}

	sources := splitSources(clips)
	streams := make([]*ffmpeggo.Stream, 0, len(clips))
	for _, c := range clips {
		delay := strconv.FormatInt(int64(c.Start*1000+0.5), 10)
		s := sources[c.Src].next().
			Filter("atrim", ffmpeggo.Args{}, ffmpeggo.KwArgs{
				"start":    seconds(c.Trim),
				"duration": seconds(c.Duration),
			}).
			Filter("asetpts", ffmpeggo.Args{"PTS-STARTPTS"}).
			Filter("volume", ffmpeggo.Args{strconv.FormatFloat(c.Gain, 'f', -1, 64)}).
			Filter("adelay", ffmpeggo.Args{}, ffmpeggo.KwArgs{"delays": delay, "all": "1"})
		streams = append(streams, s)
	}

	mixed := streams[0]
	if len(streams) > 1 {
		mixed = ffmpeggo.Filter(streams, "amix", ffmpeggo.Args{}, ffmpeggo.KwArgs{
			"inputs":             strconv.Itoa(len(streams)),
			"normalize":          "0",
			"duration":           "longest",
			"dropout_transition": "0",
		})
	}
	mixed = mixed.Filter("apad", ffmpeggo.Args{})

	kwargs := ffmpeggo.KwArgs{
		"c:a": params.Codec,
		"t":   seconds(params.Duration),
	}
	if params.Bitrate != "" {
		kwargs["b:a"] = params.Bitrate
	}
	args, err := graphArgs(mixed.Output(output, kwargs).OverWriteOutput())
	if err != nil {
		return nil, err
	}
	return append([]string{"-hide_banner"}, args...), nil
}

// graphArgs renders a filter graph. ffmpeg-go panics on graphs it cannot
// label; that becomes an error so a bad mix never takes down the export.
func graphArgs(out *ffmpeggo.Stream) (args []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid audio filter graph: %v", r)
		}
	}()
	return out.GetArgs(), nil
}

// source is one input file shared by every clip that plays it. A file
// used more than once is opened once and fanned out with asplit, since
// the filter graph merges identical branches.
type source struct {
	in    *ffmpeggo.Stream
	split *ffmpeggo.Node
	used  int
}

func splitSources(clips []AudioClip) map[string]*source {
	uses := make(map[string]int)
	for _, c := range clips {
		uses[c.Src]++
	}
	sources := make(map[string]*source, len(uses))
	for _, c := range clips {
		if _, ok := sources[c.Src]; ok {
			continue
		}
		s := &source{in: ffmpeggo.Input(c.Src).Audio()}
		if uses[c.Src] > 1 {
			s.split = s.in.ASplit()
		}
		sources[c.Src] = s
	}
	return sources
}

// next returns a fresh branch of the source.
func (s *source) next() *ffmpeggo.Stream {
	if s.split == nil {
		return s.in
	}
	branch := s.split.Get(strconv.Itoa(s.used))
	s.used++
	return branch
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
