package scene

import (
	"os"
	"sort"

	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/model"
)

// AudioClip is one audio element placed on the output timeline.
type AudioClip struct {
	ElementID string
	Src       string
	// Start is the absolute output time the clip begins at.
	Start float64
	// Trim is the offset into the source file.
	Trim     float64
	Duration float64
	Gain     float64
}

// End returns the absolute end of the clip.
func (c AudioClip) End() float64 {
	return c.Start + c.Duration
}

// CollectAudio walks the graph from the root and returns every audio
// clip with its absolute placement. Clips are cut to the windows of all
// their ancestors and to the root duration. A missing source fails unless
// the element is optional, in which case the clip is dropped.
func CollectAudio(g *Graph) ([]AudioClip, error) {
	w := audioWalker{g: g}
	if err := w.comp(g.Root, 0, 0, g.Duration); err != nil {
		return nil, err
	}
	sort.SliceStable(w.clips, func(i, j int) bool {
		return w.clips[i].Start < w.clips[j].Start
	})
	return w.clips, nil
}

type audioWalker struct {
	g     *Graph
	clips []AudioClip
}

// comp visits a composition whose local zero is at absolute time offset
// and which is audible on [lo, hi).
func (w *audioWalker) comp(ci int, offset, lo, hi float64) error {
	c := &w.g.Comps[ci]
	hi = min(hi, offset+c.Duration)
	for _, li := range c.Layers {
		l := &w.g.Layers[li]
		start := offset + l.Start
		llo, lhi := max(lo, start), min(hi, start+l.Duration)
		if lhi <= llo {
			continue
		}
		if l.Child != None {
			if err := w.comp(l.Child, start, llo, lhi); err != nil {
				return err
			}
			continue
		}
		for _, ei := range l.Elements {
			if err := w.element(ei, start, llo, lhi); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *audioWalker) element(ei int, offset, lo, hi float64) error {
	e := &w.g.Elements[ei]
	start := offset + e.Start
	elo, ehi := max(lo, start), min(hi, start+e.Duration)
	if ehi <= elo {
		return nil
	}
	if e.Child != None {
		return w.comp(e.Child, start, elo, ehi)
	}
	if e.Type() != model.TypeAudio {
		return nil
	}

	m := e.Model
	src := m.PropString("src", "")
	if _, err := os.Stat(src); err != nil {
		if m.Optional {
			logging.Warn("Dropping optional audio with missing source", "element", e.Label(), "src", src)
			return nil
		}
		return merrors.NewResourceError(src, err).WithElement(e.Label())
	}
	gain := m.PropFloat("volume", 1)
	if gain < 0 {
		return merrors.NewConfigErrorf("negative volume %v", gain).WithElement(e.Label())
	}

	w.clips = append(w.clips, AudioClip{
		ElementID: e.Label(),
		Src:       src,
		Start:     elo,
		Trim:      m.PropFloat("trim", 0) + (elo - start),
		Duration:  ehi - elo,
		Gain:      gain,
	})
	return nil
}
