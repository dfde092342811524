package export

import (
	"testing"

	"github.com/five82/montage/internal/config"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/scene"
)

func TestPlan(t *testing.T) {
	g := &scene.Graph{Viewport: model.Size{W: 64, H: 36}, FPS: 30, Duration: 4, Frames: 120}

	tests := []struct {
		name                    string
		workers, chunk, window  int
		wantWorkers, wantWindow int
		wantChunk               int
	}{
		{"explicit", 3, 10, 7, 3, 7, 10},
		{"explicit chunk and window", 1, 40, 2, 1, 2, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig(t.TempDir(), "")
			cfg.Workers = tt.workers
			cfg.ChunkSize = tt.chunk
			cfg.Window = tt.window

			got := New(Options{Config: cfg}).Plan(g)
			if got.Workers != tt.wantWorkers || got.Window != tt.wantWindow || got.ChunkSize != tt.wantChunk {
				t.Errorf("Plan() = %+v, want workers=%d window=%d chunk=%d",
					got, tt.wantWorkers, tt.wantWindow, tt.wantChunk)
			}
		})
	}

	cfg := config.NewConfig(t.TempDir(), "")
	cfg.Workers = 0
	got := New(Options{Config: cfg}).Plan(g)
	if got.Workers < 1 || got.Window < got.Workers || got.Window > 2*got.Workers || got.ChunkSize < 1 {
		t.Errorf("Plan() with auto workers = %+v", got)
	}
}
