package elements

import (
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// Image draws a still image from the "src" property. The "fit" property
// is fill, contain or cover.
type Image struct {
	img image.Image
	fit string
}

// NewImage decodes the source image once for the renderer.
func NewImage(el *model.Element) (render.Drawer, error) {
	src := el.PropString("src", "")
	if src == "" {
		return nil, fmt.Errorf("image element has no src")
	}
	img, err := decodeFile(src)
	if err != nil {
		return nil, err
	}
	return &Image{img: img, fit: el.PropString("fit", FitFill)}, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, merrors.NewResourceError(path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, merrors.NewResourceError(path, err)
	}
	return img, nil
}

// Draw paints the image.
func (d *Image) Draw(st animate.State, s *render.Surface) error {
	drawFitted(s, d.img, st, d.fit)
	return nil
}
