package elements

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// DefaultPDFDPI is the rasterization density of PDF pages.
const DefaultPDFDPI = 150

// PDFPage draws one page of a PDF document. Properties: "src", "page"
// (1-based, default 1), "dpi" and "fit" (default contain).
type PDFPage struct {
	page image.Image
	fit  string
}

// NewPDFPage rasterizes the page once for the renderer. Each renderer
// opens its own document handle.
func NewPDFPage(el *model.Element) (render.Drawer, error) {
	src := el.PropString("src", "")
	if src == "" {
		return nil, fmt.Errorf("pdf element has no src")
	}

	doc, err := fitz.New(src)
	if err != nil {
		return nil, merrors.NewResourceError(src, err)
	}
	defer func() { _ = doc.Close() }()

	n := el.PropInt("page", 1)
	if n < 1 || n > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", n, doc.NumPage())
	}
	img, err := doc.ImageDPI(n-1, el.PropFloat("dpi", DefaultPDFDPI))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d of %s: %w", n, src, err)
	}
	return &PDFPage{page: img, fit: el.PropString("fit", FitContain)}, nil
}

// Draw paints the page.
func (d *PDFPage) Draw(st animate.State, s *render.Surface) error {
	drawFitted(s, d.page, st, d.fit)
	return nil
}
