package elements

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/five82/montage/internal/animate"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// QRCode draws a QR code for the "content" property. "level" is one of
// L, M, Q or H. The code is drawn square, centered in the box, in the
// element color on the "background" color.
type QRCode struct {
	code *qrcode.QRCode

	size   int
	cached image.Image
}

// NewQRCode encodes the content once for the renderer.
func NewQRCode(el *model.Element) (render.Drawer, error) {
	content := el.PropString("content", el.PropString("text", ""))
	if content == "" {
		return nil, fmt.Errorf("qrcode element has no content")
	}
	level, err := recoveryLevel(el.PropString("level", "M"))
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	if fg := el.Color; fg != "" {
		c, err := model.ParseColor(fg)
		if err != nil {
			return nil, err
		}
		code.ForegroundColor = c.Color()
	}
	if bg := el.PropString("background", ""); bg != "" {
		c, err := model.ParseColor(bg)
		if err != nil {
			return nil, err
		}
		code.BackgroundColor = c.Color()
	}
	code.DisableBorder = !el.PropBool("border", true)
	return &QRCode{code: code}, nil
}

func recoveryLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(s) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("unknown qr recovery level %q", s)
}

// Draw paints the code.
func (q *QRCode) Draw(st animate.State, s *render.Surface) error {
	side := math.Min(st.Width, st.Height)
	size := int(math.Round(side))
	if size <= 0 {
		return nil
	}
	if size != q.size {
		q.cached = q.code.Image(size)
		q.size = size
	}
	x := st.X + (st.Width-side)/2
	y := st.Y + (st.Height-side)/2
	s.DrawRaster(q.cached, x, y, side, side)
	return nil
}
