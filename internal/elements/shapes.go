package elements

import (
	"github.com/gogpu/gg"

	"github.com/five82/montage/internal/animate"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// stroke is the optional outline shared by the shape drawers.
type stroke struct {
	color gg.RGBA
	width float64
	fill  bool
}

func newStroke(el *model.Element) (stroke, error) {
	s := stroke{width: el.PropFloat("strokeWidth", 0), fill: el.PropBool("fill", true)}
	c, err := model.ColorOr(el.PropString("stroke", ""), gg.Black)
	if err != nil {
		return s, err
	}
	s.color = c
	if el.PropString("stroke", "") != "" && s.width == 0 {
		s.width = 1
	}
	return s, nil
}

// paint fills and strokes the current path.
func (s stroke) paint(dc *gg.Context, fill gg.RGBA) error {
	if s.fill {
		setColor(dc, fill)
		if s.width > 0 {
			if err := dc.FillPreserve(); err != nil {
				return err
			}
		} else {
			return dc.Fill()
		}
	}
	if s.width > 0 {
		setColor(dc, s.color)
		dc.SetLineWidth(s.width)
		return dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

// Rect draws a rectangle, optionally rounded with the "radius" property.
type Rect struct {
	el     *model.Element
	stroke stroke
}

// NewRect creates a rectangle drawer.
func NewRect(el *model.Element) (render.Drawer, error) {
	s, err := newStroke(el)
	if err != nil {
		return nil, err
	}
	return &Rect{el: el, stroke: s}, nil
}

// Draw paints the rectangle.
func (r *Rect) Draw(st animate.State, s *render.Surface) error {
	dc := s.Context()
	radius := number(st, r.el, "radius", 0)
	if radius > 0 {
		dc.DrawRoundedRectangle(st.X, st.Y, st.Width, st.Height, min(radius, st.Width/2, st.Height/2))
	} else {
		dc.DrawRectangle(st.X, st.Y, st.Width, st.Height)
	}
	return r.stroke.paint(dc, st.Color)
}

// Ellipse draws an ellipse inscribed in the element box.
type Ellipse struct {
	stroke stroke
	circle bool
}

// NewEllipse creates an ellipse drawer.
func NewEllipse(el *model.Element) (render.Drawer, error) {
	s, err := newStroke(el)
	if err != nil {
		return nil, err
	}
	return &Ellipse{stroke: s}, nil
}

// NewCircle creates a drawer for the largest circle centered in the box.
func NewCircle(el *model.Element) (render.Drawer, error) {
	s, err := newStroke(el)
	if err != nil {
		return nil, err
	}
	return &Ellipse{stroke: s, circle: true}, nil
}

// Draw paints the ellipse.
func (e *Ellipse) Draw(st animate.State, s *render.Surface) error {
	dc := s.Context()
	cx, cy := st.X+st.Width/2, st.Y+st.Height/2
	if e.circle {
		dc.DrawCircle(cx, cy, min(st.Width, st.Height)/2)
	} else {
		dc.DrawEllipse(cx, cy, st.Width/2, st.Height/2)
	}
	return e.stroke.paint(dc, st.Color)
}
