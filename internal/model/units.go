package model

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unit is the unit of a geometry value.
type Unit string

const (
	UnitNone    Unit = ""
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
	UnitVW      Unit = "vw"
	UnitVH      Unit = "vh"
	UnitVMin    Unit = "vmin"
	UnitVMax    Unit = "vmax"
)

// Size is a concrete pixel size.
type Size struct {
	W, H float64
}

// Axis selects which dimension of the parent a percentage refers to.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Of returns the extent of s along the axis.
func (a Axis) Of(s Size) float64 {
	if a == AxisY {
		return s.H
	}
	return s.W
}

// Value is a unit-aware length. The zero Value is unset.
type Value struct {
	Amount float64
	Unit   Unit
}

// Px returns an absolute pixel value.
func Px(v float64) Value { return Value{Amount: v, Unit: UnitPx} }

// Percent returns a percentage of the parent extent.
func Percent(v float64) Value { return Value{Amount: v, Unit: UnitPercent} }

// VW returns a percentage of the viewport width.
func VW(v float64) Value { return Value{Amount: v, Unit: UnitVW} }

// VH returns a percentage of the viewport height.
func VH(v float64) Value { return Value{Amount: v, Unit: UnitVH} }

// IsSet reports whether the value carries a unit.
func (v Value) IsSet() bool {
	return v.Unit != UnitNone
}

// IsZero lets yaml omitempty drop unset values.
func (v Value) IsZero() bool {
	return !v.IsSet()
}

func (v Value) String() string {
	if !v.IsSet() {
		return ""
	}
	return strconv.FormatFloat(v.Amount, 'f', -1, 64) + string(v.Unit)
}

// Resolve converts the value to pixels. Percentages are taken of
// parent's extent along axis. Viewport units refer to the root
// composition size. Unset values resolve to 0.
func (v Value) Resolve(axis Axis, parent, viewport Size) (float64, error) {
	switch v.Unit {
	case UnitNone:
		return 0, nil
	case UnitPx:
		return v.Amount, nil
	case UnitPercent:
		extent := axis.Of(parent)
		if extent <= 0 {
			return 0, fmt.Errorf("cannot resolve %s against unknown parent size", v)
		}
		return v.Amount / 100 * extent, nil
	case UnitVW:
		return v.Amount / 100 * viewport.W, nil
	case UnitVH:
		return v.Amount / 100 * viewport.H, nil
	case UnitVMin:
		return v.Amount / 100 * min(viewport.W, viewport.H), nil
	case UnitVMax:
		return v.Amount / 100 * max(viewport.W, viewport.H), nil
	default:
		return 0, fmt.Errorf("unknown unit %q", v.Unit)
	}
}

// ParseValue parses "12", "12px", "50%", "10vw", "5vh", "3vmin" or "3vmax".
// A bare number is in pixels.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, nil
	}

	units := []Unit{UnitVMin, UnitVMax, UnitPx, UnitPercent, UnitVW, UnitVH}
	unit := UnitPx
	num := s
	for _, u := range units {
		if strings.HasSuffix(s, string(u)) {
			unit = u
			num = strings.TrimSpace(strings.TrimSuffix(s, string(u)))
			break
		}
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid length %q", s)
	}
	return Value{Amount: f, Unit: unit}, nil
}

// UnmarshalYAML accepts a number (pixels) or a string with a unit suffix.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", node.Line)
	}
	parsed, err := ParseValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML writes pixel values as plain numbers.
func (v Value) MarshalYAML() (any, error) {
	if v.Unit == UnitPx {
		return v.Amount, nil
	}
	return v.String(), nil
}
