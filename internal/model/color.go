package model

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
)

var namedColors = map[string]gg.RGBA{
	"black":       gg.Black,
	"white":       gg.White,
	"red":         gg.RGB(1, 0, 0),
	"green":       gg.RGB(0, 0.5, 0),
	"blue":        gg.RGB(0, 0, 1),
	"yellow":      gg.RGB(1, 1, 0),
	"gray":        gg.RGB(0.5, 0.5, 0.5),
	"transparent": gg.Transparent,
}

// ParseColor parses a named color or a hex color in #rgb, #rgba, #rrggbb
// or #rrggbbaa form.
func ParseColor(s string) (gg.RGBA, error) {
	if c, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
	}
	return gg.Hex(hex), nil
}

// ColorOr parses s, returning def when s is empty.
func ColorOr(s string, def gg.RGBA) (gg.RGBA, error) {
	if s == "" {
		return def, nil
	}
	return ParseColor(s)
}
