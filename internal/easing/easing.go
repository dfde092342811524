// Package easing provides named easing curves mapping progress in [0,1] to
// eased progress.
package easing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Func maps linear progress p in [0,1] to eased progress.
type Func func(p float64) float64

var registry = map[string]Func{
	"linear":         Linear,
	"easein":         InQuad,
	"easeout":        OutQuad,
	"easeinout":      InOutQuad,
	"easeincubic":    InCubic,
	"easeoutcubic":   OutCubic,
	"easeinoutcubic": InOutCubic,
	"easeinsine":     InSine,
	"easeoutsine":    OutSine,
	"easeinoutsine":  InOutSine,
	"step":           Step,
}

// Linear returns p unchanged.
func Linear(p float64) float64 { return p }

func InQuad(p float64) float64  { return p * p }
func OutQuad(p float64) float64 { return p * (2 - p) }

func InOutQuad(p float64) float64 {
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

func InCubic(p float64) float64 { return p * p * p }

func OutCubic(p float64) float64 {
	q := p - 1
	return q*q*q + 1
}

func InOutCubic(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

func InSine(p float64) float64    { return 1 - math.Cos(p*math.Pi/2) }
func OutSine(p float64) float64   { return math.Sin(p * math.Pi / 2) }
func InOutSine(p float64) float64 { return -(math.Cos(math.Pi*p) - 1) / 2 }

// Step holds the start value until the end of the segment.
func Step(p float64) float64 {
	if p >= 1 {
		return 1
	}
	return 0
}

func normalize(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(name))
}

// Lookup returns the curve registered under name. Names are matched case
// and separator insensitively, so "ease-in-out" and "easeInOut" are equal.
// The empty name is linear.
func Lookup(name string) (Func, error) {
	if name == "" {
		return Linear, nil
	}
	fn, ok := registry[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// Names returns the registered curve names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply clamps p to [0,1] and evaluates fn.
func Apply(fn Func, p float64) float64 {
	switch {
	case p <= 0:
		return fn(0)
	case p >= 1:
		return fn(1)
	}
	return fn(p)
}
