// Package geometry provides the bounding-box and nearest-neighbor math used
// to recover diagram structure from positioned SVG shapes.
package geometry

import (
	"math"
	"regexp"
	"strconv"
)

// Box is an axis-aligned bounding box. Left <= Right and Top <= Bottom.
type Box struct {
	Left, Top, Right, Bottom float64
}

// Point is a 2D coordinate in the rendered diagram's coordinate space.
type Point struct {
	X, Y float64
}

// Contains reports whether b fully encloses inner. Equal boxes contain
// each other.
func (b Box) Contains(inner Box) bool {
	return b.Left <= inner.Left && b.Top <= inner.Top &&
		b.Right >= inner.Right && b.Bottom >= inner.Bottom
}

// ContainsPoint reports whether p lies within b, borders included.
func (b Box) ContainsPoint(p Point) bool {
	return b.Left <= p.X && p.X <= b.Right && b.Top <= p.Y && p.Y <= b.Bottom
}

// Area returns the box area.
func (b Box) Area() float64 {
	return (b.Right - b.Left) * (b.Bottom - b.Top)
}

var translateRe = regexp.MustCompile(`translate\(\s*(-?[\d.]+)\s*,\s*(-?[\d.]+)\s*\)`)

// BoxFromAttrs derives a bounding box from shape attributes: either explicit
// x/y plus width/height, or a translate(x,y) transform. Missing width or
// height default to zero, leaving a degenerate point box that still works
// for containment tests. Returns false when no position can be parsed, so
// the shape is excluded from spatial reasoning rather than guessed at.
func BoxFromAttrs(attrs map[string]string) (Box, bool) {
	w := parseFloatOr(attrs["width"], 0)
	h := parseFloatOr(attrs["height"], 0)

	if xs, ok := attrs["x"]; ok {
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(attrs["y"], 64)
		if errX != nil || errY != nil {
			return Box{}, false
		}
		return Box{Left: x, Top: y, Right: x + w, Bottom: y + h}, true
	}

	if m := translateRe.FindStringSubmatch(attrs["transform"]); m != nil {
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX != nil || errY != nil {
			return Box{}, false
		}
		return Box{Left: x, Top: y, Right: x + w, Bottom: y + h}, true
	}

	return Box{}, false
}

// Center returns the box's center point.
func (b Box) Center() Point {
	return Point{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Euclidean returns the straight-line distance between two points.
func Euclidean(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Nearest scans candidates linearly and returns the index of the one
// minimizing dist, or -1 when candidates is empty.
func Nearest[T any](candidates []T, dist func(T) float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if d := dist(c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func parseFloatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
