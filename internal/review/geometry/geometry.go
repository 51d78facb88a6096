// Package geometry holds the percentage-space math for annotations and
// drawings. Every function works in page-percentage coordinates (0–100 on
// both axes); the only pixel math in the codebase lives in Transform.
package geometry

import (
	"math"

	"github.com/planmark/review-backend/internal/review/domain"
)

// DefaultHitThreshold is the eraser proximity threshold in percentage
// units. It is deliberately not scaled by zoom: stored coordinates are
// already zoom-independent.
const DefaultHitThreshold = 3.0

// Point is a position in page-percentage space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// DistanceToSegment returns the distance from p to the segment [a,b],
// projecting p onto the segment and clamping to its endpoints.
func DistanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// ClassifyHit reports whether point is close enough to the drawing's shape
// to count as an eraser hit. Each shape type has its own rule: freehand
// paths test sampled points, rectangles test their edges (clicking the
// interior does not hit), lines and arrows test the segment, circles test
// the ring.
func ClassifyHit(d *domain.Drawing, point Point, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultHitThreshold
	}
	s := d.Shape
	switch d.ShapeType {
	case domain.ShapeFreehand:
		for _, pp := range s.Points {
			if Distance(point, Point{X: pp.X, Y: pp.Y}) < threshold {
				return true
			}
		}
		return false
	case domain.ShapeRectangle:
		tl := Point{X: s.X, Y: s.Y}
		tr := Point{X: s.X + s.W, Y: s.Y}
		br := Point{X: s.X + s.W, Y: s.Y + s.H}
		bl := Point{X: s.X, Y: s.Y + s.H}
		return DistanceToSegment(point, tl, tr) < threshold ||
			DistanceToSegment(point, tr, br) < threshold ||
			DistanceToSegment(point, br, bl) < threshold ||
			DistanceToSegment(point, bl, tl) < threshold
	case domain.ShapeLine, domain.ShapeArrow:
		return DistanceToSegment(point, Point{X: s.X1, Y: s.Y1}, Point{X: s.X2, Y: s.Y2}) < threshold
	case domain.ShapeCircle:
		return math.Abs(Distance(point, Point{X: s.CX, Y: s.CY})-s.R) < threshold
	}
	return false
}

// StrokeWidthAt maps a pressure sample p in (0,1] to an effective stroke
// width for one freehand segment. Out-of-range samples fall back to the
// device-less default.
func StrokeWidthAt(baseWidth, p float64) float64 {
	if p <= 0 || p > 1 {
		p = domain.DefaultPressure
	}
	return baseWidth * (0.4 + 1.2*p)
}

// SegmentWidths returns the per-segment stroke widths for a freehand path.
// When no point deviates from the default pressure it returns nil, telling
// the renderer to draw the whole path at baseWidth instead of switching
// stroke state per segment.
func SegmentWidths(points []domain.PathPoint, baseWidth float64) []float64 {
	varied := false
	for _, pp := range points {
		if pp.Pressure != 0 && pp.Pressure != domain.DefaultPressure {
			varied = true
			break
		}
	}
	if !varied {
		return nil
	}
	widths := make([]float64, len(points))
	for i, pp := range points {
		p := pp.Pressure
		if p == 0 {
			p = domain.DefaultPressure
		}
		widths[i] = StrokeWidthAt(baseWidth, p)
	}
	return widths
}
