package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planmark/review-backend/internal/review/domain"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(Point{0, 0}, Point{3, 4}))
	assert.Equal(t, 0.0, Distance(Point{10, 10}, Point{10, 10}))
}

func TestDistanceToSegment(t *testing.T) {
	a := Point{0, 0}
	b := Point{10, 0}

	t.Run("projects onto the segment", func(t *testing.T) {
		assert.InDelta(t, 2.0, DistanceToSegment(Point{5, 2}, a, b), 1e-9)
	})

	t.Run("clamps beyond the endpoints", func(t *testing.T) {
		assert.InDelta(t, 5.0, DistanceToSegment(Point{13, 4}, a, b), 1e-9)
		assert.InDelta(t, 3.0, DistanceToSegment(Point{-3, 0}, a, b), 1e-9)
	})

	t.Run("degenerate segment falls back to point distance", func(t *testing.T) {
		assert.InDelta(t, 5.0, DistanceToSegment(Point{3, 4}, a, a), 1e-9)
	})
}

func rectDrawing(x, y, w, h float64) *domain.Drawing {
	return &domain.Drawing{
		ShapeType: domain.ShapeRectangle,
		Shape:     domain.ShapeData{X: x, Y: y, W: w, H: h},
	}
}

func TestClassifyHit_Rectangle(t *testing.T) {
	// rectangle from (10,10) to (30,20)
	d := rectDrawing(10, 10, 20, 10)

	t.Run("left edge hits", func(t *testing.T) {
		assert.True(t, ClassifyHit(d, Point{10, 15}, DefaultHitThreshold))
	})

	t.Run("interior misses", func(t *testing.T) {
		// (20,15) is more than 3 units from every edge
		assert.False(t, ClassifyHit(d, Point{20, 15}, DefaultHitThreshold))
	})

	t.Run("near an edge from outside hits", func(t *testing.T) {
		assert.True(t, ClassifyHit(d, Point{8.5, 15}, DefaultHitThreshold))
	})
}

func TestClassifyHit_Line(t *testing.T) {
	d := &domain.Drawing{
		ShapeType: domain.ShapeLine,
		Shape:     domain.ShapeData{X1: 0, Y1: 0, X2: 40, Y2: 0},
	}
	assert.True(t, ClassifyHit(d, Point{20, 2}, DefaultHitThreshold))
	assert.False(t, ClassifyHit(d, Point{20, 5}, DefaultHitThreshold))
}

func TestClassifyHit_Arrow(t *testing.T) {
	d := &domain.Drawing{
		ShapeType: domain.ShapeArrow,
		Shape:     domain.ShapeData{X1: 10, Y1: 10, X2: 30, Y2: 30},
	}
	assert.True(t, ClassifyHit(d, Point{20, 20}, DefaultHitThreshold))
	assert.False(t, ClassifyHit(d, Point{30, 10}, DefaultHitThreshold))
}

func TestClassifyHit_Circle(t *testing.T) {
	d := &domain.Drawing{
		ShapeType: domain.ShapeCircle,
		Shape:     domain.ShapeData{CX: 50, CY: 50, R: 10},
	}

	t.Run("on the ring hits", func(t *testing.T) {
		assert.True(t, ClassifyHit(d, Point{60, 50}, DefaultHitThreshold))
		assert.True(t, ClassifyHit(d, Point{50, 61.5}, DefaultHitThreshold))
	})

	t.Run("center misses", func(t *testing.T) {
		assert.False(t, ClassifyHit(d, Point{50, 50}, DefaultHitThreshold))
	})

	t.Run("far outside misses", func(t *testing.T) {
		assert.False(t, ClassifyHit(d, Point{80, 50}, DefaultHitThreshold))
	})
}

func TestClassifyHit_Freehand(t *testing.T) {
	d := &domain.Drawing{
		ShapeType: domain.ShapeFreehand,
		Shape: domain.ShapeData{Points: []domain.PathPoint{
			{X: 10, Y: 10}, {X: 12, Y: 11}, {X: 14, Y: 13},
		}},
	}
	assert.True(t, ClassifyHit(d, Point{12.5, 11}, DefaultHitThreshold))
	assert.False(t, ClassifyHit(d, Point{30, 30}, DefaultHitThreshold))
}

func TestClassifyHit_DefaultThreshold(t *testing.T) {
	d := rectDrawing(10, 10, 20, 10)
	// threshold <= 0 falls back to the default
	assert.True(t, ClassifyHit(d, Point{10, 15}, 0))
}

func TestStrokeWidthAt(t *testing.T) {
	assert.InDelta(t, 2.0, StrokeWidthAt(2, domain.DefaultPressure), 1e-9)
	assert.InDelta(t, 3.2, StrokeWidthAt(2, 1.0), 1e-9)
	assert.InDelta(t, 1.0, StrokeWidthAt(2, 0.1), 1e-9)
	// out of range falls back to the default pressure
	assert.InDelta(t, 2.0, StrokeWidthAt(2, 0), 1e-9)
	assert.InDelta(t, 2.0, StrokeWidthAt(2, 1.5), 1e-9)
}

func TestSegmentWidths(t *testing.T) {
	t.Run("constant width for non-pressure devices", func(t *testing.T) {
		points := []domain.PathPoint{
			{X: 1, Y: 1, Pressure: domain.DefaultPressure},
			{X: 2, Y: 2},
			{X: 3, Y: 3, Pressure: domain.DefaultPressure},
		}
		assert.Nil(t, SegmentWidths(points, 2))
	})

	t.Run("per-segment widths when pressure varies", func(t *testing.T) {
		points := []domain.PathPoint{
			{X: 1, Y: 1, Pressure: 0.2},
			{X: 2, Y: 2, Pressure: 1.0},
			{X: 3, Y: 3},
		}
		widths := SegmentWidths(points, 2)
		require.Len(t, widths, 3)
		assert.InDelta(t, 2*(0.4+1.2*0.2), widths[0], 1e-9)
		assert.InDelta(t, 3.2, widths[1], 1e-9)
		assert.InDelta(t, 2.0, widths[2], 1e-9)
	})
}

func TestTransform_ZoomIndependence(t *testing.T) {
	// the same device point at two zooms maps to different percentages,
	// but a stored percentage point renders at scaled pixels and converts
	// back to the identical stored value
	stored := Point{X: 25, Y: 75}

	for _, zoom := range []float64{0.5, 1.0, 2.0, 3.7} {
		tr := Transform{PageWidth: 800, PageHeight: 600, Zoom: zoom}
		px, py := tr.ToPixels(stored)
		back := tr.ToPercent(px, py)
		assert.InDelta(t, stored.X, back.X, 1e-9, "zoom %v", zoom)
		assert.InDelta(t, stored.Y, back.Y, 1e-9, "zoom %v", zoom)
	}
}

func TestTransform_ToPercent(t *testing.T) {
	tr := Transform{PageWidth: 1000, PageHeight: 500, Zoom: 2}
	p := tr.ToPercent(1000, 500)
	assert.InDelta(t, 50.0, p.X, 1e-9)
	assert.InDelta(t, 50.0, p.Y, 1e-9)
}

func TestOnPage(t *testing.T) {
	assert.True(t, OnPage(Point{0, 0}))
	assert.True(t, OnPage(Point{100, 100}))
	assert.False(t, OnPage(Point{-0.1, 50}))
	assert.False(t, OnPage(Point{50, 100.1}))
}
