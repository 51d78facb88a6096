package domain

import "fmt"

// Shape types
const (
	ShapeFreehand  = "freehand"
	ShapeRectangle = "rectangle"
	ShapeLine      = "line"
	ShapeArrow     = "arrow"
	ShapeCircle    = "circle"
)

// ValidShapeType reports whether t names a drawable primitive.
func ValidShapeType(t string) bool {
	switch t {
	case ShapeFreehand, ShapeRectangle, ShapeLine, ShapeArrow, ShapeCircle:
		return true
	}
	return false
}

// PathPoint is one sampled point of a freehand path. Pressure is in (0,1];
// devices that do not report pressure sample at DefaultPressure.
type PathPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"p,omitempty"`
}

// DefaultPressure is assumed for points whose input device reported none.
const DefaultPressure = 0.5

// ShapeData is the per-type geometry payload of a Drawing, stored as a
// single jsonb column. Which fields are meaningful depends on the drawing's
// ShapeType:
//
//	freehand         Points
//	rectangle        X, Y, W, H (top-left anchor, extents)
//	line, arrow      X1, Y1, X2, Y2
//	circle           CX, CY, R
//
// All values are percentages of page width/height.
type ShapeData struct {
	Points []PathPoint `json:"points,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	CX float64 `json:"cx,omitempty"`
	CY float64 `json:"cy,omitempty"`
	R  float64 `json:"r,omitempty"`
}

// ValidateShape checks that shape carries the geometry its type requires.
func ValidateShape(shapeType string, shape ShapeData) error {
	switch shapeType {
	case ShapeFreehand:
		if len(shape.Points) == 0 {
			return &ValidationError{Field: "shape_data", Reason: "freehand path has no points"}
		}
		for _, p := range shape.Points {
			if !inPageRange(p.X) || !inPageRange(p.Y) {
				return &ValidationError{Field: "shape_data", Reason: "path point outside page"}
			}
		}
	case ShapeRectangle:
		if shape.W < 0 || shape.H < 0 {
			return &ValidationError{Field: "shape_data", Reason: "negative rectangle extent"}
		}
		if !inPageRange(shape.X) || !inPageRange(shape.Y) {
			return &ValidationError{Field: "shape_data", Reason: "rectangle anchor outside page"}
		}
	case ShapeLine, ShapeArrow:
		if !inPageRange(shape.X1) || !inPageRange(shape.Y1) || !inPageRange(shape.X2) || !inPageRange(shape.Y2) {
			return &ValidationError{Field: "shape_data", Reason: "segment endpoint outside page"}
		}
	case ShapeCircle:
		if shape.R < 0 {
			return &ValidationError{Field: "shape_data", Reason: "negative radius"}
		}
		if !inPageRange(shape.CX) || !inPageRange(shape.CY) {
			return &ValidationError{Field: "shape_data", Reason: "circle center outside page"}
		}
	default:
		return &ValidationError{Field: "shape_type", Reason: fmt.Sprintf("unknown shape type %q", shapeType)}
	}
	return nil
}

func inPageRange(v float64) bool { return v >= 0 && v <= 100 }
