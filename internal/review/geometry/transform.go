package geometry

// Transform converts between device-pixel positions on the rendered page
// surface and page-percentage space. PageWidth/PageHeight are the rendered
// page size in device pixels at zoom 1.0; Zoom is the host's current display
// scale. Only rendering ever depends on Zoom — stored records never do.
type Transform struct {
	PageWidth  float64
	PageHeight float64
	Zoom       float64
}

func (t Transform) zoom() float64 {
	if t.Zoom <= 0 {
		return 1
	}
	return t.Zoom
}

// ToPercent converts a device-pixel position to percentage space.
func (t Transform) ToPercent(px, py float64) Point {
	z := t.zoom()
	return Point{
		X: px / (t.PageWidth * z) * 100,
		Y: py / (t.PageHeight * z) * 100,
	}
}

// ToPixels converts a percentage-space point to device pixels at the
// current zoom, for on-screen rendering only.
func (t Transform) ToPixels(p Point) (px, py float64) {
	z := t.zoom()
	return p.X / 100 * t.PageWidth * z, p.Y / 100 * t.PageHeight * z
}

// OnPage reports whether p lies on the page surface.
func OnPage(p Point) bool {
	return p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 100
}
