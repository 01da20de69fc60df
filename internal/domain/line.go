package domain

// LineData is one whiteboard stroke. Coordinates are normalized to [0,1]
// against the sender's own canvas size, so receivers with different viewports
// can scale the line back without distortion. The server never transforms
// coordinates, it only relays them.
type LineData struct {
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// Normalized reports whether both endpoints fall inside the unit square.
func (l LineData) Normalized() bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(l.X0) && in(l.Y0) && in(l.X1) && in(l.Y1)
}

// Scale maps the stroke into a w×h pixel canvas. Used by Go clients when
// rendering, and nowhere on the relay path.
func (l LineData) Scale(w, h float64) LineData {
	return LineData{
		X0:    l.X0 * w,
		Y0:    l.Y0 * h,
		X1:    l.X1 * w,
		Y1:    l.Y1 * h,
		Color: l.Color,
		Size:  l.Size,
	}
}
