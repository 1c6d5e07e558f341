// Package viewport maps between media time and the pixel space of a
// zoomable, pannable scrubbing surface. The conversion functions are
// pure; Controller owns the mutable zoom/pan pair and its clamping.
package viewport

// TimeToPixel converts a media time to a pixel offset on the surface.
// The full timeline occupies width*zoom pixels; pan shifts the visible
// window to the right.
func TimeToPixel(t, duration, width, zoom, pan float64) float64 {
	if duration <= 0 || width*zoom == 0 {
		return 0
	}
	return (t/duration)*(width*zoom) - pan
}

// PixelToTime is the exact inverse of TimeToPixel for a fixed
// (duration, width, zoom, pan).
func PixelToTime(p, duration, width, zoom, pan float64) float64 {
	if duration <= 0 || width*zoom == 0 {
		return 0
	}
	return ((p + pan) / (width * zoom)) * duration
}
