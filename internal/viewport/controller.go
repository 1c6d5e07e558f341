package viewport

// Zoom and pan limits for the scrubbing surface.
const (
	MinZoom = 0.1
	MaxZoom = 10.0

	// ZoomStep is the multiplicative factor applied by ZoomIn/ZoomOut.
	ZoomStep = 1.15

	// When auto-scrolling to keep the marker visible, the marker is
	// placed at 20% of the width while scrolling right and 80% while
	// scrolling left, preserving context in the direction of travel.
	leadFraction  = 0.2
	trailFraction = 0.8
)

// State is the serializable zoom/pan pair.
type State struct {
	Zoom float64 `json:"zoom"`
	Pan  float64 `json:"pan"`
}

// Controller owns the viewport state for one scrubbing surface and
// clamps it on every mutation.
type Controller struct {
	Zoom     float64
	Pan      float64
	Width    float64
	Duration float64
}

// NewController creates a controller at zoom 1, pan 0.
func NewController(width, duration float64) *Controller {
	return &Controller{Zoom: 1, Pan: 0, Width: width, Duration: duration}
}

// ClampZoom constrains a zoom value to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// ClampPan constrains a pan value to be non-negative.
func ClampPan(pan float64) float64 {
	if pan < 0 {
		return 0
	}
	return pan
}

// SetZoom sets the zoom, clamped.
func (c *Controller) SetZoom(zoom float64) {
	c.Zoom = ClampZoom(zoom)
}

// SetPan sets the pan, clamped.
func (c *Controller) SetPan(pan float64) {
	c.Pan = ClampPan(pan)
}

// ZoomIn multiplies the zoom by ZoomStep, clamped.
func (c *Controller) ZoomIn() {
	c.SetZoom(c.Zoom * ZoomStep)
}

// ZoomOut divides the zoom by ZoomStep, clamped.
func (c *Controller) ZoomOut() {
	c.SetZoom(c.Zoom / ZoomStep)
}

// SetWidth updates the surface width in pixels.
func (c *Controller) SetWidth(width float64) {
	if width > 0 {
		c.Width = width
	}
}

// TimeToPixel converts a media time under the current viewport.
func (c *Controller) TimeToPixel(t float64) float64 {
	return TimeToPixel(t, c.Duration, c.Width, c.Zoom, c.Pan)
}

// PixelToTime converts a pixel offset under the current viewport.
func (c *Controller) PixelToTime(p float64) float64 {
	return PixelToTime(p, c.Duration, c.Width, c.Zoom, c.Pan)
}

// TickIntervals returns the minor and major tick intervals for the
// current pixel density.
func (c *Controller) TickIntervals() (minor, major float64) {
	if c.Duration <= 0 {
		return maxInterval, MajorInterval(maxInterval)
	}
	minor = TimeInterval(c.Width * c.Zoom / c.Duration)
	return minor, MajorInterval(minor)
}

// EnsureMarkerVisible recomputes the pan when the marker at time t
// would fall outside [0, Width]. The marker lands at 20% of the width
// when it ran off the right edge and 80% when it ran off the left, so
// the view leads the marker rather than centering it. Returns true if
// the pan changed.
func (c *Controller) EnsureMarkerVisible(t float64) bool {
	if c.Duration <= 0 || c.Width <= 0 {
		return false
	}

	px := c.TimeToPixel(t)
	if px >= 0 && px <= c.Width {
		return false
	}

	target := leadFraction * c.Width
	if px < 0 {
		target = trailFraction * c.Width
	}

	c.Pan = ClampPan((t/c.Duration)*(c.Width*c.Zoom) - target)
	return true
}

// State returns the serializable zoom/pan pair.
func (c *Controller) State() State {
	return State{Zoom: c.Zoom, Pan: c.Pan}
}

// Clone returns a copy of the controller.
func (c *Controller) Clone() *Controller {
	clone := *c
	return &clone
}
