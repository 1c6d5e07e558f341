package viewport

// tickBreakpoint maps a minimum pixel density to the tick interval used
// at that density. The breakpoints are hand-tuned for legibility and
// kept in one place so they can be re-validated against real rendering.
type tickBreakpoint struct {
	minPixelsPerSecond float64
	interval           float64
}

var tickBreakpoints = []tickBreakpoint{
	{200, 0.001},
	{100, 0.01},
	{50, 0.1},
	{25, 0.5},
	{10, 1},
	{5, 5},
	{2, 10},
	{1, 30},
	{0.5, 60},
}

// maxInterval is used when the view is zoomed out past every breakpoint.
const maxInterval = 120.0

// TimeInterval selects a human-legible tick interval, in seconds, for
// the given pixel density (width*zoom/duration). Intervals span one
// millisecond at extreme zoom-in to two minutes at extreme zoom-out.
func TimeInterval(pixelsPerSecond float64) float64 {
	for _, bp := range tickBreakpoints {
		if pixelsPerSecond >= bp.minPixelsPerSecond {
			return bp.interval
		}
	}
	return maxInterval
}

// MajorInterval picks the interval at which ticks additionally receive
// a text label. It is always a multiple of the minor interval: x10 for
// minors below half a second, x5 up through ten seconds, x2 beyond.
func MajorInterval(minor float64) float64 {
	switch {
	case minor < 0.5:
		return minor * 10
	case minor <= 10:
		return minor * 5
	default:
		return minor * 2
	}
}
