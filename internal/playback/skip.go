// Package playback decides, for every playback tick, whether the
// current position sits inside a removed range and must be skipped
// past it.
package playback

import (
	"context"
	"log/slog"
	"sync"

	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

// SeekEpsilon is added to a cut's end when seeking past it. Strictly
// greater than zero so the landing position does not re-match the same
// half-open range and loop.
const SeekEpsilon = 0.0001

// Seeker is the player-facing port for issuing seek commands. The
// player is responsible for clamping to [0, duration].
type Seeker interface {
	Seek(t float64)
}

// SeekerFunc adapts a function to the Seeker interface.
type SeekerFunc func(t float64)

// Seek calls the underlying function.
func (f SeekerFunc) Seek(t float64) { f(t) }

// Decide is the pure skip decision: if t falls inside a cut of the
// merged set, it returns the position just past that cut's end and
// true. Positions crossing a cut boundary between samples never fire.
func Decide(set timeline.RangeSet, t float64) (float64, bool) {
	i := set.Find(t)
	if i < 0 {
		return 0, false
	}
	return set[i].End + SeekEpsilon, true
}

// SkipController applies Decide to a live stream of playback-time
// samples and drives a Seeker. It holds at most one subscription at a
// time; attaching a new stream tears the previous one down first, so
// skip corrections can never fire against a superseded source.
type SkipController struct {
	mu     sync.Mutex
	ranges timeline.RangeSet
	seeker Seeker
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewSkipController creates a controller over the given seeker.
func NewSkipController(seeker Seeker, logger *slog.Logger) *SkipController {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkipController{seeker: seeker, logger: logger}
}

// SetRanges swaps the accepted cut set, e.g. after an accept, undo or
// redo. The set must already be merged.
func (c *SkipController) SetRanges(set timeline.RangeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ranges = set.Clone()
}

// OnTime evaluates one playback sample, issuing a seek when the
// position falls inside a cut. Returns the seek target and whether a
// seek fired. Repeated samples inside the same cut re-issue the same
// target; that is harmless once the player has moved past the end.
func (c *SkipController) OnTime(t float64) (float64, bool) {
	c.mu.Lock()
	target, ok := Decide(c.ranges, t)
	c.mu.Unlock()

	if !ok {
		return 0, false
	}
	c.seeker.Seek(target)
	return target, true
}

// Subscribe consumes playback-time samples from the channel on a new
// goroutine until the context is cancelled or the channel closes. Any
// previous subscription is torn down first and fully drained before
// the new one attaches.
func (c *SkipController) Subscribe(ctx context.Context, times <-chan float64) {
	c.Unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-times:
				if !ok {
					return
				}
				if target, skipped := c.OnTime(t); skipped {
					c.logger.Debug("skip fired",
						slog.Float64("position", t),
						slog.Float64("seek_to", target),
					)
				}
			}
		}
	}()
}

// Unsubscribe cancels the active subscription, if any, and waits for
// its goroutine to exit. Must be called before the underlying media
// source changes.
func (c *SkipController) Unsubscribe() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
