// Package silence detects silent stretches in an amplitude track and
// derives cut ranges from them, either removing a silence outright or
// tightening it down to a small kept pad.
package silence

import (
	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

const (
	// thresholdRatio is the fraction of peak amplitude below which a
	// sample counts as silent.
	thresholdRatio = 0.15

	// minTightenable is the shortest cut, in seconds, worth keeping
	// after tightening.
	minTightenable = 0.001

	// DefaultLeaveMs is the pad of original silence preserved at each
	// end of a tightened cut.
	DefaultLeaveMs = 150
)

// Opts configures detection and tightening.
type Opts struct {
	// MinSeconds is the shortest silent stretch that qualifies as a
	// candidate. Zero or negative keeps every silent run.
	MinSeconds float64

	// LeaveMs is the silence pad, in milliseconds, preserved at both
	// ends of a tightened cut.
	LeaveMs float64

	// Epsilon is the merge tolerance applied to the resulting ranges.
	Epsilon float64
}

// DefaultOpts returns the options used when a command does not
// specify them.
func DefaultOpts() Opts {
	return Opts{
		MinSeconds: 1,
		LeaveMs:    DefaultLeaveMs,
		Epsilon:    timeline.DefaultEpsilon,
	}
}

// Threshold returns the silence threshold for a track: 15% of the peak
// amplitude, with a floor of 1 so an all-zero track does not end up
// with a zero threshold.
func Threshold(track []int) float64 {
	peak := 1
	for _, v := range track {
		if v > peak {
			peak = v
		}
	}
	return thresholdRatio * float64(peak)
}

// Detect scans the amplitude track for runs of consecutive samples
// strictly below the threshold and converts qualifying runs to time
// ranges. Sample i covers [i*binDuration, (i+1)*binDuration) where
// binDuration = duration/len(track). Runs shorter than opts.MinSeconds
// are discarded. An empty track or non-positive duration yields an
// empty set rather than an error, so the detector is safe to call
// before a source finishes loading.
func Detect(track []int, duration float64, opts Opts) timeline.RangeSet {
	if len(track) == 0 || duration <= 0 {
		return timeline.RangeSet{}
	}

	threshold := Threshold(track)
	binDuration := duration / float64(len(track))

	var candidates []timeline.Range
	runStart := -1

	flush := func(endIdx int) {
		if runStart == -1 {
			return
		}
		r := timeline.Range{
			Start: float64(runStart) * binDuration,
			End:   float64(endIdx+1) * binDuration,
		}
		if r.Duration() >= opts.MinSeconds {
			candidates = append(candidates, r)
		}
		runStart = -1
	}

	for i, v := range track {
		if float64(v) < threshold {
			if runStart == -1 {
				runStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(track) - 1)

	return timeline.Merge(candidates, opts.Epsilon)
}

// Tighten detects silences and shrinks each one so that a pad of
// opts.LeaveMs milliseconds of the original silence survives at both
// ends; removing a silence entirely sounds unnatural. Shrunk cuts of
// negligible length are dropped.
func Tighten(track []int, duration float64, opts Opts) timeline.RangeSet {
	detected := Detect(track, duration, opts)
	pad := opts.LeaveMs / 1000

	var cuts []timeline.Range
	for _, r := range detected {
		cut := timeline.Range{
			Start: min(r.End-pad, r.Start+pad),
			End:   max(r.Start+pad, r.End-pad),
		}
		if cut.Duration() <= minTightenable {
			continue
		}
		cuts = append(cuts, cut)
	}

	return timeline.Merge(cuts, opts.Epsilon)
}
