// Package timeline provides time ranges over media time and the merge
// operation that canonicalizes them into a sorted, non-overlapping set.
// All times are floating-point seconds; ranges are half-open [Start, End).
package timeline

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultEpsilon is the merge tolerance in seconds. Ranges whose gap is
// at most this wide are treated as touching and coalesced.
const DefaultEpsilon = 0.01

// ErrInvalidRange is returned when a range's start is not before its end.
var ErrInvalidRange = errors.New("timeline: range start must be before end")

// Range is a half-open interval [Start, End) of media time in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewRange creates a Range, enforcing Start < End.
func NewRange(start, end float64) (Range, error) {
	if start >= end {
		return Range{}, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Duration returns the length of the range in seconds.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Contains reports whether t falls inside the half-open interval.
func (r Range) Contains(t float64) bool {
	return t >= r.Start && t < r.End
}

// RangeSet is an ordered sequence of ranges. After Merge it is sorted
// ascending by Start with no two ranges overlapping or closer than the
// merge epsilon.
type RangeSet []Range

// Merge canonicalizes an arbitrary list of ranges: stable sort by Start,
// then a left fold that extends the last output range whenever the next
// range starts within epsilon of its end. Empty input yields an empty set.
// Merge is idempotent for a fixed epsilon.
func Merge(ranges []Range, epsilon float64) RangeSet {
	if len(ranges) == 0 {
		return RangeSet{}
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := RangeSet{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+epsilon {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}

	return out
}

// Find returns the index of the range containing t, or -1.
// The set must be merged (sorted, non-overlapping) for the binary
// search to be valid.
func (s RangeSet) Find(t float64) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].End > t })
	if i < len(s) && s[i].Contains(t) {
		return i
	}
	return -1
}

// TotalDuration returns the summed length of all ranges in seconds.
func (s RangeSet) TotalDuration() float64 {
	total := 0.0
	for _, r := range s {
		total += r.Duration()
	}
	return total
}

// Clone returns a copy safe for independent mutation. A nil set clones
// to an empty one.
func (s RangeSet) Clone() RangeSet {
	out := make(RangeSet, len(s))
	copy(out, s)
	return out
}
