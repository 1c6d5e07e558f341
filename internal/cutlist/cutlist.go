// Package cutlist derives the export collaborator's input from an
// accepted cut set: the segments to drop and the complementary keep
// segments a transcoder concatenates into the final output.
package cutlist

import (
	"encoding/json"

	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

// Segment is one contiguous stretch of source time.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// List is the full cut list for one source.
type List struct {
	// Duration is the source length in seconds.
	Duration float64 `json:"duration"`
	// Cuts are the segments to remove, sorted and non-overlapping.
	Cuts []Segment `json:"cuts"`
	// Keeps are the complementary segments covering the rest of the
	// source in order.
	Keeps []Segment `json:"keeps"`
	// RemovedSeconds is the summed length of Cuts.
	RemovedSeconds float64 `json:"removed_seconds"`
	// KeptSeconds is the summed length of Keeps.
	KeptSeconds float64 `json:"kept_seconds"`
}

// Build derives the cut and keep segments from a merged accepted set.
// Cuts are clamped to [0, duration]; a non-positive duration yields an
// empty list. Keeps and Cuts together cover [0, duration] exactly.
func Build(accepted timeline.RangeSet, duration float64) List {
	list := List{Duration: duration, Cuts: []Segment{}, Keeps: []Segment{}}
	if duration <= 0 {
		return list
	}

	cursor := 0.0
	for _, r := range accepted {
		start, end := r.Start, r.End
		if end <= 0 || start >= duration {
			continue
		}
		if start < 0 {
			start = 0
		}
		if end > duration {
			end = duration
		}
		if start > cursor {
			list.Keeps = append(list.Keeps, Segment{Start: cursor, End: start})
		}
		list.Cuts = append(list.Cuts, Segment{Start: start, End: end})
		list.RemovedSeconds += end - start
		cursor = end
	}
	if cursor < duration {
		list.Keeps = append(list.Keeps, Segment{Start: cursor, End: duration})
	}

	list.KeptSeconds = duration - list.RemovedSeconds
	return list
}

// JSON renders the list as indented JSON, the artifact format handed
// to the export collaborator.
func (l List) JSON() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}
