// Package media provides the collaborator ports at the editing core's
// boundary: probing a source for duration and frame rate, and
// extracting a coarse amplitude track for silence detection and
// waveform display.
package media

import "context"

// SourceInfo is the probe result supplied once per loaded source.
type SourceInfo struct {
	// Duration is the media length in seconds.
	Duration float64 `json:"duration"`
	// FrameRate is the video frame rate in frames per second.
	FrameRate float64 `json:"frame_rate"`
}

// Prober probes a media file for its basic properties.
type Prober interface {
	Probe(ctx context.Context, path string) (SourceInfo, error)
}

// PeakExtractor produces the amplitude track: one non-negative peak
// magnitude (0..32767) per fixed time bin, evenly spaced across the
// source. The track length is independent of duration.
type PeakExtractor interface {
	Peaks(ctx context.Context, path string) ([]int, error)
}
