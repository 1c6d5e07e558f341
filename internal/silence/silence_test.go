package silence

import (
	"math"
	"reflect"
	"testing"

	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

func TestThreshold(t *testing.T) {
	t.Run("fifteen percent of peak", func(t *testing.T) {
		got := Threshold([]int{0, 9000, 300})
		if got != 1350 {
			t.Errorf("Threshold() = %v, want 1350", got)
		}
	})

	t.Run("floor of one on silent track", func(t *testing.T) {
		got := Threshold([]int{0, 0, 0})
		if got != 0.15 {
			t.Errorf("Threshold() = %v, want 0.15", got)
		}
	})

	t.Run("floor of one on empty track", func(t *testing.T) {
		got := Threshold(nil)
		if got != 0.15 {
			t.Errorf("Threshold() = %v, want 0.15", got)
		}
	})
}

func TestDetect(t *testing.T) {
	opts := Opts{MinSeconds: 1, Epsilon: timeline.DefaultEpsilon}

	t.Run("two silent runs at bin edges", func(t *testing.T) {
		track := []int{0, 0, 0, 9000, 9000, 0, 0, 0, 9000, 9000}
		got := Detect(track, 10, opts)
		want := timeline.RangeSet{{Start: 0, End: 3}, {Start: 5, End: 8}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Detect() = %v, want %v", got, want)
		}
	})

	t.Run("trailing silence shorter than minimum is dropped", func(t *testing.T) {
		// 20 bins over 10s: each bin is 0.5s, so the trailing single
		// silent bin is 0.5s < 1s.
		track := make([]int, 20)
		for i := range track {
			track[i] = 9000
		}
		track[19] = 0
		got := Detect(track, 10, opts)
		if len(got) != 0 {
			t.Errorf("Detect() = %v, want empty", got)
		}
	})

	t.Run("trailing silence run is closed at end of track", func(t *testing.T) {
		track := []int{9000, 9000, 0, 0}
		got := Detect(track, 4, opts)
		want := timeline.RangeSet{{Start: 2, End: 4}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Detect() = %v, want %v", got, want)
		}
	})

	t.Run("sample exactly at threshold is not silent", func(t *testing.T) {
		// peak 10000 -> threshold 1500; a run of 1500s must not count.
		track := []int{1500, 1500, 1500, 10000}
		got := Detect(track, 4, Opts{MinSeconds: 0, Epsilon: timeline.DefaultEpsilon})
		if len(got) != 0 {
			t.Errorf("Detect() = %v, want empty", got)
		}
	})

	t.Run("zero min seconds keeps every run", func(t *testing.T) {
		track := []int{9000, 0, 9000, 0, 9000}
		got := Detect(track, 5, Opts{MinSeconds: 0, Epsilon: timeline.DefaultEpsilon})
		want := timeline.RangeSet{{Start: 1, End: 2}, {Start: 3, End: 4}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Detect() = %v, want %v", got, want)
		}
	})

	t.Run("empty track yields empty set", func(t *testing.T) {
		if got := Detect(nil, 10, opts); len(got) != 0 {
			t.Errorf("Detect(nil) = %v, want empty", got)
		}
	})

	t.Run("non-positive duration yields empty set", func(t *testing.T) {
		if got := Detect([]int{0, 0}, 0, opts); len(got) != 0 {
			t.Errorf("Detect() = %v, want empty", got)
		}
		if got := Detect([]int{0, 0}, -5, opts); len(got) != 0 {
			t.Errorf("Detect() = %v, want empty", got)
		}
	})

	t.Run("fully silent track is one span", func(t *testing.T) {
		track := []int{0, 0, 0, 0}
		got := Detect(track, 8, opts)
		want := timeline.RangeSet{{Start: 0, End: 8}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Detect() = %v, want %v", got, want)
		}
	})
}

func TestTighten(t *testing.T) {
	t.Run("preserves pad on both ends", func(t *testing.T) {
		// One 4s silence spanning [2, 6) in a 10s / 10-bin track.
		track := []int{9000, 9000, 0, 0, 0, 0, 9000, 9000, 9000, 9000}
		got := Tighten(track, 10, Opts{MinSeconds: 1, LeaveMs: 150, Epsilon: timeline.DefaultEpsilon})
		if len(got) != 1 {
			t.Fatalf("Tighten() = %v, want one cut", got)
		}
		cut := got[0]
		if math.Abs(cut.Duration()-3.7) > 1e-9 {
			t.Errorf("cut duration = %v, want 3.7", cut.Duration())
		}
		if math.Abs(cut.Start-2.15) > 1e-9 || math.Abs(cut.End-5.85) > 1e-9 {
			t.Errorf("cut = %+v, want [2.15, 5.85)", cut)
		}
	})

	t.Run("cut collapsing below the floor is dropped", func(t *testing.T) {
		// 1s silence with a 500ms pad on each side leaves nothing.
		track := []int{9000, 0, 9000, 9000}
		got := Tighten(track, 4, Opts{MinSeconds: 1, LeaveMs: 500, Epsilon: timeline.DefaultEpsilon})
		if len(got) != 0 {
			t.Errorf("Tighten() = %v, want empty", got)
		}
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		got := Tighten(nil, 10, DefaultOpts())
		if len(got) != 0 {
			t.Errorf("Tighten(nil) = %v, want empty", got)
		}
	})
}
