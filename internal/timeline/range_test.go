package timeline

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNewRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		r, err := NewRange(1.5, 3.0)
		if err != nil {
			t.Fatalf("NewRange() error = %v", err)
		}
		if r.Start != 1.5 || r.End != 3.0 {
			t.Errorf("NewRange() = %+v", r)
		}
	})

	t.Run("start equal to end is invalid", func(t *testing.T) {
		if _, err := NewRange(2.0, 2.0); err == nil {
			t.Error("expected error for zero-length range")
		}
	})

	t.Run("start after end is invalid", func(t *testing.T) {
		if _, err := NewRange(5.0, 2.0); err == nil {
			t.Error("expected error for inverted range")
		}
	})
}

func TestRange_Contains(t *testing.T) {
	r := Range{Start: 2, End: 5}

	if !r.Contains(2) {
		t.Error("start boundary should be contained")
	}
	if r.Contains(5) {
		t.Error("end boundary should not be contained (half-open)")
	}
	if !r.Contains(4.999) {
		t.Error("point just before end should be contained")
	}
	if r.Contains(1.999) {
		t.Error("point before start should not be contained")
	}
}

func TestMerge(t *testing.T) {
	t.Run("overlapping and disjoint", func(t *testing.T) {
		got := Merge([]Range{{0, 5}, {4, 9}, {20, 25}}, DefaultEpsilon)
		want := RangeSet{{0, 9}, {20, 25}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Merge() = %v, want %v", got, want)
		}
	})

	t.Run("unsorted input", func(t *testing.T) {
		got := Merge([]Range{{20, 25}, {4, 9}, {0, 5}}, DefaultEpsilon)
		want := RangeSet{{0, 9}, {20, 25}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Merge() = %v, want %v", got, want)
		}
	})

	t.Run("gap within epsilon coalesces", func(t *testing.T) {
		got := Merge([]Range{{0, 1}, {1.005, 2}}, DefaultEpsilon)
		if len(got) != 1 || got[0] != (Range{0, 2}) {
			t.Errorf("Merge() = %v, want [{0 2}]", got)
		}
	})

	t.Run("gap beyond epsilon stays split", func(t *testing.T) {
		got := Merge([]Range{{0, 1}, {1.02, 2}}, DefaultEpsilon)
		if len(got) != 2 {
			t.Errorf("Merge() = %v, want two ranges", got)
		}
	})

	t.Run("contained range does not shrink the result", func(t *testing.T) {
		got := Merge([]Range{{0, 10}, {2, 3}}, DefaultEpsilon)
		if len(got) != 1 || got[0] != (Range{0, 10}) {
			t.Errorf("Merge() = %v, want [{0 10}]", got)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		got := Merge(nil, DefaultEpsilon)
		if len(got) != 0 {
			t.Errorf("Merge(nil) = %v, want empty", got)
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []Range{{4, 9}, {0, 5}}
		_ = Merge(in, DefaultEpsilon)
		if in[0] != (Range{4, 9}) || in[1] != (Range{0, 5}) {
			t.Errorf("input mutated: %v", in)
		}
	})
}

func TestMerge_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(20)
		in := make([]Range, 0, n)
		for i := 0; i < n; i++ {
			start := rng.Float64() * 100
			in = append(in, Range{Start: start, End: start + rng.Float64()*10 + 0.001})
		}

		once := Merge(in, DefaultEpsilon)
		twice := Merge(once, DefaultEpsilon)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("merge not idempotent for %v: %v != %v", in, once, twice)
		}

		// invariants: sorted, no overlap within epsilon
		for i := 1; i < len(once); i++ {
			if once[i].Start < once[i-1].End+DefaultEpsilon {
				t.Fatalf("ranges too close after merge: %v", once)
			}
		}
	}
}

func TestRangeSet_Find(t *testing.T) {
	set := Merge([]Range{{2, 5}, {10, 12}, {30, 40}}, DefaultEpsilon)

	tests := []struct {
		name string
		t    float64
		want int
	}{
		{"before all", 1.0, -1},
		{"start of first", 2.0, 0},
		{"inside first", 3.0, 0},
		{"end of first is excluded", 5.0, -1},
		{"between ranges", 7.0, -1},
		{"inside second", 11.0, 1},
		{"inside third", 39.999, 2},
		{"after all", 50.0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.Find(tt.t); got != tt.want {
				t.Errorf("Find(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}

	t.Run("empty set", func(t *testing.T) {
		if got := (RangeSet{}).Find(1); got != -1 {
			t.Errorf("Find on empty set = %d, want -1", got)
		}
	})
}

func TestRangeSet_TotalDuration(t *testing.T) {
	set := RangeSet{{0, 3}, {5, 8}}
	if got := set.TotalDuration(); got != 6 {
		t.Errorf("TotalDuration() = %v, want 6", got)
	}
	if got := (RangeSet{}).TotalDuration(); got != 0 {
		t.Errorf("TotalDuration() on empty = %v, want 0", got)
	}
}

func TestRangeSet_Clone(t *testing.T) {
	set := RangeSet{{0, 3}}
	clone := set.Clone()
	clone[0].End = 99
	if set[0].End != 3 {
		t.Error("mutating clone should not affect original")
	}

	var nilSet RangeSet
	if got := nilSet.Clone(); got == nil || len(got) != 0 {
		t.Errorf("Clone of nil = %v, want empty non-nil", got)
	}
}
