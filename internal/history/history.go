// Package history implements the undo/redo stack of accepted cut
// snapshots. The stack always starts with an empty snapshot and a
// cursor pointing at the active one; committing after an undo discards
// the redo branch, so the history is linear.
package history

import (
	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

// History is an ordered list of accepted-set snapshots plus a cursor
// into it. The zero value is not usable; call New.
type History struct {
	snapshots []timeline.RangeSet
	cursor    int
}

// New creates a history whose only snapshot is the empty range set.
func New() *History {
	return &History{snapshots: []timeline.RangeSet{{}}}
}

// Commit truncates any redo branch past the cursor, appends a snapshot
// of the given set, and moves the cursor to it. Callers must pass an
// already-merged set; Commit stores a defensive copy.
func (h *History) Commit(set timeline.RangeSet) {
	h.snapshots = append(h.snapshots[:h.cursor+1], set.Clone())
	h.cursor = len(h.snapshots) - 1
}

// Undo moves the cursor back one snapshot. At the initial snapshot it
// is a no-op and returns false.
func (h *History) Undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one snapshot. At the newest snapshot it
// is a no-op and returns false.
func (h *History) Redo() bool {
	if h.cursor >= len(h.snapshots)-1 {
		return false
	}
	h.cursor++
	return true
}

// Current returns a copy of the active snapshot.
func (h *History) Current() timeline.RangeSet {
	return h.snapshots[h.cursor].Clone()
}

// CanUndo reports whether Undo would move the cursor. UI affordances
// key off this rather than probing Undo itself.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.snapshots)-1
}

// Len returns the number of snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the index of the active snapshot.
func (h *History) Cursor() int {
	return h.cursor
}

// Clone returns a deep copy, used when a session aggregate is cloned
// for safe reads.
func (h *History) Clone() *History {
	snapshots := make([]timeline.RangeSet, len(h.snapshots))
	for i, s := range h.snapshots {
		snapshots[i] = s.Clone()
	}
	return &History{snapshots: snapshots, cursor: h.cursor}
}
