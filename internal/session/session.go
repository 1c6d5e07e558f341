// Package session provides the editing session aggregate: one loaded
// media source together with its preview and accepted cut sets, undo
// history and viewport. The session is the only owner of this state;
// other components read it but never mutate it directly.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/EnaihoVFX/Gebo-sub001/internal/command"
	"github.com/EnaihoVFX/Gebo-sub001/internal/history"
	"github.com/EnaihoVFX/Gebo-sub001/internal/media"
	"github.com/EnaihoVFX/Gebo-sub001/internal/session/id"
	"github.com/EnaihoVFX/Gebo-sub001/internal/silence"
	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
	"github.com/EnaihoVFX/Gebo-sub001/internal/viewport"
)

// DefaultSurfaceWidth is the scrubbing surface width assumed until the
// presentation layer reports a real one.
const DefaultSurfaceWidth = 1000

// Session is the aggregate owning all editing state for one source.
// Accepted cuts are only reachable through the history; Preview holds
// tentative edits awaiting accept or reject.
type Session struct {
	mu sync.RWMutex

	// ID is the unique identifier for this session.
	ID string
	// SourcePath is the media file this session edits.
	SourcePath string
	// Duration is the source length in seconds.
	Duration float64
	// FrameRate is the source frame rate; zero when unknown.
	FrameRate float64
	// Track is the amplitude track, one peak per fixed time bin.
	Track []int
	// Preview holds tentative cuts produced by the last command.
	Preview timeline.RangeSet

	// Epsilon is the merge tolerance applied to this session's sets.
	Epsilon float64
	// PadMs is the tighten pad applied when a command omits the leave
	// clause.
	PadMs float64

	history  *history.History
	viewport *viewport.Controller

	// CreatedAt is when the session was created.
	CreatedAt time.Time
	// UpdatedAt is when the session was last mutated.
	UpdatedAt time.Time
}

// New creates a session for a probed source with a generated ID.
func New(sourcePath string, info media.SourceInfo, track []int) *Session {
	now := time.Now()
	return &Session{
		ID:         id.Generate(),
		SourcePath: sourcePath,
		Duration:   info.Duration,
		FrameRate:  info.FrameRate,
		Track:      track,
		Epsilon:    timeline.DefaultEpsilon,
		PadMs:      silence.DefaultLeaveMs,
		history:    history.New(),
		viewport:   viewport.NewController(DefaultSurfaceWidth, info.Duration),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Execute runs a parsed command against the session, replacing the
// preview set with the result. Invalid commands leave all state
// unchanged and return ErrInvalidCommand wrapped with guidance.
func (s *Session) Execute(cmd command.Command) (timeline.RangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result timeline.RangeSet
	switch cmd.Kind {
	case command.KindSilenceRemove:
		result = silence.Detect(s.Track, s.Duration, silence.Opts{
			MinSeconds: cmd.Threshold,
			Epsilon:    s.Epsilon,
		})
	case command.KindSilenceTighten:
		padMs := cmd.PadMs
		if !cmd.HasPad {
			padMs = s.PadMs
		}
		result = silence.Tighten(s.Track, s.Duration, silence.Opts{
			MinSeconds: cmd.Threshold,
			LeaveMs:    padMs,
			Epsilon:    s.Epsilon,
		})
	case command.KindManualCut:
		r, err := timeline.NewRange(cmd.Start, cmd.End)
		if err != nil {
			return nil, err
		}
		result = timeline.Merge([]timeline.Range{r}, s.Epsilon)
	default:
		return nil, fmt.Errorf("%w: %s", command.ErrInvalidCommand, cmd.Reason)
	}

	s.Preview = result
	s.touch()
	return result.Clone(), nil
}

// AcceptPreview merges the preview into the accepted set, commits the
// result as a new history snapshot and clears the preview. With an
// empty preview it is a no-op.
func (s *Session) AcceptPreview() timeline.RangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Preview) == 0 {
		return s.history.Current()
	}

	merged := timeline.Merge(append(s.history.Current(), s.Preview...), s.Epsilon)
	s.history.Commit(merged)
	s.Preview = nil
	s.touch()
	return merged.Clone()
}

// RejectPreview discards the preview set.
func (s *Session) RejectPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Preview = nil
	s.touch()
}

// Undo steps the accepted set back one snapshot; a no-op at the
// initial state.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.history.Undo()
	if moved {
		s.touch()
	}
	return moved
}

// Redo steps the accepted set forward one snapshot; a no-op at the
// newest state.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.history.Redo()
	if moved {
		s.touch()
	}
	return moved
}

// Accepted returns a copy of the committed cut set.
func (s *Session) Accepted() timeline.RangeSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Current()
}

// PreviewSet returns a copy of the tentative cut set.
func (s *Session) PreviewSet() timeline.RangeSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Preview.Clone()
}

// CanUndo reports whether an undo would change the accepted set.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo would change the accepted set.
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// ErrUnknownViewportAction is returned for an unrecognized viewport
// mutation name.
var ErrUnknownViewportAction = errors.New("session: unknown viewport action")

// Viewport mutation actions accepted by UpdateViewport.
const (
	ViewportZoomIn        = "zoom_in"
	ViewportZoomOut       = "zoom_out"
	ViewportSetZoom       = "set_zoom"
	ViewportSetPan        = "set_pan"
	ViewportSetWidth      = "set_width"
	ViewportEnsureVisible = "ensure_visible"
)

// UpdateViewport applies a named mutation to the viewport. Value is
// the zoom level, pan offset, width or marker time depending on the
// action.
func (s *Session) UpdateViewport(action string, value float64) (viewport.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case ViewportZoomIn:
		s.viewport.ZoomIn()
	case ViewportZoomOut:
		s.viewport.ZoomOut()
	case ViewportSetZoom:
		s.viewport.SetZoom(value)
	case ViewportSetPan:
		s.viewport.SetPan(value)
	case ViewportSetWidth:
		s.viewport.SetWidth(value)
	case ViewportEnsureVisible:
		s.viewport.EnsureMarkerVisible(value)
	default:
		return viewport.State{}, fmt.Errorf("%w: %q", ErrUnknownViewportAction, action)
	}

	s.touch()
	return s.viewport.State(), nil
}

// Viewport returns the current zoom/pan state.
func (s *Session) Viewport() viewport.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport.State()
}

// touch updates the modification timestamp. Callers hold the lock.
func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// Clone creates a deep copy of the session for safe reads.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	track := make([]int, len(s.Track))
	copy(track, s.Track)

	return &Session{
		ID:         s.ID,
		SourcePath: s.SourcePath,
		Duration:   s.Duration,
		FrameRate:  s.FrameRate,
		Track:      track,
		Preview:    s.Preview.Clone(),
		Epsilon:    s.Epsilon,
		PadMs:      s.PadMs,
		history:    s.history.Clone(),
		viewport:   s.viewport.Clone(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
