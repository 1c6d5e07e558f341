// The Service orchestrates the editing workflow around the session
// aggregate: probing sources, running commands, moving through history
// and handing cut lists to the export side.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/EnaihoVFX/Gebo-sub001/internal/command"
	"github.com/EnaihoVFX/Gebo-sub001/internal/cutlist"
	"github.com/EnaihoVFX/Gebo-sub001/internal/media"
	"github.com/EnaihoVFX/Gebo-sub001/internal/playback"
	"github.com/EnaihoVFX/Gebo-sub001/internal/silence"
	"github.com/EnaihoVFX/Gebo-sub001/internal/storage"
	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
	"github.com/EnaihoVFX/Gebo-sub001/internal/viewport"
)

// ErrNoSource is returned when an operation needs a loaded source but
// the session has none.
var ErrNoSource = errors.New("session: no source loaded")

// Service coordinates sessions, the media collaborators and artifact
// storage.
type Service struct {
	repo   Repository
	prober media.Prober
	peaks  media.PeakExtractor
	store  storage.Storage
	logger *slog.Logger

	epsilon      float64
	padMs        float64
	surfaceWidth float64

	// trackCache maps a source path to the temp file holding its
	// extracted amplitude track.
	cacheMu    sync.Mutex
	trackCache map[string]string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEpsilon overrides the merge tolerance applied to new sessions.
func WithEpsilon(epsilon float64) ServiceOption {
	return func(s *Service) {
		if epsilon >= 0 {
			s.epsilon = epsilon
		}
	}
}

// WithDefaultPadMs overrides the tighten pad applied when a command
// omits the leave clause.
func WithDefaultPadMs(padMs float64) ServiceOption {
	return func(s *Service) {
		if padMs >= 0 {
			s.padMs = padMs
		}
	}
}

// WithSurfaceWidth overrides the initial scrubbing surface width of
// new sessions.
func WithSurfaceWidth(width float64) ServiceOption {
	return func(s *Service) {
		if width > 0 {
			s.surfaceWidth = width
		}
	}
}

// NewService creates a Service.
func NewService(
	repo Repository,
	prober media.Prober,
	peaks media.PeakExtractor,
	store storage.Storage,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:         repo,
		prober:       prober,
		peaks:        peaks,
		store:        store,
		logger:       logger,
		epsilon:      timeline.DefaultEpsilon,
		padMs:        silence.DefaultLeaveMs,
		surfaceWidth: DefaultSurfaceWidth,
		trackCache:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create probes the source, extracts its amplitude track and opens a
// new editing session for it.
func (s *Service) Create(ctx context.Context, sourcePath string) (*Session, error) {
	info, err := s.prober.Probe(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("probe source: %w", err)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("%w: probed duration %v", ErrNoSource, info.Duration)
	}

	track, err := s.loadTrack(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("extract peaks: %w", err)
	}

	sess := New(sourcePath, info, track)
	sess.Epsilon = s.epsilon
	sess.PadMs = s.padMs
	if s.surfaceWidth != DefaultSurfaceWidth {
		if _, err := sess.UpdateViewport(ViewportSetWidth, s.surfaceWidth); err != nil {
			return nil, fmt.Errorf("set surface width: %w", err)
		}
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("session_id", sess.ID),
		slog.String("source", sourcePath),
		slog.Float64("duration", info.Duration),
		slog.Int("track_bins", len(track)),
	)
	return sess, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.FindByID(ctx, sessionID)
}

// List returns all open sessions.
func (s *Service) List(ctx context.Context) ([]*Session, error) {
	return s.repo.List(ctx)
}

// Delete removes a session and drops its cached amplitude track.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.cacheMu.Lock()
	cached, ok := s.trackCache[sess.SourcePath]
	delete(s.trackCache, sess.SourcePath)
	s.cacheMu.Unlock()
	if ok {
		if err := s.store.CleanupTemp(ctx, []string{cached}); err != nil {
			s.logger.Warn("cleanup cached track",
				slog.String("path", cached),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// loadTrack returns the amplitude track for a source, reading the
// cached copy when a previous session already extracted it.
func (s *Service) loadTrack(ctx context.Context, sourcePath string) ([]int, error) {
	s.cacheMu.Lock()
	cached, ok := s.trackCache[sourcePath]
	s.cacheMu.Unlock()
	if ok {
		track, err := s.readCachedTrack(ctx, cached)
		if err == nil {
			return track, nil
		}
		// The temp file may have been pruned underneath us.
		s.logger.Warn("read cached track",
			slog.String("path", cached),
			slog.Any("error", err),
		)
		s.cacheMu.Lock()
		delete(s.trackCache, sourcePath)
		s.cacheMu.Unlock()
	}

	track, err := s.peaks.Peaks(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	s.cacheTrack(ctx, sourcePath, track)
	return track, nil
}

func (s *Service) readCachedTrack(ctx context.Context, path string) ([]int, error) {
	rc, err := s.store.LoadTemp(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var track []int
	if err := json.NewDecoder(rc).Decode(&track); err != nil {
		return nil, fmt.Errorf("decode cached track: %w", err)
	}
	return track, nil
}

// cacheTrack stages the track in temp storage. Failures only cost a
// re-extraction later, so they are logged and swallowed.
func (s *Service) cacheTrack(ctx context.Context, sourcePath string, track []int) {
	data, err := json.Marshal(track)
	if err != nil {
		s.logger.Warn("encode track cache", slog.Any("error", err))
		return
	}
	path, err := s.store.SaveTemp(ctx, "track.json", bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("save track cache", slog.Any("error", err))
		return
	}
	s.cacheMu.Lock()
	s.trackCache[sourcePath] = path
	s.cacheMu.Unlock()
}

// Execute parses command text and runs it against the session,
// persisting the resulting preview. Invalid text returns
// command.ErrInvalidCommand without touching the session.
func (s *Service) Execute(ctx context.Context, sessionID, text string) (timeline.RangeSet, *Session, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	result, err := sess.Execute(command.Parse(text))
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("command executed",
		slog.String("session_id", sessionID),
		slog.String("text", text),
		slog.Int("preview_ranges", len(result)),
	)
	return result, sess, nil
}

// AcceptPreview commits the preview into the accepted set.
func (s *Service) AcceptPreview(ctx context.Context, sessionID string) (timeline.RangeSet, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	accepted := sess.AcceptPreview()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return accepted, nil
}

// RejectPreview discards the preview.
func (s *Service) RejectPreview(ctx context.Context, sessionID string) error {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.RejectPreview()
	return s.repo.Save(ctx, sess)
}

// Undo steps the session's accepted set back one snapshot.
func (s *Service) Undo(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Undo()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Redo steps the session's accepted set forward one snapshot.
func (s *Service) Redo(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Redo()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// UpdateViewport applies a named viewport mutation.
func (s *Service) UpdateViewport(ctx context.Context, sessionID, action string, value float64) (viewport.State, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return viewport.State{}, err
	}
	state, err := sess.UpdateViewport(action, value)
	if err != nil {
		return viewport.State{}, err
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return viewport.State{}, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

// Tick evaluates one playback-time sample against the session's
// accepted set and returns the seek target when the position sits
// inside a cut. The decision always runs against the freshest accepted
// set, so a stale skip can never fire through this path.
func (s *Service) Tick(ctx context.Context, sessionID string, t float64) (float64, bool, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return 0, false, err
	}
	target, ok := playback.Decide(sess.Accepted(), t)
	return target, ok, nil
}

// CutList builds the export cut list from the session's accepted set.
func (s *Service) CutList(ctx context.Context, sessionID string) (cutlist.List, *Session, error) {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return cutlist.List{}, nil, err
	}
	return cutlist.Build(sess.Accepted(), sess.Duration), sess, nil
}

// StoreCutList renders the session's cut list as JSON and uploads it
// as an artifact, returning the artifact URL.
func (s *Service) StoreCutList(ctx context.Context, sessionID string) (string, error) {
	list, sess, err := s.CutList(ctx, sessionID)
	if err != nil {
		return "", err
	}

	data, err := list.JSON()
	if err != nil {
		return "", fmt.Errorf("render cut list: %w", err)
	}

	key := fmt.Sprintf("cutlists/%s.json", sess.ID)
	url, err := s.store.Upload(ctx, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store cut list: %w", err)
	}

	s.logger.Info("cut list stored",
		slog.String("session_id", sessionID),
		slog.String("url", url),
	)
	return url, nil
}
