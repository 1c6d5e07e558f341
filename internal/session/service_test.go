package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"testing"

	"github.com/EnaihoVFX/Gebo-sub001/internal/command"
	"github.com/EnaihoVFX/Gebo-sub001/internal/media"
)

// fakeMedia serves canned probe results and amplitude tracks.
type fakeMedia struct {
	info       media.SourceInfo
	track      []int
	probeErr   error
	peaksErr   error
	peaksCalls int
}

func (f *fakeMedia) Probe(_ context.Context, _ string) (media.SourceInfo, error) {
	return f.info, f.probeErr
}

func (f *fakeMedia) Peaks(_ context.Context, _ string) ([]int, error) {
	f.peaksCalls++
	return f.track, f.peaksErr
}

// fakeStore keeps temp files in memory and records uploads.
type fakeStore struct {
	files       map[string][]byte
	cleaned     []string
	uploadedKey string
	uploadErr   error
}

func (f *fakeStore) SaveTemp(_ context.Context, name string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	path := fmt.Sprintf("/tmp/%d-%s", len(f.files), name)
	f.files[path] = b
	return path, nil
}

func (f *fakeStore) LoadTemp(_ context.Context, path string) (io.ReadCloser, error) {
	b, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStore) CleanupTemp(_ context.Context, paths []string) error {
	for _, p := range paths {
		delete(f.files, p)
		f.cleaned = append(f.cleaned, p)
	}
	return nil
}

func (f *fakeStore) Upload(_ context.Context, key string, _ io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploadedKey = key
	return "file:///tmp/gebo/" + key, nil
}

func newTestService() (*Service, *fakeMedia, *fakeStore) {
	fm := &fakeMedia{
		info:  media.SourceInfo{Duration: 10, FrameRate: 30},
		track: []int{9000, 0, 0, 0, 9000, 9000, 9000, 9000, 9000, 9000},
	}
	fs := &fakeStore{}
	svc := NewService(NewMemoryRepository(), fm, fm, fs, nil)
	return svc, fm, fs
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Duration != 10 {
		t.Errorf("expected duration 10, got %v", sess.Duration)
	}
	if len(sess.Track) != 10 {
		t.Errorf("expected 10 track bins, got %d", len(sess.Track))
	}

	// The session is findable afterwards.
	if _, err := svc.Get(ctx, sess.ID); err != nil {
		t.Errorf("expected session to be persisted: %v", err)
	}
}

func TestService_Create_ReusesCachedTrack(t *testing.T) {
	svc, fm, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fm.peaksCalls != 1 {
		t.Errorf("expected one peak extraction for a shared source, got %d", fm.peaksCalls)
	}
	if !slices.Equal(first.Track, second.Track) {
		t.Errorf("expected identical tracks, got %v and %v", first.Track, second.Track)
	}
}

func TestService_Create_DifferentSourcesExtractSeparately(t *testing.T) {
	svc, fm, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "/media/a.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, "/media/b.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.peaksCalls != 2 {
		t.Errorf("expected one extraction per source, got %d", fm.peaksCalls)
	}
}

func TestService_Create_ProbeFails(t *testing.T) {
	svc, fm, _ := newTestService()
	fm.probeErr = media.ErrSourceNotFound

	_, err := svc.Create(context.Background(), "/media/missing.mp4")
	if !errors.Is(err, media.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestService_Create_ZeroDuration(t *testing.T) {
	svc, fm, _ := newTestService()
	fm.info = media.SourceInfo{Duration: 0}

	_, err := svc.Create(context.Background(), "/media/empty.mp4")
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestService_Execute(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	preview, _, err := svc.Execute(ctx, sess.ID, "remove silence > 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preview) != 1 || preview[0].Start != 1 || preview[0].End != 4 {
		t.Errorf("expected [1,4), got %v", preview)
	}

	// The preview survives the round trip through the repository.
	reloaded, err := svc.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reloaded.PreviewSet()) != 1 {
		t.Errorf("expected persisted preview, got %v", reloaded.PreviewSet())
	}
}

func TestService_Execute_Invalid(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = svc.Execute(ctx, sess.ID, "make it shorter")
	if !errors.Is(err, command.ErrInvalidCommand) {
		t.Fatalf("expected ErrInvalidCommand, got %v", err)
	}

	reloaded, _ := svc.Get(ctx, sess.ID)
	if len(reloaded.PreviewSet()) != 0 {
		t.Error("invalid command must not persist a preview")
	}
}

func TestService_Execute_SessionNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Execute(context.Background(), "nonexistent", "cut 1 - 2")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_AcceptUndoRedoFlow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := svc.Execute(ctx, sess.ID, "cut 2 - 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accepted, err := svc.AcceptPreview(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("expected 1 accepted range, got %v", accepted)
	}

	undone, err := svc.Undo(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(undone.Accepted()) != 0 {
		t.Errorf("expected empty accepted set after undo, got %v", undone.Accepted())
	}

	redone, err := svc.Redo(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(redone.Accepted()) != 1 {
		t.Errorf("expected 1 accepted range after redo, got %v", redone.Accepted())
	}
}

func TestService_RejectPreview(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Execute(ctx, sess.ID, "cut 2 - 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.RejectPreview(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, _ := svc.Get(ctx, sess.ID)
	if len(reloaded.PreviewSet()) != 0 {
		t.Errorf("expected preview cleared, got %v", reloaded.PreviewSet())
	}
}

func TestService_Tick(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Execute(ctx, sess.ID, "cut 2 - 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AcceptPreview(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, skip, err := svc.Tick(ctx, sess.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skip {
		t.Fatal("expected a skip inside the cut")
	}
	if diff := target - 5.0001; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected seek target 5.0001, got %v", target)
	}

	// After undo, the same sample no longer skips.
	if _, err := svc.Undo(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, skip, _ := svc.Tick(ctx, sess.ID, 3); skip {
		t.Error("expected no skip after undo")
	}
}

func TestService_UpdateViewport(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := svc.UpdateViewport(ctx, sess.ID, ViewportZoomIn, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Zoom != 1.15 {
		t.Errorf("expected zoom 1.15, got %v", state.Zoom)
	}

	// The state survives the round trip through the repository.
	reloaded, _ := svc.Get(ctx, sess.ID)
	if reloaded.Viewport().Zoom != 1.15 {
		t.Errorf("expected persisted zoom 1.15, got %v", reloaded.Viewport().Zoom)
	}

	if _, err := svc.UpdateViewport(ctx, sess.ID, "teleport", 0); !errors.Is(err, ErrUnknownViewportAction) {
		t.Errorf("expected ErrUnknownViewportAction, got %v", err)
	}
}

func TestService_StoreCutList(t *testing.T) {
	svc, _, fs := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Execute(ctx, sess.ID, "cut 2 - 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AcceptPreview(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := svc.StoreCutList(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKey := "cutlists/" + sess.ID + ".json"
	if fs.uploadedKey != wantKey {
		t.Errorf("expected upload key %s, got %s", wantKey, fs.uploadedKey)
	}
	if url != "file:///tmp/gebo/"+wantKey {
		t.Errorf("unexpected artifact URL %s", url)
	}
}

func TestService_CutList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Execute(ctx, sess.ID, "cut 2 - 5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AcceptPreview(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, _, err := svc.CutList(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Cuts) != 1 || len(list.Keeps) != 2 {
		t.Fatalf("expected 1 cut and 2 keeps, got %v", list)
	}
	if list.RemovedSeconds != 3 || list.KeptSeconds != 7 {
		t.Errorf("expected removed 3 kept 7, got %v / %v", list.RemovedSeconds, list.KeptSeconds)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestService_Delete_CleansCachedTrack(t *testing.T) {
	svc, fm, fs := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.files) != 1 {
		t.Fatalf("expected one staged track file, got %d", len(fs.files))
	}

	if err := svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.cleaned) != 1 {
		t.Fatalf("expected the staged track to be cleaned up, got %v", fs.cleaned)
	}
	if len(fs.files) != 0 {
		t.Errorf("expected no temp files left, got %v", fs.files)
	}

	// A later session for the same source extracts again.
	if _, err := svc.Create(ctx, "/media/clip.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.peaksCalls != 2 {
		t.Errorf("expected re-extraction after cleanup, got %d calls", fm.peaksCalls)
	}
}

func TestService_WithDefaultPadMs(t *testing.T) {
	fm := &fakeMedia{
		info:  media.SourceInfo{Duration: 10, FrameRate: 30},
		track: []int{9000, 0, 0, 0, 9000, 9000, 9000, 9000, 9000, 9000},
	}
	svc := NewService(NewMemoryRepository(), fm, fm, &fakeStore{}, nil, WithDefaultPadMs(200))
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Without a leave clause the configured pad applies.
	preview, _, err := svc.Execute(ctx, sess.ID, "tighten silence > 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preview) != 1 {
		t.Fatalf("expected one range, got %v", preview)
	}
	if diff := preview[0].Start - 1.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected start 1.2, got %v", preview[0].Start)
	}
	if diff := preview[0].End - 3.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected end 3.8, got %v", preview[0].End)
	}

	// A written-out leave clause still wins.
	preview, _, err = svc.Execute(ctx, sess.ID, "tighten silence > 2 leave 100ms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := preview[0].Start - 1.1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected start 1.1, got %v", preview[0].Start)
	}
}

func TestService_WithSurfaceWidth(t *testing.T) {
	fm := &fakeMedia{
		info:  media.SourceInfo{Duration: 10, FrameRate: 30},
		track: []int{9000, 0, 0, 0, 9000, 9000, 9000, 9000, 9000, 9000},
	}
	svc := NewService(NewMemoryRepository(), fm, fm, &fakeStore{}, nil, WithSurfaceWidth(500))
	ctx := context.Background()

	sess, err := svc.Create(ctx, "/media/clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// At width 500 and zoom 1.15 a marker at t=9 maps to pixel 517.5,
	// so keeping it visible pans to 517.5 minus a fifth of the width.
	if _, err := svc.UpdateViewport(ctx, sess.ID, ViewportZoomIn, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := svc.UpdateViewport(ctx, sess.ID, ViewportEnsureVisible, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := state.Pan - 417.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected pan 417.5, got %v", state.Pan)
	}
}
