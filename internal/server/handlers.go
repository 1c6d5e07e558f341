package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/EnaihoVFX/Gebo-sub001/internal/command"
	"github.com/EnaihoVFX/Gebo-sub001/internal/cutlist"
	"github.com/EnaihoVFX/Gebo-sub001/internal/media"
	"github.com/EnaihoVFX/Gebo-sub001/internal/session"
	"github.com/EnaihoVFX/Gebo-sub001/internal/timeline"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *session.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *session.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateSession handles POST /sessions requests.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.Create(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, media.ErrSourceNotFound) {
			writeError(w, http.StatusNotFound, "source file not found", "SOURCE_NOT_FOUND")
			return
		}
		h.logger.Error("failed to create session",
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to load source", "SOURCE_LOAD_FAILED")
		return
	}

	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// ListSessions handles GET /sessions requests.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sessions", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list sessions", "SESSION_LIST_FAILED")
		return
	}

	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionToResponse(sess))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /sessions/{id} requests.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.findSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// DeleteSession handles DELETE /sessions/{id} requests.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found", "SESSION_NOT_FOUND")
			return
		}
		h.logger.Error("failed to delete session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete session", "SESSION_DELETE_FAILED")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteCommand handles POST /sessions/{id}/command requests.
// Invalid command text returns 422 with guidance; session state is
// left untouched.
func (h *Handlers) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := r.PathValue("id")
	_, sess, err := h.service.Execute(r.Context(), sessionID, req.Text)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found", "SESSION_NOT_FOUND")
			return
		}
		if errors.Is(err, command.ErrInvalidCommand) || errors.Is(err, timeline.ErrInvalidRange) {
			writeError(w, http.StatusUnprocessableEntity, command.Guidance, "INVALID_COMMAND")
			return
		}
		h.logger.Error("failed to execute command",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to execute command", "COMMAND_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// AcceptPreview handles POST /sessions/{id}/preview/accept requests.
func (h *Handlers) AcceptPreview(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := h.service.AcceptPreview(r.Context(), sessionID); err != nil {
		h.writeSessionError(w, sessionID, "accept preview", err)
		return
	}
	h.respondWithSession(w, r, sessionID)
}

// RejectPreview handles POST /sessions/{id}/preview/reject requests.
func (h *Handlers) RejectPreview(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.service.RejectPreview(r.Context(), sessionID); err != nil {
		h.writeSessionError(w, sessionID, "reject preview", err)
		return
	}
	h.respondWithSession(w, r, sessionID)
}

// Undo handles POST /sessions/{id}/undo requests. At the initial
// snapshot it is a no-op and still returns the session.
func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	sess, err := h.service.Undo(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// Redo handles POST /sessions/{id}/redo requests. At the newest
// snapshot it is a no-op and still returns the session.
func (h *Handlers) Redo(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	sess, err := h.service.Redo(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, "redo", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// UpdateViewport handles POST /sessions/{id}/viewport requests.
func (h *Handlers) UpdateViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := r.PathValue("id")
	state, err := h.service.UpdateViewport(r.Context(), sessionID, req.Action, req.Value)
	if err != nil {
		if errors.Is(err, session.ErrUnknownViewportAction) {
			writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_VIEWPORT_ACTION")
			return
		}
		h.writeSessionError(w, sessionID, "update viewport", err)
		return
	}

	writeJSON(w, http.StatusOK, ViewportDTO{Zoom: state.Zoom, Pan: state.Pan})
}

// PlaybackTick handles POST /sessions/{id}/playback/tick requests.
// It evaluates one playback-time sample against the accepted set.
func (h *Handlers) PlaybackTick(w http.ResponseWriter, r *http.Request) {
	var req TickRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := r.PathValue("id")
	target, skip, err := h.service.Tick(r.Context(), sessionID, req.Time)
	if err != nil {
		h.writeSessionError(w, sessionID, "playback tick", err)
		return
	}

	resp := TickResponse{Skip: skip}
	if skip {
		resp.SeekTo = target
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCutList handles GET /sessions/{id}/cutlist requests.
// With ?format=edl it renders the EDL text instead of JSON; with
// ?store=1 it uploads the JSON artifact and includes its URL.
func (h *Handlers) GetCutList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	list, sess, err := h.service.CutList(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, "build cut list", err)
		return
	}

	if r.URL.Query().Get("format") == "edl" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(cutlist.EDL(list, sess.ID, sess.FrameRate))); err != nil {
			h.logger.Error("failed to write EDL response", slog.String("error", err.Error()))
		}
		return
	}

	resp := CutListResponse{
		Duration:       list.Duration,
		Cuts:           segmentsToDTOs(list.Cuts),
		Keeps:          segmentsToDTOs(list.Keeps),
		RemovedSeconds: list.RemovedSeconds,
		KeptSeconds:    list.KeptSeconds,
	}

	if r.URL.Query().Get("store") == "1" {
		url, err := h.service.StoreCutList(r.Context(), sessionID)
		if err != nil {
			h.logger.Error("failed to store cut list",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "failed to store cut list", "CUTLIST_STORE_FAILED")
			return
		}
		resp.URL = url
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing the error response itself when either step fails.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

// findSession loads the session from the path ID, writing the error
// response itself on failure.
func (h *Handlers) findSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := r.PathValue("id")
	sess, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, "get session", err)
		return nil, false
	}
	return sess, true
}

// respondWithSession reloads the session and writes it as the response.
func (h *Handlers) respondWithSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// writeSessionError maps service errors for session-scoped operations.
func (h *Handlers) writeSessionError(w http.ResponseWriter, sessionID, op string, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found", "SESSION_NOT_FOUND")
		return
	}
	h.logger.Error("failed to "+op,
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "failed to "+op, "SESSION_OP_FAILED")
}

// sessionToResponse converts a session aggregate to its DTO.
func sessionToResponse(sess *session.Session) SessionResponse {
	state := sess.Viewport()
	return SessionResponse{
		ID:         sess.ID,
		SourcePath: sess.SourcePath,
		Duration:   sess.Duration,
		FrameRate:  sess.FrameRate,
		Accepted:   rangesToDTOs(sess.Accepted()),
		Preview:    rangesToDTOs(sess.PreviewSet()),
		Viewport:   ViewportDTO{Zoom: state.Zoom, Pan: state.Pan},
		CanUndo:    sess.CanUndo(),
		CanRedo:    sess.CanRedo(),
	}
}

func rangesToDTOs(set timeline.RangeSet) []RangeDTO {
	dtos := make([]RangeDTO, 0, len(set))
	for _, r := range set {
		dtos = append(dtos, RangeDTO{Start: r.Start, End: r.End})
	}
	return dtos
}

func segmentsToDTOs(segments []cutlist.Segment) []RangeDTO {
	dtos := make([]RangeDTO, 0, len(segments))
	for _, s := range segments {
		dtos = append(dtos, RangeDTO{Start: s.Start, End: s.End})
	}
	return dtos
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
