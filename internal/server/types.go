// Package server provides the HTTP surface for the editing API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateSessionRequest is the HTTP request body for opening a session.
type CreateSessionRequest struct {
	// Path is the media file to load.
	Path string `json:"path" validate:"required"`
}

// CommandRequest is the HTTP request body for running an editing command.
type CommandRequest struct {
	// Text is the command in the editing grammar.
	Text string `json:"text" validate:"required"`
}

// ViewportRequest is the HTTP request body for a viewport mutation.
type ViewportRequest struct {
	// Action names the mutation to apply.
	Action string `json:"action" validate:"required,oneof=zoom_in zoom_out set_zoom set_pan set_width ensure_visible"`
	// Value is the zoom level, pan offset, width or marker time,
	// depending on the action.
	Value float64 `json:"value"`
}

// TickRequest is the HTTP request body for a playback-time sample.
type TickRequest struct {
	// Time is the playback position in seconds.
	Time float64 `json:"time" validate:"min=0"`
}

// RangeDTO is one half-open cut span in a response.
type RangeDTO struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ViewportDTO is the zoom/pan state in a response.
type ViewportDTO struct {
	Zoom float64 `json:"zoom"`
	Pan  float64 `json:"pan"`
}

// SessionResponse is the HTTP response describing a session.
type SessionResponse struct {
	// ID is the unique identifier for the session.
	ID string `json:"id"`
	// SourcePath is the media file the session edits.
	SourcePath string `json:"source_path"`
	// Duration is the source length in seconds.
	Duration float64 `json:"duration"`
	// FrameRate is the source frame rate; zero when unknown.
	FrameRate float64 `json:"frame_rate,omitempty"`
	// Accepted is the committed cut set.
	Accepted []RangeDTO `json:"accepted"`
	// Preview is the tentative cut set awaiting accept or reject.
	Preview []RangeDTO `json:"preview"`
	// Viewport is the current zoom/pan state.
	Viewport ViewportDTO `json:"viewport"`
	// CanUndo reports whether an undo would change the accepted set.
	CanUndo bool `json:"can_undo"`
	// CanRedo reports whether a redo would change the accepted set.
	CanRedo bool `json:"can_redo"`
}

// SessionListResponse is the HTTP response for listing sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// TickResponse is the HTTP response for a playback-time sample.
type TickResponse struct {
	// Skip reports whether the position sits inside a cut.
	Skip bool `json:"skip"`
	// SeekTo is the seek target when Skip is true.
	SeekTo float64 `json:"seek_to,omitempty"`
}

// CutListResponse is the HTTP response for the export cut list.
type CutListResponse struct {
	Duration       float64    `json:"duration"`
	Cuts           []RangeDTO `json:"cuts"`
	Keeps          []RangeDTO `json:"keeps"`
	RemovedSeconds float64    `json:"removed_seconds"`
	KeptSeconds    float64    `json:"kept_seconds"`
	// URL is the stored artifact location when storing was requested.
	URL string `json:"url,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
