package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/uav-groundstation/internal/sensorlog"
)

// cameraResponse is the /api/camera body. Image is null until the first
// frame arrives.
type cameraResponse struct {
	Image      *string  `json:"image"`
	Names      []string `json:"names,omitempty"`
	ReceivedAt string   `json:"received_at,omitempty"`
}

// handleSensor returns the latest ingested reading as a flat channel to
// number object, or {} before the first one.
func (s *Server) handleSensor(w http.ResponseWriter, _ *http.Request) {
	reading, _ := s.store.Reading()
	writeJSON(w, http.StatusOK, reading)
}

// handleCamera returns the latest frame as a data URL.
func (s *Server) handleCamera(w http.ResponseWriter, _ *http.Request) {
	frame, ok := s.store.Frame()
	if !ok {
		writeJSON(w, http.StatusOK, cameraResponse{})
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{
		Image:      &frame.Image,
		Names:      frame.Names,
		ReceivedAt: frame.ReceivedAt.UTC().Format(timeFormat),
	})
}

// handleLogs lists sensor log filenames, newest first.
func (s *Server) handleLogs(w http.ResponseWriter, _ *http.Request) {
	names, err := s.logs.List()
	if err != nil {
		s.logger.Error("failed to list sensor logs", "error", err)
		writeInternalError(w, "failed to list sensor logs")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// handleLogFile serves one sensor log as JSON.
func (s *Server) handleLogFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, err := s.logs.Read(name)
	switch {
	case errors.Is(err, sensorlog.ErrInvalidName):
		writeBadRequest(w, "invalid log name")
		return
	case errors.Is(err, sensorlog.ErrNotFound):
		writeNotFound(w, "log not found")
		return
	case err != nil:
		s.logger.Error("failed to read sensor log", "name", name, "error", err)
		writeInternalError(w, "failed to read sensor log")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // Best-effort write to response
}
