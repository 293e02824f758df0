package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/poller"
)

// timeFormat is used for every timestamp rendered by handlers.
const timeFormat = time.RFC3339

// handleSeries returns the rolling series as a chart payload.
func (s *Server) handleSeries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot().Chart())
}

// handleDashboard returns everything the page renders in one document.
func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.State())
}

// handleListReadings returns persisted readings, newest first.
//
// Query parameters:
//   - since: RFC3339 lower bound on recorded_at
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "reading history not configured")
		return
	}

	q := r.URL.Query()
	filter := history.Filter{SiteID: s.siteID}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = since
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.history.ListReadings(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list readings", "error", err)
		writeInternalError(w, "failed to list readings")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListFrames returns metadata of recent camera frames.
func (s *Server) handleListFrames(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "reading history not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	frames, err := s.history.RecentFrames(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list camera frames", "error", err)
		writeInternalError(w, "failed to list camera frames")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"frames": frames})
}

// currentEvent supplies the hub with the present value of each event
// channel so a new subscriber does not wait for the next tick.
func (s *Server) currentEvent(channel string) (any, bool) {
	switch channel {
	case poller.EventSeries:
		return poller.SeriesUpdate{
			Latest: s.dashboard.Latest(),
			Chart:  s.dashboard.Snapshot().Chart(),
		}, true
	case poller.EventCamera:
		image := s.dashboard.Camera()
		if image == "" {
			return nil, false
		}
		return map[string]string{"image": image}, true
	case poller.EventLogs:
		return s.dashboard.Logs(), true
	default:
		return nil, false
	}
}
