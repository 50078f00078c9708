package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/model"
	"github.com/azusa-dom/uniapp-server/internal/recurrence"
	"github.com/azusa-dom/uniapp-server/internal/store"
	"github.com/azusa-dom/uniapp-server/internal/websocket"
)

// ActivityHandler serves the campus activity feed. Activities are visible
// to every signed-in user; changes are broadcast to all connections.
type ActivityHandler struct {
	store  *store.ActivityStore
	hub    *websocket.Hub
	policy recurrence.Policy
	logger *slog.Logger
}

func NewActivityHandler(as *store.ActivityStore, hub *websocket.Hub, policy recurrence.Policy, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{store: as, hub: hub, policy: policy, logger: logger}
}

type activityRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Organizer string `json:"organizer"`
	Location  string `json:"location"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *ActivityHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*activityRequest, time.Time, time.Time, bool) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, time.Time{}, time.Time{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return nil, time.Time{}, time.Time{}, false
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be RFC3339 format")
		return nil, time.Time{}, time.Time{}, false
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be RFC3339 format")
		return nil, time.Time{}, time.Time{}, false
	}

	if !startTime.Before(endTime) {
		writeError(w, http.StatusBadRequest, "start_time must be before end_time")
		return nil, time.Time{}, time.Time{}, false
	}

	return &req, startTime, endTime, true
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	activity, err := h.store.Create(req.Title, req.Category, req.Organizer, req.Location, startTime, endTime)
	if err != nil {
		h.logger.Error("create activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create activity")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("activity", "created", activity.ID, nil))
	writeJSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}

	start, err := parseFlexibleTime(startStr, h.policy.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD format")
		return
	}

	end, err := parseFlexibleTime(endStr, h.policy.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD format")
		return
	}

	activities, err := h.store.ListByDateRange(start, end)
	if err != nil {
		h.logger.Error("list activities", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	if activities == nil {
		activities = []model.CampusActivity{}
	}

	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	activity, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get activity")
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get activity")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	activity, err := h.store.Update(id, req.Title, req.Category, req.Organizer, req.Location, startTime, endTime)
	if err != nil {
		h.logger.Error("update activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update activity")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("activity", "updated", activity.ID, nil))
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get activity")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete activity")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("activity", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
