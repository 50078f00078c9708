package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/auth"
	"github.com/azusa-dom/uniapp-server/internal/model"
	"github.com/azusa-dom/uniapp-server/internal/recurrence"
	"github.com/azusa-dom/uniapp-server/internal/store"
	"github.com/azusa-dom/uniapp-server/internal/websocket"
)

type EventHandler struct {
	store  *store.EventStore
	hub    *websocket.Hub
	policy recurrence.Policy
	logger *slog.Logger
}

func NewEventHandler(es *store.EventStore, hub *websocket.Hub, policy recurrence.Policy, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: es, hub: hub, policy: policy, logger: logger}
}

type eventRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Recurrence      string `json:"recurrence"`
	ReminderMinutes int    `json:"reminder_minutes"`
}

func (h *EventHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*eventRequest, time.Time, time.Time, bool) {
	var req eventRequest
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

	if req.Recurrence != "" {
		rule, err := recurrence.Parse(req.Recurrence)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid recurrence rule: "+err.Error())
			return nil, time.Time{}, time.Time{}, false
		}
		// Store the canonical form so equal rules compare equal.
		req.Recurrence = rule.String()
	}

	if req.ReminderMinutes < 0 {
		writeError(w, http.StatusBadRequest, "reminder_minutes must not be negative")
		return nil, time.Time{}, time.Time{}, false
	}

	return &req, startTime, endTime, true
}

// owned fetches the event and verifies it belongs to the authenticated user.
// Events of other users read as not found.
func (h *EventHandler) owned(w http.ResponseWriter, r *http.Request) (*model.CalendarEvent, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	event, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return nil, false
	}
	if event == nil || event.UserID != ac.UserID {
		writeError(w, http.StatusNotFound, "event not found")
		return nil, false
	}

	return event, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	event, err := h.store.Create(ac.UserID, req.Title, req.Description, req.Location, startTime, endTime, req.Recurrence, req.ReminderMinutes)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.hub.NotifyUser(ac.UserID, websocket.NewMessage("event", "created", event.ID, nil))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	events, err := h.store.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	event, err := h.store.Update(existing.ID, req.Title, req.Description, req.Location, startTime, endTime, req.Recurrence, req.ReminderMinutes)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("event", "updated", event.ID, nil))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(existing.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("event", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Day resolves which of the user's events occur on the requested calendar
// day, projecting repeating events onto that day. Non-repeating events
// appear only on their own day.
func (h *EventHandler) Day(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	date, err := parseFlexibleTime(dateStr, h.policy.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD format")
		return
	}

	events, err := h.store.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list events for day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	occurrences := []recurrence.Occurrence{}
	for _, e := range events {
		tmpl, err := eventTemplate(e)
		if err != nil {
			h.logger.Warn("skipping event with bad recurrence", "event_id", e.ID, "error", err)
			continue
		}
		if occ := recurrence.Match(h.policy, tmpl, date); occ != nil {
			occurrences = append(occurrences, *occ)
		}
	}

	writeJSON(w, http.StatusOK, occurrences)
}

// eventTemplate converts a stored event into an expansion template.
func eventTemplate(e model.CalendarEvent) (recurrence.Template, error) {
	tmpl := recurrence.Template{
		ID:             strconv.FormatInt(e.ID, 10),
		Title:          e.Title,
		Location:       e.Location,
		Description:    e.Description,
		Start:          e.StartTime,
		End:            e.EndTime,
		ReminderOffset: time.Duration(e.ReminderMinutes) * time.Minute,
	}
	if e.Recurrence != "" {
		rule, err := recurrence.Parse(e.Recurrence)
		if err != nil {
			return recurrence.Template{}, err
		}
		tmpl.Rule = &rule
	}
	return tmpl, nil
}
