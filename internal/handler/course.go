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

var courseKinds = map[string]bool{
	"lecture":  true,
	"seminar":  true,
	"lab":      true,
	"tutorial": true,
}

type CourseHandler struct {
	store  *store.CourseStore
	hub    *websocket.Hub
	policy recurrence.Policy
	logger *slog.Logger
}

func NewCourseHandler(cs *store.CourseStore, hub *websocket.Hub, policy recurrence.Policy, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{store: cs, hub: hub, policy: policy, logger: logger}
}

type courseRequest struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	Instructor string `json:"instructor"`
	Location   string `json:"location"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

func (h *CourseHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*courseRequest, time.Time, time.Time, bool) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, time.Time{}, time.Time{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return nil, time.Time{}, time.Time{}, false
	}

	if req.Kind == "" {
		req.Kind = "lecture"
	}
	if !courseKinds[req.Kind] {
		writeError(w, http.StatusBadRequest, "kind must be lecture, seminar, lab, or tutorial")
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

func (h *CourseHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Course, bool) {
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

	course, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get course", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get course")
		return nil, false
	}
	if course == nil || course.UserID != ac.UserID {
		writeError(w, http.StatusNotFound, "course not found")
		return nil, false
	}

	return course, true
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	course, err := h.store.Create(ac.UserID, req.Code, req.Title, req.Kind, req.Instructor, req.Location, startTime, endTime)
	if err != nil {
		h.logger.Error("create course", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create course")
		return
	}

	h.hub.NotifyUser(ac.UserID, websocket.NewMessage("course", "created", course.ID, nil))
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	courses, err := h.store.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list courses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}

	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	req, startTime, endTime, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	course, err := h.store.Update(existing.ID, req.Code, req.Title, req.Kind, req.Instructor, req.Location, startTime, endTime)
	if err != nil {
		h.logger.Error("update course", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update course")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("course", "updated", course.ID, nil))
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(existing.ID); err != nil {
		h.logger.Error("delete course", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete course")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("course", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Timetable materializes every weekly class slot of the user's courses
// within [start, end], sorted chronologically.
func (h *CourseHandler) Timetable(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

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

	courses, err := h.store.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list courses for timetable", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	templates := make([]recurrence.Template, 0, len(courses))
	for _, c := range courses {
		templates = append(templates, courseTemplate(c))
	}

	occurrences := recurrence.ExpandSemester(h.policy, templates, start, end)
	if occurrences == nil {
		occurrences = []recurrence.Occurrence{}
	}

	writeJSON(w, http.StatusOK, occurrences)
}

// courseTemplate converts a course into a weekly expansion template. The
// course's own start/end anchor the weekday and time-of-day of the slot.
func courseTemplate(c model.Course) recurrence.Template {
	title := c.Title
	if c.Code != "" {
		title = c.Code + " " + c.Title
	}
	return recurrence.Template{
		ID:          strconv.FormatInt(c.ID, 10),
		Title:       title,
		Location:    c.Location,
		Description: c.Kind,
		Start:       c.StartTime,
		End:         c.EndTime,
		Rule:        &recurrence.Rule{Freq: recurrence.Weekly, Interval: 1},
	}
}
