package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/auth"
	"github.com/azusa-dom/uniapp-server/internal/model"
	"github.com/azusa-dom/uniapp-server/internal/recurrence"
	"github.com/azusa-dom/uniapp-server/internal/store"
	"github.com/azusa-dom/uniapp-server/internal/websocket"
)

var todoPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

type TodoHandler struct {
	store  *store.TodoStore
	hub    *websocket.Hub
	policy recurrence.Policy
	logger *slog.Logger
}

func NewTodoHandler(ts *store.TodoStore, hub *websocket.Hub, policy recurrence.Policy, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{store: ts, hub: hub, policy: policy, logger: logger}
}

type todoRequest struct {
	Title    string  `json:"title"`
	Notes    string  `json:"notes"`
	DueDate  *string `json:"due_date"`
	Priority string  `json:"priority"`
}

func (h *TodoHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*todoRequest, *time.Time, bool) {
	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, nil, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return nil, nil, false
	}

	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !todoPriorities[req.Priority] {
		writeError(w, http.StatusBadRequest, "priority must be low, medium, or high")
		return nil, nil, false
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := parseFlexibleTime(*req.DueDate, h.policy.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "due_date must be RFC3339 or YYYY-MM-DD format")
			return nil, nil, false
		}
		dueDate = &t
	}

	return &req, dueDate, true
}

func (h *TodoHandler) owned(w http.ResponseWriter, r *http.Request) (*model.TodoItem, bool) {
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

	todo, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get todo")
		return nil, false
	}
	if todo == nil || todo.UserID != ac.UserID {
		writeError(w, http.StatusNotFound, "todo not found")
		return nil, false
	}

	return todo, true
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, dueDate, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	todo, err := h.store.Create(ac.UserID, req.Title, req.Notes, dueDate, req.Priority)
	if err != nil {
		h.logger.Error("create todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	h.hub.NotifyUser(ac.UserID, websocket.NewMessage("todo", "created", todo.ID, nil))
	writeJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	todos, err := h.store.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list todos", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}
	if todos == nil {
		todos = []model.TodoItem{}
	}

	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	req, dueDate, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	todo, err := h.store.Update(existing.ID, req.Title, req.Notes, dueDate, req.Priority)
	if err != nil {
		h.logger.Error("update todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("todo", "updated", todo.ID, nil))
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	todo, err := h.store.SetCompleted(existing.ID, req.Completed)
	if err != nil {
		h.logger.Error("set todo completed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}

	action := "reopened"
	if req.Completed {
		action = "completed"
	}
	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("todo", action, todo.ID, nil))
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(existing.ID); err != nil {
		h.logger.Error("delete todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	h.hub.NotifyUser(existing.UserID, websocket.NewMessage("todo", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
