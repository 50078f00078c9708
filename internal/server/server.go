package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/handler"
	"github.com/azusa-dom/uniapp-server/internal/middleware"
	"github.com/azusa-dom/uniapp-server/internal/recurrence"
	"github.com/azusa-dom/uniapp-server/internal/store"
	ws "github.com/azusa-dom/uniapp-server/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	eventH       *handler.EventHandler
	courseH      *handler.CourseHandler
	todoH        *handler.TodoHandler
	activityH    *handler.ActivityHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, sessionTTL time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	policy := recurrence.DefaultPolicy()

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	eventStore := store.NewEventStore(db)
	courseStore := store.NewCourseStore(db)
	todoStore := store.NewTodoStore(db)
	activityStore := store.NewActivityStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, sessionTTL, logger.With("component", "auth")),
		eventH:       handler.NewEventHandler(eventStore, hub, policy, logger.With("component", "event")),
		courseH:      handler.NewCourseHandler(courseStore, hub, policy, logger.With("component", "course")),
		todoH:        handler.NewTodoHandler(todoStore, hub, policy, logger.With("component", "todo")),
		activityH:    handler.NewActivityHandler(activityStore, hub, policy, logger.With("component", "activity")),
		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires a valid session
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Calendar events, plus the day view that projects repeating events
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/day", s.eventH.Day)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Courses and the expanded semester timetable
	mux.HandleFunc("POST /api/courses", s.courseH.Create)
	mux.HandleFunc("GET /api/courses", s.courseH.List)
	mux.HandleFunc("GET /api/courses/{id}", s.courseH.Get)
	mux.HandleFunc("PUT /api/courses/{id}", s.courseH.Update)
	mux.HandleFunc("DELETE /api/courses/{id}", s.courseH.Delete)
	mux.HandleFunc("GET /api/timetable", s.courseH.Timetable)

	// Todos
	mux.HandleFunc("POST /api/todos", s.todoH.Create)
	mux.HandleFunc("GET /api/todos", s.todoH.List)
	mux.HandleFunc("GET /api/todos/{id}", s.todoH.Get)
	mux.HandleFunc("PUT /api/todos/{id}", s.todoH.Update)
	mux.HandleFunc("DELETE /api/todos/{id}", s.todoH.Delete)
	mux.HandleFunc("POST /api/todos/{id}/complete", s.todoH.SetCompleted)

	// Campus activities
	mux.HandleFunc("POST /api/activities", s.activityH.Create)
	mux.HandleFunc("GET /api/activities", s.activityH.List)
	mux.HandleFunc("GET /api/activities/{id}", s.activityH.Get)
	mux.HandleFunc("PUT /api/activities/{id}", s.activityH.Update)
	mux.HandleFunc("DELETE /api/activities/{id}", s.activityH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
