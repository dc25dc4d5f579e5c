package api

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/database"
)

// Prefix - общий префикс маршрутов JSON API
const Prefix = "/api/v1"

// Server обслуживает JSON API: пользователи, рабочие пространства и задачи
type Server struct {
	db          *database.DB
	boards      *board.Manager
	auth        *auth.Manager
	corsOrigins []string
}

func NewServer(db *database.DB, boards *board.Manager, authManager *auth.Manager, corsOrigins []string) *Server {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &Server{db: db, boards: boards, auth: authManager, corsOrigins: corsOrigins}
}

// Router настраивает маршруты API; CORS обрабатывается до маршрутизации
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix(Prefix).Subrouter()

	// Публичные маршруты (без аутентификации)
	api.HandleFunc("/register", s.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.Login).Methods(http.MethodPost)
	api.HandleFunc("/token-info", s.TokenInfo).Methods(http.MethodGet)

	// Защищенные маршруты (с аутентификацией)
	protected := api.NewRoute().Subrouter()
	protected.Use(s.auth.Middleware)

	protected.HandleFunc("/workspaces", s.ListWorkspaces).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces", s.CreateWorkspace).Methods(http.MethodPost)

	member := protected.PathPrefix("/workspaces/{id}").Subrouter()
	member.Use(s.requireMember)

	member.HandleFunc("/members", s.ListMembers).Methods(http.MethodGet)
	member.HandleFunc("/members", s.AddMember).Methods(http.MethodPost)
	member.HandleFunc("/tasks", s.ListTasks).Methods(http.MethodGet)
	member.HandleFunc("/tasks", s.CreateTask).Methods(http.MethodPost)
	member.HandleFunc("/tasks/enriched", s.EnrichedTasks).Methods(http.MethodGet)
	member.HandleFunc("/tasks/{taskId}", s.UpdateTask).Methods(http.MethodPut)
	member.HandleFunc("/tasks/{taskId}", s.DeleteTask).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SendErrorResponse(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}
