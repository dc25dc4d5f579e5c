package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/database"
	"taskboard/internal/table"
	"taskboard/internal/ws"
)

const (
	SignInPath     = "/sign-in"
	WorkspacesPath = "/workspaces"
)

//go:embed templates/*.html static/*
var assets embed.FS

var pageNames = []string{"home", "sign_in", "sign_up", "workspaces", "members", "tasks", "error"}

// Handler обслуживает HTML-страницы приложения
type Handler struct {
	db       *database.DB
	boards   *board.Manager
	auth     *auth.Manager
	hub      *ws.Hub
	pageSize int
	loc      *time.Location

	pages map[string]*template.Template
}

func New(db *database.DB, boards *board.Manager, authManager *auth.Manager, hub *ws.Hub, pageSize int) (*Handler, error) {
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}

	funcs := template.FuncMap{
		"button": ButtonClass,
		"input":  InputClass,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора шаблона %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{
		db:       db,
		boards:   boards,
		auth:     authManager,
		hub:      hub,
		pageSize: pageSize,
		loc:      time.Local,
		pages:    pages,
	}, nil
}

// Routes настраивает маршруты страниц
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Публичные страницы
	r.Get("/", h.Home)
	r.Get(SignInPath, h.SignInPage)
	r.Post(SignInPath, h.SignIn)
	r.Get("/sign-up", h.SignUpPage)
	r.Post("/sign-up", h.SignUp)
	r.Get("/sign-out", h.SignOut)
	r.Post("/sign-out", h.SignOut)

	// Страницы только для вошедших пользователей
	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireUser(SignInPath))

		r.Get(WorkspacesPath, h.Workspaces)
		r.Post(WorkspacesPath, h.CreateWorkspace)

		r.Route(WorkspacesPath+"/{id}", func(r chi.Router) {
			r.Use(h.requireMember)

			r.Get("/", h.WorkspaceIndex)
			r.Get("/members", h.Members)
			r.Post("/members", h.AddMember)
			r.Get("/tasks", h.Tasks)
			r.Post("/tasks", h.CreateTask)
			r.Post("/tasks/{taskId}/delete", h.DeleteTask)
		})

		r.With(h.requireMember).Get("/ws/workspaces/{id}", h.Live)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.renderError(w, r, http.StatusNotFound, "Page not found")
	})

	return r
}

// page - общие данные всех страниц
type page struct {
	Title string
	User  *auth.Claims
	Error string
}

func (h *Handler) newPage(r *http.Request, title string) page {
	user, _ := h.auth.CurrentUser(r)
	return page{Title: title, User: user}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := h.pages[name]
	if !ok {
		log.Printf("Шаблон %s не найден", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Ошибка отрисовки шаблона %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorPage struct {
	page
	Status int
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p := h.newPage(r, http.StatusText(status))
	p.Error = message
	h.render(w, status, "error", errorPage{page: p, Status: status})
}

// Home показывает базовые элементы интерфейса: поле ввода и кнопки всех вариантов
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data := struct {
		page
		Buttons []buttonDemo
	}{
		page:    h.newPage(r, "Taskboard"),
		Buttons: showcase,
	}
	h.render(w, http.StatusOK, "home", data)
}
