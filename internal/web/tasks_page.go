package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/board"
	"taskboard/internal/database"
	"taskboard/internal/parser"
	"taskboard/internal/table"
	"taskboard/internal/types"
)

// headerCell - заголовок колонки со ссылкой на переключение сортировки
type headerCell struct {
	table.Header
	SortURL string
	Marker  string
}

type tasksPage struct {
	page
	Workspace   *types.Workspace
	View        table.View
	Headers     []headerCell
	Sort        string
	Size        int
	PrevURL     string
	NextURL     string
	PageNumber  int
	PageCount   int
	Revision    int64
	Form        types.CreateTaskRequest
	Statuses    []string
	CurrentPath string
}

// Columns - базовые колонки таблицы задач; метрики планирования добавляет table.New
func (h *Handler) Columns() []table.Column {
	return []table.Column{
		table.NameColumn(),
		table.DueDateColumn(h.loc),
		table.StatusColumn(),
	}
}

func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	h.renderTasks(w, r, http.StatusOK, types.CreateTaskRequest{}, "")
}

func (h *Handler) renderTasks(w http.ResponseWriter, r *http.Request, status int, form types.CreateTaskRequest, message string) {
	ws := workspaceFromContext(r.Context())

	res, err := h.boards.Enriched(r.Context(), ws.ID)
	if err != nil {
		log.Printf("Ошибка получения задач: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	st := parser.ParseState(r.URL.Query(), h.pageSize)

	tbl := table.New(h.Columns(), nil)
	tbl.SetState(st)
	view := tbl.RenderRows(res.Tasks)
	st = view.State

	base := tasksPath(ws.ID)
	data := tasksPage{
		page:        h.newPage(r, ws.Name+" · Tasks"),
		Workspace:   ws,
		View:        view,
		Size:        st.PageSize,
		PageNumber:  view.Page.Index + 1,
		PageCount:   view.Page.Count,
		Revision:    res.List.Revision,
		Form:        form,
		Statuses:    []string{types.StatusTodo, types.StatusInProgress, types.StatusDone},
		CurrentPath: r.URL.RequestURI(),
	}
	data.Error = message

	if sortValue := parser.EncodeState(parser.State{Sorting: st.Sorting}).Get("sort"); sortValue != "" {
		data.Sort = sortValue
	}

	for _, hdr := range view.Headers {
		cell := headerCell{Header: hdr, SortURL: stateURL(base, parser.ToggleSort(st, hdr.Key))}
		switch hdr.Sorted {
		case "asc":
			cell.Marker = "▲"
		case "desc":
			cell.Marker = "▼"
		}
		data.Headers = append(data.Headers, cell)
	}

	if view.Page.HasPrev {
		data.PrevURL = stateURL(base, parser.WithPage(st, view.Page.Index-1))
	}
	if view.Page.HasNext {
		data.NextURL = stateURL(base, parser.WithPage(st, view.Page.Index+1))
	}

	h.render(w, status, "tasks", data)
}

func stateURL(base string, st parser.State) string {
	q := parser.EncodeState(st)
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	form := types.CreateTaskRequest{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		DueDate: strings.TrimSpace(r.PostFormValue("dueDate")),
		Status:  r.PostFormValue("status"),
	}

	if _, err := h.boards.AddTask(r.Context(), ws.ID, form); err != nil {
		if message, ok := validationMessage(err); ok {
			h.renderTasks(w, r, http.StatusUnprocessableEntity, form, message)
			return
		}
		log.Printf("Ошибка создания задачи: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, returnPath(r, tasksPath(ws.ID)), http.StatusSeeOther)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	if err := h.boards.RemoveTask(r.Context(), ws.ID, chi.URLParam(r, "taskId")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		log.Printf("Ошибка удаления задачи: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, returnPath(r, tasksPath(ws.ID)), http.StatusSeeOther)
}

// Live подписывает браузер на изменения задач рабочего пространства
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	h.hub.Subscribe(w, r, workspaceFromContext(r.Context()).ID)
}

func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, board.ErrEmptyName):
		return "Task name is required", true
	case errors.Is(err, parser.ErrInvalidDueDate):
		return "Due date is not valid", true
	case errors.Is(err, board.ErrInvalidStatus):
		return "Status is not valid", true
	}
	return "", false
}

// returnPath возвращает на страницу таблицы с сохранением ее состояния
func returnPath(r *http.Request, fallback string) string {
	back := r.PostFormValue("return")
	u, err := url.Parse(back)
	if back == "" || err != nil || u.IsAbs() || u.Host != "" || u.Path != fallback {
		return fallback
	}
	return u.RequestURI()
}
