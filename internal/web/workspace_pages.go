package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/types"
)

type contextKey string

const workspaceKey contextKey = "workspace"

func workspaceFromContext(ctx context.Context) *types.Workspace {
	ws, _ := ctx.Value(workspaceKey).(*types.Workspace)
	return ws
}

// requireMember пускает на страницы рабочего пространства только его участников
func (h *Handler) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())

		ws, err := h.db.GetWorkspace(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				h.renderError(w, r, http.StatusNotFound, "Workspace not found")
				return
			}
			log.Printf("Ошибка получения рабочего пространства: %v", err)
			h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}

		ok, err := h.db.IsMember(r.Context(), ws.ID, userID)
		if err != nil {
			log.Printf("Ошибка проверки участника: %v", err)
			h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			h.renderError(w, r, http.StatusForbidden, "You are not a member of this workspace")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey, ws)))
	})
}

type workspacesPage struct {
	page
	Workspaces []types.Workspace
	Name       string
}

func (h *Handler) Workspaces(w http.ResponseWriter, r *http.Request) {
	h.renderWorkspaces(w, r, http.StatusOK, "", "")
}

func (h *Handler) renderWorkspaces(w http.ResponseWriter, r *http.Request, status int, name, message string) {
	userID, _ := auth.UserIDFromContext(r.Context())

	list, err := h.db.ListWorkspaces(r.Context(), userID)
	if err != nil {
		log.Printf("Ошибка получения рабочих пространств: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	data := workspacesPage{page: h.newPage(r, "Workspaces"), Workspaces: list, Name: name}
	data.Error = message
	h.render(w, status, "workspaces", data)
}

func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		h.renderWorkspaces(w, r, http.StatusUnprocessableEntity, name, "Workspace name is required")
		return
	}

	ws, err := h.db.CreateWorkspace(r.Context(), name, userID)
	if err != nil {
		log.Printf("Ошибка создания рабочего пространства: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, tasksPath(ws.ID), http.StatusSeeOther)
}

func (h *Handler) WorkspaceIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, tasksPath(workspaceFromContext(r.Context()).ID), http.StatusSeeOther)
}

type membersPage struct {
	page
	Workspace *types.Workspace
	Members   []types.Member
	IsAdmin   bool
	Login     string
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	h.renderMembers(w, r, http.StatusOK, "", "")
}

func (h *Handler) renderMembers(w http.ResponseWriter, r *http.Request, status int, login, message string) {
	ws := workspaceFromContext(r.Context())
	userID, _ := auth.UserIDFromContext(r.Context())

	members, err := h.db.ListMembers(r.Context(), ws.ID)
	if err != nil {
		log.Printf("Ошибка получения участников: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	data := membersPage{
		page:      h.newPage(r, ws.Name+" · Members"),
		Workspace: ws,
		Members:   members,
		IsAdmin:   roleOf(members, userID) == types.RoleAdmin,
		Login:     login,
	}
	data.Error = message
	h.render(w, status, "members", data)
}

// AddMember приглашает пользователя по логину; доступно администраторам
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	login := strings.TrimSpace(r.PostFormValue("login"))

	members, err := h.db.ListMembers(r.Context(), ws.ID)
	if err != nil {
		log.Printf("Ошибка получения участников: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if roleOf(members, userID) != types.RoleAdmin {
		h.renderError(w, r, http.StatusForbidden, "Only admins can add members")
		return
	}

	user, err := h.db.GetUser(r.Context(), login)
	if err != nil {
		log.Printf("Ошибка поиска пользователя %s: %v", login, err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		h.renderMembers(w, r, http.StatusNotFound, login, "User not found")
		return
	}

	if err := h.db.AddMember(r.Context(), ws.ID, user.ID, types.RoleMember); err != nil {
		if errors.Is(err, database.ErrAlreadyMember) {
			h.renderMembers(w, r, http.StatusConflict, login, "User is already a member")
			return
		}
		log.Printf("Ошибка добавления участника: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, membersPath(ws.ID), http.StatusSeeOther)
}

func roleOf(members []types.Member, userID int) string {
	for _, m := range members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

func tasksPath(workspaceID string) string {
	return WorkspacesPath + "/" + workspaceID + "/tasks"
}

func membersPath(workspaceID string) string {
	return WorkspacesPath + "/" + workspaceID + "/members"
}
