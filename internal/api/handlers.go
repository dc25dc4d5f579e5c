package api

import (
	"net/http"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/types"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Login string `json:"login"`
	Role  string `json:"role,omitempty"`
}

func (s *Server) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	workspaces, err := s.db.ListWorkspaces(r.Context(), userID)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string][]types.Workspace{"workspaces": workspaces})
}

// CreateWorkspace создает рабочее пространство; автор становится администратором
func (s *Server) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateWorkspaceRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Workspace name is required")
		return
	}

	ws, err := s.db.CreateWorkspace(r.Context(), name, userID)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusCreated, ws)
}

func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	members, err := s.db.ListMembers(r.Context(), ws.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusOK, map[string][]types.Member{"members": members})
}

// AddMember добавляет пользователя по логину; доступно только администраторам
func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())
	userID, _ := auth.UserIDFromContext(r.Context())

	members, err := s.db.ListMembers(r.Context(), ws.ID)
	if err != nil {
		sendError(w, err)
		return
	}
	if !isAdmin(members, userID) {
		SendErrorResponse(w, http.StatusForbidden, "Forbidden: admin role required")
		return
	}

	var req AddMemberRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	role := req.Role
	if role == "" {
		role = types.RoleMember
	}
	if role != types.RoleMember && role != types.RoleAdmin {
		SendErrorResponse(w, http.StatusBadRequest, "Role is not valid")
		return
	}

	user, err := s.db.GetUser(r.Context(), strings.TrimSpace(req.Login))
	if err != nil {
		sendError(w, err)
		return
	}
	if user == nil {
		SendErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	if err := s.db.AddMember(r.Context(), ws.ID, user.ID, role); err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusCreated, types.Member{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Login:       user.Login,
		Role:        role,
	})
}

func isAdmin(members []types.Member, userID int) bool {
	for _, m := range members {
		if m.UserID == userID {
			return m.Role == types.RoleAdmin
		}
	}
	return false
}
