package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/types"
)

type ContextKey string

const WorkspaceKey ContextKey = "workspace"

// requireMember пропускает только участников рабочего пространства {id}
func (s *Server) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ws, err := s.db.GetWorkspace(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				SendErrorResponse(w, http.StatusNotFound, "Workspace not found")
				return
			}
			sendError(w, err)
			return
		}

		member, err := s.db.IsMember(r.Context(), ws.ID, userID)
		if err != nil {
			sendError(w, err)
			return
		}
		if !member {
			SendErrorResponse(w, http.StatusForbidden, "Forbidden: not a member of this workspace")
			return
		}

		ctx := context.WithValue(r.Context(), WorkspaceKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetWorkspaceFromContext извлекает рабочее пространство из контекста
func GetWorkspaceFromContext(ctx context.Context) (*types.Workspace, bool) {
	ws, ok := ctx.Value(WorkspaceKey).(*types.Workspace)
	return ws, ok
}
