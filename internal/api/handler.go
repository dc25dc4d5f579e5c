package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/internal/parser"
	"taskboard/internal/types"
)

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	list, err := s.boards.Snapshot(r.Context(), ws.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusOK, types.TaskListResponse{
		Revision: list.Revision,
		Tasks:    list.Tasks,
	})
}

// EnrichedTasks возвращает задачи в порядке SRTF с приоритетом, временем ожидания и оборота
func (s *Server) EnrichedTasks(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	res, err := s.boards.Enriched(r.Context(), ws.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusOK, types.EnrichedTaskListResponse{
		Revision:     res.List.Revision,
		CalculatedAt: parser.FormatDueDate(res.CalculatedAt),
		Tasks:        res.Tasks,
	})
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	var req types.CreateTaskRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	task, err := s.boards.AddTask(r.Context(), ws.ID, req)
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusCreated, task)
}

func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	var req types.CreateTaskRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	task, err := s.boards.UpdateTask(r.Context(), types.Task{
		ID:          mux.Vars(r)["taskId"],
		WorkspaceID: ws.ID,
		Name:        req.Name,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusOK, task)
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ws, _ := GetWorkspaceFromContext(r.Context())

	if err := s.boards.RemoveTask(r.Context(), ws.ID, mux.Vars(r)["taskId"]); err != nil {
		sendError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
