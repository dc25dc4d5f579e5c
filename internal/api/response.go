package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"taskboard/internal/board"
	"taskboard/internal/database"
	"taskboard/internal/parser"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func SendSuccessResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// sendError сопоставляет ошибку с кодом ответа
func sendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrEmptyName):
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Task name is required")
	case errors.Is(err, parser.ErrInvalidDueDate):
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Due date is not valid")
	case errors.Is(err, board.ErrInvalidStatus):
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Status is not valid")
	case errors.Is(err, database.ErrNotFound):
		SendErrorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrUserExists):
		SendErrorResponse(w, http.StatusConflict, "User already exists")
	case errors.Is(err, database.ErrAlreadyMember):
		SendErrorResponse(w, http.StatusConflict, "User is already a member")
	default:
		log.Printf("Внутренняя ошибка API: %v", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) bool {
	if r.Body == nil {
		return false
	}
	return json.NewDecoder(r.Body).Decode(v) == nil
}
