package api

import (
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/database"
	"taskboard/internal/models"
	"taskboard/internal/parser"
)

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if !req.Normalize() {
		SendErrorResponse(w, http.StatusBadRequest, "Login and password required")
		return
	}

	if _, err := s.db.CreateUser(r.Context(), req.Login, req.Password); err != nil {
		sendError(w, err)
		return
	}

	SendSuccessResponse(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login обрабатывает запрос на вход в систему
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(r, &req) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	req.Normalize()

	user, err := s.db.GetUser(r.Context(), req.Login)
	if err != nil {
		sendError(w, err)
		return
	}

	if user == nil || !database.CheckPasswordHash(req.Password, user.Password) {
		SendErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.auth.GenerateToken(user.ID, user.Login)
	if err != nil {
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	SendSuccessResponse(w, http.StatusOK, models.AuthResponse{
		Token:     token,
		ExpiresAt: parser.FormatDueDate(time.Now().Add(s.auth.TTL())),
	})
}

// TokenInfo возвращает информацию о времени жизни токена
func (s *Server) TokenInfo(w http.ResponseWriter, r *http.Request) {
	SendSuccessResponse(w, http.StatusOK, models.TokenInfoResponse{
		ExpirationMinutes: strconv.Itoa(int(s.auth.TTL().Minutes())),
	})
}
