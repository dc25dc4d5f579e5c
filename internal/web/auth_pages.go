package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/models"
)

type authPage struct {
	page
	Next  string
	Login string
}

// safeNext допускает переход только по локальному пути
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return WorkspacesPath
	}
	return next
}

func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, ok := h.auth.CurrentUser(r); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "sign_in", authPage{page: h.newPage(r, "Sign in"), Next: next})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	login := strings.TrimSpace(r.PostFormValue("login"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	data := authPage{page: h.newPage(r, "Sign in"), Next: next, Login: login}

	user, err := h.db.GetUser(r.Context(), login)
	if err != nil {
		log.Printf("Ошибка входа пользователя %s: %v", login, err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !database.CheckPasswordHash(password, user.Password) {
		data.Error = "Invalid credentials"
		h.render(w, http.StatusUnauthorized, "sign_in", data)
		return
	}

	if err := h.auth.SetSession(w, user.ID, user.Login); err != nil {
		log.Printf("Ошибка создания сессии: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.auth.CurrentUser(r); ok {
		http.Redirect(w, r, WorkspacesPath, http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "sign_up", authPage{page: h.newPage(r, "Sign up"), Next: WorkspacesPath})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	creds := models.Credentials{Login: r.PostFormValue("login"), Password: r.PostFormValue("password")}
	ok := creds.Normalize()
	login := creds.Login

	data := authPage{page: h.newPage(r, "Sign up"), Next: WorkspacesPath, Login: login}

	if !ok {
		data.Error = "Login and password required"
		h.render(w, http.StatusBadRequest, "sign_up", data)
		return
	}

	id, err := h.db.CreateUser(r.Context(), login, creds.Password)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			data.Error = "User already exists"
			h.render(w, http.StatusConflict, "sign_up", data)
			return
		}
		log.Printf("Ошибка регистрации пользователя %s: %v", login, err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.auth.SetSession(w, id, login); err != nil {
		log.Printf("Ошибка создания сессии: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, WorkspacesPath, http.StatusSeeOther)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, SignInPath, http.StatusSeeOther)
}
