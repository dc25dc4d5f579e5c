package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// SessionCookie - имя cookie с токеном сессии
const SessionCookie = "taskboard_session"

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims добавляет данные пользователя в контекст
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext извлекает данные пользователя из контекста
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext извлекает ID пользователя из контекста
func UserIDFromContext(ctx context.Context) (int, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// TokenFromRequest берет токен из заголовка Authorization, а если его нет - из cookie сессии
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return parts[1]
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentUser возвращает текущего пользователя или сообщает о его отсутствии
func (m *Manager) CurrentUser(r *http.Request) (*Claims, bool) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims, true
	}

	token := TokenFromRequest(r)
	if token == "" {
		return nil, false
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// SetSession выпускает токен и кладет его в cookie
func (m *Manager) SetSession(w http.ResponseWriter, userID int, login string) error {
	token, err := m.GenerateToken(userID, login)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireUser перенаправляет анонимного пользователя на страницу входа,
// сохраняя исходный путь в параметре next.
func (m *Manager) RequireUser(signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := m.CurrentUser(r)
			if !ok {
				target := signInPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Middleware проверяет JWT токен API-запроса и добавляет данные пользователя в контекст
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			writeUnauthorized(w, "Unauthorized: no token provided")
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			message := "Unauthorized: invalid token"
			if errors.Is(err, ErrExpiredToken) {
				message = "Unauthorized: token has expired"
			}
			writeUnauthorized(w, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
