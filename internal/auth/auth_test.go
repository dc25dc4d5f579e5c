package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_TokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(7, "alice")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Login)
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = NewManager("two", time.Hour).ValidateToken("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager("", 0)
	assert.Equal(t, DefaultTokenTTL, m.TTL())
	assert.Equal(t, []byte(defaultSecret), m.secret)
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "Bearer", header: "Bearer abc", want: "abc"},
		{name: "cookie", cookie: "xyz", want: "xyz"},
		{name: "заголовок важнее cookie", header: "Bearer abc", cookie: "xyz", want: "abc"},
		{name: "неверный формат", header: "Token abc", want: ""},
		{name: "ничего", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestRequireUser_Redirect(t *testing.T) {
	m := NewManager("secret", time.Hour)
	called := false
	h := m.RequireUser("/sign-in")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/workspaces/42/members?tab=all", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/sign-in?next=%2Fworkspaces%2F42%2Fmembers%3Ftab%3Dall", w.Header().Get("Location"))
}

func TestRequireUser_WithSession(t *testing.T) {
	m := NewManager("secret", time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSession(rec, 3, "bob"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	var got *Claims
	h := m.RequireUser("/sign-in")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/workspaces", nil)
	r.AddCookie(cookies[0])
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.NotNil(t, got)
	assert.Equal(t, "bob", got.Login)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateToken(5, "carol")
	require.NoError(t, err)

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expiredToken, err := expired.GenerateToken(5, "carol")
	require.NoError(t, err)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, 5, id)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "валидный токен", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "без токена", wantStatus: http.StatusUnauthorized, wantError: "Unauthorized: no token provided"},
		{name: "истекший токен", header: "Bearer " + expiredToken, wantStatus: http.StatusUnauthorized, wantError: "Unauthorized: token has expired"},
		{name: "мусор", header: "Bearer nonsense", wantStatus: http.StatusUnauthorized, wantError: "Unauthorized: invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
