package models

import "strings"

// User - учетная запись; Password хранит bcrypt-хеш и наружу не отдается
type User struct {
	ID       int    `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"`
}

// Credentials - логин и пароль из JSON-запроса или HTML-формы
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Normalize обрезает пробелы вокруг логина и сообщает, заполнены ли оба поля
func (c *Credentials) Normalize() bool {
	c.Login = strings.TrimSpace(c.Login)
	return c.Login != "" && strings.TrimSpace(c.Password) != ""
}

type (
	LoginRequest    = Credentials
	RegisterRequest = Credentials
)

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type TokenInfoResponse struct {
	ExpirationMinutes string `json:"expirationMinutes"`
}
