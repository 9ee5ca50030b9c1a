package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/sol1corejz/scoring-api/internal/models"
)

const (
	Salt      = "Otus"
	AdminSalt = "42"
)

// adminHourLayout - текущий час в виде YYYYMMDDHH.
const adminHourLayout = "2006010215"

// AdminToken возвращает токен администратора, действующий в течение часа now.
func AdminToken(now time.Time) string {
	return digest(now.Format(adminHourLayout) + AdminSalt)
}

// UserToken возвращает токен пользователя login из аккаунта account.
func UserToken(account, login string) string {
	return digest(account + login + Salt)
}

// CheckAuth сверяет токен запроса с ожидаемым.
func CheckAuth(req *models.MethodRequest, now time.Time) bool {
	var expected string
	if req.IsAdmin() {
		expected = AdminToken(now)
	} else {
		expected = UserToken(req.Account, req.Login)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(req.Token)) == 1
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
