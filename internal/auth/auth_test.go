package auth

import (
	"crypto/sha512"
	"fmt"
	"testing"
	"time"

	"github.com/sol1corejz/scoring-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckAuth(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	adminToken := fmt.Sprintf("%x", sha512.Sum512([]byte("2024030514"+"42")))
	userToken := fmt.Sprintf("%x", sha512.Sum512([]byte("horns&hoofs"+"h&f"+"Otus")))

	tests := []struct {
		name string
		req  models.MethodRequest
		want bool
	}{
		{
			name: "admin with current hour token",
			req:  models.MethodRequest{Login: "admin", Token: adminToken},
			want: true,
		},
		{
			name: "admin with previous hour token",
			req:  models.MethodRequest{Login: "admin", Token: AdminToken(now.Add(-time.Hour))},
			want: false,
		},
		{
			name: "admin with user token",
			req:  models.MethodRequest{Account: "horns&hoofs", Login: "admin", Token: UserToken("horns&hoofs", "admin")},
			want: false,
		},
		{
			name: "user",
			req:  models.MethodRequest{Account: "horns&hoofs", Login: "h&f", Token: userToken},
			want: true,
		},
		{
			name: "user with wrong account",
			req:  models.MethodRequest{Account: "other", Login: "h&f", Token: userToken},
			want: false,
		},
		{
			name: "empty token",
			req:  models.MethodRequest{Account: "horns&hoofs", Login: "h&f"},
			want: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, CheckAuth(&test.req, now))
		})
	}
}

func TestTokens(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 59, 59, 0, time.Local)
	assert.Equal(t, AdminToken(now), AdminToken(now.Add(-59*time.Minute)))
	assert.Len(t, UserToken("a", "b"), 128)
}
