package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signer(now time.Time) Signer {
	return Signer{
		Issuer:     "academy-admin",
		Key:        []byte("test-key"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        func() time.Time { return now },
	}
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	s := signer(now)
	pair, err := s.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	claims, err := s.Parse(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = s.Parse(pair.RefreshToken, KindAccess)
	assert.ErrorIs(t, err, ErrWrongTokenKind)

	other := s
	other.Issuer = "someone-else"
	_, err = other.Parse(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongKey := s
	wrongKey.Key = []byte("nope")
	_, err = wrongKey.Parse(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := signer(now.Add(time.Hour))
	_, err = later.Parse(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	fresh, err := later.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	_, err = later.Parse(fresh.AccessToken, KindAccess)
	assert.NoError(t, err)
}

func TestAdminVerify(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := Admin{User: "admin", PasswordHash: h}

	assert.True(t, a.Verify("admin", "s3cret"))
	assert.False(t, a.Verify("admin", "wrong"))
	assert.False(t, a.Verify("root", "s3cret"))
	assert.False(t, Admin{User: "admin"}.Verify("admin", ""))
}

func TestAdminAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := signer(time.Now())
	r := gin.New()
	r.GET("/x", AdminAuth(s), func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(Claims)
		c.String(http.StatusOK, claims.Subject)
	})

	admin, err := s.Issue("admin", RoleAdmin)
	require.NoError(t, err)
	viewer, err := s.Issue("bob", "viewer")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + admin.RefreshToken, http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer.AccessToken, http.StatusForbidden},
		{"ok", "bearer " + admin.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
