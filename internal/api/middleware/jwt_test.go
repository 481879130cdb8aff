package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newAuthRouter(cfg JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(cfg))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": RoleOf(c)})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestJWTAuth(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	cfg := JWTConfig{Secret: testSecret, Issuer: "voiceintake", Audience: "operators"}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage", "/me", "Bearer abc", http.StatusUnauthorized},
		{
			"valid",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-1", "iss": "voiceintake", "aud": "operators", "exp": exp}),
			http.StatusOK,
		},
		{
			"wrong secret",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "op-1", "iss": "voiceintake", "aud": "operators", "exp": exp}),
			http.StatusUnauthorized,
		},
		{
			"wrong issuer",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-1", "iss": "someone", "aud": "operators", "exp": exp}),
			http.StatusUnauthorized,
		},
		{
			"wrong audience",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-1", "iss": "voiceintake", "aud": "public", "exp": exp}),
			http.StatusUnauthorized,
		},
		{
			"expired",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-1", "iss": "voiceintake", "aud": "operators", "exp": time.Now().Add(-time.Hour).Unix()}),
			http.StatusUnauthorized,
		},
		{
			"missing subject",
			"/me",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"iss": "voiceintake", "aud": "operators", "exp": exp}),
			http.StatusUnauthorized,
		},
		{
			"operator on admin route",
			"/admin",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-1", "iss": "voiceintake", "aud": "operators", "exp": exp}),
			http.StatusForbidden,
		},
		{
			"admin on admin route",
			"/admin",
			"Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op-2", "iss": "voiceintake", "aud": "operators", "exp": exp, "app_metadata": map[string]any{"role": "admin"}}),
			http.StatusNoContent,
		},
	}

	r := newAuthRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestJWTAuthWithoutSecret(t *testing.T) {
	r := newAuthRouter(JWTConfig{})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
