package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/voiceintake/internal/api/handlers"
	"github.com/yoockh/voiceintake/internal/api/middleware"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Deps{
		Voice:  &handlers.VoiceWSHandler{},
		Record: handlers.NewRecordHandler(nil),
		JWT:    middleware.JWTConfig{Secret: "s"},
	})

	tests := []struct {
		path string
		want int
	}{
		{"/ping", http.StatusOK},
		{"/records", http.StatusUnauthorized},
		{"/records/r1", http.StatusUnauthorized},
		{"/sessions/s1", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}
