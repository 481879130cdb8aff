package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/voiceintake/internal/api/handlers"
	"github.com/yoockh/voiceintake/internal/api/middleware"
)

// Deps carries the handlers. Session and Record are nil when their stores
// are not configured; their routes are then not registered.
type Deps struct {
	Voice   *handlers.VoiceWSHandler
	Session *handlers.SessionHandler
	Record  *handlers.RecordHandler
	JWT     middleware.JWTConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// End users are anonymous; the session id is issued on connect.
	r.GET("/ws/voice", d.Voice.Serve)

	if d.Session == nil && d.Record == nil {
		return
	}

	// Operator routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT))

	if d.Session != nil {
		auth.GET("/sessions/:session_id", d.Session.Get)
		auth.GET("/sessions/:session_id/turns", d.Session.ListTurns)
	}
	if d.Record != nil {
		auth.GET("/records", middleware.RequireAdmin(), d.Record.List)
		auth.GET("/records/:id", d.Record.Get)
	}
}
