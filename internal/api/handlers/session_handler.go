package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/services"
	"github.com/yoockh/voiceintake/internal/storage"
)

const audioURLTTL = 15 * time.Minute

// SessionHandler serves the operator audit view of voice sessions.
type SessionHandler struct {
	sessions services.SessionService
	turns    services.TurnLogService
	signer   storage.Signer // optional
	log      *logrus.Logger
}

func NewSessionHandler(sessions services.SessionService, turns services.TurnLogService, signer storage.Signer, log *logrus.Logger) *SessionHandler {
	if log == nil {
		log = logrus.New()
	}
	return &SessionHandler{sessions: sessions, turns: turns, signer: signer, log: log}
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type TurnView struct {
	models.TurnLog
	AudioURL string `json:"audio_url,omitempty"`
}

type ListTurnsResponse struct {
	SessionID string     `json:"session_id"`
	Turns     []TurnView `json:"turns"`
}

func (h *SessionHandler) ListTurns(c *gin.Context) {
	limit, ok := queryLimit(c, 50, 200)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	logs, err := h.turns.ListBySession(c.Request.Context(), sessionID, int64(limit))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]TurnView, 0, len(logs))
	for _, t := range logs {
		v := TurnView{TurnLog: t}
		if h.signer != nil && t.AudioObject != "" {
			url, err := h.signer.SignedGetURL(c.Request.Context(), t.AudioObject, audioURLTTL)
			if err != nil {
				h.log.WithError(err).WithField("object", t.AudioObject).Warn("sign audio url failed")
			} else {
				v.AudioURL = url
			}
		}
		out = append(out, v)
	}

	c.JSON(http.StatusOK, ListTurnsResponse{SessionID: sessionID, Turns: out})
}
