package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/intake"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/services"
	"github.com/yoockh/voiceintake/internal/utils"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsIdleTimeout  = 2 * time.Minute
	wsMaxChunk     = 10 << 20
)

// VoiceWSHandler runs one voice session per websocket connection. Clients
// send each recorded utterance as a binary frame and receive JSON text
// frames back.
type VoiceWSHandler struct {
	voice       *services.VoiceService
	upgrader    websocket.Upgrader
	turnTimeout time.Duration
	log         *logrus.Logger
}

// NewVoiceWSHandler allows every origin when allowedOrigins is empty.
func NewVoiceWSHandler(voice *services.VoiceService, allowedOrigins []string, turnTimeout time.Duration, log *logrus.Logger) *VoiceWSHandler {
	if log == nil {
		log = logrus.New()
	}
	allow := map[string]struct{}{}
	for _, o := range allowedOrigins {
		allow[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}
	return &VoiceWSHandler{
		voice:       voice,
		turnTimeout: turnTimeout,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allow) == 0 || origin == "" {
					return true
				}
				_, ok := allow[strings.TrimRight(strings.ToLower(origin), "/")]
				return ok
			},
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.c.WriteJSON(v)
}

func (w *wsConn) close(code int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteTimeout))
}

func (h *VoiceWSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxChunk)

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sess, greeting := h.voice.Open(ctx, c.ClientIP())
	log := h.log.WithField("session_id", sess.ID)
	log.Info("voice session opened")

	if err := wc.writeJSON(greeting); err != nil {
		h.voice.Close(ctx, sess, services.ReasonDisconnect)
		return
	}

	// reader: frames -> chunks; a read error ends the session
	chunks := make(chan []byte)
	go func() {
		defer close(chunks)
		defer cancel()
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		})

		for {
			mt, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

			if mt != websocket.BinaryMessage {
				_ = wc.writeJSON(models.ErrorMessage{
					Type:    models.MsgError,
					Code:    string(utils.CodeInvalidArgument),
					Message: "audio must be sent as a binary frame",
				})
				continue
			}

			select {
			case chunks <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for audio := range chunks {
		resp, err := h.turn(ctx, sess, audio)
		if err != nil {
			log.WithError(err).Warn("voice turn aborted")
			if utils.IsCode(err, utils.CodeTimeout) {
				_ = wc.writeJSON(models.ErrorMessage{Type: models.MsgError, Code: string(utils.CodeTimeout), Message: utils.SafeMessage(err)})
				wc.close(websocket.CloseTryAgainLater, "turn timeout")
			}
			return
		}

		for _, m := range resp.Messages {
			if err := wc.writeJSON(m); err != nil {
				log.WithError(err).Info("client went away")
				h.voice.Close(ctx, sess, services.ReasonDisconnect)
				return
			}
		}

		if resp.Done {
			log.WithField("partial", resp.Report.Decision.Partial).Info("voice session complete")
			wc.close(websocket.CloseNormalClosure, "complete")
			return
		}
	}

	log.Info("voice session disconnected")
	h.voice.Close(ctx, sess, services.ReasonDisconnect)
}

func (h *VoiceWSHandler) turn(ctx context.Context, sess *intake.Session, audio []byte) (services.TurnResponse, error) {
	if h.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.turnTimeout)
		defer cancel()
	}
	return h.voice.HandleAudio(ctx, sess, audio)
}
