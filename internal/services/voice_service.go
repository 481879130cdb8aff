package services

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/intake"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/storage"
	"github.com/yoockh/voiceintake/internal/utils"
)

// Session end reasons recorded in the audit store.
const (
	ReasonCompleted  = "completed"
	ReasonBudget     = "turn_budget_exhausted"
	ReasonDisconnect = "disconnect"
	ReasonTimeout    = "turn_timeout"
	ReasonCanceled   = "canceled"
)

const auditTimeout = 5 * time.Second

// VoiceDeps wires the voice service. Everything except Controller is
// optional; a nil sink is skipped.
type VoiceDeps struct {
	Controller *intake.Controller

	Sessions SessionService
	Turns    TurnLogService
	Records  RecordSink
	Events   EventPublisher
	Audio    storage.Uploader

	Logger *logrus.Logger
}

// VoiceService runs voice sessions on top of the intake controller and
// mirrors what happens into the audit sinks. Sink failures are logged and
// never change the outcome of a turn.
type VoiceService struct {
	VoiceDeps
}

func NewVoiceService(d VoiceDeps) *VoiceService {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &VoiceService{VoiceDeps: d}
}

// TurnResponse is what the transport sends back for one chunk, in order.
type TurnResponse struct {
	Report   intake.TurnReport
	Messages []any
	Done     bool
}

// Open starts a new session and returns it with its greeting message.
func (s *VoiceService) Open(ctx context.Context, remoteAddr string) (*intake.Session, models.SystemMessage) {
	sess := s.Controller.NewSession(uuid.NewString())
	loc := s.Controller.Locale()

	if s.Sessions != nil {
		actx, cancel := auditContext(ctx)
		rec := sess.Record()
		if _, err := s.Sessions.Start(actx, sess.ID, loc.Code, rec.MaxTurns, remoteAddr); err != nil {
			s.log(sess).WithError(err).Warn("session audit start failed")
		}
		cancel()
	}

	greeting := models.SystemMessage{Type: models.MsgSystem, SessionID: sess.ID, Message: loc.Greeting}
	s.publish(ctx, sess, greeting)
	return sess, greeting
}

// HandleAudio processes one audio chunk for sess.
func (s *VoiceService) HandleAudio(ctx context.Context, sess *intake.Session, audio []byte) (TurnResponse, error) {
	const op = "VoiceService.HandleAudio"

	start := time.Now()
	rep, err := s.Controller.ProcessTurn(ctx, sess, audio)
	if err != nil {
		if ctx.Err() != nil {
			reason, msg := ReasonCanceled, "turn canceled"
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				reason, msg = ReasonTimeout, "turn took too long, please reconnect"
			}
			sess.Abort()
			s.aborted(ctx, sess, reason)
			return TurnResponse{}, utils.E(utils.CodeOf(ctx.Err()), op, msg, err)
		}
		return TurnResponse{}, utils.E(utils.CodeConflict, op, "session does not accept audio", err)
	}

	rec := sess.Record()
	resp := TurnResponse{
		Report:   rep,
		Messages: Messages(rep, rec),
		Done:     rep.Decision.Kind == intake.DecisionComplete,
	}

	s.audit(ctx, sess, rep, rec, audio, time.Since(start))
	for _, m := range resp.Messages {
		s.publish(ctx, sess, m)
	}
	return resp, nil
}

// Close ends a session that did not complete. It is safe to call on a
// completed session.
func (s *VoiceService) Close(ctx context.Context, sess *intake.Session, reason string) {
	if sess.State().Terminal() {
		return
	}
	sess.Abort()
	s.aborted(ctx, sess, reason)
}

func (s *VoiceService) aborted(ctx context.Context, sess *intake.Session, reason string) {
	s.log(sess).WithField("reason", reason).Info("session aborted")

	if s.Sessions == nil {
		return
	}
	rec := sess.Record()
	actx, cancel := auditContext(ctx)
	defer cancel()
	if err := s.Sessions.Finish(actx, sess.ID, summaryOf(rec, models.SessionAborted, reason, false)); err != nil {
		s.log(sess).WithError(err).Warn("session audit finish failed")
	}
}

// Messages renders a turn report as transport messages.
func Messages(rep intake.TurnReport, rec models.SessionRecord) []any {
	out := []any{models.STTResultMessage{
		Type:          models.MsgSTTResult,
		Attempt:       rep.STT.Attempt,
		Transcript:    rep.STT.Transcript,
		STTConfidence: rep.STT.STTConfidence,
	}}

	d := rep.Decision
	missing := models.FieldStrings(d.Missing)
	if d.Kind == intake.DecisionAskAgain {
		return append(out, models.AskAgainMessage{
			Type:       models.MsgAskAgain,
			Prompt:     d.Prompt,
			Missing:    missing,
			Confidence: d.Confidence,
		})
	}
	return append(out, models.CompleteMessage{
		Type:       models.MsgComplete,
		Message:    d.Summary,
		Confidence: d.Confidence,
		Partial:    d.Partial,
		Missing:    missing,
		Fields:     models.AcceptedStrings(rec.Accepted),
	})
}

func (s *VoiceService) audit(ctx context.Context, sess *intake.Session, rep intake.TurnReport, rec models.SessionRecord, audio []byte, took time.Duration) {
	actx, cancel := auditContext(ctx)
	defer cancel()
	log := s.log(sess).WithField("attempt", rep.STT.Attempt)

	var object string
	if s.Audio != nil && len(audio) > 0 {
		name := storage.AudioObjectName(sess.ID, rep.STT.Attempt)
		stored, err := s.Audio.Upload(actx, name, "audio/webm", bytes.NewReader(audio))
		if err != nil {
			log.WithError(err).Warn("audio archive failed")
		} else {
			object = stored
		}
	}

	if s.Turns != nil {
		if err := s.Turns.Record(actx, turnLogOf(sess.ID, rep, object, len(audio), took)); err != nil {
			log.WithError(err).Warn("turn audit failed")
		}
	}

	d := rep.Decision
	if d.Kind != intake.DecisionComplete {
		if s.Sessions != nil {
			if err := s.Sessions.SetTurnCount(actx, sess.ID, rec.TurnCount); err != nil {
				log.WithError(err).Warn("session audit update failed")
			}
		}
		return
	}

	reason := ReasonCompleted
	if d.Partial {
		reason = ReasonBudget
	}
	if s.Sessions != nil {
		if err := s.Sessions.Finish(actx, sess.ID, summaryOf(rec, models.SessionCompleted, reason, d.Partial)); err != nil {
			log.WithError(err).Warn("session audit finish failed")
		}
	}
	if s.Records != nil {
		if err := s.Records.Submit(actx, BuildVoiceRecord(rec, s.Controller.Locale().Code, d.Partial)); err != nil {
			log.WithError(err).Error("record submit failed")
		}
	}
}

func (s *VoiceService) publish(ctx context.Context, sess *intake.Session, event any) {
	if s.Events == nil {
		return
	}
	actx, cancel := auditContext(ctx)
	defer cancel()
	if err := s.Events.Publish(actx, sess.ID, event); err != nil {
		s.log(sess).WithError(err).Debug("event publish failed")
	}
}

func (s *VoiceService) log(sess *intake.Session) *logrus.Entry {
	return s.Logger.WithField("session_id", sess.ID)
}

// auditContext detaches audit writes from the connection so a disconnect
// right after a turn does not lose its audit entry.
func auditContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
}

func summaryOf(rec models.SessionRecord, status, reason string, partial bool) models.SessionSummary {
	return models.SessionSummary{
		Status:          status,
		Reason:          reason,
		TurnCount:       rec.TurnCount,
		Accepted:        models.AcceptedStrings(rec.Accepted),
		Missing:         models.FieldStrings(rec.Missing()),
		FinalConfidence: rec.FinalConfidence(),
		Partial:         partial,
	}
}

func turnLogOf(sessionID string, rep intake.TurnReport, object string, size int, took time.Duration) *models.TurnLog {
	status := models.STTDone
	var sttErr string
	switch {
	case rep.STTErr != nil:
		status = models.STTFailed
		sttErr = rep.STTErr.Error()
	case rep.STT.Transcript == "":
		status = models.STTEmpty
	}

	return &models.TurnLog{
		SessionID:        sessionID,
		Attempt:          rep.STT.Attempt,
		AudioObject:      object,
		AudioBytes:       size,
		Transcript:       rep.STT.Transcript,
		STTStatus:        status,
		STTError:         sttErr,
		STTConfidence:    rep.STT.STTConfidence,
		Candidates:       rep.Candidates,
		Blended:          rep.Decision.Blended,
		Accepted:         models.FieldStrings(rep.Decision.Accepted),
		Missing:          models.FieldStrings(rep.Decision.Missing),
		Decision:         string(rep.Decision.Kind),
		Confidence:       rep.Decision.Confidence,
		ProcessingTimeMS: took.Milliseconds(),
	}
}
