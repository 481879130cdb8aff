package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/voiceintake/internal/models"
	mongorepo "github.com/yoockh/voiceintake/internal/repositories/mongo"
	"github.com/yoockh/voiceintake/internal/utils"
)

// SessionService keeps the operator audit view of voice sessions.
type SessionService interface {
	Start(ctx context.Context, sessionID, locale string, maxTurns int, remoteAddr string) (*models.VoiceSession, error)
	Get(ctx context.Context, sessionID string) (*models.VoiceSession, error)
	SetTurnCount(ctx context.Context, sessionID string, turns int) error
	Finish(ctx context.Context, sessionID string, sum models.SessionSummary) error
}

type sessionService struct {
	sessions mongorepo.SessionRepository
}

func NewSessionService(sessions mongorepo.SessionRepository) SessionService {
	return &sessionService{sessions: sessions}
}

func (s *sessionService) Start(ctx context.Context, sessionID, locale string, maxTurns int, remoteAddr string) (*models.VoiceSession, error) {
	const op = "SessionService.Start"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	session := &models.VoiceSession{
		SessionID:  sessionID,
		Locale:     locale,
		Status:     models.SessionActive,
		RemoteAddr: remoteAddr,
		MaxTurns:   maxTurns,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.VoiceSession, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	out, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func (s *sessionService) SetTurnCount(ctx context.Context, sessionID string, turns int) error {
	const op = "SessionService.SetTurnCount"

	if sessionID == "" || turns < 0 {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required and turns must be >= 0", nil)
	}
	if err := s.sessions.SetTurnCount(ctx, sessionID, turns); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update turn count", err)
	}
	return nil
}

func (s *sessionService) Finish(ctx context.Context, sessionID string, sum models.SessionSummary) error {
	const op = "SessionService.Finish"

	if sessionID == "" || sum.Status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id and status are required", nil)
	}

	ss, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	dur := int64(now.Sub(ss.CreatedAt).Seconds())
	if dur < 0 {
		dur = 0
	}

	if err := s.sessions.Finish(ctx, sessionID, sum, now, dur); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to finish session", err)
	}
	return nil
}
