package services

import (
	"context"
	"time"

	"github.com/yoockh/voiceintake/internal/models"
	mongorepo "github.com/yoockh/voiceintake/internal/repositories/mongo"
	"github.com/yoockh/voiceintake/internal/utils"
)

// TurnLogService stores one audit entry per processed turn.
type TurnLogService interface {
	Record(ctx context.Context, t *models.TurnLog) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error)
}

type turnLogService struct {
	turns mongorepo.TurnRepository
	ttl   time.Duration
}

func NewTurnLogService(turns mongorepo.TurnRepository, ttl time.Duration) TurnLogService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &turnLogService{turns: turns, ttl: ttl}
}

func (s *turnLogService) Record(ctx context.Context, t *models.TurnLog) error {
	const op = "TurnLogService.Record"

	if t == nil || t.SessionID == "" || t.Attempt <= 0 {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required and attempt must be > 0", nil)
	}

	now := time.Now().UTC()
	t.Timestamp = now
	t.ExpiresAt = now.Add(s.ttl)

	if err := s.turns.Insert(ctx, t); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert turn log", err)
	}
	return nil
}

func (s *turnLogService) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error) {
	const op = "TurnLogService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.turns.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list turn logs", err)
	}
	return out, nil
}
