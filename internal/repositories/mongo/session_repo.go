package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.VoiceSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceSession, error)
	SetTurnCount(ctx context.Context, sessionID string, turns int) error
	Finish(ctx context.Context, sessionID string, sum models.SessionSummary, endedAt time.Time, durationSeconds int64) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("voice_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.VoiceSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceSession, error) {
	var s models.VoiceSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) SetTurnCount(ctx context.Context, sessionID string, turns int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"turn_count": turns}},
	)
	return err
}

func (r *sessionRepo) Finish(ctx context.Context, sessionID string, sum models.SessionSummary, endedAt time.Time, durationSeconds int64) error {
	_, err := r.col.UpdateOne(ctx,
		// only the first terminal transition is recorded
		bson.M{"session_id": sessionID, "status": models.SessionActive},
		bson.M{"$set": bson.M{
			"status":           sum.Status,
			"end_reason":       sum.Reason,
			"turn_count":       sum.TurnCount,
			"accepted":         sum.Accepted,
			"missing":          sum.Missing,
			"final_confidence": sum.FinalConfidence,
			"partial":          sum.Partial,
			"ended_at":         endedAt.UTC(),
			"duration_seconds": durationSeconds,
		}},
	)
	return err
}
