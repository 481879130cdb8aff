package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordRepository interface {
	Upsert(ctx context.Context, r *models.VoiceRecord) error
	GetByID(ctx context.Context, id string) (*models.VoiceRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.VoiceRecord, error)
}

type recordRepo struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

// Upsert is keyed by session so a redelivered stream entry does not create a
// second row.
func (r *recordRepo) Upsert(ctx context.Context, rec *models.VoiceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"given_name", "surname", "gender", "phone", "plate", "missing", "partial", "confidence", "turns", "locale", "scores", "completed_at"}),
		}).
		Create(rec).Error
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (*models.VoiceRecord, error) {
	var row models.VoiceRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *recordRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceRecord, error) {
	var row models.VoiceRecord
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *recordRepo) ListRecent(ctx context.Context, limit int) ([]models.VoiceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.VoiceRecord
	err := r.db.WithContext(ctx).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
