package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/voiceintake/internal/models"
	pgrepo "github.com/yoockh/voiceintake/internal/repositories/postgres"
	"github.com/yoockh/voiceintake/internal/utils"
	"gorm.io/datatypes"
)

// RecordSink receives the record of every completed session.
type RecordSink interface {
	Submit(ctx context.Context, rec *models.VoiceRecord) error
}

type RecordService interface {
	RecordSink
	Save(ctx context.Context, rec *models.VoiceRecord) error
	Get(ctx context.Context, id string) (*models.VoiceRecord, error)
	GetBySession(ctx context.Context, sessionID string) (*models.VoiceRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.VoiceRecord, error)
}

type recordService struct {
	records pgrepo.RecordRepository
}

func NewRecordService(records pgrepo.RecordRepository) RecordService {
	return &recordService{records: records}
}

// BuildVoiceRecord snapshots a finished session record.
func BuildVoiceRecord(rec models.SessionRecord, locale string, partial bool) *models.VoiceRecord {
	scores, _ := json.Marshal(rec.Scores)
	missing := models.FieldStrings(rec.Missing())
	return &models.VoiceRecord{
		ID:          uuid.NewString(),
		SessionID:   rec.SessionID,
		GivenName:   rec.Accepted[models.FieldGivenName],
		Surname:     rec.Accepted[models.FieldSurname],
		Gender:      rec.Accepted[models.FieldGender],
		Phone:       rec.Accepted[models.FieldPhone],
		Plate:       rec.Accepted[models.FieldPlate],
		Missing:     missing,
		Partial:     partial,
		Confidence:  rec.FinalConfidence(),
		Turns:       rec.TurnCount,
		Locale:      locale,
		Scores:      datatypes.JSON(scores),
		CompletedAt: time.Now().UTC(),
	}
}

func (s *recordService) Submit(ctx context.Context, rec *models.VoiceRecord) error {
	return s.Save(ctx, rec)
}

func (s *recordService) Save(ctx context.Context, rec *models.VoiceRecord) error {
	const op = "RecordService.Save"

	if rec == nil || rec.SessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "record.session_id is required", nil)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save voice record", err)
	}
	return nil
}

func (s *recordService) Get(ctx context.Context, id string) (*models.VoiceRecord, error) {
	const op = "RecordService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "record not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get record", err)
	}
	return rec, nil
}

func (s *recordService) GetBySession(ctx context.Context, sessionID string) (*models.VoiceRecord, error) {
	const op = "RecordService.GetBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rec, err := s.records.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "record not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get record", err)
	}
	return rec, nil
}

func (s *recordService) ListRecent(ctx context.Context, limit int) ([]models.VoiceRecord, error) {
	const op = "RecordService.ListRecent"

	rows, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list records", err)
	}
	return rows, nil
}
