package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/voiceintake/internal/logger"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/utils"
)

type stubSessions struct{ sess map[string]*models.VoiceSession }

func (s stubSessions) Start(context.Context, string, string, int, string) (*models.VoiceSession, error) {
	return nil, nil
}

func (s stubSessions) Get(_ context.Context, id string) (*models.VoiceSession, error) {
	if v, ok := s.sess[id]; ok {
		return v, nil
	}
	return nil, utils.E(utils.CodeNotFound, "stub", "session not found", utils.ErrNotFound)
}

func (s stubSessions) SetTurnCount(context.Context, string, int) error { return nil }

func (s stubSessions) Finish(context.Context, string, models.SessionSummary) error { return nil }

type stubTurns struct {
	logs      []models.TurnLog
	lastLimit int64
}

func (s *stubTurns) Record(context.Context, *models.TurnLog) error { return nil }

func (s *stubTurns) ListBySession(_ context.Context, _ string, limit int64) ([]models.TurnLog, error) {
	s.lastLimit = limit
	return s.logs, nil
}

type stubSigner struct{}

func (stubSigner) SignedGetURL(_ context.Context, object string, _ time.Duration) (string, error) {
	return "https://signed.example/" + object, nil
}

type stubRecords struct {
	byID      map[string]*models.VoiceRecord
	lastLimit int
}

func (s *stubRecords) Submit(context.Context, *models.VoiceRecord) error { return nil }
func (s *stubRecords) Save(context.Context, *models.VoiceRecord) error   { return nil }

func (s *stubRecords) Get(_ context.Context, id string) (*models.VoiceRecord, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, utils.E(utils.CodeNotFound, "stub", "record not found", nil)
}

func (s *stubRecords) GetBySession(_ context.Context, sessionID string) (*models.VoiceRecord, error) {
	for _, r := range s.byID {
		if r.SessionID == sessionID {
			return r, nil
		}
	}
	return nil, utils.E(utils.CodeNotFound, "stub", "record not found", nil)
}

func (s *stubRecords) ListRecent(_ context.Context, limit int) ([]models.VoiceRecord, error) {
	s.lastLimit = limit
	return nil, nil
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSessionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	turns := &stubTurns{logs: []models.TurnLog{
		{SessionID: "s1", Attempt: 1, AudioObject: "audio/s1/1.webm"},
		{SessionID: "s1", Attempt: 2},
	}}
	h := NewSessionHandler(
		stubSessions{sess: map[string]*models.VoiceSession{"s1": {SessionID: "s1", Status: models.SessionCompleted}}},
		turns, stubSigner{}, logger.Discard(),
	)
	r := gin.New()
	r.GET("/sessions/:session_id", h.Get)
	r.GET("/sessions/:session_id/turns", h.ListTurns)

	if w := serve(r, "/sessions/s1"); w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}

	w := serve(r, "/sessions/nope")
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusNotFound || apiErr.Code != utils.CodeNotFound {
		t.Fatalf("missing = %d %+v", w.Code, apiErr)
	}

	w = serve(r, "/sessions/s1/turns?limit=500")
	if w.Code != http.StatusOK || turns.lastLimit != 200 {
		t.Fatalf("turns = %d limit %d", w.Code, turns.lastLimit)
	}
	var out ListTurnsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Turns) != 2 || out.Turns[0].AudioURL != "https://signed.example/audio/s1/1.webm" || out.Turns[1].AudioURL != "" {
		t.Fatalf("turns = %+v", out.Turns)
	}

	if w := serve(r, "/sessions/s1/turns?limit=abc"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", w.Code)
	}
}

func TestRecordHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recs := &stubRecords{byID: map[string]*models.VoiceRecord{
		"r1": {ID: "r1", SessionID: "s1", GivenName: "Somchai"},
	}}
	h := NewRecordHandler(recs)
	r := gin.New()
	r.GET("/records", h.List)
	r.GET("/records/:id", h.Get)

	w := serve(r, "/records")
	if w.Code != http.StatusOK || recs.lastLimit != 20 {
		t.Fatalf("list = %d limit %d", w.Code, recs.lastLimit)
	}
	var list ListRecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Records == nil {
		t.Fatal("records must encode as an empty list")
	}

	if w := serve(r, "/records/r1"); w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	if w := serve(r, "/records/s1?by=session"); w.Code != http.StatusOK {
		t.Fatalf("get by session = %d", w.Code)
	}
	if w := serve(r, "/records/zzz"); w.Code != http.StatusNotFound {
		t.Fatalf("missing = %d", w.Code)
	}
}
