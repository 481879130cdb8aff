package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// STT outcomes of a turn.
const (
	STTDone   = "done"
	STTFailed = "failed"
	STTEmpty  = "empty"
)

// TurnLog is the audit trail of one processed turn.
type TurnLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Attempt   int                `bson:"attempt" json:"attempt"`

	// Object name of the archived audio chunk, when archiving is enabled.
	AudioObject string `bson:"audio_object,omitempty" json:"audio_object,omitempty"`
	AudioBytes  int    `bson:"audio_bytes" json:"audio_bytes"`

	Transcript    string  `bson:"transcript,omitempty" json:"transcript,omitempty"`
	STTStatus     string  `bson:"stt_status" json:"stt_status"` // done|failed|empty
	STTError      string  `bson:"stt_error,omitempty" json:"stt_error,omitempty"`
	STTConfidence float64 `bson:"stt_confidence" json:"stt_confidence"`

	Candidates []Candidate `bson:"candidates,omitempty" json:"candidates,omitempty"`
	Blended    []float64   `bson:"blended,omitempty" json:"blended,omitempty"`
	Accepted   []string    `bson:"accepted,omitempty" json:"accepted,omitempty"`
	Missing    []string    `bson:"missing,omitempty" json:"missing,omitempty"`
	Decision   string      `bson:"decision" json:"decision"` // ASK_AGAIN|COMPLETE
	Confidence float64     `bson:"confidence" json:"confidence"`

	ProcessingTimeMS int64     `bson:"processing_time_ms" json:"processing_time_ms"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
