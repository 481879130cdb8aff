package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session statuses stored in the audit collection.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAborted   = "aborted"
)

// VoiceSession is the operator audit view of one voice session. It is
// written for inspection only and never read back into a live session.
type VoiceSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4

	Locale     string `bson:"locale" json:"locale"`         // th|en
	Status     string `bson:"status" json:"status"`         // active|completed|aborted
	RemoteAddr string `bson:"remote_addr" json:"remote_addr"`

	TurnCount int `bson:"turn_count" json:"turn_count"`
	MaxTurns  int `bson:"max_turns" json:"max_turns"`

	Accepted        map[string]string `bson:"accepted,omitempty" json:"accepted,omitempty"`
	Missing         []string          `bson:"missing,omitempty" json:"missing,omitempty"`
	FinalConfidence float64           `bson:"final_confidence" json:"final_confidence"`
	Partial         bool              `bson:"partial" json:"partial"`
	EndReason       string            `bson:"end_reason,omitempty" json:"end_reason,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	DurationSeconds int64 `bson:"duration_seconds" json:"duration_seconds"`
}

// SessionSummary is what a finished session reports to the audit store.
type SessionSummary struct {
	Status          string
	Reason          string
	TurnCount       int
	Accepted        map[string]string
	Missing         []string
	FinalConfidence float64
	Partial         bool
}

// AcceptedStrings converts an accepted map to string keys for storage.
func AcceptedStrings(accepted map[Field]string) map[string]string {
	out := make(map[string]string, len(accepted))
	for k, v := range accepted {
		out[string(k)] = v
	}
	return out
}
