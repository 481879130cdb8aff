package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// VoiceRecord is a finished session's identification record.
type VoiceRecord struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`

	GivenName string `gorm:"column:given_name;type:text" json:"given_name"`
	Surname   string `gorm:"column:surname;type:text" json:"surname"`
	Gender    string `gorm:"column:gender;type:text" json:"gender"`
	Phone     string `gorm:"column:phone;type:text;index" json:"phone"`
	Plate     string `gorm:"column:plate;type:text;index" json:"plate"`

	Missing    pq.StringArray `gorm:"column:missing;type:text[]" json:"missing"`
	Partial    bool           `gorm:"column:partial" json:"partial"`
	Confidence float64        `gorm:"column:confidence" json:"confidence"`
	Turns      int            `gorm:"column:turns" json:"turns"`
	Locale     string         `gorm:"column:locale;type:text" json:"locale"`

	// Raw blended scores of every candidate considered.
	Scores datatypes.JSON `gorm:"column:scores;type:jsonb" json:"scores"`

	CompletedAt time.Time `gorm:"column:completed_at;type:timestamptz;index" json:"completed_at"`
}

func (VoiceRecord) TableName() string { return "voice_records" }

