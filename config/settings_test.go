package config

import (
	"strings"
	"testing"
	"time"

	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOCALE", "MAX_TURNS", "ACCEPT_THRESHOLD", "TURN_TIMEOUT_SECONDS",
		"STT_LANGUAGE", "STT_ALT_LANGUAGES", "REDIS_ADDR", "REDIS_URI", "REDIS_URL",
		"TURN_LOG_TTL_HOURS", "POSTGRES_AUTOMIGRATE", "WS_ALLOWED_ORIGINS",
		"RECORD_WORKERS", "EXTRACT_CACHE_TTL_SECONDS", "TRANSCODE_TIMEOUT_SECONDS",
	} {
		t.Setenv(k, "")
	}
	for _, f := range models.Fields {
		t.Setenv("ACCEPT_THRESHOLD_"+strings.ToUpper(string(f)), "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Port != "8080" || s.Locale != "th" || s.MaxTurns != 5 || s.AcceptThreshold != 0.7 {
		t.Fatalf("defaults = %+v", s)
	}
	if s.TurnTimeout != 60*time.Second || s.TurnLogTTL != 24*time.Hour || s.ExtractCacheTTL != 10*time.Minute {
		t.Fatalf("durations = %v %v %v", s.TurnTimeout, s.TurnLogTTL, s.ExtractCacheTTL)
	}
	if s.STTLanguage != "th-TH" || len(s.STTAlternatives) != 1 || s.STTAlternatives[0] != "en-US" {
		t.Fatalf("stt = %q %v", s.STTLanguage, s.STTAlternatives)
	}
	if !s.PostgresAutoMigrate || s.RecordWorkers != 2 || len(s.FieldThresholds) != 0 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TURNS", "3")
	t.Setenv("LOCALE", "en")
	t.Setenv("ACCEPT_THRESHOLD", "0.8")
	t.Setenv("ACCEPT_THRESHOLD_PHONE", "0.95")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.MaxTurns != 3 || s.Locale != "en" || s.AcceptThreshold != 0.8 {
		t.Fatalf("settings = %+v", s)
	}
	if s.FieldThresholds[models.FieldPhone] != 0.95 || len(s.FieldThresholds) != 1 {
		t.Fatalf("field thresholds = %v", s.FieldThresholds)
	}
	if s.RedisAddr != "redis://localhost:6379/0" {
		t.Fatalf("redis = %q", s.RedisAddr)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", s.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct{ key, val string }{
		{"MAX_TURNS", "five"},
		{"ACCEPT_THRESHOLD", "1.2"},
		{"ACCEPT_THRESHOLD", "-0.1"},
		{"ACCEPT_THRESHOLD_SURNAME", "abc"},
		{"TURN_TIMEOUT_SECONDS", "-5"},
		{"POSTGRES_AUTOMIGRATE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}
