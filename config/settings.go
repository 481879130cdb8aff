package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/utils"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	Locale          string
	MaxTurns        int
	AcceptThreshold float64
	FieldThresholds map[models.Field]float64
	TurnTimeout     time.Duration

	STTLanguage      string
	STTAlternatives  []string
	TranscodeCommand string
	TranscodeTimeout time.Duration

	GCPProject  string
	GCPLocation string
	VertexModel string

	MongoURI   string
	MongoDB    string
	TurnLogTTL time.Duration

	PostgresURI         string
	PostgresAutoMigrate bool

	RedisAddr       string
	CachePrefix     string
	ExtractCacheTTL time.Duration
	RecordStream    string
	RecordGroup     string
	RecordWorkers   int

	AudioBucket string

	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AllowedOrigins []string
}

// Load reads Settings from the environment. Call godotenv.Load first to
// pick up a .env file.
func Load() (Settings, error) {
	const op = "config.Load"

	s := Settings{
		Port:      getenv("PORT", "8080"),
		Env:       getenv("GO_ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		Locale:          getenv("LOCALE", "th"),
		FieldThresholds: map[models.Field]float64{},

		STTLanguage:      getenv("STT_LANGUAGE", "th-TH"),
		STTAlternatives:  splitList(getenv("STT_ALT_LANGUAGES", "en-US")),
		TranscodeCommand: os.Getenv("TRANSCODE_COMMAND"),

		GCPProject:  os.Getenv("GCP_PROJECT_ID"),
		GCPLocation: getenv("GCP_LOCATION", "us-central1"),
		VertexModel: getenv("VERTEX_MODEL", "gemini-1.5-flash"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenv("MONGO_DB", "voiceintake"),

		PostgresURI: os.Getenv("POSTGRES_URI"),

		RedisAddr:    firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL"),
		CachePrefix:  getenv("CACHE_PREFIX", "voiceintake:"),
		RecordStream: getenv("RECORD_STREAM", "record:stream"),
		RecordGroup:  getenv("RECORD_GROUP", "record-writers"),

		AudioBucket: os.Getenv("AUDIO_BUCKET"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      os.Getenv("JWT_ISSUER"),
		JWTAudience:    os.Getenv("JWT_AUDIENCE"),
		AllowedOrigins: splitList(os.Getenv("WS_ALLOWED_ORIGINS")),
	}

	var err error
	if s.MaxTurns, err = intEnv("MAX_TURNS", 5); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid MAX_TURNS", err)
	}
	if s.RecordWorkers, err = intEnv("RECORD_WORKERS", 2); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid RECORD_WORKERS", err)
	}
	if s.PostgresAutoMigrate, err = boolEnv("POSTGRES_AUTOMIGRATE", true); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid POSTGRES_AUTOMIGRATE", err)
	}
	if s.TurnTimeout, err = secondsEnv("TURN_TIMEOUT_SECONDS", 60); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid TURN_TIMEOUT_SECONDS", err)
	}
	if s.TranscodeTimeout, err = secondsEnv("TRANSCODE_TIMEOUT_SECONDS", 20); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid TRANSCODE_TIMEOUT_SECONDS", err)
	}
	if s.ExtractCacheTTL, err = secondsEnv("EXTRACT_CACHE_TTL_SECONDS", 600); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid EXTRACT_CACHE_TTL_SECONDS", err)
	}
	ttlHours, err := intEnv("TURN_LOG_TTL_HOURS", 24)
	if err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid TURN_LOG_TTL_HOURS", err)
	}
	s.TurnLogTTL = time.Duration(ttlHours) * time.Hour

	if s.AcceptThreshold, err = thresholdEnv("ACCEPT_THRESHOLD", 0.7); err != nil {
		return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid ACCEPT_THRESHOLD", err)
	}
	for _, f := range models.Fields {
		key := "ACCEPT_THRESHOLD_" + strings.ToUpper(string(f))
		if os.Getenv(key) == "" {
			continue
		}
		t, err := thresholdEnv(key, 0)
		if err != nil {
			return Settings{}, utils.E(utils.CodeInvalidArgument, op, "invalid "+key, err)
		}
		s.FieldThresholds[f] = t
	}

	return s, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func secondsEnv(key string, def int) (time.Duration, error) {
	n, err := intEnv(key, def)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return time.Duration(n) * time.Second, nil
}

func thresholdEnv(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be within [0,1]", key)
	}
	return f, nil
}
