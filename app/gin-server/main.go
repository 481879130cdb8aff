package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/voiceintake/config"
	"github.com/yoockh/voiceintake/internal/api/handlers"
	"github.com/yoockh/voiceintake/internal/api/middleware"
	"github.com/yoockh/voiceintake/internal/api/routes"
	"github.com/yoockh/voiceintake/internal/cache"
	"github.com/yoockh/voiceintake/internal/extract"
	"github.com/yoockh/voiceintake/internal/intake"
	"github.com/yoockh/voiceintake/internal/logger"
	"github.com/yoockh/voiceintake/internal/providers/audio"
	"github.com/yoockh/voiceintake/internal/providers/llm"
	"github.com/yoockh/voiceintake/internal/providers/stt"
	mongorepo "github.com/yoockh/voiceintake/internal/repositories/mongo"
	pgrepo "github.com/yoockh/voiceintake/internal/repositories/postgres"
	"github.com/yoockh/voiceintake/internal/services"
	"github.com/yoockh/voiceintake/internal/storage"
	"github.com/yoockh/voiceintake/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Speech-to-text
	speech, err := stt.NewGoogleSpeech(ctx, cfg.STTAlternatives...)
	if err != nil {
		log.WithError(err).Fatal("Google Speech init error")
	}
	defer speech.Close()

	var transcoder intake.Transcoder
	if cfg.TranscodeCommand != "" {
		ff, err := audio.NewFFmpeg(cfg.TranscodeCommand, cfg.TranscodeTimeout)
		if err != nil {
			log.WithError(err).Fatal("transcoder init error")
		}
		transcoder = ff
		speech.WithLinear16(16000)
	}

	// LLM
	gemini, err := llm.NewVertexGemini(ctx, cfg.GCPProject, cfg.GCPLocation, cfg.VertexModel)
	if err != nil {
		log.WithError(err).Fatal("Vertex AI init error")
	}
	defer gemini.Close()

	// Redis: extraction cache, session events, record queue
	var (
		rdb       *redis.Client
		extractC  cache.Cache
		events    services.EventPublisher
		recordSnk services.RecordSink
	)
	if cfg.RedisAddr != "" {
		rdb, err = config.InitRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("Redis init error")
		}
		defer rdb.Close()
		extractC = cache.NewRedisCache(rdb, cfg.CachePrefix)
		events = services.NewRedisEventPublisher(rdb)
		log.Info("Redis connected")
	}

	// MongoDB: session and turn audit
	var (
		sessionSvc services.SessionService
		turnSvc    services.TurnLogService
	)
	if cfg.MongoURI != "" {
		mc, err := config.InitMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("MongoDB init error")
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mc.Disconnect(dctx)
		}()
		db := mc.Database(cfg.MongoDB)
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			log.WithError(err).Fatal("MongoDB index error")
		}
		sessionSvc = services.NewSessionService(mongorepo.NewSessionRepo(db))
		turnSvc = services.NewTurnLogService(mongorepo.NewTurnRepo(db), cfg.TurnLogTTL)
		log.Info("MongoDB connected")
	}

	// PostgreSQL: completed records
	var recordSvc services.RecordService
	if cfg.PostgresURI != "" {
		gdb, err := config.InitPostgres(cfg.PostgresURI, cfg.PostgresAutoMigrate)
		if err != nil {
			log.WithError(err).Fatal("PostgreSQL init error")
		}
		recordSvc = services.NewRecordService(pgrepo.NewRecordRepo(gdb))
		recordSnk = recordSvc
		log.Info("PostgreSQL connected")

		if rdb != nil {
			recordSnk = &workers.RecordStreamSink{Redis: rdb, Stream: cfg.RecordStream}
			pool := &workers.RecordWorkerPool{
				Redis:      rdb,
				Records:    recordSvc,
				NumWorkers: cfg.RecordWorkers,
				Logger:     log,
				Stream:     cfg.RecordStream,
				Group:      cfg.RecordGroup,
			}
			if err := pool.Start(ctx); err != nil {
				log.WithError(err).Fatal("record worker init error")
			}
		}
	}

	// GCS: audio archive
	var gcs *storage.GCSUploader
	if cfg.AudioBucket != "" {
		gcs, err = storage.NewGCSUploader(ctx, cfg.AudioBucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer gcs.Close()
	}

	extractor := extract.NewComposite(log,
		extract.PhonePatternSource{},
		extract.PlatePatternSource{},
		extract.GenderKeywordSource{},
		extract.NewCachedSource(extract.NewLLMSource(gemini), extractC, cfg.ExtractCacheTTL, log),
	)

	controller, err := intake.NewController(intake.Options{
		STT:        speech,
		Transcoder: transcoder,
		Extractor:  extractor,
		Policy:     intake.Policy{Threshold: cfg.AcceptThreshold, FieldThresholds: cfg.FieldThresholds},
		Locale:     intake.LocaleFor(cfg.Locale),
		Language:   cfg.STTLanguage,
		MaxTurns:   cfg.MaxTurns,
		Logger:     log,
	})
	if err != nil {
		log.WithError(err).Fatal("controller init error")
	}

	deps := services.VoiceDeps{
		Controller: controller,
		Sessions:   sessionSvc,
		Turns:      turnSvc,
		Records:    recordSnk,
		Events:     events,
		Logger:     log,
	}
	if gcs != nil {
		deps.Audio = gcs
	}
	voice := services.NewVoiceService(deps)

	rd := routes.Deps{
		Voice: handlers.NewVoiceWSHandler(voice, cfg.AllowedOrigins, cfg.TurnTimeout, log),
		JWT: middleware.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
	}
	if sessionSvc != nil {
		var signer storage.Signer
		if gcs != nil {
			signer = gcs
		}
		rd.Session = handlers.NewSessionHandler(sessionSvc, turnSvc, signer, log)
	}
	if recordSvc != nil {
		rd.Record = handlers.NewRecordHandler(recordSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, "/ping"))
	routes.RegisterRoutes(r, rd)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("voice intake listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
}
