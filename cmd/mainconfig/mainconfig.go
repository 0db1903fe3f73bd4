package mainconfig

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/harborhealth/bookingbot/internal/bookings"
	appconfig "github.com/harborhealth/bookingbot/internal/config"
	"github.com/harborhealth/bookingbot/internal/conversation"
	"github.com/harborhealth/bookingbot/internal/identity"
	"github.com/harborhealth/bookingbot/internal/intent"
	"github.com/harborhealth/bookingbot/internal/nlp"
	"github.com/harborhealth/bookingbot/internal/observability/metrics"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

// Engine bundles the dialogue components so both binaries share the same
// wiring: the terminal client and the HTTP server differ only in transport.
type Engine struct {
	DB         *sql.DB
	Booking    *bookings.Service
	Classifier *intent.Classifier
	Controller *conversation.Controller
	Identity   *identity.Manager
	Metrics    *metrics.ConversationMetrics
	Transcript *conversation.TranscriptStore
	Redis      *redis.Client
}

// LoadEngine builds the full dialogue engine from configuration: corpus,
// similarity index, booking store, and controller. Redis is optional; when
// no address is configured transcripts are simply not kept.
func LoadEngine(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) (*Engine, error) {
	normalizer, err := nlp.NewNormalizer()
	if err != nil {
		return nil, fmt.Errorf("mainconfig: build normalizer: %w", err)
	}

	corpus, err := intent.LoadCorpus(cfg.IntentsPath, cfg.QADatasetPath, cfg.HealthcareInfoPath)
	if err != nil {
		return nil, fmt.Errorf("mainconfig: load corpus: %w", err)
	}

	index, err := intent.BuildIndex(normalizer, corpus)
	if err != nil {
		return nil, fmt.Errorf("mainconfig: build index: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("mainconfig: open database: %w", err)
	}
	repo := bookings.NewRepository(db)
	if err := repo.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	booking := bookings.NewService(repo, logger)

	m := metrics.NewConversationMetrics(reg)
	classifier := intent.NewClassifier(index, cfg.IntentThreshold, cfg.QAThreshold, m)
	controller := conversation.NewController(classifier, booking, corpus.Responses(), logger, m)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, transcripts disabled", "error", err)
			_ = redisClient.Close()
			redisClient = nil
		}
	}

	return &Engine{
		DB:         db,
		Booking:    booking,
		Classifier: classifier,
		Controller: controller,
		Identity:   identity.NewManager(),
		Metrics:    m,
		Transcript: conversation.NewTranscriptStore(redisClient),
		Redis:      redisClient,
	}, nil
}

// Close releases the engine's database and Redis handles.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.DB != nil {
		_ = e.DB.Close()
	}
	if e.Redis != nil {
		_ = e.Redis.Close()
	}
}
