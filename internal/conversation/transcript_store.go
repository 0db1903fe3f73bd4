package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "transcript:"
	transcriptTTL       = 24 * time.Hour
)

// TranscriptMessage is one logged turn of a conversation.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore keeps per-session transcripts in Redis with a rolling cap
// and TTL. A nil store (no Redis configured) is a silent no-op, so the
// dialogue engine works identically with and without it.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewTranscriptStore wraps a Redis client; a nil client yields a nil store.
func NewTranscriptStore(redisClient *redis.Client) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("bookingbot.internal.conversation.transcript"),
		maxMessages: 250,
	}
}

// Append logs one turn under the session id.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, msg TranscriptMessage) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("conversation: transcript sessionID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("conversation: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	pipe.LTrim(ctx, key, -s.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append transcript: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages, oldest first.
func (s *TranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptMessage, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.maxMessages
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), -limit, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load transcript: %w", err)
	}

	out := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("conversation: decode transcript message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
