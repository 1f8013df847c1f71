// Package events publishes wizard session events so browser clients can follow
// validation and generation without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	UploadStarted       = "upload_started"
	ValidationCompleted = "validation_completed"
	GenerationStarted   = "generation_started"
	GenerationCompleted = "generation_completed"
	ProjectSaved        = "project_saved"
	ProjectDiscarded    = "project_discarded"
)

const channelPrefix = "studio:session:" // studio:session:{session_id}

// Channel is the pub/sub channel of one session.
func Channel(sessionID uuid.UUID) string {
	return channelPrefix + sessionID.String()
}

// Message is the JSON envelope written to the channel.
type Message struct {
	Event     string                 `json:"event"`
	SessionID string                 `json:"session_id"`
	Payload   map[string]interface{} `json:"payload"`
	SentAt    time.Time              `json:"sent_at"`
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) error {
	data, err := json.Marshal(Message{
		Event:     event,
		SessionID: sessionID.String(),
		Payload:   payload,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(sessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, uuid.UUID, string, map[string]interface{}) error {
	return nil
}

// Event payloads
func UploadStartedPayload(sessionID uuid.UUID, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "uploading",
		"file_count": fileCount,
	}
}

func ValidationCompletedPayload(sessionID, imageID uuid.UUID, status, reason string) map[string]interface{} {
	payload := map[string]interface{}{
		"session_id": sessionID.String(),
		"image_id":   imageID.String(),
		"status":     status,
	}
	if reason != "" {
		payload["error"] = reason
	}
	return payload
}

func GenerationStartedPayload(sessionID uuid.UUID, batchSize int) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "generating",
		"batch_size": batchSize,
	}
}

func GenerationCompletedPayload(sessionID uuid.UUID, imageCount int) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  sessionID.String(),
		"status":      "completed",
		"image_count": imageCount,
	}
}

func ProjectSavedPayload(sessionID uuid.UUID, name string) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "saved",
		"name":       name,
	}
}

func ProjectDiscardedPayload(sessionID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "discarded",
	}
}
