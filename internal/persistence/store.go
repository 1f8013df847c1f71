// Package persistence stores saved wizard drafts.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studio-wizard-backend/internal/wizard"
)

var ErrNotFound = errors.New("saved project not found")

// Record is one saved draft with the counters listed in projects mode.
type Record struct {
	ID                  uuid.UUID       `json:"id"`
	SessionID           uuid.UUID       `json:"session_id"`
	Name                string          `json:"name"`
	BriefAssetCount     int             `json:"brief_asset_count"`
	SelectedModelCount  int             `json:"selected_model_count"`
	ProductImageCount   int             `json:"product_image_count"`
	GeneratedImageCount int             `json:"generated_image_count"`
	Draft               json.RawMessage `json:"draft,omitempty"`
	SavedAt             time.Time       `json:"saved_at"`
}

// Store persists drafts and lists them back newest first.
type Store interface {
	Persist(ctx context.Context, sessionID uuid.UUID, draft wizard.ProjectDraft) error
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
}

// NewRecord summarizes draft and encodes it for storage.
func NewRecord(sessionID uuid.UUID, draft wizard.ProjectDraft, now time.Time) (Record, error) {
	data, err := json.Marshal(draft)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal draft: %w", err)
	}
	return Record{
		ID:                  uuid.New(),
		SessionID:           sessionID,
		Name:                draft.Name,
		BriefAssetCount:     draft.BriefAssets.Total(),
		SelectedModelCount:  len(draft.SelectedModels),
		ProductImageCount:   len(draft.ProductImages),
		GeneratedImageCount: len(draft.GeneratedImages),
		Draft:               data,
		SavedAt:             now.UTC(),
	}, nil
}
