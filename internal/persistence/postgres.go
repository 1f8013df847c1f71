package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"studio-wizard-backend/internal/wizard"
)

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to databaseURL and verifies the connection.
func OpenPostgres(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Persist(ctx context.Context, sessionID uuid.UUID, draft wizard.ProjectDraft) error {
	rec, err := NewRecord(sessionID, draft, time.Now())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO project_drafts (
			id, session_id, name, brief_asset_count, selected_model_count,
			product_image_count, generated_image_count, draft, saved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.SessionID, rec.Name, rec.BriefAssetCount, rec.SelectedModelCount,
		rec.ProductImageCount, rec.GeneratedImageCount, []byte(rec.Draft), rec.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, name, brief_asset_count, selected_model_count,
			product_image_count, generated_image_count, saved_at
		FROM project_drafts
		ORDER BY saved_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list project drafts: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Name, &r.BriefAssetCount, &r.SelectedModelCount,
			&r.ProductImageCount, &r.GeneratedImageCount, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project draft: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	var (
		r     Record
		draft []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, name, brief_asset_count, selected_model_count,
			product_image_count, generated_image_count, draft, saved_at
		FROM project_drafts
		WHERE id = $1
	`, id).Scan(&r.ID, &r.SessionID, &r.Name, &r.BriefAssetCount, &r.SelectedModelCount,
		&r.ProductImageCount, &r.GeneratedImageCount, &draft, &r.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get project draft: %w", err)
	}
	r.Draft = draft
	return r, nil
}
