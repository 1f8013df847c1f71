package persistence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/supabase"
	"studio-wizard-backend/internal/wizard"
)

const uploadConcurrency = 4

// ObjectUploader stores file bytes and returns a public URL.
type ObjectUploader interface {
	Upload(objectPath, contentType string, data []byte) (string, error)
	Delete(objectPaths ...string) error
}

// RowStore is the table the draft rows go to.
type RowStore interface {
	Insert(row interface{}) error
	Select(out interface{}, column, value string) error
}

// SupabaseStore uploads every staged file to storage and records the draft
// with its object paths in a table.
type SupabaseStore struct {
	objects ObjectUploader
	rows    RowStore
}

func NewSupabaseStore(objects ObjectUploader, rows RowStore) *SupabaseStore {
	return &SupabaseStore{objects: objects, rows: rows}
}

type draftRow struct {
	Record
	AssetPaths []string `json:"asset_paths"`
}

type upload struct {
	zone string
	id   uuid.UUID
	file staging.File
}

func collectUploads(draft wizard.ProjectDraft) []upload {
	var out []upload
	for _, c := range staging.Categories() {
		for _, a := range draft.BriefAssets.Files(c) {
			out = append(out, upload{zone: string(c), id: a.ID, file: a.File})
		}
	}
	for _, a := range draft.UploadedModelImages {
		out = append(out, upload{zone: "models", id: a.ID, file: a.File})
	}
	for _, p := range draft.ProductImages {
		out = append(out, upload{zone: "products", id: p.ID, file: p.File})
	}
	return out
}

func (s *SupabaseStore) Persist(ctx context.Context, sessionID uuid.UUID, draft wizard.ProjectDraft) error {
	uploads := collectUploads(draft)
	paths := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, u := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			objectPath := supabase.ObjectPath(sessionID, u.zone, u.id, u.file.Name)
			if _, err := s.objects.Upload(objectPath, u.file.MimeType, u.file.Data); err != nil {
				return fmt.Errorf("upload %s: %w", u.file.Name, err)
			}
			paths[i] = objectPath
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.discard(paths, err)
	}

	rec, err := NewRecord(sessionID, draft, time.Now())
	if err != nil {
		return s.discard(paths, err)
	}
	if err := s.rows.Insert(draftRow{Record: rec, AssetPaths: paths}); err != nil {
		return s.discard(paths, err)
	}
	return nil
}

// discard removes the objects a failed save already uploaded and returns cause.
func (s *SupabaseStore) discard(paths []string, cause error) error {
	var uploaded []string
	for _, p := range paths {
		if p != "" {
			uploaded = append(uploaded, p)
		}
	}
	if len(uploaded) == 0 {
		return cause
	}
	if err := s.objects.Delete(uploaded...); err != nil {
		return fmt.Errorf("%w (cleanup: %v)", cause, err)
	}
	return cause
}

func (s *SupabaseStore) List(context.Context) ([]Record, error) {
	var rows []draftRow
	if err := s.rows.Select(&rows, "", ""); err != nil {
		return nil, err
	}
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = r.Record
		records[i].Draft = nil
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].SavedAt.After(records[j].SavedAt) })
	return records, nil
}

func (s *SupabaseStore) Get(_ context.Context, id uuid.UUID) (Record, error) {
	var rows []draftRow
	if err := s.rows.Select(&rows, "id", id.String()); err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, ErrNotFound
	}
	return rows[0].Record, nil
}
