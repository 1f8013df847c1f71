package supabase

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, apiKey, bucket string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &StorageClient{
		client:  storage.NewClient(baseURL+"/storage/v1", apiKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// ObjectPath builds sessions/{session_id}/{zone}/{file_id}/{filename}.
func ObjectPath(sessionID uuid.UUID, zone string, fileID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("sessions/%s/%s/%s/%s", sessionID.String(), zone, fileID.String(), name)
}

// Upload stores data at objectPath and returns its public URL.
func (s *StorageClient) Upload(objectPath, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.PublicURL(objectPath), nil
}

func (s *StorageClient) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *StorageClient) Delete(objectPaths ...string) error {
	if len(objectPaths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, objectPaths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}
