// Package staging holds files selected by the user before they are part of a
// saved project: categorized brief references, custom model references and
// product images with their validation lifecycle.
package staging

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownCategory         = errors.New("unknown upload category")
	ErrIndexOutOfRange         = errors.New("file index out of range")
	ErrFileNotFound            = errors.New("staged file not found")
	ErrDescriptionsUnsupported = errors.New("category does not carry descriptions")
)

// File is a selected blob as delivered by the file selection surface.
// Size is the declared size, which may differ from len(Data).
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Data     []byte `json:"-"`
}

// IsImage reports whether the declared MIME type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}

// Asset is an unvalidated staged reference file.
type Asset struct {
	ID          uuid.UUID `json:"id"`
	File        File      `json:"file"`
	Description string    `json:"description,omitempty"`
}

func newAssets(files []File) []Asset {
	assets := make([]Asset, len(files))
	for i, f := range files {
		assets[i] = Asset{ID: uuid.New(), File: f}
	}
	return assets
}

// AppendAssets stages files after existing ones and returns the new slice
// together with the assets that were created.
func AppendAssets(existing []Asset, files []File) ([]Asset, []Asset) {
	added := newAssets(files)
	out := make([]Asset, 0, len(existing)+len(added))
	out = append(out, existing...)
	out = append(out, added...)
	return out, added
}

// RemoveAssetAt returns a copy of assets without the item at index.
func RemoveAssetAt(assets []Asset, index int) ([]Asset, error) {
	if index < 0 || index >= len(assets) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]Asset, 0, len(assets)-1)
	out = append(out, assets[:index]...)
	return append(out, assets[index+1:]...), nil
}

// RemoveAsset returns a copy of assets without the item with the given id.
func RemoveAsset(assets []Asset, id uuid.UUID) ([]Asset, error) {
	for i, a := range assets {
		if a.ID == id {
			return RemoveAssetAt(assets, i)
		}
	}
	return nil, ErrFileNotFound
}

// Zone describes the declared accept filter of one upload surface. The filter
// is advisory: drag and drop can bypass it, so validation stays authoritative.
type Zone struct {
	Name    string   `json:"name"`
	Accept  []string `json:"accept"`
	MaxSize int64    `json:"max_size"`
}

// Accepts reports whether f matches one of the zone's accept patterns. A
// pattern is a MIME type, a MIME wildcard such as "image/*", or an extension.
func (z Zone) Accepts(f File) bool {
	ext := strings.ToLower(path.Ext(f.Name))
	for _, pattern := range z.Accept {
		switch {
		case strings.HasPrefix(pattern, "."):
			if ext == pattern {
				return true
			}
		case strings.HasSuffix(pattern, "/*"):
			if strings.HasPrefix(f.MimeType, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		case pattern == f.MimeType:
			return true
		}
	}
	return false
}

const MaxUploadSize = 10 * 1024 * 1024

var (
	BriefZone   = Zone{Name: "brief", Accept: []string{"image/*", ".pdf", ".ai", ".psd"}, MaxSize: MaxUploadSize}
	ModelZone   = Zone{Name: "models", Accept: []string{"image/*"}, MaxSize: MaxUploadSize}
	ProductZone = Zone{Name: "products", Accept: []string{"image/*"}, MaxSize: MaxUploadSize}
)

// Zones lists every upload surface.
func Zones() []Zone {
	return []Zone{BriefZone, ModelZone, ProductZone}
}
