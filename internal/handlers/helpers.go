package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/persistence"
	"studio-wizard-backend/internal/session"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/wizard"
)

// maxFormMemory bounds the in-memory part of a multipart form; larger parts
// spill to temporary files.
const maxFormMemory = 32 << 20

var errFilesMissing = errors.New("no files uploaded")

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, wizard.ErrClosed):
		return http.StatusGone, "session is closed"
	case errors.Is(err, wizard.ErrStepOutOfRange):
		return http.StatusBadRequest, "step out of range"
	case errors.Is(err, staging.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown category"
	case errors.Is(err, staging.ErrDescriptionsUnsupported):
		return http.StatusBadRequest, "category has no descriptions"
	case errors.Is(err, staging.ErrIndexOutOfRange), errors.Is(err, staging.ErrFileNotFound):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, catalog.ErrModelNotFound):
		return http.StatusNotFound, "model not found"
	case errors.Is(err, gallery.ErrGenerationInFlight):
		return http.StatusConflict, "generation already in progress"
	case errors.Is(err, gallery.ErrArtifactNotFound):
		return http.StatusNotFound, "image not found"
	case errors.Is(err, gallery.ErrEmptyPrompt), errors.Is(err, gallery.ErrEmptyComment):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound, "project not found"
	case errors.Is(err, errFilesMissing):
		return http.StatusBadRequest, "no files uploaded"
	}
	return http.StatusInternalServerError, "internal error"
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, models.ErrorResponse{Error: msg, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s", param), err)
		return uuid.Nil, false
	}
	return id, true
}

// sessionFrom resolves the :session_id parameter. Closed sessions answer 410
// unless allowClosed is set.
func sessionFrom(c *gin.Context, registry *session.Registry, allowClosed bool) (*wizard.Controller, bool) {
	id, ok := parseID(c, "session_id")
	if !ok {
		return nil, false
	}
	ctrl, err := registry.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if ctrl.Closed() && !allowClosed {
		respondError(c, wizard.ErrClosed)
		return nil, false
	}
	return ctrl, true
}

// readFiles loads every file of the first matching form field.
func readFiles(c *gin.Context, fieldNames ...string) ([]staging.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	var headers []*multipart.FileHeader
	for _, name := range fieldNames {
		if f := form.File[name]; len(f) > 0 {
			headers = f
			break
		}
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: use one of the fields %v", errFilesMissing, fieldNames)
	}

	files := make([]staging.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (staging.File, error) {
	src, err := fh.Open()
	if err != nil {
		return staging.File{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return staging.File{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return staging.File{
		Name:     fh.Filename,
		MimeType: mimeType(fh),
		Size:     fh.Size,
		Data:     data,
	}, nil
}

func mimeType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return ct
}

// zoneWarnings names the files a zone would not accept.
func zoneWarnings(zone staging.Zone, files []staging.File) []string {
	var out []string
	for _, f := range files {
		if !zone.Accepts(f) {
			out = append(out, fmt.Sprintf("%s is not accepted by %s", f.Name, zone.Name))
		}
	}
	return out
}
