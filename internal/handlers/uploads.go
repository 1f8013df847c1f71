package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/session"
	"studio-wizard-backend/internal/staging"
)

type UploadsHandler struct {
	registry *session.Registry
}

func NewUploadsHandler(registry *session.Registry) *UploadsHandler {
	return &UploadsHandler{registry: registry}
}

// AddBrief godoc
// @Summary     Add reference files to a brief category
// @Description Files are appended in order; duplicates are kept. Other references accept one description per file.
// @Tags        brief
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       category path string true "moodBoards, styleFrames, colorPalettes or otherReferences"
// @Param       files formData file true "Reference files (multiple allowed)"
// @Param       descriptions formData string false "Descriptions aligned with the files"
// @Success     201 {object} models.AssetsResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/brief/{category} [post]
func (h *UploadsHandler) AddBrief(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	cat, err := staging.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	files, err := readFiles(c, "files", "file")
	if err != nil {
		badRequest(c, "no files uploaded", err)
		return
	}

	added, err := ctrl.AddBriefFiles(cat, files, c.PostFormArray("descriptions")...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.AssetsResponse{
		Category: string(cat),
		Files:    added,
		Warnings: zoneWarnings(staging.BriefZone, files),
	})
}

// RemoveBrief godoc
// @Summary     Remove a brief file
// @Tags        brief
// @Param       session_id path string true "Session ID (UUID)"
// @Param       category path string true "Brief category"
// @Param       file_id path string true "File ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/brief/{category}/{file_id} [delete]
func (h *UploadsHandler) RemoveBrief(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	cat, err := staging.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	fileID, ok := parseID(c, "file_id")
	if !ok {
		return
	}
	if err := ctrl.RemoveBriefFileByID(cat, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetDescription godoc
// @Summary     Set the description of an other-references file
// @Tags        brief
// @Accept      json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       category path string true "Brief category"
// @Param       file_id path string true "File ID (UUID)"
// @Param       request body models.DescriptionRequest true "Description"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/brief/{category}/{file_id}/description [put]
func (h *UploadsHandler) SetDescription(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	cat, err := staging.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	fileID, ok := parseID(c, "file_id")
	if !ok {
		return
	}
	var req models.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := ctrl.SetBriefDescription(cat, fileID, req.Description); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleModel godoc
// @Summary     Select or deselect a catalog model
// @Tags        models
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       model_id path int true "Catalog model ID"
// @Success     200 {object} models.ToggleModelResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/models/{model_id}/toggle [post]
func (h *UploadsHandler) ToggleModel(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	modelID, err := strconv.Atoi(c.Param("model_id"))
	if err != nil {
		badRequest(c, "invalid model_id", err)
		return
	}
	selected, err := ctrl.ToggleModel(modelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToggleModelResponse{
		ModelID:        modelID,
		Selected:       selected,
		SelectedModels: ctrl.Draft().SelectedModels,
	})
}

// AddModelImages godoc
// @Summary     Upload custom model reference images
// @Tags        models
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       files formData file true "Reference images"
// @Success     201 {object} models.AssetsResponse
// @Router      /sessions/{session_id}/model-images [post]
func (h *UploadsHandler) AddModelImages(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	files, err := readFiles(c, "files", "file", "images")
	if err != nil {
		badRequest(c, "no files uploaded", err)
		return
	}
	added, err := ctrl.AddModelImages(files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.AssetsResponse{
		Files:    added,
		Warnings: zoneWarnings(staging.ModelZone, files),
	})
}

// RemoveModelImage godoc
// @Summary     Remove a custom model reference image
// @Tags        models
// @Param       session_id path string true "Session ID (UUID)"
// @Param       file_id path string true "File ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/model-images/{file_id} [delete]
func (h *UploadsHandler) RemoveModelImage(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "file_id")
	if !ok {
		return
	}
	if err := ctrl.RemoveModelImageByID(fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview godoc
// @Summary     Raw bytes of a staged file
// @Tags        files
// @Produce     octet-stream
// @Param       session_id path string true "Session ID (UUID)"
// @Param       file_id path string true "File ID (UUID)"
// @Success     200
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/files/{file_id}/preview [get]
func (h *UploadsHandler) Preview(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "file_id")
	if !ok {
		return
	}
	f, found := ctrl.File(fileID)
	if !found || f.Data == nil {
		respondError(c, staging.ErrFileNotFound)
		return
	}
	contentType := f.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, f.Data)
}
