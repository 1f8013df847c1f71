package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/session"
)

type GalleryHandler struct {
	registry *session.Registry
}

func NewGalleryHandler(registry *session.Registry) *GalleryHandler {
	return &GalleryHandler{registry: registry}
}

// List godoc
// @Summary     List generated images
// @Tags        gallery
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.GalleryResponse
// @Router      /sessions/{session_id}/gallery [get]
func (h *GalleryHandler) List(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	g := ctrl.Gallery()
	c.JSON(http.StatusOK, models.GalleryResponse{Images: g.Artifacts(), Generating: g.Generating()})
}

// Generate godoc
// @Summary     Generate a batch of images
// @Description Appends a batch of placeholder images once generation completes. Only one batch runs at a time.
// @Tags        gallery
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     202 {object} models.GenerateResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/gallery/generate [post]
func (h *GalleryHandler) Generate(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	if err := ctrl.Generate(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, models.GenerateResponse{Status: "generating", BatchSize: gallery.BatchSize})
}

// Favorite godoc
// @Summary     Toggle the favorite flag of an image
// @Tags        gallery
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       artifact_id path string true "Image ID"
// @Success     200 {object} gallery.Artifact
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/gallery/{artifact_id}/favorite [post]
func (h *GalleryHandler) Favorite(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	a, err := ctrl.ToggleFavorite(c.Param("artifact_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Comment godoc
// @Summary     Comment on an image
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       artifact_id path string true "Image ID"
// @Param       request body models.CommentRequest true "Comment"
// @Success     201 {object} gallery.Comment
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/gallery/{artifact_id}/comments [post]
func (h *GalleryHandler) Comment(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	comment, err := ctrl.AddComment(c.Param("artifact_id"), req.Author, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Regenerate godoc
// @Summary     Regenerate an image from a new prompt
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       artifact_id path string true "Image ID"
// @Param       request body models.RegenerateRequest true "Prompt"
// @Success     202 {object} gallery.Artifact
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/gallery/{artifact_id}/regenerate [post]
func (h *GalleryHandler) Regenerate(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	var req models.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	a, err := ctrl.Regenerate(c.Param("artifact_id"), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, a)
}

// Delete godoc
// @Summary     Delete a generated image
// @Tags        gallery
// @Param       session_id path string true "Session ID (UUID)"
// @Param       artifact_id path string true "Image ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/gallery/{artifact_id} [delete]
func (h *GalleryHandler) Delete(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	if err := ctrl.DeleteArtifact(c.Param("artifact_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
