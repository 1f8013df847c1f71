package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/session"
	"studio-wizard-backend/internal/wizard"
)

type ProductsHandler struct {
	registry *session.Registry
}

func NewProductsHandler(registry *session.Registry) *ProductsHandler {
	return &ProductsHandler{registry: registry}
}

func productsView(ctrl *wizard.Controller) models.ProductsResponse {
	images := ctrl.Draft().ProductImages
	progress := ctrl.ProductProgress()
	views := make([]models.ProductView, len(images))
	for i, img := range images {
		views[i] = models.ProductView{ProductImage: img, Progress: progress[img.ID]}
	}
	return models.ProductsResponse{Images: views, Counts: images.Counts()}
}

// Stage godoc
// @Summary     Stage product images for validation
// @Description Every file starts as uploading and is validated in the background. Poll the list or follow the session channel for results.
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       images formData file true "Product images (multiple allowed)"
// @Success     202 {object} models.ProductsResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/products [post]
func (h *ProductsHandler) Stage(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	files, err := readFiles(c, "images", "image", "files", "file")
	if err != nil {
		badRequest(c, "no files uploaded", err)
		return
	}
	if _, err := ctrl.StageProducts(files); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, productsView(ctrl))
}

// List godoc
// @Summary     List staged product images with status and progress
// @Tags        products
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.ProductsResponse
// @Router      /sessions/{session_id}/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, productsView(ctrl))
}

// Replace godoc
// @Summary     Replace the file of a staged product image
// @Description The image keeps its id and position and is validated again.
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       image_id path string true "Product image ID (UUID)"
// @Param       image formData file true "Replacement image"
// @Success     202 {object} models.ProductsResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/products/{image_id} [put]
func (h *ProductsHandler) Replace(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}
	files, err := readFiles(c, "image", "images", "file", "files")
	if err != nil {
		badRequest(c, "no files uploaded", err)
		return
	}
	if _, err := ctrl.ReplaceProduct(imageID, files[0]); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, productsView(ctrl))
}

// Remove godoc
// @Summary     Remove a staged product image
// @Description Allowed in any status; a pending validation result is discarded.
// @Tags        products
// @Param       session_id path string true "Session ID (UUID)"
// @Param       image_id path string true "Product image ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/products/{image_id} [delete]
func (h *ProductsHandler) Remove(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}
	if err := ctrl.RemoveProduct(imageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
