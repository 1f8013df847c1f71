package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/persistence"
	"studio-wizard-backend/internal/staging"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
	store   persistence.Store
}

func NewCatalogHandler(c *catalog.Catalog, store persistence.Store) *CatalogHandler {
	return &CatalogHandler{catalog: c, store: store}
}

// Modes godoc
// @Summary     List application modes
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.ModesResponse
// @Router      /modes [get]
func (h *CatalogHandler) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, models.ModesResponse{Modes: catalog.Modes()})
}

// Tools godoc
// @Summary     List single image tools
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.ToolsResponse
// @Router      /tools [get]
func (h *CatalogHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToolsResponse{Tools: catalog.Tools()})
}

// Projects godoc
// @Summary     List showcase and saved projects
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.ProjectsResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *CatalogHandler) Projects(c *gin.Context) {
	saved, err := h.store.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectsResponse{
		Showcase: catalog.ShowcaseProjects(),
		Saved:    saved,
		Workflow: catalog.Workflow(),
	})
}

// Project godoc
// @Summary     Get a saved project with its draft
// @Tags        catalog
// @Produce     json
// @Param       project_id path string true "Saved project ID (UUID)"
// @Success     200 {object} persistence.Record
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *CatalogHandler) Project(c *gin.Context) {
	id, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		badRequest(c, "invalid project_id", err)
		return
	}
	rec, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Models godoc
// @Summary     Filter the model catalog
// @Description Case-insensitive search over name and ethnicity; category "all" or empty matches every model.
// @Tags        catalog
// @Produce     json
// @Param       search query string false "Name or ethnicity substring"
// @Param       category query string false "Model category"
// @Success     200 {object} models.ModelsResponse
// @Router      /models [get]
func (h *CatalogHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, models.ModelsResponse{
		Models:     h.catalog.Filter(c.Query("search"), c.Query("category")),
		Categories: h.catalog.Categories(),
	})
}

// UploadZones godoc
// @Summary     List upload zones and their accept filters
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.ZonesResponse
// @Router      /upload-zones [get]
func (h *CatalogHandler) UploadZones(c *gin.Context) {
	c.JSON(http.StatusOK, models.ZonesResponse{Zones: staging.Zones()})
}
