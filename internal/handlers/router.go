package handlers

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/middleware"
	"studio-wizard-backend/internal/persistence"
	"studio-wizard-backend/internal/session"
)

const apiPrefix = "/api/v1"

type RouterConfig struct {
	Registry       *session.Registry
	Catalog        *catalog.Catalog
	Store          persistence.Store
	Logger         *zap.Logger
	AllowedOrigins []string
}

// PreviewURL is the route that serves the raw bytes of a staged file.
func PreviewURL(sessionID, fileID uuid.UUID) string {
	return fmt.Sprintf("%s/sessions/%s/files/%s/preview", apiPrefix, sessionID, fileID)
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
			ExposeHeaders: []string{"X-Request-Id"},
			MaxAge:        12 * time.Hour,
		}))
	}
	router.MaxMultipartMemory = maxFormMemory

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Store)
	sessionsHandler := NewSessionsHandler(cfg.Registry)
	uploadsHandler := NewUploadsHandler(cfg.Registry)
	productsHandler := NewProductsHandler(cfg.Registry)
	galleryHandler := NewGalleryHandler(cfg.Registry)

	router.GET("/health", HealthHandler(cfg.Registry))

	api := router.Group(apiPrefix)

	api.GET("/modes", catalogHandler.Modes)
	api.GET("/tools", catalogHandler.Tools)
	api.GET("/projects", catalogHandler.Projects)
	api.GET("/projects/:project_id", catalogHandler.Project)
	api.GET("/models", catalogHandler.Models)
	api.GET("/upload-zones", catalogHandler.UploadZones)

	api.POST("/sessions", sessionsHandler.Create)
	s := api.Group("/sessions/:session_id")
	s.GET("", sessionsHandler.Get)
	s.DELETE("", sessionsHandler.Delete)
	s.POST("/next", sessionsHandler.Next)
	s.POST("/prev", sessionsHandler.Prev)
	s.PUT("/step", sessionsHandler.Jump)
	s.PATCH("/draft", sessionsHandler.PatchDraft)
	s.POST("/save", sessionsHandler.Save)

	// Brief and models
	s.POST("/brief/:category", uploadsHandler.AddBrief)
	s.DELETE("/brief/:category/:file_id", uploadsHandler.RemoveBrief)
	s.PUT("/brief/:category/:file_id/description", uploadsHandler.SetDescription)
	s.POST("/models/:model_id/toggle", uploadsHandler.ToggleModel)
	s.POST("/model-images", uploadsHandler.AddModelImages)
	s.DELETE("/model-images/:file_id", uploadsHandler.RemoveModelImage)
	s.GET("/files/:file_id/preview", uploadsHandler.Preview)

	// Products
	s.POST("/products", productsHandler.Stage)
	s.GET("/products", productsHandler.List)
	s.PUT("/products/:image_id", productsHandler.Replace)
	s.DELETE("/products/:image_id", productsHandler.Remove)

	// Gallery
	s.GET("/gallery", galleryHandler.List)
	s.POST("/gallery/generate", galleryHandler.Generate)
	s.POST("/gallery/:artifact_id/favorite", galleryHandler.Favorite)
	s.POST("/gallery/:artifact_id/comments", galleryHandler.Comment)
	s.POST("/gallery/:artifact_id/regenerate", galleryHandler.Regenerate)
	s.DELETE("/gallery/:artifact_id", galleryHandler.Delete)

	return router
}
