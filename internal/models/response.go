package models

import (
	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/persistence"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/wizard"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type SessionResponse struct {
	SessionID string              `json:"session_id"`
	Step      wizard.StepInfo     `json:"step"`
	Steps     []wizard.StepInfo   `json:"steps"`
	Draft     wizard.ProjectDraft `json:"draft"`
	Closed    bool                `json:"closed"`
}

type ModesResponse struct {
	Modes []catalog.Mode `json:"modes"`
}

type ToolsResponse struct {
	Tools []catalog.Tool `json:"tools"`
}

type ProjectsResponse struct {
	Showcase []catalog.Project      `json:"showcase"`
	Saved    []persistence.Record   `json:"saved"`
	Workflow []catalog.WorkflowStep `json:"workflow"`
}

type ModelsResponse struct {
	Models     []catalog.Model `json:"models"`
	Categories []string        `json:"categories"`
}

type ZonesResponse struct {
	Zones []staging.Zone `json:"zones"`
}

type AssetsResponse struct {
	Category string          `json:"category,omitempty"`
	Files    []staging.Asset `json:"files"`
	// Files outside the zone's accepted types are staged but flagged here
	Warnings []string `json:"warnings,omitempty"`
}

type ToggleModelResponse struct {
	ModelID        int             `json:"model_id"`
	Selected       bool            `json:"selected"`
	SelectedModels []catalog.Model `json:"selected_models"`
}

type ProductView struct {
	staging.ProductImage
	Progress int `json:"progress"`
}

type ProductsResponse struct {
	Images []ProductView          `json:"images"`
	Counts map[staging.Status]int `json:"counts"`
}

type GalleryResponse struct {
	Images     []gallery.Artifact `json:"images"`
	Generating bool               `json:"generating"`
}

type GenerateResponse struct {
	Status    string `json:"status"`
	BatchSize int    `json:"batch_size"`
}

type SaveResponse struct {
	SessionID string              `json:"session_id"`
	Status    string              `json:"status"`
	Draft     wizard.ProjectDraft `json:"draft"`
}
