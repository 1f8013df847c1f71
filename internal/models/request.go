package models

type CreateSessionRequest struct {
	// Optional project name; defaults to "New Project {date}"
	Name string `json:"name,omitempty" example:"Summer Jewelry Collection"`
}

type JumpStepRequest struct {
	Step int `json:"step" binding:"required" example:"3"`
}

// DraftPatchRequest changes only the keys that are present.
type DraftPatchRequest struct {
	Name       *string `json:"name,omitempty"`
	BriefNotes *string `json:"brief_notes,omitempty"`
}

type DescriptionRequest struct {
	Description string `json:"description"`
}

type CommentRequest struct {
	Author  string `json:"author,omitempty" example:"You"`
	Message string `json:"message" binding:"required"`
}

type RegenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
