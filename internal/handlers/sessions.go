package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studio-wizard-backend/internal/models"
	"studio-wizard-backend/internal/session"
	"studio-wizard-backend/internal/wizard"
)

type SessionsHandler struct {
	registry *session.Registry
}

func NewSessionsHandler(registry *session.Registry) *SessionsHandler {
	return &SessionsHandler{registry: registry}
}

func sessionView(ctrl *wizard.Controller) models.SessionResponse {
	steps := wizard.Steps()
	return models.SessionResponse{
		SessionID: ctrl.ID().String(),
		Step:      steps[ctrl.Step()-1],
		Steps:     steps,
		Draft:     ctrl.Draft(),
		Closed:    ctrl.Closed(),
	}
}

// Create godoc
// @Summary     Open a project wizard session
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       request body models.CreateSessionRequest false "Optional project name"
// @Success     201 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions [post]
func (h *SessionsHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body", err)
			return
		}
	}

	ctrl := h.registry.Create()
	if name := strings.TrimSpace(req.Name); name != "" {
		if err := ctrl.Merge(wizard.NamePatch(name)); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, sessionView(ctrl))
}

// Get godoc
// @Summary     Get the current step and draft of a session
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [get]
func (h *SessionsHandler) Get(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionView(ctrl))
}

// Delete godoc
// @Summary     Close a session without saving
// @Tags        sessions
// @Param       session_id path string true "Session ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [delete]
func (h *SessionsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "session_id")
	if !ok {
		return
	}
	if err := h.registry.Remove(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Next godoc
// @Summary     Advance to the next step
// @Description A no-op on the last step.
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     410 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/next [post]
func (h *SessionsHandler) Next(c *gin.Context) {
	h.move(c, (*wizard.Controller).Next)
}

// Prev godoc
// @Summary     Go back one step
// @Description A no-op on the first step.
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Router      /sessions/{session_id}/prev [post]
func (h *SessionsHandler) Prev(c *gin.Context) {
	h.move(c, (*wizard.Controller).Prev)
}

func (h *SessionsHandler) move(c *gin.Context, fn func(*wizard.Controller) (wizard.Step, error)) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	if _, err := fn(ctrl); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(ctrl))
}

// Jump godoc
// @Summary     Jump to a step
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.JumpStepRequest true "Target step (1-4)"
// @Success     200 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/step [put]
func (h *SessionsHandler) Jump(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	var req models.JumpStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := ctrl.Jump(wizard.Step(req.Step)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(ctrl))
}

// PatchDraft godoc
// @Summary     Merge name or brief notes into the draft
// @Description Only the keys present in the body change.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.DraftPatchRequest true "Draft keys"
// @Success     200 {object} models.SessionResponse
// @Router      /sessions/{session_id}/draft [patch]
func (h *SessionsHandler) PatchDraft(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	var req models.DraftPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := ctrl.Merge(wizard.DraftPatch{Name: req.Name, BriefNotes: req.BriefNotes}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(ctrl))
}

// Save godoc
// @Summary     Save the draft and close the session
// @Description A persistence failure leaves the session open so the save can be retried.
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SaveResponse
// @Failure     410 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/save [post]
func (h *SessionsHandler) Save(c *gin.Context) {
	ctrl, ok := sessionFrom(c, h.registry, false)
	if !ok {
		return
	}
	draft, err := ctrl.SaveAndExit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SaveResponse{
		SessionID: ctrl.ID().String(),
		Status:    "saved",
		Draft:     draft,
	})
}
